package volume

import (
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// Path is a cleaned filesystem path held as an ordered list of segments plus
// a root marker. Two paths are equal when their root markers and segments are.
type Path struct {
	abs      bool
	segments []string
}

// ParsePath cleans p and splits it into segments. Both separators are
// accepted so that paths recorded on one OS parse the same on another.
func ParsePath(p string) Path {
	cleaned := path.Clean(filepath.ToSlash(p))
	if cleaned == "." {
		return Path{}
	}

	abs := strings.HasPrefix(cleaned, "/")
	trimmed := strings.Trim(cleaned, "/")
	if trimmed == "" {
		return Path{abs: abs}
	}

	return Path{abs: abs, segments: strings.Split(trimmed, "/")}
}

// NewPath builds a path from raw segments. Segments are used as-is.
func NewPath(abs bool, segments ...string) Path {
	return Path{abs: abs, segments: slices.Clone(segments)}
}

func (p Path) String() string {
	joined := strings.Join(p.segments, "/")
	switch {
	case p.abs:
		return "/" + joined
	case joined == "":
		return "."
	default:
		return joined
	}
}

// MarshalText encodes the path as its string form.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses the path from its string form.
func (p *Path) UnmarshalText(b []byte) error {
	*p = ParsePath(string(b))
	return nil
}

func (p Path) MarshalYAML() (any, error) {
	return p.String(), nil
}

func (p *Path) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	*p = ParsePath(s)
	return nil
}

func (p Path) IsAbs() bool { return p.abs }

// Segments returns a copy of the named segments, excluding the root marker.
func (p Path) Segments() []string { return slices.Clone(p.segments) }

// Components is the number of path components with the root marker counted
// as one, so "/Volumes/MyDisk" has three.
func (p Path) Components() int {
	if p.abs {
		return len(p.segments) + 1
	}
	return len(p.segments)
}

func (p Path) IsZero() bool { return !p.abs && len(p.segments) == 0 }

func (p Path) Equal(o Path) bool {
	return p.abs == o.abs && slices.Equal(p.segments, o.segments)
}

// Last returns the final segment, or "" for the root or an empty path.
func (p Path) Last() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// HasPrefix reports whether prefix matches p segment by segment.
// "/VolumesX" does not have the prefix "/Volumes".
func (p Path) HasPrefix(prefix Path) bool {
	if p.abs != prefix.abs || len(prefix.segments) > len(p.segments) {
		return false
	}
	return slices.Equal(p.segments[:len(prefix.segments)], prefix.segments)
}

// Prefix returns the first n segments of p, keeping the root marker.
func (p Path) Prefix(n int) Path {
	n = min(max(n, 0), len(p.segments))
	return Path{abs: p.abs, segments: slices.Clone(p.segments[:n])}
}

// SegmentsAfter returns the segments of p that follow prefix. It returns nil
// when prefix is not a prefix of p.
func (p Path) SegmentsAfter(prefix Path) []string {
	if !p.HasPrefix(prefix) {
		return nil
	}
	return slices.Clone(p.segments[len(prefix.segments):])
}

// Join appends segments to p. Each element may itself contain separators.
func (p Path) Join(elems ...string) Path {
	out := Path{abs: p.abs, segments: slices.Clone(p.segments)}
	for _, e := range elems {
		for _, s := range strings.Split(filepath.ToSlash(e), "/") {
			if s == "" || s == "." {
				continue
			}
			out.segments = append(out.segments, s)
		}
	}
	return out
}

// WithSegment returns a copy of p with segment i replaced by s.
func (p Path) WithSegment(i int, s string) Path {
	out := Path{abs: p.abs, segments: slices.Clone(p.segments)}
	if i >= 0 && i < len(out.segments) {
		out.segments[i] = s
	}
	return out
}

// OSPath returns the path in the host OS separator form.
func (p Path) OSPath() string {
	return filepath.FromSlash(p.String())
}
