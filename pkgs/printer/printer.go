// Package printer writes styled, human oriented output for the CLI.
package printer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hay-kot/voldir/pkgs/styles"
)

type Printer struct {
	writer io.Writer
	base   styles.RenderFunc
	light  styles.RenderFunc
}

func New(w io.Writer) *Printer {
	return &Printer{
		writer: w,
		base:   styles.Bold,
		light:  styles.Subtle,
	}
}

// Ctx returns a copy of the printer that writes to the context's writer when
// one is set.
func (p *Printer) Ctx(ctx context.Context) *Printer {
	cp := *p
	if w, ok := GetWriter(ctx); ok {
		cp.writer = w
	}
	return &cp
}

func (p *Printer) write(s string) {
	_, _ = fmt.Fprintln(p.writer, s)
}

func (p *Printer) FatalError(err error) {
	p.LineBreak()
	p.write(styles.ErrorBox("Error", err.Error()))
}

func (p *Printer) Title(title string) {
	p.write(p.base(title))
}

func (p *Printer) LineBreak() {
	p.write("")
}

// Line writes s without styling; used for script friendly output.
func (p *Printer) Line(s string) {
	p.write(s)
}

type KeyValue struct {
	Key   string
	Value string
}

// KeyValues prints aligned key/value pairs under a title.
func (p *Printer) KeyValues(title string, kvs []KeyValue) {
	if title != "" {
		p.Title(title)
	}

	width := 0
	for _, kv := range kvs {
		width = max(width, len(kv.Key))
	}

	for _, kv := range kvs {
		pad := strings.Repeat(" ", width-len(kv.Key))
		p.write(" " + p.base(kv.Key) + pad + "  " + p.light(kv.Value))
	}
}
