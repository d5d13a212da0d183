package volume

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(volumes []Volume) []string {
	out := make([]string, 0, len(volumes))
	for _, v := range volumes {
		out = append(out, v.DisplayName)
	}
	return out
}

func TestDirLookup_Volumes(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, d := range []string{"/Volumes/MyDisk-1", "/Volumes/Backup", "/Volumes/.timemachine"} {
		require.NoError(t, fs.MkdirAll(d, 0o755))
	}
	require.NoError(t, afero.WriteFile(fs, "/Volumes/.DS_Store", nil, 0o644))
	require.NoError(t, afero.WriteFile(fs, "/Volumes/notes.txt", nil, 0o644))

	l := NewDirLookup(fs, ParsePath("/Volumes"))

	volumes, err := l.Volumes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Backup", "MyDisk-1"}, names(volumes))
	assert.Equal(t, "/Volumes/MyDisk-1", volumes[1].MountRoot.String())
	assert.Equal(t, "MyDisk-1", volumes[1].Folder())
}

func TestDirLookup_MissingContainer(t *testing.T) {
	l := NewDirLookup(afero.NewMemMapFs(), ParsePath("/Volumes"))

	_, err := l.Volumes(context.Background())
	assert.Error(t, err)
}

func TestDirLookup_DisplayName(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/Volumes/MyDisk", 0o755))
	l := NewDirLookup(fs, ParsePath("/Volumes"))

	name, err := l.DisplayName(context.Background(), ParsePath("/Volumes/MyDisk"))
	require.NoError(t, err)
	assert.Equal(t, "MyDisk", name)

	_, err = l.DisplayName(context.Background(), ParsePath("/Volumes/Gone"))
	assert.Error(t, err)
}

const diskutilSample = `   Device Identifier:         disk4s1
   Device Node:               /dev/disk4s1
   Whole:                     No
   Part of Whole:             disk4

   Volume Name:               MyDisk
   Mounted:                   Yes
   Mount Point:               /Volumes/MyDisk 1

   Partition Type:            Microsoft Basic Data
   File System Personality:   ExFAT
`

func Test_parseDiskutilVolumeName(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "named volume", input: diskutilSample, want: "MyDisk", wantOK: true},
		{name: "name with spaces", input: "   Volume Name:   Backup Drive  \n", want: "Backup Drive", wantOK: true},
		{name: "empty name", input: "   Volume Name:\n   Mounted: Yes\n", wantOK: false},
		{name: "no file system", input: "   Volume Name:   Not applicable (no file system)\n", wantOK: false},
		{name: "missing field", input: "Could not find disk: /Volumes/Nope\n", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseDiskutilVolumeName([]byte(tt.input))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiskutilLookup(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, d := range []string{"/Volumes/Alpha", "/Volumes/MyDisk 1", "/Volumes/Zed"} {
		require.NoError(t, fs.MkdirAll(d, 0o755))
	}

	l := NewDiskutilLookup(fs, ParsePath("/Volumes"))
	l.info = func(ctx context.Context, mount string) ([]byte, error) {
		switch filepath.ToSlash(mount) {
		case "/Volumes/MyDisk 1":
			return []byte(diskutilSample), nil
		case "/Volumes/Alpha":
			return []byte("   Volume Name:   Alpha\n"), nil
		default:
			return nil, errors.New("exit status 1")
		}
	}

	volumes, err := l.Volumes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "MyDisk", "Zed"}, names(volumes))
	assert.Equal(t, "/Volumes/MyDisk 1", volumes[1].MountRoot.String())

	name, err := l.DisplayName(context.Background(), ParsePath("/Volumes/MyDisk 1"))
	require.NoError(t, err)
	assert.Equal(t, "MyDisk", name)

	_, err = l.DisplayName(context.Background(), ParsePath("/Volumes/Zed"))
	assert.Error(t, err)
}

const mountinfoSample = `22 1 8:1 / / rw,relatime shared:1 - ext4 /dev/sda1 rw
61 22 8:17 / /media/me/MyDisk1 rw,nosuid,nodev,relatime shared:34 - exfat /dev/sdb1 rw,uid=1000
62 22 8:33 / /media/me/Backup\040Drive rw,nosuid,nodev shared:35 - vfat /dev/sdc1 rw
63 61 8:49 / /media/me/MyDisk1/nested rw shared:36 - ext4 /dev/sdd1 rw
64 22 0:50 / /media/other/USB rw shared:37 - vfat /dev/sde1 rw
bogus line
`

func Test_parseMountinfo(t *testing.T) {
	entries := parseMountinfo([]byte(mountinfoSample))

	require.Len(t, entries, 5)
	assert.Equal(t, mountEntry{mountPoint: "/", source: "/dev/sda1"}, entries[0])
	assert.Equal(t, mountEntry{mountPoint: "/media/me/Backup Drive", source: "/dev/sdc1"}, entries[2])
}

func Test_unescape(t *testing.T) {
	assert.Equal(t, "My Disk", unescapeOctal(`My\040Disk`))
	assert.Equal(t, `tab	here`, unescapeOctal(`tab\011here`))
	assert.Equal(t, `trailing\04`, unescapeOctal(`trailing\04`))
	assert.Equal(t, "My Disk", unescapeUdev(`My\x20Disk`))
	assert.Equal(t, `odd\xZZ`, unescapeUdev(`odd\xZZ`))
}

func TestMountinfoLookup_FolderNames(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proc/self/mountinfo", []byte(mountinfoSample), 0o444))

	l := NewMountinfoLookup(fs, ParsePath("/media/me"))

	volumes, err := l.Volumes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"MyDisk1", "Backup Drive"}, names(volumes))

	name, err := l.DisplayName(context.Background(), ParsePath("/media/me/Backup Drive"))
	require.NoError(t, err)
	assert.Equal(t, "Backup Drive", name)

	_, err = l.DisplayName(context.Background(), ParsePath("/media/me/Gone"))
	assert.Error(t, err)
}

func TestMountinfoLookup_Overmount(t *testing.T) {
	table := `61 22 8:17 / /media/me/MyDisk rw shared:34 - exfat /dev/sdb1 rw
70 22 8:65 / /media/me/Other rw shared:40 - exfat /dev/sdf1 rw
71 61 8:33 / /media/me/MyDisk rw shared:41 - exfat /dev/sdc1 rw
`
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proc/self/mountinfo", []byte(table), 0o444))

	l := NewMountinfoLookup(fs, ParsePath("/media/me"))

	volumes, err := l.Volumes(context.Background())
	require.NoError(t, err)
	require.Len(t, volumes, 2)
	assert.Equal(t, "/media/me/MyDisk", volumes[0].MountRoot.String())
	assert.Equal(t, "/media/me/Other", volumes[1].MountRoot.String())
}

func TestMountinfoLookup_Labels(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires symlinks")
	}

	tmp := t.TempDir()
	labelDir := filepath.Join(tmp, "dev", "disk", "by-label")
	require.NoError(t, os.MkdirAll(labelDir, 0o755))
	require.NoError(t, os.Symlink("../../sdb1", filepath.Join(labelDir, `My\x20Disk`)))

	table := "61 22 8:17 / /media/me/My\\040Disk1 rw shared:34 - exfat " + filepath.Join(tmp, "dev", "sdb1") + " rw\n" +
		"62 22 8:33 / /media/me/NoLabel rw shared:35 - vfat /dev/sdc1 rw\n"
	mountinfo := filepath.Join(tmp, "mountinfo")
	require.NoError(t, os.WriteFile(mountinfo, []byte(table), 0o644))

	l := NewMountinfoLookup(afero.NewOsFs(), ParsePath("/media/me"))
	l.mountinfo = mountinfo
	l.labelDir = labelDir

	volumes, err := l.Volumes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"My Disk", "NoLabel"}, names(volumes))
	assert.Equal(t, "/media/me/My Disk1", volumes[0].MountRoot.String())

	r := NewResolver(afero.NewMemMapFs(), l, ParsePath("/media/me"))
	got, ok := r.ResolveActualPath(context.Background(), ParsePath("/media/me/My Disk/Shows"))
	require.True(t, ok)
	assert.Equal(t, "/media/me/My Disk1/Shows", got.String())
}

func TestMountinfoLookup_LabelsThroughDeviceAliases(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires symlinks")
	}

	tmp := t.TempDir()
	dev := filepath.Join(tmp, "dev")
	for _, dir := range []string{"disk/by-label", "disk/by-uuid", "mapper"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dev, dir), 0o755))
	}
	require.NoError(t, os.Symlink("../../dm-0", filepath.Join(dev, "disk", "by-label", "Vault")))
	require.NoError(t, os.Symlink("../dm-0", filepath.Join(dev, "mapper", "vault")))
	require.NoError(t, os.Symlink("../../sdb1", filepath.Join(dev, "disk", "by-label", "Photos")))
	require.NoError(t, os.Symlink("../../sdb1", filepath.Join(dev, "disk", "by-uuid", "1234-ABCD")))

	table := "61 22 253:0 / /media/me/vault rw shared:34 - ext4 " + filepath.Join(dev, "mapper", "vault") + " rw\n" +
		"62 22 8:17 / /media/me/PHOTOS1 rw shared:35 - vfat " + filepath.Join(dev, "disk", "by-uuid", "1234-ABCD") + " rw\n"
	mountinfo := filepath.Join(tmp, "mountinfo")
	require.NoError(t, os.WriteFile(mountinfo, []byte(table), 0o644))

	l := NewMountinfoLookup(afero.NewOsFs(), ParsePath("/media/me"))
	l.mountinfo = mountinfo
	l.labelDir = filepath.Join(dev, "disk", "by-label")

	volumes, err := l.Volumes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Vault", "Photos"}, names(volumes))
}

func Test_canonicalDevice(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires symlinks")
	}

	assert.Equal(t, "/dev/sdb1", canonicalDevice(nil, "/dev/../dev/sdb1"))

	tmp := t.TempDir()
	require.NoError(t, os.Symlink("b", filepath.Join(tmp, "a")))
	require.NoError(t, os.Symlink("a", filepath.Join(tmp, "b")))

	// a link cycle stops after a bounded number of hops
	lr := afero.NewOsFs().(afero.LinkReader)
	got := canonicalDevice(lr, filepath.Join(tmp, "a"))
	assert.Contains(t, []string{filepath.Join(tmp, "a"), filepath.Join(tmp, "b")}, got)
}
