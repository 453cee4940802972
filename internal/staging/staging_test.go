package staging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestStageCreatesFolderAndWritesContent(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "uploads"))

	f, err := store.Stage("finance", " report.pdf ", strings.NewReader("quarterly numbers"))
	require.NoError(t, err)

	assert.Equal(t, "report.pdf", f.Original)
	assert.True(t, strings.HasSuffix(f.Name, "-report.pdf"))
	assert.Equal(t, filepath.Join(store.Root(), "finance", f.Name), f.Path)
	assert.EqualValues(t, len("quarterly numbers"), f.Size)

	got, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.Equal(t, "quarterly numbers", string(got))
}

func TestStageNamesAreUnique(t *testing.T) {
	store := NewStore(t.TempDir())

	a, err := store.Stage("docs", "a.txt", strings.NewReader("one"))
	require.NoError(t, err)
	b, err := store.Stage("docs", "a.txt", strings.NewReader("two"))
	require.NoError(t, err)

	assert.NotEqual(t, a.Name, b.Name)
	entries, err := os.ReadDir(filepath.Join(store.Root(), "docs"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestStageExistingFolder(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, os.MkdirAll(filepath.Join(store.Root(), "docs"), 0o755))

	_, err := store.Stage("docs", "a.txt", strings.NewReader("x"))
	assert.NoError(t, err)
}

func TestStageRejectsTraversal(t *testing.T) {
	root := t.TempDir()
	store := NewStore(filepath.Join(root, "uploads"))

	for _, folder := range []string{"", "  ", ".", "..", "../etc", "a/b", `a\b`, "a\x00b"} {
		_, err := store.Stage(folder, "a.txt", strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidName, "folder %q", folder)
	}

	_, err := store.Stage("docs", "..", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = os.Stat(filepath.Join(root, "uploads"))
	assert.True(t, os.IsNotExist(err), "rejected names must not touch the disk")
}

func TestStageRemovesPartialFile(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Stage("docs", "a.txt", failingReader{})
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(store.Root(), "docs"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRemove(t *testing.T) {
	store := NewStore(t.TempDir())
	f, err := store.Stage("docs", "a.txt", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, f.Remove())
	_, err = os.Stat(f.Path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, f.Remove())
}

func TestCleanFilename(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"report.pdf", "report.pdf", false},
		{"  report.pdf ", "report.pdf", false},
		{`C:\Users\me\report.pdf`, "report.pdf", false},
		{"/tmp/report.pdf", "report.pdf", false},
		{"../../etc/passwd", "passwd", false},
		{"dir/", "", true},
		{"..", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := CleanFilename(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidName, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}
