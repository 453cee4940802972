// Package staging keeps uploaded files on local disk between the HTTP request and the
// object store. Files live under <root>/<folder>/<uuid>-<original name>.
package staging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidName is returned for folder or file names that are not a single safe path segment.
var ErrInvalidName = errors.New("invalid name")

// Store writes staged files below a root directory.
type Store struct {
	root string
}

// NewStore creates a Store rooted at dir. The directory is created lazily on first use.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the staging root directory.
func (s *Store) Root() string {
	return s.root
}

// File is a staged upload. It is read once and then removed.
type File struct {
	Path     string
	Name     string
	Original string
	Size     int64
}

// Open opens the staged file for reading.
func (f *File) Open() (*os.File, error) {
	return os.Open(f.Path)
}

// Remove deletes the staged file. Removing a file that is already gone is not an error.
func (f *File) Remove() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove staged file: %w", err)
	}
	return nil
}

// Stage copies r into a new file under folder, named after filename with a unique
// prefix. The folder is created if missing.
func (s *Store) Stage(folder, filename string, r io.Reader) (*File, error) {
	folder, err := CleanSegment(folder)
	if err != nil {
		return nil, fmt.Errorf("folder: %w", err)
	}
	original, err := CleanFilename(filename)
	if err != nil {
		return nil, fmt.Errorf("filename: %w", err)
	}

	dir := filepath.Join(s.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	name := uuid.New().String() + "-" + original
	path := filepath.Join(dir, name)

	// O_EXCL: a staged name is never reused.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create staged file: %w", err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("write staged file: %w", err)
	}

	return &File{Path: path, Name: name, Original: original, Size: n}, nil
}

// CleanSegment trims s and checks that it can be used as exactly one path segment.
func CleanSegment(s string) (string, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "", s == ".", s == "..":
		return "", ErrInvalidName
	case strings.ContainsAny(s, "/\\\x00"):
		return "", ErrInvalidName
	}
	return s, nil
}

// CleanFilename reduces a client-supplied filename to its base name. Browsers on some
// platforms send full paths; anything that still is not a single segment is rejected.
func CleanFilename(name string) (string, error) {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 {
		name = name[i+1:]
	}
	return CleanSegment(name)
}
