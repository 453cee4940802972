package file

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/radif/filegateway/internal/storage"
)

// memStorage is an in-memory storage.Storage. The *Func fields override the default
// behaviour when set.
type memStorage struct {
	mu       sync.Mutex
	objects  map[string][]byte
	putCalls int

	PutFunc  func(key string) error
	StatFunc func(key string) (storage.ObjectInfo, error)
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (m *memStorage) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	m.mu.Lock()
	m.putCalls++
	m.mu.Unlock()

	if m.PutFunc != nil {
		if err := m.PutFunc(key); err != nil {
			return err
		}
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = b
	return nil
}

func (m *memStorage) Stat(_ context.Context, key string) (storage.ObjectInfo, error) {
	if m.StatFunc != nil {
		return m.StatFunc(key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	if !ok {
		return storage.ObjectInfo{}, storage.ErrNotFound
	}
	return storage.ObjectInfo{Key: key, Size: int64(len(b)), LastModified: time.Now()}, nil
}

func (m *memStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memStorage) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.putCalls
}

type memLedger struct {
	uploads []Upload
	err     error
}

func (l *memLedger) Record(_ context.Context, u *Upload) error {
	if l.err != nil {
		return l.err
	}
	l.uploads = append(l.uploads, *u)
	return nil
}

func (l *memLedger) Recent(_ context.Context, limit int) ([]Upload, error) {
	if l.err != nil {
		return nil, l.err
	}
	out := make([]Upload, 0, limit)
	for i := len(l.uploads) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.uploads[i])
	}
	return out, nil
}
