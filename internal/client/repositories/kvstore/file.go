package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
)

// FileRepository keeps all keys in one JSON object on disk. Every write
// loads the current document, mutates it and replaces the file via rename,
// so readers never observe a partially written file.
type FileRepository struct {
	path string
	mu   sync.Mutex
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) load() (map[string][]byte, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string][]byte{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}

	m := map[string][]byte{}
	if len(data) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.path, err)
	}
	return m, nil
}

func (r *FileRepository) save(m map[string][]byte) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}

func (r *FileRepository) update(fn func(m map[string][]byte)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.load()
	if err != nil {
		return err
	}
	fn(m)
	return r.save(m)
}

func (r *FileRepository) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.load()
	if err != nil {
		return nil, err
	}
	return m[key], nil
}

func (r *FileRepository) Set(_ context.Context, key string, value []byte) error {
	return r.update(func(m map[string][]byte) { m[key] = value })
}

func (r *FileRepository) SetMany(_ context.Context, values map[string][]byte) error {
	return r.update(func(m map[string][]byte) { maps.Copy(m, values) })
}

func (r *FileRepository) DeleteMany(_ context.Context, keys ...string) error {
	return r.update(func(m map[string][]byte) {
		for _, k := range keys {
			delete(m, k)
		}
	})
}

func (r *FileRepository) Close() error { return nil }
