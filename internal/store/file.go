package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File persists documents as a single JSON object on disk, one entry
// per key. Every write rewrites the whole file, mirroring the
// read-modify-write behavior of the documents themselves.
type File struct {
	mu   sync.Mutex
	path string
}

var _ DocumentStore = (*File)(nil)

// NewFile opens (or creates on first write) a file-backed store at path.
func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	docs, err := f.load()
	if err != nil {
		return nil, err
	}
	doc, ok := docs[key]
	if !ok {
		return nil, nil
	}
	return doc, nil
}

func (f *File) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	docs, err := f.load()
	if err != nil {
		return err
	}
	docs[key] = json.RawMessage(value)
	return f.save(docs)
}

func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	docs, err := f.load()
	if err != nil {
		return err
	}
	delete(docs, key)
	return f.save(docs)
}

func (f *File) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return make(map[string]json.RawMessage), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}
	docs := make(map[string]json.RawMessage)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &docs); err != nil {
			return nil, fmt.Errorf("parse store file: %w", err)
		}
	}
	return docs, nil
}

func (f *File) save(docs map[string]json.RawMessage) error {
	data, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store dir: %w", err)
		}
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	return nil
}
