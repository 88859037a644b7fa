// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jonboulle/clockwork"
	"gopkg.in/yaml.v3"
)

// FileStore keeps all records in a single YAML document. Writes replace the file atomically.
type FileStore struct {
	path  string
	clock clockwork.Clock

	mu     sync.Mutex
	closed bool
}

// NewFileStore returns a Store that keeps its records in the YAML file at path.
func NewFileStore(path string, clock clockwork.Clock) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("file store requires a path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{path: path, clock: clock}, nil
}

func (f *FileStore) Save(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}

	records, err := f.read()
	if err != nil {
		return err
	}
	records[key] = Record{Value: value, UpdatedAt: f.clock.Now().UTC()}
	return f.write(records)
}

func (f *FileStore) Load(key string) (Record, bool, error) {
	if key == "" {
		return Record{}, false, ErrEmptyKey
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return Record{}, false, ErrClosed
	}

	records, err := f.read()
	if err != nil {
		return Record{}, false, err
	}
	rec, ok := records[key]
	return rec, ok, nil
}

func (f *FileStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// read returns the records in the store file. A missing file is an empty store.
func (f *FileStore) read() (map[string]Record, error) {
	records := make(map[string]Record)
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return records, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store file %q: %w", f.path, err)
	}
	if err = yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse store file %q: %w", f.path, err)
	}
	if records == nil {
		records = make(map[string]Record)
	}
	return records, nil
}

func (f *FileStore) write(records map[string]Record) error {
	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode store records: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".store-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary store file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temporary store file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary store file: %w", err)
	}
	if err = os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace store file %q: %w", f.path, err)
	}
	return nil
}
