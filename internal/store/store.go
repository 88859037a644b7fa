// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package store persists small namespaced values across sessions.
package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	BackendYAML   = "yaml"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

var (
	// ErrEmptyKey is returned when a value is saved or loaded without a key.
	ErrEmptyKey = errors.New("store key must not be empty")

	// ErrClosed is returned when a closed store is used.
	ErrClosed = errors.New("store is closed")
)

// Record is a stored value together with the time it was last written.
type Record struct {
	Value     string    `yaml:"value"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// Store is a durable key-value store.
type Store interface {
	Save(key, value string) error
	Load(key string) (Record, bool, error)
	Close() error
}

// Open returns the store for the given backend. path is ignored by the memory backend.
func Open(backend, path string, clock clockwork.Clock) (Store, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	switch strings.ToLower(backend) {
	case BackendYAML:
		return NewFileStore(path, clock)
	case BackendSQLite:
		return NewSQLiteStore(path, clock)
	case BackendMemory:
		return NewMemoryStore(clock), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", backend)
	}
}
