// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package store

import (
	"sync"

	"github.com/jonboulle/clockwork"
)

// MemoryStore keeps records for the lifetime of the process only.
type MemoryStore struct {
	clock clockwork.Clock

	mu      sync.RWMutex
	records map[string]Record
	closed  bool
}

// NewMemoryStore returns a Store that keeps its records in memory only.
func NewMemoryStore(clock clockwork.Clock) *MemoryStore {
	return &MemoryStore{
		clock:   clock,
		records: make(map[string]Record),
	}
}

func (m *MemoryStore) Save(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.records[key] = Record{Value: value, UpdatedAt: m.clock.Now()}
	return nil
}

func (m *MemoryStore) Load(key string) (Record, bool, error) {
	if key == "" {
		return Record{}, false, ErrEmptyKey
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return Record{}, false, ErrClosed
	}
	rec, ok := m.records[key]
	return rec, ok, nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
