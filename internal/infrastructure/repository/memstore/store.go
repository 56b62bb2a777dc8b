// Package memstore provides the process-lifetime object cache backing the
// presentation repositories. Entries live until deleted or the process exits.
package memstore

import (
	"sync"
	"time"
)

// Entity is anything storable by key with a refreshable update timestamp.
type Entity[K comparable] interface {
	Key() K
	Touch(now time.Time)
}

// Store is a thread-safe generic keyed in-memory store. Read-after-write is
// guaranteed within a request path; concurrent writers to the same key are
// last-writer-wins.
type Store[K comparable, E Entity[K]] struct {
	mu    sync.RWMutex
	items map[K]E
}

// New constructs an empty store.
func New[K comparable, E Entity[K]]() *Store[K, E] {
	return &Store[K, E]{items: make(map[K]E)}
}

// Create stores the entity by its key, overwriting any existing entry.
func (s *Store[K, E]) Create(entity E) E {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[entity.Key()] = entity
	return entity
}

// Get returns the entity for key, reporting whether it was found.
func (s *Store[K, E]) Get(key K) (E, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entity, ok := s.items[key]
	return entity, ok
}

// Update refreshes the entity's update timestamp and overwrites it.
func (s *Store[K, E]) Update(entity E) E {
	s.mu.Lock()
	defer s.mu.Unlock()
	entity.Touch(time.Now().UTC())
	s.items[entity.Key()] = entity
	return entity
}

// Delete removes the entry, reporting whether it existed.
func (s *Store[K, E]) Delete(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; !ok {
		return false
	}
	delete(s.items, key)
	return true
}

// ListAll returns a snapshot of all entries, in no particular order.
func (s *Store[K, E]) ListAll() []E {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]E, 0, len(s.items))
	for _, entity := range s.items {
		out = append(out, entity)
	}
	return out
}

// Count returns the number of stored entries.
func (s *Store[K, E]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Clear removes every entry.
func (s *Store[K, E]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[K]E)
}
