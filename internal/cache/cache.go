// Package cache provides the shared dependency-result cache. Entries are
// stored as encoded bytes with a per-entry TTL; expiry is lazy, so an entry
// older than its TTL is removed on the next lookup rather than by a sweeper.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"
	"time"
)

// Store defines cache operations shared by the in-memory and Redis backends.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) int
}

// Key builds a deterministic cache key from a dependency name and its call
// parameters. Identical calls always map to the same key.
func Key(dependency string, params any) string {
	h := fnv.New64a()
	if data, err := json.Marshal(params); err == nil {
		_, _ = h.Write(data)
	}
	return fmt.Sprintf("dep:%s:%x", dependency, h.Sum64())
}

type entry struct {
	value    []byte
	storedAt time.Time
	ttl      time.Duration
}

// MemoryStore is an in-process TTL cache with lazy expiry.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	clock   func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		clock:   time.Now,
	}
}

// Get returns the cached value for key. An entry whose age exceeds its TTL is
// treated as absent and removed.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if s.clock().Sub(e.storedAt) > e.ttl {
		s.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		if cur, still := s.entries[key]; still && s.clock().Sub(cur.storedAt) > cur.ttl {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores value under key unconditionally (last write wins).
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	s.mu.Lock()
	s.entries[key] = entry{value: value, storedAt: s.clock(), ttl: ttl}
	s.mu.Unlock()
}

// Delete removes key if present.
func (s *MemoryStore) Delete(_ context.Context, key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Clear drops all entries and returns the number removed.
func (s *MemoryStore) Clear(_ context.Context) int {
	s.mu.Lock()
	n := len(s.entries)
	s.entries = make(map[string]entry)
	s.mu.Unlock()
	return n
}

// Len returns the number of stored entries, including not-yet-collected
// expired ones.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
