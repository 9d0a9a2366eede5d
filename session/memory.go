package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. Expired entries are dropped on read.
type MemoryStore struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]memEntry
}

type memEntry struct {
	val       string
	expiresAt time.Time // zero means no expiration
}

func (e memEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// NewMemoryStore creates an empty MemoryStore. A ttl of 0 disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, items: make(map[string]memEntry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	entry, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		return "", false, nil
	}
	if entry.expired(time.Now()) {
		s.dropExpired(key, time.Now())
		return "", false, nil
	}
	return entry.val, true, nil
}

// dropExpired deletes key only if the entry is still expired under the write
// lock. A Set may have replaced it since the read lock was released.
func (s *MemoryStore) dropExpired(key string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.items[key]; ok && cur.expired(now) {
		delete(s.items, key)
	}
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	entry := memEntry{val: value}
	if s.ttl > 0 {
		entry.expiresAt = time.Now().Add(s.ttl)
	}
	s.mu.Lock()
	s.items[key] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

// Len returns the number of entries, including expired ones not yet read.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *MemoryStore) Close() error { return nil }

var _ Backend = (*MemoryStore)(nil)
