package memo

import (
	"container/list"
	"context"
	"sync"
)

// MemoryStore is a process-local Store.
//
// With MaxEntries > 0 it evicts the least recently used entry once full;
// otherwise it grows without bound.
type MemoryStore struct {
	mu         sync.Mutex
	maxEntries int
	entries    map[string]*list.Element
	lru        *list.List
}

type memoryEntry struct {
	key   string
	value []byte
}

// NewMemoryStore creates an in-memory store. maxEntries <= 0 disables eviction.
func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		lru:        list.New(),
	}
}

// Get retrieves a copy of the stored value.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	s.lru.MoveToFront(elem)

	value := elem.Value.(*memoryEntry).value
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

// Set stores a copy of value. Existing entries are replaced.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[key]; ok {
		elem.Value.(*memoryEntry).value = stored
		s.lru.MoveToFront(elem)
		return nil
	}

	s.entries[key] = s.lru.PushFront(&memoryEntry{key: key, value: stored})

	if s.maxEntries > 0 && s.lru.Len() > s.maxEntries {
		s.evictOldest()
	}
	return nil
}

// Delete removes a value. Idempotent - no error on miss.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[key]; ok {
		s.lru.Remove(elem)
		delete(s.entries, key)
	}
	return nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Len()
}

// evictOldest removes the least recently used entry (caller must hold lock).
func (s *MemoryStore) evictOldest() {
	elem := s.lru.Back()
	if elem == nil {
		return
	}
	s.lru.Remove(elem)
	delete(s.entries, elem.Value.(*memoryEntry).key)
}

var (
	_ Store  = (*MemoryStore)(nil)
	_ Pinger = (*MemoryStore)(nil)
)
