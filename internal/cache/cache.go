package cache

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bobmcallan/vire-tracker/internal/common"
)

// Clock returns the current time. Injected so freshness can be tested without sleeping.
type Clock func() time.Time

// Entry is the latest normalized provider result for one key.
type Entry[T any] struct {
	Key       string    `json:"key"`
	Payload   T         `json:"payload"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Store holds the latest payload per key with its fetch time.
// Entries are replaced wholesale and never evicted; stale entries stay readable
// until a newer successful fetch replaces them.
// Thread-safe with sync.RWMutex.
type Store[T any] struct {
	mu    sync.RWMutex
	items map[string]Entry[T]
	ttl   time.Duration
	now   Clock
}

// New creates a Store with the given TTL and clock. A nil clock uses time.Now,
// a non-positive TTL uses common.DefaultTTL.
func New[T any](ttl time.Duration, now Clock) *Store[T] {
	if ttl <= 0 {
		ttl = common.DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Store[T]{
		items: make(map[string]Entry[T]),
		ttl:   ttl,
		now:   now,
	}
}

// TTL returns the freshness window.
func (s *Store[T]) TTL() time.Duration { return s.ttl }

// Now returns the store clock's current time.
func (s *Store[T]) Now() time.Time { return s.now() }

// Get returns the entry for key regardless of freshness.
func (s *Store[T]) Get(key string) (Entry[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.items[key]
	return e, ok
}

// Set stores payload for key. A write older than the current entry is
// rejected and Set returns false.
func (s *Store[T]) Set(key string, payload T, fetchedAt time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.items[key]; ok && fetchedAt.Before(cur.FetchedAt) {
		return false
	}
	s.items[key] = Entry[T]{Key: key, Payload: payload, FetchedAt: fetchedAt}
	return true
}

// IsFresh reports whether key has an entry with now - fetchedAt < TTL.
func (s *Store[T]) IsFresh(key string, now time.Time) bool {
	s.mu.RLock()
	e, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		return false
	}
	return common.IsFresh(e.FetchedAt, now, s.ttl)
}

// Fresh returns the entry only when it is fresh at the store clock's time.
func (s *Store[T]) Fresh(key string) (Entry[T], bool) {
	e, ok := s.Get(key)
	if !ok || !common.IsFresh(e.FetchedAt, s.now(), s.ttl) {
		return Entry[T]{}, false
	}
	return e, true
}

// Delete removes key.
func (s *Store[T]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
}

// Keys returns all cached keys, sorted.
func (s *Store[T]) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of cached keys.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items)
}

// MakeKey builds a composite key such as symbol+category.
func MakeKey(parts ...string) string {
	return strings.Join(parts, ":")
}
