// Package cache provides a generic expiring map with optional capacity bounds.
// Entries carry their insertion time; expiry is evaluated lazily on read and
// eviction keeps the newest entries when a capacity is configured.
package cache

import (
	"slices"
	"time"
)

// Entry pairs a cached value with its insertion time.
type Entry[V any] struct {
	Value    V
	StoredAt time.Time
}

// Expiring is a TTL-bounded map. A zero TTL disables expiry; a zero
// capacity disables eviction. Expiring performs no locking; callers that
// share an instance across goroutines must synchronize externally.
type Expiring[K comparable, V any] struct {
	ttl      time.Duration
	capacity int
	entries  map[K]Entry[V]
	now      func() time.Time
}

// New creates an Expiring map with the given TTL and capacity.
func New[K comparable, V any](ttl time.Duration, capacity int) *Expiring[K, V] {
	return &Expiring[K, V]{
		ttl:      ttl,
		capacity: capacity,
		entries:  make(map[K]Entry[V]),
		now:      time.Now,
	}
}

// SetClock overrides the time source. Intended for tests.
func (e *Expiring[K, V]) SetClock(now func() time.Time) {
	e.now = now
}

// Get returns the value for key if present and unexpired. Expired entries
// are removed as a side effect of the lookup.
func (e *Expiring[K, V]) Get(key K) (V, bool) {
	var zero V

	entry, ok := e.entries[key]
	if !ok {
		return zero, false
	}

	if e.expired(entry) {
		delete(e.entries, key)
		return zero, false
	}

	return entry.Value, true
}

// Put stores value under key with the current time, then prunes expired
// entries and enforces the capacity bound.
func (e *Expiring[K, V]) Put(key K, value V) {
	e.entries[key] = Entry[V]{Value: value, StoredAt: e.now()}
	e.Prune()
}

// Delete removes key if present.
func (e *Expiring[K, V]) Delete(key K) {
	delete(e.entries, key)
}

// Clear removes all entries.
func (e *Expiring[K, V]) Clear() {
	clear(e.entries)
}

// Len returns the number of stored entries, including any not yet pruned.
func (e *Expiring[K, V]) Len() int {
	return len(e.entries)
}

// Keys returns all unexpired keys ordered by insertion time descending.
func (e *Expiring[K, V]) Keys() []K {
	type stamped struct {
		key K
		at  time.Time
	}

	stamps := make([]stamped, 0, len(e.entries))
	for k, entry := range e.entries {
		if e.expired(entry) {
			continue
		}
		stamps = append(stamps, stamped{key: k, at: entry.StoredAt})
	}

	slices.SortFunc(stamps, func(a, b stamped) int {
		return b.at.Compare(a.at)
	})

	keys := make([]K, len(stamps))
	for i, s := range stamps {
		keys[i] = s.key
	}
	return keys
}

// Prune removes expired entries and, when a capacity is set, evicts the
// oldest entries until at most capacity remain.
func (e *Expiring[K, V]) Prune() {
	for k, entry := range e.entries {
		if e.expired(entry) {
			delete(e.entries, k)
		}
	}

	if e.capacity <= 0 || len(e.entries) <= e.capacity {
		return
	}

	keys := e.Keys()
	for _, k := range keys[e.capacity:] {
		delete(e.entries, k)
	}
}

func (e *Expiring[K, V]) expired(entry Entry[V]) bool {
	return e.ttl > 0 && e.now().Sub(entry.StoredAt) > e.ttl
}
