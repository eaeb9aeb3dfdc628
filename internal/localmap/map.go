// Package localmap implements the STORE node's in-memory key-value table.
//
// Big idea:
//
// A STORE node owns exactly one Map. Keys are unique — SET never replaces
// an existing value, it fails. REM deletes. There is no persistence: the
// map lives and dies with the process.
//
// We use chained bucket hashing rather than Go's built-in map so the
// collision behaviour and bucket count stay explicit and testable.
package localmap

import "sync"

// HashFunc reduces a key into a bucket index space. The caller supplies it
// so STORE and COORDINATOR can share the same hashing story if desired.
type HashFunc func(key string) uint32

type entry struct {
	key   string
	value string
	next  *entry
}

// Map is a fixed-bucket-count chained hash table.
//
// Safe for concurrent use: a single RWMutex guards every bucket. This is
// the simplest design that satisfies "all map operations MUST be protected
// by a lock" without the added complexity of per-bucket locks, which the
// access pattern here (short critical sections, no fan-out hot spot) does
// not reward.
type Map struct {
	mu      sync.RWMutex
	buckets []*entry
	hash    HashFunc
	count   int
}

// New allocates a Map with bucketCount buckets, all empty.
func New(bucketCount int, hash HashFunc) *Map {
	if bucketCount <= 0 {
		bucketCount = 1024
	}
	return &Map{
		buckets: make([]*entry, bucketCount),
		hash:    hash,
	}
}

func (m *Map) bucketIndex(key string) int {
	return int(m.hash(key) % uint32(len(m.buckets)))
}

// Insert adds key=value. Returns false (duplicate) if key already exists —
// SET never replaces a value, matching the chained-hashing insert contract.
func (m *Map) Insert(key, value string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.bucketIndex(key)
	for e := m.buckets[idx]; e != nil; e = e.next {
		if e.key == key {
			return false
		}
	}

	m.buckets[idx] = &entry{key: key, value: value, next: m.buckets[idx]}
	m.count++
	return true
}

// Lookup returns the value for key and whether it was found.
func (m *Map) Lookup(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := m.bucketIndex(key)
	for e := m.buckets[idx]; e != nil; e = e.next {
		if e.key == key {
			return e.value, true
		}
	}
	return "", false
}

// Remove deletes key if present. Returns false if the key was missing.
func (m *Map) Remove(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.bucketIndex(key)
	var prev *entry
	for e := m.buckets[idx]; e != nil; e = e.next {
		if e.key == key {
			if prev == nil {
				m.buckets[idx] = e.next
			} else {
				prev.next = e.next
			}
			m.count--
			return true
		}
		prev = e
	}
	return false
}

// Len returns the total number of entries across all buckets.
func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.count
}

// Close releases the map. No-op today — kept so callers can defer it
// uniformly with the other components that do own a resource to release.
func (m *Map) Close() error {
	return nil
}
