package drafts

import "sync"

// SyncMap is a type-safe concurrent map guarded by a RWMutex.
// Reads vastly outnumber writes for drafts, which suits a RWMutex better
// than sync.Map's append-only design.
type SyncMap[K comparable, V any] struct {
	m  map[K]V
	mu sync.RWMutex
}

// NewSyncMap creates a new type-safe concurrent map.
func NewSyncMap[K comparable, V any]() *SyncMap[K, V] {
	return &SyncMap[K, V]{
		m: make(map[K]V),
	}
}

// Load returns the value stored for key. The ok result indicates whether a
// value was found.
func (sm *SyncMap[K, V]) Load(key K) (value V, ok bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	value, ok = sm.m[key]
	return
}

// Store sets the value for a key.
func (sm *SyncMap[K, V]) Store(key K, value V) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.m[key] = value
}

// LoadAndDelete removes key and returns the value it held, if any.
func (sm *SyncMap[K, V]) LoadAndDelete(key K) (value V, loaded bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	value, loaded = sm.m[key]
	delete(sm.m, key)
	return
}

// DeleteFunc removes every entry for which del returns true and returns the
// removed values. del runs under the write lock and must not call back into
// the map.
func (sm *SyncMap[K, V]) DeleteFunc(del func(K, V) bool) []V {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	var removed []V
	for k, v := range sm.m {
		if del(k, v) {
			removed = append(removed, v)
			delete(sm.m, k)
		}
	}
	return removed
}

// Len returns the number of items in the map.
func (sm *SyncMap[K, V]) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.m)
}
