package registry

import "sync"

// Registry is a concurrency-safe map from K to V, tuned for reads.
type Registry[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
	limit   int
}

// New creates an empty, unbounded registry.
func New[K comparable, V any]() *Registry[K, V] {
	return &Registry[K, V]{entries: make(map[K]V)}
}

// NewBounded creates an empty registry holding at most limit entries.
// Adding a key to a full registry first removes every entry. A limit below
// one means unbounded.
func NewBounded[K comparable, V any](limit int) *Registry[K, V] {
	r := New[K, V]()
	if limit > 0 {
		r.limit = limit
	}
	return r
}

// Register adds or replaces the value for key.
func (r *Registry[K, V]) Register(key K, value V) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store(key, value)
}

// RegisterMany adds or replaces every entry of entries.
func (r *Registry[K, V]) RegisterMany(entries map[K]V) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range entries {
		r.store(k, v)
	}
}

// store writes under the write lock.
func (r *Registry[K, V]) store(key K, value V) {
	if _, exists := r.entries[key]; !exists && r.limit > 0 && len(r.entries) >= r.limit {
		clear(r.entries)
	}
	r.entries[key] = value
}

// Get returns the value for key.
func (r *Registry[K, V]) Get(key K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[key]
	return v, ok
}

// MustGet returns the value for key and panics when it is missing. It is
// meant for tables filled at init time.
func (r *Registry[K, V]) MustGet(key K) V {
	v, ok := r.Get(key)
	if !ok {
		panic("registry: key not found")
	}
	return v
}

// Has reports whether key is present.
func (r *Registry[K, V]) Has(key K) bool {
	_, ok := r.Get(key)
	return ok
}

// Delete removes key.
func (r *Registry[K, V]) Delete(key K) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
}

// Clear removes every entry.
func (r *Registry[K, V]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.entries)
}

// Len returns the number of entries.
func (r *Registry[K, V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Keys returns the keys in no particular order.
func (r *Registry[K, V]) Keys() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]K, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	return keys
}

func (r *Registry[K, V]) snapshot() map[K]V {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := make(map[K]V, len(r.entries))
	for k, v := range r.entries {
		s[k] = v
	}
	return s
}

// Range calls fn for each entry of a snapshot until fn returns false.
func (r *Registry[K, V]) Range(fn func(K, V) bool) {
	for k, v := range r.snapshot() {
		if !fn(k, v) {
			return
		}
	}
}

// Find returns the first entry of a snapshot for which match is true.
// When several entries match, which one is returned is unspecified.
func (r *Registry[K, V]) Find(match func(K, V) bool) (K, V, bool) {
	for k, v := range r.snapshot() {
		if match(k, v) {
			return k, v, true
		}
	}
	var (
		k K
		v V
	)
	return k, v, false
}

// GetOrCreate returns the value for key, building it with create when it
// is missing. create runs at most once per missing key.
func (r *Registry[K, V]) GetOrCreate(key K, create func() V) V {
	if v, ok := r.Get(key); ok {
		return v
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.entries[key]; ok {
		return v
	}
	v := create()
	r.store(key, v)
	return v
}
