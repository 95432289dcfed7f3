package syncmap

import "sync"

// Map is a thread-safe generic map structure
type Map[K comparable, V any] struct {
	mux sync.RWMutex
	m   map[K]V
}

// New creates a new instance of Map
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		m: make(map[K]V),
	}
}

// Get retrieves an item by key
func (r *Map[K, V]) Get(key K) (V, bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	v, ok := r.m[key]
	return v, ok
}

// Set adds or updates an item by key
func (r *Map[K, V]) Set(key K, value V) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.m[key] = value
}

// SetIfAbsent stores value only when key is not yet present and accept (when
// supplied) agrees. It returns the value held under key after the call and
// whether value was stored.
func (r *Map[K, V]) SetIfAbsent(key K, value V, accept func() bool) (V, bool) {
	return r.PutIf(key, value, nil, accept)
}

// PutIf stores value under key unless the current value is live. A nil live
// treats every existing value as live. accept runs under the write lock and
// can veto the store.
func (r *Map[K, V]) PutIf(key K, value V, live func(V) bool, accept func() bool) (V, bool) {
	r.mux.Lock()
	defer r.mux.Unlock()
	if existing, ok := r.m[key]; ok && (live == nil || live(existing)) {
		return existing, false
	}
	if accept != nil && !accept() {
		var zero V
		return zero, false
	}
	r.m[key] = value
	return value, true
}

// Delete removes an item by key
func (r *Map[K, V]) Delete(key K) {
	r.mux.Lock()
	defer r.mux.Unlock()
	delete(r.m, key)
}

// DeleteIf removes key only when match reports true for the stored value.
func (r *Map[K, V]) DeleteIf(key K, match func(V) bool) bool {
	r.mux.Lock()
	defer r.mux.Unlock()
	v, ok := r.m[key]
	if !ok || !match(v) {
		return false
	}
	delete(r.m, key)
	return true
}

// Len returns the number of stored items.
func (r *Map[K, V]) Len() int {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return len(r.m)
}

// List returns a slice of all items
func (r *Map[K, V]) List() []V {
	r.mux.RLock()
	defer r.mux.RUnlock()
	ret := make([]V, 0, len(r.m))
	for _, v := range r.m {
		ret = append(ret, v)
	}
	return ret
}

// Filter returns the items whose key satisfies keep.
func (r *Map[K, V]) Filter(keep func(K) bool) []V {
	r.mux.RLock()
	defer r.mux.RUnlock()
	var ret []V
	for k, v := range r.m {
		if keep(k) {
			ret = append(ret, v)
		}
	}
	return ret
}

// Keys returns a snapshot of all keys.
func (r *Map[K, V]) Keys() []K {
	r.mux.RLock()
	defer r.mux.RUnlock()
	ret := make([]K, 0, len(r.m))
	for k := range r.m {
		ret = append(ret, k)
	}
	return ret
}
