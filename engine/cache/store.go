package cache

// Store is the storage policy behind a Cache. The default store grows without bound;
// a size-bounded policy can be substituted through WithStore without touching callers.
type Store[K comparable, V any] interface {
	// Get returns the value stored under key.
	//
	// Parameters:
	//   - key: the cache key
	//
	// Returns:
	//   - V: the stored value, or the zero value
	//   - bool: true if the key was present
	Get(key K) (V, bool)

	// Put stores value under key, replacing any previous value.
	//
	// Parameters:
	//   - key: the cache key
	//   - value: the value to store
	Put(key K, value V)

	// Len returns the number of stored entries.
	//
	// Returns:
	//   - int: the entry count
	Len() int

	// Range calls fn for every stored entry until fn returns false. Order is unspecified.
	//
	// Parameters:
	//   - fn: visitor receiving each key and value
	Range(fn func(key K, value V) bool)
}

// unboundedStore never evicts.
type unboundedStore[K comparable, V any] struct {
	entries map[K]V
}

var _ Store[string, int] = &unboundedStore[string, int]{}

// NewUnboundedStore creates a map-backed store with no eviction policy.
func NewUnboundedStore[K comparable, V any]() Store[K, V] {
	return &unboundedStore[K, V]{entries: make(map[K]V)}
}

func (s *unboundedStore[K, V]) Get(key K) (V, bool) {
	v, ok := s.entries[key]
	return v, ok
}

func (s *unboundedStore[K, V]) Put(key K, value V) {
	s.entries[key] = value
}

func (s *unboundedStore[K, V]) Len() int {
	return len(s.entries)
}

func (s *unboundedStore[K, V]) Range(fn func(key K, value V) bool) {
	for k, v := range s.entries {
		if !fn(k, v) {
			return
		}
	}
}
