package cache

// CacheBuilderOption is a functional option for configuring a cache.
type CacheBuilderOption[K comparable, V any] func(c *cache[K, V])

// WithStore replaces the default unbounded store.
//
// Parameters:
//   - store: the storage policy to use
//
// Returns:
//   - CacheBuilderOption[K, V]: option function to apply
func WithStore[K comparable, V any](store Store[K, V]) CacheBuilderOption[K, V] {
	return func(c *cache[K, V]) {
		c.store = store
	}
}
