// Package cache provides the build-on-miss cache shared by the mesh, pipeline and texture libraries.
package cache

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/common"
)

// Cache returns a stored value for a key or builds, stores and returns it on first miss.
// A Cache is not safe for concurrent use; it is owned by a single rendering surface.
type Cache[K comparable, V any] interface {
	// GetOrBuild returns the value cached under key, invoking build on a miss.
	// A failed build stores nothing and returns a *BuildError.
	//
	// Parameters:
	//   - key: the content-derived cache key
	//   - build: constructs the value on a miss
	//
	// Returns:
	//   - V: the cached or newly built value
	//   - error: *BuildError if build failed
	GetOrBuild(key K, build func() (V, error)) (V, error)

	// Get returns the value cached under key without building.
	//
	// Parameters:
	//   - key: the cache key
	//
	// Returns:
	//   - V: the cached value, or the zero value
	//   - bool: true if the key was present
	Get(key K) (V, bool)

	// Len returns the number of cached entries.
	//
	// Returns:
	//   - int: the entry count
	Len() int

	// Builds returns how many successful builds the cache has performed.
	//
	// Returns:
	//   - int: the build count
	Builds() int

	// Each visits every cached value. Order is unspecified.
	//
	// Parameters:
	//   - fn: visitor receiving each value
	Each(fn func(value V))
}

// BuildError reports a failed build for a cache key.
type BuildError struct {
	// Cache is the name of the cache that attempted the build.
	Cache string
	// Key is the printed cache key.
	Key string
	// Err is the builder's error.
	Err error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%s cache: build %q: %v", e.Cache, e.Key, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

type cache[K comparable, V any] struct {
	name   string
	store  Store[K, V]
	builds int
}

var _ Cache[string, int] = &cache[string, int]{}

// New creates a named cache. The name appears in logs and errors.
//
// Parameters:
//   - name: cache name, e.g. "mesh"
//   - options: functional options to configure the cache
//
// Returns:
//   - Cache[K, V]: the configured cache, unbounded unless WithStore is given
func New[K comparable, V any](name string, options ...CacheBuilderOption[K, V]) Cache[K, V] {
	c := &cache[K, V]{name: name}
	for _, opt := range options {
		opt(c)
	}
	if c.store == nil {
		c.store = NewUnboundedStore[K, V]()
	}
	return c
}

func (c *cache[K, V]) GetOrBuild(key K, build func() (V, error)) (V, error) {
	if v, ok := c.store.Get(key); ok {
		return v, nil
	}
	v, err := build()
	if err != nil {
		var zero V
		return zero, &BuildError{Cache: c.name, Key: fmt.Sprint(key), Err: err}
	}
	c.store.Put(key, v)
	c.builds++
	common.Logger().Debug("cache build", "cache", c.name, "key", fmt.Sprint(key), "entries", c.store.Len())
	return v, nil
}

func (c *cache[K, V]) Get(key K) (V, bool) {
	return c.store.Get(key)
}

func (c *cache[K, V]) Len() int {
	return c.store.Len()
}

func (c *cache[K, V]) Builds() int {
	return c.builds
}

func (c *cache[K, V]) Each(fn func(value V)) {
	c.store.Range(func(_ K, v V) bool {
		fn(v)
		return true
	})
}
