package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrBuildBuildsOnce(t *testing.T) {
	c := New[string, int]("test")
	calls := 0
	build := func() (int, error) {
		calls++
		return 42, nil
	}

	v, err := c.GetOrBuild("a", build)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = c.GetOrBuild("a", build)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c.Builds())
	assert.Equal(t, 1, c.Len())
}

func TestFailedBuildIsNotInserted(t *testing.T) {
	c := New[string, int]("mesh")
	boom := errors.New("boom")

	_, err := c.GetOrBuild("bad", func() (int, error) { return 0, boom })
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "mesh", be.Cache)
	assert.Equal(t, "bad", be.Key)

	_, ok := c.Get("bad")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())

	v, err := c.GetOrBuild("bad", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

type countingStore struct {
	Store[string, int]
	puts int
}

func (s *countingStore) Put(key string, value int) {
	s.puts++
	s.Store.Put(key, value)
}

func TestWithStore(t *testing.T) {
	store := &countingStore{Store: NewUnboundedStore[string, int]()}
	c := New("custom", WithStore[string, int](store))

	_, _ = c.GetOrBuild("x", func() (int, error) { return 1, nil })
	_, _ = c.GetOrBuild("x", func() (int, error) { return 2, nil })
	_, _ = c.GetOrBuild("y", func() (int, error) { return 3, nil })

	assert.Equal(t, 2, store.puts)

	sum := 0
	c.Each(func(v int) { sum += v })
	assert.Equal(t, 4, sum)
}
