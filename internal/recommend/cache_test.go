package recommend_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noctalia/sleepsense/internal/recommend"
)

func TestFIFOCache_PutGet(t *testing.T) {
	cache := recommend.NewFIFOCache(10)

	_, ok := cache.Get("missing")
	assert.False(t, ok)

	cache.Put("key", "value")
	got, ok := cache.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "value", got)
}

func TestFIFOCache_EvictsOldestWhenFull(t *testing.T) {
	cache := recommend.NewFIFOCache(3)

	cache.Put("a", "1")
	cache.Put("b", "2")
	cache.Put("c", "3")
	cache.Put("d", "4")

	_, ok := cache.Get("a")
	assert.False(t, ok, "oldest entry should be evicted")

	for _, key := range []string{"b", "c", "d"} {
		_, ok := cache.Get(key)
		assert.True(t, ok, "entry %s should survive", key)
	}
	assert.Equal(t, 3, cache.Len())
}

func TestFIFOCache_UpdateDoesNotEvict(t *testing.T) {
	cache := recommend.NewFIFOCache(2)

	cache.Put("a", "1")
	cache.Put("b", "2")
	cache.Put("a", "updated")

	got, ok := cache.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "updated", got)

	// "a" keeps its original insertion age, so it is still evicted first
	cache.Put("c", "3")
	_, ok = cache.Get("a")
	assert.False(t, ok)
	_, ok = cache.Get("b")
	assert.True(t, ok)
}

func TestFIFOCache_ZeroCapacityUsesDefault(t *testing.T) {
	cache := recommend.NewFIFOCache(0)

	for i := 0; i < recommend.DefaultCacheCapacity+1; i++ {
		cache.Put(fmt.Sprintf("key-%d", i), "x")
	}

	assert.Equal(t, recommend.DefaultCacheCapacity, cache.Len())
}
