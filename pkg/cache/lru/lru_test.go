package lru

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_Basic(t *testing.T) {
	cache := New[string, int](Config{MaxSize: 10})

	cache.Set("feed", 15)
	v, ok := cache.Get("feed")
	require.True(t, ok)
	assert.Equal(t, 15, v)

	_, ok = cache.Get("missing")
	assert.False(t, ok)

	cache.Delete("feed")
	_, ok = cache.Get("feed")
	assert.False(t, ok)

	cache.Set("a", 1)
	cache.Set("b", 2)
	assert.Equal(t, 2, cache.Len())
	cache.Purge()
	assert.Equal(t, 0, cache.Len())

	stats := cache.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(2), stats.Misses)
}

func TestLRU_Eviction(t *testing.T) {
	var evicted []string
	cache := New[string, int](Config{MaxSize: 2}, WithOnEvict(func(k string, _ int) {
		evicted = append(evicted, k)
	}))

	cache.Set("a", 1)
	cache.Set("b", 2)
	_, _ = cache.Get("a") // a 变为最近使用
	cache.Set("c", 3)

	_, ok := cache.Get("b")
	assert.False(t, ok)
	assert.Equal(t, []string{"b"}, evicted)
	assert.Equal(t, uint64(1), cache.Stats().Evictions)
}

func TestLRU_TTL(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := New[string, int](Config{MaxSize: 10, DefaultTTL: time.Minute},
		WithClock[string, int](func() time.Time { return now }))

	cache.Set("k", 1)
	cache.SetWithTTL("forever", 2, 0)

	now = now.Add(59 * time.Second)
	_, ok := cache.Get("k")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok = cache.Get("k")
	assert.False(t, ok)

	_, ok = cache.Get("forever")
	assert.True(t, ok)
}

func TestLRU_GetOrCreate(t *testing.T) {
	cache := New[int, float64](Config{MaxSize: 10})
	calls := 0
	create := func() (float64, error) {
		calls++
		return 180, nil
	}

	v, err := cache.GetOrCreate(3, create)
	require.NoError(t, err)
	assert.Equal(t, 180.0, v)
	v, err = cache.GetOrCreate(3, create)
	require.NoError(t, err)
	assert.Equal(t, 180.0, v)
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	_, err = cache.GetOrCreate(4, func() (float64, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	_, ok := cache.Get(4)
	assert.False(t, ok)
}

func TestLRU_Concurrent(t *testing.T) {
	cache := New[int, int](Config{MaxSize: 64})
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				cache.Set(i%100, g)
				cache.Get(i % 50)
			}
		}(g)
	}
	wg.Wait()
	assert.LessOrEqual(t, cache.Len(), 64)
}
