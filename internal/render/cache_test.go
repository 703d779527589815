package render

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseCache_BasicGetPut(t *testing.T) {
	c := NewResponseCache(10, time.Hour)

	_, _, ok := c.Get("map.geojson?year=2015")
	assert.False(t, ok)

	c.Put("map.geojson?year=2015", "application/geo+json", []byte(`{"type":"FeatureCollection"}`))
	data, ct, ok := c.Get("map.geojson?year=2015")
	require.True(t, ok)
	assert.Equal(t, "application/geo+json", ct)
	assert.Equal(t, []byte(`{"type":"FeatureCollection"}`), data)

	_, _, ok = c.Get("map.geojson?year=2010")
	assert.False(t, ok)
}

func TestResponseCache_TTLExpiration(t *testing.T) {
	c := NewResponseCache(10, 50*time.Millisecond)

	c.Put("k", "text/plain", []byte("v"))
	_, _, ok := c.Get("k")
	assert.True(t, ok)

	time.Sleep(60 * time.Millisecond)
	_, _, ok = c.Get("k")
	assert.False(t, ok)

	c.mu.RLock()
	_, exists := c.entries["k"]
	c.mu.RUnlock()
	assert.False(t, exists)
}

func TestResponseCache_LRUEviction_AccessOrder(t *testing.T) {
	c := NewResponseCache(3, time.Hour)

	c.Put("a", "", []byte("1"))
	c.Put("b", "", []byte("2"))
	c.Put("c", "", []byte("3"))

	// Touch "a" so "b" becomes the oldest.
	c.Get("a")
	c.Put("d", "", []byte("4"))

	_, _, okA := c.Get("a")
	_, _, okB := c.Get("b")
	_, _, okC := c.Get("c")
	_, _, okD := c.Get("d")
	assert.True(t, okA)
	assert.False(t, okB)
	assert.True(t, okC)
	assert.True(t, okD)
}

func TestResponseCache_UpdateExistingKey(t *testing.T) {
	c := NewResponseCache(10, time.Hour)

	c.Put("a", "", []byte("old"))
	c.Put("a", "", []byte("new"))

	data, _, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, []byte("new"), data)
	assert.Equal(t, 1, c.Stats().Entries)
}

func TestResponseCache_PurgeAndStats(t *testing.T) {
	c := NewResponseCache(100, time.Hour)

	c.Put("a", "", []byte("1"))
	c.Put("b", "", []byte("2"))
	c.Get("a") // hit
	c.Get("b") // hit
	c.Get("c") // miss

	stats := c.Stats()
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, 100, stats.MaxEntries)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.6667, stats.HitRate, 0.01)

	c.Purge()
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestResponseCache_ConcurrentAccess(t *testing.T) {
	c := NewResponseCache(1000, time.Hour)

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a' + n%26))
			c.Put(key, "", []byte("data"))
			c.Get(key)
		}(i)
	}
	wg.Wait()

	stats := c.Stats()
	assert.LessOrEqual(t, stats.Entries, 26)
	assert.Equal(t, int64(100), stats.Hits+stats.Misses)
}
