package providers

import (
	"reployer/internal/structures"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func cacheConfig(enabled bool, size int, interval time.Duration) *structures.Config {
	return &structures.Config{
		Cache: structures.CacheConfig{
			Enabled: enabled,
			Size:    size,
		},
		Poll: structures.PollConfig{
			Interval: interval,
		},
	}
}

func TestCacheProvider_DisabledReturnsNoop(t *testing.T) {
	c := NewCacheProvider(cacheConfig(false, 10, 5*time.Second), &testLogger{})
	_, ok := c.Get("any")
	assert.False(t, ok)
	assert.IsType(t, &noopCache{}, c)
}

func TestCacheProvider_ZeroSizeReturnsNoop(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 0, 5*time.Second), &testLogger{})
	assert.IsType(t, &noopCache{}, c)
}

func TestCacheProvider_SetGetDel(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1, 5*time.Second), &testLogger{})
	assert.IsType(t, &CacheProvider{}, c)

	c.Set("status", []byte("v1"))
	val, ok := c.Get("status")
	assert.True(t, ok)
	assert.Equal(t, []byte("v1"), val)

	c.Set("status", []byte("v2"))
	val, _ = c.Get("status")
	assert.Equal(t, []byte("v2"), val)

	c.Del("status")
	_, ok = c.Get("status")
	assert.False(t, ok)
}

func TestCacheProvider_Miss(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1, 5*time.Second), &testLogger{})

	val, ok := c.Get("nonexistent")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestNoopCache_AlwaysMiss(t *testing.T) {
	c := &noopCache{}
	c.Set("key1", []byte("value1"))
	c.Del("key1")

	val, ok := c.Get("key1")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestCacheProvider_TTLExpiry(t *testing.T) {
	// sub-second poll interval is clamped to a 1s TTL
	c := NewCacheProvider(cacheConfig(true, 1, 500*time.Millisecond), &testLogger{})

	c.Set("key1", []byte("value1"))
	_, ok := c.Get("key1")
	assert.True(t, ok)

	time.Sleep(2100 * time.Millisecond)

	_, ok = c.Get("key1")
	assert.False(t, ok)
}
