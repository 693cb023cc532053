package providers

import (
	"reployer/internal/structures"
	"testing"

	"github.com/stretchr/testify/assert"
)

type cacheMetricsTestInner struct {
	data map[string][]byte
}

func (c *cacheMetricsTestInner) Get(key string) ([]byte, bool) {
	v, ok := c.data[key]
	return v, ok
}
func (c *cacheMetricsTestInner) Set(key string, value []byte) {
	c.data[key] = value
}
func (c *cacheMetricsTestInner) Del(key string) {
	delete(c.data, key)
}

func TestMetricsCacheProvider_Hit(t *testing.T) {
	inner := &cacheMetricsTestInner{data: map[string][]byte{"status": []byte("{}")}}
	metrics := newTestMetrics()
	cache := &MetricsCacheProvider{inner: inner, metrics: metrics}

	val, ok := cache.Get("status")
	assert.True(t, ok)
	assert.Equal(t, []byte("{}"), val)
	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 0, metrics.misses)
}

func TestMetricsCacheProvider_Miss(t *testing.T) {
	inner := &cacheMetricsTestInner{data: map[string][]byte{}}
	metrics := newTestMetrics()
	cache := &MetricsCacheProvider{inner: inner, metrics: metrics}

	val, ok := cache.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, val)
	assert.Equal(t, 0, metrics.hits)
	assert.Equal(t, 1, metrics.misses)
}

func TestMetricsCacheProvider_SetAndDelDelegate(t *testing.T) {
	inner := &cacheMetricsTestInner{data: map[string][]byte{}}
	cache := &MetricsCacheProvider{inner: inner, metrics: newTestMetrics()}

	cache.Set("history", []byte("[]"))
	_, ok := inner.Get("history")
	assert.True(t, ok)

	cache.Del("history")
	_, ok = inner.Get("history")
	assert.False(t, ok)
}

func TestNewInstrumentedCacheProvider_DisabledIsPlainNoop(t *testing.T) {
	conf := &structures.Config{Cache: structures.CacheConfig{Enabled: false}}
	c := NewInstrumentedCacheProvider(conf, &testLogger{}, newTestMetrics())
	assert.IsType(t, &noopCache{}, c)
}

func TestNewInstrumentedCacheProvider_EnabledWraps(t *testing.T) {
	conf := &structures.Config{Cache: structures.CacheConfig{Enabled: true, Size: 1}}
	metrics := newTestMetrics()
	c := NewInstrumentedCacheProvider(conf, &testLogger{}, metrics)
	assert.IsType(t, &MetricsCacheProvider{}, c)

	c.Get("a")
	c.Set("a", []byte("1"))
	c.Get("a")
	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 1, metrics.misses)
}
