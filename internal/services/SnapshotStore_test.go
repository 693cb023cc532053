package services

import (
	"reployer/internal/models"
	"reployer/internal/testutil"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotStore_LatestAndInvalidation(t *testing.T) {
	cache := testutil.NewMockCache()
	cache.Set(CacheKeyStatus, []byte("old"))
	cache.Set(CacheKeyHistory, []byte("old"))
	store := NewSnapshotStore(cache)

	_, ok := store.Latest()
	assert.False(t, ok)

	store.Publish(models.Snapshot{Sequence: 7})
	latest, ok := store.Latest()
	assert.True(t, ok)
	assert.Equal(t, uint64(7), latest.Sequence)

	_, hit := cache.Get(CacheKeyStatus)
	assert.False(t, hit)
	_, hit = cache.Get(CacheKeyHistory)
	assert.False(t, hit)
}

func TestSnapshotStore_ConcurrentReaders(t *testing.T) {
	store := NewSnapshotStore(testutil.NewMockCache())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				store.Latest()
			}
		}()
	}
	for seq := uint64(1); seq <= 100; seq++ {
		store.Publish(models.Snapshot{Sequence: seq})
	}
	wg.Wait()

	latest, _ := store.Latest()
	assert.Equal(t, uint64(100), latest.Sequence)
}

func TestSnapshotStore_CacheIfCurrentRejectsOlderSequence(t *testing.T) {
	cache := testutil.NewMockCache()
	store := NewSnapshotStore(cache)

	assert.False(t, store.CacheIfCurrent(CacheKeyStatus, 0, []byte("none")), "nothing published yet")

	store.Publish(models.Snapshot{Sequence: 1})
	read, _ := store.Latest()

	// a newer snapshot lands between the read and the cache write
	store.Publish(models.Snapshot{Sequence: 2})
	assert.False(t, store.CacheIfCurrent(CacheKeyStatus, read.Sequence, []byte("stale")))
	_, hit := cache.Get(CacheKeyStatus)
	assert.False(t, hit)

	assert.True(t, store.CacheIfCurrent(CacheKeyStatus, 2, []byte("fresh")))
	data, hit := cache.Get(CacheKeyStatus)
	assert.True(t, hit)
	assert.Equal(t, "fresh", string(data))
}
