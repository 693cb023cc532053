package services

import (
	"reployer/internal/models"
	"reployer/internal/providers"
	"sync"
)

// Cache keys of the encoded API responses derived from the latest snapshot.
const (
	CacheKeyStatus  = "status"
	CacheKeyHistory = "history"
)

// SnapshotStore keeps the latest snapshot for readers outside the monitor
// goroutine, such as HTTP handlers.
type SnapshotStore struct {
	mu     sync.RWMutex
	latest models.Snapshot
	has    bool
	cache  providers.CacheProviderInterface
}

func NewSnapshotStore(cache providers.CacheProviderInterface) *SnapshotStore {
	return &SnapshotStore{cache: cache}
}

// Publish swaps the latest snapshot and drops the responses encoded from
// the previous one. Both happen under the write lock so CacheIfCurrent
// cannot store a response of an older snapshot afterwards.
func (s *SnapshotStore) Publish(snapshot models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = snapshot
	s.has = true
	s.cache.Del(CacheKeyStatus)
	s.cache.Del(CacheKeyHistory)
}

// CacheIfCurrent stores an encoded response computed from the snapshot with
// the given sequence. It is a no-op once a newer snapshot was published.
func (s *SnapshotStore) CacheIfCurrent(key string, sequence uint64, data []byte) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.has || s.latest.Sequence != sequence {
		return false
	}
	s.cache.Set(key, data)
	return true
}

func (s *SnapshotStore) Latest() (models.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.has
}
