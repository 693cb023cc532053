package interfaces

import (
	"context"
	"reployer/internal/models"
	"time"
)

// SnapshotSinkInterface receives every snapshot the monitor produces.
// Publish is called from the monitor goroutine and must not block.
type SnapshotSinkInterface interface {
	Publish(snapshot models.Snapshot)
}

// SoundPlayerInterface plays a named sound event, fire-and-forget.
type SoundPlayerInterface interface {
	Play(event string)
}

type HistoryStoreInterface interface {
	Init() error
	Append(o models.Observation) error
	LoadRecent(maxCount int) ([]models.Observation, error)
	Window() []models.Observation
	Seed(items []models.Observation)
	Rotate() (bool, error)
}

type StatusQuerierInterface interface {
	Query(ctx context.Context, address string, timeout time.Duration) (*models.ServerStatus, error)
}
