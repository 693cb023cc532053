package history

import (
	"reployer/internal/clock"
	"reployer/internal/history/interfaces"
	"reployer/internal/providers"
	svcinterfaces "reployer/internal/services/interfaces"
	"reployer/internal/structures"
	"sync"
)

type Scheduler struct {
	config  *structures.Config
	logger  providers.Logger
	store   svcinterfaces.HistoryStoreInterface
	clock   clock.Clock
	opsMu   sync.Mutex
	stop    chan struct{}
	stopped chan struct{}
}

// Init starts the rotation job. Without a rotation interval it is a no-op.
func (s *Scheduler) Init() {
	interval := s.config.History.RotateInterval
	if interval <= 0 || s.config.History.MaxBytes <= 0 {
		return
	}

	s.stop = make(chan struct{})
	s.stopped = make(chan struct{})
	ticker := s.clock.Ticker(interval)

	go func() {
		defer close(s.stopped)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.Chan():
				s.rotate()
			}
		}
	}()
}

func (s *Scheduler) rotate() {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	rotated, err := s.store.Rotate()
	if err != nil {
		s.logger.Errorf(providers.TypeHistory, "Error while rotating %s: %s", s.config.History.FilePath, err)
		return
	}
	if rotated {
		s.logger.Infof(providers.TypeHistory, "Rotated history log %s", s.config.History.FilePath)
	}
}

func (s *Scheduler) Stop() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.stopped
	s.stop = nil
}

// Restore seeds the window with the newest persisted records. It must run
// before the poller starts so the load never races an append.
func (s *Scheduler) Restore() error {
	if err := s.store.Init(); err != nil {
		return err
	}
	items, err := s.store.LoadRecent(s.config.History.Capacity)
	if err != nil {
		return err
	}
	s.store.Seed(items)
	s.logger.Infof(providers.TypeHistory, "Restored %d observations from %s", len(items), s.config.History.FilePath)
	return nil
}

// Persist runs a last rotation check after polling stopped.
func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeHistory, "Checking history log before exit...")
	_, err := s.store.Rotate()
	if err != nil {
		s.logger.Errorf(providers.TypeHistory, "Error while rotating on exit: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, store svcinterfaces.HistoryStoreInterface, clk clock.Clock) interfaces.SchedulerInterface {
	return &Scheduler{
		config: config,
		logger: logger,
		store:  store,
		clock:  clk,
	}
}
