package poller

import (
	"context"
	"reployer/internal/clock"
	"reployer/internal/models"
	"reployer/internal/providers"
	"reployer/internal/services/interfaces"
	"reployer/internal/structures"
	"sync"
	"time"
)

const defaultQueueSize = 16

// ServerPoller queries the game server on its own goroutine and hands each
// result, in order, to a single consumer through Results.
type ServerPoller struct {
	conf    *structures.Config
	querier interfaces.StatusQuerierInterface
	clock   clock.Clock
	logger  providers.Logger
	metrics providers.MetricsProviderInterface

	results chan models.PollResult
	refresh chan struct{}

	// touched only by the polling goroutine
	lastGood *models.Observation

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewServerPoller(conf *structures.Config, querier interfaces.StatusQuerierInterface, clk clock.Clock, logger providers.Logger, metrics providers.MetricsProviderInterface) *ServerPoller {
	size := conf.Poll.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	return &ServerPoller{
		conf:    conf,
		querier: querier,
		clock:   clk,
		logger:  logger,
		metrics: metrics,
		results: make(chan models.PollResult, size),
		refresh: make(chan struct{}, 1),
	}
}

// Results is closed once the polling goroutine has exited.
func (p *ServerPoller) Results() <-chan models.PollResult {
	return p.results
}

// Start launches the polling goroutine. The first query runs immediately.
func (p *ServerPoller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return ErrAlreadyRunning
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	p.running = true

	go p.run(ctx)
	return nil
}

// Refresh asks for an extra query as soon as the current one finished.
func (p *ServerPoller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Stop signals the loop and waits for it to exit. An in-flight query is
// allowed to finish or time out; grace bounds the wait.
func (p *ServerPoller) Stop(grace time.Duration) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.cancel()
	done := p.done
	p.mu.Unlock()

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-done:
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
		return nil
	case <-timer.C:
		return ErrStopTimeout
	}
}

// ConnectionTest runs one query without emitting a result.
func (p *ServerPoller) ConnectionTest(ctx context.Context) error {
	_, err := p.query(ctx)
	if err != nil {
		p.logger.Warnf(providers.TypePoll, "Connection test to %s failed: %s", p.conf.GameServer.Address, err)
		return err
	}
	p.logger.Infof(providers.TypePoll, "Connection test to %s successful", p.conf.GameServer.Address)
	return nil
}

func (p *ServerPoller) run(ctx context.Context) {
	defer close(p.done)
	defer close(p.results)

	ticker := p.clock.Ticker(p.conf.Poll.Interval)
	defer ticker.Stop()

	p.logger.Infof(providers.TypePoll, "Polling %s every %s", p.conf.GameServer.Address, p.conf.Poll.Interval)
	p.emit(ctx, p.Tick(ctx))

	for {
		select {
		case <-ctx.Done():
			p.logger.Infof(providers.TypePoll, "Poller stopped")
			return
		case <-ticker.Chan():
			p.emit(ctx, p.Tick(ctx))
		case <-p.refresh:
			p.emit(ctx, p.Tick(ctx))
		}
	}
}

func (p *ServerPoller) emit(ctx context.Context, res models.PollResult) {
	select {
	case p.results <- res:
	case <-ctx.Done():
	}
}

// Tick performs one query and builds its result. A failed query carries
// forward the last good map, count and players instead of reporting zero.
func (p *ServerPoller) Tick(ctx context.Context) models.PollResult {
	start := time.Now()
	status, err := p.query(ctx)
	duration := time.Since(start)
	now := p.clock.Now().UTC()

	p.metrics.ObserveQueryDuration(duration)

	if err != nil {
		p.metrics.IncPolls(string(models.QueryFailed))
		p.logger.Debugf(providers.TypePoll, "Query %s failed after %s: %s", p.conf.GameServer.Address, duration, err)
		return models.PollResult{
			Observation: p.staleObservation(now),
			Status:      models.QueryFailed,
			Err:         err,
			Duration:    duration,
		}
	}

	p.metrics.IncPolls(string(models.QuerySuccess))

	mapName := status.MapName
	if mapName == "" {
		mapName = models.UnknownMap
	}
	names := make([]string, 0, len(status.Players))
	for _, pl := range status.Players {
		names = append(names, pl.Name)
	}
	obs := models.Observation{
		Timestamp:   now,
		PlayerCount: models.IntPtr(status.PlayerCount),
		MapName:     mapName,
		PlayerNames: names,
	}
	p.lastGood = &obs

	return models.PollResult{
		Observation: obs,
		Status:      models.QuerySuccess,
		Server:      status,
		Duration:    duration,
	}
}

func (p *ServerPoller) staleObservation(now time.Time) models.Observation {
	if p.lastGood == nil {
		return models.Observation{
			Timestamp:   now,
			MapName:     models.UnknownMap,
			PlayerNames: []string{},
		}
	}
	obs := models.Observation{
		Timestamp:   now,
		MapName:     p.lastGood.MapName,
		PlayerNames: append([]string(nil), p.lastGood.PlayerNames...),
	}
	if p.lastGood.PlayerCount != nil {
		obs.PlayerCount = models.IntPtr(*p.lastGood.PlayerCount)
	}
	return obs
}

func (p *ServerPoller) query(ctx context.Context) (*models.ServerStatus, error) {
	timeout := p.conf.GameServer.QueryTimeout
	// a stop signal must not abort the query in flight
	qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	status, err := p.querier.Query(qctx, p.conf.GameServer.Address, timeout)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return nil, ErrEmptyReply
	}
	return status, nil
}
