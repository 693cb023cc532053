package services

import (
	"context"
	"fmt"
	"reployer/internal/clock"
	"reployer/internal/models"
	"reployer/internal/providers"
	"reployer/internal/services/interfaces"
	"reployer/internal/structures"
	"strings"
	"time"
)

type MonitorServiceInterface interface {
	OnPoll(res models.PollResult) models.Snapshot
	OnClock(now time.Time) *models.Snapshot
	OnViews(update models.ViewUpdate) *models.Snapshot
	Announce(kind models.EventKind, name string)
	Run(ctx context.Context, results <-chan models.PollResult, views <-chan models.ViewUpdate) error
}

// MonitorSinks groups the UI collaborators that receive every snapshot.
type MonitorSinks []interfaces.SnapshotSinkInterface

// MonitorService turns poll results and clock ticks into snapshots. All of
// its fields are owned by the goroutine running Run; OnPoll, OnClock and
// OnViews must not be called concurrently.
type MonitorService struct {
	conf    *structures.Config
	store   interfaces.HistoryStoreInterface
	calc    *ScheduleCalculator
	gate    *NotificationGate
	sinks   MonitorSinks
	sound   interfaces.SoundPlayerInterface
	clock   clock.Clock
	logger  providers.Logger
	metrics providers.MetricsProviderInterface

	lastObs    *models.Observation
	lastServer *models.ServerStatus
	lastStatus models.QueryStatus
	lastWindow models.RestartWindow
	lastEval   time.Time
	viewCount  int
	viewsSeen  bool
	seq        uint64
}

func NewMonitorService(
	conf *structures.Config,
	store interfaces.HistoryStoreInterface,
	calc *ScheduleCalculator,
	gate *NotificationGate,
	sinks MonitorSinks,
	sound interfaces.SoundPlayerInterface,
	clk clock.Clock,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) *MonitorService {
	return &MonitorService{
		conf:       conf,
		store:      store,
		calc:       calc,
		gate:       gate,
		sinks:      sinks,
		sound:      sound,
		clock:      clk,
		logger:     logger,
		metrics:    metrics,
		lastStatus: models.QueryFailed,
		lastWindow: models.Online,
	}
}

// OnPoll applies one poll result: history, schedule, notifications, then
// publication of the resulting snapshot.
func (m *MonitorService) OnPoll(res models.PollResult) models.Snapshot {
	obs := res.Observation
	now := obs.Timestamp
	if now.IsZero() {
		now = m.clock.Now()
	}
	now = m.advance(now)

	var fired []models.Event

	if res.Status == models.QuerySuccess {
		if err := m.store.Append(obs); err != nil {
			m.metrics.IncHistoryWriteErrors()
			m.logger.Errorf(providers.TypeHistory, "Append observation: %s", err)
		}
		m.metrics.SetPlayers(obs.Count())

		previous := ""
		if m.lastObs != nil && m.lastObs.MapName != models.UnknownMap {
			previous = m.lastObs.MapName
		}
		if ev := m.gate.CheckMapTransition(previous, obs.MapName, now); ev != nil {
			fired = append(fired, *ev)
		}
		if res.Server != nil {
			server := *res.Server
			m.lastServer = &server
		}
	} else if res.Err != nil {
		m.logger.Warnf(providers.TypePoll, "Query failed, keeping last known state: %s", res.Err)
	}

	m.lastObs = &obs
	m.lastStatus = res.Status

	fired = append(fired, m.checkClock(now)...)

	snapshot := m.buildSnapshot(now, fired)
	m.publish(snapshot)
	return snapshot
}

// OnClock evaluates the time-driven notifications between poll ticks. A
// snapshot is published only when an event fired or the window changed.
func (m *MonitorService) OnClock(now time.Time) *models.Snapshot {
	now = m.advance(now)
	before := m.lastWindow
	fired := m.checkClock(now)
	if len(fired) == 0 && before == m.lastWindow {
		return nil
	}

	snapshot := m.buildSnapshot(now, fired)
	m.publish(snapshot)
	return &snapshot
}

// OnViews records a view-counter update; each increase fires one event.
func (m *MonitorService) OnViews(update models.ViewUpdate) *models.Snapshot {
	now := update.At
	if now.IsZero() {
		now = m.clock.Now()
	}
	now = m.advance(now)

	var fired []models.Event
	if m.viewsSeen && update.Count > m.viewCount {
		fired = append(fired, models.Event{
			Kind:    models.EventView,
			Name:    orDefault(m.conf.Notifications.ViewSound, "view"),
			Message: fmt.Sprintf("views %d -> %d", m.viewCount, update.Count),
			At:      now,
		})
	}
	changed := !m.viewsSeen || update.Count != m.viewCount
	m.viewCount = update.Count
	m.viewsSeen = true

	if !changed {
		return nil
	}
	snapshot := m.buildSnapshot(now, fired)
	m.publish(snapshot)
	return &snapshot
}

// Announce plays a one-off sound such as the open/close chimes.
func (m *MonitorService) Announce(kind models.EventKind, name string) {
	if name == "" {
		return
	}
	m.metrics.IncEvents(string(kind))
	m.sound.Play(name)
}

// Run is the single consumer of poll results and feed updates. It returns
// when ctx is done or the results channel is closed.
func (m *MonitorService) Run(ctx context.Context, results <-chan models.PollResult, views <-chan models.ViewUpdate) error {
	ticker := m.clock.Ticker(m.conf.Poll.ClockInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res, ok := <-results:
			if !ok {
				return nil
			}
			m.OnPoll(res)
		case update, ok := <-views:
			if !ok {
				views = nil
				continue
			}
			m.OnViews(update)
		case now := <-ticker.Chan():
			m.OnClock(now)
		}
	}
}

// advance keeps evaluation time monotonic, so a poll result handled after
// a later clock tick is evaluated at that tick's time.
func (m *MonitorService) advance(now time.Time) time.Time {
	if now.Before(m.lastEval) {
		return m.lastEval
	}
	m.lastEval = now
	return now
}

func (m *MonitorService) checkClock(now time.Time) []models.Event {
	var fired []models.Event

	window := m.calc.RestartWindow(now)
	if ev := m.gate.CheckRestartTransition(m.lastWindow, window, now); ev != nil {
		fired = append(fired, *ev)
	}
	m.lastWindow = window

	if ev := m.gate.CheckMinuteMilestone(now); ev != nil {
		fired = append(fired, *ev)
	}
	return fired
}

func (m *MonitorService) publish(snapshot models.Snapshot) {
	for _, ev := range snapshot.FiredEvents {
		m.metrics.IncEvents(string(ev.Kind))
		m.logger.Infof(providers.TypeNotify, "%s: %s", ev.Kind, ev.Message)
		m.sound.Play(ev.Name)
	}
	for _, sink := range m.sinks {
		sink.Publish(snapshot)
	}
}

func (m *MonitorService) buildSnapshot(now time.Time, fired []models.Event) models.Snapshot {
	m.seq++

	obs := models.Observation{Timestamp: now, MapName: models.UnknownMap}
	if m.lastObs != nil {
		obs = *m.lastObs
	}

	snapshot := models.Snapshot{
		Sequence:      m.seq,
		GeneratedAt:   now,
		Observation:   obs,
		QueryStatus:   m.lastStatus,
		PlayerLines:   m.playerLines(obs),
		Window:        m.store.Window(),
		Schedule:      m.calc.Current(now),
		RestartWindow: m.lastWindow,
		FiredEvents:   fired,
		Actions:       m.actions(obs.MapName),
		Elapsed:       m.elapsed(now),
		ViewCount:     m.viewCount,
	}
	if snapshot.FiredEvents == nil {
		snapshot.FiredEvents = []models.Event{}
	}
	if m.lastServer != nil {
		snapshot.ServerName = m.lastServer.ServerName
		snapshot.MaxPlayers = m.lastServer.MaxPlayers
	}
	return snapshot
}

func (m *MonitorService) playerLines(obs models.Observation) []string {
	lines := []string{}
	if m.lastServer != nil && len(m.lastServer.Players) == len(obs.PlayerNames) {
		for _, p := range m.lastServer.Players {
			lines = append(lines, FormatPlayer(p))
		}
		return lines
	}
	return append(lines, obs.PlayerNames...)
}

// FormatPlayer renders "name (Hh Mm)", or just the name when the
// connection time is unknown.
func FormatPlayer(p models.Player) string {
	if p.Duration <= 0 {
		return p.Name
	}
	total := int(p.Duration)
	return fmt.Sprintf("%s (%dh %dm)", p.Name, total/3600, (total%3600)/60)
}

func (m *MonitorService) actions(mapName string) []models.ConnectAction {
	actions := make([]models.ConnectAction, 0, len(m.conf.Connect))
	for _, target := range m.conf.Connect {
		actions = append(actions, models.ConnectAction{
			Name:    target.Name,
			Command: target.Command,
			Enabled: m.lastStatus == models.QuerySuccess && connectAllowed(target, mapName),
		})
	}
	return actions
}

func connectAllowed(target structures.ConnectTarget, mapName string) bool {
	if target.RequireMap != "" && !strings.EqualFold(target.RequireMap, mapName) {
		return false
	}
	for _, excluded := range target.ExcludeMaps {
		if strings.EqualFold(excluded, mapName) {
			return false
		}
	}
	return true
}

func (m *MonitorService) elapsed(now time.Time) *models.Elapsed {
	epoch := m.conf.Schedule.EpochTime
	if epoch.IsZero() {
		return nil
	}
	d := now.Sub(epoch)
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	rem := total % 86400
	return &models.Elapsed{
		Days:    int(total / 86400),
		Clock:   fmt.Sprintf("%02d:%02d:%02d", rem/3600, (rem%3600)/60, rem%60),
		Seconds: total,
	}
}
