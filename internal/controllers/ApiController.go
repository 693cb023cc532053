package controllers

import (
	"net/http"
	"reployer/internal/clock"
	"reployer/internal/models"
	"reployer/internal/providers"
	"reployer/internal/services"

	json "github.com/goccy/go-json"
)

// Refresher triggers an out-of-band poll.
type Refresher interface {
	Refresh()
}

type ApiController struct {
	logger    providers.Logger
	snapshots *services.SnapshotStore
	calc      *services.ScheduleCalculator
	refresher Refresher
	cache     providers.CacheProviderInterface
	clock     clock.Clock
}

type scheduleResponse struct {
	models.ScheduleInfo
	RestartWindow models.RestartWindow `json:"restart_window"`
	Table         []string             `json:"table"`
}

func NewApiController(logger providers.Logger, snapshots *services.SnapshotStore, calc *services.ScheduleCalculator, refresher Refresher, cache providers.CacheProviderInterface, clk clock.Clock) *ApiController {
	return &ApiController{
		logger:    logger,
		snapshots: snapshots,
		calc:      calc,
		refresher: refresher,
		cache:     cache,
		clock:     clk,
	}
}

func writeJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// serveFromCacheOrCompute caches the encoded response only while the
// snapshot it was computed from is still the latest one.
func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, uint64, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, data)
		return
	}

	result, sequence, err := compute()
	if err != nil {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		ac.logger.Errorf(providers.TypeGet, "Encode %s: %s", cacheKey, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.snapshots.CacheIfCurrent(cacheKey, sequence, gson)
	writeJSON(w, http.StatusOK, gson)
}

func (ac *ApiController) latest() (any, uint64, error) {
	snapshot, ok := ac.snapshots.Latest()
	if !ok {
		return nil, 0, errNoSnapshot
	}
	return snapshot, snapshot.Sequence, nil
}

// GetStatus answers with the latest snapshot.
func (ac *ApiController) GetStatus(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, services.CacheKeyStatus, ac.latest)
}

// GetHistory answers with the rolling observation window, oldest first.
func (ac *ApiController) GetHistory(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, services.CacheKeyHistory, func() (any, uint64, error) {
		snapshot, ok := ac.snapshots.Latest()
		if !ok {
			return nil, 0, errNoSnapshot
		}
		return snapshot.Window, snapshot.Sequence, nil
	})
}

func (ac *ApiController) GetSchedule(w http.ResponseWriter, r *http.Request) {
	now := ac.clock.Now()
	gson, err := json.Marshal(scheduleResponse{
		ScheduleInfo:  ac.calc.Current(now),
		RestartWindow: ac.calc.RestartWindow(now),
		Table:         ac.calc.Table(),
	})
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, gson)
}

func (ac *ApiController) Refresh(w http.ResponseWriter, r *http.Request) {
	ac.refresher.Refresh()
	ac.logger.Debugf(providers.TypePost, "Manual refresh requested from %s", r.RemoteAddr)
	w.WriteHeader(http.StatusAccepted)
}
