package controllers

import (
	"fmt"
	"net/http"
	"reployer/internal/models"
	"reployer/internal/services"
	"time"

	json "github.com/goccy/go-json"
)

type HealthController struct {
	snapshots *services.SnapshotStore
	stream    *StreamController
	startTime time.Time
}

type healthResponse struct {
	Status        string             `json:"status"`
	Uptime        string             `json:"uptime"`
	UptimeSeconds float64            `json:"uptime_seconds"`
	QueryStatus   models.QueryStatus `json:"query_status,omitempty"`
	LastPoll      *time.Time         `json:"last_poll,omitempty"`
	Sequence      uint64             `json:"sequence"`
	StreamClients int                `json:"stream_clients"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "starting",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		StreamClients: hc.stream.Clients(),
	}
	if snapshot, ok := hc.snapshots.Latest(); ok {
		resp.Status = "ok"
		resp.QueryStatus = snapshot.QueryStatus
		resp.Sequence = snapshot.Sequence
		ts := snapshot.Observation.Timestamp
		resp.LastPoll = &ts
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(snapshots *services.SnapshotStore, stream *StreamController) *HealthController {
	return &HealthController{
		snapshots: snapshots,
		stream:    stream,
		startTime: time.Now(),
	}
}
