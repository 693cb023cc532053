package models

import "time"

type ConnectAction struct {
	Name    string `json:"name"`
	Command string `json:"command"`
	Enabled bool   `json:"enabled"`
}

type Elapsed struct {
	Days    int    `json:"days"`
	Clock   string `json:"clock"`
	Seconds int64  `json:"seconds"`
}

// Snapshot is the immutable view model handed to UI sinks.
type Snapshot struct {
	Sequence      uint64          `json:"sequence"`
	GeneratedAt   time.Time       `json:"generated_at"`
	Observation   Observation     `json:"observation"`
	QueryStatus   QueryStatus     `json:"query_status"`
	ServerName    string          `json:"server_name"`
	MaxPlayers    int             `json:"max_players"`
	PlayerLines   []string        `json:"player_lines"`
	Window        []Observation   `json:"window"`
	Schedule      ScheduleInfo    `json:"schedule"`
	RestartWindow RestartWindow   `json:"restart_window"`
	FiredEvents   []Event         `json:"fired_events"`
	Actions       []ConnectAction `json:"actions"`
	Elapsed       *Elapsed        `json:"elapsed,omitempty"`
	ViewCount     int             `json:"view_count"`
}

// ViewUpdate is one message of the view-counter feed.
type ViewUpdate struct {
	Count int       `json:"count"`
	At    time.Time `json:"-"`
}
