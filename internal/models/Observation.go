package models

import "time"

const UnknownMap = "Unknown"

type QueryStatus string

const (
	QuerySuccess QueryStatus = "success"
	QueryFailed  QueryStatus = "failed"
)

// Player is a single entry of an A2S_PLAYER reply.
type Player struct {
	Name     string  `json:"name"`
	Duration float64 `json:"duration_seconds"`
}

// ServerStatus is what the status-query collaborator returns on success.
type ServerStatus struct {
	ServerName  string   `json:"server_name"`
	MapName     string   `json:"map_name"`
	MaxPlayers  int      `json:"max_players"`
	PlayerCount int      `json:"player_count"`
	Players     []Player `json:"players"`
}

// Observation is one polling result. It is never mutated after creation.
type Observation struct {
	Timestamp   time.Time `json:"timestamp"`
	PlayerCount *int      `json:"player_count"`
	MapName     string    `json:"map_name"`
	PlayerNames []string  `json:"player_names"`
}

// Count returns the player count or zero when it is absent.
func (o Observation) Count() int {
	if o.PlayerCount == nil {
		return 0
	}
	return *o.PlayerCount
}

func (o Observation) clone() Observation {
	c := o
	if o.PlayerCount != nil {
		n := *o.PlayerCount
		c.PlayerCount = &n
	}
	c.PlayerNames = append([]string(nil), o.PlayerNames...)
	return c
}

// PollResult is what the poller hands to the monitor on every tick.
type PollResult struct {
	Observation Observation   `json:"observation"`
	Status      QueryStatus   `json:"status"`
	Server      *ServerStatus `json:"server,omitempty"`
	Err         error         `json:"-"`
	Duration    time.Duration `json:"-"`
}

func IntPtr(n int) *int {
	return &n
}
