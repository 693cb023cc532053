package models

import "time"

type RestartWindow string

const (
	Online        RestartWindow = "online"
	FirstRestart  RestartWindow = "first_restart"
	SecondRestart RestartWindow = "second_restart"
)

// ScheduleInfo is the map rotation view at a given instant.
type ScheduleInfo struct {
	Hour              int    `json:"hour"`
	Current           string `json:"current"`
	Previous          string `json:"previous"`
	Next              string `json:"next"`
	SecondsToNextHour int    `json:"seconds_to_next_hour"`
	MinutesToNextHour int    `json:"minutes_to_next_hour"`
}

type EventKind string

const (
	EventMapChange EventKind = "map_change"
	EventRestart   EventKind = "restart"
	EventMilestone EventKind = "milestone"
	EventView      EventKind = "view"
	EventLifecycle EventKind = "lifecycle"
)

// Event is a fired notification; Name is the sound event handed to the player.
type Event struct {
	Kind    EventKind `json:"kind"`
	Name    string    `json:"name"`
	Message string    `json:"message,omitempty"`
	At      time.Time `json:"at"`
}
