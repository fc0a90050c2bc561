package model

import "time"

// EventKind tags which timestamp of a prediction was used.
type EventKind int

const (
	Departure EventKind = iota
	Arrival
)

// String returns a human-readable representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case Departure:
		return "departure"
	case Arrival:
		return "arrival"
	default:
		return "unknown"
	}
}

// PredictionRecord is a raw prediction as returned by the feed. Both timestamps
// are optional and use ISO-8601 with an offset.
type PredictionRecord struct {
	DepartureTime string `json:"departure_time"`
	ArrivalTime   string `json:"arrival_time"`
}

// PredictionEvent is one upcoming vehicle departure or arrival.
type PredictionEvent struct {
	Time time.Time
	Kind EventKind
}

// FeedQuery identifies a prediction feed at the source.
type FeedQuery struct {
	Route        string `json:"route"`
	Stop         string `json:"stop"`
	Direction    int    `json:"direction"`
	RoutePattern string `json:"route_pattern"`
}
