package events

import (
	"time"

	"github.com/kilianp07/commutewatch/core/model"
)

// Outcome classifies how a poll cycle ended.
type Outcome string

const (
	OutcomeOK           Outcome = "ok"
	OutcomeFetchError   Outcome = "fetch_error"
	OutcomeNoData       Outcome = "no_data"
	OutcomeNoConnection Outcome = "no_connection"
	// OutcomeCancelled marks a cycle interrupted by shutdown. It carries no
	// alert and no sleep.
	OutcomeCancelled Outcome = "cancelled"
)

// FeedLeads holds the normalised lead times of one feed.
type FeedLeads struct {
	Feed      string
	Label     string
	LeadTimes []int
}

// CycleEvent summarises one poll cycle of a monitor.
type CycleEvent struct {
	ID      string
	Monitor string
	Started time.Time
	// AsOf is the instant every lead time of the cycle was computed against.
	AsOf        time.Time
	Outcome     Outcome
	Feeds       []FeedLeads
	Connections []model.Connection
	Optimal     *model.Connection
	// Reference is the lead time used for scheduling and alerting; only
	// meaningful when Outcome is OutcomeOK.
	Reference int
	Alert     model.AlertClass
	AlertText string
	Sleep     time.Duration
	Err       error
}

// NextLeadTime returns the first lead time of the first feed, if any.
func (c CycleEvent) NextLeadTime() (int, bool) {
	if len(c.Feeds) == 0 || len(c.Feeds[0].LeadTimes) == 0 {
		return 0, false
	}
	return c.Feeds[0].LeadTimes[0], true
}
