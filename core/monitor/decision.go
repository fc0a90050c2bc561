package monitor

import (
	"strings"
	"time"

	"github.com/kilianp07/commutewatch/core/alert"
	"github.com/kilianp07/commutewatch/core/connection"
	"github.com/kilianp07/commutewatch/core/events"
	"github.com/kilianp07/commutewatch/core/model"
)

// Decision is what a cycle concludes from lead times alone.
type Decision struct {
	Outcome     events.Outcome
	Reference   int
	Connections []model.Connection
	Optimal     *model.Connection
	Sleep       time.Duration
}

// Decide applies the no-data, connection and scheduling rules to ascending
// lead times, one slice per feed in construction order. A missing slice is an
// empty feed. Decide never notifies.
func (m *Monitor) Decide(leads ...[]int) Decision {
	if !m.bridge {
		l := feedLeads(leads, 0)
		if len(l) == 0 {
			return Decision{Outcome: events.OutcomeNoData, Sleep: minutes(m.cfg.RetryNoData)}
		}
		return Decision{Outcome: events.OutcomeOK, Reference: l[0], Sleep: minutes(m.scheduler.Interval(l))}
	}

	trains, buses := feedLeads(leads, 0), feedLeads(leads, 1)
	if len(trains) == 0 || len(buses) == 0 {
		return Decision{Outcome: events.OutcomeNoData, Sleep: minutes(m.cfg.RetryNoData)}
	}
	res := connection.Match(trains, buses, m.cfg.TransferTime)
	if !res.Found() {
		return Decision{Outcome: events.OutcomeNoConnection, Sleep: minutes(m.cfg.retryNoConnection())}
	}
	optimal := res.Optimal
	return Decision{
		Outcome:     events.OutcomeOK,
		Reference:   optimal.TrainTime,
		Connections: res.Candidates,
		Optimal:     &optimal,
		Sleep:       minutes(m.scheduler.Decide(optimal.TrainTime, len(trains))),
	}
}

// formatter returns the alert texts of the monitor. optimal is only read by
// the bridge.
func (m *Monitor) formatter(optimal *model.Connection) alert.Formatter {
	if m.bridge && optimal != nil {
		return BridgeFormatter(m.alertTitle, m.cfg.TransferPoint, *optimal)
	}
	feed := m.feeds[0]
	return alert.VehicleFormatter(m.alertTitle, feed.Noun, strings.ToLower(feed.Verb))
}

func feedLeads(leads [][]int, i int) []int {
	if i < len(leads) {
		return leads[i]
	}
	return nil
}
