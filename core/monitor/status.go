package monitor

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kilianp07/commutewatch/core/events"
	"github.com/kilianp07/commutewatch/core/model"
)

const (
	rule        = "============================================================"
	stampLayout = "2006-01-02 15:04:05"
	clockLayout = "03:04 PM"
)

// render writes the status block of ev up to the decision line. The alert
// line and closing rule follow in closeBlock once the alert has been raised.
// Write errors are ignored: the block is informational only.
func (m *Monitor) render(ev events.CycleEvent) {
	var b strings.Builder
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "%s - %s\n", m.title, ev.Started.Format(stampLayout))
	fmt.Fprintln(&b, rule)

	if ev.Outcome == events.OutcomeFetchError {
		fmt.Fprintf(&b, "Error fetching predictions: %v\n", ev.Err)
		fmt.Fprintf(&b, "Retrying in %d minutes...\n", int(ev.Sleep/time.Minute))
		m.write(&b)
		return
	}

	asOf := ev.AsOf
	if asOf.IsZero() {
		asOf = ev.Started
	}

	for i, f := range ev.Feeds {
		feed := m.feeds[i]
		if feed.Heading != "" {
			fmt.Fprintln(&b, feed.Heading)
		}
		if len(f.LeadTimes) == 0 {
			fmt.Fprintf(&b, "  No upcoming %s found.\n", plural(feed.Noun))
			continue
		}
		for n, lead := range f.LeadTimes {
			at := asOf.Add(time.Duration(lead) * time.Minute)
			fmt.Fprintf(&b, "  %s %d: %s in %d minutes (at %s)\n", feed.Noun, n+1, feed.Verb, lead, at.Format(clockLayout))
		}
		if !m.bridge && len(f.LeadTimes) > 1 {
			fmt.Fprintf(&b, "Time gaps between %s (minutes): %s\n", plural(feed.Noun), joinInts(gaps(f.LeadTimes)))
		}
	}

	switch ev.Outcome {
	case events.OutcomeNoData:
		fmt.Fprintf(&b, "No predictions available. Checking again in %d minutes...\n", int(ev.Sleep/time.Minute))
	case events.OutcomeNoConnection:
		fmt.Fprintf(&b, "No valid connections with a %d minute transfer. Checking again in %d minutes...\n",
			m.cfg.TransferTime, int(ev.Sleep/time.Minute))
	case events.OutcomeOK:
		if m.bridge {
			m.renderConnections(&b, ev)
		}
		fmt.Fprintf(&b, "Next departure in %d minutes. Checking again in %d minutes...\n",
			ev.Reference, int(ev.Sleep/time.Minute))
	}
	m.write(&b)
}

// closeBlock writes the alert line, if one was raised, and the closing rule.
func (m *Monitor) closeBlock(ev events.CycleEvent) {
	var b strings.Builder
	if ev.Outcome == events.OutcomeOK && ev.Alert != model.AlertNone {
		fmt.Fprintf(&b, "*** ALERT (%s): %s ***\n", ev.Alert, ev.AlertText)
	}
	fmt.Fprintln(&b, rule)
	m.write(&b)
}

func (m *Monitor) renderConnections(b *strings.Builder, ev events.CycleEvent) {
	fmt.Fprintf(b, "POSSIBLE CONNECTIONS (%d minute transfer):\n", m.cfg.TransferTime)
	for _, c := range ev.Connections {
		mark := ""
		if ev.Optimal != nil && c == *ev.Optimal {
			mark = " [OPTIMAL]"
		}
		fmt.Fprintf(b, "  Train in %d min -> Bus in %d min (wait %d min, total %d min)%s\n",
			c.TrainTime, c.BusTime, c.Wait, c.TotalJourney, mark)
	}
}

func (m *Monitor) write(b *strings.Builder) {
	_, _ = io.WriteString(m.status, b.String())
}

func gaps(leads []int) []int {
	out := make([]int, 0, len(leads)-1)
	for i := 1; i < len(leads); i++ {
		out = append(out, leads[i]-leads[i-1])
	}
	return out
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}

func plural(noun string) string {
	n := strings.ToLower(noun)
	if strings.HasSuffix(n, "s") {
		return n + "es"
	}
	return n + "s"
}
