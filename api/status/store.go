package status

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kilianp07/commutewatch/core/events"
	"github.com/kilianp07/commutewatch/core/model"
	"github.com/kilianp07/commutewatch/internal/eventbus"
)

// Entry is the latest known state of one monitor.
type Entry struct {
	Monitor      string             `json:"monitor"`
	CycleID      string             `json:"cycle_id"`
	Started      time.Time          `json:"started"`
	Outcome      events.Outcome     `json:"outcome"`
	LeadTimes    map[string][]int   `json:"lead_times,omitempty"`
	Optimal      *model.Connection  `json:"optimal,omitempty"`
	Connections  []model.Connection `json:"connections,omitempty"`
	Reference    *int               `json:"reference_minutes,omitempty"`
	Alert        model.AlertClass   `json:"alert"`
	AlertText    string             `json:"alert_text,omitempty"`
	SleepMinutes int                `json:"sleep_minutes"`
	Error        string             `json:"error,omitempty"`
	LastAlert    *time.Time         `json:"last_alert,omitempty"`
}

// Store keeps the latest entry per monitor in memory.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewStore() *Store {
	return &Store{entries: make(map[string]Entry)}
}

// RecordCycle replaces the monitor's entry. Cancelled cycles are ignored so
// the last completed cycle stays visible.
func (s *Store) RecordCycle(ev events.CycleEvent) {
	if ev.Outcome == events.OutcomeCancelled {
		return
	}
	e := Entry{
		Monitor:      ev.Monitor,
		CycleID:      ev.ID,
		Started:      ev.Started,
		Outcome:      ev.Outcome,
		Optimal:      ev.Optimal,
		Connections:  ev.Connections,
		Alert:        ev.Alert,
		AlertText:    ev.AlertText,
		SleepMinutes: int(ev.Sleep / time.Minute),
	}
	if len(ev.Feeds) > 0 {
		e.LeadTimes = make(map[string][]int, len(ev.Feeds))
		for _, f := range ev.Feeds {
			e.LeadTimes[f.Feed] = f.LeadTimes
		}
	}
	if ev.Outcome == events.OutcomeOK {
		ref := ev.Reference
		e.Reference = &ref
	}
	if ev.Err != nil {
		e.Error = ev.Err.Error()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e.LastAlert = s.entries[ev.Monitor].LastAlert
	s.entries[ev.Monitor] = e
}

// RecordAlert stamps the time of the monitor's last alert.
func (s *Store) RecordAlert(ev events.AlertEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entries[ev.Monitor]
	e.Monitor = ev.Monitor
	t := ev.Time
	e.LastAlert = &t
	s.entries[ev.Monitor] = e
}

// Get returns the entry of monitor.
func (s *Store) Get(monitor string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[monitor]
	return e, ok
}

// List returns all entries sorted by monitor name. An empty monitor matches all.
func (s *Store) List(monitor string) []Entry {
	s.mu.RLock()
	out := make([]Entry, 0, len(s.entries))
	for name, e := range s.entries {
		if monitor == "" || name == monitor {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Monitor < out[j].Monitor })
	return out
}

// Track feeds the store from bus until ctx is done or the bus is closed.
func Track(ctx context.Context, bus eventbus.EventBus, s *Store) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || s == nil {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.CycleEvent:
					s.RecordCycle(e)
				case events.AlertEvent:
					s.RecordAlert(e)
				}
			}
		}
	}()
	return done
}
