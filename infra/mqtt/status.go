package mqtt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kilianp07/commutewatch/core/events"
	"github.com/kilianp07/commutewatch/core/model"
	"github.com/kilianp07/commutewatch/infra/logger"
	"github.com/kilianp07/commutewatch/internal/eventbus"
)

// StatusPayload is the retained JSON document describing the last cycle of
// a monitor.
type StatusPayload struct {
	CycleID      string            `json:"cycle_id"`
	Monitor      string            `json:"monitor"`
	Time         time.Time         `json:"time"`
	Outcome      string            `json:"outcome"`
	Reference    *int              `json:"reference_minutes,omitempty"`
	SleepMinutes int               `json:"sleep_minutes"`
	Alert        string            `json:"alert,omitempty"`
	LeadTimes    map[string][]int  `json:"lead_times,omitempty"`
	Optimal      *model.Connection `json:"optimal,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// NewStatusPayload summarises ev.
func NewStatusPayload(ev events.CycleEvent) StatusPayload {
	p := StatusPayload{
		CycleID:      ev.ID,
		Monitor:      ev.Monitor,
		Time:         ev.Started,
		Outcome:      string(ev.Outcome),
		SleepMinutes: int(ev.Sleep / time.Minute),
		Optimal:      ev.Optimal,
	}
	if ev.Outcome == events.OutcomeOK {
		ref := ev.Reference
		p.Reference = &ref
		p.Alert = ev.Alert.String()
	}
	if len(ev.Feeds) > 0 {
		p.LeadTimes = make(map[string][]int, len(ev.Feeds))
		for _, f := range ev.Feeds {
			p.LeadTimes[f.Feed] = f.LeadTimes
		}
	}
	if ev.Err != nil {
		p.Error = ev.Err.Error()
	}
	return p
}

// StartStatusPublisher mirrors every cycle event on the bus to the retained
// status topic of its monitor. It stops when ctx is cancelled or the bus is
// closed; the returned channel is closed on exit.
func StartStatusPublisher(ctx context.Context, bus eventbus.EventBus, pub Publisher, cfg Config) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || pub == nil {
		close(done)
		return done
	}
	cfg.SetDefaults()
	log := logger.New("mqtt_status")
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
				cycle, isCycle := ev.(events.CycleEvent)
				if !isCycle {
					continue
				}
				payload, err := json.Marshal(NewStatusPayload(cycle))
				if err != nil {
					log.Errorf("encode status: %v", err)
					continue
				}
				if err := pub.Publish(ctx, cfg.StatusTopic(cycle.Monitor), payload, true); err != nil {
					log.Warnf("publish status for %s: %v", cycle.Monitor, err)
				}
			}
		}
	}()
	return done
}
