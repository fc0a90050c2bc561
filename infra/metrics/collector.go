package metrics

import (
	"context"

	"github.com/kilianp07/commutewatch/core/events"
	coremetrics "github.com/kilianp07/commutewatch/core/metrics"
	"github.com/kilianp07/commutewatch/infra/logger"
	"github.com/kilianp07/commutewatch/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for events.
// It stops when the context is canceled or the bus is closed. The returned
// channel is closed once the collector goroutine has exited.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	log := logger.New("metrics-collector")
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
					if err := sink.RecordCycle(e); err != nil {
						log.Warnf("record cycle %s: %v", e.ID, err)
					}
				case events.AlertEvent:
					if r, ok := sink.(coremetrics.AlertRecorder); ok {
						if err := r.RecordAlert(e); err != nil {
							log.Warnf("record alert: %v", err)
						}
					}
				}
			}
		}
	}()
	return done
}
