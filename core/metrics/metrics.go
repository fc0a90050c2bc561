package metrics

import "github.com/kilianp07/commutewatch/core/events"

// MetricsSink records poll cycles for observability purposes.
type MetricsSink interface {
	RecordCycle(ev events.CycleEvent) error
}

// AlertRecorder records alerts raised by a monitor.
type AlertRecorder interface {
	RecordAlert(ev events.AlertEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordCycle(events.CycleEvent) error { return nil }
func (NopSink) RecordAlert(events.AlertEvent) error { return nil }
