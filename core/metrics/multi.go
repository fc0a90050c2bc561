package metrics

import (
	"errors"

	"github.com/kilianp07/commutewatch/core/events"
)

// MultiSink fans out records to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordCycle forwards the cycle to every sink. A failing sink does not
// prevent the others from recording; all errors are joined.
func (m *MultiSink) RecordCycle(ev events.CycleEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordCycle(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordAlert forwards alerts to sinks implementing AlertRecorder.
func (m *MultiSink) RecordAlert(ev events.AlertEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(AlertRecorder); ok {
			if err := rec.RecordAlert(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
