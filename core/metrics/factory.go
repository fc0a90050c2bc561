package metrics

import (
	"fmt"

	"github.com/kilianp07/commutewatch/core/factory"
)

// cycleSinks holds the sink types that can receive cycle and alert events.
var cycleSinks = factory.NewRegistry[MetricsSink]()

// RegisterMetricsSink makes a cycle sink type available under name.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return cycleSinks.Register(name, f)
}

// NewMetricsSink builds the sinks listed in cfgs. Sinks that came up as
// NopSink, such as an unreachable InfluxDB, are left out of the fan-out; when
// none remain the result is a NopSink.
func NewMetricsSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	var sinks []MetricsSink
	for i, c := range cfgs {
		s, err := cycleSinks.Create(c)
		if err != nil {
			return nil, fmt.Errorf("metrics sink %d (%s): %w", i, c.Type, err)
		}
		if _, nop := s.(NopSink); nop {
			continue
		}
		sinks = append(sinks, s)
	}
	switch len(sinks) {
	case 0:
		return NopSink{}, nil
	case 1:
		return sinks[0], nil
	}
	return NewMultiSink(sinks...), nil
}
