// Package metrics defines the sink contracts used to observe monitor
// cycles. Sinks like PromSink and InfluxSink live in infra/metrics and
// register themselves with RegisterMetricsSink. NewMetricsSink returns a
// MultiSink when several live sinks are configured.
package metrics
