package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/commutewatch/core/events"
	coremetrics "github.com/kilianp07/commutewatch/core/metrics"
)

// PromSink records monitor cycles and alerts in Prometheus metrics.
type PromSink struct {
	cycles  *prometheus.CounterVec
	alerts  *prometheus.CounterVec
	lead    *prometheus.GaugeVec
	sleep   *prometheus.GaugeVec
	wait    *prometheus.GaugeVec
	lastRun *prometheus.GaugeVec
}

// NewPromSink registers monitor metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Metrics that
// are already registered are reused so several sinks can share a registry.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "commutewatch_cycles_total",
			Help: "Poll cycles completed by outcome",
		}, []string{"monitor", "outcome"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "commutewatch_alerts_total",
			Help: "Alerts raised by class and delivery result",
		}, []string{"monitor", "class", "delivered"}),
		lead: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "commutewatch_reference_lead_minutes",
			Help: "Lead time used for the last scheduling and alert decision",
		}, []string{"monitor"}),
		sleep: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "commutewatch_sleep_minutes",
			Help: "Interval before the next poll",
		}, []string{"monitor"}),
		wait: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "commutewatch_connection_wait_minutes",
			Help: "Transfer wait of the optimal connection",
		}, []string{"monitor"}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "commutewatch_last_cycle_timestamp_seconds",
			Help: "Unix time of the last completed poll cycle",
		}, []string{"monitor"}),
	}
	var err error
	if s.cycles, err = register(reg, s.cycles); err != nil {
		return nil, err
	}
	if s.alerts, err = register(reg, s.alerts); err != nil {
		return nil, err
	}
	if s.lead, err = register(reg, s.lead); err != nil {
		return nil, err
	}
	if s.sleep, err = register(reg, s.sleep); err != nil {
		return nil, err
	}
	if s.wait, err = register(reg, s.wait); err != nil {
		return nil, err
	}
	if s.lastRun, err = register(reg, s.lastRun); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordCycle updates counters and gauges for one cycle.
func (s *PromSink) RecordCycle(ev events.CycleEvent) error {
	s.cycles.WithLabelValues(ev.Monitor, string(ev.Outcome)).Inc()
	s.sleep.WithLabelValues(ev.Monitor).Set(ev.Sleep.Minutes())
	s.lastRun.WithLabelValues(ev.Monitor).Set(float64(ev.Started.Unix()))
	if ev.Outcome != events.OutcomeOK {
		return nil
	}
	s.lead.WithLabelValues(ev.Monitor).Set(float64(ev.Reference))
	if ev.Optimal != nil {
		s.wait.WithLabelValues(ev.Monitor).Set(float64(ev.Optimal.Wait))
	}
	return nil
}

// RecordAlert counts an alert.
func (s *PromSink) RecordAlert(ev events.AlertEvent) error {
	s.alerts.WithLabelValues(ev.Monitor, ev.Class.String(), strconv.FormatBool(ev.Delivered)).Inc()
	return nil
}

var (
	_ coremetrics.MetricsSink   = (*PromSink)(nil)
	_ coremetrics.AlertRecorder = (*PromSink)(nil)
)
