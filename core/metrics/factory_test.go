package metrics_test

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/commutewatch/core/events"
	"github.com/kilianp07/commutewatch/core/factory"
	metrics "github.com/kilianp07/commutewatch/core/metrics"
)

type countingSink struct {
	metrics.NopSink
	cycles int
}

func (c *countingSink) RecordCycle(events.CycleEvent) error {
	c.cycles++
	return nil
}

func init() {
	_ = metrics.RegisterMetricsSink("test-nop", func(map[string]any) (metrics.MetricsSink, error) {
		return metrics.NopSink{}, nil
	})
	_ = metrics.RegisterMetricsSink("test-count", func(map[string]any) (metrics.MetricsSink, error) {
		return &countingSink{}, nil
	})
}

/*
TestNewMetricsSink_Multi validates NewMetricsSink behavior with zero, one, and multiple configs.
Cases:
  - no config -> NopSink
  - one config -> the sink itself
  - two configs -> MultiSink with two sub-sinks
  - nop entries -> left out of the fan-out
  - unknown type -> error naming the entry
*/
func TestNewMetricsSink_Multi(t *testing.T) {
	s, err := metrics.NewMetricsSink(nil)
	if err != nil {
		t.Fatalf("create nop default: %v", err)
	}
	if _, ok := s.(metrics.NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}

	s, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "test-nop"}})
	if err != nil {
		t.Fatalf("create single: %v", err)
	}
	if _, ok := s.(metrics.NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}

	s, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "test-count"}, {Type: "test-count"}})
	if err != nil {
		t.Fatalf("create multi: %v", err)
	}
	m, ok := s.(*metrics.MultiSink)
	if !ok {
		t.Fatalf("expected MultiSink, got %T", s)
	}
	if len(m.Sinks) != 2 {
		t.Fatalf("expected 2 sinks, got %d", len(m.Sinks))
	}
	if err := m.RecordCycle(events.CycleEvent{}); err != nil {
		t.Fatalf("record: %v", err)
	}
	for i, sub := range m.Sinks {
		if got := sub.(*countingSink).cycles; got != 1 {
			t.Fatalf("sink %d recorded %d cycles", i, got)
		}
	}

	s, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "test-nop"}, {Type: "test-count"}, {Type: "test-nop"}})
	if err != nil {
		t.Fatalf("create with nop entries: %v", err)
	}
	if _, ok := s.(*countingSink); !ok {
		t.Fatalf("expected the only live sink, got %T", s)
	}

	_, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "test-count"}, {Type: "missing"}})
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
	if !strings.Contains(err.Error(), "metrics sink 1 (missing)") {
		t.Fatalf("error does not name the entry: %v", err)
	}
}

// Test decoding from YAML with multiple sinks.
func TestMetricsConfigDecodeYAML(t *testing.T) {
	data := `sinks:
  - type: test-count
  - type: test-count
prometheus_addr: ":9090"
`
	var cfg metrics.Config
	if err := yaml.Unmarshal([]byte(data), &cfg); err != nil {
		t.Fatalf("yaml unmarshal: %v", err)
	}
	if cfg.PrometheusAddr != ":9090" {
		t.Fatalf("expected prometheus addr, got %q", cfg.PrometheusAddr)
	}
	s, err := metrics.NewMetricsSink(cfg.Sinks)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := s.(*metrics.MultiSink); !ok {
		t.Fatalf("expected MultiSink")
	}
}

// Test decoding from JSON with invalid sink type.
func TestMetricsConfigDecodeJSON_Invalid(t *testing.T) {
	data := `{"sinks":[{"type":"missing"}]}`
	var cfg metrics.Config
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if _, err := metrics.NewMetricsSink(cfg.Sinks); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}
