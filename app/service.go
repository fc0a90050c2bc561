package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/commutewatch/api/status"
	"github.com/kilianp07/commutewatch/config"
	"github.com/kilianp07/commutewatch/core/alert"
	coremetrics "github.com/kilianp07/commutewatch/core/metrics"
	"github.com/kilianp07/commutewatch/core/monitor"
	"github.com/kilianp07/commutewatch/core/prediction"
	"github.com/kilianp07/commutewatch/core/scheduler"
	"github.com/kilianp07/commutewatch/infra/gtfsrt"
	"github.com/kilianp07/commutewatch/infra/logger"
	"github.com/kilianp07/commutewatch/infra/mbta"
	"github.com/kilianp07/commutewatch/infra/metrics"
	"github.com/kilianp07/commutewatch/infra/mqtt"
	"github.com/kilianp07/commutewatch/infra/notify"
	"github.com/kilianp07/commutewatch/internal/eventbus"
)

// Kind selects the monitor variant.
type Kind string

const (
	KindBus    Kind = "bus"
	KindRail   Kind = "rail"
	KindBridge Kind = "bridge"
)

// ParseKind accepts bus, rail or bridge.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case KindBus, KindRail, KindBridge:
		return k, nil
	}
	return "", fmt.Errorf("unknown monitor %q (want bus, rail or bridge)", s)
}

// Options override collaborators, mainly for tests.
type Options struct {
	// Status receives the per-cycle status block. Defaults to stdout.
	Status io.Writer
	// Source replaces the MBTA client.
	Source prediction.Source
}

// Service wires one monitor to its notifiers, metrics sinks and event bus.
type Service struct {
	Monitor *monitor.Monitor

	bus      *eventbus.Bus
	sink     coremetrics.MetricsSink
	mqtt     *mqtt.PahoClient
	mqttCfg  mqtt.Config
	promAddr string
	status   *status.Store
	log      logger.Logger
}

// New creates a Service for kind from the configuration.
func New(cfg *config.Config, kind Kind, opts Options) (*Service, error) {
	log := logger.New("service")

	src := opts.Source
	if src == nil {
		if err := cfg.CheckGTFSRTStops(feedConfigs(cfg, kind)...); err != nil {
			return nil, err
		}
		var err error
		if src, err = newSource(cfg); err != nil {
			return nil, err
		}
	}

	svc := &Service{bus: eventbus.New(), status: status.NewStore(), log: log, promAddr: cfg.Metrics.PrometheusAddr, mqttCfg: cfg.MQTT}

	var pub mqtt.Publisher
	if cfg.MQTTEnabled() {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.mqtt = client
		svc.mqttCfg = client.Config()
		pub = client
	}

	notifier, err := notify.New(cfg.Notify.Notifiers, notify.Env{
		Monitor:   string(kind),
		Publisher: pub,
		MQTT:      cfg.MQTT,
	})
	if err != nil {
		svc.Close()
		return nil, err
	}
	evaluator, err := alert.NewEvaluator(cfg.Monitor.Thresholds(), notifier)
	if err != nil {
		svc.Close()
		return nil, err
	}
	policy, err := scheduler.New(cfg.Monitor.Scheduler())
	if err != nil {
		svc.Close()
		return nil, err
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		svc.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	svc.sink = sink

	m, err := NewMonitor(cfg, kind, monitor.Params{
		Source:    src,
		Scheduler: policy,
		Evaluator: evaluator,
		Bus:       svc.bus,
		Logger:    logger.New(string(kind) + "-monitor"),
		Status:    opts.Status,
	})
	if err != nil {
		svc.Close()
		return nil, err
	}
	svc.Monitor = m
	return svc, nil
}

// NewMonitor builds the monitor of kind from the configuration. p carries the
// collaborators; its name, titles, loop config and feeds are filled in here.
func NewMonitor(cfg *config.Config, kind Kind, p monitor.Params) (*monitor.Monitor, error) {
	p.Name = string(kind)
	p.Config = cfg.Monitor.Loop()
	switch kind {
	case KindBus:
		p.Title, p.AlertTitle = cfg.Bus.Title, cfg.Bus.AlertTitle
		return monitor.NewSingle(p, cfg.Bus.Feed("bus"))
	case KindRail:
		p.Title, p.AlertTitle = cfg.Rail.Title, cfg.Rail.AlertTitle
		return monitor.NewSingle(p, cfg.Rail.Feed("rail"))
	case KindBridge:
		p.Title, p.AlertTitle = cfg.Bridge.Title, cfg.Bridge.AlertTitle
		p.Config = cfg.Bridge.Loop(cfg.Monitor)
		return monitor.NewBridge(p, cfg.Bridge.Train.Feed("train"), cfg.Bridge.Bus.Feed("bus"))
	}
	return nil, fmt.Errorf("unknown monitor %q", kind)
}

func feedConfigs(cfg *config.Config, kind Kind) []config.FeedConfig {
	switch kind {
	case KindBus:
		return []config.FeedConfig{cfg.Bus}
	case KindRail:
		return []config.FeedConfig{cfg.Rail}
	case KindBridge:
		return []config.FeedConfig{cfg.Bridge.Train, cfg.Bridge.Bus}
	}
	return nil
}

func newSource(cfg *config.Config) (prediction.Source, error) {
	if cfg.Source == config.SourceGTFSRT {
		client, err := gtfsrt.NewClient(cfg.GTFSRT)
		if err != nil {
			return nil, fmt.Errorf("gtfsrt client: %w", err)
		}
		return client, nil
	}
	client, err := mbta.NewClient(cfg.MBTA)
	if err != nil {
		return nil, fmt.Errorf("mbta client: %w", err)
	}
	return client, nil
}

// Run starts the collectors and blocks in the monitor loop until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	waits := []<-chan struct{}{metrics.StartEventCollector(ctx, s.bus, s.sink)}
	if s.mqtt != nil {
		waits = append(waits, mqtt.StartStatusPublisher(ctx, s.bus, s.mqtt, s.mqttCfg))
	}
	if s.promAddr != "" {
		waits = append(waits, status.Track(ctx, s.bus, s.status))
		mux := metrics.NewPromMux(prometheus.DefaultGatherer)
		mux.Handle(status.Path, status.NewStatusHandler(s.status))
		go func() {
			if err := metrics.Serve(ctx, s.promAddr, mux); err != nil {
				s.log.Errorf("http server: %v", err)
			}
		}()
	}

	err := s.Monitor.Run(ctx)
	cancel()
	for _, w := range waits {
		<-w
	}
	return err
}

// Status returns the latest-cycle store served on /api/status.
func (s *Service) Status() *status.Store { return s.status }

// Close releases resources held by the service.
func (s *Service) Close() {
	s.bus.Close()
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	if s.mqtt != nil {
		s.mqtt.Disconnect()
	}
}
