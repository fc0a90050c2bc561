package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/commutewatch/core/alert"
	"github.com/kilianp07/commutewatch/core/events"
	"github.com/kilianp07/commutewatch/core/logger"
	"github.com/kilianp07/commutewatch/core/model"
	"github.com/kilianp07/commutewatch/core/prediction"
	"github.com/kilianp07/commutewatch/core/scheduler"
	"github.com/kilianp07/commutewatch/internal/eventbus"
)

// ErrFetch wraps every failure to obtain usable predictions, including
// malformed timestamps and fetch timeouts.
var ErrFetch = errors.New("fetch predictions")

// Params are the collaborators shared by every monitor variant.
type Params struct {
	Name       string
	Title      string
	AlertTitle string
	Config     Config
	Source     prediction.Source
	Scheduler  scheduler.Policy
	Evaluator  *alert.Evaluator
	Bus        eventbus.EventBus
	Logger     logger.Logger
	// Status receives the human-readable block of every cycle. Defaults to stdout.
	Status io.Writer
}

// Monitor polls one feed, or two for the bridge, until cancelled.
type Monitor struct {
	name       string
	title      string
	alertTitle string
	cfg        Config
	feeds      []Feed
	bridge     bool
	source     prediction.Source
	scheduler  scheduler.Policy
	evaluator  *alert.Evaluator
	bus        eventbus.EventBus
	log        logger.Logger
	status     io.Writer

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewSingle creates a bus or rail monitor for one feed.
func NewSingle(p Params, feed Feed) (*Monitor, error) {
	return newMonitor(p, false, feed)
}

// NewBridge creates a monitor lining up train departures with connecting buses.
func NewBridge(p Params, train, bus Feed) (*Monitor, error) {
	return newMonitor(p, true, train, bus)
}

func newMonitor(p Params, bridge bool, feeds ...Feed) (*Monitor, error) {
	if p.Source == nil || p.Scheduler == nil || p.Evaluator == nil {
		return nil, fmt.Errorf("monitor: nil parameter provided")
	}
	if err := p.Config.Validate(); err != nil {
		return nil, fmt.Errorf("monitor %s: %w", p.Name, err)
	}
	m := &Monitor{
		name:       p.Name,
		title:      p.Title,
		alertTitle: p.AlertTitle,
		cfg:        p.Config,
		feeds:      feeds,
		bridge:     bridge,
		source:     p.Source,
		scheduler:  p.Scheduler,
		evaluator:  p.Evaluator,
		bus:        p.Bus,
		log:        p.Logger,
		status:     p.Status,
		now:        time.Now,
		sleep:      sleepContext,
	}
	if m.log == nil {
		m.log = logger.Nop{}
	}
	if m.status == nil {
		m.status = os.Stdout
	}
	if m.title == "" {
		m.title = strings.ToUpper(p.Name) + " MONITOR"
	}
	if m.alertTitle == "" {
		m.alertTitle = m.title + " Alert"
	}
	return m, nil
}

// Name returns the monitor name used in logs and metrics.
func (m *Monitor) Name() string { return m.name }

// SetClock replaces the wall clock used for lead times and the status block.
func (m *Monitor) SetClock(now func() time.Time) {
	if now != nil {
		m.now = now
	}
}

// SetSleeper replaces the function used to wait between cycles. It must
// return a non-nil error when ctx is cancelled.
func (m *Monitor) SetSleeper(sleep func(context.Context, time.Duration) error) {
	if sleep != nil {
		m.sleep = sleep
	}
}

// Run polls until ctx is cancelled. It never returns an error for cycle
// failures; those are retried after a fixed delay.
func (m *Monitor) Run(ctx context.Context) error {
	m.log.Infof("starting %s monitor", m.name)
	for {
		ev := m.RunCycle(ctx)
		if ev.Outcome == events.OutcomeCancelled {
			break
		}
		if err := m.sleep(ctx, ev.Sleep); err != nil {
			break
		}
	}
	m.log.Infof("%s monitor stopped", m.name)
	return nil
}

// RunCycle performs a single fetch to alert iteration and returns its summary.
// The status block is written before any notification is sent. The sleep
// that follows is left to the caller.
func (m *Monitor) RunCycle(ctx context.Context) events.CycleEvent {
	ev := m.newCycle()
	leads, asOf, err := m.fetchAll(ctx)
	if ctx.Err() != nil {
		return cancelled(ev)
	}
	if err != nil {
		m.fail(&ev, err)
	} else {
		m.apply(&ev, asOf, leads)
	}
	m.render(ev)
	if ev.Outcome == events.OutcomeOK {
		m.raise(ctx, &ev)
	}
	m.closeBlock(ev)
	if ctx.Err() != nil {
		return cancelled(ev)
	}
	m.logCycle(ev)
	if m.bus != nil {
		m.bus.Publish(ev)
	}
	return ev
}

// Evaluate applies the cycle rules to lead times computed against asOf, one
// slice per feed, and raises the alert through the evaluator. It neither
// fetches nor renders nor publishes the cycle.
func (m *Monitor) Evaluate(ctx context.Context, asOf time.Time, leads ...[]int) events.CycleEvent {
	ev := m.newCycle()
	m.apply(&ev, asOf, leads)
	if ev.Outcome == events.OutcomeOK {
		m.raise(ctx, &ev)
	}
	return ev
}

func (m *Monitor) newCycle() events.CycleEvent {
	return events.CycleEvent{ID: uuid.NewString(), Monitor: m.name, Started: m.now()}
}

func cancelled(ev events.CycleEvent) events.CycleEvent {
	ev.Outcome = events.OutcomeCancelled
	ev.Sleep = 0
	return ev
}

// apply records the lead times of every feed and the decision taken on them.
func (m *Monitor) apply(ev *events.CycleEvent, asOf time.Time, leads [][]int) {
	ev.AsOf = asOf
	ev.Feeds = make([]events.FeedLeads, len(m.feeds))
	for i, f := range m.feeds {
		ev.Feeds[i] = events.FeedLeads{Feed: f.Name, Label: f.Noun, LeadTimes: feedLeads(leads, i)}
	}
	d := m.Decide(leads...)
	ev.Outcome = d.Outcome
	ev.Reference = d.Reference
	ev.Connections = d.Connections
	ev.Optimal = d.Optimal
	ev.Sleep = d.Sleep
}

// fetchAll fetches every feed, concurrently for the bridge, and normalises
// all of them against one instant taken once the responses are in.
func (m *Monitor) fetchAll(ctx context.Context) ([][]int, time.Time, error) {
	recs := make([][]model.PredictionRecord, len(m.feeds))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range m.feeds {
		g.Go(func() error {
			var err error
			recs[i], err = m.fetchRecords(gctx, f)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, time.Time{}, err
	}
	now := m.now()
	leads := make([][]int, len(m.feeds))
	for i, f := range m.feeds {
		l, err := prediction.Normalize(recs[i], now)
		if err != nil {
			return nil, now, fmt.Errorf("%w: %s: %w", ErrFetch, f.Name, err)
		}
		leads[i] = l
	}
	return leads, now, nil
}

// BridgeFormatter renders the bridge alert texts for connection c. point
// names the transfer stop in the leave-now message.
func BridgeFormatter(title, point string, c model.Connection) alert.Formatter {
	if point == "" {
		point = "the transfer point"
	}
	return func(class model.AlertClass, reference int) alert.Message {
		switch class {
		case model.AlertLeaveNow:
			return alert.Message{Title: title, Body: fmt.Sprintf(
				"Time to leave! Catch the train in %d mins to connect with bus in %d mins. Wait time at %s: %d mins.",
				c.TrainTime, c.BusTime, point, c.Wait)}
		case model.AlertSevereDelay:
			return alert.Message{Title: title, Body: fmt.Sprintf(
				"Severe train delays detected. Next train in %d mins.", reference)}
		default:
			return alert.Message{Title: title}
		}
	}
}

// raise evaluates the reference lead time and notifies at most once.
func (m *Monitor) raise(ctx context.Context, ev *events.CycleEvent) {
	class, msg, err := m.evaluator.Evaluate(ctx, ev.Reference, m.formatter(ev.Optimal))
	ev.Alert = class
	ev.AlertText = msg.Body
	if class == model.AlertNone {
		return
	}
	if err != nil {
		m.log.Errorf("%s alert delivery failed: %v", m.name, err)
	}
	if m.bus != nil && ctx.Err() == nil {
		m.bus.Publish(events.AlertEvent{
			Monitor:   m.name,
			Class:     class,
			Reference: ev.Reference,
			Title:     msg.Title,
			Message:   msg.Body,
			Delivered: err == nil,
			Time:      m.now(),
		})
	}
}

func (m *Monitor) fail(ev *events.CycleEvent, err error) {
	ev.Outcome = events.OutcomeFetchError
	ev.Err = err
	ev.Sleep = minutes(m.cfg.RetryError)
}

// fetchRecords fetches one feed within the configured timeout.
func (m *Monitor) fetchRecords(ctx context.Context, f Feed) ([]model.PredictionRecord, error) {
	fctx, cancel := context.WithTimeout(ctx, m.cfg.fetchTimeout())
	defer cancel()
	recs, err := m.source.Fetch(fctx, f.Query)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, f.Name, err)
	}
	return recs, nil
}

func (m *Monitor) logCycle(ev events.CycleEvent) {
	fields := map[string]any{
		"monitor":       ev.Monitor,
		"cycle_id":      ev.ID,
		"outcome":       string(ev.Outcome),
		"sleep_minutes": int(ev.Sleep / time.Minute),
	}
	if ev.Outcome == events.OutcomeOK {
		fields["reference"] = ev.Reference
		fields["alert"] = ev.Alert.String()
	}
	if ev.Err != nil {
		m.log.Warnf("%s cycle failed: %v", ev.Monitor, ev.Err)
	}
	m.log.Infow("cycle complete", fields)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
