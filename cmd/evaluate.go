package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/commutewatch/app"
	"github.com/kilianp07/commutewatch/config"
	"github.com/kilianp07/commutewatch/core/alert"
	"github.com/kilianp07/commutewatch/core/events"
	"github.com/kilianp07/commutewatch/core/model"
	"github.com/kilianp07/commutewatch/core/monitor"
	"github.com/kilianp07/commutewatch/core/prediction"
	"github.com/kilianp07/commutewatch/core/scheduler"
)

var (
	evalMonitor string
	evalLeads   []int
	evalTrains  []int
	evalBuses   []int
	evalOutput  string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Show the alert and next interval for given lead times without polling",
	Example: `  commutewatch evaluate --monitor bus --leads 7,19
  commutewatch evaluate --monitor bridge --trains 5,20 --buses 40,55 -o yaml`,
	Args: cobra.NoArgs,
	RunE: runEvaluate,
}

func init() {
	f := evaluateCmd.Flags()
	f.StringVar(&evalMonitor, "monitor", "bus", "monitor variant: bus, rail or bridge")
	f.IntSliceVar(&evalLeads, "leads", nil, "lead times in minutes (bus, rail)")
	f.IntSliceVar(&evalTrains, "trains", nil, "train lead times in minutes (bridge)")
	f.IntSliceVar(&evalBuses, "buses", nil, "bus lead times in minutes (bridge)")
	f.StringVarP(&evalOutput, "output", "o", "text", "output format: text, yaml or json")
	rootCmd.AddCommand(evaluateCmd)
}

// Decision is the outcome of one dry-run evaluation.
type Decision struct {
	Monitor      string             `json:"monitor" yaml:"monitor"`
	Outcome      string             `json:"outcome" yaml:"outcome"`
	LeadTimes    []int              `json:"lead_times,omitempty" yaml:"lead_times,omitempty"`
	Connections  []model.Connection `json:"connections,omitempty" yaml:"connections,omitempty"`
	Optimal      *model.Connection  `json:"optimal,omitempty" yaml:"optimal,omitempty"`
	Reference    *int               `json:"reference_minutes,omitempty" yaml:"reference_minutes,omitempty"`
	Alert        string             `json:"alert" yaml:"alert"`
	Message      string             `json:"message,omitempty" yaml:"message,omitempty"`
	SleepMinutes int                `json:"sleep_minutes" yaml:"sleep_minutes"`
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	kind, err := app.ParseKind(evalMonitor)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	d, err := evaluate(cmd.Context(), cfg, kind, evalLeads, evalTrains, evalBuses)
	if err != nil {
		return err
	}
	return writeDecision(cmd.OutOrStdout(), d, evalOutput)
}

// errOffline backs the dry-run monitor: evaluate never fetches.
var errOffline = errors.New("evaluate does not fetch predictions")

// evaluate runs the monitor's own decision and alert rules on fixed lead
// times. No notification is sent.
func evaluate(ctx context.Context, cfg *config.Config, kind app.Kind, leads, trains, buses []int) (Decision, error) {
	policy, err := scheduler.New(cfg.Monitor.Scheduler())
	if err != nil {
		return Decision{}, err
	}
	eval, err := alert.NewEvaluator(cfg.Monitor.Thresholds(), nil)
	if err != nil {
		return Decision{}, err
	}
	offline := prediction.SourceFunc(func(context.Context, model.FeedQuery) ([]model.PredictionRecord, error) {
		return nil, errOffline
	})
	m, err := app.NewMonitor(cfg, kind, monitor.Params{
		Source:    offline,
		Scheduler: policy,
		Evaluator: eval,
		Status:    io.Discard,
	})
	if err != nil {
		return Decision{}, err
	}

	feeds := [][]int{sorted(leads)}
	if kind == app.KindBridge {
		feeds = [][]int{sorted(trains), sorted(buses)}
	}
	ev := m.Evaluate(ctx, time.Now(), feeds...)

	d := Decision{
		Monitor:      string(kind),
		Outcome:      string(ev.Outcome),
		Connections:  ev.Connections,
		Optimal:      ev.Optimal,
		Alert:        ev.Alert.String(),
		Message:      ev.AlertText,
		SleepMinutes: int(ev.Sleep / time.Minute),
	}
	if kind != app.KindBridge {
		d.LeadTimes = feeds[0]
	}
	if ev.Outcome == events.OutcomeOK {
		ref := ev.Reference
		d.Reference = &ref
	}
	return d, nil
}

func sorted(v []int) []int {
	out := append([]int(nil), v...)
	sort.Ints(out)
	return out
}

func writeDecision(w io.Writer, d Decision, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		return writeText(w, d)
	}
	return fmt.Errorf("unknown output format %q", format)
}

func writeText(w io.Writer, d Decision) error {
	var b strings.Builder
	fmt.Fprintf(&b, "monitor:  %s\n", d.Monitor)
	fmt.Fprintf(&b, "outcome:  %s\n", d.Outcome)
	if d.Reference != nil {
		fmt.Fprintf(&b, "next:     %d minutes\n", *d.Reference)
	}
	for _, c := range d.Connections {
		mark := ""
		if d.Optimal != nil && c == *d.Optimal {
			mark = " [OPTIMAL]"
		}
		fmt.Fprintf(&b, "  train %d -> bus %d (wait %d, total %d)%s\n", c.TrainTime, c.BusTime, c.Wait, c.TotalJourney, mark)
	}
	fmt.Fprintf(&b, "alert:    %s\n", d.Alert)
	if d.Message != "" {
		fmt.Fprintf(&b, "message:  %s\n", d.Message)
	}
	fmt.Fprintf(&b, "sleep:    %d minutes\n", d.SleepMinutes)
	_, err := io.WriteString(w, b.String())
	return err
}
