package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/commutewatch/app"
	"github.com/kilianp07/commutewatch/config"
	"github.com/kilianp07/commutewatch/core/alert"
	"github.com/kilianp07/commutewatch/core/model"
	"github.com/kilianp07/commutewatch/core/monitor"
	"github.com/kilianp07/commutewatch/core/prediction"
	"github.com/kilianp07/commutewatch/core/scheduler"
)

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestEvaluateBusLeaveNow(t *testing.T) {
	d, err := evaluate(context.Background(), defaultConfig(t), app.KindBus, []int{19, 7}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", d.Outcome)
	assert.Equal(t, []int{7, 19}, d.LeadTimes)
	require.NotNil(t, d.Reference)
	assert.Equal(t, 7, *d.Reference)
	assert.Equal(t, "leave_now", d.Alert)
	assert.Equal(t, "Time to leave now! Bus departing in 7 minutes.", d.Message)
	assert.Equal(t, 2, d.SleepMinutes)
}

func TestEvaluateSinglePrediction(t *testing.T) {
	d, err := evaluate(context.Background(), defaultConfig(t), app.KindRail, []int{30}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "none", d.Alert)
	assert.Empty(t, d.Message)
	assert.Equal(t, 5, d.SleepMinutes)
}

func TestEvaluateSevereDelay(t *testing.T) {
	d, err := evaluate(context.Background(), defaultConfig(t), app.KindRail, []int{70, 80}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "severe_delay", d.Alert)
	assert.Equal(t, "Severe delays detected. Next train in 70 minutes.", d.Message)
	assert.Equal(t, 10, d.SleepMinutes)
}

func TestEvaluateNoData(t *testing.T) {
	d, err := evaluate(context.Background(), defaultConfig(t), app.KindBus, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "no_data", d.Outcome)
	assert.Nil(t, d.Reference)
	assert.Equal(t, 3, d.SleepMinutes)
}

func TestEvaluateBridge(t *testing.T) {
	d, err := evaluate(context.Background(), defaultConfig(t), app.KindBridge, nil, []int{20, 5}, []int{55, 40})
	require.NoError(t, err)
	assert.Equal(t, "ok", d.Outcome)
	require.Len(t, d.Connections, 2)
	require.NotNil(t, d.Optimal)
	assert.Equal(t, 5, d.Optimal.TrainTime)
	assert.Equal(t, 40, d.Optimal.BusTime)
	assert.Equal(t, "leave_now", d.Alert)
	assert.Equal(t, "Time to leave! Catch the train in 5 mins to connect with bus in 40 mins. Wait time at Braintree: 5 mins.", d.Message)
	assert.Equal(t, 2, d.SleepMinutes)
}

func TestEvaluateBridgeNoConnection(t *testing.T) {
	d, err := evaluate(context.Background(), defaultConfig(t), app.KindBridge, nil, []int{20}, []int{25})
	require.NoError(t, err)
	assert.Equal(t, "no_connection", d.Outcome)
	assert.Nil(t, d.Optimal)
	assert.Equal(t, 5, d.SleepMinutes)
}

func TestWriteDecisionFormats(t *testing.T) {
	ref := 7
	d := Decision{Monitor: "bus", Outcome: "ok", LeadTimes: []int{7}, Reference: &ref, Alert: "leave_now", Message: "go", SleepMinutes: 2}

	var js bytes.Buffer
	require.NoError(t, writeDecision(&js, d, "json"))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, "leave_now", decoded["alert"])
	assert.EqualValues(t, 7, decoded["reference_minutes"])

	var ym bytes.Buffer
	require.NoError(t, writeDecision(&ym, d, "yaml"))
	var back Decision
	require.NoError(t, yaml.Unmarshal(ym.Bytes(), &back))
	assert.Equal(t, 2, back.SleepMinutes)
	assert.Equal(t, []int{7}, back.LeadTimes)

	var txt bytes.Buffer
	require.NoError(t, writeDecision(&txt, d, "text"))
	assert.Contains(t, txt.String(), "alert:    leave_now")
	assert.Contains(t, txt.String(), "sleep:    2 minutes")

	assert.Error(t, writeDecision(&txt, d, "xml"))
}

func TestEvaluateCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"evaluate", "--monitor", "bus", "--leads", "7,19", "-o", "json"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())

	var d Decision
	require.NoError(t, json.Unmarshal(out.Bytes(), &d))
	assert.Equal(t, "leave_now", d.Alert)
	assert.Equal(t, 2, d.SleepMinutes)
}

func TestEvaluateAgreesWithMonitorCycle(t *testing.T) {
	cfg := defaultConfig(t)
	now := time.Date(2025, 3, 4, 15, 0, 0, 0, time.UTC)
	at := func(mins ...int) []model.PredictionRecord {
		out := make([]model.PredictionRecord, len(mins))
		for i, m := range mins {
			out[i] = model.PredictionRecord{DepartureTime: now.Add(time.Duration(m) * time.Minute).Format(prediction.TimeLayout)}
		}
		return out
	}
	src := &prediction.MockSource{Records: map[string][]model.PredictionRecord{
		cfg.Bridge.Train.Route: at(20, 5),
		cfg.Bridge.Bus.Route:   at(55, 40),
	}}
	policy, err := scheduler.New(cfg.Monitor.Scheduler())
	require.NoError(t, err)
	eval, err := alert.NewEvaluator(cfg.Monitor.Thresholds(), nil)
	require.NoError(t, err)
	m, err := app.NewMonitor(cfg, app.KindBridge, monitor.Params{Source: src, Scheduler: policy, Evaluator: eval, Status: io.Discard})
	require.NoError(t, err)
	m.SetClock(func() time.Time { return now })
	cycle := m.RunCycle(context.Background())

	d, err := evaluate(context.Background(), cfg, app.KindBridge, nil, []int{20, 5}, []int{55, 40})
	require.NoError(t, err)
	assert.Equal(t, string(cycle.Outcome), d.Outcome)
	assert.Equal(t, cycle.Optimal, d.Optimal)
	assert.Equal(t, cycle.Alert.String(), d.Alert)
	assert.Equal(t, cycle.AlertText, d.Message)
	assert.Equal(t, int(cycle.Sleep/time.Minute), d.SleepMinutes)
}
