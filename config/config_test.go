package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/commutewatch/core/scheduler"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	cfg, err := Load("")
	require.NoError(t, err)

	m := cfg.Monitor
	assert.Equal(t, 5, m.LeaveNowMin)
	assert.Equal(t, 10, m.LeaveNowMax)
	assert.Equal(t, 60, m.SevereDelayThreshold)
	assert.Equal(t, 3, m.RetryNoData)
	assert.Equal(t, 5, m.RetryError)
	assert.Equal(t, 2, m.MinLoop)
	assert.Equal(t, 10, m.MaxLoop)
	assert.Equal(t, 2, m.EarlyBuffer)
	assert.Equal(t, 5, m.SinglePredictionLoop)
	assert.Equal(t, scheduler.PolicyTarget, m.Policy)
	assert.Equal(t, 30*time.Second, m.FetchTimeout)

	assert.Equal(t, "226", cfg.Bus.Route)
	assert.Equal(t, "place-brntn", cfg.Bus.Stop)
	assert.Equal(t, "226-_-0", cfg.Bus.RoutePattern)
	assert.Equal(t, "Red", cfg.Rail.Route)
	assert.Equal(t, "70079", cfg.Rail.Stop)
	assert.Equal(t, "Red-3-0", cfg.Rail.RoutePattern)

	assert.Equal(t, 30, cfg.Bridge.TransferTime)
	assert.Equal(t, 5, cfg.Bridge.RetryNoConnection)
	assert.Equal(t, "Red", cfg.Bridge.Train.Route)
	assert.Equal(t, "226", cfg.Bridge.Bus.Route)

	assert.Equal(t, SourceMBTA, cfg.Source)
	assert.Equal(t, "https://api-v3.mbta.com", cfg.MBTA.BaseURL)
	assert.Equal(t, "https://cdn.mbta.com/realtime/TripUpdates.pb", cfg.GTFSRT.URL)
	assert.False(t, cfg.MQTTEnabled())
	assert.Equal(t, "info", cfg.Log.Level)
}

//nolint:gocyclo
func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `monitor:
  leave_now_min: 4
  leave_now_max: 12
  severe_delay_threshold: 45
  policy: gap_average
  fetch_timeout: 10s
bus:
  route: "230"
  stop: "place-qnctr"
  direction: 1
bridge:
  transfer_time: 20
  transfer_point: Quincy Center
mbta:
  api_key: "k"
  insecure_skip_verify: true
notify:
  notifiers:
    - type: command
      conf:
        command: notify-send
    - type: mqtt
mqtt:
  broker: "tcp://localhost:1883"
  qos: 1
metrics:
  prometheus_addr: ":9102"
  sinks:
    - type: prometheus
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"leave_now_min", cfg.Monitor.LeaveNowMin, 4},
		{"leave_now_max", cfg.Monitor.LeaveNowMax, 12},
		{"severe", cfg.Monitor.SevereDelayThreshold, 45},
		{"policy", cfg.Monitor.Policy, scheduler.PolicyGapAverage},
		{"fetch_timeout", cfg.Monitor.FetchTimeout, 10 * time.Second},
		{"bus.route", cfg.Bus.Route, "230"},
		{"bus.stop", cfg.Bus.Stop, "place-qnctr"},
		{"bus.direction", cfg.Bus.Direction, 1},
		{"bus.noun default", cfg.Bus.Noun, "Bus"},
		{"bridge.transfer_time", cfg.Bridge.TransferTime, 20},
		{"bridge.transfer_point", cfg.Bridge.TransferPoint, "Quincy Center"},
		{"mbta.api_key", cfg.MBTA.APIKey, "k"},
		{"mbta.insecure", cfg.MBTA.InsecureSkipVerify, true},
		{"notifiers", len(cfg.Notify.Notifiers), 2},
		{"notifier type", cfg.Notify.Notifiers[0].Type, "command"},
		{"notifier conf", cfg.Notify.Notifiers[0].Conf["command"], "notify-send"},
		{"mqtt.broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt.qos", cfg.MQTT.QoS, byte(1)},
		{"mqtt.topic_root default", cfg.MQTT.TopicRoot, "commutewatch"},
		{"metrics.addr", cfg.Metrics.PrometheusAddr, ":9102"},
		{"metrics.sinks", cfg.Metrics.Sinks[0].Type, "prometheus"},
		{"log.level", cfg.Log.Level, "debug"},
	}
	for _, c := range checks {
		assert.Equal(t, c.want, c.got, c.name)
	}

	// The scheduler sees the configured alert window.
	assert.Equal(t, 12, cfg.Monitor.Scheduler().LeaveNowMax)
	assert.Equal(t, 45, cfg.Monitor.Thresholds().SevereDelay)
}

func TestLoadKeepsExplicitZeros(t *testing.T) {
	path := writeConfig(t, "config.yaml", `monitor:
  early_buffer: 0
  leave_now_min: 0
bridge:
  transfer_time: 0
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Monitor.EarlyBuffer)
	assert.Equal(t, 0, cfg.Monitor.LeaveNowMin)
	assert.Equal(t, 0, cfg.Bridge.TransferTime)
	assert.Equal(t, 0, cfg.Monitor.Scheduler().EarlyBuffer)
	assert.Equal(t, 0, cfg.Monitor.Thresholds().LeaveNowMin)
	assert.Equal(t, 0, cfg.Bridge.Loop(cfg.Monitor).TransferTime)

	// Keys left out still take their defaults.
	assert.Equal(t, 10, cfg.Monitor.LeaveNowMax)
	assert.Equal(t, 5, cfg.Bridge.RetryNoConnection)
	assert.Equal(t, "Braintree", cfg.Bridge.TransferPoint)
}

func TestLoadKeepsExplicitZeroFromEnv(t *testing.T) {
	t.Setenv("COMMUTE_BRIDGE__TRANSFER_TIME", "0")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Bridge.TransferTime)
}

func TestSetDefaultsTreatsZeroAsUnset(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 2, cfg.Monitor.EarlyBuffer)
	assert.Equal(t, 30, cfg.Bridge.TransferTime)
	require.NoError(t, cfg.Validate())
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{"rail": {"stop": "70080"}, "monitor": {"retry_error": 7}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "70080", cfg.Rail.Stop)
	assert.Equal(t, "Red", cfg.Rail.Route)
	assert.Equal(t, 7, cfg.Monitor.Loop().RetryError)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("COMMUTE_MONITOR__LEAVE_NOW_MAX", "15")
	t.Setenv("COMMUTE_BRIDGE__TRANSFER_TIME", "25")
	t.Setenv("COMMUTE_MBTA__BASE_URL", "http://localhost:8080")
	t.Setenv(APIKeyEnv, "from-env")

	path := writeConfig(t, "config.yaml", "monitor:\n  leave_now_max: 11\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.Monitor.LeaveNowMax)
	assert.Equal(t, 25, cfg.Bridge.TransferTime)
	assert.Equal(t, "http://localhost:8080", cfg.MBTA.BaseURL)
	assert.Equal(t, "from-env", cfg.MBTA.APIKey)

	loop := cfg.Bridge.Loop(cfg.Monitor)
	assert.Equal(t, 25, loop.TransferTime)
	assert.Equal(t, "Braintree", loop.TransferPoint)
	assert.Equal(t, 5, loop.RetryNoConnection)
}

func TestAPIKeyFileWins(t *testing.T) {
	t.Setenv(APIKeyEnv, "from-env")
	path := writeConfig(t, "config.yaml", "mbta:\n  api_key: from-file\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.MBTA.APIKey)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"window inverted":    "monitor:\n  leave_now_min: 12\n  leave_now_max: 10\n",
		"severe inside":      "monitor:\n  severe_delay_threshold: 8\n",
		"negative transfer":  "bridge:\n  transfer_time: -1\n",
		"bad direction":      "bus:\n  direction: 2\n",
		"bad policy":         "monitor:\n  policy: random\n",
		"bad level":          "log:\n  level: chatty\n",
		"bad qos":            "mqtt:\n  broker: tcp://x:1883\n  qos: 3\n",
		"bad mbta url":       "mbta:\n  base_url: ftp://mbta\n",
		"min above max loop": "monitor:\n  min_loop: 20\n",
		"unknown source":     "source: siri\n",
		"zero retry":         "monitor:\n  retry_error: 0\n",
		"bad gtfsrt url":     "source: gtfsrt\ngtfsrt:\n  url: nope\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "config.yaml", data))
			assert.Error(t, err)
		})
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load(writeConfig(t, "config.toml", "x = 1"))
	assert.Error(t, err)
}

func TestCheckGTFSRTStops(t *testing.T) {
	path := writeConfig(t, "config.yaml", `source: gtfsrt
gtfsrt:
  stop_aliases:
    place-brntn: ["38671", "38672"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"38671", "38672"}, cfg.GTFSRT.StopAliases["place-brntn"])
	assert.NoError(t, cfg.CheckGTFSRTStops(cfg.Bus, cfg.Rail, cfg.Bridge.Train, cfg.Bridge.Bus))

	cfg.Bus.Stop = "place-qnctr"
	assert.ErrorContains(t, cfg.CheckGTFSRTStops(cfg.Bus), "place-qnctr")

	cfg.Source = SourceMBTA
	assert.NoError(t, cfg.CheckGTFSRTStops(cfg.Bus))
}
