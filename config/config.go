package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/commutewatch/core/factory"
	"github.com/kilianp07/commutewatch/core/metrics"
	"github.com/kilianp07/commutewatch/infra/gtfsrt"
	"github.com/kilianp07/commutewatch/infra/mbta"
	"github.com/kilianp07/commutewatch/infra/mqtt"
)

// EnvPrefix prefixes environment overrides. Nested keys are separated by a
// double underscore, e.g. COMMUTE_MONITOR__LEAVE_NOW_MAX=12.
const EnvPrefix = "COMMUTE_"

// APIKeyEnv is read when mbta.api_key is not set.
const APIKeyEnv = "MBTA_API_KEY"

// Prediction sources.
const (
	SourceMBTA   = "mbta"
	SourceGTFSRT = "gtfsrt"
)

// NotifyConfig lists the alert notifiers. Empty means log only.
type NotifyConfig struct {
	Notifiers []factory.ModuleConfig `json:"notifiers"`
}

type Config struct {
	// Source selects the prediction backend: mbta (default) or gtfsrt.
	Source  string         `json:"source"`
	Monitor MonitorConfig  `json:"monitor"`
	Bus     FeedConfig     `json:"bus"`
	Rail    FeedConfig     `json:"rail"`
	Bridge  BridgeConfig   `json:"bridge"`
	MBTA    mbta.Config    `json:"mbta"`
	GTFSRT  gtfsrt.Config  `json:"gtfsrt"`
	Notify  NotifyConfig   `json:"notify"`
	MQTT    mqtt.Config    `json:"mqtt"`
	Metrics metrics.Config `json:"metrics"`
	Log     LogConfig      `json:"log"`
}

// MQTTEnabled reports whether an MQTT broker is configured.
func (c Config) MQTTEnabled() bool { return c.MQTT.Broker != "" }

// Load reads the optional file at path and environment overrides on top of
// Default, then validates the result. Keys that are present win even when
// zero, so early_buffer: 0 or transfer_time: 0 are kept. An empty path uses
// defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	if cfg.MBTA.APIKey == "" {
		cfg.MBTA.APIKey = os.Getenv(APIKeyEnv)
	}
	cfg.setTransportDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used for every key left unset.
func Default() Config {
	var c Config
	c.SetDefaults()
	return c
}

// SetDefaults fills every section, treating zero values as unset. Load does
// not call it after decoding; it serves configurations built in code.
func (c *Config) SetDefaults() {
	c.Monitor.SetDefaults()
	c.Bus.SetDefaults(DefaultBusFeed())
	c.Rail.SetDefaults(DefaultRailFeed())
	c.Bridge.SetDefaults()
	setString(&c.Source, SourceMBTA)
	c.setTransportDefaults()
}

// setTransportDefaults completes the sections where zero is never a usable
// value, such as an MQTT section enabled only by its broker.
func (c *Config) setTransportDefaults() {
	c.MBTA.SetDefaults()
	c.GTFSRT.SetDefaults()
	if c.MQTTEnabled() {
		c.MQTT.SetDefaults()
	}
	c.Log.SetDefaults()
}

// CheckGTFSRTStops fails for a feed whose stop is a parent station without
// gtfsrt.stop_aliases, since such a feed would never see predictions. It
// only applies to the gtfsrt source.
func (c Config) CheckGTFSRTStops(feeds ...FeedConfig) error {
	if c.Source != SourceGTFSRT {
		return nil
	}
	for _, f := range feeds {
		if !c.GTFSRT.Resolves(f.Stop) {
			return fmt.Errorf("gtfsrt: stop %q is a parent station; set a child stop id or gtfsrt.stop_aliases.%s", f.Stop, f.Stop)
		}
	}
	return nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Monitor.Validate(); err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	if err := c.Bus.Validate("bus"); err != nil {
		return err
	}
	if err := c.Rail.Validate("rail"); err != nil {
		return err
	}
	if err := c.Bridge.Validate(); err != nil {
		return err
	}
	switch c.Source {
	case SourceMBTA:
		if err := c.MBTA.Validate(); err != nil {
			return err
		}
	case SourceGTFSRT:
		if err := c.GTFSRT.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown source %q (want mbta or gtfsrt)", c.Source)
	}
	if c.MQTTEnabled() {
		if err := c.MQTT.Validate(); err != nil {
			return err
		}
	}
	return c.Log.Validate()
}
