package notify

import (
	"fmt"

	"github.com/kilianp07/commutewatch/core/alert"
	"github.com/kilianp07/commutewatch/core/factory"
	"github.com/kilianp07/commutewatch/infra/logger"
	"github.com/kilianp07/commutewatch/infra/mqtt"
)

// Env carries the runtime collaborators some notifiers need.
type Env struct {
	Monitor string
	// Publisher and MQTT are required only by the "mqtt" notifier.
	Publisher mqtt.Publisher
	MQTT      mqtt.Config
	Logger    logger.Logger
}

// NewRegistry returns a registry with the built-in notifiers bound to env.
func NewRegistry(env Env) *factory.Registry[alert.Notifier] {
	reg := factory.NewRegistry[alert.Notifier]()
	_ = reg.Register("log", func(map[string]any) (alert.Notifier, error) {
		return NewLogNotifier(env.Logger), nil
	})
	_ = reg.Register("command", func(conf map[string]any) (alert.Notifier, error) {
		var c struct {
			Command string   `json:"command"`
			Args    []string `json:"args"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Command == "" && c.Args == nil {
			c.Args = []string{"-t", "10000"}
		}
		return NewCommandNotifier(c.Command, c.Args...), nil
	})
	_ = reg.Register("mqtt", func(conf map[string]any) (alert.Notifier, error) {
		if env.Publisher == nil {
			return nil, fmt.Errorf("mqtt notifier requires an mqtt section")
		}
		var c struct {
			Topic  string `json:"topic"`
			Retain bool   `json:"retain"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Topic == "" {
			cfg := env.MQTT
			cfg.SetDefaults()
			c.Topic = cfg.AlertTopic(env.Monitor)
		}
		return NewMQTTNotifier(env.Publisher, c.Topic, env.Monitor, c.Retain), nil
	})
	return reg
}

// New builds the notifier described by cfgs. No configuration yields a
// LogNotifier; several yield a Multi.
func New(cfgs []factory.ModuleConfig, env Env) (alert.Notifier, error) {
	reg := NewRegistry(env)
	if len(cfgs) == 0 {
		return reg.Create(factory.ModuleConfig{Type: "log"})
	}
	out := make(Multi, 0, len(cfgs))
	for _, c := range cfgs {
		n, err := reg.Create(c)
		if err != nil {
			return nil, fmt.Errorf("notifier %q: %w", c.Type, err)
		}
		out = append(out, n)
	}
	if len(out) == 1 {
		return out[0], nil
	}
	return out, nil
}
