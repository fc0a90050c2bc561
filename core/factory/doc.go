// Package factory instantiates pluggable modules (notifiers, metrics sinks)
// from configuration. A module is a type name plus a map of raw settings;
// each factory decodes the settings into its own struct.
//
//	reg := factory.NewRegistry[alert.Notifier]()
//	_ = reg.Register("command", func(conf map[string]any) (alert.Notifier, error) {
//	    var c struct{ Command string `json:"command"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return notify.NewCommandNotifier(c.Command), nil
//	})
//	n, err := reg.Create(factory.ModuleConfig{Type: "command", Conf: map[string]any{"command": "notify-send"}})
package factory
