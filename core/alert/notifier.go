package alert

import "context"

// Notifier delivers a human-readable alert. Implementations may block until
// the alert is acknowledged.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, title, message string) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, title, message string) error {
	return f(ctx, title, message)
}

// NopNotifier discards alerts.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string, string) error { return nil }
