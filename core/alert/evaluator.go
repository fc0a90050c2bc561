package alert

import (
	"context"
	"fmt"
	"strings"

	"github.com/kilianp07/commutewatch/core/model"
)

// Message is the content of one alert.
type Message struct {
	Title string
	Body  string
}

// Formatter renders the alert text for a class and reference lead time.
type Formatter func(class model.AlertClass, reference int) Message

// VehicleFormatter renders the single-feed alert texts, e.g.
// "Time to leave now! Bus departing in 7 minutes.".
func VehicleFormatter(title, noun, verb string) Formatter {
	return func(class model.AlertClass, reference int) Message {
		switch class {
		case model.AlertLeaveNow:
			return Message{Title: title, Body: fmt.Sprintf("Time to leave now! %s %s in %d minutes.", noun, verb, reference)}
		case model.AlertSevereDelay:
			return Message{Title: title, Body: fmt.Sprintf("Severe delays detected. Next %s in %d minutes.", strings.ToLower(noun), reference)}
		default:
			return Message{Title: title}
		}
	}
}

// Evaluator classifies reference lead times and notifies.
type Evaluator struct {
	thresholds Thresholds
	notifier   Notifier
}

// NewEvaluator validates the thresholds. A nil notifier discards alerts.
func NewEvaluator(t Thresholds, n Notifier) (*Evaluator, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if n == nil {
		n = NopNotifier{}
	}
	return &Evaluator{thresholds: t, notifier: n}, nil
}

// Thresholds returns the configured thresholds.
func (e *Evaluator) Thresholds() Thresholds { return e.thresholds }

// Evaluate classifies reference and, unless the class is AlertNone, sends
// exactly one notification. The class is returned even when delivery fails.
func (e *Evaluator) Evaluate(ctx context.Context, reference int, format Formatter) (model.AlertClass, Message, error) {
	class := e.thresholds.Classify(reference)
	if class == model.AlertNone {
		return class, Message{}, nil
	}
	msg := format(class, reference)
	if err := e.notifier.Notify(ctx, msg.Title, msg.Body); err != nil {
		return class, msg, fmt.Errorf("notify %s: %w", class, err)
	}
	return class, msg, nil
}
