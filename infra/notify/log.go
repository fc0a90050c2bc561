package notify

import (
	"context"

	"github.com/kilianp07/commutewatch/infra/logger"
)

// LogNotifier writes alerts to the structured log.
type LogNotifier struct {
	log logger.Logger
}

// NewLogNotifier logs through l, or through a new "alert" logger when l is nil.
func NewLogNotifier(l logger.Logger) *LogNotifier {
	if l == nil {
		l = logger.New("alert")
	}
	return &LogNotifier{log: l}
}

// Notify never fails.
func (n *LogNotifier) Notify(_ context.Context, title, message string) error {
	n.log.Infow("ALERT", map[string]any{"title": title, "message": message})
	return nil
}
