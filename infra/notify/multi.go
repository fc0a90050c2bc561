package notify

import (
	"context"
	"errors"

	"github.com/kilianp07/commutewatch/core/alert"
)

// Multi delivers every alert to all notifiers. One failing notifier does not
// stop the others; errors are joined.
type Multi []alert.Notifier

// Notify implements alert.Notifier.
func (m Multi) Notify(ctx context.Context, title, message string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, title, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
