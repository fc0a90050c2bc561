package prediction

import (
	"context"

	"github.com/kilianp07/commutewatch/core/model"
)

// Source fetches raw predictions for a route, stop and direction.
type Source interface {
	// Fetch returns zero or more upcoming predictions. Any transport, auth or
	// decoding problem is reported as an error.
	Fetch(ctx context.Context, q model.FeedQuery) ([]model.PredictionRecord, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, q model.FeedQuery) ([]model.PredictionRecord, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context, q model.FeedQuery) ([]model.PredictionRecord, error) {
	return f(ctx, q)
}
