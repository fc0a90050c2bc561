package prediction

import (
	"context"
	"sync"

	"github.com/kilianp07/commutewatch/core/model"
)

// MockSource returns configured predictions keyed by route.
type MockSource struct {
	Records map[string][]model.PredictionRecord
	Errors  map[string]error

	mu      sync.Mutex
	queries []model.FeedQuery
}

// Fetch returns the configured records for q.Route or the configured error.
func (m *MockSource) Fetch(ctx context.Context, q model.FeedQuery) ([]model.PredictionRecord, error) {
	m.mu.Lock()
	m.queries = append(m.queries, q)
	m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.Errors[q.Route]; ok && err != nil {
		return nil, err
	}
	recs := m.Records[q.Route]
	if recs == nil {
		return nil, nil
	}
	cp := make([]model.PredictionRecord, len(recs))
	copy(cp, recs)
	return cp, nil
}

// Queries returns the queries received so far.
func (m *MockSource) Queries() []model.FeedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]model.FeedQuery, len(m.queries))
	copy(cp, m.queries)
	return cp
}
