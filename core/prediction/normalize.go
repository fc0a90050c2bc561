package prediction

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/kilianp07/commutewatch/core/model"
)

// TimeLayout is the timestamp format used by the prediction feed.
const TimeLayout = "2006-01-02T15:04:05Z07:00"

// ErrParse is wrapped by every timestamp parsing failure.
var ErrParse = errors.New("malformed prediction timestamp")

// Event selects the departure timestamp of r, falling back to the arrival
// timestamp. ok is false when the record carries neither.
func Event(r model.PredictionRecord) (ev model.PredictionEvent, ok bool, err error) {
	raw, kind := r.DepartureTime, model.Departure
	if raw == "" {
		raw, kind = r.ArrivalTime, model.Arrival
	}
	if raw == "" {
		return model.PredictionEvent{}, false, nil
	}
	ts, err := time.Parse(TimeLayout, raw)
	if err != nil {
		return model.PredictionEvent{}, false, fmt.Errorf("%w: %q: %v", ErrParse, raw, err)
	}
	return model.PredictionEvent{Time: ts, Kind: kind}, true, nil
}

// LeadTime returns the whole minutes from now until t, floored.
func LeadTime(t, now time.Time) int {
	return int(math.Floor(t.UTC().Sub(now.UTC()).Seconds() / 60))
}

// Normalize converts raw records into ascending lead times relative to now.
// Records without any timestamp are skipped. Lead times in the past are kept.
// A single malformed timestamp fails the whole call.
func Normalize(records []model.PredictionRecord, now time.Time) ([]int, error) {
	leads := make([]int, 0, len(records))
	for _, r := range records {
		ev, ok, err := Event(r)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		leads = append(leads, LeadTime(ev.Time, now))
	}
	sort.Ints(leads)
	return leads, nil
}
