package scheduler

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Policy decides the next sleep interval in whole minutes. The result is
// always at least one minute.
type Policy interface {
	// Interval uses the sorted lead times of a single feed.
	Interval(leadTimes []int) int
	// Decide uses an explicit reference lead time. known is the number of
	// lead times the reference was chosen from.
	Decide(reference, known int) int
}

// New returns the policy selected by cfg.Policy.
func New(cfg Config) (Policy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Policy == PolicyGapAverage {
		return GapAveraging{Config: cfg}, nil
	}
	return TargetSeeking{Config: cfg}, nil
}

// TargetSeeking schedules the next poll EarlyBuffer minutes before the alert
// window opens, bounded by MinLoop and MaxLoop.
type TargetSeeking struct {
	Config Config
}

// Interval implements Policy.
func (s TargetSeeking) Interval(leadTimes []int) int {
	if len(leadTimes) == 0 {
		return clamp(s.Config.MinLoop)
	}
	return s.Decide(leadTimes[0], len(leadTimes))
}

// Decide implements Policy.
func (s TargetSeeking) Decide(reference, known int) int {
	c := s.Config
	if known == 1 {
		return clamp(c.SinglePredictionLoop)
	}
	if reference <= c.LeaveNowMax {
		return clamp(c.MinLoop)
	}
	target := reference - (c.LeaveNowMax + c.EarlyBuffer)
	if target < c.MinLoop {
		return clamp(c.MinLoop)
	}
	if target > c.MaxLoop {
		return clamp(c.MaxLoop)
	}
	return clamp(target)
}

// GapAveraging sleeps for the mean gap between consecutive lead times minus
// GapBuffer, never less than GapFloor.
type GapAveraging struct {
	Config Config
}

// Interval implements Policy.
func (g GapAveraging) Interval(leadTimes []int) int {
	if len(leadTimes) < 2 {
		return clamp(g.Config.SinglePredictionLoop)
	}
	gaps := make([]float64, 0, len(leadTimes)-1)
	for i := 1; i < len(leadTimes); i++ {
		gaps = append(gaps, float64(leadTimes[i]-leadTimes[i-1]))
	}
	loop := math.Max(float64(g.Config.GapFloor), stat.Mean(gaps, nil)-float64(g.Config.GapBuffer))
	return clamp(int(math.Floor(loop)))
}

// Decide implements Policy. Without the full list there are no gaps to
// average, so the single-prediction interval is used unless the reference is
// already inside the alert window.
func (g GapAveraging) Decide(reference, known int) int {
	if known != 1 && reference <= g.Config.LeaveNowMax {
		return clamp(g.Config.GapFloor)
	}
	return clamp(g.Config.SinglePredictionLoop)
}

func clamp(minutes int) int {
	if minutes < 1 {
		return 1
	}
	return minutes
}
