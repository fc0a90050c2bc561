package config

import (
	"time"

	"github.com/kilianp07/commutewatch/core/alert"
	"github.com/kilianp07/commutewatch/core/monitor"
	"github.com/kilianp07/commutewatch/core/scheduler"
)

// MonitorConfig holds the thresholds shared by every monitor. All values
// except FetchTimeout are whole minutes.
type MonitorConfig struct {
	LeaveNowMin          int           `json:"leave_now_min"`
	LeaveNowMax          int           `json:"leave_now_max"`
	SevereDelayThreshold int           `json:"severe_delay_threshold"`
	RetryNoData          int           `json:"retry_no_data"`
	RetryError           int           `json:"retry_error"`
	MinLoop              int           `json:"min_loop"`
	MaxLoop              int           `json:"max_loop"`
	EarlyBuffer          int           `json:"early_buffer"`
	SinglePredictionLoop int           `json:"single_prediction_loop"`
	Policy               string        `json:"policy"`
	GapBuffer            int           `json:"gap_buffer"`
	GapFloor             int           `json:"gap_floor"`
	FetchTimeout         time.Duration `json:"fetch_timeout"`
}

// SetDefaults fills unset values.
func (c *MonitorConfig) SetDefaults() {
	t := alert.DefaultThresholds()
	s := scheduler.DefaultConfig()
	setInt(&c.LeaveNowMin, t.LeaveNowMin)
	setInt(&c.LeaveNowMax, t.LeaveNowMax)
	setInt(&c.SevereDelayThreshold, t.SevereDelay)
	setInt(&c.RetryNoData, 3)
	setInt(&c.RetryError, 5)
	setInt(&c.MinLoop, s.MinLoop)
	setInt(&c.MaxLoop, s.MaxLoop)
	setInt(&c.EarlyBuffer, s.EarlyBuffer)
	setInt(&c.SinglePredictionLoop, s.SinglePredictionLoop)
	setInt(&c.GapBuffer, s.GapBuffer)
	setInt(&c.GapFloor, s.GapFloor)
	if c.Policy == "" {
		c.Policy = s.Policy
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = monitor.DefaultFetchTimeout
	}
}

// Validate checks every derived section.
func (c MonitorConfig) Validate() error {
	if err := c.Thresholds().Validate(); err != nil {
		return err
	}
	if err := c.Scheduler().Validate(); err != nil {
		return err
	}
	return c.Loop().Validate()
}

// Thresholds returns the alert windows.
func (c MonitorConfig) Thresholds() alert.Thresholds {
	return alert.Thresholds{
		LeaveNowMin: c.LeaveNowMin,
		LeaveNowMax: c.LeaveNowMax,
		SevereDelay: c.SevereDelayThreshold,
	}
}

// Scheduler returns the interval policy parameters.
func (c MonitorConfig) Scheduler() scheduler.Config {
	return scheduler.Config{
		Policy:               c.Policy,
		MinLoop:              c.MinLoop,
		MaxLoop:              c.MaxLoop,
		EarlyBuffer:          c.EarlyBuffer,
		SinglePredictionLoop: c.SinglePredictionLoop,
		LeaveNowMax:          c.LeaveNowMax,
		GapBuffer:            c.GapBuffer,
		GapFloor:             c.GapFloor,
	}
}

// Loop returns the retry policy of a single-feed monitor.
func (c MonitorConfig) Loop() monitor.Config {
	return monitor.Config{
		RetryNoData:  c.RetryNoData,
		RetryError:   c.RetryError,
		FetchTimeout: c.FetchTimeout,
	}
}

func setInt(v *int, d int) {
	if *v == 0 {
		*v = d
	}
}
