package scheduler

import "fmt"

// Policy names accepted in Config.Policy.
const (
	PolicyTarget     = "target"
	PolicyGapAverage = "gap_average"
)

// Config holds scheduling parameters in whole minutes.
type Config struct {
	Policy               string `json:"policy"`
	MinLoop              int    `json:"min_loop"`
	MaxLoop              int    `json:"max_loop"`
	EarlyBuffer          int    `json:"early_buffer"`
	SinglePredictionLoop int    `json:"single_prediction_loop"`
	LeaveNowMax          int    `json:"leave_now_max"`
	// GapBuffer and GapFloor only apply to the gap_average policy.
	GapBuffer int `json:"gap_buffer"`
	GapFloor  int `json:"gap_floor"`
}

// DefaultConfig returns the stock scheduling parameters.
func DefaultConfig() Config {
	return Config{
		Policy:               PolicyTarget,
		MinLoop:              2,
		MaxLoop:              10,
		EarlyBuffer:          2,
		SinglePredictionLoop: 5,
		LeaveNowMax:          10,
		GapBuffer:            5,
		GapFloor:             3,
	}
}

// SetDefaults fills unset fields from DefaultConfig.
func (c *Config) SetDefaults() {
	d := DefaultConfig()
	if c.Policy == "" {
		c.Policy = d.Policy
	}
	if c.MinLoop == 0 {
		c.MinLoop = d.MinLoop
	}
	if c.MaxLoop == 0 {
		c.MaxLoop = d.MaxLoop
	}
	if c.EarlyBuffer == 0 {
		c.EarlyBuffer = d.EarlyBuffer
	}
	if c.SinglePredictionLoop == 0 {
		c.SinglePredictionLoop = d.SinglePredictionLoop
	}
	if c.LeaveNowMax == 0 {
		c.LeaveNowMax = d.LeaveNowMax
	}
	if c.GapBuffer == 0 {
		c.GapBuffer = d.GapBuffer
	}
	if c.GapFloor == 0 {
		c.GapFloor = d.GapFloor
	}
}

// Validate checks that the bounds are coherent.
func (c Config) Validate() error {
	if c.Policy != PolicyTarget && c.Policy != PolicyGapAverage {
		return fmt.Errorf("unknown scheduler policy %q", c.Policy)
	}
	if c.MinLoop < 1 {
		return fmt.Errorf("min_loop must be at least 1")
	}
	if c.MaxLoop < c.MinLoop {
		return fmt.Errorf("max_loop (%d) must not be below min_loop (%d)", c.MaxLoop, c.MinLoop)
	}
	if c.EarlyBuffer < 0 {
		return fmt.Errorf("early_buffer must not be negative")
	}
	if c.SinglePredictionLoop < 1 {
		return fmt.Errorf("single_prediction_loop must be at least 1")
	}
	return nil
}
