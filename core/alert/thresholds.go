package alert

import (
	"fmt"

	"github.com/kilianp07/commutewatch/core/model"
)

// Thresholds bound the alert window and the severe delay limit in minutes.
type Thresholds struct {
	LeaveNowMin int `json:"leave_now_min"`
	LeaveNowMax int `json:"leave_now_max"`
	SevereDelay int `json:"severe_delay_threshold"`
}

// DefaultThresholds returns the stock alert window [5, 10] and a 60 minute
// severe delay limit.
func DefaultThresholds() Thresholds {
	return Thresholds{LeaveNowMin: 5, LeaveNowMax: 10, SevereDelay: 60}
}

// SetDefaults fills unset thresholds.
func (t *Thresholds) SetDefaults() {
	d := DefaultThresholds()
	if t.LeaveNowMin == 0 && t.LeaveNowMax == 0 {
		t.LeaveNowMin, t.LeaveNowMax = d.LeaveNowMin, d.LeaveNowMax
	}
	if t.SevereDelay == 0 {
		t.SevereDelay = d.SevereDelay
	}
}

// Validate enforces leave_now_min <= leave_now_max < severe_delay_threshold.
func (t Thresholds) Validate() error {
	if t.LeaveNowMin > t.LeaveNowMax {
		return fmt.Errorf("leave_now_min (%d) exceeds leave_now_max (%d)", t.LeaveNowMin, t.LeaveNowMax)
	}
	if t.LeaveNowMax >= t.SevereDelay {
		return fmt.Errorf("leave_now_max (%d) must be below severe_delay_threshold (%d)", t.LeaveNowMax, t.SevereDelay)
	}
	return nil
}

// Classify maps a reference lead time to an alert class. The leave-now window
// is inclusive on both ends; severe delay requires strictly more than the
// threshold.
func (t Thresholds) Classify(reference int) model.AlertClass {
	switch {
	case reference >= t.LeaveNowMin && reference <= t.LeaveNowMax:
		return model.AlertLeaveNow
	case reference > t.SevereDelay:
		return model.AlertSevereDelay
	default:
		return model.AlertNone
	}
}
