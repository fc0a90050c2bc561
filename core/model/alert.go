package model

// AlertClass is the outcome of comparing a lead time against the alert thresholds.
type AlertClass int

const (
	AlertNone AlertClass = iota
	AlertLeaveNow
	AlertSevereDelay
)

// String returns a human-readable representation of the alert class.
func (a AlertClass) String() string {
	switch a {
	case AlertNone:
		return "none"
	case AlertLeaveNow:
		return "leave_now"
	case AlertSevereDelay:
		return "severe_delay"
	default:
		return "unknown"
	}
}

// MarshalText encodes the class using its string form.
func (a AlertClass) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}
