package events

import (
	"time"

	"github.com/kilianp07/commutewatch/core/model"
)

// AlertEvent is published each time a monitor raises a notification.
type AlertEvent struct {
	Monitor   string
	Class     model.AlertClass
	Reference int
	Title     string
	Message   string
	Delivered bool
	Time      time.Time
}
