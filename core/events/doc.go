// Package events defines the monitor events emitted on the event bus.
//
// Available event types:
//   - CycleEvent: summary of one poll cycle, whatever its outcome
//   - AlertEvent: a leave-now or severe-delay notification was raised
package events
