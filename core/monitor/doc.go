// Package monitor runs the poll cycle shared by the bus, rail and bridge
// monitors: fetch, normalise, match (bridge only), schedule, alert, sleep.
//
// Every failure is absorbed into a fixed retry interval so a monitor keeps
// running unattended until its context is cancelled. Each cycle renders a
// status block for an operator and publishes an events.CycleEvent.
package monitor
