// Package notify provides the alert.Notifier implementations: a log line, a
// desktop notification command, an MQTT message and a fan-out.
package notify
