// Package alert classifies the nearest relevant lead time and forwards at most
// one notification per poll cycle to a Notifier.
package alert
