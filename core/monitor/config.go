package monitor

import (
	"fmt"
	"time"

	"github.com/kilianp07/commutewatch/core/model"
)

// Config holds the retry policy. Retry values are whole minutes.
type Config struct {
	RetryNoData       int
	RetryError        int
	RetryNoConnection int
	FetchTimeout      time.Duration
	// TransferTime and TransferPoint only apply to the bridge monitor.
	TransferTime  int
	TransferPoint string
}

// DefaultFetchTimeout bounds a single fetch when Config.FetchTimeout is unset.
const DefaultFetchTimeout = 30 * time.Second

// Validate checks the retry durations.
func (c Config) Validate() error {
	if c.RetryNoData < 1 || c.RetryError < 1 {
		return fmt.Errorf("retry_no_data and retry_error must be at least 1 minute")
	}
	if c.TransferTime < 0 {
		return fmt.Errorf("transfer_time must not be negative")
	}
	return nil
}

func (c Config) fetchTimeout() time.Duration {
	if c.FetchTimeout <= 0 {
		return DefaultFetchTimeout
	}
	return c.FetchTimeout
}

func (c Config) retryNoConnection() int {
	if c.RetryNoConnection < 1 {
		return c.RetryError
	}
	return c.RetryNoConnection
}

// Feed describes one prediction feed and how its vehicles are named in the
// status block and alerts.
type Feed struct {
	Name    string
	Noun    string
	Verb    string
	Heading string
	Query   model.FeedQuery
}

func minutes(n int) time.Duration { return time.Duration(n) * time.Minute }
