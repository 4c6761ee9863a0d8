// Package batch evaluates a file of sponsor offers against a running
// ratecard service and summarizes the verdicts.
package batch

import (
	"io"
	"time"
)

// Defaults for Config.
const (
	DefaultWorkers      = 4
	DefaultTimeout      = 30 * time.Second
	DefaultRetryMax     = 3
	DefaultRetryWaitMin = 500 * time.Millisecond
	DefaultRetryWaitMax = 3 * time.Second
)

// Config holds configuration for a batch run.
type Config struct {
	BaseURL string        // Base URL of the service
	Input   string        // JSON array of offers
	Output  string        // Report path; timestamped when empty
	Workers int           // Number of concurrent requests
	Timeout time.Duration // Per-attempt HTTP timeout
	Verbose bool          // Log every request

	RetryMax     int           // Retries per request on 5xx, 429 and transport errors
	RetryWaitMin time.Duration // Backoff floor
	RetryWaitMax time.Duration // Backoff ceiling

	Progress io.Writer // Progress bar output; nil disables the bar
}

func (c *Config) withDefaults() {
	if c.Workers < 1 {
		c.Workers = DefaultWorkers
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RetryMax < 0 {
		c.RetryMax = 0
	}
	if c.RetryWaitMin <= 0 {
		c.RetryWaitMin = DefaultRetryWaitMin
	}
	if c.RetryWaitMax < c.RetryWaitMin {
		c.RetryWaitMax = max(DefaultRetryWaitMax, c.RetryWaitMin)
	}
}
