package compliance

// Defaults.
const (
	// DefaultThresholdCents is the statutory threshold in minor units.
	DefaultThresholdCents int64 = 100_000
	// DefaultWindowDays is the trailing window length.
	DefaultWindowDays = 365
)

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithThreshold sets the threshold in minor currency units.
func WithThreshold(cents int64) Option {
	return func(a *Aggregator) {
		if cents > 0 {
			a.threshold = cents
		}
	}
}

// WithWindowDays sets the trailing window length in days.
func WithWindowDays(days int) Option {
	return func(a *Aggregator) {
		if days > 0 {
			a.windowDays = days
		}
	}
}
