package worker

import (
	"time"

	"github.com/okian/ratecard/pkg/logger"
)

// Option applies a configuration option to workers and pools.
type Option func(*settings)

type settings struct {
	name  string
	log   logger.Logger
	now   func() time.Time
	locks *stripes
}

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.name = name
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the clock used for compliance evaluation time.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}
