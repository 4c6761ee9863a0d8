package api

import (
	"github.com/okian/ratecard/pkg/logger"
	"golang.org/x/time/rate"
)

// Option configures a Server.
type Option func(*Server)

// WithRateLimit enables a shared token bucket of rps requests per second
// with the given burst. Non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}
