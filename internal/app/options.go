package service

import (
	"time"

	"github.com/okian/ratecard/internal/adapters/events"
	"github.com/okian/ratecard/internal/adapters/repository"
	"github.com/okian/ratecard/internal/domain/dedupe"
	"github.com/okian/ratecard/internal/domain/tables"
	"github.com/okian/ratecard/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of ledger workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the transaction queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the in-memory idempotency cache. It is
// ignored when a deduper is supplied with WithDeduper.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTables replaces the built-in reference tables.
func WithTables(t *tables.Tables) Option {
	return func(s *Service) {
		if t != nil {
			s.tables = t
		}
	}
}

// WithComplianceThreshold sets the compliance threshold in cents.
func WithComplianceThreshold(cents int64) Option {
	return func(s *Service) {
		if cents > 0 {
			s.thresholdCents = cents
		}
	}
}

// WithComplianceWindowDays sets the look-back window in days.
func WithComplianceWindowDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.windowDays = days
		}
	}
}

// WithLedger uses l instead of an in-memory ledger. The service closes it
// on Stop.
func WithLedger(l repository.Ledger) Option {
	return func(s *Service) {
		if l != nil {
			s.ledger = l
		}
	}
}

// WithDeduper uses d instead of the bounded in-memory deduper.
func WithDeduper(d dedupe.Deduper) Option {
	return func(s *Service) {
		if d != nil {
			s.deduper = d
		}
	}
}

// WithPublisher sets where risk-change alerts go. The default logs them.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithClock overrides the time source for compliance windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
