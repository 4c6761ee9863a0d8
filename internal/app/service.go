// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/okian/ratecard/internal/adapters/events"
	"github.com/okian/ratecard/internal/adapters/mq/queue"
	"github.com/okian/ratecard/internal/adapters/mq/worker"
	"github.com/okian/ratecard/internal/adapters/repository"
	"github.com/okian/ratecard/internal/domain/compliance"
	"github.com/okian/ratecard/internal/domain/dedupe"
	"github.com/okian/ratecard/internal/domain/offer"
	"github.com/okian/ratecard/internal/domain/tables"
	"github.com/okian/ratecard/internal/domain/valuation"
	"github.com/okian/ratecard/pkg/logger"
	"github.com/okian/ratecard/pkg/metrics"
)

const (
	defaultQueueSize  = 10_000
	defaultDedupeSize = 50_000
	stopTimeout       = 30 * time.Second
)

// Service implements the API dependencies for valuations, offer
// evaluation and the compliance ledger.
type Service struct {
	mu sync.RWMutex

	// Pricing, usable before Start
	tables     *tables.Tables
	engine     *valuation.Engine
	classifier *offer.Classifier
	aggregator *compliance.Aggregator

	// Ledger pipeline, assembled by Start
	ledger    repository.Ledger
	deduper   dedupe.Deduper
	queue     queue.Queue
	pool      *worker.Pool
	publisher events.Publisher

	// Configuration
	workerCount    int
	queueSize      int
	dedupeSize     int
	thresholdCents int64
	windowDays     int
	now            func() time.Time

	// State. Stop closes the ledger pipeline, so a stopped service
	// cannot be started again.
	started bool
	stopped bool

	// Logging
	logger logger.Logger
}

// New constructs a Service. Pricing operations work immediately, ledger
// operations need Start.
func New(opts ...Option) *Service {
	s := &Service{
		tables:         tables.Default(),
		workerCount:    runtime.NumCPU(),
		queueSize:      defaultQueueSize,
		dedupeSize:     defaultDedupeSize,
		thresholdCents: compliance.DefaultThresholdCents,
		windowDays:     compliance.DefaultWindowDays,
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger = s.logger.Named("service")
	s.engine = valuation.New(s.tables)
	s.classifier = offer.New(s.tables.Verdicts)
	s.aggregator = compliance.New(
		compliance.WithThreshold(s.thresholdCents),
		compliance.WithWindowDays(s.windowDays),
	)
	return s
}

// Start assembles the ledger pipeline and starts the workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.stopped {
		return ErrStopped
	}

	s.logger.Info(ctx, "starting ratecard service...")

	if s.ledger == nil {
		s.ledger = repository.NewMemoryLedger()
		s.logger.Info(ctx, "using in-memory ledger")
	}
	if s.deduper == nil {
		s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	}
	if s.publisher == nil {
		s.publisher = events.NewLogPublisher(s.logger)
	}
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.ledger, s.aggregator, s.publisher,
		worker.WithLogger(s.logger),
		worker.WithClock(s.now),
	)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "ratecard service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.String("tablesVersion", s.tables.Version),
		logger.Int64("thresholdCents", s.thresholdCents),
		logger.Int("windowDays", s.windowDays),
	)

	return nil
}

// Stop drains the queue and releases the ledger, deduper and publisher.
// Resources passed in through options are closed as well.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping ratecard service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Error(ctx, "worker pool shutdown", logger.Error(err))
	}
	if err := s.publisher.Close(); err != nil {
		s.logger.Error(ctx, "close publisher", logger.Error(err))
	}
	if closer, ok := s.deduper.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			s.logger.Error(ctx, "close deduper", logger.Error(err))
		}
	}
	if err := s.ledger.Close(); err != nil {
		s.logger.Error(ctx, "close ledger", logger.Error(err))
	}

	s.started = false
	s.stopped = true
	s.logger.Info(ctx, "ratecard service stopped")
}

// Tables returns the active reference tables.
func (s *Service) Tables() *tables.Tables {
	return s.tables
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":        s.started,
		"workerCount":    s.workerCount,
		"queueSize":      s.queueSize,
		"tablesVersion":  s.tables.Version,
		"thresholdCents": s.thresholdCents,
		"windowDays":     s.windowDays,
	}

	if !s.started {
		return stats
	}

	stats["workerCount"] = s.pool.Size()
	stats["queueLength"] = s.queue.Len()
	stats["processed"] = s.pool.Processed()
	if d, ok := s.deduper.(interface{ Size() int64 }); ok {
		stats["dedupeEntries"] = d.Size()
	}

	transactions, err := s.ledger.Count(ctx)
	if err != nil {
		s.logger.Warn(ctx, "ledger count failed", logger.Error(err))
		return stats
	}
	counterparties, err := s.ledger.Counterparties(ctx)
	if err != nil {
		s.logger.Warn(ctx, "ledger counterparties failed", logger.Error(err))
		return stats
	}
	stats["transactions"] = transactions
	stats["counterparties"] = len(counterparties)

	metrics.UpdateQueue(s.queue.Len(), s.queue.Cap())
	metrics.UpdateLedger(len(counterparties), transactions)

	return stats
}

// pipeline returns the ledger components under the read lock.
func (s *Service) pipeline() (repository.Ledger, dedupe.Deduper, queue.Queue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, nil, ErrNotStarted
	}
	return s.ledger, s.deduper, s.queue, nil
}
