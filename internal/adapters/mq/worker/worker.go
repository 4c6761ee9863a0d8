// Package worker appends queued transactions to the ledger and re-assesses
// the counterparty's compliance after each write.
package worker

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/ratecard/internal/adapters/events"
	"github.com/okian/ratecard/internal/adapters/repository"
	"github.com/okian/ratecard/internal/domain/compliance"
	"github.com/okian/ratecard/internal/domain/model"
	"github.com/okian/ratecard/pkg/logger"
	"github.com/okian/ratecard/pkg/metrics"
)

const (
	defaultWorkerCount  = 4
	poolShutdownTimeout = 30 * time.Second
	lockStripes         = 64
)

// Queue defines how workers receive transactions.
type Queue interface {
	Dequeue() <-chan model.Transaction
}

// Ledger is the subset of the store workers write to.
type Ledger interface {
	Append(ctx context.Context, tx model.Transaction) error
	ByCounterparty(ctx context.Context, counterpartyID string) ([]model.Transaction, error)
}

// Assessor derives the compliance view of a counterparty.
type Assessor interface {
	Assess(counterpartyID string, records []model.Transaction, now time.Time) (compliance.Result, bool)
}

// Publisher delivers risk-change alerts.
type Publisher interface {
	Publish(ctx context.Context, alert events.Alert) error
}

// stripes serializes work per counterparty so a before/after assessment
// pair is never interleaved with another write for the same counterparty.
type stripes [lockStripes]sync.Mutex

func (s *stripes) lock(key string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	m := &s[h.Sum32()%lockStripes]
	m.Lock()
	return m.Unlock
}

// Worker processes transactions until its queue closes.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining the queue.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	ledger    Ledger
	assessor  Assessor
	publisher Publisher
	settings

	processed atomic.Int64
	shutdown  chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
}

func newSettings(opts []Option) settings {
	s := settings{name: "worker", now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	if s.log == nil {
		s.log = logger.Get()
	}
	s.log = s.log.Named(s.name)
	if s.locks == nil {
		s.locks = new(stripes)
	}
	return s
}

// NewInMemoryWorker creates a worker with configuration options.
func NewInMemoryWorker(q Queue, l Ledger, a Assessor, p Publisher, opts ...Option) *InMemoryWorker {
	return &InMemoryWorker{
		queue:     q,
		ledger:    l,
		assessor:  a,
		publisher: p,
		settings:  newSettings(opts),
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Run implements Worker.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	items := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case tx, ok := <-items:
			if !ok {
				return
			}
			if err := w.Process(ctx, tx); err != nil {
				w.log.Error(ctx, "error processing transaction",
					logger.String("transaction_id", tx.ID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown implements Worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stop()
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.log.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) stop() {
	w.stopOnce.Do(func() { close(w.shutdown) })
}

// Processed returns how many transactions this worker has appended.
func (w *InMemoryWorker) Processed() int64 {
	return w.processed.Load()
}

// Process appends one transaction and publishes an alert when the
// counterparty's risk tier rises above its previous value.
func (w *InMemoryWorker) Process(ctx context.Context, tx model.Transaction) error {
	start := time.Now()
	defer func() { metrics.RecordWorkerLatency(time.Since(start)) }()

	unlock := w.locks.lock(tx.CounterpartyID)
	defer unlock()

	before, err := w.ledger.ByCounterparty(ctx, tx.CounterpartyID)
	if err != nil {
		metrics.RecordWorkerError("read")
		return fmt.Errorf("read ledger: %w", err)
	}
	now := w.now()
	prev, _ := w.assessor.Assess(tx.CounterpartyID, before, now)

	if err := w.ledger.Append(ctx, tx); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			w.log.Debug(ctx, "transaction already in ledger", logger.String("transaction_id", tx.ID))
			return nil
		}
		metrics.RecordWorkerError("append")
		return fmt.Errorf("append transaction %s: %w", tx.ID, err)
	}
	w.processed.Add(1)

	cur, ok := w.assessor.Assess(tx.CounterpartyID, append(before, tx), now)
	if !ok {
		return nil
	}
	metrics.RecordComplianceAssessment(string(cur.Risk))

	if cur.Risk.Rank() <= prev.Risk.Rank() || cur.Risk == compliance.Safe {
		return nil
	}
	alert := events.NewAlert(tx.ID, prev.Risk, cur)
	if err := w.publisher.Publish(ctx, alert); err != nil {
		metrics.RecordWorkerError("publish")
		return fmt.Errorf("publish alert for %s: %w", tx.CounterpartyID, err)
	}
	metrics.RecordComplianceAlert(string(cur.Risk))
	w.log.Info(ctx, "compliance risk escalated",
		logger.String("counterparty_id", tx.CounterpartyID),
		logger.String("previous", string(prev.Risk)),
		logger.String("current", string(cur.Risk)),
	)
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	log     logger.Logger
}

// NewPool creates workerCount workers. Values below 1 select the default.
func NewPool(workerCount int, q Queue, l Ledger, a Assessor, p Publisher, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}
	base := newSettings(append([]Option{WithName("pool")}, opts...))
	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		log:     base.log,
	}
	for i := range pool.workers {
		workerOpts := append([]Option{}, opts...)
		workerOpts = append(workerOpts,
			WithName("worker-"+strconv.Itoa(i)),
			func(s *settings) { s.locks = base.locks },
		)
		pool.workers[i] = NewInMemoryWorker(q, l, a, p, workerOpts...)
	}
	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Processed returns the total transactions appended by the pool.
func (p *Pool) Processed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Processed()
	}
	return n
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue, lets workers drain it, and stops whatever is
// still running when ctx or the pool timeout expires.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.log.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.log.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			w.stop()
		}
	}
	metrics.UpdateWorkerCount(0)
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}
