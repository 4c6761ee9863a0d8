// Package queue buffers accepted transactions between the API and the
// ledger workers.
package queue

import (
	"context"
	"sync"

	"github.com/okian/ratecard/internal/domain/model"
	"github.com/okian/ratecard/pkg/metrics"
)

const defaultCapacity = 10_000

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a transaction without blocking. It returns ErrFull when
	// the buffer is at capacity and ErrClosed after Close.
	Enqueue(ctx context.Context, tx model.Transaction) error

	// Dequeue returns the receive side of the queue. The channel is closed
	// once the queue is closed and drained.
	Dequeue() <-chan model.Transaction

	// Len returns the number of buffered transactions.
	Len() int

	// Cap returns the queue capacity.
	Cap() int

	// Close stops accepting transactions.
	Close() error
}

// InMemoryQueue implements Queue with a buffered channel.
type InMemoryQueue struct {
	items    chan model.Transaction
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.items = make(chan model.Transaction, q.capacity)
	metrics.UpdateQueue(0, q.capacity)
	return q
}

// Enqueue implements Queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, tx model.Transaction) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueRejection("closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueRejection("context_cancelled")
		return err
	}

	select {
	case q.items <- tx:
		metrics.UpdateQueue(len(q.items), q.capacity)
		return nil
	default:
		metrics.RecordQueueRejection("full")
		return ErrFull
	}
}

// Dequeue implements Queue.
func (q *InMemoryQueue) Dequeue() <-chan model.Transaction {
	return q.items
}

// Len implements Queue.
func (q *InMemoryQueue) Len() int {
	n := len(q.items)
	metrics.UpdateQueue(n, q.capacity)
	return n
}

// Cap implements Queue.
func (q *InMemoryQueue) Cap() int {
	return q.capacity
}

// Close implements Queue. It is safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}
