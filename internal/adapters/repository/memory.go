package repository

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/okian/ratecard/internal/domain/model"
)

// MemoryLedger implements Ledger in process memory.
type MemoryLedger struct {
	mu    sync.RWMutex
	byCP  map[string][]model.Transaction
	ids   map[string]struct{}
	count int
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		byCP: make(map[string][]model.Transaction),
		ids:  make(map[string]struct{}),
	}
}

// Append implements Ledger.
func (m *MemoryLedger) Append(_ context.Context, tx model.Transaction) error {
	if err := validate(tx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ids[tx.ID]; ok {
		return ErrDuplicate
	}
	if tx.TotalCents != nil {
		total := *tx.TotalCents
		tx.TotalCents = &total
	}
	m.ids[tx.ID] = struct{}{}
	m.byCP[tx.CounterpartyID] = append(m.byCP[tx.CounterpartyID], tx)
	m.count++
	return nil
}

// ByCounterparty implements Ledger.
func (m *MemoryLedger) ByCounterparty(_ context.Context, counterpartyID string) ([]model.Transaction, error) {
	m.mu.RLock()
	out := slices.Clone(m.byCP[counterpartyID])
	m.mu.RUnlock()

	if out == nil {
		out = []model.Transaction{}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Counterparties implements Ledger.
func (m *MemoryLedger) Counterparties(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.byCP))
	for id := range m.byCP {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Count implements Ledger.
func (m *MemoryLedger) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.count, nil
}

// Close implements Ledger.
func (m *MemoryLedger) Close() error { return nil }
