// Package repository stores the transaction ledger the compliance view is
// computed from.
package repository

import (
	"context"
	"strings"

	"github.com/okian/ratecard/internal/domain/model"
)

// Ledger is an append-only transaction store keyed by counterparty.
type Ledger interface {
	// Append records tx. It returns ErrDuplicate when the id is already
	// present and ErrInvalidTx when the id or counterparty is blank.
	Append(ctx context.Context, tx model.Transaction) error

	// ByCounterparty returns the counterparty's transactions ordered by
	// date. Unknown counterparties yield an empty slice.
	ByCounterparty(ctx context.Context, counterpartyID string) ([]model.Transaction, error)

	// Counterparties returns every counterparty id, sorted.
	Counterparties(ctx context.Context) ([]string, error)

	// Count returns the number of recorded transactions.
	Count(ctx context.Context) (int, error)

	Close() error
}

func validate(tx model.Transaction) error {
	if strings.TrimSpace(tx.ID) == "" || strings.TrimSpace(tx.CounterpartyID) == "" {
		return ErrInvalidTx
	}
	return nil
}
