// Package model contains domain models passed between layers.
package model

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the contract state of a sponsorship transaction.
type Status string

// Transaction statuses.
const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusSigned    Status = "signed"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// ParseStatus folds case and whitespace. Unknown values are kept verbatim so
// they still count as missing contracts.
func ParseStatus(s string) Status {
	return Status(strings.ToLower(strings.TrimSpace(s)))
}

// Contracted reports whether the status is backed by a signed contract.
func (s Status) Contracted() bool {
	return s == StatusSigned || s == StatusPaid
}

// Transaction is one sponsorship deal between a creator and a counterparty.
// Amounts are in minor currency units (cents).
type Transaction struct {
	ID             string    // unique id for idempotency
	CounterpartyID string    // sponsor the compliance window is computed for
	CreatorID      string    // creator that received the deal
	TotalCents     *int64    // combined value, when known upstream
	CashCents      int64     // cash component
	InKindCents    int64     // in-kind component (products, travel, ...)
	Status         Status    // contract status
	Date           time.Time // transaction date
}

// Value returns the combined total, or cash plus in-kind when no total
// was supplied.
func (t Transaction) Value() int64 {
	if t.TotalCents != nil {
		return *t.TotalCents
	}
	return t.CashCents + t.InKindCents
}

var centsPerUnit = decimal.NewFromInt(100)

// CentsFromUnits converts currency units (the valuation unit) to cents (the
// compliance unit), rounding half away from zero. Non-finite input is 0.
func CentsFromUnits(units float64) int64 {
	if math.IsNaN(units) || math.IsInf(units, 0) {
		return 0
	}
	return decimal.NewFromFloat(units).Mul(centsPerUnit).Round(0).IntPart()
}

// UnitsFromCents converts cents back to currency units.
func UnitsFromCents(cents int64) float64 {
	return decimal.New(cents, -2).InexactFloat64()
}
