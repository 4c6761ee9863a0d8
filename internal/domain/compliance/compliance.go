// Package compliance sums a counterparty's transactions over a trailing
// window and derives a disclosure risk tier.
package compliance

import (
	"strings"
	"time"

	"github.com/okian/ratecard/internal/domain/model"
)

// Risk is the compliance tier of a counterparty.
type Risk string

// Risk tiers, lowest first.
const (
	Safe     Risk = "safe"
	Warning  Risk = "warning"
	Critical Risk = "critical"
)

// Rank orders risk tiers; unknown values rank below Safe.
func (r Risk) Rank() int {
	switch r {
	case Safe:
		return 0
	case Warning:
		return 1
	case Critical:
		return 2
	default:
		return -1
	}
}

// RiskFor derives the tier. Below the threshold nothing is a legal risk,
// whatever the contract state.
func RiskFor(exceeded bool, missing int) Risk {
	switch {
	case !exceeded:
		return Safe
	case missing > 0:
		return Critical
	default:
		return Warning
	}
}

// Result is the compliance view of one counterparty at one instant. It is
// derived on every call and never stored.
type Result struct {
	CounterpartyID    string    `json:"counterparty_id"`
	TotalCents        int64     `json:"total_cents"`
	ThresholdCents    int64     `json:"threshold_cents"`
	ThresholdExceeded bool      `json:"threshold_exceeded"`
	MissingContracts  int       `json:"missing_contracts"`
	InWindow          int       `json:"in_window"`
	Risk              Risk      `json:"risk"`
	WindowStart       time.Time `json:"window_start"`
	EvaluatedAt       time.Time `json:"evaluated_at"`
}

// Aggregator evaluates transaction histories. It holds no state beyond its
// configuration and is safe for concurrent use.
type Aggregator struct {
	threshold  int64
	windowDays int
}

// New returns an aggregator with the statutory defaults.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{threshold: DefaultThresholdCents, windowDays: DefaultWindowDays}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Threshold returns the configured threshold in cents.
func (a *Aggregator) Threshold() int64 { return a.threshold }

// WindowStart returns the inclusive lower bound of the window ending at
// now: the start of the UTC day, windowDays earlier.
func (a *Aggregator) WindowStart(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -a.windowDays)
}

// Assess evaluates records for counterpartyID as of now. It reports false
// when the id is blank. Records of other counterparties, records older than
// the window and records dated after now are ignored.
func (a *Aggregator) Assess(counterpartyID string, records []model.Transaction, now time.Time) (Result, bool) {
	id := strings.TrimSpace(counterpartyID)
	if id == "" {
		return Result{}, false
	}
	now = now.UTC()
	res := Result{
		CounterpartyID: id,
		ThresholdCents: a.threshold,
		WindowStart:    a.WindowStart(now),
		EvaluatedAt:    now,
	}
	for _, tx := range records {
		if tx.CounterpartyID != "" && tx.CounterpartyID != id {
			continue
		}
		if tx.Date.Before(res.WindowStart) || tx.Date.After(now) {
			continue
		}
		res.InWindow++
		res.TotalCents += tx.Value()
		if !tx.Status.Contracted() {
			res.MissingContracts++
		}
	}
	res.ThresholdExceeded = res.TotalCents > a.threshold
	res.Risk = RiskFor(res.ThresholdExceeded, res.MissingContracts)
	return res, true
}
