package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/okian/ratecard/internal/adapters/mq/queue"
	"github.com/okian/ratecard/internal/domain/compliance"
	"github.com/okian/ratecard/internal/domain/model"
	"github.com/okian/ratecard/internal/tracing"
	"github.com/okian/ratecard/pkg/logger"
	"github.com/okian/ratecard/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
)

// Transaction outcomes reported to metrics.
const (
	outcomeAccepted  = "accepted"
	outcomeDuplicate = "duplicate"
	outcomeRejected  = "rejected"
	outcomeInvalid   = "invalid"
)

// SubmitTransaction queues tx for the ledger workers. A transaction id that
// was already submitted reports duplicate and is not queued again. When the
// queue is full the id is released so the caller can retry, and
// ErrBackpressure is returned.
func (s *Service) SubmitTransaction(ctx context.Context, tx model.Transaction) (accepted, duplicate bool, err error) {
	ctx, span := tracing.Start(ctx, "service.SubmitTransaction",
		attribute.String("transaction.id", tx.ID),
		attribute.String("transaction.counterparty", tx.CounterpartyID),
	)
	defer span.End()
	defer func() { tracing.RecordError(span, err) }()

	_, deduper, q, err := s.pipeline()
	if err != nil {
		return false, false, err
	}

	if err := validateTransaction(tx); err != nil {
		metrics.RecordTransaction(outcomeInvalid)
		return false, false, err
	}
	if tx.Date.IsZero() {
		tx.Date = s.now().UTC()
	}

	seen, err := deduper.SeenAndRecord(ctx, tx.ID)
	if err != nil {
		metrics.RecordErrorByComponent("dedupe", "seen_and_record")
		return false, false, fmt.Errorf("dedupe transaction %s: %w", tx.ID, err)
	}
	if seen {
		metrics.RecordTransaction(outcomeDuplicate)
		s.logger.Debug(ctx, "duplicate transaction, skipping", logger.String("transactionID", tx.ID))
		return false, true, nil
	}

	if err := q.Enqueue(ctx, tx); err != nil {
		if uerr := deduper.Unrecord(ctx, tx.ID); uerr != nil {
			s.logger.Warn(ctx, "release transaction id", logger.String("transactionID", tx.ID), logger.Error(uerr))
		}
		metrics.RecordTransaction(outcomeRejected)
		switch {
		case errors.Is(err, queue.ErrFull):
			return false, false, fmt.Errorf("%w: %w", ErrBackpressure, err)
		case errors.Is(err, queue.ErrClosed):
			return false, false, fmt.Errorf("%w: %w", ErrNotStarted, err)
		default:
			return false, false, fmt.Errorf("enqueue transaction %s: %w", tx.ID, err)
		}
	}

	metrics.RecordTransaction(outcomeAccepted)
	return true, false, nil
}

func validateTransaction(tx model.Transaction) error {
	switch {
	case strings.TrimSpace(tx.ID) == "":
		return fmt.Errorf("%w: transaction id is required", ErrInvalidTransaction)
	case strings.TrimSpace(tx.CounterpartyID) == "":
		return fmt.Errorf("%w: counterparty id is required", ErrInvalidTransaction)
	case tx.CashCents < 0 || tx.InKindCents < 0 || (tx.TotalCents != nil && *tx.TotalCents < 0):
		return fmt.Errorf("%w: amounts must not be negative", ErrInvalidTransaction)
	}
	return nil
}

// Compliance assesses one counterparty as of now. It reports false when the
// id is blank or the ledger holds no transactions for it.
func (s *Service) Compliance(ctx context.Context, counterpartyID string) (compliance.Result, bool, error) {
	ctx, span := tracing.Start(ctx, "service.Compliance",
		attribute.String("counterparty.id", counterpartyID),
	)
	defer span.End()

	ledger, _, _, err := s.pipeline()
	if err != nil {
		tracing.RecordError(span, err)
		return compliance.Result{}, false, err
	}

	id := strings.TrimSpace(counterpartyID)
	if id == "" {
		return compliance.Result{}, false, nil
	}
	records, err := ledger.ByCounterparty(ctx, id)
	if err != nil {
		tracing.RecordError(span, err)
		return compliance.Result{}, false, fmt.Errorf("read ledger for %s: %w", id, err)
	}
	if len(records) == 0 {
		return compliance.Result{}, false, nil
	}

	res, ok := s.aggregator.Assess(id, records, s.now())
	if ok {
		metrics.RecordComplianceAssessment(string(res.Risk))
		span.SetAttributes(attribute.String("compliance.risk", string(res.Risk)))
	}
	return res, ok, nil
}

// ComplianceOverview assesses every counterparty in the ledger, highest
// risk first, then by id.
func (s *Service) ComplianceOverview(ctx context.Context) ([]compliance.Result, error) {
	ctx, span := tracing.Start(ctx, "service.ComplianceOverview")
	defer span.End()

	ledger, _, _, err := s.pipeline()
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	ids, err := ledger.Counterparties(ctx)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("list counterparties: %w", err)
	}

	now := s.now()
	out := make([]compliance.Result, 0, len(ids))
	for _, id := range ids {
		records, err := ledger.ByCounterparty(ctx, id)
		if err != nil {
			tracing.RecordError(span, err)
			return nil, fmt.Errorf("read ledger for %s: %w", id, err)
		}
		if res, ok := s.aggregator.Assess(id, records, now); ok {
			out = append(out, res)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if ri, rj := out[i].Risk.Rank(), out[j].Risk.Rank(); ri != rj {
			return ri > rj
		}
		return out[i].CounterpartyID < out[j].CounterpartyID
	})
	span.SetAttributes(attribute.Int("compliance.counterparties", len(out)))
	return out, nil
}
