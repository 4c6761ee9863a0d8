// Package events publishes compliance alerts to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/okian/ratecard/internal/domain/compliance"
	"github.com/okian/ratecard/pkg/logger"
)

// EventRiskChanged is emitted when a counterparty's risk tier escalates.
const EventRiskChanged = "compliance.risk_changed"

// Alert is the payload of EventRiskChanged.
type Alert struct {
	Type             string          `json:"type"`
	CounterpartyID   string          `json:"counterparty_id"`
	TransactionID    string          `json:"transaction_id"`
	Previous         compliance.Risk `json:"previous"`
	Current          compliance.Risk `json:"current"`
	TotalCents       int64           `json:"total_cents"`
	ThresholdCents   int64           `json:"threshold_cents"`
	MissingContracts int             `json:"missing_contracts"`
	At               time.Time       `json:"at"`
}

// NewAlert builds a risk-change alert from two assessments.
func NewAlert(txID string, previous compliance.Risk, current compliance.Result) Alert {
	return Alert{
		Type:             EventRiskChanged,
		CounterpartyID:   current.CounterpartyID,
		TransactionID:    txID,
		Previous:         previous,
		Current:          current.Risk,
		TotalCents:       current.TotalCents,
		ThresholdCents:   current.ThresholdCents,
		MissingContracts: current.MissingContracts,
		At:               current.EvaluatedAt,
	}
}

// Publisher delivers alerts.
type Publisher interface {
	Publish(ctx context.Context, alert Alert) error
	Close() error
}

// LogPublisher writes alerts to the structured log. It is the default when
// no broker is configured.
type LogPublisher struct {
	log logger.Logger
}

// NewLogPublisher creates a publisher that logs through log.
func NewLogPublisher(log logger.Logger) *LogPublisher {
	return &LogPublisher{log: log.Named("events")}
}

// Publish implements Publisher.
func (p *LogPublisher) Publish(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	p.log.Warn(ctx, "compliance risk changed",
		logger.String("event_type", alert.Type),
		logger.String("counterparty_id", alert.CounterpartyID),
		logger.String("previous", string(alert.Previous)),
		logger.String("current", string(alert.Current)),
		logger.Int64("total_cents", alert.TotalCents),
		logger.Int("payload_bytes", len(payload)),
	)
	return nil
}

// Close implements Publisher.
func (p *LogPublisher) Close() error { return nil }
