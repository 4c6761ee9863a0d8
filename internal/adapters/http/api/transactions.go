package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/ratecard/internal/domain/model"
	"github.com/okian/ratecard/pkg/logger"
)

const dateLayout = "2006-01-02"

// TransactionHandler handles ledger writes.
type TransactionHandler struct {
	deps Dependencies
	log  logger.Logger
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(deps Dependencies, log logger.Logger) *TransactionHandler {
	return &TransactionHandler{deps: deps, log: log}
}

// transactionRequest mirrors the OpenAPI schema for POST /transactions.
// Each amount may be sent in cents or in currency units, not both.
type transactionRequest struct {
	TransactionID  string   `json:"transaction_id"`
	CounterpartyID string   `json:"counterparty_id"`
	CreatorID      string   `json:"creator_id"`
	TotalCents     *int64   `json:"total_cents"`
	CashCents      *int64   `json:"cash_cents"`
	InKindCents    *int64   `json:"in_kind_cents"`
	Total          *float64 `json:"total"`
	Cash           *float64 `json:"cash"`
	InKind         *float64 `json:"in_kind"`
	Status         string   `json:"status"`
	Date           string   `json:"date"`
}

func (t transactionRequest) toModel() (model.Transaction, error) {
	if strings.TrimSpace(t.CounterpartyID) == "" {
		return model.Transaction{}, errors.New("missing counterparty_id")
	}
	status := model.ParseStatus(t.Status)
	if status == "" {
		return model.Transaction{}, errors.New("missing status")
	}
	date, err := parseDate(t.Date)
	if err != nil {
		return model.Transaction{}, err
	}
	total, err := amount("total", t.TotalCents, t.Total)
	if err != nil {
		return model.Transaction{}, err
	}
	cash, err := amount("cash", t.CashCents, t.Cash)
	if err != nil {
		return model.Transaction{}, err
	}
	inKind, err := amount("in_kind", t.InKindCents, t.InKind)
	if err != nil {
		return model.Transaction{}, err
	}
	id := strings.TrimSpace(t.TransactionID)
	if id == "" {
		id = uuid.NewString()
	}
	tx := model.Transaction{
		ID:             id,
		CounterpartyID: strings.TrimSpace(t.CounterpartyID),
		CreatorID:      strings.TrimSpace(t.CreatorID),
		TotalCents:     total,
		Status:         status,
		Date:           date,
	}
	if cash != nil {
		tx.CashCents = *cash
	}
	if inKind != nil {
		tx.InKindCents = *inKind
	}
	return tx, nil
}

// amount resolves one money field given in cents or in currency units.
func amount(name string, cents *int64, units *float64) (*int64, error) {
	switch {
	case cents != nil && units != nil:
		return nil, errors.New("both " + name + " and " + name + "_cents set")
	case units != nil:
		c := model.CentsFromUnits(*units)
		return &c, nil
	default:
		return cents, nil
	}
}

// parseDate accepts RFC3339 timestamps or calendar dates. A blank date is
// left zero and stamped by the service.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, errors.New("invalid date; must be RFC3339 or YYYY-MM-DD")
	}
	return t, nil
}

type ackResponse struct {
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	Duplicate     bool   `json:"duplicate"`
}

// HandlePostTransaction handles POST /transactions requests.
func (h *TransactionHandler) HandlePostTransaction(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_transaction"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req transactionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	tx, err := req.toModel()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	_, duplicate, err := h.deps.SubmitTransaction(r.Context(), tx)
	if err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", TransactionID: tx.ID, Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", TransactionID: tx.ID})
}
