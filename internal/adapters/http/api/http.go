// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/ratecard/internal/app"
	"github.com/okian/ratecard/internal/domain/compliance"
	"github.com/okian/ratecard/internal/domain/model"
	"github.com/okian/ratecard/internal/domain/normalize"
	"github.com/okian/ratecard/internal/domain/offer"
	"github.com/okian/ratecard/internal/domain/tables"
	"github.com/okian/ratecard/internal/domain/valuation"
	"github.com/okian/ratecard/pkg/logger"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Pricing operations never touch the ledger.
	Valuate(ctx context.Context, raw normalize.Raw) valuation.Result
	Evaluate(ctx context.Context, raw normalize.Raw) (valuation.Result, offer.Evaluation, error)

	// SubmitTransaction queues a ledger write. It returns
	// service.ErrBackpressure when the queue is full.
	SubmitTransaction(ctx context.Context, tx model.Transaction) (accepted, duplicate bool, err error)

	// Read operations expose the compliance view.
	Compliance(ctx context.Context, counterpartyID string) (compliance.Result, bool, error)
	ComplianceOverview(ctx context.Context) ([]compliance.Result, error)

	Tables() *tables.Tables
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	valuationHandler   *ValuationHandler
	transactionHandler *TransactionHandler
	complianceHandler  *ComplianceHandler
	tablesHandler      *TablesHandler

	limiter *rate.Limiter
	log     logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.valuationHandler = NewValuationHandler(deps, s.log)
	s.transactionHandler = NewTransactionHandler(deps, s.log)
	s.complianceHandler = NewComplianceHandler(deps, s.log)
	s.tablesHandler = NewTablesHandler(deps)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/tables", MetricsMiddleware(s.tablesHandler.HandleGetTables, "tables"))
	mux.HandleFunc("/valuations", s.guard(s.valuationHandler.HandlePostValuation, "valuations"))
	mux.HandleFunc("/evaluations", s.guard(s.valuationHandler.HandlePostEvaluation, "evaluations"))
	mux.HandleFunc("/transactions", s.guard(s.transactionHandler.HandlePostTransaction, "transactions"))
	mux.HandleFunc("/compliance", s.guard(s.complianceHandler.HandleGetOverview, "compliance_overview"))
	mux.HandleFunc("/compliance/", s.guard(s.complianceHandler.HandleGetCompliance, "compliance"))
}

// guard applies rate limiting inside the metrics middleware so throttled
// requests are still counted.
func (s *Server) guard(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return MetricsMiddleware(RateLimitMiddleware(next, endpoint, s.limiter), endpoint)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeBody reads a single JSON document of at most maxBodyBytes into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// writeServiceError maps service error kinds to HTTP status codes.
// Unexpected errors are logged and reported without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, log logger.Logger, op string, err error) {
	switch {
	case errors.Is(err, service.ErrMissingOffer):
		writeError(w, http.StatusBadRequest, "missing_offer", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrInvalidTransaction):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", NewKind(op, ErrUnavailable))
	default:
		log.Error(r.Context(), "request failed", logger.String("op", op), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", NewKind(op, ErrInternal))
	}
}
