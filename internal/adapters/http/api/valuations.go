package api

import (
	"net/http"
	"strings"

	"github.com/okian/ratecard/internal/domain/currency"
	"github.com/okian/ratecard/internal/domain/normalize"
	"github.com/okian/ratecard/internal/domain/offer"
	"github.com/okian/ratecard/internal/domain/valuation"
	"github.com/okian/ratecard/pkg/logger"
)

// ValuationHandler handles valuation and offer evaluation requests.
type ValuationHandler struct {
	deps Dependencies
	log  logger.Logger
}

// NewValuationHandler creates a new valuation handler.
func NewValuationHandler(deps Dependencies, log logger.Logger) *ValuationHandler {
	return &ValuationHandler{deps: deps, log: log}
}

type valuationResponse struct {
	valuation.Result
	Display *currency.Display `json:"display,omitempty"`
}

type evaluationResponse struct {
	Valuation  valuation.Result  `json:"valuation"`
	Evaluation offer.Evaluation  `json:"evaluation"`
	Display    *currency.Display `json:"display,omitempty"`
}

// HandlePostValuation handles POST /valuations requests.
func (h *ValuationHandler) HandlePostValuation(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_valuation"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var raw normalize.Raw
	if err := decodeBody(w, r, &raw); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	res := h.deps.Valuate(r.Context(), raw)
	writeJSON(w, http.StatusOK, valuationResponse{Result: res, Display: display(r, res)})
}

// HandlePostEvaluation handles POST /evaluations requests.
func (h *ValuationHandler) HandlePostEvaluation(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_evaluation"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var raw normalize.Raw
	if err := decodeBody(w, r, &raw); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	res, ev, err := h.deps.Evaluate(r.Context(), raw)
	if err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, evaluationResponse{Valuation: res, Evaluation: ev, Display: display(r, res)})
}

// display renders the range in the currency named by ?currency=, if any.
func display(r *http.Request, res valuation.Result) *currency.Display {
	code := strings.TrimSpace(r.URL.Query().Get("currency"))
	if code == "" {
		return nil
	}
	d := currency.Range(res.Minimum, res.Average, res.Maximum, code)
	return &d
}
