package api

import (
	"net/http"
	"strings"

	"github.com/okian/ratecard/internal/domain/compliance"
	"github.com/okian/ratecard/internal/domain/model"
	"github.com/okian/ratecard/pkg/logger"
)

// ComplianceHandler serves the derived compliance view.
type ComplianceHandler struct {
	deps Dependencies
	log  logger.Logger
}

// NewComplianceHandler creates a new compliance handler.
func NewComplianceHandler(deps Dependencies, log logger.Logger) *ComplianceHandler {
	return &ComplianceHandler{deps: deps, log: log}
}

// complianceResponse adds whole-unit amounts next to the cent values.
type complianceResponse struct {
	compliance.Result
	Total     float64 `json:"total"`
	Threshold float64 `json:"threshold"`
}

func newComplianceResponse(res compliance.Result) complianceResponse {
	return complianceResponse{
		Result:    res,
		Total:     model.UnitsFromCents(res.TotalCents),
		Threshold: model.UnitsFromCents(res.ThresholdCents),
	}
}

type overviewResponse struct {
	Counterparties []complianceResponse `json:"counterparties"`
}

// HandleGetCompliance handles GET /compliance/{counterparty_id} requests.
func (h *ComplianceHandler) HandleGetCompliance(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_compliance"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /compliance/
	id := strings.TrimPrefix(r.URL.Path, "/compliance/")
	if strings.TrimSpace(id) == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	res, ok, err := h.deps.Compliance(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, newComplianceResponse(res))
}

// HandleGetOverview handles GET /compliance requests.
func (h *ComplianceHandler) HandleGetOverview(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_compliance_overview"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	results, err := h.deps.ComplianceOverview(r.Context())
	if err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	out := overviewResponse{Counterparties: make([]complianceResponse, len(results))}
	for i, res := range results {
		out.Counterparties[i] = newComplianceResponse(res)
	}
	writeJSON(w, http.StatusOK, out)
}
