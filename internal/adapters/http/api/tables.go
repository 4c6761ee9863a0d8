package api

import "net/http"

// TablesHandler exposes the active reference tables.
type TablesHandler struct {
	deps Dependencies
}

// NewTablesHandler creates a new tables handler.
func NewTablesHandler(deps Dependencies) *TablesHandler {
	return &TablesHandler{deps: deps}
}

// HandleGetTables handles GET /tables requests.
func (h *TablesHandler) HandleGetTables(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Tables())
}
