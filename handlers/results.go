// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/ballot-core/middleware"
	"github.com/danielhkuo/ballot-core/tally"
)

type ResultsHandler struct {
	tally *tally.Engine
}

func NewResultsHandler(e *tally.Engine) *ResultsHandler {
	return &ResultsHandler{tally: e}
}

// GetResults handles GET /elections/{id}/results
// Results are public and available in every election state.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	res, err := h.tally.Results(r.Context(), id)
	if err != nil {
		middleware.Error(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, res)
}

// GetAudit handles GET /elections/{id}/audit
func (h *ResultsHandler) GetAudit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	report, err := h.tally.Audit(r.Context(), id)
	if err != nil {
		middleware.Error(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, report)
}
