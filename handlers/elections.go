// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/ballot-core/apperrors"
	"github.com/danielhkuo/ballot-core/auth"
	"github.com/danielhkuo/ballot-core/elections"
	"github.com/danielhkuo/ballot-core/middleware"
	"github.com/danielhkuo/ballot-core/models"
)

type ElectionHandler struct {
	elections *elections.Service
}

func NewElectionHandler(svc *elections.Service) *ElectionHandler {
	return &ElectionHandler{elections: svc}
}

// identity returns the caller resolved by middleware.Authenticate
func identity(w http.ResponseWriter, r *http.Request) (models.Voter, bool) {
	voter, ok := auth.VoterFrom(r.Context())
	if !ok {
		middleware.Error(w, auth.ErrMissingToken)
	}
	return voter, ok
}

// pathID reads a required path value
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := r.PathValue(name)
	if id == "" {
		middleware.Error(w, apperrors.Validation(name+" is required"))
		return "", false
	}
	return id, true
}

// Create handles POST /elections
func (h *ElectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	admin, ok := identity(w, r)
	if !ok {
		return
	}

	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.Error(w, err)
		return
	}

	e, err := h.elections.Create(r.Context(), req, admin)
	if err != nil {
		middleware.Error(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, e)
}

// List handles GET /elections
func (h *ElectionHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.elections.List(r.Context())
	if err != nil {
		middleware.Error(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, list)
}

// Get handles GET /elections/{id}
func (h *ElectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	e, err := h.elections.Get(r.Context(), id)
	if err != nil {
		middleware.Error(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, e)
}

// Delete handles DELETE /elections/{id}
// Candidates and votes go with the election.
func (h *ElectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.elections.Delete(r.Context(), id); err != nil {
		middleware.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Activate handles POST /elections/{id}/activate
func (h *ElectionHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	e, err := h.elections.Activate(r.Context(), id)
	if err != nil {
		middleware.Error(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, e)
}

// Close handles POST /elections/{id}/close
func (h *ElectionHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	e, err := h.elections.Close(r.Context(), id)
	if err != nil {
		middleware.Error(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, e)
}

// AddCandidate handles POST /elections/{id}/candidates
func (h *ElectionHandler) AddCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.AddCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.Error(w, err)
		return
	}

	c, err := h.elections.AddCandidate(r.Context(), id, req)
	if err != nil {
		middleware.Error(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, c)
}

// RemoveCandidate handles DELETE /elections/{id}/candidates/{candidateId}
func (h *ElectionHandler) RemoveCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	candidateID, ok := pathID(w, r, "candidateId")
	if !ok {
		return
	}

	if err := h.elections.RemoveCandidate(r.Context(), id, candidateID); err != nil {
		middleware.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
