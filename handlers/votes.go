// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/ballot-core/apperrors"
	"github.com/danielhkuo/ballot-core/middleware"
	"github.com/danielhkuo/ballot-core/models"
	"github.com/danielhkuo/ballot-core/voting"
)

type VotingHandler struct {
	voting *voting.Coordinator
}

func NewVotingHandler(c *voting.Coordinator) *VotingHandler {
	return &VotingHandler{voting: c}
}

// CastVote handles POST /votes
// The voter is the authenticated identity; a user_id in the body must match it.
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	voter, ok := identity(w, r)
	if !ok {
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.Error(w, err)
		return
	}

	if req.UserID != "" && req.UserID != voter.ID {
		middleware.Error(w, apperrors.New(apperrors.KindForbidden, "user_id must match the authenticated user"))
		return
	}

	rec, err := h.voting.CastVote(r.Context(), req.ElectionID, req.CandidateID, voter)
	if err != nil {
		middleware.Error(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, rec)
}

// GetMyVote handles GET /elections/{id}/my-vote
// Lets a client reconcile after a timed-out submission.
func (h *VotingHandler) GetMyVote(w http.ResponseWriter, r *http.Request) {
	voter, ok := identity(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	resp, err := h.voting.MyVote(r.Context(), id, voter.ID)
	if err != nil {
		middleware.Error(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// VerifyReceipt handles GET /receipts/{hash}
func (h *VotingHandler) VerifyReceipt(w http.ResponseWriter, r *http.Request) {
	voter, ok := identity(w, r)
	if !ok {
		return
	}
	hash, ok := pathID(w, r, "hash")
	if !ok {
		return
	}

	resp, err := h.voting.VerifyReceipt(r.Context(), hash, voter)
	if err != nil {
		middleware.Error(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// GetMe handles GET /users/me
func (h *VotingHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	voter, ok := identity(w, r)
	if !ok {
		return
	}

	resp, err := h.voting.History(r.Context(), voter)
	if err != nil {
		middleware.Error(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}
