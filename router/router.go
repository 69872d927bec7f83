// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/ballot-core/auth"
	"github.com/danielhkuo/ballot-core/cliparse"
	"github.com/danielhkuo/ballot-core/db"
	"github.com/danielhkuo/ballot-core/elections"
	"github.com/danielhkuo/ballot-core/handlers"
	"github.com/danielhkuo/ballot-core/middleware"
	"github.com/danielhkuo/ballot-core/store"
	"github.com/danielhkuo/ballot-core/tally"
	"github.com/danielhkuo/ballot-core/voting"
)

func NewRouter(conn *sql.DB, dialect db.Dialect, gate *auth.Gate, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize services and handlers
	s := store.New(conn, dialect)
	electionHandler := handlers.NewElectionHandler(elections.NewService(s))
	votingHandler := handlers.NewVotingHandler(voting.NewCoordinator(s, cfg.VoteTimeout))
	resultsHandler := handlers.NewResultsHandler(tally.NewEngine(s))

	public := middleware.WithLogging
	voter := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.Authenticate(gate, h))
	}
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAdmin(gate, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Election management
	mux.HandleFunc("POST /elections", admin(electionHandler.Create))
	mux.HandleFunc("GET /elections", public(electionHandler.List))
	mux.HandleFunc("GET /elections/{id}", public(electionHandler.Get))
	mux.HandleFunc("DELETE /elections/{id}", admin(electionHandler.Delete))
	mux.HandleFunc("POST /elections/{id}/activate", admin(electionHandler.Activate))
	mux.HandleFunc("POST /elections/{id}/close", admin(electionHandler.Close))
	mux.HandleFunc("POST /elections/{id}/candidates", admin(electionHandler.AddCandidate))
	mux.HandleFunc("DELETE /elections/{id}/candidates/{candidateId}", admin(electionHandler.RemoveCandidate))

	// Results
	mux.HandleFunc("GET /elections/{id}/results", public(resultsHandler.GetResults))
	mux.HandleFunc("GET /elections/{id}/audit", admin(resultsHandler.GetAudit))

	// Voting
	mux.HandleFunc("POST /votes", voter(votingHandler.CastVote))
	mux.HandleFunc("GET /elections/{id}/my-vote", voter(votingHandler.GetMyVote))
	mux.HandleFunc("GET /receipts/{hash}", voter(votingHandler.VerifyReceipt))
	mux.HandleFunc("GET /users/me", voter(votingHandler.GetMe))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ballot-core API v1"))
	})

	return mux
}
