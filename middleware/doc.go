// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status, duration_ms).

# Authentication

Resolve the bearer token before the handler runs:

	mux.HandleFunc("POST /votes", middleware.WithLogging(middleware.Authenticate(gate, h.CastVote)))
	mux.HandleFunc("POST /elections", middleware.WithLogging(middleware.RequireAdmin(gate, h.Create)))

Missing or invalid tokens get 401. RequireAdmin answers 403 for a valid
voter-role token. Handlers read the identity with auth.VoterFrom.

# Errors

Error maps an apperrors kind to an HTTP status and writes
{error, kind, message, detail}:

	validation, invalid_candidate, election_not_active  400
	unauthorized                                        401
	forbidden                                           403
	not_found                                           404
	already_voted, conflict, invalid_transition         409
	internal                                            500
	storage_unavailable                                 503

Internal and storage errors are logged; their causes never reach the client.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.Error(w, err)
		return
	}
*/
package middleware
