// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the ballot core API.

# Route Registration

NewRouter wires the store, domain services and handlers into an
http.ServeMux:

	mux := router.NewRouter(conn, dialect, gate, cfg)

# Endpoints

Health:

	GET /health

Elections (admin routes need an admin bearer token):

	POST   /elections                                  - Create election (admin)
	GET    /elections                                  - List elections
	GET    /elections/{id}                             - Election detail
	DELETE /elections/{id}                             - Delete election (admin)
	POST   /elections/{id}/activate                    - Arm for voting (admin)
	POST   /elections/{id}/close                       - Force close (admin)
	POST   /elections/{id}/candidates                  - Add candidate (admin, draft only)
	DELETE /elections/{id}/candidates/{candidateId}    - Remove candidate (admin, draft only)

Results:

	GET /elections/{id}/results - Live tally
	GET /elections/{id}/audit   - Ledger audit (admin)

Voting (any authenticated identity):

	POST /votes                  - Cast vote
	GET  /elections/{id}/my-vote - Own vote status
	GET  /receipts/{hash}        - Verify a receipt
	GET  /users/me               - Identity and vote history
*/
package router
