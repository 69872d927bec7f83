// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the ballot core API.

# Handler Types

Each handler is a struct wrapping one domain service:

  - ElectionHandler: election lifecycle and candidate lists
  - VotingHandler: vote casting, reconciliation, receipts and voter history
  - ResultsHandler: results and ledger audit

	electionHandler := handlers.NewElectionHandler(elections.NewService(s))

Handlers never touch SQL. Domain errors are written with middleware.Error,
which maps the error kind to the HTTP status.

# Election Lifecycle

Elections move draft → active → closed:

	POST /elections                 → Create (admin)
	POST /elections/{id}/activate   → Activate (admin)
	POST /elections/{id}/close      → Close (admin)
	DELETE /elections/{id}          → Delete (admin)

An activated election is active once its start time passes and closes on its
own at its end time.

# Voting Flow

	POST /votes                     → CastVote (201 with vote_hash)
	GET /elections/{id}/my-vote     → GetMyVote
	GET /receipts/{hash}            → VerifyReceipt

A second vote by the same voter in the same election gets 409.

# Identity

Handlers read the caller from the request context, set by
middleware.Authenticate. A user_id or creator_id in a request body must match
the authenticated identity.
*/
package handlers
