// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

  - CreateElectionRequest: title, description, start_time, end_time, candidate_names
  - AddCandidateRequest: name, bio
  - CastVoteRequest: election_id, candidate_id, user_id

# Response Types

  - Receipt: vote_hash, election_id, submitted_at, message
  - MyVoteResponse: voted, vote_hash, submitted_at
  - ReceiptVerification: recomputed receipt check
  - ResultsResponse: results[{id, name, vote_count, percent}], total_votes
  - AuditReport: ledger recount and receipt verification
  - MeResponse: caller identity and vote history
  - ErrorResponse: error, kind, message, detail

# Domain Types

  - Election: metadata, schedule, computed status and candidates
  - Candidate: ballot entry owned by one election
  - Voter: identity reference resolved by the access gate
  - Vote: one append-only ballot per voter per election

# Constants

Status values:

	StatusDraft  = "draft"
	StatusActive = "active"
	StatusClosed = "closed"

Roles:

	RoleAdmin = "admin"
	RoleVoter = "voter"
*/
package models
