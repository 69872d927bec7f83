// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the ballot-core API server.

ballot-core runs single-choice elections: an admin creates an election with
a fixed candidate list, authenticated voters cast exactly one vote each and
receive a verifiable receipt hash, and anyone can read the live tally.

# Starting the Server

The server reads configuration from .env, the environment and CLI flags:

	DATABASE_URL=ballot.db TOKEN_SECRET=... go run . serve

Or with flags:

	go run . serve -p 3318 -t postgres -d "postgres://..."

# Development Tokens

Bearer tokens are HS256 JWTs signed with TOKEN_SECRET:

	TOKEN_SECRET=... go run . issue-token --id alice --role admin

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite file path or PostgreSQL connection string
  - TOKEN_SECRET (--token-secret): HMAC secret for bearer tokens

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - TOKEN_ISSUER (--token-issuer): expected token issuer (default: ballot-core)
  - VOTE_TIMEOUT (--vote-timeout): bound on one vote submission (default: 5s)
  - IDENTITY_CACHE_SIZE: resolved-token cache entries (default: 1024)
  - SHUTDOWN_TIMEOUT: graceful shutdown window (default: 10s)

# Architecture

  - handlers: HTTP request handlers (elections, votes, results)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, bearer authentication, error mapping
  - elections, voting, tally: domain services
  - lifecycle: election state machine
  - receipt: vote receipt hashing
  - store: persistence over database/sql
  - auth: token resolution and the identity cache
  - db: connection setup and schema
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
