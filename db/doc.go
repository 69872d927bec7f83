// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Connections

Open selects the driver from the configured database type:

	conn, dialect, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

sqlite (modernc.org/sqlite) is the default; connections get foreign keys,
WAL journaling, a busy timeout and immediate write transactions. postgres
uses github.com/lib/pq. Queries are written with ? placeholders and passed
through Rebind for postgres.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - election: metadata and schedule (status is computed, never stored)
  - candidate: ballot entries per election
  - voter: identity references mirrored from bearer tokens
  - vote: one row per (election, voter), append-only

# Relationships

	election 1──* candidate
	election 1──* vote
	candidate 1──* vote (composite key: election_id, candidate_id)

# Constraints

  - vote.(election_id, voter_id) unique: at most one vote per voter per election
  - vote.receipt_hash unique
  - vote.(election_id, candidate_id) references candidate: a vote's candidate
    belongs to the vote's election
  - election.ends_at > election.starts_at
*/
package db
