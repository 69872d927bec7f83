// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Timestamps are BIGINT unix microseconds in both dialects.
const schema = `
-- Elections
CREATE TABLE IF NOT EXISTS election (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_by TEXT NOT NULL,
    starts_at BIGINT NOT NULL,
    ends_at BIGINT NOT NULL,
    activated_at BIGINT,
    closed_at BIGINT,
    created_at BIGINT NOT NULL,
    CHECK (ends_at > starts_at)
);

CREATE INDEX IF NOT EXISTS idx_election_created_at ON election(created_at);

-- Candidates
CREATE TABLE IF NOT EXISTS candidate (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    bio TEXT NOT NULL DEFAULT '',
    sort_order INTEGER NOT NULL,
    UNIQUE (election_id, id),
    UNIQUE (election_id, name)
);

CREATE INDEX IF NOT EXISTS idx_candidate_election_id ON candidate(election_id);

-- Voter references mirrored from the access gate
CREATE TABLE IF NOT EXISTS voter (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('admin', 'voter')),
    first_seen_at BIGINT NOT NULL,
    last_seen_at BIGINT NOT NULL
);

-- Votes (append-only)
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    candidate_id TEXT NOT NULL,
    voter_id TEXT NOT NULL,
    submitted_at BIGINT NOT NULL,
    nonce TEXT NOT NULL,
    receipt_hash TEXT NOT NULL UNIQUE,
    UNIQUE (election_id, voter_id),
    FOREIGN KEY (election_id, candidate_id) REFERENCES candidate(election_id, id)
);

CREATE INDEX IF NOT EXISTS idx_vote_candidate ON vote(election_id, candidate_id);
CREATE INDEX IF NOT EXISTS idx_vote_voter_id ON vote(voter_id);
`
