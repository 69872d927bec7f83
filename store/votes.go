// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/danielhkuo/ballot-core/apperrors"
	"github.com/danielhkuo/ballot-core/models"
)

// RecordVote appends a vote.
//
// The (election_id, voter_id) unique index is the arbiter for concurrent
// callers: the insert is ON CONFLICT DO NOTHING, so exactly one of any number
// of racing inserts affects a row and the rest report Conflict.
func (o ops) RecordVote(ctx context.Context, v models.Vote) (models.Vote, error) {
	var belongs bool
	err := o.q.QueryRowContext(ctx, o.rebind(`
		SELECT EXISTS(
			SELECT 1 FROM candidate
			WHERE election_id = ? AND id = ?
		)
	`), v.ElectionID, v.CandidateID).Scan(&belongs)
	if err != nil {
		return models.Vote{}, classify("check candidate", err)
	}
	if !belongs {
		return models.Vote{}, apperrors.Validation("candidate does not belong to this election")
	}

	res, err := o.q.ExecContext(ctx, o.rebind(`
		INSERT INTO vote (id, election_id, candidate_id, voter_id, submitted_at, nonce, receipt_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (election_id, voter_id) DO NOTHING
	`), v.ID, v.ElectionID, v.CandidateID, v.VoterID, toMicros(v.SubmittedAt), hex.EncodeToString(v.Nonce), v.ReceiptHash)
	if err != nil {
		return models.Vote{}, classify("insert vote", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Vote{}, classify("insert vote", err)
	}
	if n == 0 {
		return models.Vote{}, apperrors.New(apperrors.KindConflict, "a vote already exists for this voter in this election")
	}

	v.SubmittedAt = fromMicros(toMicros(v.SubmittedAt))
	return v, nil
}

// CountVotes returns candidate id → committed vote count for an election.
// Candidates without votes are absent from the map.
func (o ops) CountVotes(ctx context.Context, electionID string) (map[string]int, error) {
	rows, err := o.q.QueryContext(ctx, o.rebind(`
		SELECT candidate_id, COUNT(*)
		FROM vote
		WHERE election_id = ?
		GROUP BY candidate_id
	`), electionID)
	if err != nil {
		return nil, classify("count votes", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var candidateID string
		var n int
		if err := rows.Scan(&candidateID, &n); err != nil {
			return nil, classify("scan vote count", err)
		}
		counts[candidateID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate vote counts", err)
	}
	return counts, nil
}

// HasVotes reports whether any vote exists for the election.
func (o ops) HasVotes(ctx context.Context, electionID string) (bool, error) {
	var exists bool
	err := o.q.QueryRowContext(ctx, o.rebind(`
		SELECT EXISTS(SELECT 1 FROM vote WHERE election_id = ?)
	`), electionID).Scan(&exists)
	if err != nil {
		return false, classify("check votes", err)
	}
	return exists, nil
}

const voteColumns = `SELECT id, election_id, candidate_id, voter_id, submitted_at, nonce, receipt_hash FROM vote`

// FindVote returns the vote cast by voterID in electionID.
func (o ops) FindVote(ctx context.Context, electionID, voterID string) (models.Vote, error) {
	return o.queryVote(ctx, voteColumns+` WHERE election_id = ? AND voter_id = ?`, electionID, voterID)
}

// GetVoteByHash returns the vote with the given receipt hash.
func (o ops) GetVoteByHash(ctx context.Context, hash string) (models.Vote, error) {
	return o.queryVote(ctx, voteColumns+` WHERE receipt_hash = ?`, hash)
}

func (o ops) queryVote(ctx context.Context, query string, args ...any) (models.Vote, error) {
	v, err := scanVote(o.q.QueryRowContext(ctx, o.rebind(query), args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Vote{}, apperrors.NotFound("vote not found")
	}
	if err != nil {
		return models.Vote{}, classify("query vote", err)
	}
	return v, nil
}

// ListVotes returns every vote of an election in submission order.
func (o ops) ListVotes(ctx context.Context, electionID string) ([]models.Vote, error) {
	rows, err := o.q.QueryContext(ctx, o.rebind(voteColumns+`
		WHERE election_id = ?
		ORDER BY submitted_at, id
	`), electionID)
	if err != nil {
		return nil, classify("list votes", err)
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		v, err := scanVote(rows)
		if err != nil {
			return nil, classify("scan vote", err)
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate votes", err)
	}
	return votes, nil
}

// ListVotesByVoter returns the voter's history, newest first.
func (o ops) ListVotesByVoter(ctx context.Context, voterID string) ([]models.VoteHistoryEntry, error) {
	rows, err := o.q.QueryContext(ctx, o.rebind(`
		SELECT v.election_id, e.title, v.receipt_hash, v.submitted_at
		FROM vote v
		JOIN election e ON e.id = v.election_id
		WHERE v.voter_id = ?
		ORDER BY v.submitted_at DESC
	`), voterID)
	if err != nil {
		return nil, classify("list voter history", err)
	}
	defer rows.Close()

	history := []models.VoteHistoryEntry{}
	for rows.Next() {
		var entry models.VoteHistoryEntry
		var submittedAt int64
		if err := rows.Scan(&entry.ElectionID, &entry.ElectionTitle, &entry.VoteHash, &submittedAt); err != nil {
			return nil, classify("scan voter history", err)
		}
		entry.SubmittedAt = fromMicros(submittedAt)
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate voter history", err)
	}
	return history, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVote(row rowScanner) (models.Vote, error) {
	var (
		v           models.Vote
		submittedAt int64
		nonceHex    string
	)
	if err := row.Scan(&v.ID, &v.ElectionID, &v.CandidateID, &v.VoterID, &submittedAt, &nonceHex, &v.ReceiptHash); err != nil {
		return models.Vote{}, err
	}
	nonce, err := hex.DecodeString(nonceHex)
	if err != nil {
		return models.Vote{}, err
	}
	v.SubmittedAt = fromMicros(submittedAt)
	v.Nonce = nonce
	return v, nil
}

// UpsertVoter mirrors an identity reference, keeping its first-seen time.
func (o ops) UpsertVoter(ctx context.Context, v models.Voter, seen time.Time) error {
	_, err := o.q.ExecContext(ctx, o.rebind(`
		INSERT INTO voter (id, username, role, first_seen_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET username = excluded.username, role = excluded.role, last_seen_at = excluded.last_seen_at
	`), v.ID, v.Username, v.Role, toMicros(seen), toMicros(seen))
	if err != nil {
		return classify("upsert voter", err)
	}
	return nil
}

// GetVoter returns a mirrored identity reference.
func (o ops) GetVoter(ctx context.Context, id string) (models.Voter, error) {
	var v models.Voter
	err := o.q.QueryRowContext(ctx, o.rebind(`
		SELECT id, username, role FROM voter WHERE id = ?
	`), id).Scan(&v.ID, &v.Username, &v.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Voter{}, apperrors.NotFound("voter not found")
	}
	if err != nil {
		return models.Voter{}, classify("query voter", err)
	}
	return v, nil
}
