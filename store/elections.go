// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballot-core/apperrors"
	"github.com/danielhkuo/ballot-core/db"
	"github.com/danielhkuo/ballot-core/models"
)

// NewElection is the input to CreateElection.
type NewElection struct {
	Title       string
	Description string
	CreatedBy   string
	StartTime   time.Time
	EndTime     time.Time
	Candidates  []models.CandidateInput
	CreatedAt   time.Time
	ActivatedAt *time.Time
}

// Validate checks the creation invariants.
func (n NewElection) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return apperrors.Validation("title is required")
	}
	if strings.TrimSpace(n.CreatedBy) == "" {
		return apperrors.Validation("creator is required")
	}
	if !n.EndTime.After(n.StartTime) {
		return apperrors.Validation("end_time must be after start_time")
	}
	if len(n.Candidates) == 0 {
		return apperrors.Validation("at least one candidate is required")
	}
	seen := make(map[string]bool, len(n.Candidates))
	for _, c := range n.Candidates {
		key := candidateKey(c.Name)
		if key == "" {
			return apperrors.Validation("candidate names cannot be empty")
		}
		if seen[key] {
			return apperrors.Validation("duplicate candidate name: " + strings.TrimSpace(c.Name))
		}
		seen[key] = true
	}
	return nil
}

func candidateKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

const electionColumns = `
	SELECT e.id, e.title, e.description, e.created_by, e.starts_at, e.ends_at,
	       e.activated_at, e.closed_at, e.created_at,
	       c.id, c.name, c.bio
	FROM election e
	LEFT JOIN candidate c ON c.election_id = e.id`

// GetElection loads one election with its candidates in ballot order.
// Inside a postgres transaction the election row is share-locked.
func (o ops) GetElection(ctx context.Context, id string) (models.Election, error) {
	query := electionColumns + `
	WHERE e.id = ?
	ORDER BY c.sort_order`
	if o.inTx && o.dialect == db.Postgres {
		query += ` FOR SHARE OF e`
	}

	elections, err := o.queryElections(ctx, query, id)
	if err != nil {
		return models.Election{}, err
	}
	if len(elections) == 0 {
		return models.Election{}, apperrors.NotFound("election not found")
	}
	return elections[0], nil
}

// ListElections returns all elections, newest first.
func (o ops) ListElections(ctx context.Context) ([]models.Election, error) {
	return o.queryElections(ctx, electionColumns+`
	ORDER BY e.created_at DESC, e.id DESC, c.sort_order`)
}

func (o ops) queryElections(ctx context.Context, query string, args ...any) ([]models.Election, error) {
	rows, err := o.q.QueryContext(ctx, o.rebind(query), args...)
	if err != nil {
		return nil, classify("query elections", err)
	}
	defer rows.Close()

	elections := []models.Election{}
	index := make(map[string]int)
	for rows.Next() {
		var (
			e                     models.Election
			startsAt, endsAt      int64
			createdAt             int64
			activatedAt, closedAt sql.NullInt64
			candID, name, bio     sql.NullString
		)
		if err := rows.Scan(
			&e.ID, &e.Title, &e.Description, &e.CreatedBy, &startsAt, &endsAt,
			&activatedAt, &closedAt, &createdAt,
			&candID, &name, &bio,
		); err != nil {
			return nil, classify("scan election", err)
		}

		i, ok := index[e.ID]
		if !ok {
			e.StartTime = fromMicros(startsAt)
			e.EndTime = fromMicros(endsAt)
			e.CreatedAt = fromMicros(createdAt)
			e.ActivatedAt = nullableMicros(activatedAt)
			e.ClosedAt = nullableMicros(closedAt)
			e.Candidates = []models.Candidate{}
			elections = append(elections, e)
			i = len(elections) - 1
			index[e.ID] = i
		}
		if candID.Valid {
			elections[i].Candidates = append(elections[i].Candidates, models.Candidate{
				ID:         candID.String,
				ElectionID: e.ID,
				Name:       name.String,
				Bio:        bio.String,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate elections", err)
	}
	return elections, nil
}

// SetActivated records the activation time. Lifecycle checks belong to the caller.
func (o ops) SetActivated(ctx context.Context, id string, at time.Time) error {
	return o.updateElection(ctx, "activate election", "election is already activated", `
		UPDATE election SET activated_at = ? WHERE id = ? AND activated_at IS NULL
	`, toMicros(at), id)
}

// SetClosed records a force close.
func (o ops) SetClosed(ctx context.Context, id string, at time.Time) error {
	return o.updateElection(ctx, "close election", "election is already closed", `
		UPDATE election SET closed_at = ? WHERE id = ? AND closed_at IS NULL
	`, toMicros(at), id)
}

// updateElection runs a guarded single-row update. Zero rows means either the
// election is gone or the guard already holds; the two get different kinds.
func (o ops) updateElection(ctx context.Context, op, already, query string, args ...any) error {
	res, err := o.q.ExecContext(ctx, o.rebind(query), args...)
	if err != nil {
		return classify(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify(op, err)
	}
	if n == 0 {
		// The election id is always the last argument
		id := args[len(args)-1]
		var exists bool
		if err := o.q.QueryRowContext(ctx, o.rebind(`SELECT EXISTS(SELECT 1 FROM election WHERE id = ?)`), id).Scan(&exists); err != nil {
			return classify(op, err)
		}
		if exists {
			return apperrors.New(apperrors.KindInvalidTransition, already)
		}
		return apperrors.NotFound("election not found")
	}
	return nil
}

// CreateElection inserts an election and its candidates atomically.
func (s *Store) CreateElection(ctx context.Context, n NewElection) (models.Election, error) {
	var created models.Election
	err := s.InTx(ctx, func(tx *Tx) error {
		var err error
		created, err = tx.CreateElection(ctx, n)
		return err
	})
	return created, err
}

// CreateElection inserts an election and its candidates.
func (tx *Tx) CreateElection(ctx context.Context, n NewElection) (models.Election, error) {
	if err := n.Validate(); err != nil {
		return models.Election{}, err
	}

	e := models.Election{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(n.Title),
		Description: strings.TrimSpace(n.Description),
		CreatedBy:   n.CreatedBy,
		StartTime:   fromMicros(toMicros(n.StartTime)),
		EndTime:     fromMicros(toMicros(n.EndTime)),
		CreatedAt:   fromMicros(toMicros(n.CreatedAt)),
		Candidates:  make([]models.Candidate, 0, len(n.Candidates)),
	}
	var activatedAt sql.NullInt64
	if n.ActivatedAt != nil {
		activatedAt = sql.NullInt64{Int64: toMicros(*n.ActivatedAt), Valid: true}
		e.ActivatedAt = nullableMicros(activatedAt)
	}

	_, err := tx.q.ExecContext(ctx, tx.rebind(`
		INSERT INTO election (id, title, description, created_by, starts_at, ends_at, activated_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), e.ID, e.Title, e.Description, e.CreatedBy, toMicros(e.StartTime), toMicros(e.EndTime), activatedAt, toMicros(e.CreatedAt))
	if err != nil {
		return models.Election{}, classify("insert election", err)
	}

	for i, in := range n.Candidates {
		c, err := tx.insertCandidate(ctx, e.ID, in, i)
		if err != nil {
			return models.Election{}, err
		}
		e.Candidates = append(e.Candidates, c)
	}
	return e, nil
}

func (tx *Tx) insertCandidate(ctx context.Context, electionID string, in models.CandidateInput, order int) (models.Candidate, error) {
	c := models.Candidate{
		ID:         uuid.NewString(),
		ElectionID: electionID,
		Name:       strings.TrimSpace(in.Name),
		Bio:        strings.TrimSpace(in.Bio),
	}
	_, err := tx.q.ExecContext(ctx, tx.rebind(`
		INSERT INTO candidate (id, election_id, name, bio, sort_order)
		VALUES (?, ?, ?, ?, ?)
	`), c.ID, c.ElectionID, c.Name, c.Bio, order)
	if err != nil {
		err = classify("insert candidate", err)
		if errors.Is(err, apperrors.ErrConflict) {
			return models.Candidate{}, apperrors.Validation("duplicate candidate name: " + c.Name)
		}
		return models.Candidate{}, err
	}
	return c, nil
}

// DeleteElection removes an election with its candidates and votes.
func (s *Store) DeleteElection(ctx context.Context, id string) error {
	return s.InTx(ctx, func(tx *Tx) error {
		return tx.DeleteElection(ctx, id)
	})
}

// DeleteElection removes an election with its candidates and votes.
func (tx *Tx) DeleteElection(ctx context.Context, id string) error {
	for _, stmt := range []struct{ op, query string }{
		{"delete votes", `DELETE FROM vote WHERE election_id = ?`},
		{"delete candidates", `DELETE FROM candidate WHERE election_id = ?`},
	} {
		if _, err := tx.q.ExecContext(ctx, tx.rebind(stmt.query), id); err != nil {
			return classify(stmt.op, err)
		}
	}
	return tx.updateElection(ctx, "delete election", "", `DELETE FROM election WHERE id = ?`, id)
}

// AddCandidate appends a candidate to the end of the ballot.
func (tx *Tx) AddCandidate(ctx context.Context, electionID string, in models.CandidateInput) (models.Candidate, error) {
	if candidateKey(in.Name) == "" {
		return models.Candidate{}, apperrors.Validation("candidate name is required")
	}
	var (
		next      int
		duplicate bool
	)
	err := tx.q.QueryRowContext(ctx, tx.rebind(`
		SELECT COALESCE(MAX(sort_order), -1) + 1,
		       COALESCE(SUM(CASE WHEN LOWER(TRIM(name)) = ? THEN 1 ELSE 0 END), 0) > 0
		FROM candidate WHERE election_id = ?
	`), candidateKey(in.Name), electionID).Scan(&next, &duplicate)
	if err != nil {
		return models.Candidate{}, classify("next candidate order", err)
	}
	if duplicate {
		return models.Candidate{}, apperrors.Validation("duplicate candidate name: " + strings.TrimSpace(in.Name))
	}
	return tx.insertCandidate(ctx, electionID, in, next)
}

// RemoveCandidate deletes a candidate. The last candidate cannot be removed.
func (tx *Tx) RemoveCandidate(ctx context.Context, electionID, candidateID string) error {
	var count int
	err := tx.q.QueryRowContext(ctx, tx.rebind(`
		SELECT COUNT(*) FROM candidate WHERE election_id = ?
	`), electionID).Scan(&count)
	if err != nil {
		return classify("count candidates", err)
	}

	res, err := tx.q.ExecContext(ctx, tx.rebind(`
		DELETE FROM candidate WHERE election_id = ? AND id = ?
	`), electionID, candidateID)
	if err != nil {
		return classify("delete candidate", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify("delete candidate", err)
	}
	if n == 0 {
		return apperrors.NotFound("candidate not found")
	}
	if count <= 1 {
		return apperrors.Validation("an election needs at least one candidate")
	}
	return nil
}
