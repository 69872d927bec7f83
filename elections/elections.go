// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package elections

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/ballot-core/apperrors"
	"github.com/danielhkuo/ballot-core/lifecycle"
	"github.com/danielhkuo/ballot-core/models"
	"github.com/danielhkuo/ballot-core/store"
)

// Service manages elections and their candidate lists.
type Service struct {
	store *store.Store
	now   func() time.Time
}

func NewService(s *store.Store) *Service {
	return &Service{store: s, now: time.Now}
}

// Create validates and stores a new election. Without an explicit start time
// the election starts now; with Activate set it is armed immediately.
func (s *Service) Create(ctx context.Context, req models.CreateElectionRequest, creator models.Voter) (models.Election, error) {
	if req.CreatorID != "" && req.CreatorID != creator.ID {
		return models.Election{}, apperrors.New(apperrors.KindForbidden, "creator_id must match the authenticated user")
	}

	now := s.now().UTC()
	start := now
	if req.StartTime != nil {
		start = *req.StartTime
	}

	in := store.NewElection{
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   creator.ID,
		StartTime:   start,
		EndTime:     req.EndTime,
		Candidates:  candidateInputs(req),
		CreatedAt:   now,
	}
	if req.Activate {
		in.ActivatedAt = &now
	}

	e, err := s.store.CreateElection(ctx, in)
	if err != nil {
		return models.Election{}, err
	}

	slog.Info("election created",
		"election_id", e.ID,
		"created_by", e.CreatedBy,
		"candidates", len(e.Candidates),
		"ends", humanize.RelTime(e.EndTime, now, "ago", "from now"),
	)
	return lifecycle.Decorate(e, now), nil
}

// candidateInputs merges plain names and detailed candidates, names first.
func candidateInputs(req models.CreateElectionRequest) []models.CandidateInput {
	out := make([]models.CandidateInput, 0, len(req.CandidateNames)+len(req.Candidates))
	for _, name := range req.CandidateNames {
		out = append(out, models.CandidateInput{Name: name})
	}
	return append(out, req.Candidates...)
}

// Get returns one election with its computed status.
func (s *Service) Get(ctx context.Context, id string) (models.Election, error) {
	e, err := s.store.GetElection(ctx, id)
	if err != nil {
		return models.Election{}, err
	}
	return lifecycle.Decorate(e, s.now()), nil
}

// List returns every election with its computed status, newest first.
func (s *Service) List(ctx context.Context) ([]models.Election, error) {
	list, err := s.store.ListElections(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range list {
		list[i] = lifecycle.Decorate(list[i], now)
	}
	return list, nil
}

// Delete removes an election with its candidates and votes.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteElection(ctx, id); err != nil {
		return err
	}
	slog.Info("election deleted", "election_id", id)
	return nil
}

// Activate arms a Draft election. It becomes Active once its start time passes.
func (s *Service) Activate(ctx context.Context, id string) (models.Election, error) {
	return s.transition(ctx, id, lifecycle.OpActivate, "election activated", func(tx *store.Tx, at time.Time) error {
		return tx.SetActivated(ctx, id, at)
	})
}

// Close force-closes a Draft or Active election. Closed is terminal.
func (s *Service) Close(ctx context.Context, id string) (models.Election, error) {
	return s.transition(ctx, id, lifecycle.OpClose, "election closed", func(tx *store.Tx, at time.Time) error {
		return tx.SetClosed(ctx, id, at)
	})
}

func (s *Service) transition(ctx context.Context, id string, op lifecycle.Operation, event string, apply func(*store.Tx, time.Time) error) (models.Election, error) {
	var out models.Election
	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		e, err := tx.GetElection(ctx, id)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		if err := lifecycle.CheckAt(lifecycle.ScheduleOf(e), now, op); err != nil {
			return err
		}
		if err := apply(tx, now); err != nil {
			return err
		}
		out, err = tx.GetElection(ctx, id)
		if err != nil {
			return err
		}
		out = lifecycle.Decorate(out, now)
		return nil
	})
	if err != nil {
		return models.Election{}, err
	}
	slog.Info(event, "election_id", id, "status", out.Status)
	return out, nil
}

// AddCandidate appends a candidate to a Draft election without votes.
func (s *Service) AddCandidate(ctx context.Context, electionID string, in models.CandidateInput) (models.Candidate, error) {
	var added models.Candidate
	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		if err := s.checkEditable(ctx, tx, electionID); err != nil {
			return err
		}
		var err error
		added, err = tx.AddCandidate(ctx, electionID, in)
		return err
	})
	if err != nil {
		return models.Candidate{}, err
	}
	slog.Info("candidate added", "election_id", electionID, "candidate_id", added.ID)
	return added, nil
}

// RemoveCandidate deletes a candidate from a Draft election without votes.
func (s *Service) RemoveCandidate(ctx context.Context, electionID, candidateID string) error {
	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		if err := s.checkEditable(ctx, tx, electionID); err != nil {
			return err
		}
		return tx.RemoveCandidate(ctx, electionID, strings.TrimSpace(candidateID))
	})
	if err != nil {
		return err
	}
	slog.Info("candidate removed", "election_id", electionID, "candidate_id", candidateID)
	return nil
}

func (s *Service) checkEditable(ctx context.Context, tx *store.Tx, electionID string) error {
	e, err := tx.GetElection(ctx, electionID)
	if err != nil {
		return err
	}
	if err := lifecycle.Check(lifecycle.StateAt(lifecycle.ScheduleOf(e), s.now()), lifecycle.OpEditCandidates); err != nil {
		return err
	}
	voted, err := tx.HasVotes(ctx, electionID)
	if err != nil {
		return err
	}
	if voted {
		return apperrors.New(apperrors.KindInvalidTransition, "candidates cannot change once votes exist")
	}
	return nil
}
