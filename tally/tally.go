// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"context"
	"log/slog"
	"maps"
	"time"

	"github.com/danielhkuo/ballot-core/lifecycle"
	"github.com/danielhkuo/ballot-core/models"
	"github.com/danielhkuo/ballot-core/receipt"
	"github.com/danielhkuo/ballot-core/store"
)

// Engine computes results from committed votes. Nothing is cached.
type Engine struct {
	store *store.Store
	now   func() time.Time
}

func NewEngine(s *store.Store) *Engine {
	return &Engine{store: s, now: time.Now}
}

// Results returns per-candidate counts and percentages in ballot order.
// Results are readable in every lifecycle state.
func (e *Engine) Results(ctx context.Context, electionID string) (models.ResultsResponse, error) {
	election, err := e.store.GetElection(ctx, electionID)
	if err != nil {
		return models.ResultsResponse{}, err
	}
	counts, err := e.store.CountVotes(ctx, electionID)
	if err != nil {
		return models.ResultsResponse{}, err
	}

	total := 0
	for _, c := range election.Candidates {
		total += counts[c.ID]
	}

	results := make([]models.CandidateResult, 0, len(election.Candidates))
	for _, c := range election.Candidates {
		n := counts[c.ID]
		results = append(results, models.CandidateResult{
			ID:        c.ID,
			Name:      c.Name,
			VoteCount: n,
			Percent:   Percent(n, total),
		})
	}

	return models.ResultsResponse{
		ElectionID: electionID,
		Status:     string(lifecycle.StateAt(lifecycle.ScheduleOf(election), e.now())),
		Results:    results,
		TotalVotes: total,
	}, nil
}

// Percent is 100*count/total rounded half up, or 0 when total is 0.
func Percent(count, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*count + total) / (2 * total)
}

// Audit walks the vote log, re-verifies every receipt and checks the
// recount against the aggregate counts.
func (e *Engine) Audit(ctx context.Context, electionID string) (models.AuditReport, error) {
	if _, err := e.store.GetElection(ctx, electionID); err != nil {
		return models.AuditReport{}, err
	}
	votes, err := e.store.ListVotes(ctx, electionID)
	if err != nil {
		return models.AuditReport{}, err
	}
	counts, err := e.store.CountVotes(ctx, electionID)
	if err != nil {
		return models.AuditReport{}, err
	}

	report := models.AuditReport{
		ElectionID:     electionID,
		TotalVotes:     len(votes),
		MismatchedIDs:  []string{},
		RecountedVotes: make(map[string]int),
	}
	for _, v := range votes {
		report.RecountedVotes[v.CandidateID]++
		ok := receipt.Verify(receipt.Fields{
			ElectionID:  v.ElectionID,
			CandidateID: v.CandidateID,
			VoterID:     v.VoterID,
			SubmittedAt: v.SubmittedAt,
			Nonce:       v.Nonce,
		}, v.ReceiptHash)
		if ok {
			report.VerifiedVotes++
		} else {
			report.MismatchedIDs = append(report.MismatchedIDs, v.ID)
		}
	}
	// A vote committed between the two reads shows up as a tally mismatch;
	// re-running the audit settles it.
	report.TallyMatches = maps.Equal(report.RecountedVotes, counts)

	if len(report.MismatchedIDs) > 0 || !report.TallyMatches {
		slog.Warn("audit found discrepancies",
			"election_id", electionID,
			"mismatched", len(report.MismatchedIDs),
			"tally_matches", report.TallyMatches,
		)
	}
	return report, nil
}
