// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballot-core/apperrors"
	"github.com/danielhkuo/ballot-core/lifecycle"
	"github.com/danielhkuo/ballot-core/models"
	"github.com/danielhkuo/ballot-core/receipt"
	"github.com/danielhkuo/ballot-core/store"
)

const receiptMessage = "Vote recorded. Keep the vote hash to verify your vote later."

// Coordinator casts votes atomically.
type Coordinator struct {
	store   *store.Store
	timeout time.Duration
	now     func() time.Time
	nonce   func() ([]byte, error)
}

// NewCoordinator creates a coordinator. A zero timeout leaves the caller's
// context deadline in charge.
func NewCoordinator(s *store.Store, timeout time.Duration) *Coordinator {
	return &Coordinator{
		store:   s,
		timeout: timeout,
		now:     time.Now,
		nonce:   receipt.NewNonce,
	}
}

// CastVote records voter's choice of candidateID in electionID and returns
// the receipt. Either the vote and its receipt hash are committed together,
// or nothing is written.
func (c *Coordinator) CastVote(ctx context.Context, electionID, candidateID string, voter models.Voter) (models.Receipt, error) {
	if electionID == "" || candidateID == "" {
		return models.Receipt{}, apperrors.Validation("election_id and candidate_id are required")
	}
	if voter.ID == "" {
		return models.Receipt{}, apperrors.New(apperrors.KindUnauthorized, "voter identity is required")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	nonce, err := c.nonce()
	if err != nil {
		return models.Receipt{}, apperrors.Wrap(apperrors.KindInternal, "failed to generate receipt", err)
	}

	var vote models.Vote
	err = c.store.InTx(ctx, func(tx *store.Tx) error {
		e, err := tx.GetElection(ctx, electionID)
		if err != nil {
			return err
		}

		now := c.now().UTC().Truncate(time.Microsecond)
		if err := lifecycle.Check(lifecycle.StateAt(lifecycle.ScheduleOf(e), now), lifecycle.OpCastVote); err != nil {
			return err
		}
		if !e.HasCandidate(candidateID) {
			return apperrors.New(apperrors.KindInvalidCandidate, "candidate does not belong to this election")
		}

		if err := tx.UpsertVoter(ctx, voter, now); err != nil {
			return err
		}

		vote = models.Vote{
			ID:          uuid.NewString(),
			ElectionID:  electionID,
			CandidateID: candidateID,
			VoterID:     voter.ID,
			SubmittedAt: now,
			Nonce:       nonce,
		}
		vote.ReceiptHash = receipt.Hash(fieldsOf(vote))

		vote, err = tx.RecordVote(ctx, vote)
		switch {
		case errors.Is(err, apperrors.ErrConflict):
			return apperrors.Wrap(apperrors.KindAlreadyVoted, "you have already voted in this election", err)
		case errors.Is(err, apperrors.ErrValidation):
			return apperrors.Wrap(apperrors.KindInvalidCandidate, "candidate does not belong to this election", err)
		}
		return err
	})
	if err != nil {
		return models.Receipt{}, c.failure(ctx, electionID, err)
	}

	slog.Info("vote recorded", "election_id", electionID, "vote_id", vote.ID)
	return models.Receipt{
		VoteHash:    vote.ReceiptHash,
		ElectionID:  electionID,
		SubmittedAt: vote.SubmittedAt,
		Message:     receiptMessage,
	}, nil
}

// failure turns a deadline into an outcome-unknown error. The transaction
// may have committed just before the deadline, so the caller is told to
// reconcile before retrying.
func (c *Coordinator) failure(ctx context.Context, electionID string, err error) error {
	if ctx.Err() != nil && !decided(err) {
		slog.Warn("vote timed out", "election_id", electionID, "error", err)
		return apperrors.Wrap(apperrors.KindStorageUnavailable,
			"vote outcome unknown, check GET /elections/"+electionID+"/my-vote before retrying", err)
	}
	switch apperrors.KindOf(err) {
	case apperrors.KindInternal, apperrors.KindStorageUnavailable:
		slog.Error("vote failed", "election_id", electionID, "error", err)
	}
	return err
}

// decided reports whether err is a definite rejection rather than a lost outcome.
func decided(err error) bool {
	switch apperrors.KindOf(err) {
	case apperrors.KindInternal, apperrors.KindStorageUnavailable:
		return false
	}
	return true
}

// MyVote reports whether voterID has a committed vote in electionID.
func (c *Coordinator) MyVote(ctx context.Context, electionID, voterID string) (models.MyVoteResponse, error) {
	if _, err := c.store.GetElection(ctx, electionID); err != nil {
		return models.MyVoteResponse{}, err
	}
	v, err := c.store.FindVote(ctx, electionID, voterID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return models.MyVoteResponse{Voted: false}, nil
	}
	if err != nil {
		return models.MyVoteResponse{}, err
	}
	return models.MyVoteResponse{
		Voted:       true,
		VoteHash:    v.ReceiptHash,
		SubmittedAt: &v.SubmittedAt,
	}, nil
}

// VerifyReceipt recomputes the digest of the vote behind hash. Only the
// voter who cast it and admins can see it; everyone else gets NotFound.
func (c *Coordinator) VerifyReceipt(ctx context.Context, hash string, voter models.Voter) (models.ReceiptVerification, error) {
	v, err := c.store.GetVoteByHash(ctx, hash)
	if err != nil {
		return models.ReceiptVerification{}, err
	}
	if v.VoterID != voter.ID && !voter.IsAdmin() {
		return models.ReceiptVerification{}, apperrors.NotFound("vote not found")
	}
	return models.ReceiptVerification{
		VoteHash:    v.ReceiptHash,
		ElectionID:  v.ElectionID,
		CandidateID: v.CandidateID,
		SubmittedAt: v.SubmittedAt,
		Verified:    receipt.Verify(fieldsOf(v), v.ReceiptHash),
	}, nil
}

// History returns the voter's reference record and vote history.
func (c *Coordinator) History(ctx context.Context, voter models.Voter) (models.MeResponse, error) {
	votes, err := c.store.ListVotesByVoter(ctx, voter.ID)
	if err != nil {
		return models.MeResponse{}, err
	}
	return models.MeResponse{Voter: voter, Votes: votes}, nil
}

func fieldsOf(v models.Vote) receipt.Fields {
	return receipt.Fields{
		ElectionID:  v.ElectionID,
		CandidateID: v.CandidateID,
		VoterID:     v.VoterID,
		SubmittedAt: v.SubmittedAt,
		Nonce:       v.Nonce,
	}
}
