// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import (
	"fmt"
	"time"

	"github.com/danielhkuo/ballot-core/apperrors"
	"github.com/danielhkuo/ballot-core/models"
)

// State is the derived status of an election.
type State string

const (
	Draft  State = models.StatusDraft
	Active State = models.StatusActive
	Closed State = models.StatusClosed
)

// Operation is an action gated by the lifecycle.
type Operation string

const (
	OpCastVote       Operation = "cast_vote"
	OpEditCandidates Operation = "edit_candidates"
	OpActivate       Operation = "activate"
	OpClose          Operation = "close"
	OpRead           Operation = "read"
	OpReadResults    Operation = "read_results"
	OpDelete         Operation = "delete"
)

// Schedule is the stored timing of an election.
type Schedule struct {
	StartsAt    time.Time
	EndsAt      time.Time
	ActivatedAt *time.Time
	ClosedAt    *time.Time
}

// ScheduleOf extracts the schedule from an election.
func ScheduleOf(e models.Election) Schedule {
	return Schedule{
		StartsAt:    e.StartTime,
		EndsAt:      e.EndTime,
		ActivatedAt: e.ActivatedAt,
		ClosedAt:    e.ClosedAt,
	}
}

// StateAt computes the state at now. It is never stored.
//
// Activation is explicit: time alone never moves an election out of Draft.
// An activated election becomes Active once its start time has passed, and
// Closed at its end time or at a force close, whichever comes first.
func StateAt(s Schedule, now time.Time) State {
	if s.ClosedAt != nil && !now.Before(*s.ClosedAt) {
		return Closed
	}
	if !now.Before(s.EndsAt) {
		return Closed
	}
	if s.ActivatedAt != nil && !now.Before(s.StartsAt) {
		return Active
	}
	return Draft
}

var legality = map[Operation]map[State]bool{
	OpCastVote:       {Active: true},
	OpEditCandidates: {Draft: true},
	OpActivate:       {Draft: true},
	OpClose:          {Draft: true, Active: true},
	OpRead:           {Draft: true, Active: true, Closed: true},
	OpReadResults:    {Draft: true, Active: true, Closed: true},
	OpDelete:         {Draft: true, Active: true, Closed: true},
}

// Permits reports whether op is legal in state.
func Permits(state State, op Operation) bool {
	return legality[op][state]
}

// Check returns a typed error when op is not legal in state.
func Check(state State, op Operation) error {
	if Permits(state, op) {
		return nil
	}
	if op == OpCastVote {
		return apperrors.New(apperrors.KindElectionNotActive, fmt.Sprintf("election is %s, voting is not open", state))
	}
	return apperrors.New(apperrors.KindInvalidTransition, fmt.Sprintf("cannot %s an election that is %s", verb(op), state))
}

// CheckAt is Check against the state at now. An election that is already
// armed but not yet started is still Draft, yet cannot be activated again.
func CheckAt(s Schedule, now time.Time, op Operation) error {
	if err := Check(StateAt(s, now), op); err != nil {
		return err
	}
	if op == OpActivate && s.ActivatedAt != nil {
		return apperrors.New(apperrors.KindInvalidTransition, "election is already activated")
	}
	return nil
}

func verb(op Operation) string {
	switch op {
	case OpEditCandidates:
		return "change candidates of"
	case OpActivate:
		return "activate"
	case OpClose:
		return "close"
	default:
		return string(op)
	}
}

// Decorate fills the computed status fields of e.
func Decorate(e models.Election, now time.Time) models.Election {
	state := StateAt(ScheduleOf(e), now)
	e.Status = string(state)
	e.IsActive = state == Active
	return e
}
