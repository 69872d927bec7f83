// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store is the durable ballot store over database/sql.

	s := store.New(conn, dialect)
	e, err := s.CreateElection(ctx, store.NewElection{...})

Single-statement operations (GetElection, ListElections, RecordVote,
CountVotes, ...) are available on both *Store and *Tx. Multi-statement
operations run in a transaction; use InTx to group several operations into
one atomic unit:

	err := s.InTx(ctx, func(tx *store.Tx) error {
		e, err := tx.GetElection(ctx, id)
		...
		_, err = tx.RecordVote(ctx, vote)
		return err
	})

# Invariants

  - at most one vote per (election, voter), enforced by a unique index
  - a vote's candidate belongs to the vote's election (composite foreign key)
  - votes are never updated; they are deleted only with their election
  - reads are single statements and only observe committed rows

# Errors

Driver errors are classified into apperrors kinds: unique violations become
conflict, reference and check violations become validation, connection loss,
timeouts and lock contention become storage_unavailable, and anything else is
internal. Driver text is kept as the wrapped cause and never shown to callers.
*/
package store
