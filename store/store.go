// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/danielhkuo/ballot-core/db"
)

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ops holds the operations shared by Store and Tx.
type ops struct {
	q       queryer
	dialect db.Dialect
	inTx    bool
}

func (o ops) rebind(query string) string {
	return db.Rebind(o.dialect, query)
}

// Store is the BallotStore over database/sql.
type Store struct {
	ops
	conn *sql.DB
}

// Tx exposes the store operations inside one database transaction.
type Tx struct {
	ops
}

// New wraps an open connection. The schema must already exist.
func New(conn *sql.DB, dialect db.Dialect) *Store {
	return &Store{
		ops:  ops{q: conn, dialect: dialect},
		conn: conn,
	}
}

// InTx runs fn in a transaction, committing only if fn returns nil.
func (s *Store) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin transaction", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&Tx{ops: ops{q: sqlTx, dialect: s.dialect, inTx: true}}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return classify("commit transaction", err)
	}
	return nil
}

func toMicros(t time.Time) int64 {
	return t.UTC().UnixMicro()
}

func fromMicros(v int64) time.Time {
	return time.UnixMicro(v).UTC()
}

func nullableMicros(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromMicros(v.Int64)
	return &t
}
