// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/ballot-core/cliparse"
)

// Dialect selects SQL differences between the supported drivers.
type Dialect string

const (
	SQLite   Dialect = cliparse.DatabaseSQLite
	Postgres Dialect = cliparse.DatabasePostgres
)

// Pragmas applied to every sqlite connection. Write transactions take the
// write lock at BEGIN so concurrent writers queue on the busy timeout instead
// of failing on a lock upgrade.
const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)&_pragma=synchronous(NORMAL)&_txlock=immediate"

// Open connects to the configured database and verifies the connection.
func Open(dbType, url string) (*sql.DB, Dialect, error) {
	var (
		driver  string
		dsn     string
		dialect Dialect
	)
	switch dbType {
	case cliparse.DatabaseSQLite, "":
		driver, dsn, dialect = "sqlite", SQLiteDSN(url), SQLite
	case cliparse.DatabasePostgres:
		driver, dsn, dialect = "postgres", url, Postgres
	default:
		return nil, "", fmt.Errorf("unsupported database type %q", dbType)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("open %s db: %w", dialect, err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, "", fmt.Errorf("ping %s db: %w", dialect, err)
	}
	return conn, dialect, nil
}

// SQLiteDSN appends the connection pragmas to a sqlite path or file: URI.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + sqlitePragmas
}

// Rebind rewrites ? placeholders to $n for postgres. Queries in this module
// never contain a literal question mark.
func Rebind(d Dialect, query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
