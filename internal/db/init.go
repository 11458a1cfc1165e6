// Package db opens the SQL databases used as session backends.
package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect names a supported SQL flavour.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS client_sessions (
    profile TEXT PRIMARY KEY,
    token TEXT NOT NULL,
    username TEXT NOT NULL,
    updated_at BIGINT NOT NULL
);
`

// Rebind rewrites $N placeholders into ? for SQLite. Every query in this
// module references each argument once and in order, which keeps the
// positional rewrite valid.
func (d Dialect) Rebind(query string) string {
	if d != SQLite {
		return query
	}
	var b strings.Builder
	b.Grow(len(query))
	for i := 0; i < len(query); i++ {
		if query[i] == '$' && i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
			b.WriteByte('?')
			for i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
				i++
			}
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// Open connects to the database, checks it is reachable and makes sure the
// session table exists.
func Open(d Dialect, dsn string) (*sql.DB, error) {
	switch d {
	case Postgres, SQLite:
	default:
		return nil, fmt.Errorf("unsupported session backend %q", d)
	}

	db, err := sql.Open(string(d), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", d, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}

// InitPostgres is Open for PostgreSQL.
func InitPostgres(dsn string) (*sql.DB, error) {
	return Open(Postgres, dsn)
}

// InitSQLite is Open for a SQLite file.
func InitSQLite(path string) (*sql.DB, error) {
	return Open(SQLite, path)
}
