// Package repository provides SQL persistence for client sessions.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/TrueFit/internal/client/session"
	"github.com/atinyakov/TrueFit/internal/db"
)

// DefaultProfile is used when no profile name is configured.
const DefaultProfile = "default"

// SQLSessionRepository stores one session row per named profile. It
// implements session.Backend.
type SQLSessionRepository struct {
	// DB is the database handle for executing queries.
	DB      *sql.DB
	dialect db.Dialect
	profile string
	now     func() time.Time
}

// NewSQLSessionRepository returns a repository bound to profile. An empty
// profile selects DefaultProfile.
func NewSQLSessionRepository(conn *sql.DB, d db.Dialect, profile string) *SQLSessionRepository {
	if profile == "" {
		profile = DefaultProfile
	}
	return &SQLSessionRepository{DB: conn, dialect: d, profile: profile, now: time.Now}
}

// Load returns the stored record, or an empty one if the profile has none.
func (r *SQLSessionRepository) Load(ctx context.Context) (session.Record, error) {
	var rec session.Record
	err := r.DB.QueryRowContext(
		ctx,
		r.dialect.Rebind(`SELECT token, username FROM client_sessions WHERE profile = $1`),
		r.profile,
	).Scan(&rec.Token, &rec.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Record{}, nil
	}
	if err != nil {
		return session.Record{}, fmt.Errorf("load session: %w", err)
	}
	return rec, nil
}

// Save inserts or replaces the profile's row in one statement so token and
// username never diverge.
func (r *SQLSessionRepository) Save(ctx context.Context, rec session.Record) error {
	_, err := r.DB.ExecContext(
		ctx,
		r.dialect.Rebind(`
		INSERT INTO client_sessions (profile, token, username, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (profile) DO UPDATE SET
			token = EXCLUDED.token,
			username = EXCLUDED.username,
			updated_at = EXCLUDED.updated_at`),
		r.profile, rec.Token, rec.Username, r.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Touch moves the row's updated_at to now so the stale-session cleaner
// counts retention from the last use rather than from login.
func (r *SQLSessionRepository) Touch(ctx context.Context) error {
	_, err := r.DB.ExecContext(
		ctx,
		r.dialect.Rebind(`UPDATE client_sessions SET updated_at = $1 WHERE profile = $2`),
		r.now().Unix(), r.profile,
	)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

// Clear deletes the profile's row. Clearing a missing row is not an error.
func (r *SQLSessionRepository) Clear(ctx context.Context) error {
	_, err := r.DB.ExecContext(
		ctx,
		r.dialect.Rebind(`DELETE FROM client_sessions WHERE profile = $1`),
		r.profile,
	)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
