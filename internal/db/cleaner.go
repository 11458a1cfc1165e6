package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// SessionSweeper deletes client_sessions rows whose updated_at is older
// than the retention window. Stores refresh updated_at on every use, so
// only idle sessions age out.
type SessionSweeper struct {
	db        *sql.DB
	query     string
	retention time.Duration
	log       *zap.Logger
	now       func() time.Time
}

func NewSessionSweeper(db *sql.DB, d Dialect, retention time.Duration, log *zap.Logger) *SessionSweeper {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionSweeper{
		db:        db,
		query:     d.Rebind(`DELETE FROM client_sessions WHERE updated_at < $1`),
		retention: retention,
		log:       log,
		now:       time.Now,
	}
}

// Sweep runs one pass and reports how many rows it removed.
func (s *SessionSweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention).Unix()
	res, err := s.db.ExecContext(ctx, s.query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows, nil
}

// Start sweeps every interval in its own goroutine until ctx is done.
func (s *SessionSweeper) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rows, err := s.Sweep(ctx)
				if err != nil {
					s.log.Error("failed to clean stale sessions", zap.Error(err))
					continue
				}
				if rows > 0 {
					s.log.Info("cleaned stale sessions", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
