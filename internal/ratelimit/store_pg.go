package ratelimit

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGStore persists windows in Postgres.
type PGStore struct {
	DB *sql.DB
}

// Latest returns the most recent live window for the pair.
func (s *PGStore) Latest(ctx context.Context, subject, endpoint string, since time.Time) (Window, error) {
	const query = `
SELECT id, subject, endpoint, window_start, request_count, last_request_at
FROM rate_limit_windows
WHERE subject = $1 AND endpoint = $2 AND window_start >= $3
ORDER BY window_start DESC
LIMIT 1`
	var w Window
	err := s.DB.QueryRowContext(ctx, query, subject, endpoint, since).Scan(
		&w.ID,
		&w.Subject,
		&w.Endpoint,
		&w.WindowStart,
		&w.RequestCount,
		&w.LastRequestAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Window{}, ErrNoWindow
		}
		return Window{}, err
	}
	return w, nil
}

// Create inserts a fresh window row.
func (s *PGStore) Create(ctx context.Context, w Window) error {
	const query = `
INSERT INTO rate_limit_windows (id, subject, endpoint, window_start, request_count, last_request_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.DB.ExecContext(ctx, query,
		w.ID,
		w.Subject,
		w.Endpoint,
		w.WindowStart,
		w.RequestCount,
		w.LastRequestAt,
	)
	return err
}

// Increment bumps the window's counter and returns the new count.
func (s *PGStore) Increment(ctx context.Context, w Window, at time.Time) (int, error) {
	const query = `
UPDATE rate_limit_windows
SET request_count = request_count + 1, last_request_at = $2
WHERE id = $1
RETURNING request_count`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, w.ID, at).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNoWindow
		}
		return 0, err
	}
	return count, nil
}
