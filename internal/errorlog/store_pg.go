package errorlog

import (
	"context"
	"database/sql"
)

// PGStore persists error entries in Postgres.
type PGStore struct {
	DB *sql.DB
}

func (s *PGStore) Insert(ctx context.Context, e Entry) error {
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO error_logs (id, fingerprint, endpoint, message, user_id, request_id, created_at)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7)`,
		e.ID, e.Fingerprint, e.Endpoint, e.Message, e.UserID, e.RequestID, e.CreatedAt)
	return err
}
