package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGStoreLatestReturnsErrNoWindow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	since := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, subject, endpoint, window_start, request_count, last_request_at").
		WithArgs("user:user-1", "analysis", since).
		WillReturnRows(sqlmock.NewRows([]string{"id", "subject", "endpoint", "window_start", "request_count", "last_request_at"}))

	store := &PGStore{DB: db}
	_, err = store.Latest(context.Background(), "user:user-1", "analysis", since)
	if !errors.Is(err, ErrNoWindow) {
		t.Fatalf("expected ErrNoWindow, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreCreateInsertsWindow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	w := Window{
		ID:            "win-1",
		Subject:       "user:user-1",
		Endpoint:      "analysis",
		WindowStart:   now,
		RequestCount:  1,
		LastRequestAt: now,
	}

	mock.ExpectExec("INSERT INTO rate_limit_windows").
		WithArgs(w.ID, w.Subject, w.Endpoint, w.WindowStart, w.RequestCount, w.LastRequestAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	store := &PGStore{DB: db}
	if err := store.Create(context.Background(), w); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreIncrementReturnsNewCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2026, time.March, 1, 12, 0, 1, 0, time.UTC)
	mock.ExpectQuery("UPDATE rate_limit_windows").
		WithArgs("win-1", now).
		WillReturnRows(sqlmock.NewRows([]string{"request_count"}).AddRow(4))

	store := &PGStore{DB: db}
	count, err := store.Increment(context.Background(), Window{ID: "win-1"}, now)
	if err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected count 4, got %d", count)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
