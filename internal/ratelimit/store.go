package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrNoWindow indicates no live window exists for a (subject, endpoint) pair.
var ErrNoWindow = errors.New("no rate limit window")

// Window is one counted span of requests for a (subject, endpoint) pair.
type Window struct {
	ID            string
	Subject       string
	Endpoint      string
	WindowStart   time.Time
	RequestCount  int
	LastRequestAt time.Time
}

// Store persists rate-limit windows.
type Store interface {
	// Latest returns the most recent window for the pair whose start is at or
	// after since, or ErrNoWindow.
	Latest(ctx context.Context, subject, endpoint string, since time.Time) (Window, error)
	// Create inserts a fresh window.
	Create(ctx context.Context, w Window) error
	// Increment bumps the window's request count and returns the new count.
	Increment(ctx context.Context, w Window, at time.Time) (int, error)
}
