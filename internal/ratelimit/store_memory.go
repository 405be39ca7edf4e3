package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps windows in memory and is safe for concurrent use.
// Superseded windows are retained, matching the persistent stores.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string][]Window
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string][]Window)}
}

func pairKey(subject, endpoint string) string {
	return subject + "|" + endpoint
}

// Latest returns the most recent live window for the pair.
func (s *MemoryStore) Latest(ctx context.Context, subject, endpoint string, since time.Time) (Window, error) {
	if err := ctx.Err(); err != nil {
		return Window{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.windows[pairKey(subject, endpoint)]
	for i := len(list) - 1; i >= 0; i-- {
		if !list[i].WindowStart.Before(since) {
			return list[i], nil
		}
	}
	return Window{}, ErrNoWindow
}

// Create appends a fresh window.
func (s *MemoryStore) Create(ctx context.Context, w Window) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey(w.Subject, w.Endpoint)
	s.windows[key] = append(s.windows[key], w)
	return nil
}

// Increment bumps the window's counter and returns the new count.
func (s *MemoryStore) Increment(ctx context.Context, w Window, at time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.windows[pairKey(w.Subject, w.Endpoint)]
	for i := range list {
		if list[i].ID == w.ID {
			list[i].RequestCount++
			list[i].LastRequestAt = at
			return list[i].RequestCount, nil
		}
	}
	return 0, ErrNoWindow
}
