package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

type failingStore struct{}

func (failingStore) Latest(ctx context.Context, subject, endpoint string, since time.Time) (Window, error) {
	return Window{}, errors.New("store down")
}

func (failingStore) Create(ctx context.Context, w Window) error {
	return errors.New("store down")
}

func (failingStore) Increment(ctx context.Context, w Window, at time.Time) (int, error) {
	return 0, errors.New("store down")
}

func TestCheckAllowsUpToMaxThenDenies(t *testing.T) {
	start := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	now := start
	limiter := New(NewMemoryStore(), func() time.Time { return now })

	preset := Preset{Endpoint: "analysis", Window: time.Minute, MaxRequests: 10}
	subject := UserSubject("user-1")

	for i := 0; i < 10; i++ {
		now = start.Add(time.Duration(i) * time.Second)
		res := limiter.Check(context.Background(), subject, preset)
		if !res.Allowed {
			t.Fatalf("request %d expected allowed", i+1)
		}
		if res.Remaining != 10-(i+1) {
			t.Fatalf("request %d expected remaining %d, got %d", i+1, 10-(i+1), res.Remaining)
		}
	}

	now = start.Add(10 * time.Second)
	res := limiter.Check(context.Background(), subject, preset)
	if res.Allowed {
		t.Fatalf("11th request within window expected denied")
	}
	if res.Remaining != 0 {
		t.Fatalf("expected remaining 0, got %d", res.Remaining)
	}
	if want := start.Add(time.Minute); !res.ResetAt.Equal(want) {
		t.Fatalf("expected resetAt %v, got %v", want, res.ResetAt)
	}
}

func TestCheckStartsFreshWindowAfterElapse(t *testing.T) {
	start := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	now := start
	store := NewMemoryStore()
	limiter := New(store, func() time.Time { return now })

	preset := Preset{Endpoint: "analysis", Window: time.Minute, MaxRequests: 2}
	subject := UserSubject("user-1")

	for i := 0; i < 2; i++ {
		if res := limiter.Check(context.Background(), subject, preset); !res.Allowed {
			t.Fatalf("request %d expected allowed", i+1)
		}
	}
	if res := limiter.Check(context.Background(), subject, preset); res.Allowed {
		t.Fatalf("3rd request expected denied")
	}

	now = start.Add(time.Minute + time.Second)
	res := limiter.Check(context.Background(), subject, preset)
	if !res.Allowed {
		t.Fatalf("first request after window elapsed expected allowed")
	}
	if res.Remaining != 1 {
		t.Fatalf("expected remaining 1 in fresh window, got %d", res.Remaining)
	}

	// The lapsed window is superseded, not deleted.
	old, err := store.Latest(context.Background(), subject.Key(), preset.Endpoint, start)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if !old.WindowStart.Equal(now) {
		t.Fatalf("expected newest window to start at %v, got %v", now, old.WindowStart)
	}
}

func TestDenialDoesNotMutateWindow(t *testing.T) {
	start := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	now := start
	store := NewMemoryStore()
	limiter := New(store, func() time.Time { return now })

	preset := Preset{Endpoint: "analysis", Window: time.Minute, MaxRequests: 1}
	subject := UserSubject("user-1")

	limiter.Check(context.Background(), subject, preset)
	limiter.Check(context.Background(), subject, preset)
	limiter.Check(context.Background(), subject, preset)

	w, err := store.Latest(context.Background(), subject.Key(), preset.Endpoint, start.Add(-time.Minute))
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if w.RequestCount != 1 {
		t.Fatalf("expected denied requests to leave count at 1, got %d", w.RequestCount)
	}
}

func TestSubjectsAreIsolated(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	limiter := New(NewMemoryStore(), func() time.Time { return now })

	preset := Preset{Endpoint: "analysis", Window: time.Minute, MaxRequests: 1}

	if res := limiter.Check(context.Background(), UserSubject("user-1"), preset); !res.Allowed {
		t.Fatalf("user-1 first request expected allowed")
	}
	if res := limiter.Check(context.Background(), UserSubject("user-2"), preset); !res.Allowed {
		t.Fatalf("user-2 should not share user-1's window")
	}
	if res := limiter.Check(context.Background(), IPSubject("user-1"), preset); !res.Allowed {
		t.Fatalf("ip subject should not share the user subject's window")
	}
	if res := limiter.Check(context.Background(), UserSubject("user-1"), preset); res.Allowed {
		t.Fatalf("user-1 second request expected denied")
	}
}

func TestEndpointsAreIsolated(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	limiter := New(NewMemoryStore(), func() time.Time { return now })
	subject := UserSubject("user-1")

	strict := Preset{Endpoint: "analysis.tarot", Window: time.Minute, MaxRequests: 1}
	other := Preset{Endpoint: "analysis.numerology", Window: time.Minute, MaxRequests: 1}

	limiter.Check(context.Background(), subject, strict)
	if res := limiter.Check(context.Background(), subject, other); !res.Allowed {
		t.Fatalf("different endpoint should use its own window")
	}
}

func TestCheckFailsOpenWhenStoreUnavailable(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	limiter := New(failingStore{}, func() time.Time { return now })

	res := limiter.Check(context.Background(), UserSubject("user-1"), Analysis)
	if !res.Allowed {
		t.Fatalf("expected fail-open when store is unreachable")
	}
}
