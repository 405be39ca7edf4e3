package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/shared/telemetry"
)

// SubjectKind distinguishes user-keyed from IP-keyed throttling.
type SubjectKind string

const (
	SubjectUser SubjectKind = "user"
	SubjectIP   SubjectKind = "ip"
)

// Subject identifies who is being throttled.
type Subject struct {
	Kind SubjectKind
	ID   string
}

// UserSubject builds a subject keyed by an authenticated user id.
func UserSubject(userID string) Subject {
	return Subject{Kind: SubjectUser, ID: userID}
}

// IPSubject builds a subject keyed by a client address.
func IPSubject(addr string) Subject {
	return Subject{Kind: SubjectIP, ID: addr}
}

// Key returns the storage key for the subject.
func (s Subject) Key() string {
	return string(s.Kind) + ":" + s.ID
}

// Preset configures the window for one endpoint family.
type Preset struct {
	Endpoint    string
	Window      time.Duration
	MaxRequests int
}

// For returns a copy of the preset bound to a concrete endpoint name.
func (p Preset) For(endpoint string) Preset {
	p.Endpoint = endpoint
	return p
}

// Presets mirror the production throttling tiers. Expensive AI endpoints get the
// strictest user-keyed tier; anonymous traffic is keyed by IP.
var (
	Analysis         = Preset{Endpoint: "analysis", Window: time.Minute, MaxRequests: 10}
	AccountSensitive = Preset{Endpoint: "account", Window: 5 * time.Minute, MaxRequests: 3}
	Notification     = Preset{Endpoint: "notification", Window: time.Minute, MaxRequests: 20}
	Background       = Preset{Endpoint: "background", Window: 5 * time.Minute, MaxRequests: 5}
	General          = Preset{Endpoint: "general", Window: time.Minute, MaxRequests: 30}
	Anonymous        = Preset{Endpoint: "anonymous", Window: time.Minute, MaxRequests: 5}
)

// Result reports the outcome of a rate-limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter applies fixed-window throttling over a persistent Store.
//
// A lapsed window is superseded by a fresh row rather than slid or deleted.
// When the store is unreachable the limiter fails open: metering correctness is
// preferred over availability-through-denial, and the anomaly is logged.
type Limiter struct {
	store Store
	now   func() time.Time
}

// New constructs a Limiter. A nil now defaults to time.Now.
func New(store Store, now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	return &Limiter{store: store, now: now}
}

// Check records one request attempt for (subject, preset.Endpoint) and reports
// whether it is allowed. Denials perform no mutation.
func (l *Limiter) Check(ctx context.Context, subject Subject, p Preset) Result {
	now := l.now().UTC()
	if p.MaxRequests <= 0 || p.Window <= 0 {
		return Result{Allowed: true, Remaining: 0, ResetAt: now}
	}

	since := now.Add(-p.Window)
	w, err := l.store.Latest(ctx, subject.Key(), p.Endpoint, since)
	if err != nil && !errors.Is(err, ErrNoWindow) {
		return l.failOpen(subject, p, now, err)
	}

	if errors.Is(err, ErrNoWindow) {
		w = Window{
			ID:            uuid.NewString(),
			Subject:       subject.Key(),
			Endpoint:      p.Endpoint,
			WindowStart:   now,
			RequestCount:  1,
			LastRequestAt: now,
		}
		if err := l.store.Create(ctx, w); err != nil {
			return l.failOpen(subject, p, now, err)
		}
		return Result{Allowed: true, Remaining: p.MaxRequests - 1, ResetAt: now.Add(p.Window)}
	}

	resetAt := w.WindowStart.Add(p.Window)
	if w.RequestCount >= p.MaxRequests {
		return Result{Allowed: false, Remaining: 0, ResetAt: resetAt}
	}

	count, err := l.store.Increment(ctx, w, now)
	if err != nil {
		return l.failOpen(subject, p, now, err)
	}
	remaining := p.MaxRequests - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Remaining: remaining, ResetAt: resetAt}
}

func (l *Limiter) failOpen(subject Subject, p Preset, now time.Time, err error) Result {
	telemetry.Warn("ratelimit.store_unavailable", map[string]any{
		"subject":  subject.Key(),
		"endpoint": p.Endpoint,
		"error":    err.Error(),
	})
	return Result{Allowed: true, Remaining: p.MaxRequests - 1, ResetAt: now.Add(p.Window)}
}
