package errorlog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/shared/telemetry"
)

// Entry is one recorded server-side failure.
type Entry struct {
	ID          string
	Fingerprint string
	Endpoint    string
	Message     string
	UserID      string
	RequestID   string
	CreatedAt   time.Time
}

// Store persists error entries.
type Store interface {
	Insert(ctx context.Context, e Entry) error
}

// Reporter records server-side failures for later triage. If the store itself
// fails, the entry goes to the telemetry sink instead, so the only signal of a
// failure is never silently dropped.
type Reporter struct {
	store Store
	now   func() time.Time
}

// New constructs a Reporter. A nil store sends everything to telemetry.
func New(store Store) *Reporter {
	return &Reporter{store: store, now: time.Now}
}

// Report records one failure on the given endpoint.
func (r *Reporter) Report(ctx context.Context, endpoint string, err error, fields map[string]any) {
	if err == nil {
		return
	}
	e := Entry{
		ID:          uuid.NewString(),
		Fingerprint: Fingerprint(err.Error(), endpoint),
		Endpoint:    endpoint,
		Message:     err.Error(),
		CreatedAt:   r.now().UTC(),
	}
	if userID, ok := fields["user_id"].(string); ok {
		e.UserID = userID
	}
	if requestID, ok := fields["request_id"].(string); ok {
		e.RequestID = requestID
	}

	if r.store != nil {
		storeErr := r.store.Insert(ctx, e)
		if storeErr == nil {
			return
		}
		telemetry.Warn("errorlog.store_unavailable", map[string]any{"error": storeErr.Error()})
	}

	sink := map[string]any{
		"fingerprint": e.Fingerprint,
		"endpoint":    e.Endpoint,
		"message":     e.Message,
	}
	for k, v := range fields {
		sink[k] = v
	}
	telemetry.Error("errorlog.report", sink)
}

// Fingerprint groups recurring failures by message and endpoint.
func Fingerprint(message, endpoint string) string {
	sum := sha256.Sum256([]byte(message + "|" + endpoint))
	return hex.EncodeToString(sum[:])[:16]
}
