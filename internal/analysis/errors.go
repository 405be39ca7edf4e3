package analysis

import (
	"errors"
	"fmt"

	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/ratelimit"
)

// ErrNotFound indicates the requested analysis does not exist for the user.
var ErrNotFound = errors.New("analysis not found")

// ErrUnknownKind indicates an unregistered analysis kind.
var ErrUnknownKind = errors.New("unknown analysis kind")

// FieldIssue describes one invalid request field.
type FieldIssue struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// ValidationError reports request-schema violations. Non-retryable without
// changing the request.
type ValidationError struct {
	Fields []FieldIssue
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid request"
	}
	return fmt.Sprintf("invalid request: %s %s", e.Fields[0].Field, e.Fields[0].Issue)
}

// RateLimitedError reports a denied rate-limit check. Retryable after ResetAt.
type RateLimitedError struct {
	Result ratelimit.Result
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited until %s", e.Result.ResetAt.Format("15:04:05"))
}

// PersistenceError wraps a failure to durably record a paid result. The user
// may have been charged for work that was not recorded; handlers surface the
// asymmetry in the user-facing message.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist analysis: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
