package llm

import (
	"context"
	"errors"
	"fmt"
)

// Image is an inline image attached to a generation request.
type Image struct {
	MIME string
	Data []byte
}

// Request captures one generation call. The prompt asks for structured JSON,
// but the returned text is not guaranteed to be parseable.
type Request struct {
	Prompt string
	Images []Image
}

// Client abstracts text/structured-generation providers.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// UnavailableError reports a provider-side failure. Retryable; callers must
// not charge for it.
type UnavailableError struct {
	Provider string
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s generation unavailable: %v", e.Provider, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("llm provider not configured")

// PlaceholderClient is a stub implementation used when no provider is wired.
type PlaceholderClient struct{}

// Generate returns ErrNotConfigured.
func (PlaceholderClient) Generate(ctx context.Context, req Request) (string, error) {
	_ = ctx
	_ = req
	return "", &UnavailableError{Provider: "placeholder", Err: ErrNotConfigured}
}
