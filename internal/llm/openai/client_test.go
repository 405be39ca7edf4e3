package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient("test-key", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	client.apiURL = srv.URL
	return client
}

func TestGenerateReturnsCompletionText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("expected bearer auth header, got %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.ResponseFormat.Type != "json_object" {
			t.Errorf("expected json_object response format, got %q", req.ResponseFormat.Type)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"reading\":\"ok\"}"}}]}`))
	})

	out, err := client.Generate(context.Background(), llm.Request{Prompt: "read my palm"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != `{"reading":"ok"}` {
		t.Fatalf("unexpected content: %q", out)
	}
}

func TestGenerateEncodesImagesAsDataURLs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 1 || len(req.Messages[0].Content) != 2 {
			t.Errorf("expected 1 message with text+image parts, got %+v", req.Messages)
		} else {
			img := req.Messages[0].Content[1]
			if img.Type != "image_url" || img.ImageURL == nil || img.ImageURL.URL[:15] != "data:image/png;" {
				t.Errorf("expected data URL image part, got %+v", img)
			}
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{}"}}]}`))
	})

	_, err := client.Generate(context.Background(), llm.Request{
		Prompt: "read this palm",
		Images: []llm.Image{{MIME: "image/png", Data: []byte{1, 2, 3}}},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
}

func TestGenerateWrapsProviderFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	})

	_, err := client.Generate(context.Background(), llm.Request{Prompt: "hi"})
	var unavailable *llm.UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected UnavailableError, got %v", err)
	}
	if unavailable.Provider != "openai" {
		t.Fatalf("expected openai provider, got %q", unavailable.Provider)
	}
}

func TestGenerateRejectsEmptyContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":""}}]}`))
	})

	_, err := client.Generate(context.Background(), llm.Request{Prompt: "hi"})
	var unavailable *llm.UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected UnavailableError for empty content, got %v", err)
	}
}
