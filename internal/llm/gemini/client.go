package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/llm"
)

const defaultModel = "gemini-1.5-flash"

// Client implements llm.Client using the Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient constructs a new Gemini client.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// Generate sends the prompt and any inline images and returns the completion
// text.
func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.ResponseMIMEType = "application/json"

	parts := []genai.Part{genai.Text(req.Prompt)}
	for _, img := range req.Images {
		parts = append(parts, genai.ImageData(imageFormat(img.MIME), img.Data))
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", &llm.UnavailableError{Provider: "gemini", Err: err}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &llm.UnavailableError{Provider: "gemini", Err: errors.New("response missing candidates")}
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	content := strings.TrimSpace(b.String())
	if content == "" {
		return "", &llm.UnavailableError{Provider: "gemini", Err: errors.New("response empty content")}
	}
	return content, nil
}

// imageFormat maps a MIME type to the bare format genai expects.
func imageFormat(mime string) string {
	format := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(mime)), "image/")
	if format == "" {
		return "png"
	}
	return format
}

var _ llm.Client = (*Client)(nil)
