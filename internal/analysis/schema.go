package analysis

import (
	"encoding/base64"
	"net/http"
	"strings"
	"time"
)

// MaxImageBytes caps decoded image payloads.
const MaxImageBytes = 10 << 20

// Request is the union of fields accepted across analysis kinds; each kind
// validates its own subset.
type Request struct {
	FullName       string   `json:"fullName"`
	BirthDate      string   `json:"birthDate"`
	BirthTime      string   `json:"birthTime"`
	BirthPlace     string   `json:"birthPlace"`
	Question       string   `json:"question"`
	SelectedTopics []string `json:"selectedTopics"`
	Image          string   `json:"image"`

	imageData []byte
	imageMIME string
}

// ImageData returns the decoded image payload, populated during validation.
func (r *Request) ImageData() ([]byte, string) {
	return r.imageData, r.imageMIME
}

func checkFullName(r *Request, issues []FieldIssue) []FieldIssue {
	name := strings.TrimSpace(r.FullName)
	switch {
	case name == "":
		issues = append(issues, FieldIssue{Field: "fullName", Issue: "required"})
	case len(name) < 2 || len(name) > 100:
		issues = append(issues, FieldIssue{Field: "fullName", Issue: "must be 2-100 characters"})
	}
	return issues
}

func checkBirthDate(r *Request, issues []FieldIssue) []FieldIssue {
	raw := strings.TrimSpace(r.BirthDate)
	if raw == "" {
		return append(issues, FieldIssue{Field: "birthDate", Issue: "required"})
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return append(issues, FieldIssue{Field: "birthDate", Issue: "must be YYYY-MM-DD"})
	}
	if parsed.After(time.Now()) || parsed.Year() < 1900 {
		issues = append(issues, FieldIssue{Field: "birthDate", Issue: "out of range"})
	}
	return issues
}

func checkBirthTime(r *Request, issues []FieldIssue) []FieldIssue {
	raw := strings.TrimSpace(r.BirthTime)
	if raw == "" {
		return issues
	}
	if _, err := time.Parse("15:04", raw); err != nil {
		issues = append(issues, FieldIssue{Field: "birthTime", Issue: "must be HH:MM"})
	}
	return issues
}

func checkBirthPlace(r *Request, issues []FieldIssue) []FieldIssue {
	place := strings.TrimSpace(r.BirthPlace)
	switch {
	case place == "":
		issues = append(issues, FieldIssue{Field: "birthPlace", Issue: "required"})
	case len(place) < 2 || len(place) > 120:
		issues = append(issues, FieldIssue{Field: "birthPlace", Issue: "must be 2-120 characters"})
	}
	return issues
}

func checkQuestion(r *Request, minLen, maxLen int, issues []FieldIssue) []FieldIssue {
	q := strings.TrimSpace(r.Question)
	switch {
	case q == "":
		issues = append(issues, FieldIssue{Field: "question", Issue: "required"})
	case len(q) < minLen || len(q) > maxLen:
		issues = append(issues, FieldIssue{Field: "question", Issue: "out of bounds"})
	}
	return issues
}

func checkTopics(r *Request, allowed []string, issues []FieldIssue) []FieldIssue {
	if len(r.SelectedTopics) == 0 {
		return append(issues, FieldIssue{Field: "selectedTopics", Issue: "at least one topic is required"})
	}
	if len(r.SelectedTopics) > len(allowed) {
		return append(issues, FieldIssue{Field: "selectedTopics", Issue: "too many topics"})
	}
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, t := range allowed {
		allowedSet[t] = struct{}{}
	}
	seen := make(map[string]struct{}, len(r.SelectedTopics))
	for _, t := range r.SelectedTopics {
		if _, ok := allowedSet[t]; !ok {
			issues = append(issues, FieldIssue{Field: "selectedTopics", Issue: "unknown topic: " + t})
			continue
		}
		if _, dup := seen[t]; dup {
			issues = append(issues, FieldIssue{Field: "selectedTopics", Issue: "duplicate topic: " + t})
			continue
		}
		seen[t] = struct{}{}
	}
	return issues
}

// checkImage decodes the base64 image (with or without a data-URL prefix),
// enforces the decoded size ceiling, and sniffs the content type.
func checkImage(r *Request, issues []FieldIssue) []FieldIssue {
	raw := strings.TrimSpace(r.Image)
	if raw == "" {
		return append(issues, FieldIssue{Field: "image", Issue: "required"})
	}
	if idx := strings.Index(raw, ";base64,"); idx >= 0 && strings.HasPrefix(raw, "data:") {
		raw = raw[idx+len(";base64,"):]
	}
	if base64.StdEncoding.DecodedLen(len(raw)) > MaxImageBytes {
		return append(issues, FieldIssue{Field: "image", Issue: "exceeds 10MB limit"})
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return append(issues, FieldIssue{Field: "image", Issue: "invalid base64"})
	}
	if len(data) > MaxImageBytes {
		return append(issues, FieldIssue{Field: "image", Issue: "exceeds 10MB limit"})
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return append(issues, FieldIssue{Field: "image", Issue: "not an image"})
	}
	r.imageData = data
	r.imageMIME = mime
	return issues
}
