package analysis

import (
	"encoding/json"
	"strings"
)

// ParseResult turns a generation response into a structured payload. It tries
// a strict JSON parse first, then a fenced code block, and finally wraps the
// raw text so a paid generation is never discarded over formatting.
func ParseResult(raw string) map[string]any {
	trimmed := strings.TrimSpace(raw)
	if payload, ok := tryParse(trimmed); ok {
		return payload
	}
	if block, ok := extractFencedBlock(trimmed); ok {
		if payload, ok := tryParse(block); ok {
			return payload
		}
	}
	return map[string]any{"raw": raw}
}

func tryParse(s string) (map[string]any, bool) {
	var value any
	if err := json.Unmarshal([]byte(s), &value); err != nil {
		return nil, false
	}
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case []any:
		return map[string]any{"items": v}, true
	default:
		return nil, false
	}
}

// extractFencedBlock returns the contents of the first ``` fence, skipping an
// optional language tag on the opening line.
func extractFencedBlock(s string) (string, bool) {
	start := strings.Index(s, "```")
	if start < 0 {
		return "", false
	}
	rest := s[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		firstLine := strings.TrimSpace(rest[:nl])
		if firstLine == "" || isLanguageTag(firstLine) {
			rest = rest[nl+1:]
		}
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

func isLanguageTag(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
