package analysis

import "time"

// Kind identifies one paid analysis family.
type Kind string

const (
	KindNumerology Kind = "numerology"
	KindBirthChart Kind = "birth_chart"
	KindTarot      Kind = "tarot"
	KindPalmistry  Kind = "palmistry"
	KindCoffee     Kind = "coffee"
	KindDream      Kind = "dream"
)

// Analysis is one completed, paid reading. Records are append-only; deletion
// only happens through the account-erasure cascade.
type Analysis struct {
	ID             string         `json:"id"`
	UserID         string         `json:"userId"`
	Kind           Kind           `json:"kind"`
	Input          map[string]any `json:"input"`
	SelectedTopics []string       `json:"selectedTopics,omitempty"`
	CreditsUsed    int            `json:"creditsUsed"`
	Result         map[string]any `json:"result"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// Envelope is the tagged result shape returned by the API.
type Envelope struct {
	Kind    Kind           `json:"kind"`
	Payload map[string]any `json:"payload"`
}
