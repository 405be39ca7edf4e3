package analysis

import (
	"fmt"
	"strings"
)

// kindSpec describes one paid analysis family: its endpoint, validation
// rules, pricing, and prompt builder.
type kindSpec struct {
	Kind          Kind
	Path          string
	Title         string
	FixedPrice    int // 0 means priced per selected topic
	Topics        []string
	RequiresImage bool
	Validate      func(*Request) []FieldIssue
	Prompt        func(*Request) string
}

var numerologyTopics = []string{"life_path", "expression", "soul_urge", "personality", "birthday", "maturity"}
var birthChartTopics = []string{"sun", "moon", "rising", "venus", "mars", "mercury", "houses", "aspects"}
var tarotTopics = []string{"love", "career", "money", "health", "spirituality", "family"}

var kindSpecs = []kindSpec{
	{
		Kind:   KindNumerology,
		Path:   "numerology",
		Title:  "Numerology reading",
		Topics: numerologyTopics,
		Validate: func(r *Request) []FieldIssue {
			var issues []FieldIssue
			issues = checkFullName(r, issues)
			issues = checkBirthDate(r, issues)
			issues = checkTopics(r, numerologyTopics, issues)
			return issues
		},
		Prompt: func(r *Request) string {
			return fmt.Sprintf(
				"You are a numerology expert. Produce a numerology reading for %s, born %s. "+
					"Cover exactly these topics: %s. "+
					"Respond with a single JSON object keyed by topic, each value an object with \"number\" and \"interpretation\".",
				strings.TrimSpace(r.FullName), r.BirthDate, strings.Join(r.SelectedTopics, ", "))
		},
	},
	{
		Kind:   KindBirthChart,
		Path:   "birth-chart",
		Title:  "Birth chart reading",
		Topics: birthChartTopics,
		Validate: func(r *Request) []FieldIssue {
			var issues []FieldIssue
			issues = checkFullName(r, issues)
			issues = checkBirthDate(r, issues)
			issues = checkBirthTime(r, issues)
			issues = checkBirthPlace(r, issues)
			issues = checkTopics(r, birthChartTopics, issues)
			return issues
		},
		Prompt: func(r *Request) string {
			birthTime := r.BirthTime
			if strings.TrimSpace(birthTime) == "" {
				birthTime = "unknown"
			}
			return fmt.Sprintf(
				"You are an astrologer. Build a birth chart reading for %s, born %s at %s in %s. "+
					"Cover exactly these placements: %s. "+
					"Respond with a single JSON object keyed by placement, each value an object with \"sign\" and \"interpretation\".",
				strings.TrimSpace(r.FullName), r.BirthDate, birthTime, strings.TrimSpace(r.BirthPlace), strings.Join(r.SelectedTopics, ", "))
		},
	},
	{
		Kind:   KindTarot,
		Path:   "tarot",
		Title:  "Tarot reading",
		Topics: tarotTopics,
		Validate: func(r *Request) []FieldIssue {
			var issues []FieldIssue
			issues = checkQuestion(r, 5, 500, issues)
			issues = checkTopics(r, tarotTopics, issues)
			return issues
		},
		Prompt: func(r *Request) string {
			return fmt.Sprintf(
				"You are a tarot reader. The querent asks: %q. Draw a three-card spread for each of these areas: %s. "+
					"Respond with a single JSON object keyed by area, each value an object with \"cards\" (array) and \"interpretation\".",
				strings.TrimSpace(r.Question), strings.Join(r.SelectedTopics, ", "))
		},
	},
	{
		Kind:          KindPalmistry,
		Path:          "palmistry",
		Title:         "Palmistry reading",
		FixedPrice:    5,
		RequiresImage: true,
		Validate: func(r *Request) []FieldIssue {
			return checkImage(r, nil)
		},
		Prompt: func(r *Request) string {
			return "You are a palmist. Read the palm in the attached image: life line, head line, heart line, and fate line. " +
				"Respond with a single JSON object keyed by line name, each value an object with \"shape\" and \"interpretation\"."
		},
	},
	{
		Kind:          KindCoffee,
		Path:          "coffee",
		Title:         "Coffee fortune reading",
		FixedPrice:    3,
		RequiresImage: true,
		Validate: func(r *Request) []FieldIssue {
			return checkImage(r, nil)
		},
		Prompt: func(r *Request) string {
			return "You are a coffee-ground fortune teller. Interpret the symbols visible in the attached cup photo. " +
				"Respond with a single JSON object with \"symbols\" (array of {name, meaning}) and \"overall\"."
		},
	},
	{
		Kind:       KindDream,
		Path:       "dream",
		Title:      "Dream interpretation",
		FixedPrice: 2,
		Validate: func(r *Request) []FieldIssue {
			return checkQuestion(r, 10, 2000, nil)
		},
		Prompt: func(r *Request) string {
			return fmt.Sprintf(
				"You are a dream interpreter. Interpret this dream: %q. "+
					"Respond with a single JSON object with \"symbols\" (array of {name, meaning}) and \"interpretation\".",
				strings.TrimSpace(r.Question))
		},
	},
}

// Kinds returns all registered analysis kinds in a stable order.
func Kinds() []kindSpec {
	return kindSpecs
}

func specFor(kind Kind) (kindSpec, bool) {
	for _, ks := range kindSpecs {
		if ks.Kind == kind {
			return ks, true
		}
	}
	return kindSpec{}, false
}

// Price computes the credits needed for one request of this kind.
func (ks kindSpec) Price(r *Request) int {
	if ks.FixedPrice > 0 {
		return ks.FixedPrice
	}
	return len(r.SelectedTopics)
}

// Endpoint returns the rate-limit endpoint name for this kind.
func (ks kindSpec) Endpoint() string {
	return "analysis." + string(ks.Kind)
}
