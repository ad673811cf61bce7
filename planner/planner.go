// Package planner turns a destination and trip duration into a validated
// day-by-day itinerary using a chat-completion backend.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xraph/wayfarer"
	"github.com/xraph/wayfarer/itinerary"
)

// systemPrompt fixes the assistant persona for every generation request.
const systemPrompt = "You are a professional travel planner."

// Completer is the completion backend the planner drives. *openai.Client
// satisfies it.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Planner builds prompts, extracts the JSON array from the model reply, and
// validates it into itinerary days.
type Planner struct {
	completer Completer
}

// New creates a Planner over the given completion backend.
func New(c Completer) *Planner {
	return &Planner{completer: c}
}

// Plan generates an itinerary for the destination and duration. One outbound
// call per invocation; no retries, no streaming.
//
// The model reply may wrap the JSON array in prose or code fences; the
// substring from the first '[' through the last ']' is what gets parsed.
// Failures are typed: wayfarer.ErrParseFailed when no parsable array is
// found, wayfarer.ErrInvalidItinerary when the array fails schema
// validation, and wayfarer.ErrGenerationFailed for everything else.
func (p *Planner) Plan(ctx context.Context, destination string, days int) ([]itinerary.Day, error) {
	content, err := p.completer.Complete(ctx, systemPrompt, buildPrompt(destination, days))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", wayfarer.ErrGenerationFailed, err)
	}

	raw, ok := extractArray(content)
	if !ok {
		return nil, wayfarer.ErrParseFailed
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", wayfarer.ErrParseFailed, err)
	}

	result, err := itinerary.FromValue(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", wayfarer.ErrInvalidItinerary, err)
	}
	return result, nil
}

// extractArray returns the substring spanning the first '[' through the last
// ']' of s.
func extractArray(s string) (string, bool) {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// buildPrompt embeds destination and duration in the generation instruction
// together with a worked example of the expected array shape.
func buildPrompt(destination string, days int) string {
	return fmt.Sprintf(`Generate a detailed %d-day travel itinerary to %s.
Include diverse activities with specific locations and times.

Output must be in this EXACT JSON format:
[
  {
    "day": 1,
    "theme": "Cultural Exploration",
    "activities": [
      {
        "time": "9:00 AM",
        "description": "Visit local museum",
        "location": "National Museum of History"
      },
      {
        "time": "1:00 PM",
        "description": "Lunch at traditional restaurant",
        "location": "Old Town Cafe"
      }
    ]
  }
]`, days, destination)
}
