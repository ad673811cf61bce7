package itinerary_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/xraph/wayfarer/itinerary"
)

func decode(t *testing.T, s string) any {
	t.Helper()

	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("test fixture does not parse: %v", err)
	}

	return v
}

const validDoc = `[
	{
		"day": 1,
		"theme": "Historic Center",
		"activities": [
			{"time": "09:00", "description": "Walking tour", "location": "Old Town"},
			{"time": "13:00", "description": "Lunch", "location": "Market Hall"}
		]
	},
	{
		"day": 2,
		"theme": "Museums",
		"activities": [
			{"time": "10:00", "description": "National Gallery", "location": "Museum Quarter"}
		]
	}
]`

func TestFromValue(t *testing.T) {
	t.Parallel()

	days, err := itinerary.FromValue(decode(t, validDoc))
	if err != nil {
		t.Fatalf("FromValue returned error: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	if days[0].Day != 1 || days[0].Theme != "Historic Center" {
		t.Errorf("day 1 mismatch: %+v", days[0])
	}
	if len(days[0].Activities) != 2 {
		t.Fatalf("expected 2 activities on day 1, got %d", len(days[0].Activities))
	}
	if got := days[0].Activities[1]; got.Time != "13:00" || got.Description != "Lunch" || got.Location != "Market Hall" {
		t.Errorf("activity mismatch: %+v", got)
	}
}

func TestFromValueEmptyArray(t *testing.T) {
	t.Parallel()

	days, err := itinerary.FromValue(decode(t, `[]`))
	if err != nil {
		t.Fatalf("FromValue returned error: %v", err)
	}
	if len(days) != 0 {
		t.Errorf("expected empty slice, got %d days", len(days))
	}
}

func TestFromValueRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantSub string
	}{
		{
			name:    "top level not array",
			input:   `{"day": 1}`,
			wantSub: "expected an array of days",
		},
		{
			name:    "day element not object",
			input:   `["not a day"]`,
			wantSub: "day[0]",
		},
		{
			name:    "missing day number",
			input:   `[{"theme": "x", "activities": []}]`,
			wantSub: `missing field "day"`,
		},
		{
			name:    "day number not integer",
			input:   `[{"day": "one", "theme": "x", "activities": []}]`,
			wantSub: `field "day"`,
		},
		{
			name:    "day number fractional",
			input:   `[{"day": 1.5, "theme": "x", "activities": []}]`,
			wantSub: "expected an integer",
		},
		{
			name:    "missing theme",
			input:   `[{"day": 1, "activities": []}]`,
			wantSub: `missing field "theme"`,
		},
		{
			name:    "missing activities",
			input:   `[{"day": 1, "theme": "x"}]`,
			wantSub: `missing field "activities"`,
		},
		{
			name:    "activities not array",
			input:   `[{"day": 1, "theme": "x", "activities": "none"}]`,
			wantSub: `field "activities"`,
		},
		{
			name:    "activity missing time",
			input:   `[{"day": 1, "theme": "x", "activities": [{"description": "d", "location": "l"}]}]`,
			wantSub: `missing field "time"`,
		},
		{
			name:    "activity missing description",
			input:   `[{"day": 1, "theme": "x", "activities": [{"time": "09:00", "location": "l"}]}]`,
			wantSub: `missing field "description"`,
		},
		{
			name:    "activity missing location",
			input:   `[{"day": 1, "theme": "x", "activities": [{"time": "09:00", "description": "d"}]}]`,
			wantSub: `missing field "location"`,
		},
		{
			name:    "activity location not string",
			input:   `[{"day": 1, "theme": "x", "activities": [{"time": "09:00", "description": "d", "location": 5}]}]`,
			wantSub: `field "location"`,
		},
		{
			name:    "second day broken names its index",
			input:   `[{"day": 1, "theme": "x", "activities": []}, {"day": 2, "activities": []}]`,
			wantSub: "day[1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := itinerary.FromValue(decode(t, tt.input))
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantSub)
			}
		})
	}
}

func TestFromValueIntegralFloat(t *testing.T) {
	t.Parallel()

	// encoding/json decodes all numbers as float64; whole values are days.
	days, err := itinerary.FromValue(decode(t, `[{"day": 3, "theme": "x", "activities": []}]`))
	if err != nil {
		t.Fatalf("FromValue returned error: %v", err)
	}
	if days[0].Day != 3 {
		t.Errorf("expected day 3, got %d", days[0].Day)
	}
}

func TestFromValueNoSemanticChecks(t *testing.T) {
	t.Parallel()

	// Duplicate and out-of-order day numbers pass: validation is structural.
	input := `[
		{"day": 2, "theme": "a", "activities": []},
		{"day": 2, "theme": "b", "activities": []}
	]`
	days, err := itinerary.FromValue(decode(t, input))
	if err != nil {
		t.Fatalf("FromValue returned error: %v", err)
	}
	if len(days) != 2 {
		t.Errorf("expected 2 days, got %d", len(days))
	}
}
