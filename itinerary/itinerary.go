// Package itinerary defines the structured day-by-day travel plan produced
// by the generation pipeline, and validates untyped decoded values against
// that shape.
//
// Validation is structural only: every field must be present with the right
// kind, but day numbering, time-of-day formats, and text contents are not
// interpreted.
package itinerary

import (
	"encoding/json"
	"fmt"
	"math"
)

// Activity is a single scheduled item within a day.
// All fields are mandatory.
type Activity struct {
	Time        string `json:"time" bson:"time"`
	Description string `json:"description" bson:"description"`
	Location    string `json:"location" bson:"location"`
}

// Day is one day of a generated itinerary: a positive day number, a theme,
// and an ordered list of activities.
type Day struct {
	Day        int        `json:"day" bson:"day"`
	Theme      string     `json:"theme" bson:"theme"`
	Activities []Activity `json:"activities" bson:"activities"`
}

// FromValue validates an untyped decoded value (as produced by
// encoding/json) against the itinerary shape and converts it to []Day.
// The returned error names the offending element and field.
func FromValue(v any) ([]Day, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("itinerary: expected an array of days, got %T", v)
	}

	days := make([]Day, 0, len(items))
	for i, item := range items {
		day, err := dayFromValue(item)
		if err != nil {
			return nil, fmt.Errorf("itinerary: day[%d]: %w", i, err)
		}
		days = append(days, day)
	}

	return days, nil
}

func dayFromValue(v any) (Day, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Day{}, fmt.Errorf("expected an object, got %T", v)
	}

	var d Day

	num, ok := obj["day"]
	if !ok {
		return Day{}, fmt.Errorf("missing field %q", "day")
	}
	n, err := intFromValue(num)
	if err != nil {
		return Day{}, fmt.Errorf("field %q: %w", "day", err)
	}
	d.Day = n

	theme, err := textField(obj, "theme")
	if err != nil {
		return Day{}, err
	}
	d.Theme = theme

	raw, ok := obj["activities"]
	if !ok {
		return Day{}, fmt.Errorf("missing field %q", "activities")
	}
	list, ok := raw.([]any)
	if !ok {
		return Day{}, fmt.Errorf("field %q: expected an array, got %T", "activities", raw)
	}

	d.Activities = make([]Activity, 0, len(list))
	for i, item := range list {
		act, err := activityFromValue(item)
		if err != nil {
			return Day{}, fmt.Errorf("activities[%d]: %w", i, err)
		}
		d.Activities = append(d.Activities, act)
	}

	return d, nil
}

func activityFromValue(v any) (Activity, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Activity{}, fmt.Errorf("expected an object, got %T", v)
	}

	var a Activity
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"time", &a.Time},
		{"description", &a.Description},
		{"location", &a.Location},
	} {
		s, err := textField(obj, f.name)
		if err != nil {
			return Activity{}, err
		}
		*f.dst = s
	}

	return a, nil
}

func textField(obj map[string]any, name string) (string, error) {
	raw, ok := obj[name]
	if !ok {
		return "", fmt.Errorf("missing field %q", name)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("field %q: expected a string, got %T", name, raw)
	}

	return s, nil
}

// intFromValue accepts the numeric encodings encoding/json can hand back.
// Fractional values are rejected rather than truncated.
func intFromValue(v any) (int, error) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("expected an integer, got %v", n)
		}

		return int(n), nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("expected an integer, got %q", n.String())
		}

		return int(i), nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}
