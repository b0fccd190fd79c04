package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrNoJSONObject reports a response with no JSON object region at all.
	ErrNoJSONObject = errors.New("no JSON object found in model response")
	// ErrMalformedJSON reports a located JSON region that does not parse, or
	// a parsed object missing decision keys.
	ErrMalformedJSON = errors.New("malformed JSON in model response")
)

var decisionKeys = []string{"match", "score", "reasons", "red_flags"}

// ParseDecision turns raw model output into a Decision. The trimmed text is
// parsed strictly first; on failure the region between the first '{' and the
// last '}' is parsed instead, which recovers answers wrapped in code fences
// or prose. Values are coerced tolerantly, but all four decision keys must be
// present.
func ParseDecision(raw string) (*Decision, error) {
	trimmed := strings.TrimSpace(raw)

	data, err := unmarshalObject(trimmed)
	if err != nil {
		region, ok := extractObject(trimmed)
		if !ok {
			return nil, ErrNoJSONObject
		}
		if data, err = unmarshalObject(region); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
		}
	}

	for _, key := range decisionKeys {
		if _, ok := data[key]; !ok {
			return nil, fmt.Errorf("%w: missing key %q", ErrMalformedJSON, key)
		}
	}

	return &Decision{
		Match:    coerceMatch(data["match"]),
		Score:    coerceScore(data["score"]),
		Reasons:  coerceStrings(data["reasons"]),
		RedFlags: coerceStrings(data["red_flags"]),
	}, nil
}

func unmarshalObject(text string) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, err
	}

	return data, nil
}

// extractObject returns the substring spanning the first '{' and the last '}'.
func extractObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return "", false
	}

	return text[start : end+1], true
}

func coerceMatch(v any) string {
	switch val := v.(type) {
	case bool:
		if val {
			return MatchYes
		}
		return MatchNo
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		if lower == MatchYes || lower == "true" {
			return MatchYes
		}
		return MatchNo
	default:
		return MatchNo
	}
}

// coerceScore clamps the score into [0, 100]; anything non-numeric counts as
// zero.
func coerceScore(v any) int {
	score := math.NaN()
	switch val := v.(type) {
	case float64:
		score = val
	case int:
		score = float64(val)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			score = f
		}
	}

	switch {
	case math.IsNaN(score) || score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return int(math.Round(score))
	}
}

func coerceStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		if s := coerceString(v); s != "" {
			return []string{s}
		}
		return []string{}
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		if s := coerceString(item); s != "" {
			result = append(result, s)
		}
	}

	return result
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
