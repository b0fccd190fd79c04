// Package ai holds the model judgment boundary: the decision schema, the
// tolerant response parser and the provider-agnostic judge.
package ai

const (
	// MatchYes and MatchNo are the serialized values of Decision.Match.
	MatchYes = "yes"
	MatchNo  = "no"
)

// Decision is the structured verdict for a single posting.
type Decision struct {
	Match    string   `json:"match"`
	Score    int      `json:"score"`
	Reasons  []string `json:"reasons"`
	RedFlags []string `json:"red_flags"`
}

// Matched reports whether the decision marks the posting as a match.
func (d *Decision) Matched() bool {
	return d != nil && d.Match == MatchYes
}

// FallbackDecision is the failure-closed verdict used whenever a model
// invocation or its response parsing fails: an unreadable answer must never
// advance a posting to match.
func FallbackDecision(detail string) *Decision {
	return &Decision{
		Match:    MatchNo,
		Score:    0,
		Reasons:  []string{"evaluation failed before a decision was reached"},
		RedFlags: []string{detail},
	}
}
