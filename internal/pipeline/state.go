package pipeline

import (
	"jobsieve/internal/ai"
	"jobsieve/internal/jobtech"
	"jobsieve/internal/profile"
)

// Stats accumulates counters and flags over one run. Each stage writes only
// the fields it owns; nothing is reset once set.
type Stats struct {
	ProfileLoaded bool   `json:"profile_loaded"`
	JobsSource    string `json:"jobs_source"`
	JobsLoaded    int    `json:"jobs_loaded"`
	MatchingRan   bool   `json:"matching_ran"`
	MatchesCount  int    `json:"matches_count"`
	RejectedCount int    `json:"rejected_count"`
	ExpThreshold  int    `json:"exp_threshold"`
}

// DecisionRecord pairs a posting with the decision reached for it.
type DecisionRecord struct {
	*jobtech.JobPosting
	Decision *ai.Decision `json:"decision"`
}

// RunResult is the single artifact a run persists.
type RunResult struct {
	RunDate  string            `json:"run_date"`
	Stats    Stats             `json:"stats"`
	Matches  []*DecisionRecord `json:"matches"`
	Rejected []*DecisionRecord `json:"rejected"`
}

// State is the working context handed from stage to stage by value. Stages
// only ever add to it: a copied State with one more field filled in comes
// back, never a mutated shared one.
type State struct {
	RunDate  string
	Profile  *profile.Document
	Jobs     []*jobtech.JobPosting
	Matches  []*DecisionRecord
	Rejected []*DecisionRecord
	Stats    Stats
}
