package prefilter

import (
	"strings"
	"testing"

	"jobsieve/internal/jobtech"
)

func TestEvaluateRejectsSeniorityKeywords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title   string
		keyword string
	}{
		{title: "Senior ML Engineer", keyword: "senior"},
		{title: "Lead Developer", keyword: "lead"},
		{title: "Principal Engineer", keyword: "principal"},
		{title: "Staff Software Engineer", keyword: "staff"},
		{title: "Head of Data", keyword: "head of"},
		{title: "SENIOR Analyst", keyword: "senior"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			t.Parallel()

			posting := &jobtech.JobPosting{ID: "1", Title: tt.title}
			decision := Evaluate(posting, 2)
			if decision == nil {
				t.Fatal("expected a rejection")
			}
			if decision.Matched() || decision.Score != 0 {
				t.Fatalf("unexpected decision: %+v", decision)
			}
			if len(decision.RedFlags) != 1 || !strings.Contains(decision.RedFlags[0], tt.keyword) {
				t.Fatalf("expected the keyword in red flags, got %v", decision.RedFlags)
			}
			if len(decision.Reasons) != 1 || !strings.Contains(decision.Reasons[0], tt.keyword) {
				t.Fatalf("expected the keyword in reasons, got %v", decision.Reasons)
			}
		})
	}
}

func TestEvaluateExperienceThreshold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		description string
		threshold   int
		rejected    bool
	}{
		{
			name:        "above threshold rejected",
			description: "We need 3+ years working with Python.",
			threshold:   2,
			rejected:    true,
		},
		{
			name:        "at threshold passes",
			description: "We need 2+ years working with Python.",
			threshold:   2,
			rejected:    false,
		},
		{
			name:        "unknown requirement passes",
			description: "No experience needed, we will train you.",
			threshold:   2,
			rejected:    false,
		},
		{
			name:        "minimum phrasing rejected",
			description: "Minimum 4 years in data engineering.",
			threshold:   2,
			rejected:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			posting := &jobtech.JobPosting{ID: "1", Title: "Data Analyst", Description: tt.description}
			decision := Evaluate(posting, tt.threshold)
			if tt.rejected && decision == nil {
				t.Fatal("expected a rejection")
			}
			if !tt.rejected && decision != nil {
				t.Fatalf("expected a pass, got %+v", decision)
			}
			if decision != nil && len(decision.Reasons) != 1 {
				t.Fatalf("expected a single reason, got %v", decision.Reasons)
			}
		})
	}
}

func TestEvaluateChecksTitleForYears(t *testing.T) {
	posting := &jobtech.JobPosting{ID: "1", Title: "Analyst (5+ years)", Description: "friendly team"}
	if decision := Evaluate(posting, 2); decision == nil {
		t.Fatal("expected years in the title to reject")
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	posting := &jobtech.JobPosting{ID: "1", Title: "Senior Engineer"}

	first := Evaluate(posting, 2)
	second := Evaluate(posting, 2)

	if first == nil || second == nil {
		t.Fatal("expected rejections")
	}
	if first.Match != second.Match || first.Score != second.Score || first.Reasons[0] != second.Reasons[0] {
		t.Fatalf("expected identical decisions, got %+v and %+v", first, second)
	}
}

func TestExtractYears(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		text  string
		years int
		known bool
	}{
		{
			name:  "plus phrasing",
			text:  "3+ years with Go",
			years: 3,
			known: true,
		},
		{
			name:  "of experience phrasing",
			text:  "5 years of experience in analytics",
			years: 5,
			known: true,
		},
		{
			name:  "minimum phrasing",
			text:  "minimum 4 years in the field",
			years: 4,
			known: true,
		},
		{
			name:  "first pattern wins over later ones",
			text:  "3+ years preferred, minimum 10 years for leads",
			years: 3,
			known: true,
		},
		{
			name:  "of experience wins over minimum",
			text:  "minimum 9 years... wait, 7 years of experience",
			years: 7,
			known: true,
		},
		{
			name:  "case insensitive",
			text:  "MINIMUM 6 YEARS",
			years: 6,
			known: true,
		},
		{
			name:  "no requirement",
			text:  "friendly team, fika on fridays",
			known: false,
		},
		{
			name:  "bare number is not a requirement",
			text:  "team of 10 people",
			known: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			years, ok := ExtractYears(tt.text)
			if ok != tt.known {
				t.Fatalf("expected known=%v, got %v", tt.known, ok)
			}
			if ok && years != tt.years {
				t.Fatalf("expected %d years, got %d", tt.years, years)
			}
		})
	}
}
