// Package prefilter applies deterministic rejection rules to postings before
// any model call is spent on them.
package prefilter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"jobsieve/internal/ai"
	"jobsieve/internal/jobtech"
)

// seniorityKeywords disqualify a posting for an early-career profile on a
// plain title substring match.
var seniorityKeywords = []string{"senior", "lead", "principal", "staff", "head of"}

// yearsPatterns are tried in order; the first match wins even when a later
// pattern would extract a different value.
var yearsPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s*\+\s*years`),
	regexp.MustCompile(`(?i)(\d+)\s+years of experience`),
	regexp.MustCompile(`(?i)minimum\s+(\d+)\s+years`),
}

// Evaluate runs the seniority keyword rule and then the years-of-experience
// rule against the posting. It returns a rejection decision, or nil when the
// posting passes through to model judgment. The outcome is a pure function of
// title, description and threshold.
func Evaluate(posting *jobtech.JobPosting, threshold int) *ai.Decision {
	title := strings.ToLower(posting.Title)
	for _, keyword := range seniorityKeywords {
		if strings.Contains(title, keyword) {
			return &ai.Decision{
				Match:    ai.MatchNo,
				Score:    0,
				Reasons:  []string{fmt.Sprintf("title contains seniority keyword %q", keyword)},
				RedFlags: []string{"seniority keyword: " + keyword},
			}
		}
	}

	years, ok := ExtractYears(posting.Title + " " + posting.Description)
	if ok && years > threshold {
		return &ai.Decision{
			Match:    ai.MatchNo,
			Score:    0,
			Reasons:  []string{fmt.Sprintf("requires %d years of experience, above the threshold of %d", years, threshold)},
			RedFlags: []string{fmt.Sprintf("experience requirement: %d years", years)},
		}
	}

	return nil
}

// ExtractYears scans text for a years-of-experience requirement. ok is false
// when no pattern matches, which means the requirement stays unknown rather
// than zero.
func ExtractYears(text string) (int, bool) {
	for _, pattern := range yearsPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		years, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		return years, true
	}

	return 0, false
}
