// Package dedup computes the day-over-day difference between posting batches.
package dedup

import "jobsieve/internal/jobtech"

// NewPostings returns the subset of today's postings whose ID was not seen in
// yesterday's batch, preserving today's order. Postings without an ID are
// always treated as new and never contribute to the seen set.
func NewPostings(today, yesterday []*jobtech.JobPosting) []*jobtech.JobPosting {
	seen := make(map[string]struct{}, len(yesterday))
	for _, posting := range yesterday {
		if posting == nil || posting.ID == "" {
			continue
		}
		seen[posting.ID] = struct{}{}
	}

	fresh := make([]*jobtech.JobPosting, 0, len(today))
	for _, posting := range today {
		if posting != nil && posting.ID != "" {
			if _, ok := seen[posting.ID]; ok {
				continue
			}
		}
		fresh = append(fresh, posting)
	}

	return fresh
}
