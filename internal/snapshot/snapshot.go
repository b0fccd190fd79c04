// Package snapshot persists dated batches of postings and run artifacts in a
// keyed store.
package snapshot

import "context"

// Store is a keyed snapshot store. Read reports whether the key exists; a
// missing key is not an error. Write replaces the whole value.
type Store interface {
	Read(ctx context.Context, key string, dst any) (bool, error)
	Write(ctx context.Context, key string, v any) error
	Close() error
}

// JobsKey names the full batch fetched for a date.
func JobsKey(date string) string { return "jobs_" + date }

// NewJobsKey names the deduplicated batch for a date.
func NewJobsKey(date string) string { return "new_jobs_" + date }

// MatchesKey names the evaluation artifact for a date.
func MatchesKey(date string) string { return "matches_" + date }
