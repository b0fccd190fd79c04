package jobtech

// JobPosting is one job advertisement as ingested from the search API. The ID
// is what day-over-day deduplication keys on; postings are immutable once
// fetched.
type JobPosting struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description"`
	Location    string `json:"location"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
}
