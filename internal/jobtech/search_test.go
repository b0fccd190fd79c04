package jobtech

import (
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New(context.Background(), zap.NewNop())
	client.APIURL = server.URL

	return client
}

const emptyPage = `{"total":{"value":3},"hits":[]}`

func TestSearchPaginatesAndFiltersByDate(t *testing.T) {
	var offsets []string

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "AI" {
			t.Errorf("unexpected query: %q", got)
		}
		offsets = append(offsets, r.URL.Query().Get("offset"))

		pages := map[string]string{
			"0": `{"total":{"value":3},"hits":[
				{"id":"1","headline":"Data Analyst","employer":{"name":"Acme"},"description":{"text":"SQL dashboards"},"workplace_address":{"municipality":"Stockholm"},"webpage_url":"https://example.com/1","publication_date":"2026-08-25T06:30:00"},
				{"id":"2","headline":"Old Posting","employer":{"name":"Acme"},"description":{"text":"stale"},"workplace_address":{"municipality":"Lund"},"webpage_url":"https://example.com/2","publication_date":"2026-08-24T23:59:59"}
			]}`,
			"2": `{"total":{"value":3},"hits":[
				{"id":"3","headline":"ML Intern","employer":{"name":"Globex"},"description":{"text":"Python"},"workplace_address":{"municipality":"Malmo"},"webpage_url":"https://example.com/3","publication_date":"2026-08-25T10:00:00+02:00"}
			]}`,
		}

		page, ok := pages[r.URL.Query().Get("offset")]
		if !ok {
			page = emptyPage
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, page)
	})

	client := testClient(t, handler)

	postings, err := client.Search(&SearchParams{Query: "AI", Limit: 2}, "2026-08-25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(offsets) != 3 || offsets[0] != "0" || offsets[1] != "2" || offsets[2] != "4" {
		t.Fatalf("unexpected offsets: %v", offsets)
	}

	if len(postings) != 2 {
		t.Fatalf("expected 2 postings published on the date, got %d", len(postings))
	}

	first := postings[0]
	if first.ID != "1" || first.Title != "Data Analyst" || first.Company != "Acme" {
		t.Fatalf("unexpected first posting: %+v", first)
	}
	if first.Location != "Stockholm" || first.URL != "https://example.com/1" {
		t.Fatalf("unexpected first posting mapping: %+v", first)
	}
	if first.PublishedAt != "2026-08-25T06:30:00" {
		t.Fatalf("expected raw publication stamp, got %q", first.PublishedAt)
	}

	// The second kept posting carries a zone offset and still lands on the
	// requested UTC date.
	if postings[1].ID != "3" {
		t.Fatalf("expected posting 3, got %q", postings[1].ID)
	}
}

func TestSearchDefaultsLimit(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "100" {
			t.Errorf("expected default limit 100, got %q", got)
		}
		fmt.Fprint(w, emptyPage)
	})

	client := testClient(t, handler)

	if _, err := client.Search(&SearchParams{Query: "AI"}, "2026-08-25"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSearchDecodesGzip(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept-Encoding"); got != "gzip" {
			t.Errorf("expected gzip accept-encoding, got %q", got)
		}

		page := emptyPage
		if r.URL.Query().Get("offset") == "0" {
			page = `{"total":{"value":1},"hits":[
				{"id":"1","headline":"Data Analyst","employer":{"name":"Acme"},"description":{"text":"SQL"},"workplace_address":{"municipality":"Stockholm"},"webpage_url":"https://example.com/1","publication_date":"2026-08-25T06:30:00"}
			]}`
		}

		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		fmt.Fprint(gz, page)
		gz.Close()
	})

	client := testClient(t, handler)

	postings, err := client.Search(&SearchParams{Query: "AI"}, "2026-08-25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 1 || postings[0].ID != "1" {
		t.Fatalf("unexpected postings: %+v", postings)
	}
}

func TestSearchFallsBackToFormattedDescription(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := emptyPage
		if r.URL.Query().Get("offset") == "0" {
			page = `{"total":{"value":1},"hits":[
				{"id":"1","headline":"Data Analyst","employer":{"name":"Acme"},"description":{"text":"","text_formatted":"<p>Build dashboards</p><ul><li>Go</li><li>SQL</li></ul>"},"workplace_address":{"municipality":"Stockholm"},"webpage_url":"https://example.com/1","publication_date":"2026-08-25T06:30:00"}
			]}`
		}
		fmt.Fprint(w, page)
	})

	client := testClient(t, handler)

	postings, err := client.Search(&SearchParams{Query: "AI"}, "2026-08-25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
	if postings[0].Description != "Build dashboards\nGo\nSQL" {
		t.Fatalf("unexpected flattened description: %q", postings[0].Description)
	}
}

func TestSearchBadStatus(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	client := testClient(t, handler)

	if _, err := client.Search(&SearchParams{Query: "AI"}, "2026-08-25"); err == nil {
		t.Fatal("expected an error on 500 response")
	}
}

func TestPublishedOn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		stamp  string
		expect string
	}{
		{
			name:   "naive timestamp",
			stamp:  "2026-08-25T06:30:04",
			expect: "2026-08-25",
		},
		{
			name:   "fractional seconds",
			stamp:  "2026-08-25T06:30:04.123456",
			expect: "2026-08-25",
		},
		{
			name:   "zone offset normalized to utc",
			stamp:  "2026-08-26T01:00:00+03:00",
			expect: "2026-08-25",
		},
		{
			name:   "empty stamp",
			stamp:  "",
			expect: "",
		},
		{
			name:   "garbage stamp",
			stamp:  "not a date",
			expect: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := publishedOn(tt.stamp); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestHTMLToText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		markup string
		expect string
	}{
		{
			name:   "blocks become lines",
			markup: "<p>Build dashboards</p><ul><li>Go</li><li>SQL</li></ul>",
			expect: "Build dashboards\nGo\nSQL",
		},
		{
			name:   "plain text passes through",
			markup: "no markup here",
			expect: "no markup here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := htmlToText(tt.markup); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
