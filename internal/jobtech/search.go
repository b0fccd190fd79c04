package jobtech

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	searchPath = "/search"
	dateLayout = "2006-01-02"

	// Max value for search results per request.
	maxLimit = 100
	// The endpoint refuses to page past this offset.
	maxOffset = 2000
)

type SearchParams struct {
	Query string `mapstructure:"query"`
	Limit int    `mapstructure:"limit"`
}

type searchResponse struct {
	Total struct {
		Value int `json:"value"`
	} `json:"total"`
	Hits []*hit `json:"hits"`
}

type hit struct {
	ID       string `json:"id"`
	Headline string `json:"headline"`
	Employer struct {
		Name string `json:"name"`
	} `json:"employer"`
	Description struct {
		Text          string `json:"text"`
		TextFormatted string `json:"text_formatted"`
	} `json:"description"`
	WorkplaceAddress struct {
		Municipality string `json:"municipality"`
	} `json:"workplace_address"`
	WebpageURL      string `json:"webpage_url"`
	PublicationDate string `json:"publication_date"`
}

// Search pages through the search endpoint and returns the postings published
// on the given date (YYYY-MM-DD, UTC). Paging stops on the first empty page
// or at the endpoint's offset cap.
func (c *Client) Search(params *SearchParams, date string) ([]*JobPosting, error) {
	limit := params.Limit
	if limit <= 0 || limit > maxLimit {
		limit = maxLimit
	}

	searchURL := fmt.Sprintf("%s%s", c.APIURL, searchPath)
	postings := make([]*JobPosting, 0)

	for offset := 0; ; offset += limit {
		if offset > maxOffset {
			c.logger.Debug("stopping at offset cap", zap.Int("offset", offset))
			break
		}

		q := url.Values{}
		q.Set("q", params.Query)
		q.Set("limit", strconv.Itoa(limit))
		q.Set("offset", strconv.Itoa(offset))

		var page searchResponse
		if err := c.getJSON(searchURL, q, &page); err != nil {
			return nil, fmt.Errorf("search page at offset %d: %w", offset, err)
		}

		if len(page.Hits) == 0 {
			break
		}

		c.logger.Debug("got search page",
			zap.Int("offset", offset),
			zap.Int("hits", len(page.Hits)),
			zap.Int("total", page.Total.Value),
		)

		for _, h := range page.Hits {
			if publishedOn(h.PublicationDate) != date {
				continue
			}
			postings = append(postings, h.toPosting())
		}
	}

	return postings, nil
}

// publishedOn reduces a publication timestamp to its UTC calendar date. An
// empty or unparseable stamp yields an empty string and never matches a date.
func publishedOn(stamp string) string {
	if stamp == "" {
		return ""
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.999999999"} {
		if t, err := time.Parse(layout, stamp); err == nil {
			return t.UTC().Format(dateLayout)
		}
	}

	return ""
}

func (h *hit) toPosting() *JobPosting {
	description := h.Description.Text
	if strings.TrimSpace(description) == "" && h.Description.TextFormatted != "" {
		description = htmlToText(h.Description.TextFormatted)
	}

	return &JobPosting{
		ID:          h.ID,
		Title:       h.Headline,
		Company:     h.Employer.Name,
		Description: description,
		Location:    h.WorkplaceAddress.Municipality,
		URL:         h.WebpageURL,
		PublishedAt: h.PublicationDate,
	}
}

// htmlToText flattens a formatted description into plain text, one block
// element per line.
func htmlToText(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return markup
	}

	blocks := make([]string, 0)
	doc.Find("p, li, h1, h2, h3, h4, h5, h6").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})

	if len(blocks) == 0 {
		return strings.TrimSpace(doc.Text())
	}

	return strings.Join(blocks, "\n")
}
