// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/bibwatch/pkg/types"
)

// crossrefAPIBase is the Crossref works endpoint. Declared as a var so
// tests can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

// crossrefSelect trims responses to the fields the extractor uses.
const crossrefSelect = "DOI,title,author,container-title,issued,created,URL,license,abstract"

// Crossref queries the Crossref REST API. Pagination uses deep-paging
// cursors: the first request sends cursor=*, each response carries the
// next cursor.
type Crossref struct {
	PageSize int
}

// Name returns the adapter identifier.
func (c *Crossref) Name() types.Source { return types.SourceCrossref }

// NewRequest builds the works query for one page. Year bounds become
// from-pub-date/until-pub-date filters.
func (c *Crossref) NewRequest(ctx context.Context, q types.Query, cursor string) (*http.Request, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, fmt.Errorf("empty Crossref query")
	}
	if cursor == "" {
		cursor = "*"
	}

	params := url.Values{
		"query":  {text},
		"select": {crossrefSelect},
		"rows":   {strconv.Itoa(c.PageSize)},
		"cursor": {cursor},
	}

	var filters []string
	if q.FromYear != 0 {
		filters = append(filters, fmt.Sprintf("from-pub-date:%d-01-01", q.FromYear))
	}
	if q.ToYear != 0 {
		filters = append(filters, fmt.Sprintf("until-pub-date:%d-12-31", q.ToYear))
	}
	if len(filters) > 0 {
		params.Set("filter", strings.Join(filters, ","))
	}

	return http.NewRequestWithContext(ctx, http.MethodGet, crossrefAPIBase+"?"+params.Encode(), nil)
}

// Crossref API JSON structures. Items are decoded twice: once loosely for
// the raw-metadata passthrough and once into the typed work shape.
type crossrefResponse struct {
	Message crossrefMessage `json:"message"`
}

type crossrefMessage struct {
	Items      []json.RawMessage `json:"items"`
	NextCursor string            `json:"next-cursor"`
}

type crossrefWork struct {
	DOI            string            `json:"DOI"`
	Title          []string          `json:"title"`
	Abstract       string            `json:"abstract"`
	Author         []crossrefAuthor  `json:"author"`
	ContainerTitle []string          `json:"container-title"`
	Issued         crossrefDate      `json:"issued"`
	Created        crossrefDate      `json:"created"`
	URL            string            `json:"URL"`
	License        []crossrefLicense `json:"license"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

type crossrefLicense struct {
	URL            string `json:"URL"`
	ContentVersion string `json:"content-version"`
}

// ParsePage decodes one works page. Pagination ends when the page is empty
// or the response carries no next cursor.
func (c *Crossref) ParsePage(payload []byte, _ string) (types.RawPage, error) {
	var resp crossrefResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return types.RawPage{}, fmt.Errorf("parsing Crossref response: %w", err)
	}

	page := types.RawPage{}
	for _, item := range resp.Message.Items {
		var work crossrefWork
		if err := json.Unmarshal(item, &work); err != nil {
			continue
		}

		raw := types.RawRecord{
			Source:    types.SourceCrossref,
			DOI:       work.DOI,
			Abstract:  work.Abstract,
			Published: isoDateFromParts(work.Issued.DateParts, work.Created.DateParts),
			URL:       work.URL,
			Metadata:  item,
		}
		if len(work.Title) > 0 {
			raw.Title = work.Title[0]
		}
		if len(work.ContainerTitle) > 0 {
			raw.Venue = work.ContainerTitle[0]
		}
		for _, au := range work.Author {
			name := strings.TrimSpace(au.Given + " " + au.Family)
			if name != "" {
				raw.Authors = append(raw.Authors, name)
			}
		}
		if len(work.License) > 0 {
			raw.License = work.License[0].URL
			if raw.License == "" {
				raw.License = work.License[0].ContentVersion
			}
		}
		page.Records = append(page.Records, raw)
	}

	if len(resp.Message.Items) > 0 && resp.Message.NextCursor != "" {
		page.Next = resp.Message.NextCursor
	}
	return page, nil
}

// isoDateFromParts converts Crossref date-parts ([[y, m, d]]) into an
// ISO-8601 date string with whatever precision the parts carry. The first
// non-empty parts list wins.
func isoDateFromParts(lists ...[][]int) string {
	for _, parts := range lists {
		// Crossref emits [[null]] for unknown dates; the year decodes
		// to zero.
		if len(parts) == 0 || len(parts[0]) == 0 || parts[0][0] == 0 {
			continue
		}
		dp := parts[0]
		s := fmt.Sprintf("%04d", dp[0])
		if len(dp) >= 2 {
			s += fmt.Sprintf("-%02d", dp[1])
			if len(dp) >= 3 {
				s += fmt.Sprintf("-%02d", dp[2])
			}
		}
		return s
	}
	return ""
}
