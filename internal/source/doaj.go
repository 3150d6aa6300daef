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

// doajAPIBase is the DOAJ v2 article search endpoint. The query string is
// part of the path. Declared as a var so tests can substitute an httptest
// server.
var doajAPIBase = "https://doaj.org/api/v2/search/articles/"

// DOAJ queries the Directory of Open Access Journals. Pagination is
// page-numbered: the cursor is the decimal page, starting at 1.
type DOAJ struct {
	PageSize int
}

// Name returns the adapter identifier.
func (d *DOAJ) Name() types.Source { return types.SourceDOAJ }

// NewRequest builds the article search request for one page. DOAJ has no
// date-range parameter; year bounds are applied downstream by the
// extractor's filter.
func (d *DOAJ) NewRequest(ctx context.Context, q types.Query, cursor string) (*http.Request, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, fmt.Errorf("empty DOAJ query")
	}

	page := 1
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, fmt.Errorf("bad DOAJ cursor %q: %w", cursor, err)
		}
		page = n
	}

	params := url.Values{
		"page":     {strconv.Itoa(page)},
		"pageSize": {strconv.Itoa(d.PageSize)},
	}

	reqURL := doajAPIBase + url.PathEscape(text) + "?" + params.Encode()
	return http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
}

// DOAJ API JSON structures. Article metadata lives under bibjson.
type doajResponse struct {
	Results []json.RawMessage `json:"results"`
}

type doajArticle struct {
	Bibjson doajBibjson `json:"bibjson"`
}

type doajBibjson struct {
	Title      string           `json:"title"`
	Year       string           `json:"year"`
	Month      string           `json:"month"`
	Identifier []doajIdentifier `json:"identifier"`
	Author     []doajAuthor     `json:"author"`
	Link       []doajLink       `json:"link"`
	Journal    doajJournal      `json:"journal"`
}

type doajIdentifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type doajAuthor struct {
	Name string `json:"name"`
}

type doajLink struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type doajJournal struct {
	Title   string `json:"title"`
	License []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"license"`
}

// ParsePage decodes one result page. A full page advances to the next
// page number; a short page ends pagination.
func (d *DOAJ) ParsePage(payload []byte, cursor string) (types.RawPage, error) {
	var resp doajResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return types.RawPage{}, fmt.Errorf("parsing DOAJ response: %w", err)
	}

	page := types.RawPage{}
	for _, item := range resp.Results {
		var art doajArticle
		if err := json.Unmarshal(item, &art); err != nil {
			continue
		}
		bj := art.Bibjson

		raw := types.RawRecord{
			Source:    types.SourceDOAJ,
			Title:     bj.Title,
			Published: doajPublished(bj.Year, bj.Month),
			Venue:     bj.Journal.Title,
			Metadata:  item,
		}
		for _, id := range bj.Identifier {
			if strings.EqualFold(id.Type, "doi") {
				raw.DOI = id.ID
				break
			}
		}
		for _, au := range bj.Author {
			if au.Name != "" {
				raw.Authors = append(raw.Authors, au.Name)
			}
		}
		for _, ln := range bj.Link {
			if ln.Type == "fulltext" && ln.URL != "" {
				raw.URL = ln.URL
			}
		}
		if len(bj.Journal.License) > 0 {
			raw.License = bj.Journal.License[0].Title
		}
		page.Records = append(page.Records, raw)
	}

	if len(resp.Results) == d.PageSize {
		cur := 1
		if cursor != "" {
			cur, _ = strconv.Atoi(cursor)
		}
		page.Next = strconv.Itoa(cur + 1)
	}
	return page, nil
}

// doajPublished joins DOAJ's separate year/month strings into an ISO-8601
// prefix (YYYY or YYYY-MM).
func doajPublished(year, month string) string {
	if year == "" {
		return ""
	}
	if m, err := strconv.Atoi(month); err == nil && m >= 1 && m <= 12 {
		return fmt.Sprintf("%s-%02d", year, m)
	}
	return year
}
