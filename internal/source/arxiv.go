// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/bibwatch/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// Arxiv queries the arXiv Atom API. Pagination is offset-based: the cursor
// is the decimal start offset.
type Arxiv struct {
	PageSize int
}

// Name returns the adapter identifier.
func (a *Arxiv) Name() types.Source { return types.SourceArxiv }

// NewRequest builds the arXiv query request for one page. arXiv has no
// clean year parameter; year bounds are applied downstream by the
// extractor's filter.
func (a *Arxiv) NewRequest(ctx context.Context, q types.Query, cursor string) (*http.Request, error) {
	terms := strings.Fields(q.Text)
	if len(terms) == 0 {
		return nil, fmt.Errorf("empty arXiv query")
	}

	start := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, fmt.Errorf("bad arXiv cursor %q: %w", cursor, err)
		}
		start = n
	}

	// Terms stay space-separated; Encode renders the spaces as the "+"
	// characters the arXiv API expects. Pre-joining with "+" would
	// percent-encode to literal plus signs server-side.
	params := url.Values{
		"search_query": {"all:" + strings.Join(terms, " ")},
		"start":        {strconv.Itoa(start)},
		"max_results":  {strconv.Itoa(a.PageSize)},
		"sortBy":       {"submittedDate"},
		"sortOrder":    {"descending"},
	}

	return http.NewRequestWithContext(ctx, http.MethodGet, arxivAPIBase+"?"+params.Encode(), nil)
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id" json:"id"`
	Title     string        `xml:"title" json:"title"`
	Summary   string        `xml:"summary" json:"summary"`
	Published string        `xml:"published" json:"published"`
	DOI       string        `xml:"doi" json:"doi,omitempty"`
	Authors   []arxivAuthor `xml:"author" json:"authors"`
	Links     []arxivLink   `xml:"link" json:"links"`
}

type arxivAuthor struct {
	Name string `xml:"name" json:"name"`
}

type arxivLink struct {
	Href string `xml:"href,attr" json:"href"`
	Type string `xml:"type,attr" json:"type,omitempty"`
}

// ParsePage decodes one Atom page. The next cursor is the current offset
// advanced by the entry count; a short page ends pagination.
func (a *Arxiv) ParsePage(payload []byte, cursor string) (types.RawPage, error) {
	var feed arxivFeed
	if err := xml.Unmarshal(payload, &feed); err != nil {
		return types.RawPage{}, fmt.Errorf("parsing arXiv feed: %w", err)
	}

	page := types.RawPage{}
	for _, entry := range feed.Entries {
		raw := types.RawRecord{
			Source:    types.SourceArxiv,
			ArxivID:   entry.ID,
			DOI:       entry.DOI,
			Title:     entry.Title,
			Abstract:  entry.Summary,
			Published: entry.Published,
			URL:       entry.ID,
			Venue:     "arXiv",
		}
		for _, au := range entry.Authors {
			raw.Authors = append(raw.Authors, au.Name)
		}
		// The Atom entry is XML; re-encode it as JSON for the
		// raw-metadata passthrough.
		raw.Metadata, _ = json.Marshal(entry)
		page.Records = append(page.Records, raw)
	}

	if len(feed.Entries) == a.PageSize {
		start := 0
		if cursor != "" {
			start, _ = strconv.Atoi(cursor)
		}
		page.Next = strconv.Itoa(start + len(feed.Entries))
	}
	return page, nil
}
