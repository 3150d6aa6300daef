// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/bibwatch/pkg/types"
)

// openAlexAPIBase is the OpenAlex Works endpoint. Declared as a var so
// tests can substitute an httptest server.
var openAlexAPIBase = "https://api.openalex.org/works"

// OpenAlex queries the OpenAlex Works API. Pagination is page-numbered:
// the cursor is the decimal page, starting at 1. Mailto joins the polite
// pool when a contact is configured.
type OpenAlex struct {
	PageSize int
	Mailto   string
}

// Name returns the adapter identifier.
func (o *OpenAlex) Name() types.Source { return types.SourceOpenAlex }

// NewRequest builds the works search for one page. Year bounds become
// publication-date filters.
func (o *OpenAlex) NewRequest(ctx context.Context, q types.Query, cursor string) (*http.Request, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, fmt.Errorf("empty OpenAlex query")
	}

	page := 1
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, fmt.Errorf("bad OpenAlex cursor %q: %w", cursor, err)
		}
		page = n
	}

	params := url.Values{
		"search":   {text},
		"per_page": {strconv.Itoa(o.PageSize)},
		"page":     {strconv.Itoa(page)},
	}

	var filters []string
	if q.FromYear != 0 {
		filters = append(filters, fmt.Sprintf("from_publication_date:%d-01-01", q.FromYear))
	}
	if q.ToYear != 0 {
		filters = append(filters, fmt.Sprintf("to_publication_date:%d-12-31", q.ToYear))
	}
	if len(filters) > 0 {
		params.Set("filter", strings.Join(filters, ","))
	}
	if o.Mailto != "" {
		params.Set("mailto", o.Mailto)
	}

	return http.NewRequestWithContext(ctx, http.MethodGet, openAlexAPIBase+"?"+params.Encode(), nil)
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Results []json.RawMessage `json:"results"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	DOI                   string               `json:"doi"`
	PublicationDate       string               `json:"publication_date"`
	PublicationYear       int                  `json:"publication_year"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
	PrimaryLocation       openAlexLocation     `json:"primary_location"`
}

type openAlexAuthorship struct {
	Author struct {
		DisplayName string `json:"display_name"`
	} `json:"author"`
}

type openAlexLocation struct {
	License string `json:"license"`
	Source  struct {
		DisplayName string `json:"display_name"`
	} `json:"source"`
}

// ParsePage decodes one works page. A full page advances to the next page
// number; a short page ends pagination.
func (o *OpenAlex) ParsePage(payload []byte, cursor string) (types.RawPage, error) {
	var resp openAlexResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return types.RawPage{}, fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	page := types.RawPage{}
	for _, item := range resp.Results {
		var work openAlexWork
		if err := json.Unmarshal(item, &work); err != nil {
			continue
		}

		raw := types.RawRecord{
			Source:    types.SourceOpenAlex,
			DOI:       work.DOI,
			Title:     work.Title,
			Abstract:  reconstructAbstract(work.AbstractInvertedIndex),
			Published: work.PublicationDate,
			URL:       work.ID,
			Venue:     work.PrimaryLocation.Source.DisplayName,
			License:   work.PrimaryLocation.License,
			Metadata:  item,
		}
		if raw.Published == "" && work.PublicationYear > 0 {
			raw.Published = strconv.Itoa(work.PublicationYear)
		}
		for _, au := range work.Authorships {
			if au.Author.DisplayName != "" {
				raw.Authors = append(raw.Authors, au.Author.DisplayName)
			}
		}
		page.Records = append(page.Records, raw)
	}

	if len(resp.Results) == o.PageSize {
		cur := 1
		if cursor != "" {
			cur, _ = strconv.Atoi(cursor)
		}
		page.Next = strconv.Itoa(cur + 1)
	}
	return page, nil
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The inverted index maps each word to the positions where it
// appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}
