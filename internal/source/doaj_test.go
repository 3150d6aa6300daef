// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/bibwatch/pkg/types"
)

const doajSamplePage = `{
  "results": [
    {
      "bibjson": {
        "title": "Open Access Graph Learning",
        "year": "2023",
        "month": "7",
        "identifier": [
          {"type": "pissn", "id": "1234-5678"},
          {"type": "DOI", "id": "10.5555/oa.2023.42"}
        ],
        "author": [{"name": "Greta Chen"}, {"name": ""}],
        "link": [{"type": "fulltext", "url": "https://example.org/article/42"}],
        "journal": {
          "title": "Open ML Journal",
          "license": [{"title": "CC BY", "url": "https://creativecommons.org/licenses/by/4.0/"}]
        }
      }
    },
    {
      "bibjson": {
        "title": "No Month Given",
        "year": "2022"
      }
    }
  ]
}`

func TestDOAJNewRequest(t *testing.T) {
	d := &DOAJ{PageSize: 30}
	q := types.Query{Text: "graph learning"}

	req, err := d.NewRequest(context.Background(), q, "")
	require.NoError(t, err)

	// The query text is part of the URL path, not the query string.
	assert.Contains(t, req.URL.EscapedPath(), "graph%20learning")
	assert.Equal(t, "1", req.URL.Query().Get("page"))
	assert.Equal(t, "30", req.URL.Query().Get("pageSize"))

	req, err = d.NewRequest(context.Background(), q, "3")
	require.NoError(t, err)
	assert.Equal(t, "3", req.URL.Query().Get("page"))
}

func TestDOAJNewRequestRejectsBadInput(t *testing.T) {
	d := &DOAJ{PageSize: 30}

	_, err := d.NewRequest(context.Background(), types.Query{Text: ""}, "")
	assert.Error(t, err)

	_, err = d.NewRequest(context.Background(), types.Query{Text: "q"}, "two")
	assert.Error(t, err)
}

func TestDOAJParsePage(t *testing.T) {
	d := &DOAJ{PageSize: 2}

	page, err := d.ParsePage([]byte(doajSamplePage), "")
	require.NoError(t, err)

	require.Len(t, page.Records, 2)
	first := page.Records[0]
	assert.Equal(t, types.SourceDOAJ, first.Source)
	assert.Equal(t, "10.5555/oa.2023.42", first.DOI)
	assert.Equal(t, "Open Access Graph Learning", first.Title)
	assert.Equal(t, "2023-07", first.Published)
	assert.Equal(t, []string{"Greta Chen"}, first.Authors)
	assert.Equal(t, "https://example.org/article/42", first.URL)
	assert.Equal(t, "Open ML Journal", first.Venue)
	assert.Equal(t, "CC BY", first.License)

	assert.Equal(t, "2022", page.Records[1].Published)

	// Full page: advance from page 1 to page 2.
	assert.Equal(t, "2", page.Next)
}

func TestDOAJParsePageShortPageEndsPagination(t *testing.T) {
	d := &DOAJ{PageSize: 50}

	page, err := d.ParsePage([]byte(doajSamplePage), "4")
	require.NoError(t, err)
	assert.Empty(t, page.Next)
}

func TestDOAJPublished(t *testing.T) {
	assert.Equal(t, "2023-07", doajPublished("2023", "7"))
	assert.Equal(t, "2023", doajPublished("2023", ""))
	assert.Equal(t, "2023", doajPublished("2023", "13"))
	assert.Equal(t, "", doajPublished("", "7"))
}
