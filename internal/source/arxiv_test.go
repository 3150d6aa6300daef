// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/bibwatch/pkg/types"
)

const arxivSampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2401.12345v2</id>
    <title>Graph Neural
  Networks at Scale</title>
    <summary>We study large graphs.</summary>
    <published>2024-01-15T00:00:00Z</published>
    <author><name>Ada Smith</name></author>
    <author><name>Bo Jones</name></author>
    <link href="http://arxiv.org/abs/2401.12345v2" type="text/html"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2402.00001v1</id>
    <title>Second Paper</title>
    <summary>Another abstract.</summary>
    <published>2024-02-01T00:00:00Z</published>
    <author><name>Cy Lee</name></author>
  </entry>
</feed>`

func TestArxivNewRequest(t *testing.T) {
	a := &Arxiv{PageSize: 50}
	q := types.Query{Text: "graph neural networks"}

	req, err := a.NewRequest(context.Background(), q, "")
	require.NoError(t, err)

	// The server-visible value keeps spaces between terms; the "+" in
	// the raw query is the encoding of a space, not a literal plus.
	assert.Equal(t, "all:graph neural networks", req.URL.Query().Get("search_query"))
	assert.Contains(t, req.URL.RawQuery, "search_query=all%3Agraph+neural+networks")
	assert.NotContains(t, req.URL.RawQuery, "%2B")
	assert.Equal(t, "0", req.URL.Query().Get("start"))
	assert.Equal(t, "50", req.URL.Query().Get("max_results"))

	req, err = a.NewRequest(context.Background(), q, "100")
	require.NoError(t, err)
	assert.Equal(t, "100", req.URL.Query().Get("start"))
}

func TestArxivNewRequestRejectsBadInput(t *testing.T) {
	a := &Arxiv{PageSize: 50}

	_, err := a.NewRequest(context.Background(), types.Query{Text: "  "}, "")
	assert.Error(t, err)

	_, err = a.NewRequest(context.Background(), types.Query{Text: "q"}, "not-a-number")
	assert.Error(t, err)
}

func TestArxivParsePage(t *testing.T) {
	a := &Arxiv{PageSize: 2}

	page, err := a.ParsePage([]byte(arxivSampleFeed), "")
	require.NoError(t, err)

	require.Len(t, page.Records, 2)
	first := page.Records[0]
	assert.Equal(t, types.SourceArxiv, first.Source)
	assert.Equal(t, "http://arxiv.org/abs/2401.12345v2", first.ArxivID)
	assert.Contains(t, first.Title, "Graph Neural")
	assert.Equal(t, "We study large graphs.", first.Abstract)
	assert.Equal(t, []string{"Ada Smith", "Bo Jones"}, first.Authors)
	assert.Equal(t, "arXiv", first.Venue)
	assert.NotEmpty(t, first.Metadata)

	// A full page advances the offset by the entry count.
	assert.Equal(t, "2", page.Next)

	page, err = a.ParsePage([]byte(arxivSampleFeed), "2")
	require.NoError(t, err)
	assert.Equal(t, "4", page.Next)
}

func TestArxivParsePageShortPageEndsPagination(t *testing.T) {
	a := &Arxiv{PageSize: 100}

	page, err := a.ParsePage([]byte(arxivSampleFeed), "")
	require.NoError(t, err)
	assert.Empty(t, page.Next)
}

func TestArxivParsePageBadXML(t *testing.T) {
	a := &Arxiv{PageSize: 10}
	_, err := a.ParsePage([]byte("{not xml}"), "")
	assert.Error(t, err)
}
