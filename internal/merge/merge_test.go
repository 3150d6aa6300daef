// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/bibwatch/pkg/types"
)

func TestMergeDOIBucketsAcrossSources(t *testing.T) {
	records := []types.Record{
		{
			Source:    types.SourceArxiv,
			DOI:       "10.1/xyz",
			ArxivID:   "2401.12345",
			Title:     "Graph Neural Networks at Scale",
			Abstract:  "A preprint abstract.",
			Published: "2024-01-15",
			Authors:   []string{"Ada Smith", "Bo Jones", "Cy Lee"},
		},
		{
			Source:    types.SourceCrossref,
			DOI:       "10.1/xyz",
			Title:     "Graph Neural Networks at Scale",
			Published: "2024-03-01",
			Venue:     "Journal of ML",
			Authors:   []string{"Ada Smith", "Bo Jones"},
		},
	}

	res := Merge(records, nil)

	require.Len(t, res.Records, 1)
	assert.Equal(t, 1, res.Collisions)

	m := res.Records[0]
	assert.Equal(t, "10.1/xyz", m.ID)
	// Crossref outranks arXiv in the default priority order, so its
	// publication date wins and the arXiv abstract fills the gap.
	assert.Equal(t, "2024-03-01", m.Published)
	assert.Equal(t, "Journal of ML", m.Venue)
	assert.Equal(t, "A preprint abstract.", m.Abstract)
	assert.Equal(t, "2401.12345", m.ArxivID)
	// The longest author list wins regardless of priority.
	assert.Equal(t, []string{"Ada Smith", "Bo Jones", "Cy Lee"}, m.Authors)
	assert.Equal(t, []types.Source{types.SourceCrossref, types.SourceArxiv}, m.Sources)
}

func TestMergeCustomPriority(t *testing.T) {
	records := []types.Record{
		{Source: types.SourceCrossref, DOI: "10.1/a", Title: "Crossref Title", Authors: []string{"A"}},
		{Source: types.SourceDOAJ, DOI: "10.1/a", Title: "DOAJ Title", Authors: []string{"A"}},
	}

	res := Merge(records, []types.Source{types.SourceDOAJ, types.SourceCrossref})

	require.Len(t, res.Records, 1)
	assert.Equal(t, "DOAJ Title", res.Records[0].Title)
}

func TestMergeTitleCollisionSplitsOnAuthors(t *testing.T) {
	records := []types.Record{
		{Source: types.SourceCrossref, Title: "A Survey", Authors: []string{"Ada Smith"}},
		{Source: types.SourceDOAJ, Title: "A Survey", Authors: []string{"Greta Chen"}},
	}

	res := Merge(records, nil)

	require.Len(t, res.Records, 2)
	assert.Equal(t, 1, res.TitleSplits)
	assert.Zero(t, res.Collisions)

	ids := []string{res.Records[0].ID, res.Records[1].ID}
	assert.Contains(t, ids, "title:a survey")
	assert.Contains(t, ids, "title:a survey|chen")
}

func TestMergeTitleCollisionSharedAuthorStaysMerged(t *testing.T) {
	records := []types.Record{
		{Source: types.SourceCrossref, Title: "A Survey", Authors: []string{"Ada Smith", "Bo Jones"}},
		{Source: types.SourceArxiv, Title: "A Survey", Authors: []string{"A. Smith"}},
	}

	res := Merge(records, nil)

	require.Len(t, res.Records, 1)
	assert.Zero(t, res.TitleSplits)
	assert.Equal(t, 1, res.Collisions)
}

func TestMergeTitleCollisionEmptyAuthorsJoinFirstGroup(t *testing.T) {
	records := []types.Record{
		{Source: types.SourceCrossref, Title: "A Survey", Authors: []string{"Ada Smith"}},
		{Source: types.SourceDOAJ, Title: "A Survey"},
	}

	res := Merge(records, nil)

	require.Len(t, res.Records, 1)
	assert.Zero(t, res.TitleSplits)
}

func TestMergeOrderingYearDescTitleAsc(t *testing.T) {
	records := []types.Record{
		{Source: types.SourceCrossref, DOI: "10.1/old", Title: "Old Work", Published: "2019-05-01"},
		{Source: types.SourceCrossref, DOI: "10.1/b", Title: "Beta", Published: "2024-02-01"},
		{Source: types.SourceCrossref, DOI: "10.1/a", Title: "Alpha", Published: "2024-11-01"},
	}

	res := Merge(records, nil)

	require.Len(t, res.Records, 3)
	assert.Equal(t, "Alpha", res.Records[0].Title)
	assert.Equal(t, "Beta", res.Records[1].Title)
	assert.Equal(t, "Old Work", res.Records[2].Title)
}

func TestMergeSkipsEmptyIdentity(t *testing.T) {
	res := Merge([]types.Record{{Source: types.SourceArxiv}}, nil)
	assert.Empty(t, res.Records)
}

func TestMergeUnknownSourceRanksLast(t *testing.T) {
	records := []types.Record{
		{Source: types.Source("mystery"), DOI: "10.1/a", Title: "Mystery Title"},
		{Source: types.SourceArxiv, DOI: "10.1/a", Title: "Arxiv Title"},
	}

	res := Merge(records, []types.Source{types.SourceArxiv})

	require.Len(t, res.Records, 1)
	assert.Equal(t, "Arxiv Title", res.Records[0].Title)
	assert.Equal(t, []types.Source{types.SourceArxiv, types.Source("mystery")}, res.Records[0].Sources)
}
