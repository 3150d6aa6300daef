// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrimaryIDPrecedence(t *testing.T) {
	r := Record{DOI: "10.1/xyz", ArxivID: "2401.12345", Title: "A Title"}
	assert.Equal(t, "10.1/xyz", r.PrimaryID())

	r.DOI = ""
	assert.Equal(t, "arxiv:2401.12345", r.PrimaryID())

	r.ArxivID = ""
	assert.Equal(t, "title:a title", r.PrimaryID())

	r.Title = ""
	assert.Equal(t, "", r.PrimaryID())
}

func TestPrimaryIDStable(t *testing.T) {
	r := Record{Title: "Attention Is All You Need"}
	assert.Equal(t, r.PrimaryID(), r.PrimaryID())
}

func TestNormalizeTitle(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Attention Is All You Need", "attention is all you need"},
		{"  Graph   Neural\nNetworks ", "graph neural networks"},
		{"BERT: Pre-training of Deep Bidirectional Transformers", "bert pretraining of deep bidirectional transformers"},
		{"!!!", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeTitle(c.in), "input %q", c.in)
	}
}

func TestRecordYear(t *testing.T) {
	assert.Equal(t, 2024, Record{Published: "2024-03-01"}.Year())
	assert.Equal(t, 2024, Record{Published: "2024"}.Year())
	assert.Equal(t, 0, Record{Published: "n.d."}.Year())
	assert.Equal(t, 0, Record{}.Year())
}
