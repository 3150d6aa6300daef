// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the bibwatch pipeline:
// queries, raw and normalized records, merged records, run manifests, and
// configuration.
package types

import (
	"encoding/json"
	"strings"
	"unicode"
)

// Source identifies one external bibliographic data source.
type Source string

const (
	SourceArxiv    Source = "arxiv"
	SourceCrossref Source = "crossref"
	SourceDOAJ     Source = "doaj"
	SourceOpenAlex Source = "openalex"
)

// AllSources lists every registered source in default priority order:
// DOI-registration sources before aggregators before preprint servers.
var AllSources = []Source{SourceCrossref, SourceOpenAlex, SourceDOAJ, SourceArxiv}

// RawRecord is one source row exactly as the adapter parsed it, before any
// normalization. Identifier fields may carry URL prefixes or version
// suffixes; Published is the raw date string. Only the extractor consumes
// RawRecords.
type RawRecord struct {
	Source    Source
	DOI       string
	ArxivID   string
	Title     string
	Authors   []string
	Abstract  string
	Published string
	URL       string
	Venue     string
	License   string

	// Metadata is the original payload fragment, carried through to the
	// structured export unmodified.
	Metadata json.RawMessage
}

// RawPage is the parsed result of one adapter page fetch. Next is the
// cursor for the following page; empty means the source is exhausted.
type RawPage struct {
	Records []RawRecord
	Next    string
}

// Record is a normalized bibliographic record. Identifiers are canonical:
// DOI lower-cased without resolver prefix, arXiv ID lower-cased without
// version suffix. At least one of DOI, ArxivID, or Title is non-empty;
// the extractor drops anything else.
type Record struct {
	Source    Source   `json:"source" yaml:"source"`
	DOI       string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	ArxivID   string   `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`
	Title     string   `json:"title" yaml:"title"`
	Authors   []string `json:"authors" yaml:"authors"`
	Abstract  string   `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Published string   `json:"published,omitempty" yaml:"published,omitempty"`
	URL       string   `json:"url,omitempty" yaml:"url,omitempty"`
	Venue     string   `json:"venue,omitempty" yaml:"venue,omitempty"`
	License   string   `json:"license,omitempty" yaml:"license,omitempty"`

	RawMetadata json.RawMessage `json:"raw_metadata,omitempty" yaml:"-"`
}

// PrimaryID returns the canonical identity key used for deduplication and
// diffing: the DOI if present, else "arxiv:" plus the arXiv ID, else a
// normalized-title fallback key. Computing it twice yields the same key.
func (r Record) PrimaryID() string {
	if r.DOI != "" {
		return r.DOI
	}
	if r.ArxivID != "" {
		return "arxiv:" + r.ArxivID
	}
	if t := NormalizeTitle(r.Title); t != "" {
		return "title:" + t
	}
	return ""
}

// Year returns the publication year parsed from the leading four digits of
// Published, or 0 when absent.
func (r Record) Year() int {
	if len(r.Published) < 4 {
		return 0
	}
	year := 0
	for _, c := range r.Published[:4] {
		if c < '0' || c > '9' {
			return 0
		}
		year = year*10 + int(c-'0')
	}
	return year
}

// MergedRecord is the single reconciled record for one identity key within
// a run, together with the sources that contributed to it.
type MergedRecord struct {
	// ID is the record's identity key within the run. It is PrimaryID()
	// of the underlying record except for title-fallback collisions the
	// merger split apart, which get a disambiguating suffix.
	ID string `json:"primary_id" yaml:"primary_id"`

	Record  `yaml:",inline"`
	Sources []Source `json:"sources" yaml:"sources"`
}

// NormalizeTitle returns a lowercased, punctuation-stripped,
// whitespace-folded version of a title, used as the identity fallback key.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
