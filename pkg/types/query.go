// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Query holds the search parameters for one run. It is immutable once the
// coordinator starts.
type Query struct {
	// Text is the free-text search string.
	Text string `json:"text" yaml:"text"`

	// FromYear and ToYear bound the publication year, inclusive. Zero
	// means unbounded on that side.
	FromYear int `json:"from_year,omitempty" yaml:"from_year,omitempty"`
	ToYear   int `json:"to_year,omitempty" yaml:"to_year,omitempty"`

	// PerSourceLimit caps the records fetched from each source. Zero
	// means the configured default.
	PerSourceLimit int `json:"per_source_limit,omitempty" yaml:"per_source_limit,omitempty"`

	// Include restricts the run to the named sources; empty means all
	// enabled sources. Exclude removes sources after Include is applied.
	Include []Source `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude []Source `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// Validate checks the query for structural problems.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("query text is empty")
	}
	if q.FromYear != 0 && q.ToYear != 0 && q.FromYear > q.ToYear {
		return fmt.Errorf("from_year %d is after to_year %d", q.FromYear, q.ToYear)
	}
	return nil
}

// YearOK reports whether a publication year passes the query's bounds.
// Records without a parseable year (year 0) are kept only when no bounds
// are set.
func (q Query) YearOK(year int) bool {
	if q.FromYear == 0 && q.ToYear == 0 {
		return true
	}
	if year == 0 {
		return false
	}
	if q.FromYear != 0 && year < q.FromYear {
		return false
	}
	if q.ToYear != 0 && year > q.ToYear {
		return false
	}
	return true
}

// Fingerprint returns a stable hex key identifying the query for prior-run
// lookup. Two runs diff against each other only when their fingerprints
// match. Source selection and caps do not participate: a narrower re-run
// of the same question still compares against its predecessor.
func (q Query) Fingerprint() string {
	text := strings.Join(strings.Fields(strings.ToLower(q.Text)), " ")
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%d|%d", text, q.FromYear, q.ToYear))
	return fmt.Sprintf("%x", sum[:12])
}
