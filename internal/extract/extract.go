// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract converts raw per-source records into normalized records
// with canonical identifiers. It is a pure transformation: no I/O, no
// dependency on other sources' results, and source-specific field quirks
// do not leak past it.
package extract

import (
	"strings"

	"github.com/pdiddy/bibwatch/pkg/types"
)

// Stats counts records dropped during extraction, for the run manifest.
type Stats struct {
	// Unidentifiable counts records per source that lost all of DOI,
	// arXiv ID, and title after normalization.
	Unidentifiable map[types.Source]int

	// YearFiltered counts records rejected by the query's year bounds.
	YearFiltered int
}

// Dropped returns the total unidentifiable count.
func (s Stats) Dropped() int {
	n := 0
	for _, c := range s.Unidentifiable {
		n += c
	}
	return n
}

// Records normalizes every raw record, dropping the unidentifiable and
// anything outside the query's year bounds. Input order is preserved so
// the merger sees sources in a stable sequence.
func Records(raws []types.RawRecord, q types.Query) ([]types.Record, Stats) {
	stats := Stats{Unidentifiable: make(map[types.Source]int)}
	records := make([]types.Record, 0, len(raws))

	for _, raw := range raws {
		rec, ok := One(raw)
		if !ok {
			stats.Unidentifiable[raw.Source]++
			continue
		}
		if !q.YearOK(rec.Year()) {
			stats.YearFiltered++
			continue
		}
		records = append(records, rec)
	}
	return records, stats
}

// One normalizes a single raw record. ok is false when the record is
// unidentifiable: no DOI, no arXiv ID, and no usable title.
func One(raw types.RawRecord) (types.Record, bool) {
	rec := types.Record{
		Source:      raw.Source,
		DOI:         NormalizeDOI(raw.DOI),
		ArxivID:     NormalizeArxivID(raw.ArxivID),
		Title:       collapseSpace(raw.Title),
		Abstract:    strings.TrimSpace(raw.Abstract),
		Published:   strings.TrimSpace(raw.Published),
		URL:         strings.TrimSpace(raw.URL),
		Venue:       strings.TrimSpace(raw.Venue),
		License:     strings.TrimSpace(raw.License),
		RawMetadata: raw.Metadata,
	}

	for _, a := range raw.Authors {
		if name := collapseSpace(a); name != "" {
			rec.Authors = append(rec.Authors, name)
		}
	}

	if rec.DOI == "" && rec.ArxivID == "" && rec.Title == "" {
		return types.Record{}, false
	}
	return rec, true
}

// collapseSpace trims and folds internal whitespace runs; arXiv titles in
// particular arrive with embedded newlines.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
