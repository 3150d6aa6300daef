// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge reconciles normalized records across sources into exactly
// one merged record per identity key.
package merge

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/bibwatch/pkg/types"
)

// Result holds the merged set and dedup statistics for the manifest.
type Result struct {
	Records []types.MergedRecord

	// Collisions counts records merged away into an existing identity
	// key.
	Collisions int

	// TitleSplits counts title-fallback buckets split apart because the
	// author sets clearly differed.
	TitleSplits int
}

// Merge buckets records by identity key and merges each bucket in source
// priority order: the first non-empty value per field wins, except author
// lists, where the longest non-empty list wins. Output ordering is
// deterministic: publication year descending, then title ascending.
func Merge(records []types.Record, priority []types.Source) Result {
	if len(priority) == 0 {
		priority = types.AllSources
	}
	rank := make(map[types.Source]int, len(priority))
	for i, s := range priority {
		rank[s] = i
	}

	// Bucket by identity key, preserving arrival order within buckets.
	keys := []string{}
	buckets := make(map[string][]types.Record)
	for _, r := range records {
		key := r.PrimaryID()
		if key == "" {
			continue
		}
		if _, ok := buckets[key]; !ok {
			keys = append(keys, key)
		}
		buckets[key] = append(buckets[key], r)
	}

	var result Result
	for _, key := range keys {
		groups := [][]types.Record{buckets[key]}
		if strings.HasPrefix(key, "title:") {
			groups = splitByAuthors(buckets[key])
			if len(groups) > 1 {
				result.TitleSplits += len(groups) - 1
			}
		}
		for i, group := range groups {
			merged := mergeGroup(group, rank)
			merged.ID = key
			// Split-off groups need distinct keys; anchor them on
			// the first author's surname when one exists.
			if i > 0 {
				merged.ID = key + "|" + splitSuffix(group, i)
			}
			result.Records = append(result.Records, merged)
			result.Collisions += len(group) - 1
		}
	}

	sort.SliceStable(result.Records, func(i, j int) bool {
		yi, yj := result.Records[i].Year(), result.Records[j].Year()
		if yi != yj {
			return yi > yj
		}
		return strings.ToLower(result.Records[i].Title) < strings.ToLower(result.Records[j].Title)
	})
	return result
}

// mergeGroup folds one identity bucket into a single merged record,
// visiting contributors in priority order.
func mergeGroup(group []types.Record, rank map[types.Source]int) types.MergedRecord {
	ordered := make([]types.Record, len(group))
	copy(ordered, group)
	sort.SliceStable(ordered, func(i, j int) bool {
		return sourceRank(ordered[i].Source, rank) < sourceRank(ordered[j].Source, rank)
	})

	merged := types.MergedRecord{Record: ordered[0]}
	for _, r := range ordered {
		merged.Sources = appendSource(merged.Sources, r.Source)
	}

	for _, r := range ordered[1:] {
		fillEmpty(&merged.Record, r)
		// Preprint and published metadata often differ in author
		// completeness; keep the longest list.
		if len(r.Authors) > len(merged.Authors) {
			merged.Authors = r.Authors
		}
	}
	return merged
}

// fillEmpty copies src's fields into dst where dst is empty.
func fillEmpty(dst *types.Record, src types.Record) {
	if dst.DOI == "" {
		dst.DOI = src.DOI
	}
	if dst.ArxivID == "" {
		dst.ArxivID = src.ArxivID
	}
	if dst.Title == "" {
		dst.Title = src.Title
	}
	if dst.Abstract == "" {
		dst.Abstract = src.Abstract
	}
	if dst.Published == "" {
		dst.Published = src.Published
	}
	if dst.URL == "" {
		dst.URL = src.URL
	}
	if dst.Venue == "" {
		dst.Venue = src.Venue
	}
	if dst.License == "" {
		dst.License = src.License
	}
	if len(dst.RawMetadata) == 0 {
		dst.RawMetadata = src.RawMetadata
	}
}

// splitByAuthors partitions a title-fallback bucket so that records whose
// author sets clearly differ stay distinct. Generic titles collide without
// a DOI or arXiv anchor; an empty author list on either side is not clear
// evidence, so such records join the first group.
func splitByAuthors(group []types.Record) [][]types.Record {
	var groups [][]types.Record
	var surnameSets []map[string]bool

next:
	for _, r := range group {
		names := surnames(r.Authors)
		for i, set := range surnameSets {
			if compatible(set, names) {
				groups[i] = append(groups[i], r)
				for n := range names {
					set[n] = true
				}
				continue next
			}
		}
		groups = append(groups, []types.Record{r})
		surnameSets = append(surnameSets, names)
	}
	return groups
}

// compatible reports whether two surname sets could describe the same
// work: either is empty, or they share at least one surname.
func compatible(a, b map[string]bool) bool {
	if len(a) == 0 || len(b) == 0 {
		return true
	}
	for n := range b {
		if a[n] {
			return true
		}
	}
	return false
}

// surnames lowers each author's last name token into a set.
func surnames(authors []string) map[string]bool {
	set := make(map[string]bool, len(authors))
	for _, a := range authors {
		fields := strings.Fields(strings.ToLower(a))
		if len(fields) > 0 {
			set[fields[len(fields)-1]] = true
		}
	}
	return set
}

// splitSuffix disambiguates the identity key of a split-off title group
// with the first available author surname, falling back to the group
// index.
func splitSuffix(group []types.Record, i int) string {
	for _, r := range group {
		for _, a := range r.Authors {
			fields := strings.Fields(strings.ToLower(a))
			if len(fields) > 0 {
				return fields[len(fields)-1]
			}
		}
	}
	return strconv.Itoa(i)
}

func sourceRank(s types.Source, rank map[types.Source]int) int {
	if r, ok := rank[s]; ok {
		return r
	}
	return len(rank)
}

func appendSource(sources []types.Source, s types.Source) []types.Source {
	for _, have := range sources {
		if have == s {
			return sources
		}
	}
	return append(sources, s)
}
