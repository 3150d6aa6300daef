// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package diff classifies identity keys between the current run and its
// predecessor as added, removed, or changed.
package diff

import (
	"sort"
	"strings"

	"github.com/pdiddy/bibwatch/pkg/types"
)

// Kind is a diff classification.
type Kind string

const (
	Added   Kind = "added"
	Removed Kind = "removed"
	Changed Kind = "changed"
)

// Entry classifies one identity key relative to the prior run.
type Entry struct {
	Key    string   `json:"primary_id" yaml:"primary_id"`
	Kind   Kind     `json:"kind" yaml:"kind"`
	Title  string   `json:"title,omitempty" yaml:"title,omitempty"`
	Fields []string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Result holds the classified entries and their counts.
type Result struct {
	Entries []Entry
	Added   int
	Removed int
	Changed int
}

// DefaultTrackedFields are compared for the changed classification when
// the configuration does not name its own set.
var DefaultTrackedFields = []string{"title", "venue", "authors"}

// Compute classifies every identity key present in either run. A nil
// previous set means a baseline run: the result is empty rather than
// all-added, since there is nothing to compare against. Entries are
// sorted by key for stable exports.
func Compute(current, previous []types.MergedRecord, tracked []string) Result {
	var res Result
	if previous == nil {
		return res
	}
	if len(tracked) == 0 {
		tracked = DefaultTrackedFields
	}

	curr := byKey(current)
	prev := byKey(previous)

	for key, rec := range curr {
		old, ok := prev[key]
		if !ok {
			res.Entries = append(res.Entries, Entry{Key: key, Kind: Added, Title: rec.Title})
			res.Added++
			continue
		}
		if fields := changedFields(old, rec, tracked); len(fields) > 0 {
			res.Entries = append(res.Entries, Entry{Key: key, Kind: Changed, Title: rec.Title, Fields: fields})
			res.Changed++
		}
	}

	for key, rec := range prev {
		if _, ok := curr[key]; !ok {
			res.Entries = append(res.Entries, Entry{Key: key, Kind: Removed, Title: rec.Title})
			res.Removed++
		}
	}

	sort.Slice(res.Entries, func(i, j int) bool {
		if res.Entries[i].Key != res.Entries[j].Key {
			return res.Entries[i].Key < res.Entries[j].Key
		}
		return res.Entries[i].Kind < res.Entries[j].Kind
	})
	return res
}

func byKey(records []types.MergedRecord) map[string]types.MergedRecord {
	m := make(map[string]types.MergedRecord, len(records))
	for _, r := range records {
		key := r.ID
		if key == "" {
			key = r.PrimaryID()
		}
		if key != "" {
			m[key] = r
		}
	}
	return m
}

// changedFields compares only the tracked fields; equality never requires
// full-record identity.
func changedFields(old, cur types.MergedRecord, tracked []string) []string {
	var fields []string
	for _, f := range tracked {
		if !fieldEqual(old.Record, cur.Record, f) {
			fields = append(fields, f)
		}
	}
	return fields
}

func fieldEqual(a, b types.Record, field string) bool {
	switch field {
	case "title":
		return a.Title == b.Title
	case "venue":
		return a.Venue == b.Venue
	case "authors":
		return strings.Join(a.Authors, ";") == strings.Join(b.Authors, ";")
	case "published":
		return a.Published == b.Published
	case "abstract":
		return a.Abstract == b.Abstract
	case "url":
		return a.URL == b.URL
	case "license":
		return a.License == b.License
	default:
		// Unknown tracked field names compare equal rather than
		// flagging every record as changed.
		return true
	}
}
