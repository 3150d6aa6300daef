// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists run artifacts under a run-scoped directory and
// reads prior runs back for diffing. Each run writes the merged record
// set in the configured export formats plus the diff export and the run
// manifest.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/bibwatch/internal/diff"
	"github.com/pdiddy/bibwatch/pkg/types"
)

// Export format names accepted in OutputConfig.Formats.
const (
	FormatCSV    = "csv"
	FormatJSON   = "json"
	FormatSQLite = "sqlite"
	FormatBibTeX = "bibtex"
)

// AllFormats is the default export set.
var AllFormats = []string{FormatCSV, FormatJSON, FormatSQLite, FormatBibTeX}

// Artifact file names within a run directory.
const (
	csvFile      = "results.csv"
	jsonFile     = "results.json"
	sqliteFile   = "results.db"
	bibtexFile   = "results.bib"
	diffFile     = "diff.csv"
	manifestFile = "run.yaml"
)

// PersistenceError reports that every requested export format failed. A
// single failed format degrades the run; losing all of them fails it.
type PersistenceError struct {
	Errs []error
}

func (e *PersistenceError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return "all export formats failed: " + strings.Join(msgs, "; ")
}

// Store manages run directories under one output root.
type Store struct {
	root string
}

// New builds a store rooted at dir.
func New(dir string) *Store {
	return &Store{root: dir}
}

// RunDir returns the directory for one run's artifacts.
func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.root, runID)
}

// WriteRecords exports the merged record set in each requested format.
// It returns the artifact paths that were written, keyed by format, and
// the per-format errors. The error is non-nil only when every format
// failed; a partial write is the caller's degradation signal via errs.
func (s *Store) WriteRecords(runID string, records []types.MergedRecord, formats []string) (artifacts map[string]string, errs []error, err error) {
	if len(formats) == 0 {
		formats = AllFormats
	}
	dir := s.RunDir(runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating run directory: %w", err)
	}

	artifacts = make(map[string]string, len(formats))
	for _, format := range formats {
		var path string
		var werr error
		switch format {
		case FormatCSV:
			path = filepath.Join(dir, csvFile)
			werr = writeCSV(path, records)
		case FormatJSON:
			path = filepath.Join(dir, jsonFile)
			werr = writeJSON(path, records)
		case FormatSQLite:
			path = filepath.Join(dir, sqliteFile)
			werr = writeSQLite(path, runID, records)
		case FormatBibTeX:
			path = filepath.Join(dir, bibtexFile)
			werr = writeBibTeX(path, records)
		default:
			werr = fmt.Errorf("unknown export format %q", format)
		}
		if werr != nil {
			errs = append(errs, fmt.Errorf("%s: %w", format, werr))
			continue
		}
		artifacts[format] = path
	}

	if len(artifacts) == 0 && len(errs) > 0 {
		return nil, errs, &PersistenceError{Errs: errs}
	}
	return artifacts, errs, nil
}

// WriteDiff exports the run-to-run diff as CSV. Baseline runs write the
// header only, so the artifact exists for every run.
func (s *Store) WriteDiff(runID string, d diff.Result) (string, error) {
	dir := s.RunDir(runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating run directory: %w", err)
	}
	path := filepath.Join(dir, diffFile)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating diff export: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"kind", "primary_id", "title", "fields"}); err != nil {
		return "", fmt.Errorf("writing diff header: %w", err)
	}
	for _, e := range d.Entries {
		row := []string{string(e.Kind), e.Key, e.Title, strings.Join(e.Fields, ";")}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("writing diff row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing diff export: %w", err)
	}
	return path, nil
}

// csvHeader is the fixed column set of the CSV export.
var csvHeader = []string{"primary_id", "year", "title", "authors", "venue", "sources", "doi", "arxiv_id", "url"}

func writeCSV(path string, records []types.MergedRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		year := ""
		if y := r.Year(); y > 0 {
			year = fmt.Sprintf("%d", y)
		}
		sources := make([]string, len(r.Sources))
		for i, src := range r.Sources {
			sources[i] = string(src)
		}
		row := []string{
			r.ID,
			year,
			r.Title,
			strings.Join(r.Authors, "; "),
			r.Venue,
			strings.Join(sources, ";"),
			r.DOI,
			r.ArxivID,
			r.URL,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeJSON(path string, records []types.MergedRecord) error {
	if records == nil {
		records = []types.MergedRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func writeBibTeX(path string, records []types.MergedRecord) error {
	var b strings.Builder
	for _, r := range records {
		b.WriteString(bibtexEntry(r))
		b.WriteString("\n")
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// bibtexEntry renders one record. Records with a venue become @article,
// the rest @misc. The citation key comes from the DOI or arXiv ID with
// path separators flattened.
func bibtexEntry(r types.MergedRecord) string {
	kind := "misc"
	if r.Venue != "" {
		kind = "article"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", kind, bibtexKey(r))
	fmt.Fprintf(&b, "  title = {%s},\n", bibtexEscape(r.Title))
	if len(r.Authors) > 0 {
		fmt.Fprintf(&b, "  author = {%s},\n", bibtexEscape(strings.Join(r.Authors, " and ")))
	}
	if y := r.Year(); y > 0 {
		fmt.Fprintf(&b, "  year = {%d},\n", y)
	}
	if r.Venue != "" {
		fmt.Fprintf(&b, "  journal = {%s},\n", bibtexEscape(r.Venue))
	}
	if r.DOI != "" {
		fmt.Fprintf(&b, "  doi = {%s},\n", r.DOI)
	}
	if r.ArxivID != "" {
		fmt.Fprintf(&b, "  eprint = {%s},\n", r.ArxivID)
	}
	if r.URL != "" {
		fmt.Fprintf(&b, "  url = {%s},\n", r.URL)
	}
	b.WriteString("}\n")
	return b.String()
}

func bibtexKey(r types.MergedRecord) string {
	key := r.DOI
	if key == "" {
		key = r.ArxivID
	}
	if key == "" {
		key = types.NormalizeTitle(r.Title)
		if len(key) > 40 {
			key = key[:40]
		}
		key = strings.ReplaceAll(key, " ", "_")
	}
	key = strings.ReplaceAll(key, "/", "_")
	return strings.Map(func(c rune) rune {
		switch c {
		case '{', '}', ',', ' ', '%', '#':
			return '_'
		}
		return c
	}, key)
}

func bibtexEscape(s string) string {
	s = strings.ReplaceAll(s, "{", "\\{")
	s = strings.ReplaceAll(s, "}", "\\}")
	return strings.ReplaceAll(s, "%", "\\%")
}
