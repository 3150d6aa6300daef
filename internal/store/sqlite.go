// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/bibwatch/pkg/types"
)

// writeSQLite exports the merged record set as a standalone SQLite
// database. The export is rebuilt from scratch per run; an existing file
// from an interrupted earlier attempt is removed first.
func writeSQLite(path, runID string, records []types.MergedRecord) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale database: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			primary_id TEXT NOT NULL UNIQUE,
			doi TEXT,
			arxiv_id TEXT,
			title TEXT,
			authors TEXT,
			abstract TEXT,
			published TEXT,
			url TEXT,
			venue TEXT,
			license TEXT,
			sources TEXT,
			raw_metadata TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_doi ON records(doi)`,
		`CREATE INDEX IF NOT EXISTS idx_records_arxiv_id ON records(arxiv_id)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO records
		(run_id, primary_id, doi, arxiv_id, title, authors, abstract, published, url, venue, license, sources, raw_metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		sources := make([]string, len(r.Sources))
		for i, src := range r.Sources {
			sources[i] = string(src)
		}
		_, err := stmt.Exec(
			runID,
			r.ID,
			r.DOI,
			r.ArxivID,
			r.Title,
			strings.Join(r.Authors, "; "),
			r.Abstract,
			r.Published,
			r.URL,
			r.Venue,
			r.License,
			strings.Join(sources, ";"),
			string(r.RawMetadata),
		)
		if err != nil {
			return fmt.Errorf("inserting record %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
