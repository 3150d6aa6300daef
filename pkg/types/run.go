// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// State is one coordinator pipeline state. Transitions are strictly
// sequential; Failed is reachable from any non-terminal state.
type State string

const (
	StateCreated     State = "created"
	StateDiscovering State = "discovering"
	StateFetching    State = "fetching"
	StateExtracting  State = "extracting"
	StateMerging     State = "merging"
	StateDiffing     State = "diffing"
	StatePersisting  State = "persisting"
	StateCompleted   State = "completed"
	StateFailed      State = "failed"
)

// Terminal reports whether the state ends the run.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// SourceStatus records the per-source outcome of the fetch stage.
type SourceStatus struct {
	Source   Source `json:"source" yaml:"source"`
	Pages    int    `json:"pages" yaml:"pages"`
	Records  int    `json:"records" yaml:"records"`
	Attempts int    `json:"attempts" yaml:"attempts"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the source produced no usable data.
func (s SourceStatus) Failed() bool {
	return s.Error != ""
}

// Counts holds record counts in and out of each pipeline stage, for
// explainability of the result set.
type Counts struct {
	Fetched         int `json:"fetched" yaml:"fetched"`
	Extracted       int `json:"extracted" yaml:"extracted"`
	Unidentifiable  int `json:"unidentifiable" yaml:"unidentifiable"`
	YearFiltered    int `json:"year_filtered" yaml:"year_filtered"`
	Merged          int `json:"merged" yaml:"merged"`
	DedupCollisions int `json:"dedup_collisions" yaml:"dedup_collisions"`
	DiffAdded       int `json:"diff_added" yaml:"diff_added"`
	DiffRemoved     int `json:"diff_removed" yaml:"diff_removed"`
	DiffChanged     int `json:"diff_changed" yaml:"diff_changed"`
}

// TraceEvent is one entry in the run's decision trace.
type TraceEvent struct {
	Time    time.Time      `json:"time" yaml:"time"`
	Stage   State          `json:"stage" yaml:"stage"`
	Event   string         `json:"event" yaml:"event"`
	Details map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
}

// Manifest is the persisted description of one run: what was asked, what
// happened per source and per stage, and which artifacts were written. It
// is the record the prior-run lookup and the runs listing read back.
type Manifest struct {
	RunID       string    `json:"run_id" yaml:"run_id"`
	Version     string    `json:"version" yaml:"version"`
	Query       Query     `json:"query" yaml:"query"`
	Fingerprint string    `json:"fingerprint" yaml:"fingerprint"`
	StartedAt   time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt  time.Time `json:"finished_at" yaml:"finished_at"`
	State       State     `json:"state" yaml:"state"`

	// Baseline is true when no prior run existed for this query, so the
	// diff is empty by construction.
	Baseline bool `json:"baseline" yaml:"baseline"`

	// PreviousRunID names the run this one was diffed against, if any.
	PreviousRunID string `json:"previous_run_id,omitempty" yaml:"previous_run_id,omitempty"`

	Sources  []SourceStatus `json:"sources" yaml:"sources"`
	Degraded []Source       `json:"degraded,omitempty" yaml:"degraded,omitempty"`
	Counts   Counts         `json:"counts" yaml:"counts"`

	// Artifacts maps format name to the path written for it. Formats
	// that failed to write are absent.
	Artifacts map[string]string `json:"artifacts" yaml:"artifacts"`

	// Failure explains a failed run; empty on success.
	Failure string `json:"failure,omitempty" yaml:"failure,omitempty"`

	Trace []TraceEvent `json:"trace,omitempty" yaml:"trace,omitempty"`
}

// Run owns the complete in-memory result of one pipeline execution. It is
// immutable once persisted; later runs supersede it on disk, never mutate it.
type Run struct {
	ID      string
	Query   Query
	Records []MergedRecord
	Manifest
}

// RunIDFormat is the timestamp layout that derives run identifiers and
// run directory names.
const RunIDFormat = "20060102_150405"

// NewRunID derives a run identifier from a timestamp.
func NewRunID(t time.Time) string {
	return "run_" + t.UTC().Format(RunIDFormat)
}
