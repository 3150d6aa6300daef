// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline coordinates one run end to end: source selection,
// fetch, extraction, merge, diff against the prior run, and persistence.
// The coordinator owns the run state machine and the decision trace.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/bibwatch/internal/diff"
	"github.com/pdiddy/bibwatch/internal/extract"
	"github.com/pdiddy/bibwatch/internal/fetch"
	"github.com/pdiddy/bibwatch/internal/merge"
	"github.com/pdiddy/bibwatch/internal/source"
	"github.com/pdiddy/bibwatch/internal/store"
	"github.com/pdiddy/bibwatch/pkg/types"
)

// AllSourcesFailedError aborts a run in which no source produced any
// usable data. Partial failure degrades a run; total failure fails it.
type AllSourcesFailedError struct {
	Errs []error
}

func (e *AllSourcesFailedError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return "all sources failed: " + strings.Join(msgs, "; ")
}

// Coordinator drives runs. It is safe to build once and reuse; each Run
// call is independent.
type Coordinator struct {
	cfg    types.Config
	client *http.Client
	store  *store.Store
	out    io.Writer

	// now and registry are replaceable in tests, for deterministic run
	// IDs and httptest-backed adapters.
	now      func() time.Time
	registry func(types.Config) map[types.Source]source.Adapter
}

// New builds a coordinator. Progress output goes to out; pass io.Discard
// to silence it.
func New(cfg types.Config, out io.Writer) *Coordinator {
	cfg = cfg.WithDefaults()
	return &Coordinator{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.HTTP.Timeout},
		store:    store.New(cfg.Output.Root),
		out:      out,
		now:      time.Now,
		registry: source.Registry,
	}
}

// Store exposes the coordinator's run store, for run listings.
func (c *Coordinator) Store() *store.Store { return c.store }

// Run executes the full pipeline for one query. The returned Run is
// non-nil whenever a run directory was created, including failed runs, so
// the caller can always report the run ID. Cancellation mid-fetch is
// handled like partial source failure: whatever arrived is still
// extracted, merged, and persisted.
func (c *Coordinator) Run(ctx context.Context, q types.Query) (*types.Run, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}
	if q.PerSourceLimit <= 0 {
		q.PerSourceLimit = c.cfg.Sources.PerSourceLimit
	}

	started := c.now()
	run := &types.Run{
		ID:    types.NewRunID(started),
		Query: q,
		Manifest: types.Manifest{
			RunID:       types.NewRunID(started),
			Version:     types.Version,
			Query:       q,
			Fingerprint: q.Fingerprint(),
			StartedAt:   started.UTC(),
			State:       types.StateCreated,
		},
	}
	fmt.Fprintf(c.out, "run %s: %q\n", run.ID, q.Text)

	// Source selection.
	c.enter(run, types.StateDiscovering)
	adapters := source.Select(c.registry(c.cfg), q, c.cfg)
	if len(adapters) == 0 {
		return c.fail(run, fmt.Errorf("no sources selected"))
	}
	names := make([]string, len(adapters))
	for i, a := range adapters {
		names[i] = string(a.Name())
	}
	c.trace(run, "sources_selected", map[string]any{"sources": strings.Join(names, ",")})

	// Fetch.
	c.enter(run, types.StateFetching)
	executor := fetch.New(c.client, c.cfg.Fetch, c.cfg.HTTP.UserAgent())
	results := executor.Fetch(ctx, q, adapters, q.PerSourceLimit, c.out)

	var raws []types.RawRecord
	var fetchErrs []error
	usable := 0
	for _, a := range adapters {
		res := results[a.Name()]
		status := types.SourceStatus{
			Source:   res.Source,
			Pages:    res.Pages,
			Records:  len(res.Records),
			Attempts: res.Attempts,
		}
		if res.Err != nil {
			status.Error = res.Err.Error()
			fetchErrs = append(fetchErrs, res.Err)
		}
		if status.Failed() {
			run.Degraded = append(run.Degraded, res.Source)
		}
		if !status.Failed() || len(res.Records) > 0 {
			usable++
		}
		run.Sources = append(run.Sources, status)
		raws = append(raws, res.Records...)
	}
	run.Counts.Fetched = len(raws)
	c.trace(run, "fetched", map[string]any{"records": len(raws), "degraded": len(run.Degraded)})

	if usable == 0 {
		return c.fail(run, &AllSourcesFailedError{Errs: fetchErrs})
	}

	// Extraction and normalization.
	c.enter(run, types.StateExtracting)
	records, stats := extract.Records(raws, q)
	run.Counts.Extracted = len(records)
	run.Counts.Unidentifiable = stats.Dropped()
	run.Counts.YearFiltered = stats.YearFiltered
	c.trace(run, "extracted", map[string]any{
		"records":        len(records),
		"unidentifiable": stats.Dropped(),
		"year_filtered":  stats.YearFiltered,
	})

	// Merge.
	c.enter(run, types.StateMerging)
	merged := merge.Merge(records, c.cfg.Sources.Priority)
	run.Records = merged.Records
	run.Counts.Merged = len(merged.Records)
	run.Counts.DedupCollisions = merged.Collisions
	c.trace(run, "merged", map[string]any{
		"records":      len(merged.Records),
		"collisions":   merged.Collisions,
		"title_splits": merged.TitleSplits,
	})

	// Diff against the prior run for the same query.
	c.enter(run, types.StateDiffing)
	var d diff.Result
	prior, priorRecords, found, err := c.store.PriorRun(run.Fingerprint, run.ID)
	if err != nil {
		return c.fail(run, fmt.Errorf("looking up prior run: %w", err))
	}
	if found {
		run.PreviousRunID = prior.RunID
		d = diff.Compute(run.Records, priorRecords, c.cfg.Diff.TrackedFields)
		run.Counts.DiffAdded = d.Added
		run.Counts.DiffRemoved = d.Removed
		run.Counts.DiffChanged = d.Changed
		c.trace(run, "diffed", map[string]any{
			"previous": prior.RunID,
			"added":    d.Added,
			"removed":  d.Removed,
			"changed":  d.Changed,
		})
	} else {
		run.Baseline = true
		c.trace(run, "baseline", nil)
	}

	// Persistence.
	c.enter(run, types.StatePersisting)
	artifacts, writeErrs, err := c.store.WriteRecords(run.ID, run.Records, c.cfg.Output.Formats)
	if err != nil {
		return c.fail(run, err)
	}
	for _, werr := range writeErrs {
		fmt.Fprintf(c.out, "warning: export failed: %v\n", werr)
		c.trace(run, "export_failed", map[string]any{"error": werr.Error()})
	}
	run.Artifacts = artifacts
	if path, err := c.store.WriteDiff(run.ID, d); err != nil {
		fmt.Fprintf(c.out, "warning: diff export failed: %v\n", err)
	} else {
		run.Artifacts["diff"] = path
	}

	run.State = types.StateCompleted
	run.FinishedAt = c.now().UTC()
	c.trace(run, "completed", nil)
	if _, err := c.store.WriteManifest(run.Manifest); err != nil {
		return run, fmt.Errorf("writing manifest: %w", err)
	}

	fmt.Fprintf(c.out, "run %s completed: %d records in %s\n",
		run.ID, len(run.Records), c.store.RunDir(run.ID))
	return run, nil
}

// enter advances the state machine and records the transition. Terminal
// states are never left.
func (c *Coordinator) enter(run *types.Run, s types.State) {
	if run.State.Terminal() {
		return
	}
	run.State = s
	c.trace(run, "enter", nil)
}

// trace appends one decision-trace event at the current stage.
func (c *Coordinator) trace(run *types.Run, event string, details map[string]any) {
	run.Trace = append(run.Trace, types.TraceEvent{
		Time:    c.now().UTC(),
		Stage:   run.State,
		Event:   event,
		Details: details,
	})
}

// fail ends the run in the Failed state. The manifest is still persisted
// so failed runs are inspectable; the manifest write itself is best
// effort at this point.
func (c *Coordinator) fail(run *types.Run, cause error) (*types.Run, error) {
	run.State = types.StateFailed
	run.Failure = cause.Error()
	run.FinishedAt = c.now().UTC()
	c.trace(run, "failed", map[string]any{"error": cause.Error()})
	if _, err := c.store.WriteManifest(run.Manifest); err != nil {
		fmt.Fprintf(c.out, "warning: writing failure manifest: %v\n", err)
	}
	fmt.Fprintf(c.out, "run %s failed: %v\n", run.ID, cause)
	return run, cause
}
