// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pdiddy/bibwatch/pkg/types"
)

// ListRuns returns the manifests of every run under the output root,
// newest first. Directories without a readable manifest are skipped;
// an interrupted run that never wrote one is invisible rather than fatal.
func (s *Store) ListRuns() ([]types.Manifest, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading output root: %w", err)
	}

	var manifests []types.Manifest
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "run_") {
			continue
		}
		m, err := s.ReadManifest(e.Name())
		if err != nil {
			continue
		}
		manifests = append(manifests, m)
	}

	// Run IDs embed a UTC timestamp, so lexical order is time order.
	sort.Slice(manifests, func(i, j int) bool {
		return manifests[i].RunID > manifests[j].RunID
	})
	return manifests, nil
}

// PriorRun finds the most recent completed run with the given query
// fingerprint, excluding the current run. ok is false when none exists,
// which makes the current run a baseline.
func (s *Store) PriorRun(fingerprint, currentRunID string) (m types.Manifest, records []types.MergedRecord, ok bool, err error) {
	manifests, err := s.ListRuns()
	if err != nil {
		return types.Manifest{}, nil, false, err
	}

	for _, cand := range manifests {
		if cand.RunID == currentRunID || cand.Fingerprint != fingerprint {
			continue
		}
		if cand.State != types.StateCompleted {
			continue
		}
		records, err := s.ReadRecords(cand.RunID)
		if err != nil {
			// A completed run with an unreadable export cannot anchor
			// the diff; fall through to an older candidate.
			continue
		}
		return cand, records, true, nil
	}
	return types.Manifest{}, nil, false, nil
}
