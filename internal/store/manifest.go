// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bibwatch/pkg/types"
)

// WriteManifest persists the run manifest as YAML. It is written last,
// after the exports, so a manifest on disk means the run's artifact map
// is final. Failed runs write a manifest too.
func (s *Store) WriteManifest(m types.Manifest) (string, error) {
	dir := s.RunDir(m.RunID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating run directory: %w", err)
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshaling manifest: %w", err)
	}
	path := filepath.Join(dir, manifestFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing manifest: %w", err)
	}
	return path, nil
}

// ReadManifest loads one run's manifest.
func (s *Store) ReadManifest(runID string) (types.Manifest, error) {
	data, err := os.ReadFile(filepath.Join(s.RunDir(runID), manifestFile))
	if err != nil {
		return types.Manifest{}, fmt.Errorf("reading manifest: %w", err)
	}
	var m types.Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return types.Manifest{}, fmt.Errorf("parsing manifest: %w", err)
	}
	return m, nil
}

// ReadRecords loads one run's merged record set from its JSON export.
func (s *Store) ReadRecords(runID string) ([]types.MergedRecord, error) {
	data, err := os.ReadFile(filepath.Join(s.RunDir(runID), jsonFile))
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	var records []types.MergedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing records: %w", err)
	}
	return records, nil
}
