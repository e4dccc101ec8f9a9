// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/organa/search-engine/pkg/types"
)

// report is the YAML run record written after each ingest.
type report struct {
	Directory  string              `yaml:"directory"`
	StartedAt  time.Time           `yaml:"started_at"`
	FinishedAt time.Time           `yaml:"finished_at"`
	Duration   string              `yaml:"duration"`
	Summary    types.IngestSummary `yaml:"summary"`
}

// writeReport persists the run summary under reportDir and returns the
// report path.
func writeReport(reportDir, sourceDir string, sum types.IngestSummary, start time.Time) (string, error) {
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	now := time.Now()
	rep := report{
		Directory:  sourceDir,
		StartedAt:  start.UTC(),
		FinishedAt: now.UTC(),
		Duration:   now.Sub(start).Round(time.Millisecond).String(),
		Summary:    sum,
	}

	data, err := yaml.Marshal(rep)
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}

	path := filepath.Join(reportDir, "ingest-"+start.Format("20060102-150405")+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
