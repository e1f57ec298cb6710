// Package scanconfig loads the YAML run description consumed by the
// scan-hist tool: which histograms to build, the scan-parameter sweep of the
// acquisition run, and where hit data comes from and results go.
package scanconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RunConfig describes one acquisition run to histogram.
type RunConfig struct {
	// ScanID names the run, e.g. "threshold_scan_2026_08_27".
	ScanID string `yaml:"scanId"`

	Histograms struct {
		Occupancy bool `yaml:"occupancy"`
		Tot       bool `yaml:"tot"`
		RelBCID   bool `yaml:"relBcid"`
	} `yaml:"histograms"`

	// ScanParameters holds one value per readout segment, in acquisition
	// order. Empty means the run had no swept parameter.
	ScanParameters []uint32 `yaml:"scanParameters"`

	// MetaEventIndex holds the first event number at which each segment
	// stops applying; must match ScanParameters in length.
	MetaEventIndex []uint64 `yaml:"metaEventIndex"`

	// HitsCSV is the decoded hit record file to ingest.
	HitsCSV string `yaml:"hitsCsv"`

	// OutputCSV receives the per-pixel threshold/noise table; empty skips
	// the S-curve pass.
	OutputCSV string `yaml:"outputCsv"`

	// BatchSize is the number of records ingested per AddHits call.
	// Defaults to 4096.
	BatchSize int `yaml:"batchSize"`
}

// Default returns a RunConfig with operational defaults: occupancy and ToT
// enabled, no sweep, 4096-record batches.
func Default() *RunConfig {
	cfg := &RunConfig{ScanID: "base_scan", BatchSize: 4096}
	cfg.Histograms.Occupancy = true
	cfg.Histograms.Tot = true
	return cfg
}

// Load reads and validates a RunConfig from a YAML file.
func Load(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read run config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse run config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the run description for internal consistency.
func (c *RunConfig) Validate() error {
	if c.ScanID == "" {
		return fmt.Errorf("scanId must not be empty")
	}
	if c.HitsCSV == "" {
		return fmt.Errorf("hitsCsv must not be empty")
	}
	if len(c.MetaEventIndex) != len(c.ScanParameters) {
		return fmt.Errorf("metaEventIndex has %d entries for %d scan parameters",
			len(c.MetaEventIndex), len(c.ScanParameters))
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batchSize must be positive, got %d", c.BatchSize)
	}
	if c.OutputCSV != "" && !c.Histograms.Occupancy {
		return fmt.Errorf("outputCsv requires the occupancy histogram")
	}
	return nil
}
