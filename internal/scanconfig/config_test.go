package scanconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pixeldaq/occuscan/internal/testutil"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
scanId: threshold_scan_42
histograms:
  occupancy: true
  tot: true
  relBcid: true
scanParameters: [0, 50, 100]
metaEventIndex: [0, 1000, 2000]
hitsCsv: hits.csv
outputCsv: scurve.csv
batchSize: 128
`)
	cfg, err := Load(path)
	testutil.AssertNoError(t, err)

	if cfg.ScanID != "threshold_scan_42" {
		t.Errorf("ScanID = %q", cfg.ScanID)
	}
	if !cfg.Histograms.RelBCID {
		t.Error("relBcid histogram should be enabled")
	}
	if len(cfg.ScanParameters) != 3 || cfg.ScanParameters[2] != 100 {
		t.Errorf("ScanParameters = %v", cfg.ScanParameters)
	}
	if cfg.BatchSize != 128 {
		t.Errorf("BatchSize = %d, want 128", cfg.BatchSize)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "hitsCsv: hits.csv\n")
	cfg, err := Load(path)
	testutil.AssertNoError(t, err)

	if cfg.ScanID != "base_scan" {
		t.Errorf("ScanID = %q, want default base_scan", cfg.ScanID)
	}
	if cfg.BatchSize != 4096 {
		t.Errorf("BatchSize = %d, want default 4096", cfg.BatchSize)
	}
	if !cfg.Histograms.Occupancy || !cfg.Histograms.Tot || cfg.Histograms.RelBCID {
		t.Errorf("histogram defaults = %+v", cfg.Histograms)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	testutil.AssertError(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RunConfig)
		ok     bool
	}{
		{"valid", func(c *RunConfig) {}, true},
		{"empty scan id", func(c *RunConfig) { c.ScanID = "" }, false},
		{"missing hits file", func(c *RunConfig) { c.HitsCSV = "" }, false},
		{"boundary mismatch", func(c *RunConfig) {
			c.ScanParameters = []uint32{1, 2}
			c.MetaEventIndex = []uint64{0}
		}, false},
		{"zero batch", func(c *RunConfig) { c.BatchSize = 0 }, false},
		{"output without occupancy", func(c *RunConfig) {
			c.OutputCSV = "out.csv"
			c.Histograms.Occupancy = false
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.HitsCSV = "hits.csv"
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				testutil.AssertNoError(t, err)
			} else {
				testutil.AssertError(t, err)
			}
		})
	}
}
