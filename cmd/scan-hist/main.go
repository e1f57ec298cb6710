// Command scan-hist histograms a decoded pixel-hit file according to a YAML
// run description and optionally writes the per-pixel threshold/noise table
// derived from the occupancy S-curves.
//
// The hit file is CSV with columns event,column,row,tot,rel_bcid and an
// optional header row. Records must appear in non-decreasing event order.
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/pixeldaq/occuscan/internal/hits"
	"github.com/pixeldaq/occuscan/internal/monitoring"
	"github.com/pixeldaq/occuscan/internal/scanconfig"
	"github.com/pixeldaq/occuscan/internal/scurve"
)

func main() {
	configPath := flag.String("config", "run.yaml", "run configuration file")
	quiet := flag.Bool("quiet", false, "suppress engine diagnostics")
	flag.Parse()

	if *quiet {
		monitoring.SetLogger(nil)
	}

	cfg, err := scanconfig.Load(*configPath)
	if err != nil {
		log.Fatalf("scan-hist: %v", err)
	}

	h := hits.New()
	h.CreateOccupancyHist(cfg.Histograms.Occupancy)
	h.CreateTotHist(cfg.Histograms.Tot)
	h.CreateRelBCIDHist(cfg.Histograms.RelBCID)

	if len(cfg.ScanParameters) > 0 {
		records := make([]hits.ScanParameterRecord, len(cfg.ScanParameters))
		for i, v := range cfg.ScanParameters {
			records[i] = hits.ScanParameterRecord{ScanParameter: v}
		}
		h.SetScanParameters(records)
		if err := h.SetMetaEventIndex(cfg.MetaEventIndex); err != nil {
			log.Fatalf("scan-hist: %v", err)
		}
	} else {
		h.SetNoScanParameter()
	}

	total, err := ingest(h, cfg.HitsCSV, cfg.BatchSize)
	if err != nil {
		log.Fatalf("scan-hist: %s: %v", cfg.HitsCSV, err)
	}
	log.Printf("scan %s: %d hits histogrammed, %d parameter points [%d, %d]",
		cfg.ScanID, total, h.ParameterCount(), h.MinParameter(), h.MaxParameter())

	if cfg.OutputCSV != "" {
		if err := writeThresholdNoise(h, cfg.OutputCSV); err != nil {
			log.Fatalf("scan-hist: %v", err)
		}
		log.Printf("✓ wrote %s", cfg.OutputCSV)
	}
}

// ingest streams hit records from a CSV file into the engine in batches.
func ingest(h *hits.Histogrammer, path string, batchSize int) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true

	batch := make([]hits.HitRecord, 0, batchSize)
	total := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := h.AddHits(batch); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for line := 1; ; line++ {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return total, err
		}
		if line == 1 && fields[0] == "event" {
			continue // header row
		}
		hit, err := parseHit(fields)
		if err != nil {
			return total, fmt.Errorf("line %d: %w", line, err)
		}
		batch = append(batch, hit)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	return total, flush()
}

func parseHit(fields []string) (hits.HitRecord, error) {
	if len(fields) != 5 {
		return hits.HitRecord{}, fmt.Errorf("want 5 columns event,column,row,tot,rel_bcid, got %d", len(fields))
	}
	// Parse each field at its record width so an oversized value errors
	// instead of wrapping into a valid pixel.
	widths := []int{64, 8, 16, 8, 8}
	vals := make([]uint64, 5)
	for i, s := range fields {
		v, err := strconv.ParseUint(s, 10, widths[i])
		if err != nil {
			return hits.HitRecord{}, fmt.Errorf("column %d: %w", i+1, err)
		}
		vals[i] = v
	}
	return hits.HitRecord{
		EventNumber:  vals[0],
		Column:       uint8(vals[1]),
		Row:          uint16(vals[2]),
		ToT:          uint8(vals[3]),
		RelativeBCID: uint8(vals[4]),
	}, nil
}

// writeThresholdNoise runs the S-curve estimator and writes one row per
// pixel: column,row,threshold,noise.
func writeThresholdNoise(h *hits.Histogrammer, path string) error {
	threshold := make([]float64, hits.Columns*hits.Rows)
	noise := make([]float64, hits.Columns*hits.Rows)
	if err := scurve.ComputeThresholdAndNoise(h.Occupancy(), threshold, noise); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"column", "row", "threshold", "noise"}); err != nil {
		return err
	}
	for row := 1; row <= hits.Rows; row++ {
		for col := 1; col <= hits.Columns; col++ {
			pixel := (col - 1) + (row-1)*hits.Columns
			rec := []string{
				strconv.Itoa(col),
				strconv.Itoa(row),
				strconv.FormatFloat(threshold[pixel], 'g', -1, 64),
				strconv.FormatFloat(noise[pixel], 'g', -1, 64),
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}
