package hits

import (
	"github.com/pixeldaq/occuscan/internal/monitoring"
)

// Histogrammer accumulates pixel-hit batches into dense counters: a 3-D
// occupancy grid (column × row × scan-parameter index) and 16-bin ToT and
// relative-BCID distributions. Each counter is gated by its own create flag
// and allocated lazily; the occupancy grid is re-sized whenever the
// scan-parameter cardinality changes, discarding prior counts.
//
// The zero value is not usable; construct with New.
type Histogrammer struct {
	corr correlator

	createOcc     bool
	createTot     bool
	createRelBCID bool

	occupancy []uint32 // len = Columns*Rows*corr.count() once allocated
	tot       []uint64 // len = TotBins once allocated
	relBCID   []uint64 // len = RelBCIDBins once allocated
}

// New returns an engine in single-parameter mode with all counters disabled.
func New() *Histogrammer {
	return &Histogrammer{}
}

// occupancyIndex flattens 1-based pixel coordinates and a parameter index
// into the occupancy buffer offset.
func occupancyIndex(col uint8, row uint16, par int) int {
	return int(col-1) + int(row-1)*Columns + par*Columns*Rows
}

// CreateOccupancyHist gates the occupancy counter. Enabling allocates the
// grid on the next scan-parameter configuration (or lazily on the first hit
// in single-parameter mode); disabling stops accumulation without releasing
// the buffer.
func (h *Histogrammer) CreateOccupancyHist(enable bool) {
	h.createOcc = enable
}

// CreateTotHist gates the ToT counter, allocating it on first enable.
func (h *Histogrammer) CreateTotHist(enable bool) {
	h.createTot = enable
	if enable && h.tot == nil {
		h.tot = make([]uint64, TotBins)
	}
}

// CreateRelBCIDHist gates the relative-BCID counter, allocating it on first
// enable.
func (h *Histogrammer) CreateRelBCIDHist(enable bool) {
	h.createRelBCID = enable
	if enable && h.relBCID == nil {
		h.relBCID = make([]uint64, RelBCIDBins)
	}
}

// SetScanParameters installs the readout-segment scan-parameter sequence for
// the acquisition run, one record per meta-event-index boundary. The
// occupancy grid is re-sized to the deduplicated value count and zeroed;
// prior occupancy counts are discarded. ToT and relative-BCID counters are
// unaffected.
func (h *Histogrammer) SetScanParameters(records []ScanParameterRecord) {
	h.corr.setScanParameters(records)
	h.reallocOccupancy()
	monitoring.Logf("scan parameters: %d readout segments, %d distinct values [%d, %d]",
		len(records), h.corr.count(), h.corr.minValue, h.corr.maxValue)
}

// SetNoScanParameter forces single-parameter mode: the run has one fixed
// operating point, every event maps to parameter index 0. The occupancy grid
// is re-sized to one parameter slice and zeroed.
func (h *Histogrammer) SetNoScanParameter() {
	h.corr.clear()
	h.reallocOccupancy()
}

// SetMetaEventIndex installs the event-number boundaries for the most recent
// SetScanParameters call. Boundary i marks the first event at which record i
// stops applying; a value of zero at position > 0 means the boundary is not
// yet written by the acquisition. The boundary count must match the record
// count.
func (h *Histogrammer) SetMetaEventIndex(boundaries []uint64) error {
	if err := h.corr.setMetaEventIndex(boundaries); err != nil {
		monitoring.Logf("meta-event-index rejected: %v", err)
		return err
	}
	return nil
}

func (h *Histogrammer) reallocOccupancy() {
	h.occupancy = make([]uint32, Columns*Rows*h.corr.count())
}

// AddHits accumulates a batch of hit records in index order. Bounds are
// checked per record in the order column, row, ToT, relative BCID; the first
// violation aborts the whole batch with a *ValidationError and no further
// records are processed. A correlation failure aborts with a
// *CorrelationError. Counters already incremented by earlier records of an
// aborted batch are kept.
//
// Precondition: event numbers are non-decreasing across all AddHits calls of
// a run (see correlator cursor semantics).
func (h *Histogrammer) AddHits(batch []HitRecord) error {
	for i := range batch {
		r := &batch[i]
		if err := validate(r); err != nil {
			monitoring.Logf("batch aborted at record %d: %v", i, err)
			return err
		}

		parameter, err := h.corr.eventParameter(r.EventNumber)
		if err != nil {
			monitoring.Logf("batch aborted at record %d: %v", i, err)
			return err
		}
		parIndex, ok := h.corr.parameterIndex(parameter)
		if !ok || parIndex >= h.corr.count() {
			cerr := &CorrelationError{
				Kind:        ParameterIndexOutOfRange,
				EventNumber: r.EventNumber,
				Parameter:   parameter,
			}
			monitoring.Logf("batch aborted at record %d: %v", i, cerr)
			return cerr
		}

		if h.createOcc {
			if h.occupancy == nil {
				// Hits before any scan-parameter metadata: single-parameter mode.
				h.reallocOccupancy()
			}
			h.occupancy[occupancyIndex(r.Column, r.Row, parIndex)]++
		}
		if h.createTot {
			h.tot[r.ToT]++
		}
		if h.createRelBCID {
			h.relBCID[r.RelativeBCID]++
		}
	}
	return nil
}

// validate checks one record against the hardware bounds.
func validate(r *HitRecord) *ValidationError {
	if r.Column < 1 || r.Column > Columns {
		return &ValidationError{Field: FieldColumn, EventNumber: r.EventNumber,
			Value: uint32(r.Column), Limit: Columns}
	}
	if r.Row < 1 || r.Row > Rows {
		return &ValidationError{Field: FieldRow, EventNumber: r.EventNumber,
			Value: uint32(r.Row), Limit: Rows}
	}
	if r.ToT > maxToT {
		return &ValidationError{Field: FieldToT, EventNumber: r.EventNumber,
			Value: uint32(r.ToT), Limit: maxToT}
	}
	if r.RelativeBCID > maxRelBCID {
		return &ValidationError{Field: FieldRelativeBCID, EventNumber: r.EventNumber,
			Value: uint32(r.RelativeBCID), Limit: maxRelBCID}
	}
	return nil
}

// Occupancy returns a read-only view of the occupancy grid. The view aliases
// engine memory and is valid only until the next SetScanParameters or
// SetNoScanParameter call. Counts is nil if the grid was never allocated.
func (h *Histogrammer) Occupancy() OccupancyView {
	return OccupancyView{
		Counts:       h.occupancy,
		NParameters:  h.corr.count(),
		MinParameter: h.corr.minValue,
		MaxParameter: h.corr.maxValue,
	}
}

// TotHist returns the 16-bin ToT counter, or nil if never enabled. The slice
// aliases engine memory.
func (h *Histogrammer) TotHist() []uint64 {
	return h.tot
}

// RelBCIDHist returns the 16-bin relative-BCID counter, or nil if never
// enabled. The slice aliases engine memory.
func (h *Histogrammer) RelBCIDHist() []uint64 {
	return h.relBCID
}

// MinParameter reports the smallest scan-parameter value of the current run.
func (h *Histogrammer) MinParameter() uint32 { return h.corr.minValue }

// MaxParameter reports the largest scan-parameter value of the current run.
func (h *Histogrammer) MaxParameter() uint32 { return h.corr.maxValue }

// ParameterCount reports the occupancy parameter-axis cardinality.
func (h *Histogrammer) ParameterCount() int { return h.corr.count() }

// Reset zero-fills every allocated counter without releasing or re-sizing
// anything. Enable flags and scan-parameter metadata are kept.
func (h *Histogrammer) Reset() {
	clear(h.occupancy)
	clear(h.tot)
	clear(h.relBCID)
}
