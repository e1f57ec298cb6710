package hits

// FE-I4 pixel matrix and hit field bounds. These define the fixed geometry
// of the front-end the readout chain delivers hits for; all counter buffers
// are sized from them at build time.
const (
	Columns = 80  // pixel columns, hit records use 1-based column numbers
	Rows    = 336 // pixel rows, hit records use 1-based row numbers

	TotBins     = 16 // time-over-threshold is a 4-bit code
	RelBCIDBins = 16 // relative BCID is a 4-bit code

	maxToT     = TotBins - 1
	maxRelBCID = RelBCIDBins - 1
)

// HitRecord is one decoded pixel hit as delivered by the readout chain.
// Only EventNumber, Column, Row, ToT and RelativeBCID are interpreted by
// the engine; the remaining fields travel with the record for downstream
// consumers.
type HitRecord struct {
	EventNumber   uint64
	TriggerNumber uint32
	RelativeBCID  uint8  // BCID of the hit relative to the trigger BCID
	LVL1ID        uint16
	Column        uint8  // 1..Columns
	Row           uint16 // 1..Rows
	ToT           uint8  // 0..15
	BCID          uint8
	TriggerStatus uint8
	ServiceRecord uint32
	EventStatus   uint8
}

// ScanParameterRecord carries the scan-parameter value of one readout
// segment. The sequence supplied to SetScanParameters has one record per
// meta-event-index boundary.
type ScanParameterRecord struct {
	ScanParameter uint32
}

// OccupancyView is a read-only view of the occupancy counter returned by
// Histogrammer.Occupancy. Counts aliases engine-owned memory and stays
// valid only until the next SetScanParameters / SetNoScanParameter call.
type OccupancyView struct {
	// Counts is the flattened (column, row, parameter-index) grid:
	// offset = (col-1) + (row-1)*Columns + k*Columns*Rows.
	Counts []uint32

	NParameters  int
	MinParameter uint32
	MaxParameter uint32
}

// At returns the count for 1-based pixel (col, row) at parameter index k.
func (v OccupancyView) At(col, row, k int) uint32 {
	return v.Counts[(col-1)+(row-1)*Columns+k*Columns*Rows]
}
