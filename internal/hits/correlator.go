package hits

import (
	"fmt"
	"sort"
)

// correlator maps event numbers to the scan-parameter value active when the
// event was recorded, and scan-parameter values to their dense index on the
// occupancy parameter axis.
//
// Event resolution keeps a cursor at the last resolved boundary and only ever
// scans forward, so hits must be submitted in non-decreasing event-number
// order across AddHits calls. Violating the order silently attributes hits
// to a stale scan-parameter segment; the engine cannot detect it.
type correlator struct {
	records    []ScanParameterRecord
	boundaries []uint64 // meta-event-index, one entry per record

	values   []uint32 // sorted, deduplicated scan-parameter values
	minValue uint32
	maxValue uint32

	cursor int // last resolved boundary index, never decreases
}

// setScanParameters installs a new readout-segment sequence and rebuilds the
// parameter value set. The records are copied, so the caller may reuse its
// slice afterwards. Any previously installed meta-event-index is dropped
// until the caller supplies a matching one.
func (c *correlator) setScanParameters(records []ScanParameterRecord) {
	if len(records) == 0 {
		c.clear()
		return
	}
	c.records = append([]ScanParameterRecord(nil), records...)
	c.boundaries = nil
	c.cursor = 0

	sorted := make([]uint32, len(records))
	for i, r := range records {
		sorted[i] = r.ScanParameter
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	c.values = make([]uint32, 0, len(sorted))
	for _, v := range sorted {
		if n := len(c.values); n == 0 || c.values[n-1] != v {
			c.values = append(c.values, v)
		}
	}
	c.minValue = c.values[0]
	c.maxValue = c.values[len(c.values)-1]
}

// clear returns the correlator to single-parameter mode: every event resolves
// to scan-parameter value 0 at index 0.
func (c *correlator) clear() {
	c.records = nil
	c.boundaries = nil
	c.values = nil
	c.minValue = 0
	c.maxValue = 0
	c.cursor = 0
}

// setMetaEventIndex installs the boundary sequence for the current records.
func (c *correlator) setMetaEventIndex(boundaries []uint64) error {
	if len(boundaries) != len(c.records) {
		return fmt.Errorf("meta-event-index has %d boundaries for %d scan-parameter records",
			len(boundaries), len(c.records))
	}
	c.boundaries = boundaries
	c.cursor = 0
	return nil
}

// eventParameter resolves the scan-parameter value active at event number e.
//
// Boundary i+1 closes segment i. A boundary smaller than its predecessor is
// the "not yet populated" sentinel (acquisition still writing it) and closes
// nothing. Events at or past the final boundary belong to the last segment
// (trailing read-outs).
func (c *correlator) eventParameter(e uint64) (uint32, error) {
	if len(c.records) == 0 {
		return 0, nil
	}
	if len(c.boundaries) == 0 {
		return 0, &CorrelationError{Kind: EventOrderingInconsistent, EventNumber: e}
	}
	for i := c.cursor; i+1 < len(c.boundaries); i++ {
		if c.boundaries[i+1] > e || c.boundaries[i+1] < c.boundaries[i] {
			c.cursor = i
			return c.records[i].ScanParameter, nil
		}
	}
	last := len(c.boundaries) - 1
	if c.boundaries[last] <= e {
		return c.records[last].ScanParameter, nil
	}
	return 0, &CorrelationError{Kind: EventOrderingInconsistent, EventNumber: e}
}

// parameterIndex returns the dense index of a scan-parameter value. The
// second result distinguishes a genuine index 0 from a failed lookup; the
// caller decides how to treat a miss. In single-parameter mode every value
// maps to index 0.
func (c *correlator) parameterIndex(v uint32) (int, bool) {
	if len(c.values) == 0 {
		return 0, true
	}
	for i, pv := range c.values {
		if pv == v {
			return i, true
		}
	}
	return 0, false
}

// count reports the parameter-axis cardinality; it is 1 in single-parameter
// mode.
func (c *correlator) count() int {
	if len(c.values) == 0 {
		return 1
	}
	return len(c.values)
}
