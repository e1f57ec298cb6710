// Package hits owns the histogram accumulation engine for FE-I4 pixel-hit
// streams.
//
// Responsibilities: hit record validation against the hardware bounds,
// event-number to scan-parameter correlation via the meta-event-index,
// and the dense occupancy / ToT / relative-BCID counters with their
// allocation and reset lifecycle.
//
// The engine is single-threaded: callers must serialise all mutating calls
// and must not overlap them with reads. Counter getters return views into
// engine-owned memory; a view is valid only until the next reconfiguration.
package hits
