// Package scurve derives per-pixel threshold and noise estimates from a
// finished occupancy grid whose parameter axis sweeps an injection setting
// across each pixel's discrimination threshold.
//
// The estimator is the quick S-curve method from M. Mertens (PhD thesis,
// Jülich 2010): with a presumed sweep amplitude of Amplitude injections per
// parameter point, the curve integral fixes the half-amplitude crossing and
// the residual mass on either side of it fixes the transition width.
package scurve

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/pixeldaq/occuscan/internal/hits"
)

// Amplitude is the presumed number of injections per scan-parameter point.
const Amplitude = 100

// ComputeThresholdAndNoise fills outThreshold and outNoise with per-pixel
// estimates from the given occupancy view. Both outputs are row-major
// (col-1) + (row-1)*Columns slices of length Columns*Rows that the caller
// must pre-zero: with fewer than two parameter points no estimate exists and
// both buffers are left untouched. The occupancy view is not mutated.
func ComputeThresholdAndNoise(occ hits.OccupancyView, outThreshold, outNoise []float64) error {
	const pixels = hits.Columns * hits.Rows
	if len(outThreshold) != pixels || len(outNoise) != pixels {
		return fmt.Errorf("output buffers must hold %d pixels, got %d and %d",
			pixels, len(outThreshold), len(outNoise))
	}
	n := occ.NParameters
	if n < 2 {
		return nil
	}
	if len(occ.Counts) != pixels*n {
		return fmt.Errorf("occupancy buffer holds %d cells, want %d", len(occ.Counts), pixels*n)
	}

	// Parameter step size, truncated to an integer step as the sweep uses
	// integer parameter values.
	d := math.Floor((float64(occ.MaxParameter) - float64(occ.MinParameter)) / float64(n-1))
	qMax := float64(occ.MaxParameter)
	sigmaScale := math.Sqrt(math.Pi / 2)

	curve := make([]float64, n)
	for col := 1; col <= hits.Columns; col++ {
		for row := 1; row <= hits.Rows; row++ {
			for k := 0; k < n; k++ {
				curve[k] = float64(occ.At(col, row, k))
			}
			m := floats.Sum(curve)
			threshold := qMax - d*m/Amplitude

			// Split the curve at the threshold on the index axis: mass below
			// the crossing plus missing mass above it measures the width.
			var mu1, mu2 float64
			for k := 0; k < n; k++ {
				if float64(k) < threshold {
					mu1 += curve[k]
				}
				if float64(k) > threshold {
					mu2 += Amplitude - curve[k]
				}
			}
			noise := d * (mu1 + mu2) / Amplitude * sigmaScale

			pixel := (col - 1) + (row-1)*hits.Columns
			outThreshold[pixel] = threshold
			outNoise[pixel] = noise
		}
	}
	return nil
}
