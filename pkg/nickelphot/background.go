package nickelphot

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// SigmaClipParams controls iterative sigma-clipping.
type SigmaClipParams struct {
	Sigma    float64 // rejection threshold in standard deviations
	MaxIters int
}

// NewSigmaClipParams returns the default clipping parameters.
func NewSigmaClipParams() SigmaClipParams {
	return SigmaClipParams{Sigma: 3.0, MaxIters: 10}
}

// BackgroundStats holds the statistics of a sigma-clip-converged pixel
// population.
type BackgroundStats struct {
	Mean       float64
	Median     float64
	StdDev     float64
	N          int // pixels surviving the clip
	Iterations int
}

// SigmaClippedStats computes robust statistics of an image's pixel
// population. mask, when non-nil, must have one entry per pixel in row-major
// order; true excludes the pixel from the population. NaN pixels are always
// excluded. Returns InsufficientDataError when no valid pixels remain.
func SigmaClippedStats(m Mat, mask []bool, p SigmaClipParams) (BackgroundStats, error) {
	data := m.DataFloat32()
	values := make([]float64, 0, len(data))
	for i, v := range data {
		if mask != nil && mask[i] {
			continue
		}
		if math.IsNaN(float64(v)) {
			continue
		}
		values = append(values, float64(v))
	}
	return sigmaClippedValues(values, p)
}

// sigmaClippedValues iterates mean/stddev rejection over a value population
// until no further values are excluded or the iteration cap is reached. The
// input slice is reordered.
func sigmaClippedValues(values []float64, p SigmaClipParams) (BackgroundStats, error) {
	if len(values) == 0 {
		return BackgroundStats{}, &InsufficientDataError{Context: "no valid pixels in population"}
	}

	iterations := 0
	for iterations < p.MaxIters {
		mean := stat.Mean(values, nil)
		std := clippedStdDev(values)
		iterations++

		lo := mean - p.Sigma*std
		hi := mean + p.Sigma*std
		kept := values[:0]
		for _, v := range values {
			if v < lo || v > hi {
				continue
			}
			kept = append(kept, v)
		}
		if len(kept) == len(values) {
			break
		}
		values = kept
		if len(values) == 0 {
			return BackgroundStats{}, &InsufficientDataError{Context: "all pixels rejected by sigma clip"}
		}
	}

	mean := stat.Mean(values, nil)
	std := clippedStdDev(values)
	sort.Float64s(values)
	median := stat.Quantile(0.5, stat.Empirical, values, nil)

	return BackgroundStats{
		Mean:       mean,
		Median:     median,
		StdDev:     std,
		N:          len(values),
		Iterations: iterations,
	}, nil
}

// clippedStdDev is stat.StdDev with a single-element guard: a population of
// one has zero spread rather than an undefined one.
func clippedStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}
