package nickelphot

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// SaturationFilter excludes unreliable sources from zero-point estimation:
// a delta-magnitude acceptance range plus an optional instrumental-magnitude
// bright limit (saturated stars measure too faint, which corrupts the
// estimate).
type SaturationFilter struct {
	MinDelta float64 // accept deltas >= MinDelta
	MaxDelta float64 // accept deltas <= MaxDelta; ignored when 0
	// BrightLimit, when non-zero, rejects sources with instrumental
	// magnitude below it (numerically smaller = brighter).
	BrightLimit float64
}

func (f SaturationFilter) accept(m CrossMatchRecord) bool {
	d := m.Delta()
	if math.IsNaN(d) {
		return false
	}
	if d < f.MinDelta {
		return false
	}
	if f.MaxDelta != 0 && d > f.MaxDelta {
		return false
	}
	if f.BrightLimit != 0 && m.Phot.InstMag < f.BrightLimit {
		return false
	}
	return true
}

// EstimateZeroPoint computes the band zero point as the median of
// (catalog - instrumental) over the filtered cross-matches. The median, not
// the mean, keeps residual mismatches from biasing the estimate. Fails with
// InsufficientMatchesError when fewer than minMatches sources survive; the
// caller may then substitute FallbackZeroPoint with an explicit constant.
func EstimateZeroPoint(matches []CrossMatchRecord, band string, filter SaturationFilter, minMatches int) (ZeroPoint, error) {
	deltas := make([]float64, 0, len(matches))
	for _, m := range matches {
		if !filter.accept(m) {
			continue
		}
		deltas = append(deltas, m.Delta())
	}
	if len(deltas) < minMatches {
		return ZeroPoint{}, &InsufficientMatchesError{Band: band, Survived: len(deltas), Min: minMatches}
	}

	sort.Float64s(deltas)
	median := stat.Quantile(0.5, stat.Empirical, deltas, nil)
	return ZeroPoint{Band: band, Value: median, N: len(deltas)}, nil
}

// ApplyZeroPoint shifts every record of the band by the zero point,
// matched or not. Invalid records keep NaN magnitudes; the shift propagates
// NaN rather than inventing a value.
func ApplyZeroPoint(recs []PhotometryRecord, zp ZeroPoint) []CalibratedRecord {
	out := make([]CalibratedRecord, len(recs))
	for i, rec := range recs {
		out[i] = CalibratedRecord{
			PhotometryRecord: rec,
			Band:             zp.Band,
			CalMag:           rec.InstMag + zp.Value,
		}
	}
	return out
}
