package nickelphot

import "github.com/soniakeys/unit"

// MatchBands joins two calibrated tables by sky position: every record of a
// is paired with its nearest neighbour in b, kept when the separation is
// within tol. The join is one-sided and not guaranteed bijective; a b-record
// can be claimed as nearest neighbour by more than one a-record, and no
// deduplication is performed on the b side. ColorIndex is a.CalMag - b.CalMag
// in the caller's band order.
func MatchBands(a, b []CalibratedRecord, tol unit.Angle) []ColorRecord {
	colors := make([]ColorRecord, 0, len(a))
	for _, ra := range a {
		if !ra.Valid || !ra.HasSky {
			continue
		}
		best := -1
		var bestSep unit.Angle
		for i, rb := range b {
			if !rb.Valid || !rb.HasSky {
				continue
			}
			sep := angularSeparation(ra.RA, ra.Dec, rb.RA, rb.Dec)
			if best < 0 || sep < bestSep {
				best = i
				bestSep = sep
			}
		}
		if best < 0 || bestSep > tol {
			continue
		}
		colors = append(colors, ColorRecord{
			A:          ra,
			B:          b[best],
			ColorIndex: ra.CalMag - b[best].CalMag,
			Separation: bestSep,
		})
	}
	return colors
}
