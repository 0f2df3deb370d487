package nickelphot

import (
	"fmt"

	"github.com/soniakeys/unit"
)

// SourceRecord is one detected star as delivered by the external source
// detector: a pixel centroid plus the detector's raw flux estimate, used for
// ranking only.
type SourceRecord struct {
	X    float64
	Y    float64
	Flux float64
}

// PhotometryRecord is the per-source output of aperture photometry. Valid is
// false when the source could not be measured (non-positive sky-subtracted
// flux, or an annulus with no usable pixels); invalid records keep their
// position but carry NaN magnitudes.
type PhotometryRecord struct {
	X float64
	Y float64

	RawSum      float64 // counts inside the aperture, sky included
	SkyPerPixel float64 // sigma-clipped annulus level, counts/pixel
	SkyRMS      float64 // annulus population scatter, counts/pixel
	Flux        float64 // sky-subtracted counts
	FluxErr     float64

	InstMag    float64 // -2.5 log10(flux / exposure time); NaN when invalid
	InstMagErr float64

	Valid         bool
	InvalidReason string

	// Sky position, attached by the astrometric mapper.
	RA     unit.Angle
	Dec    unit.Angle
	HasSky bool
}

func (r PhotometryRecord) String() string {
	if !r.Valid {
		return fmt.Sprintf("{(%.2f,%.2f) invalid: %s}", r.X, r.Y, r.InvalidReason)
	}
	return fmt.Sprintf("{(%.2f,%.2f) flux=%.1f±%.1f m=%.3f±%.3f}",
		r.X, r.Y, r.Flux, r.FluxErr, r.InstMag, r.InstMagErr)
}

// CrossMatchRecord pairs a local photometered source with its nearest
// catalog counterpart within the matching tolerance.
type CrossMatchRecord struct {
	Phot       PhotometryRecord
	CatalogMag float64
	Separation unit.Angle
}

// Delta is catalog magnitude minus instrumental magnitude, the quantity the
// zero point is estimated from.
func (r CrossMatchRecord) Delta() float64 {
	return r.CatalogMag - r.Phot.InstMag
}

// ZeroPoint is the additive offset from instrumental to catalog-calibrated
// magnitudes for one band of one image. Immutable once computed.
type ZeroPoint struct {
	Band     string
	Value    float64
	N        int // cross-matched sources the estimate is based on
	Fallback bool
}

// FallbackZeroPoint wraps an externally supplied constant for use when too
// few cross-matches survive filtering.
func FallbackZeroPoint(band string, value float64) ZeroPoint {
	return ZeroPoint{Band: band, Value: value, Fallback: true}
}

// CalibratedRecord is a PhotometryRecord with the band zero point applied.
type CalibratedRecord struct {
	PhotometryRecord
	Band   string
	CalMag float64
}

// ColorRecord pairs calibrated measurements of one source in two bands.
// ColorIndex is MagA - MagB in the caller's band order (e.g. B-V).
type ColorRecord struct {
	A          CalibratedRecord
	B          CalibratedRecord
	ColorIndex float64
	Separation unit.Angle
}
