package nickelphot

import (
	"math"

	"github.com/soniakeys/unit"
)

// PixelToSky maps detector pixel coordinates to celestial coordinates and
// back. Pixel coordinates on this interface are 0-based (first pixel center
// at 0,0), matching the source detector's convention; implementations own
// any conversion to their internal convention.
type PixelToSky interface {
	PixelToSky(x, y float64) (ra, dec unit.Angle, err error)
	SkyToPixel(ra, dec unit.Angle) (x, y float64, err error)
}

// TanWCS is a gnomonic (TAN) projection World Coordinate System: a reference
// sky position at a reference pixel plus a linear CD matrix in degrees per
// pixel. CRPix follows the FITS 1-based convention; the interface methods
// convert from 0-based.
type TanWCS struct {
	CRVal1 float64 // reference RA, degrees
	CRVal2 float64 // reference Dec, degrees
	CRPix1 float64 // reference pixel X, 1-based
	CRPix2 float64 // reference pixel Y, 1-based
	CD     [2][2]float64
}

// TanWCSFromMetadata builds a TanWCS from standard FITS WCS headers. Accepts
// a CD matrix or falls back to CDELT1/CDELT2 scales.
func TanWCSFromMetadata(m *FitsMetadata) (*TanWCS, error) {
	crval1, ok1 := m.GetDouble("CRVAL1")
	crval2, ok2 := m.GetDouble("CRVAL2")
	crpix1, ok3 := m.GetDouble("CRPIX1")
	crpix2, ok4 := m.GetDouble("CRPIX2")
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil, &CoordinateTransformError{Reason: "header has no CRVAL/CRPIX keywords"}
	}

	w := &TanWCS{CRVal1: crval1, CRVal2: crval2, CRPix1: crpix1, CRPix2: crpix2}

	if cd11, ok := m.GetDouble("CD1_1"); ok {
		cd12, _ := m.GetDouble("CD1_2")
		cd21, _ := m.GetDouble("CD2_1")
		cd22, ok22 := m.GetDouble("CD2_2")
		if !ok22 {
			return nil, &CoordinateTransformError{Reason: "incomplete CD matrix"}
		}
		w.CD = [2][2]float64{{cd11, cd12}, {cd21, cd22}}
	} else if cdelt1, ok := m.GetDouble("CDELT1"); ok {
		cdelt2, ok2 := m.GetDouble("CDELT2")
		if !ok2 {
			return nil, &CoordinateTransformError{Reason: "CDELT1 without CDELT2"}
		}
		w.CD = [2][2]float64{{cdelt1, 0}, {0, cdelt2}}
	} else {
		return nil, &CoordinateTransformError{Reason: "header has no CD matrix or CDELT scales"}
	}

	if w.cdDet() == 0 {
		return nil, &CoordinateTransformError{Reason: "singular CD matrix"}
	}
	return w, nil
}

func (w *TanWCS) cdDet() float64 {
	return w.CD[0][0]*w.CD[1][1] - w.CD[0][1]*w.CD[1][0]
}

// PixelToSky projects a 0-based pixel position onto the sky.
func (w *TanWCS) PixelToSky(x, y float64) (unit.Angle, unit.Angle, error) {
	if w == nil {
		return 0, 0, &CoordinateTransformError{Reason: "no WCS solution"}
	}
	// 0-based detector coordinates to the 1-based FITS convention.
	u := x + 1 - w.CRPix1
	v := y + 1 - w.CRPix2

	// Intermediate world coordinates, radians.
	xi := (w.CD[0][0]*u + w.CD[0][1]*v) * math.Pi / 180
	eta := (w.CD[1][0]*u + w.CD[1][1]*v) * math.Pi / 180

	ra0 := w.CRVal1 * math.Pi / 180
	dec0 := w.CRVal2 * math.Pi / 180

	denom := math.Cos(dec0) - eta*math.Sin(dec0)
	ra := ra0 + math.Atan2(xi, denom)
	dec := math.Atan2(math.Sin(dec0)+eta*math.Cos(dec0), math.Hypot(xi, denom))

	// Normalize RA into [0, 2pi).
	ra = math.Mod(ra, 2*math.Pi)
	if ra < 0 {
		ra += 2 * math.Pi
	}
	return unit.Angle(ra), unit.Angle(dec), nil
}

// SkyToPixel is the inverse projection, back to 0-based pixel coordinates.
func (w *TanWCS) SkyToPixel(ra, dec unit.Angle) (float64, float64, error) {
	if w == nil {
		return 0, 0, &CoordinateTransformError{Reason: "no WCS solution"}
	}
	ra0 := w.CRVal1 * math.Pi / 180
	dec0 := w.CRVal2 * math.Pi / 180

	dra := ra.Rad() - ra0
	sinDec, cosDec := math.Sincos(dec.Rad())
	sinDec0, cosDec0 := math.Sincos(dec0)

	d := sinDec*sinDec0 + cosDec*cosDec0*math.Cos(dra)
	if d <= 0 {
		return 0, 0, &CoordinateTransformError{Reason: "position is on the far hemisphere"}
	}
	xi := cosDec * math.Sin(dra) / d * 180 / math.Pi
	eta := (sinDec*cosDec0 - cosDec*sinDec0*math.Cos(dra)) / d * 180 / math.Pi

	det := w.cdDet()
	if det == 0 {
		return 0, 0, &CoordinateTransformError{Reason: "singular CD matrix"}
	}
	u := (w.CD[1][1]*xi - w.CD[0][1]*eta) / det
	v := (-w.CD[1][0]*xi + w.CD[0][0]*eta) / det

	return u + w.CRPix1 - 1, v + w.CRPix2 - 1, nil
}

// AttachSky fills the RA/Dec of every valid photometry record from the given
// transform. Per-record transform failures invalidate that record only; a
// nil transform fails the whole batch.
func AttachSky(transform PixelToSky, recs []PhotometryRecord) ([]PhotometryRecord, error) {
	if transform == nil {
		return nil, &CoordinateTransformError{Reason: "no transform available"}
	}
	out := make([]PhotometryRecord, len(recs))
	for i, rec := range recs {
		ra, dec, err := transform.PixelToSky(rec.X, rec.Y)
		if err != nil {
			rec.HasSky = false
			out[i] = rec
			continue
		}
		rec.RA = ra
		rec.Dec = dec
		rec.HasSky = true
		out[i] = rec
	}
	return out, nil
}

// angularSeparation returns the great-circle distance between two sky
// positions.
func angularSeparation(ra1, dec1, ra2, dec2 unit.Angle) unit.Angle {
	// Haversine form, stable at small separations.
	sdRA := math.Sin((ra2.Rad() - ra1.Rad()) / 2)
	sdDec := math.Sin((dec2.Rad() - dec1.Rad()) / 2)
	h := sdDec*sdDec + math.Cos(dec1.Rad())*math.Cos(dec2.Rad())*sdRA*sdRA
	return unit.Angle(2 * math.Asin(math.Min(1, math.Sqrt(h))))
}
