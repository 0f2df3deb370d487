package nickelphot

import (
	"fmt"
	"math"
)

// ApertureParams contains the geometry and statistics parameters for
// aperture photometry.
type ApertureParams struct {
	Radius       float64 // target aperture radius, pixels
	AnnulusInner float64 // sky annulus inner radius, pixels
	AnnulusOuter float64 // sky annulus outer radius, pixels

	// SubPixels is the per-axis subsampling grid used to weight pixels
	// straddling the aperture boundary. Each boundary pixel is split into
	// SubPixels x SubPixels cells and weighted by the fraction of cell
	// centers inside the aperture; with the default of 5 the weighting is
	// deterministic and accurate to a few percent of a pixel.
	SubPixels int

	Clip SigmaClipParams // annulus sky rejection
}

// NewApertureParams returns parameters with default values.
func NewApertureParams() *ApertureParams {
	return &ApertureParams{
		Radius:       8.0,
		AnnulusInner: 12.0,
		AnnulusOuter: 18.0,
		SubPixels:    5,
		Clip:         NewSigmaClipParams(),
	}
}

func (p *ApertureParams) validate() error {
	if p.Radius <= 0 {
		return fmt.Errorf("aperture radius must be positive, got %f", p.Radius)
	}
	if p.AnnulusInner <= 0 || p.AnnulusInner >= p.AnnulusOuter {
		return fmt.Errorf("annulus radii must satisfy 0 < inner < outer, got %f, %f",
			p.AnnulusInner, p.AnnulusOuter)
	}
	if p.SubPixels < 1 {
		return fmt.Errorf("subpixels must be >= 1, got %d", p.SubPixels)
	}
	return nil
}

// Photometer measures sky-subtracted fluxes and instrumental magnitudes for
// a list of source positions on a frame. It never mutates the frame.
type Photometer struct {
	Params *ApertureParams
	Noise  NoiseModel
}

func NewPhotometer(params *ApertureParams, noise NoiseModel) *Photometer {
	return &Photometer{Params: params, Noise: noise}
}

// MeasureFrame photometers every source on the frame. Per-source failures
// (non-positive flux, empty annulus) produce invalid records and do not stop
// the batch; only bad parameters or frame metadata fail the whole call.
func (p *Photometer) MeasureFrame(frame *Frame, sources []SourceRecord) ([]PhotometryRecord, error) {
	if err := p.Params.validate(); err != nil {
		return nil, err
	}
	if frame.ExposureTime <= 0 {
		return nil, fmt.Errorf("exposure time must be positive, got %f", frame.ExposureTime)
	}
	if frame.Gain <= 0 {
		return nil, fmt.Errorf("gain must be positive, got %f", frame.Gain)
	}

	recs := make([]PhotometryRecord, len(sources))
	for i, src := range sources {
		recs[i] = p.measure(frame, src)
	}
	return recs, nil
}

func (p *Photometer) measure(frame *Frame, src SourceRecord) PhotometryRecord {
	rec := PhotometryRecord{
		X:          src.X,
		Y:          src.Y,
		InstMag:    math.NaN(),
		InstMagErr: math.NaN(),
	}

	rawSum, area := p.apertureSum(frame, src.X, src.Y)

	skyValues := p.annulusValues(frame, src.X, src.Y)
	skyStats, err := sigmaClippedValues(skyValues, p.Params.Clip)
	if err != nil {
		rec.RawSum = rawSum
		rec.InvalidReason = "sky annulus has no valid pixels"
		return rec
	}

	rec.RawSum = rawSum
	rec.SkyPerPixel = skyStats.Mean
	rec.SkyRMS = skyStats.StdDev
	rec.Flux = rawSum - skyStats.Mean*area
	rec.FluxErr = p.Noise.Uncertainty(rec.Flux, skyStats.StdDev*math.Sqrt(area), frame.Gain)

	if rec.Flux <= 0 {
		rec.InvalidReason = "non-positive sky-subtracted flux"
		return rec
	}

	rec.InstMag = -2.5 * math.Log10(rec.Flux/frame.ExposureTime)
	// First-order linear propagation of the fractional flux error. This is
	// deliberately not the full logarithmic propagation (which carries a
	// 2.5/ln10 factor); the magnitude error is defined as dFlux/flux.
	rec.InstMagErr = rec.FluxErr / rec.Flux
	rec.Valid = true
	return rec
}

// apertureSum returns the weighted sum of counts inside the circular aperture
// centered on (cx, cy), and the effective pixel area (sum of weights). Pixel
// (ix, iy) is taken to span [ix-0.5, ix+0.5] x [iy-0.5, iy+0.5], with the
// centroid in the same 0-based convention as the source detector. Pixels
// beyond the frame edge and NaN pixels contribute nothing to either sum.
func (p *Photometer) apertureSum(frame *Frame, cx, cy float64) (sum, area float64) {
	data := frame.Data.DataFloat32()
	width, height := frame.Width(), frame.Height()
	r := p.Params.Radius

	x0 := int(math.Floor(cx - r - 1))
	x1 := int(math.Ceil(cx + r + 1))
	y0 := int(math.Floor(cy - r - 1))
	y1 := int(math.Ceil(cy + r + 1))

	for iy := y0; iy <= y1; iy++ {
		if iy < 0 || iy >= height {
			continue
		}
		for ix := x0; ix <= x1; ix++ {
			if ix < 0 || ix >= width {
				continue
			}
			v := float64(data[iy*width+ix])
			if math.IsNaN(v) {
				continue
			}
			w := p.pixelWeight(float64(ix), float64(iy), cx, cy, r)
			if w == 0 {
				continue
			}
			sum += w * v
			area += w
		}
	}
	return sum, area
}

// pixelWeight returns the fraction of the pixel at (ix, iy) covered by the
// aperture: 1 for fully enclosed pixels, 0 for fully outside, and a
// grid-subsampled fraction for boundary pixels.
func (p *Photometer) pixelWeight(ix, iy, cx, cy, r float64) float64 {
	dx := math.Abs(ix-cx) + 0.5
	dy := math.Abs(iy-cy) + 0.5
	// Farthest pixel corner inside the circle: fully enclosed.
	if dx*dx+dy*dy <= r*r {
		return 1
	}
	// Nearest approach of the pixel square outside the circle: excluded.
	nx := math.Max(math.Abs(ix-cx)-0.5, 0)
	ny := math.Max(math.Abs(iy-cy)-0.5, 0)
	if nx*nx+ny*ny > r*r {
		return 0
	}

	n := p.Params.SubPixels
	step := 1.0 / float64(n)
	inside := 0
	for sy := 0; sy < n; sy++ {
		py := iy - 0.5 + (float64(sy)+0.5)*step
		for sx := 0; sx < n; sx++ {
			px := ix - 0.5 + (float64(sx)+0.5)*step
			ddx := px - cx
			ddy := py - cy
			if ddx*ddx+ddy*ddy <= r*r {
				inside++
			}
		}
	}
	return float64(inside) / float64(n*n)
}

// annulusValues collects the counts of pixels whose centers lie inside the
// sky annulus. Annulus membership is by pixel center, not sub-pixel overlap;
// the annulus population feeds a robust statistic, not an exact integral.
func (p *Photometer) annulusValues(frame *Frame, cx, cy float64) []float64 {
	data := frame.Data.DataFloat32()
	width, height := frame.Width(), frame.Height()
	rIn, rOut := p.Params.AnnulusInner, p.Params.AnnulusOuter

	x0 := int(math.Floor(cx - rOut))
	x1 := int(math.Ceil(cx + rOut))
	y0 := int(math.Floor(cy - rOut))
	y1 := int(math.Ceil(cy + rOut))

	values := make([]float64, 0, int(math.Pi*(rOut*rOut-rIn*rIn))+8)
	for iy := y0; iy <= y1; iy++ {
		if iy < 0 || iy >= height {
			continue
		}
		for ix := x0; ix <= x1; ix++ {
			if ix < 0 || ix >= width {
				continue
			}
			dx := float64(ix) - cx
			dy := float64(iy) - cy
			d2 := dx*dx + dy*dy
			if d2 < rIn*rIn || d2 >= rOut*rOut {
				continue
			}
			v := float64(data[iy*width+ix])
			if math.IsNaN(v) {
				continue
			}
			values = append(values, v)
		}
	}
	return values
}
