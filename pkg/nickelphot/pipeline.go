package nickelphot

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/soniakeys/unit"
)

// BandReduction holds everything computed for one band of one image. Each
// band owns its own context; nothing here is shared or reused across bands,
// so a second band can never be calibrated against the first band's
// cross-match by accident.
type BandReduction struct {
	Band       string
	Frame      *Frame
	Sources    []SourceRecord
	Records    []PhotometryRecord
	Matches    []CrossMatchRecord
	ZeroPoint  ZeroPoint
	Calibrated []CalibratedRecord
}

// Reducer runs the photometry-to-calibration pipeline for single frames.
type Reducer struct {
	Photometer *Photometer
	Solver     PlateSolver // used only for frames without a header WCS; may be nil
	Catalog    Catalog

	MatchTolerance unit.Angle
	Filter         SaturationFilter
	MinMatches     int

	// FallbackZP, when non-nil, substitutes this explicit constant if too
	// few cross-matches survive filtering. When nil the
	// InsufficientMatchesError is surfaced instead.
	FallbackZP *float64
}

// Reduce runs one band end to end: photometry, sky coordinates, catalog
// cross-match, zero point, calibration. Any error aborts this frame only;
// nothing already computed for other frames is touched.
func (r *Reducer) Reduce(ctx context.Context, band string, frame *Frame, sources []SourceRecord) (*BandReduction, error) {
	red := &BandReduction{Band: band, Frame: frame, Sources: sources}

	recs, err := r.Photometer.MeasureFrame(frame, sources)
	if err != nil {
		return nil, fmt.Errorf("band %s: %w", band, err)
	}
	red.Records = recs

	wcs := frame.WCS
	if wcs == nil {
		if r.Solver == nil {
			return nil, &CoordinateTransformError{Reason: "frame has no WCS and no solver is configured"}
		}
		wcs, err = r.Solver.Solve(ctx, SolveRequest{
			Width:   frame.Width(),
			Height:  frame.Height(),
			Sources: sources,
		})
		if err != nil {
			return nil, err
		}
	}
	red.Records, err = AttachSky(wcs, red.Records)
	if err != nil {
		return nil, err
	}

	centerRA, centerDec, err := wcs.PixelToSky(float64(frame.Width())/2, float64(frame.Height())/2)
	if err != nil {
		return nil, err
	}
	catalog, err := r.Catalog.ConeSearch(ctx, centerRA, centerDec, r.searchRadius(frame, wcs))
	if err != nil {
		return nil, err
	}

	red.Matches = CrossMatch(red.Records, catalog, band, r.MatchTolerance)

	zp, err := EstimateZeroPoint(red.Matches, band, r.Filter, r.MinMatches)
	if err != nil {
		var insufficient *InsufficientMatchesError
		if errors.As(err, &insufficient) && r.FallbackZP != nil {
			zp = FallbackZeroPoint(band, *r.FallbackZP)
		} else {
			return nil, err
		}
	}
	red.ZeroPoint = zp
	red.Calibrated = ApplyZeroPoint(red.Records, zp)
	return red, nil
}

// searchRadius covers the frame corner-to-center distance so the cone search
// reaches every photometered source.
func (r *Reducer) searchRadius(frame *Frame, wcs *TanWCS) unit.Angle {
	cx, cy := float64(frame.Width())/2, float64(frame.Height())/2
	centerRA, centerDec, err := wcs.PixelToSky(cx, cy)
	if err != nil {
		return unit.AngleFromDeg(0.5)
	}
	cornerRA, cornerDec, err := wcs.PixelToSky(0, 0)
	if err != nil {
		return unit.AngleFromDeg(0.5)
	}
	radius := angularSeparation(centerRA, centerDec, cornerRA, cornerDec)
	// Small margin for centroid scatter at the edge.
	return unit.Angle(radius.Rad() * 1.05)
}

// ValidCount returns how many records carry a defined magnitude.
func (b *BandReduction) ValidCount() int {
	n := 0
	for _, rec := range b.Records {
		if rec.Valid && !math.IsNaN(rec.InstMag) {
			n++
		}
	}
	return n
}
