package nickelphot

import (
	"testing"

	"github.com/soniakeys/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func calRecordAt(raDeg, decDeg, calMag float64) CalibratedRecord {
	return CalibratedRecord{
		PhotometryRecord: PhotometryRecord{
			RA:     unit.AngleFromDeg(raDeg),
			Dec:    unit.AngleFromDeg(decDeg),
			Valid:  true,
			HasSky: true,
		},
		CalMag: calMag,
	}
}

func TestMatchBands(t *testing.T) {
	t.Parallel()
	arcsec := 1.0 / 3600.0
	tol := unit.AngleFromSec(3)

	t.Run("pairs within tolerance and computes the color index", func(t *testing.T) {
		t.Parallel()
		a := []CalibratedRecord{calRecordAt(180, 45, 15.8)}
		b := []CalibratedRecord{calRecordAt(180+0.5*arcsec, 45, 15.2)}

		colors := MatchBands(a, b, tol)
		require.Len(t, colors, 1)
		assert.InDelta(t, 0.6, colors[0].ColorIndex, 1e-9)
		assert.LessOrEqual(t, colors[0].Separation.Sec(), 3.0)
	})

	t.Run("distant records stay unmatched", func(t *testing.T) {
		t.Parallel()
		a := []CalibratedRecord{calRecordAt(180, 45, 15.8)}
		b := []CalibratedRecord{calRecordAt(180.1, 45, 15.2)}
		assert.Empty(t, MatchBands(a, b, tol))
	})

	t.Run("join is one-sided: a b-record can be claimed twice", func(t *testing.T) {
		t.Parallel()
		a := []CalibratedRecord{
			calRecordAt(180+1*arcsec, 45, 16.0),
			calRecordAt(180-1*arcsec, 45, 17.0),
		}
		b := []CalibratedRecord{calRecordAt(180, 45, 15.0)}

		colors := MatchBands(a, b, tol)
		require.Len(t, colors, 2)
		assert.Equal(t, 15.0, colors[0].B.CalMag)
		assert.Equal(t, 15.0, colors[1].B.CalMag)
	})

	t.Run("invalid records are skipped on both sides", func(t *testing.T) {
		t.Parallel()
		badA := calRecordAt(180, 45, 16.0)
		badA.Valid = false
		badB := calRecordAt(180, 45, 15.0)
		badB.HasSky = false

		assert.Empty(t, MatchBands([]CalibratedRecord{badA}, []CalibratedRecord{calRecordAt(180, 45, 15)}, tol))
		assert.Empty(t, MatchBands([]CalibratedRecord{calRecordAt(180, 45, 16)}, []CalibratedRecord{badB}, tol))
	})
}
