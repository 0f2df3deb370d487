package nickelphot

import (
	"testing"

	"github.com/soniakeys/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func photRecordAt(raDeg, decDeg, instMag float64) PhotometryRecord {
	return PhotometryRecord{
		RA:      unit.AngleFromDeg(raDeg),
		Dec:     unit.AngleFromDeg(decDeg),
		InstMag: instMag,
		Valid:   true,
		HasSky:  true,
	}
}

func catStarAt(raDeg, decDeg float64, mags map[string]float64) CatalogStar {
	return CatalogStar{
		RA:   unit.AngleFromDeg(raDeg),
		Dec:  unit.AngleFromDeg(decDeg),
		Mags: mags,
	}
}

func TestCrossMatch(t *testing.T) {
	t.Parallel()
	arcsec := 1.0 / 3600.0
	tol := unit.AngleFromSec(2)

	t.Run("no returned pair exceeds the tolerance", func(t *testing.T) {
		t.Parallel()
		recs := []PhotometryRecord{
			photRecordAt(180, 45, 18),
			photRecordAt(180.1, 45, 19), // nothing nearby
		}
		catalog := []CatalogStar{
			catStarAt(180+0.5*arcsec, 45, map[string]float64{"V": 20.5}),
		}
		matches := CrossMatch(recs, catalog, "V", tol)
		require.Len(t, matches, 1)
		for _, m := range matches {
			assert.LessOrEqual(t, m.Separation.Sec(), 2.0)
		}
	})

	t.Run("nearest catalog star wins", func(t *testing.T) {
		t.Parallel()
		recs := []PhotometryRecord{photRecordAt(180, 0, 18)}
		catalog := []CatalogStar{
			catStarAt(180+1.5*arcsec, 0, map[string]float64{"V": 11}),
			catStarAt(180+0.5*arcsec, 0, map[string]float64{"V": 12}),
		}
		matches := CrossMatch(recs, catalog, "V", tol)
		require.Len(t, matches, 1)
		assert.Equal(t, 12.0, matches[0].CatalogMag)
	})

	t.Run("equal separations break by catalog row order", func(t *testing.T) {
		t.Parallel()
		recs := []PhotometryRecord{photRecordAt(180, 0, 18)}
		catalog := []CatalogStar{
			catStarAt(180+1*arcsec, 0, map[string]float64{"V": 11}),
			catStarAt(180-1*arcsec, 0, map[string]float64{"V": 12}),
		}
		matches := CrossMatch(recs, catalog, "V", tol)
		require.Len(t, matches, 1)
		assert.Equal(t, 11.0, matches[0].CatalogMag)
	})

	t.Run("unmatched locals are dropped", func(t *testing.T) {
		t.Parallel()
		recs := []PhotometryRecord{photRecordAt(10, 10, 18)}
		matches := CrossMatch(recs, nil, "V", tol)
		assert.Empty(t, matches)
	})

	t.Run("invalid and sky-less records are skipped", func(t *testing.T) {
		t.Parallel()
		invalid := photRecordAt(180, 45, 18)
		invalid.Valid = false
		noSky := photRecordAt(180, 45, 18)
		noSky.HasSky = false

		catalog := []CatalogStar{catStarAt(180, 45, map[string]float64{"V": 20})}
		matches := CrossMatch([]PhotometryRecord{invalid, noSky}, catalog, "V", tol)
		assert.Empty(t, matches)
	})

	t.Run("catalog stars without the band are ignored", func(t *testing.T) {
		t.Parallel()
		recs := []PhotometryRecord{photRecordAt(180, 0, 18)}
		catalog := []CatalogStar{
			catStarAt(180+0.2*arcsec, 0, map[string]float64{"B": 15}), // closer, wrong band
			catStarAt(180+1.0*arcsec, 0, map[string]float64{"V": 16}),
		}
		matches := CrossMatch(recs, catalog, "V", tol)
		require.Len(t, matches, 1)
		assert.Equal(t, 16.0, matches[0].CatalogMag)
	})
}
