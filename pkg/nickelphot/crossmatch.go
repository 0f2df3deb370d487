package nickelphot

import "github.com/soniakeys/unit"

// CrossMatch pairs each local photometry record with its nearest catalog
// star in the given band. A record is kept only when the nearest catalog
// star with a magnitude in that band lies within tol (inner join); records
// that are invalid or have no sky position are skipped. When two catalog
// stars are exactly equidistant the lower catalog row index wins; that
// tie-break is arbitrary, not meaningful.
func CrossMatch(recs []PhotometryRecord, catalog []CatalogStar, band string, tol unit.Angle) []CrossMatchRecord {
	matches := make([]CrossMatchRecord, 0, len(recs))
	for _, rec := range recs {
		if !rec.Valid || !rec.HasSky {
			continue
		}
		best := -1
		var bestSep unit.Angle
		for i, star := range catalog {
			if _, ok := star.Mags[band]; !ok {
				continue
			}
			sep := angularSeparation(rec.RA, rec.Dec, star.RA, star.Dec)
			if best < 0 || sep < bestSep {
				best = i
				bestSep = sep
			}
		}
		if best < 0 || bestSep > tol {
			continue
		}
		matches = append(matches, CrossMatchRecord{
			Phot:       rec,
			CatalogMag: catalog[best].Mags[band],
			Separation: bestSep,
		})
	}
	return matches
}
