package nickelphot

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// WriteCalibratedCSV writes one row per source: positions, fluxes,
// magnitudes, errors, calibrated magnitude. Invalid records are written with
// NaN magnitudes so row indices stay aligned with the source list.
func WriteCalibratedCSV(recs []CalibratedRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"x", "y", "ra_deg", "dec_deg", "raw_sum", "sky_per_pixel",
		"flux", "flux_err", "inst_mag", "inst_mag_err", "cal_mag", "valid"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range recs {
		row := []string{
			ff(r.X), ff(r.Y),
			ff(r.RA.Deg()), ff(r.Dec.Deg()),
			ff(r.RawSum), ff(r.SkyPerPixel),
			ff(r.Flux), ff(r.FluxErr),
			ff(r.InstMag), ff(r.InstMagErr),
			ff(r.CalMag),
			strconv.FormatBool(r.Valid),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteColorCSV writes the cross-band color table.
func WriteColorCSV(colors []ColorRecord, bandA, bandB, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"ra_deg", "dec_deg",
		"mag_" + bandA, "mag_" + bandB,
		bandA + "_minus_" + bandB, "sep_arcsec"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, c := range colors {
		row := []string{
			ff(c.A.RA.Deg()), ff(c.A.Dec.Deg()),
			ff(c.A.CalMag), ff(c.B.CalMag),
			ff(c.ColorIndex), ff(c.Separation.Sec()),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func ff(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
