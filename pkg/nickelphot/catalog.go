package nickelphot

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/soniakeys/unit"
)

// CatalogStar is one reference star from an all-sky photometric catalog.
type CatalogStar struct {
	RA   unit.Angle
	Dec  unit.Angle
	Mags map[string]float64 // calibrated magnitude per band, e.g. "B", "V"
}

// Catalog serves reference stars for a sky region. Implementations are
// external services; the pipeline only depends on this interface, so tests
// run against an in-memory fake.
type Catalog interface {
	// ConeSearch returns all catalog stars within radius of (ra, dec).
	ConeSearch(ctx context.Context, ra, dec, radius unit.Angle) ([]CatalogStar, error)
}

// HTTPCatalog queries a catalog cross-match service over HTTP. The service
// is expected to answer a GET cone-search request with CSV rows of
// ra_deg,dec_deg followed by one magnitude column per requested band.
type HTTPCatalog struct {
	BaseURL string
	ID      string   // catalog identifier, e.g. "apass9"
	Bands   []string // magnitude columns, in response order
	Client  *http.Client
}

func NewHTTPCatalog(baseURL, id string, bands []string) *HTTPCatalog {
	return &HTTPCatalog{
		BaseURL: baseURL,
		ID:      id,
		Bands:   bands,
		Client:  &http.Client{},
	}
}

func (c *HTTPCatalog) ConeSearch(ctx context.Context, ra, dec, radius unit.Angle) ([]CatalogStar, error) {
	q := url.Values{}
	q.Set("catalog", c.ID)
	q.Set("ra", strconv.FormatFloat(ra.Deg(), 'f', -1, 64))
	q.Set("dec", strconv.FormatFloat(dec.Deg(), 'f', -1, 64))
	q.Set("radius", strconv.FormatFloat(radius.Deg(), 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, &CatalogQueryError{Catalog: c.ID, Err: err}
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, &CatalogQueryError{Catalog: c.ID, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &CatalogQueryError{
			Catalog: c.ID,
			Err:     fmt.Errorf("status %d: %s", resp.StatusCode, body),
		}
	}

	stars, err := parseCatalogCSV(resp.Body, c.Bands)
	if err != nil {
		return nil, &CatalogQueryError{Catalog: c.ID, Err: err}
	}
	return stars, nil
}

// parseCatalogCSV reads ra,dec,mag... rows. A header row is detected by a
// non-numeric first field and skipped. Unparsable magnitude cells (empty,
// "NA") drop that band for that star rather than failing the query.
func parseCatalogCSV(r io.Reader, bands []string) ([]CatalogStar, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var stars []CatalogStar
	first := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading catalog CSV: %w", err)
		}
		if len(row) < 2+len(bands) {
			return nil, fmt.Errorf("catalog row has %d columns, want %d", len(row), 2+len(bands))
		}
		ra, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			if first {
				first = false
				continue // header row
			}
			return nil, fmt.Errorf("bad RA %q: %w", row[0], err)
		}
		first = false
		dec, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad Dec %q: %w", row[1], err)
		}

		star := CatalogStar{
			RA:   unit.AngleFromDeg(ra),
			Dec:  unit.AngleFromDeg(dec),
			Mags: make(map[string]float64, len(bands)),
		}
		for i, band := range bands {
			if mag, err := strconv.ParseFloat(row[2+i], 64); err == nil {
				star.Mags[band] = mag
			}
		}
		stars = append(stars, star)
	}
	return stars, nil
}
