package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	np "nickelphot/pkg/nickelphot"
)

// loadSources reads a detector output CSV of x,y[,flux] rows. A header row
// with non-numeric first field is skipped.
func loadSources(path string) ([]np.SourceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening source list: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var sources []np.SourceRecord
	first := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading source list: %w", err)
		}
		if len(row) < 2 {
			return nil, fmt.Errorf("source row has %d columns, want at least 2", len(row))
		}
		x, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			if first {
				first = false
				continue
			}
			return nil, fmt.Errorf("bad x %q: %w", row[0], err)
		}
		first = false
		y, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad y %q: %w", row[1], err)
		}
		src := np.SourceRecord{X: x, Y: y}
		if len(row) > 2 {
			src.Flux, _ = strconv.ParseFloat(row[2], 64)
		}
		sources = append(sources, src)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%s: no sources", path)
	}
	return sources, nil
}
