package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/soniakeys/unit"

	np "nickelphot/pkg/nickelphot"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: nickelphot <config.yaml>")
	}
	cfg, err := np.LoadConfiguration(args[0])
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Output.Directory, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	var solver np.PlateSolver
	if cfg.Services.PlateSolveURL != "" {
		s := np.NewHTTPPlateSolver(cfg.Services.PlateSolveURL)
		s.Timeout = time.Duration(cfg.Services.SolveTimeoutSeconds) * time.Second
		solver = s
	}

	bandNames := make([]string, len(cfg.Bands))
	for i, b := range cfg.Bands {
		bandNames[i] = b.Name
	}
	catalog := np.NewHTTPCatalog(cfg.Services.CatalogURL, cfg.Calibration.Catalog, bandNames)

	params := cfg.ApertureParams()
	reducer := &np.Reducer{
		Photometer:     np.NewPhotometer(params, np.CCDNoise{}),
		Solver:         solver,
		Catalog:        catalog,
		MatchTolerance: unit.AngleFromSec(cfg.Calibration.MatchToleranceArcsec),
		Filter: np.SaturationFilter{
			MinDelta:    cfg.Calibration.MinDelta,
			MaxDelta:    cfg.Calibration.MaxDelta,
			BrightLimit: cfg.Calibration.BrightLimit,
		},
		MinMatches: cfg.Calibration.MinMatches,
		FallbackZP: cfg.Calibration.FallbackZeroPoint,
	}

	reductions := make([]*np.BandReduction, 0, len(cfg.Bands))
	for _, band := range cfg.Bands {
		red, err := reduceBand(reducer, params, band, cfg)
		if err != nil {
			return err
		}
		reductions = append(reductions, red)
	}

	if len(reductions) >= 2 {
		a, b := reductions[0], reductions[1]
		colors := np.MatchBands(a.Calibrated, b.Calibrated,
			unit.AngleFromSec(cfg.ColorToleranceArcsec))
		fmt.Printf("\nCross-band match %s x %s: %d pairs\n", a.Band, b.Band, len(colors))

		colorPath := filepath.Join(cfg.Output.Directory,
			fmt.Sprintf("color_%s%s.csv", a.Band, b.Band))
		if err := np.WriteColorCSV(colors, a.Band, b.Band, colorPath); err != nil {
			return err
		}
		fmt.Printf("Wrote: %s\n", colorPath)

		if cfg.Output.CMDPlot {
			plotPath := filepath.Join(cfg.Output.Directory,
				fmt.Sprintf("cmd_%s%s.png", a.Band, b.Band))
			xLabel := fmt.Sprintf("%s - %s", a.Band, b.Band)
			title := fmt.Sprintf("Color-magnitude diagram (%s)", a.Frame.Name)
			if err := np.RenderColorMagnitudeDiagram(colors, xLabel, a.Band, title, plotPath); err != nil {
				return err
			}
			fmt.Printf("Wrote: %s\n", plotPath)
		}
	}
	return nil
}

func reduceBand(reducer *np.Reducer, params *np.ApertureParams, band np.BandInput, cfg np.Configuration) (*np.BandReduction, error) {
	fmt.Printf("Loading: %s\n", band.Image)
	frame, err := np.FrameFromFITS(band.Image)
	if err != nil {
		return nil, err
	}
	if frame.Band == "" {
		frame.Band = band.Name
	}
	fmt.Printf("Frame loaded: %dx%d, exptime=%.1fs, gain=%.2f e-/ct\n",
		frame.Width(), frame.Height(), frame.ExposureTime, frame.Gain)

	sources, err := loadSources(band.Sources)
	if err != nil {
		return nil, err
	}

	reducer.Photometer.Noise = np.CCDNoise{ReadNoise: frame.ReadNoise}

	startTime := time.Now()
	red, err := reducer.Reduce(context.Background(), band.Name, frame, sources)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(startTime)

	fmt.Println()
	fmt.Printf("=== Band %s Reduction (%.1fs) ===\n", band.Name, elapsed.Seconds())
	fmt.Printf("  Sources:         %d\n", len(red.Sources))
	fmt.Printf("  Measured:        %d\n", red.ValidCount())
	fmt.Printf("  Cross-matched:   %d\n", len(red.Matches))
	if red.ZeroPoint.Fallback {
		fmt.Printf("  Zero point:      %.3f (fallback constant)\n", red.ZeroPoint.Value)
	} else {
		fmt.Printf("  Zero point:      %.3f (median of %d)\n", red.ZeroPoint.Value, red.ZeroPoint.N)
	}
	fmt.Println("==============================")

	if uniformity, err := np.AnalyzeBackgroundUniformity(frame, params.Clip); err == nil {
		fmt.Printf("  Sky gradient:    %.1f%% (best: %s, worst: %s)\n",
			uniformity.GradientPct, uniformity.BestCorner, uniformity.WorstCorner)
	}

	tablePath := filepath.Join(cfg.Output.Directory,
		fmt.Sprintf("phot_%s.csv", band.Name))
	if err := np.WriteCalibratedCSV(red.Calibrated, tablePath); err != nil {
		return nil, err
	}
	fmt.Printf("Wrote: %s\n", tablePath)

	if cfg.Output.Overlay {
		overlayPath := filepath.Join(cfg.Output.Directory,
			fmt.Sprintf("overlay_%s.jpg", band.Name))
		if err := np.RenderApertureOverlay(frame, red.Records, params, overlayPath); err != nil {
			return nil, err
		}
		fmt.Printf("Wrote: %s\n", overlayPath)
	}
	return red, nil
}
