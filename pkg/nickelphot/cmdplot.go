package nickelphot

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// RenderColorMagnitudeDiagram writes a PNG scatter of color index against
// calibrated magnitude in the first band, magnitude axis inverted so bright
// stars plot at the top.
func RenderColorMagnitudeDiagram(colors []ColorRecord, xLabel, yLabel, title, outputPath string) error {
	pts := make(plotter.XYs, 0, len(colors))
	for _, c := range colors {
		if math.IsNaN(c.ColorIndex) || math.IsNaN(c.A.CalMag) {
			continue
		}
		pts = append(pts, plotter.XY{X: c.ColorIndex, Y: c.A.CalMag})
	}
	if len(pts) == 0 {
		return fmt.Errorf("no finite color records to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("building scatter: %w", err)
	}
	scatter.Radius = vg.Points(1.5)
	p.Add(scatter)

	if err := p.Save(6*vg.Inch, 6*vg.Inch, outputPath); err != nil {
		return fmt.Errorf("saving CMD plot: %w", err)
	}
	return nil
}
