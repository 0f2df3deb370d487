package nickelphot

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

/* Example config file ...

photometry:
  apertureradius: 8
  annulusinner: 12
  annulusouter: 18
  clipsigma: 3.0

calibration:
  catalog: apass9
  matchtolerancearcsec: 2.0
  mindelta: 2.0
  maxdelta: 30.0
  minmatches: 3

services:
  platesolveurl: http://nova.local/api/solve
  catalogurl: http://xmatch.local/api/cone
  solvetimeoutseconds: 120

bands:
  - name: B
    image: n1094_B.fits
    sources: n1094_B_sources.csv
  - name: V
    image: n1094_V.fits
    sources: n1094_V_sources.csv

output:
  directory: out
  overlay: true
  cmdplot: true

*/

type PhotometryOptions struct {
	ApertureRadius float64
	AnnulusInner   float64
	AnnulusOuter   float64
	SubPixels      int
	ClipSigma      float64
}

type CalibrationOptions struct {
	Catalog              string
	MatchToleranceArcsec float64
	MinDelta             float64
	MaxDelta             float64
	BrightLimit          float64
	MinMatches           int
	// FallbackZeroPoint substitutes this constant when too few matches
	// survive filtering. Nil (absent from the file) means fail instead.
	FallbackZeroPoint *float64
}

type ServiceOptions struct {
	PlateSolveURL       string
	CatalogURL          string
	SolveTimeoutSeconds int
}

type BandInput struct {
	Name    string
	Image   string
	Sources string
}

type OutputOptions struct {
	Directory string
	Overlay   bool
	CMDPlot   bool `yaml:"cmdplot"`
}

type Configuration struct {
	Photometry  PhotometryOptions
	Calibration CalibrationOptions
	Services    ServiceOptions
	Bands       []BandInput
	Output      OutputOptions

	// ColorToleranceArcsec bounds the cross-band nearest-neighbour join.
	ColorToleranceArcsec float64 `yaml:"colortolerancearcsec"`
}

func NewConfiguration() Configuration {
	return Configuration{}
}

func LoadConfiguration(filename string) (Configuration, error) {
	c := NewConfiguration()

	contents, err := os.ReadFile(filename)
	if err != nil {
		return c, fmt.Errorf("read '%s': %w", filename, err)
	}
	if err := yaml.Unmarshal(contents, &c); err != nil {
		return c, fmt.Errorf("parse '%s': %w", filename, err)
	}

	return c, c.FinalizeConfiguration()
}

// FinalizeConfiguration fills defaults and sanity-checks the result.
func (c *Configuration) FinalizeConfiguration() error {
	def := NewApertureParams()
	if c.Photometry.ApertureRadius == 0 {
		c.Photometry.ApertureRadius = def.Radius
	}
	if c.Photometry.AnnulusInner == 0 {
		c.Photometry.AnnulusInner = def.AnnulusInner
	}
	if c.Photometry.AnnulusOuter == 0 {
		c.Photometry.AnnulusOuter = def.AnnulusOuter
	}
	if c.Photometry.SubPixels == 0 {
		c.Photometry.SubPixels = def.SubPixels
	}
	if c.Photometry.ClipSigma == 0 {
		c.Photometry.ClipSigma = def.Clip.Sigma
	}

	if c.Calibration.MatchToleranceArcsec == 0 {
		c.Calibration.MatchToleranceArcsec = 2.0
	}
	if c.Calibration.MinMatches == 0 {
		c.Calibration.MinMatches = 3
	}
	if c.ColorToleranceArcsec == 0 {
		c.ColorToleranceArcsec = 3.0
	}
	if c.Services.SolveTimeoutSeconds == 0 {
		c.Services.SolveTimeoutSeconds = int(DefaultSolveTimeout.Seconds())
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "."
	}

	if len(c.Bands) == 0 {
		return fmt.Errorf("config lists no bands")
	}
	for _, b := range c.Bands {
		if b.Name == "" || b.Image == "" || b.Sources == "" {
			return fmt.Errorf("band entry missing name, image or sources: %+v", b)
		}
	}
	if c.Photometry.AnnulusInner <= c.Photometry.ApertureRadius {
		return fmt.Errorf("annulus inner radius %f must exceed aperture radius %f",
			c.Photometry.AnnulusInner, c.Photometry.ApertureRadius)
	}
	return nil
}

// ApertureParams converts the photometry section into measurement parameters.
func (c *Configuration) ApertureParams() *ApertureParams {
	p := NewApertureParams()
	p.Radius = c.Photometry.ApertureRadius
	p.AnnulusInner = c.Photometry.AnnulusInner
	p.AnnulusOuter = c.Photometry.AnnulusOuter
	p.SubPixels = c.Photometry.SubPixels
	p.Clip.Sigma = c.Photometry.ClipSigma
	return p
}
