package nickelphot

import "math"

// NoiseModel converts a measured count level into a one-sigma uncertainty.
// The photometer treats this as an opaque collaborator; the model's internals
// are parameterized, not derived here.
type NoiseModel interface {
	// Uncertainty returns the one-sigma error on value (counts), given the
	// local background RMS (counts per pixel) and the detector gain
	// (electrons per count).
	Uncertainty(value, backgroundRMS, gain float64) float64
}

// CCDNoise is the standard CCD signal-to-noise model: Poisson noise on the
// signal in electrons, plus background scatter and read noise as a per-pixel
// floor, expressed back in counts.
type CCDNoise struct {
	ReadNoise float64 // electrons
}

func (n CCDNoise) Uncertainty(value, backgroundRMS, gain float64) float64 {
	signal := value
	if signal < 0 {
		signal = 0
	}
	variance := signal/gain + backgroundRMS*backgroundRMS
	if gain > 0 {
		rn := n.ReadNoise / gain
		variance += rn * rn
	}
	return math.Sqrt(variance)
}
