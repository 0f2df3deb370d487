package nickelphot

import "fmt"

// Frame is one calibrated science exposure: a pixel grid in counts plus the
// detector metadata the photometry stages need. A Frame is treated as
// immutable once loaded; no pipeline stage writes to its pixels.
type Frame struct {
	Data Mat

	Name         string
	Band         string
	ExposureTime float64 // seconds
	Gain         float64 // electrons per count
	ReadNoise    float64 // electrons

	// WCS is nil until the frame either carried a solution in its header
	// or one was obtained from a plate-solving service.
	WCS *TanWCS
}

func (f *Frame) Width() int  { return f.Data.Cols() }
func (f *Frame) Height() int { return f.Data.Rows() }

// FrameFromFITS loads a calibrated frame, pulling exposure time, gain, read
// noise, band and any WCS solution out of the header. Exposure time and gain
// are required; read noise defaults to zero when absent.
func FrameFromFITS(path string) (*Frame, error) {
	fits, err := ReadFits(path)
	if err != nil {
		return nil, err
	}

	expTime, ok := fits.Metadata.ExposureTime()
	if !ok || expTime <= 0 {
		return nil, fmt.Errorf("%s: missing or non-positive EXPTIME", path)
	}
	gain, ok := fits.Metadata.Gain()
	if !ok || gain <= 0 {
		return nil, fmt.Errorf("%s: missing or non-positive GAIN", path)
	}
	readNoise, _ := fits.Metadata.ReadNoise()

	frame := &Frame{
		Data:         NewMatFromFloat32(fits.Height, fits.Width, fits.Pixels),
		Name:         fits.Metadata.ObjectName(),
		Band:         fits.Metadata.Filter(),
		ExposureTime: expTime,
		Gain:         gain,
		ReadNoise:    readNoise,
	}

	// A pre-solved header is optional; frames without one go through the
	// plate-solving service instead.
	if wcs, err := TanWCSFromMetadata(fits.Metadata); err == nil {
		frame.WCS = wcs
	}
	return frame, nil
}
