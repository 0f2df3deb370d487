package nickelphot

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// RenderApertureOverlay writes a JPG of the frame with the target aperture
// and sky annulus drawn over every photometered source, labelled with its
// instrumental magnitude. Intended for eyeballing aperture placement and
// annulus contamination.
func RenderApertureOverlay(frame *Frame, recs []PhotometryRecord, params *ApertureParams, outputPath string) error {
	img := renderOverlayImage(frame, recs, params)

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create overlay file: %w", err)
	}
	defer f.Close()

	return jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
}

func renderOverlayImage(frame *Frame, recs []PhotometryRecord, params *ApertureParams) *image.RGBA {
	width, height := frame.Width(), frame.Height()
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// Linear display stretch from mean to mean + 5 sigma.
	mean, sigma := matMeanStdDev(frame.Data)
	lo := mean
	hi := mean + 5*sigma
	if hi <= lo {
		hi = lo + 1
	}

	data := frame.Data.DataFloat32()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := float64(data[y*width+x])
			var g uint8
			if !math.IsNaN(v) {
				t := (v - lo) / (hi - lo)
				if t < 0 {
					t = 0
				} else if t > 1 {
					t = 1
				}
				g = uint8(t * 255)
			}
			img.Set(x, y, color.RGBA{g, g, g, 255})
		}
	}

	apColor := color.RGBA{80, 255, 80, 255}
	annColor := color.RGBA{80, 160, 255, 255}
	badColor := color.RGBA{255, 80, 80, 255}
	face := basicfont.Face7x13

	for _, rec := range recs {
		cx, cy := int(math.Round(rec.X)), int(math.Round(rec.Y))
		c := apColor
		if !rec.Valid {
			c = badColor
		}
		drawCircle(img, cx, cy, int(math.Round(params.Radius)), c)
		drawCircle(img, cx, cy, int(math.Round(params.AnnulusInner)), annColor)
		drawCircle(img, cx, cy, int(math.Round(params.AnnulusOuter)), annColor)

		label := "--"
		if rec.Valid {
			label = fmt.Sprintf("%.2f", rec.InstMag)
		}
		drawText(img, face, label, cx+int(params.AnnulusOuter)+3, cy+4, c)
	}
	return img
}

// drawText draws a string at (x, y) using the given font face.
func drawText(img *image.RGBA, face font.Face, s string, x, y int, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// drawCircle draws a circle outline using the midpoint algorithm.
func drawCircle(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	x := radius
	y := 0
	err := 0

	for x >= y {
		img.Set(cx+x, cy+y, c)
		img.Set(cx+y, cy+x, c)
		img.Set(cx-y, cy+x, c)
		img.Set(cx-x, cy+y, c)
		img.Set(cx-x, cy-y, c)
		img.Set(cx-y, cy-x, c)
		img.Set(cx+y, cy-x, c)
		img.Set(cx+x, cy-y, c)

		y++
		err += 1 + 2*y
		if 2*(err-x)+1 > 0 {
			x--
			err += 1 - 2*x
		}
	}
}
