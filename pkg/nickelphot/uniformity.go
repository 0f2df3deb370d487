package nickelphot

import "math"

// ZonePosition identifies a zone in the 3x3 background grid.
type ZonePosition int

const (
	ZoneTopLeft ZonePosition = iota
	ZoneTop
	ZoneTopRight
	ZoneLeft
	ZoneCenter
	ZoneRight
	ZoneBottomLeft
	ZoneBottom
	ZoneBottomRight
)

var zoneLabels = map[ZonePosition]string{
	ZoneTopLeft:     "TL",
	ZoneTop:         "T",
	ZoneTopRight:    "TR",
	ZoneLeft:        "L",
	ZoneCenter:      "Center",
	ZoneRight:       "R",
	ZoneBottomLeft:  "BL",
	ZoneBottom:      "B",
	ZoneBottomRight: "BR",
}

var cornerPositions = []ZonePosition{ZoneTopLeft, ZoneTopRight, ZoneBottomLeft, ZoneBottomRight}

// ZoneSky holds robust background statistics for one zone.
type ZoneSky struct {
	Label     string
	MedianSky float64
	SkyRMS    float64
	N         int
}

// UniformityAnalysis reports how flat a frame's background is across a 3x3
// grid. A strong gradient usually means a bad flat field or scattered light.
type UniformityAnalysis struct {
	Zones       map[ZonePosition]ZoneSky
	GradientPct float64 // (worst - best corner) / center median, percent
	BestCorner  string
	WorstCorner string
}

const zoneEdgeFraction = 1.0 / 3.0

// AnalyzeBackgroundUniformity sigma-clips each zone of a 3x3 grid over the
// frame and compares corner background levels against the center.
func AnalyzeBackgroundUniformity(frame *Frame, clip SigmaClipParams) (*UniformityAnalysis, error) {
	width, height := frame.Width(), frame.Height()
	if width == 0 || height == 0 {
		return nil, &InsufficientDataError{Context: "empty frame"}
	}
	data := frame.Data.DataFloat32()

	xLo := int(float64(width) * zoneEdgeFraction)
	xHi := int(float64(width) * (1.0 - zoneEdgeFraction))
	yLo := int(float64(height) * zoneEdgeFraction)
	yHi := int(float64(height) * (1.0 - zoneEdgeFraction))

	xBounds := [3][2]int{{0, xLo}, {xLo, xHi}, {xHi, width}}
	yBounds := [3][2]int{{0, yLo}, {yLo, yHi}, {yHi, height}}
	zoneGrid := [3][3]ZonePosition{
		{ZoneTopLeft, ZoneTop, ZoneTopRight},
		{ZoneLeft, ZoneCenter, ZoneRight},
		{ZoneBottomLeft, ZoneBottom, ZoneBottomRight},
	}

	zones := make(map[ZonePosition]ZoneSky, 9)
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			pos := zoneGrid[row][col]
			values := make([]float64, 0, (xBounds[col][1]-xBounds[col][0])*(yBounds[row][1]-yBounds[row][0]))
			for y := yBounds[row][0]; y < yBounds[row][1]; y++ {
				for x := xBounds[col][0]; x < xBounds[col][1]; x++ {
					v := float64(data[y*width+x])
					if math.IsNaN(v) {
						continue
					}
					values = append(values, v)
				}
			}
			stats, err := sigmaClippedValues(values, clip)
			if err != nil {
				zones[pos] = ZoneSky{Label: zoneLabels[pos]}
				continue
			}
			zones[pos] = ZoneSky{
				Label:     zoneLabels[pos],
				MedianSky: stats.Median,
				SkyRMS:    stats.StdDev,
				N:         stats.N,
			}
		}
	}

	result := &UniformityAnalysis{Zones: zones}

	center := zones[ZoneCenter].MedianSky
	if center == 0 {
		return result, nil
	}

	bestSky := math.MaxFloat64
	worstSky := -math.MaxFloat64
	var bestPos, worstPos ZonePosition
	found := false
	for _, pos := range cornerPositions {
		z := zones[pos]
		if z.N == 0 {
			continue
		}
		found = true
		if z.MedianSky < bestSky {
			bestSky = z.MedianSky
			bestPos = pos
		}
		if z.MedianSky > worstSky {
			worstSky = z.MedianSky
			worstPos = pos
		}
	}
	if found {
		result.BestCorner = zoneLabels[bestPos]
		result.WorstCorner = zoneLabels[worstPos]
		result.GradientPct = (worstSky - bestSky) / center * 100
	}
	return result, nil
}
