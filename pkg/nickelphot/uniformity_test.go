package nickelphot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeBackgroundUniformity(t *testing.T) {
	t.Parallel()

	t.Run("flat frame has no gradient", func(t *testing.T) {
		t.Parallel()
		frame := newTestFrame(90, 90, 500)

		ua, err := AnalyzeBackgroundUniformity(frame, NewSigmaClipParams())
		require.NoError(t, err)

		require.Len(t, ua.Zones, 9)
		for _, z := range ua.Zones {
			assert.Equal(t, 500.0, z.MedianSky, "zone %s", z.Label)
			assert.Equal(t, 0.0, z.SkyRMS, "zone %s", z.Label)
			assert.Equal(t, 30*30, z.N, "zone %s", z.Label)
		}
		assert.Equal(t, 0.0, ua.GradientPct)
	})

	t.Run("left-right ramp names the bright corner", func(t *testing.T) {
		t.Parallel()
		frame := newTestFrame(90, 90, 0)
		data := frame.Data.DataFloat32()
		for y := 0; y < 90; y++ {
			for x := 0; x < 90; x++ {
				data[y*90+x] = 100 + float32(x)
			}
		}

		ua, err := AnalyzeBackgroundUniformity(frame, NewSigmaClipParams())
		require.NoError(t, err)

		// Both right corners are brighter than both left corners; the
		// search keeps the first corner at each extreme.
		assert.Equal(t, "TL", ua.BestCorner)
		assert.Equal(t, "TR", ua.WorstCorner)
		assert.Greater(t, ua.GradientPct, 0.0)
		assert.Greater(t, ua.Zones[ZoneRight].MedianSky, ua.Zones[ZoneLeft].MedianSky)
	})

	t.Run("empty frame fails", func(t *testing.T) {
		t.Parallel()
		frame := &Frame{Data: NewMatWithSize(0, 0), ExposureTime: 1, Gain: 1}
		_, err := AnalyzeBackgroundUniformity(frame, NewSigmaClipParams())
		var ide *InsufficientDataError
		require.ErrorAs(t, err, &ide)
	})

	t.Run("zero center median suppresses the gradient", func(t *testing.T) {
		t.Parallel()
		frame := newTestFrame(90, 90, 0)

		ua, err := AnalyzeBackgroundUniformity(frame, NewSigmaClipParams())
		require.NoError(t, err)
		assert.Equal(t, 0.0, ua.GradientPct)
		assert.Empty(t, ua.BestCorner)
	})
}
