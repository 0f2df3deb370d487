package nickelphot

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fitsCard(key, value string) []byte {
	return []byte(fmt.Sprintf("%-8s= %-70s", key, value))
}

func fitsHeader(cards ...[]byte) []byte {
	var buf bytes.Buffer
	for _, c := range cards {
		buf.Write(c)
	}
	buf.Write([]byte(fmt.Sprintf("%-80s", "END")))
	for buf.Len()%2880 != 0 {
		buf.WriteByte(' ')
	}
	return buf.Bytes()
}

func TestReadFits(t *testing.T) {
	t.Parallel()

	t.Run("float pixels keep full precision", func(t *testing.T) {
		t.Parallel()
		pixels := []float32{0.5, -12.25, 1234.56, 99999.9, 1, 2}
		var buf bytes.Buffer
		buf.Write(fitsHeader(
			fitsCard("SIMPLE", "T"),
			fitsCard("BITPIX", "-32"),
			fitsCard("NAXIS", "2"),
			fitsCard("NAXIS1", "3"),
			fitsCard("NAXIS2", "2"),
			fitsCard("EXPTIME", "120.0"),
			fitsCard("GAIN", "1.8"),
			fitsCard("RDNOISE", "10.7"),
			fitsCard("FILTER", "'B       '"),
			fitsCard("OBJECT", "'NGC 1094'"),
		))
		for _, p := range pixels {
			binary.Write(&buf, binary.BigEndian, math.Float32bits(p))
		}

		fits, err := ReadFitsFromBytes(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, 3, fits.Width)
		assert.Equal(t, 2, fits.Height)
		assert.Equal(t, pixels, fits.Pixels)

		expTime, ok := fits.Metadata.ExposureTime()
		require.True(t, ok)
		assert.Equal(t, 120.0, expTime)
		gain, ok := fits.Metadata.Gain()
		require.True(t, ok)
		assert.Equal(t, 1.8, gain)
		readNoise, ok := fits.Metadata.ReadNoise()
		require.True(t, ok)
		assert.Equal(t, 10.7, readNoise)
		assert.Equal(t, "B", fits.Metadata.Filter())
		assert.Equal(t, "NGC 1094", fits.Metadata.ObjectName())
	})

	t.Run("16-bit pixels apply BZERO without clamping", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		buf.Write(fitsHeader(
			fitsCard("SIMPLE", "T"),
			fitsCard("BITPIX", "16"),
			fitsCard("NAXIS", "2"),
			fitsCard("NAXIS1", "2"),
			fitsCard("NAXIS2", "1"),
			fitsCard("BZERO", "32768"),
			fitsCard("BSCALE", "1"),
		))
		// Stored signed values -32768 and 32767 map to 0 and 65535.
		binary.Write(&buf, binary.BigEndian, int16(-32768))
		binary.Write(&buf, binary.BigEndian, int16(32767))

		fits, err := ReadFitsFromBytes(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, []float32{0, 65535}, fits.Pixels)
	})

	t.Run("truncated pixel data fails", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		buf.Write(fitsHeader(
			fitsCard("SIMPLE", "T"),
			fitsCard("BITPIX", "-32"),
			fitsCard("NAXIS", "2"),
			fitsCard("NAXIS1", "100"),
			fitsCard("NAXIS2", "100"),
		))
		buf.Write([]byte{1, 2, 3})

		_, err := ReadFitsFromBytes(buf.Bytes())
		assert.Error(t, err)
	})

	t.Run("missing axes fail", func(t *testing.T) {
		t.Parallel()
		buf := fitsHeader(
			fitsCard("SIMPLE", "T"),
			fitsCard("BITPIX", "-32"),
			fitsCard("NAXIS", "0"),
		)
		_, err := ReadFitsFromBytes(buf)
		assert.Error(t, err)
	})

	t.Run("comments after slash are stripped", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		buf.Write(fitsHeader(
			fitsCard("SIMPLE", "T"),
			fitsCard("BITPIX", "8"),
			fitsCard("NAXIS", "2"),
			fitsCard("NAXIS1", "1"),
			fitsCard("NAXIS2", "1"),
			fitsCard("EXPTIME", "60.0 / exposure seconds"),
		))
		buf.WriteByte(42)

		fits, err := ReadFitsFromBytes(buf.Bytes())
		require.NoError(t, err)
		expTime, ok := fits.Metadata.ExposureTime()
		require.True(t, ok)
		assert.Equal(t, 60.0, expTime)
		assert.Equal(t, []float32{42}, fits.Pixels)
	})
}

func TestFrameFromFITSMetadata(t *testing.T) {
	t.Parallel()

	t.Run("header WCS is attached when present", func(t *testing.T) {
		t.Parallel()
		m := NewFitsMetadata()
		m.Headers["CRVAL1"] = "180"
		m.Headers["CRVAL2"] = "45"
		m.Headers["CRPIX1"] = "1"
		m.Headers["CRPIX2"] = "1"
		m.Headers["CD1_1"] = "-1e-4"
		m.Headers["CD2_2"] = "1e-4"

		w, err := TanWCSFromMetadata(m)
		require.NoError(t, err)
		require.NotNil(t, w)
	})
}
