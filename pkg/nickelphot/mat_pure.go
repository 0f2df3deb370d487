//go:build purego || js

package nickelphot

import "math"

// Mat is a pure Go 2D float32 pixel grid, row-major.
type Mat struct {
	data []float32
	rows int
	cols int
}

func NewMatWithSize(rows, cols int) Mat {
	return Mat{data: make([]float32, rows*cols), rows: rows, cols: cols}
}

// NewMatFromFloat32 wraps an existing row-major slice. The Mat takes ownership
// of the slice.
func NewMatFromFloat32(rows, cols int, data []float32) Mat {
	return Mat{data: data, rows: rows, cols: cols}
}

func (m Mat) Rows() int   { return m.rows }
func (m Mat) Cols() int   { return m.cols }
func (m Mat) Empty() bool { return m.data == nil || m.rows == 0 || m.cols == 0 }

func (m Mat) Clone() Mat {
	newData := make([]float32, len(m.data))
	copy(newData, m.data)
	return Mat{data: newData, rows: m.rows, cols: m.cols}
}

func (m *Mat) Close() {
	m.data = nil
	m.rows = 0
	m.cols = 0
}

// DataFloat32 returns the backing row-major float32 slice.
func (m Mat) DataFloat32() []float32 { return m.data }

func matMeanStdDev(m Mat) (float64, float64) {
	n := m.rows * m.cols
	if n == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range m.data {
		sum += float64(v)
	}
	mean := sum / float64(n)
	var sse float64
	for _, v := range m.data {
		d := float64(v) - mean
		sse += d * d
	}
	return mean, math.Sqrt(sse / float64(n))
}
