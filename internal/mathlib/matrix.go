package mathlib

import tlerrors "tlog.app/go/errors"

// Matrix is a small dense row-major matrix
type Matrix struct {
	Rows, Cols int
	Data       []float32
}

// Vector is a small dense column vector
type Vector struct {
	Data []float32
}

func NewMatrix2x2(a, b, c, d float32) *Matrix {
	return &Matrix{Rows: 2, Cols: 2, Data: []float32{a, b, c, d}}
}

func NewMatrix3x3(a, b, c, d, e, f, g, h, i float32) *Matrix {
	return &Matrix{Rows: 3, Cols: 3, Data: []float32{a, b, c, d, e, f, g, h, i}}
}

func NewVector(data ...float32) *Vector {
	return &Vector{Data: append([]float32(nil), data...)}
}

// Nth returns component n, or 0 when n is out of range
func (v *Vector) Nth(n int) float32 {
	if n < 0 || n >= len(v.Data) {
		return 0
	}
	return v.Data[n]
}

// Solve returns x with m x = v
func Solve(m *Matrix, v *Vector) (*Vector, error) {
	if m.Rows != m.Cols || m.Rows != len(v.Data) {
		return nil, tlerrors.New("cannot solve %dx%d system with %d constants", m.Rows, m.Cols, len(v.Data))
	}
	x, err := SolveLinear(m.Rows, m.Data, v.Data)
	if err != nil {
		return nil, err
	}
	return &Vector{Data: x}, nil
}
