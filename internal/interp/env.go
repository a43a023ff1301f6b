package interp

import (
	"io"

	"mathmap/internal/exprtree"
	"mathmap/internal/mathlib"
)

// Internals holds the per-pixel environment inputs indexed by
// exprtree.Internal.Index
type Internals [exprtree.NumInternals]float32

// Set stores an internal by its standard index
func (in *Internals) Set(index int, v float32) {
	in[index] = v
}

// Environment is the per-evaluator context: user values, source images
// and sampling configuration. Values outside the provided slices read as
// zero.
type Environment struct {
	UserInts      []int32
	UserFloats    []float32
	UserBools     []bool
	UserCurves    [][]float32
	UserColors    []mathlib.Color
	UserGradients [][]mathlib.Color

	Sampler mathlib.Sampler
	Seed    uint32

	// Output receives print and newline; nil discards
	Output io.Writer
}

func at[T any](s []T, i int32) T {
	var zero T
	if i < 0 || int(i) >= len(s) {
		return zero
	}
	return s[i]
}
