package interp

import (
	"math"

	"mathmap/internal/ir"
	"mathmap/internal/mathlib"
)

// value is one storage cell. Numeric types share n: ints and colours hold
// their integral value in the real part, floats a float32 rounded real part
// and complex numbers complex64 rounded parts.
type value struct {
	t ir.Type
	n complex128
	m *mathlib.Matrix
	v *mathlib.Vector
}

func intValue(i int32) value       { return value{t: ir.TypeInt, n: complex(float64(i), 0)} }
func floatValue(f float32) value   { return value{t: ir.TypeFloat, n: complex(float64(f), 0)} }
func colorValue(c mathlib.Color) value {
	return value{t: ir.TypeColor, n: complex(float64(c), 0)}
}

func complexValue(c complex128) value {
	return value{t: ir.TypeComplex, n: complex(float64(float32(real(c))), float64(float32(imag(c))))}
}

func boolValue(b bool) value {
	if b {
		return intValue(1)
	}
	return intValue(0)
}

func (v value) float() float32 { return float32(real(v.n)) }

func (v value) int() int32 {
	f := real(v.n)
	if math.IsNaN(f) || f >= math.MaxInt32+1 || f < math.MinInt32 {
		return math.MinInt32
	}
	return int32(f)
}

func (v value) color() mathlib.Color {
	f := real(v.n)
	if f < 0 || f > math.MaxUint32 || math.IsNaN(f) {
		return 0
	}
	return mathlib.Color(uint32(f))
}

func (v value) truthy() bool { return v.n != 0 }

// convert mirrors the implicit conversion of an assignment to a C
// variable of type t
func convert(v value, t ir.Type) value {
	if v.t == t {
		return v
	}
	switch t {
	case ir.TypeInt:
		return intValue(v.int())
	case ir.TypeFloat:
		return floatValue(v.float())
	case ir.TypeComplex:
		return complexValue(v.n)
	case ir.TypeColor:
		return colorValue(v.color())
	case ir.TypeMatrix:
		return value{t: t, m: v.m}
	case ir.TypeVector:
		return value{t: t, v: v.v}
	}
	return v
}

func zero(t ir.Type) value {
	return convert(intValue(0), t)
}
