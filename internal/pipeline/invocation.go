package pipeline

import (
	"mathmap/internal/exprtree"
	"mathmap/internal/mathlib"
)

// Limits shared with the C template. Changing any of them changes the
// invocation layout on both sides.
const (
	MaxTupleLength = 16
	CurvePoints    = 1024
	GradientPoints = 1024

	maxInternals = 16
	maxUserVals  = 8
	maxDrawables = 4
)

// Invocation mirrors mathmap_invocation_t of the C template field by field
type Invocation struct {
	Internals [maxInternals]float32

	UserInts      [maxUserVals]int32
	UserFloats    [maxUserVals]float32
	UserBools     [maxUserVals]int32
	UserCurves    [maxUserVals][CurvePoints]float32
	UserColors    [maxUserVals]uint32
	UserGradients [maxUserVals][GradientPoints]uint32

	EdgeBehaviour    int32
	Supersampling    int32
	Intersampling    int32
	MiddleX, MiddleY float32
	OriginX, OriginY float32
	EdgeColor        uint32
	RandState        uint32

	NumDrawables int32
	Drawables    [maxDrawables]InvocationDrawable

	Stack [1]Tuple
}

// InvocationDrawable mirrors mm_drawable_t
type InvocationDrawable struct {
	Width, Height, RowStride int32
	Data                     *byte
}

// Tuple mirrors tuple_t
type Tuple struct {
	Length int32
	Data   [MaxTupleLength]float32
}

// every standard internal needs a slot
const _ = uint(maxInternals - exprtree.NumInternals)

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// NewInvocation lays out env for the native entry point. User values past
// the invocation limits are dropped; curves and gradients are resampled to
// the fixed point counts.
func NewInvocation(env *Environment) *Invocation {
	inv := &Invocation{}
	if env == nil {
		env = &Environment{}
	}

	copy(inv.UserInts[:], env.UserInts)
	copy(inv.UserFloats[:], env.UserFloats)
	for i, b := range env.UserBools {
		if i == maxUserVals {
			break
		}
		inv.UserBools[i] = boolInt(b)
	}
	for i, c := range env.UserColors {
		if i == maxUserVals {
			break
		}
		inv.UserColors[i] = uint32(c)
	}
	for i, curve := range env.UserCurves {
		if i == maxUserVals {
			break
		}
		for p := range inv.UserCurves[i] {
			inv.UserCurves[i][p] = mathlib.SampleCurve(curve, float32(p)/(CurvePoints-1))
		}
	}
	for i, gradient := range env.UserGradients {
		if i == maxUserVals {
			break
		}
		for p := range inv.UserGradients[i] {
			inv.UserGradients[i][p] = uint32(mathlib.SampleGradient(gradient, float32(p)/(GradientPoints-1)))
		}
	}

	s := &env.Sampler
	inv.EdgeBehaviour = int32(s.Edge)
	inv.Supersampling = boolInt(s.Supersampling)
	inv.Intersampling = boolInt(s.Intersampling)
	inv.MiddleX, inv.MiddleY = s.MiddleX, s.MiddleY
	inv.OriginX, inv.OriginY = s.OriginX, s.OriginY
	inv.EdgeColor = uint32(s.EdgeColor)
	inv.RandState = mathlib.NewRand(env.Seed).State

	for i, d := range s.Drawables {
		if i == maxDrawables {
			break
		}
		inv.NumDrawables = int32(i + 1)
		if d == nil || len(d.Pix) == 0 {
			continue
		}
		inv.Drawables[i] = InvocationDrawable{
			Width:     int32(d.Width),
			Height:    int32(d.Height),
			RowStride: int32(d.RowStride),
			Data:      &d.Pix[0],
		}
	}
	return inv
}

// SetInternals stores the per-pixel inputs
func (inv *Invocation) SetInternals(in *Internals) {
	if in == nil {
		inv.Internals = [maxInternals]float32{}
		return
	}
	copy(inv.Internals[:], in[:])
}

// Result copies the tuple the entry point left in the result slot
func (inv *Invocation) Result() []float32 {
	t := &inv.Stack[0]
	n := min(max(int(t.Length), 0), MaxTupleLength)
	result := make([]float32, n)
	copy(result, t.Data[:n])
	return result
}
