package interp

import (
	"fmt"
	"math"
	"math/cmplx"

	"mathmap/internal/errors"
	"mathmap/internal/ir"
	"mathmap/internal/mathlib"
)

func maxType(args []value) ir.Type {
	t := ir.TypeInt
	for _, a := range args {
		if a.t > t {
			t = a.t
		}
	}
	return t
}

// arith applies a max-rule operation in the widest operand type
func arith(args []value, ints func(a, b int64) int64, floats func(a, b float32) float32, cplx func(a, b complex128) complex128) value {
	a, b := args[0], args[len(args)-1]
	switch maxType(args) {
	case ir.TypeInt:
		return intValue(int32(ints(int64(a.int()), int64(b.int()))))
	case ir.TypeFloat:
		return floatValue(floats(a.float(), b.float()))
	case ir.TypeColor:
		return colorValue(mathlib.Color(uint32(ints(int64(a.color()), int64(b.color())))))
	default:
		return complexValue(cplx(a.n, b.n))
	}
}

func f32(fn func(float64) float64) func(value) value {
	return func(a value) value { return floatValue(float32(fn(float64(a.float())))) }
}

func c64(fn func(complex128) complex128) func(value) value {
	return func(a value) value { return complexValue(fn(complexValue(a.n).n)) }
}

var floatUnary = map[ir.OpCode]func(value) value{
	ir.OpSqrt:  f32(math.Sqrt),
	ir.OpSin:   f32(math.Sin),
	ir.OpCos:   f32(math.Cos),
	ir.OpTan:   f32(math.Tan),
	ir.OpAsin:  f32(math.Asin),
	ir.OpAcos:  f32(math.Acos),
	ir.OpAtan:  f32(math.Atan),
	ir.OpExp:   f32(math.Exp),
	ir.OpLog:   f32(math.Log),
	ir.OpSinh:  f32(math.Sinh),
	ir.OpCosh:  f32(math.Cosh),
	ir.OpTanh:  f32(math.Tanh),
	ir.OpAsinh: f32(math.Asinh),
	ir.OpAcosh: f32(math.Acosh),
	ir.OpAtanh: f32(math.Atanh),
	ir.OpGamma: f32(math.Gamma),

	ir.OpCSqrt:  c64(cmplx.Sqrt),
	ir.OpCSin:   c64(cmplx.Sin),
	ir.OpCCos:   c64(cmplx.Cos),
	ir.OpCTan:   c64(cmplx.Tan),
	ir.OpCAsin:  c64(cmplx.Asin),
	ir.OpCAcos:  c64(cmplx.Acos),
	ir.OpCAtan:  c64(cmplx.Atan),
	ir.OpCExp:   c64(cmplx.Exp),
	ir.OpCLog:   c64(cmplx.Log),
	ir.OpCSinh:  c64(cmplx.Sinh),
	ir.OpCCosh:  c64(cmplx.Cosh),
	ir.OpCTanh:  c64(cmplx.Tanh),
	ir.OpCAsinh: c64(cmplx.Asinh),
	ir.OpCAcosh: c64(cmplx.Acosh),
	ir.OpCAtanh: c64(cmplx.Atanh),
	ir.OpCGamma: c64(mathlib.CGamma),
}

func compareReal(a, b value, cmp func(x, y float64) bool) value {
	if a.t == ir.TypeInt && b.t == ir.TypeInt {
		return boolValue(cmp(float64(a.int()), float64(b.int())))
	}
	return boolValue(cmp(real(a.n), real(b.n)))
}

func (m *Machine) apply(r *ir.Rhs, args []value) value {
	code := r.Op.Code

	if fn, ok := floatUnary[code]; ok {
		return fn(args[0])
	}

	switch code {
	case ir.OpNop:
		return intValue(0)

	case ir.OpAdd:
		return arith(args, func(a, b int64) int64 { return a + b },
			func(a, b float32) float32 { return a + b },
			func(a, b complex128) complex128 { return a + b })
	case ir.OpSub:
		return arith(args, func(a, b int64) int64 { return a - b },
			func(a, b float32) float32 { return a - b },
			func(a, b complex128) complex128 { return a - b })
	case ir.OpMul:
		return arith(args, func(a, b int64) int64 { return a * b },
			func(a, b float32) float32 { return a * b },
			func(a, b complex128) complex128 { return a * b })
	case ir.OpNeg:
		return arith(args, func(a, _ int64) int64 { return -a },
			func(a, _ float32) float32 { return -a },
			func(a, _ complex128) complex128 { return -a })
	case ir.OpAbs:
		return arith(args, func(a, _ int64) int64 {
			if a < 0 {
				return -a
			}
			return a
		}, func(a, _ float32) float32 {
			return float32(math.Abs(float64(a)))
		}, func(a, _ complex128) complex128 {
			return complex(cmplx.Abs(a), 0)
		})
	case ir.OpMin:
		return arith(args, func(a, b int64) int64 { return min(a, b) },
			func(a, b float32) float32 {
				if a < b {
					return a
				}
				return b
			},
			func(a, b complex128) complex128 {
				if real(a) < real(b) {
					return a
				}
				return b
			})
	case ir.OpMax:
		return arith(args, func(a, b int64) int64 { return max(a, b) },
			func(a, b float32) float32 {
				if a > b {
					return a
				}
				return b
			},
			func(a, b complex128) complex128 {
				if real(a) > real(b) {
					return a
				}
				return b
			})

	case ir.OpDiv:
		return floatValue(args[0].float() / args[1].float())
	case ir.OpMod:
		return floatValue(float32(math.Mod(float64(args[0].float()), float64(args[1].float()))))
	case ir.OpHypot:
		return floatValue(float32(math.Hypot(float64(args[0].float()), float64(args[1].float()))))
	case ir.OpAtan2:
		return floatValue(float32(math.Atan2(float64(args[0].float()), float64(args[1].float()))))
	case ir.OpPow:
		return floatValue(float32(math.Pow(float64(args[0].float()), float64(args[1].float()))))
	case ir.OpFloor:
		return intValue(floatValue(float32(math.Floor(float64(args[0].float())))).int())

	case ir.OpEq:
		if args[0].t == ir.TypeComplex || args[1].t == ir.TypeComplex {
			return boolValue(complexValue(args[0].n) == complexValue(args[1].n))
		}
		return compareReal(args[0], args[1], func(x, y float64) bool { return x == y })
	case ir.OpLess:
		return compareReal(args[0], args[1], func(x, y float64) bool { return x < y })
	case ir.OpLeq:
		return compareReal(args[0], args[1], func(x, y float64) bool { return x <= y })
	case ir.OpNot:
		return boolValue(!args[0].truthy())

	case ir.OpPrint:
		if m.env.Output != nil {
			fmt.Fprintf(m.env.Output, "%f ", real(args[0].n))
		}
		return intValue(0)
	case ir.OpNewline:
		if m.env.Output != nil {
			fmt.Fprintln(m.env.Output)
		}
		return intValue(0)

	case ir.OpOrigVal:
		return colorValue(m.env.Sampler.Sample(args[0].float(), args[1].float(), int(args[2].int())))
	case ir.OpRed:
		return floatValue(args[0].color().RedFloat())
	case ir.OpGreen:
		return floatValue(args[0].color().GreenFloat())
	case ir.OpBlue:
		return floatValue(args[0].color().BlueFloat())
	case ir.OpAlpha:
		return floatValue(args[0].color().AlphaFloat())

	case ir.OpComplex:
		return complexValue(complex(float64(args[0].float()), float64(args[1].float())))
	case ir.OpCReal:
		return floatValue(float32(real(args[0].n)))
	case ir.OpCImag:
		return floatValue(float32(imag(args[0].n)))
	case ir.OpCArg:
		return floatValue(float32(cmplx.Phase(args[0].n)))
	case ir.OpCPow:
		return complexValue(cmplx.Pow(args[0].n, args[1].n))

	case ir.OpMakeM2x2:
		return value{t: ir.TypeMatrix, m: mathlib.NewMatrix2x2(
			args[0].float(), args[1].float(), args[2].float(), args[3].float())}
	case ir.OpMakeM3x3:
		f := make([]float32, 9)
		for i := range f {
			f[i] = args[i].float()
		}
		return value{t: ir.TypeMatrix, m: mathlib.NewMatrix3x3(f[0], f[1], f[2], f[3], f[4], f[5], f[6], f[7], f[8])}
	case ir.OpMakeV2, ir.OpMakeV3:
		f := make([]float32, len(args))
		for i := range f {
			f[i] = args[i].float()
		}
		return value{t: ir.TypeVector, v: mathlib.NewVector(f...)}
	case ir.OpFreeMatrix, ir.OpFreeVector:
		return intValue(0)
	case ir.OpVectorNth:
		if args[0].v == nil {
			return floatValue(0)
		}
		return floatValue(args[0].v.Nth(int(args[1].int())))
	case ir.OpSolveLinear2, ir.OpSolveLinear3:
		if args[0].m == nil || args[1].v == nil {
			panic(errors.Internal("interp", "solving with an unset matrix or vector"))
		}
		x, err := mathlib.Solve(args[0].m, args[1].v)
		if err != nil {
			panic(errors.Internal("interp", "solve: %v", err))
		}
		return value{t: ir.TypeVector, v: x}

	case ir.OpNoise:
		return floatValue(mathlib.Noise(args[0].float(), args[1].float(), args[2].float()))
	case ir.OpRand:
		return floatValue(m.rand.Float(args[0].float(), args[1].float()))

	case ir.OpUserValInt:
		return intValue(at(m.env.UserInts, args[0].int()))
	case ir.OpUserValFloat:
		return floatValue(at(m.env.UserFloats, args[0].int()))
	case ir.OpUserValBool:
		return boolValue(at(m.env.UserBools, args[0].int()))
	case ir.OpUserValCurve:
		return floatValue(mathlib.SampleCurve(at(m.env.UserCurves, args[0].int()), args[1].float()))
	case ir.OpUserValColor:
		return colorValue(at(m.env.UserColors, args[0].int()))
	case ir.OpUserValGradient:
		return colorValue(mathlib.SampleGradient(at(m.env.UserGradients, args[0].int()), args[1].float()))
	}

	panic(errors.Internal("interp", "operation %v is not implemented", r.Op))
}
