package ir

import "fmt"

// MaxOpArgs bounds the operand list of an operation application
const MaxOpArgs = 9

// TypeRule selects how the result type of an operation is derived
type TypeRule int

const (
	// RuleConst yields a fixed type regardless of operands
	RuleConst TypeRule = iota + 1
	// RuleMax yields the highest ranked operand type
	RuleMax
)

// Operation describes one entry of the op table
type Operation struct {
	Code      OpCode
	Name      string // macro name in generated code
	Arity     int
	Rule      TypeRule
	ConstType Type // only meaningful for RuleConst
}

func (o *Operation) String() string { return o.Name }

type OpCode int

const (
	OpNop OpCode = iota
	OpAdd
	OpSub
	OpNeg
	OpMul
	OpDiv
	OpMod
	OpAbs
	OpMin
	OpMax
	OpSqrt
	OpHypot
	OpSin
	OpCos
	OpTan
	OpAsin
	OpAcos
	OpAtan
	OpAtan2
	OpPow
	OpExp
	OpLog
	OpSinh
	OpCosh
	OpTanh
	OpAsinh
	OpAcosh
	OpAtanh
	OpGamma
	OpFloor
	OpEq
	OpLess
	OpLeq
	OpNot
	OpPrint
	OpNewline
	OpOrigVal
	OpRed
	OpGreen
	OpBlue
	OpAlpha
	OpComplex
	OpCReal
	OpCImag
	OpCSqrt
	OpCSin
	OpCCos
	OpCTan
	OpCAsin
	OpCAcos
	OpCAtan
	OpCPow
	OpCExp
	OpCLog
	OpCArg
	OpCSinh
	OpCCosh
	OpCTanh
	OpCAsinh
	OpCAcosh
	OpCAtanh
	OpCGamma
	OpMakeM2x2
	OpMakeM3x3
	OpFreeMatrix
	OpMakeV2
	OpMakeV3
	OpFreeVector
	OpVectorNth
	OpSolveLinear2
	OpSolveLinear3
	OpNoise
	OpRand
	OpUserValInt
	OpUserValFloat
	OpUserValBool
	OpUserValCurve
	OpUserValColor
	OpUserValGradient

	NumOps
)

func (c OpCode) String() string {
	if c >= 0 && c < NumOps {
		return Ops[c].Name
	}
	return fmt.Sprintf("op(%d)", int(c))
}

// Op returns the descriptor for c
func (c OpCode) Op() *Operation {
	return &Ops[c]
}

func constOp(name string, arity int, t Type) Operation {
	return Operation{Name: name, Arity: arity, Rule: RuleConst, ConstType: t}
}

func maxOp(name string, arity int) Operation {
	return Operation{Name: name, Arity: arity, Rule: RuleMax}
}

// Ops is the fixed operation table, indexed by OpCode
var Ops = [NumOps]Operation{
	OpNop:   constOp("NOP", 0, TypeInt),
	OpAdd:   maxOp("ADD", 2),
	OpSub:   maxOp("SUB", 2),
	OpNeg:   maxOp("NEG", 1),
	OpMul:   maxOp("MUL", 2),
	OpDiv:   constOp("DIV", 2, TypeFloat),
	OpMod:   constOp("MOD", 2, TypeFloat),
	OpAbs:   maxOp("ABS", 1),
	OpMin:   maxOp("MIN", 2),
	OpMax:   maxOp("MAX", 2),
	OpSqrt:  constOp("SQRT", 1, TypeFloat),
	OpHypot: constOp("HYPOT", 2, TypeFloat),
	OpSin:   constOp("SIN", 1, TypeFloat),
	OpCos:   constOp("COS", 1, TypeFloat),
	OpTan:   constOp("TAN", 1, TypeFloat),
	OpAsin:  constOp("ASIN", 1, TypeFloat),
	OpAcos:  constOp("ACOS", 1, TypeFloat),
	OpAtan:  constOp("ATAN", 1, TypeFloat),
	OpAtan2: constOp("ATAN2", 2, TypeFloat),
	OpPow:   constOp("POW", 2, TypeFloat),
	OpExp:   constOp("EXP", 1, TypeFloat),
	OpLog:   constOp("LOG", 1, TypeFloat),
	OpSinh:  constOp("SINH", 1, TypeFloat),
	OpCosh:  constOp("COSH", 1, TypeFloat),
	OpTanh:  constOp("TANH", 1, TypeFloat),
	OpAsinh: constOp("ASINH", 1, TypeFloat),
	OpAcosh: constOp("ACOSH", 1, TypeFloat),
	OpAtanh: constOp("ATANH", 1, TypeFloat),
	OpGamma: constOp("GAMMA", 1, TypeFloat),
	OpFloor: constOp("FLOOR", 1, TypeInt),

	OpEq:      constOp("EQ", 2, TypeInt),
	OpLess:    constOp("LESS", 2, TypeInt),
	OpLeq:     constOp("LEQ", 2, TypeInt),
	OpNot:     constOp("NOT", 1, TypeInt),
	OpPrint:   constOp("PRINT", 1, TypeInt),
	OpNewline: constOp("NEWLINE", 0, TypeInt),

	OpOrigVal: constOp("ORIG_VAL", 4, TypeColor),
	OpRed:     constOp("RED_FLOAT", 1, TypeFloat),
	OpGreen:   constOp("GREEN_FLOAT", 1, TypeFloat),
	OpBlue:    constOp("BLUE_FLOAT", 1, TypeFloat),
	OpAlpha:   constOp("ALPHA_FLOAT", 1, TypeFloat),

	OpComplex: constOp("COMPLEX", 2, TypeComplex),
	OpCReal:   constOp("C_REAL", 1, TypeFloat),
	OpCImag:   constOp("C_IMAG", 1, TypeFloat),
	OpCSqrt:   constOp("C_SQRT", 1, TypeComplex),
	OpCSin:    constOp("C_SIN", 1, TypeComplex),
	OpCCos:    constOp("C_COS", 1, TypeComplex),
	OpCTan:    constOp("C_TAN", 1, TypeComplex),
	OpCAsin:   constOp("C_ASIN", 1, TypeComplex),
	OpCAcos:   constOp("C_ACOS", 1, TypeComplex),
	OpCAtan:   constOp("C_ATAN", 1, TypeComplex),
	OpCPow:    constOp("C_POW", 2, TypeComplex),
	OpCExp:    constOp("C_EXP", 1, TypeComplex),
	OpCLog:    constOp("C_LOG", 1, TypeComplex),
	OpCArg:    constOp("C_ARG", 1, TypeFloat),
	OpCSinh:   constOp("C_SINH", 1, TypeComplex),
	OpCCosh:   constOp("C_COSH", 1, TypeComplex),
	OpCTanh:   constOp("C_TANH", 1, TypeComplex),
	OpCAsinh:  constOp("C_ASINH", 1, TypeComplex),
	OpCAcosh:  constOp("C_ACOSH", 1, TypeComplex),
	OpCAtanh:  constOp("C_ATANH", 1, TypeComplex),
	OpCGamma:  constOp("C_GAMMA", 1, TypeComplex),

	OpMakeM2x2:     constOp("MAKE_M2X2", 4, TypeMatrix),
	OpMakeM3x3:     constOp("MAKE_M3X3", 9, TypeMatrix),
	OpFreeMatrix:   constOp("FREE_MATRIX", 1, TypeInt),
	OpMakeV2:       constOp("MAKE_V2", 2, TypeVector),
	OpMakeV3:       constOp("MAKE_V3", 3, TypeVector),
	OpFreeVector:   constOp("FREE_VECTOR", 1, TypeInt),
	OpVectorNth:    constOp("VECTOR_NTH", 2, TypeFloat),
	OpSolveLinear2: constOp("SOLVE_LINEAR_2", 2, TypeVector),
	OpSolveLinear3: constOp("SOLVE_LINEAR_3", 2, TypeVector),

	OpNoise: constOp("NOISE", 3, TypeFloat),
	OpRand:  constOp("RAND", 2, TypeFloat),

	OpUserValInt:      constOp("USERVAL_INT", 1, TypeInt),
	OpUserValFloat:    constOp("USERVAL_FLOAT", 1, TypeFloat),
	OpUserValBool:     constOp("USERVAL_BOOL", 1, TypeInt),
	OpUserValCurve:    constOp("USERVAL_CURVE", 2, TypeFloat),
	OpUserValColor:    constOp("USERVAL_COLOR", 1, TypeColor),
	OpUserValGradient: constOp("USERVAL_GRADIENT", 2, TypeColor),
}

func init() {
	for i := range Ops {
		Ops[i].Code = OpCode(i)
		if Ops[i].Arity > MaxOpArgs {
			panic(fmt.Sprintf("op %s takes %d arguments, limit is %d", Ops[i].Name, Ops[i].Arity, MaxOpArgs))
		}
	}
}
