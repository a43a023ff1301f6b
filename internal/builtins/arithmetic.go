package builtins

import (
	tlerrors "tlog.app/go/errors"

	"mathmap/internal/ir"
)

func unary(name string, code ir.OpCode) *ir.Builtin {
	return &ir.Builtin{
		Name:         name,
		ResultLength: elementwise(1),
		Generate: func(s *ir.Session, args [][]*ir.Compvar, dest []*ir.Compvar) {
			for i := range dest {
				set(s, dest[i], ir.OpRhs(code, cv(args[0][i])))
			}
		},
	}
}

func binary(name string, code ir.OpCode) *ir.Builtin {
	return &ir.Builtin{
		Name:         name,
		ResultLength: elementwise(2),
		Generate: func(s *ir.Session, args [][]*ir.Compvar, dest []*ir.Compvar) {
			for i := range dest {
				set(s, dest[i], ir.OpRhs(code, cv(component(args[0], i)), cv(component(args[1], i))))
			}
		},
	}
}

func registerArithmetic(l *Library) {
	for _, b := range []struct {
		name string
		code ir.OpCode
	}{
		{"+", ir.OpAdd},
		{"*", ir.OpMul},
		{"/", ir.OpDiv},
		{"%", ir.OpMod},
		{"min", ir.OpMin},
		{"max", ir.OpMax},
		{"pow", ir.OpPow},
		{"atan2", ir.OpAtan2},
		{"hypot", ir.OpHypot},
	} {
		l.Register(binary(b.name, b.code))
	}

	for _, u := range []struct {
		name string
		code ir.OpCode
	}{
		{"abs", ir.OpAbs},
		{"sqrt", ir.OpSqrt},
		{"sin", ir.OpSin},
		{"cos", ir.OpCos},
		{"tan", ir.OpTan},
		{"asin", ir.OpAsin},
		{"acos", ir.OpAcos},
		{"atan", ir.OpAtan},
		{"exp", ir.OpExp},
		{"log", ir.OpLog},
		{"sinh", ir.OpSinh},
		{"cosh", ir.OpCosh},
		{"tanh", ir.OpTanh},
		{"asinh", ir.OpAsinh},
		{"acosh", ir.OpAcosh},
		{"atanh", ir.OpAtanh},
		{"gamma", ir.OpGamma},
		{"floor", ir.OpFloor},
	} {
		l.Register(unary(u.name, u.code))
	}

	// "-" negates with one argument and subtracts with two
	neg, sub := unary("-", ir.OpNeg), binary("-", ir.OpSub)
	l.Register(&ir.Builtin{
		Name: "-",
		ResultLength: func(lengths []int) (int, error) {
			if len(lengths) == 1 {
				return neg.ResultLength(lengths)
			}
			return sub.ResultLength(lengths)
		},
		Generate: func(s *ir.Session, args [][]*ir.Compvar, dest []*ir.Compvar) {
			if len(args) == 1 {
				neg.Generate(s, args, dest)
			} else {
				sub.Generate(s, args, dest)
			}
		},
	})

	l.Register(&ir.Builtin{
		Name:         "dotp",
		ResultLength: sameLength(1),
		Generate: func(s *ir.Session, args [][]*ir.Compvar, dest []*ir.Compvar) {
			a, b := args[0], args[1]
			if len(a) == 1 {
				set(s, dest[0], ir.OpRhs(ir.OpMul, cv(a[0]), cv(b[0])))
				return
			}
			sum := op(s, ir.OpMul, cv(a[0]), cv(b[0]))
			for i := 1; i < len(a)-1; i++ {
				sum = op(s, ir.OpAdd, cv(sum), cv(op(s, ir.OpMul, cv(a[i]), cv(b[i]))))
			}
			last := op(s, ir.OpMul, cv(a[len(a)-1]), cv(b[len(b)-1]))
			set(s, dest[0], ir.OpRhs(ir.OpAdd, cv(sum), cv(last)))
		},
	})

	l.Register(&ir.Builtin{
		Name: "lerp",
		ResultLength: func(lengths []int) (int, error) {
			if len(lengths) != 3 || lengths[0] != 1 {
				return 0, tlerrors.New("takes a scalar position and two tuples")
			}
			return elementwise(2)(lengths[1:])
		},
		Generate: func(s *ir.Session, args [][]*ir.Compvar, dest []*ir.Compvar) {
			p := args[0][0]
			for i := range dest {
				a, b := component(args[1], i), component(args[2], i)
				diff := op(s, ir.OpSub, cv(b), cv(a))
				scaled := op(s, ir.OpMul, cv(p), cv(diff))
				set(s, dest[i], ir.OpRhs(ir.OpAdd, cv(a), cv(scaled)))
			}
		},
	})
}
