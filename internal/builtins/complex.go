package builtins

import "mathmap/internal/ir"

// Complex numbers travel through trees as (re, im) pairs. Functions pack
// them into a complex compvar, apply the complex op and unpack again.

func pack(s *ir.Session, z []*ir.Compvar) *ir.Compvar {
	return op(s, ir.OpComplex, cv(z[0]), cv(z[1]))
}

func unpack(s *ir.Session, c *ir.Compvar, dest []*ir.Compvar) {
	set(s, dest[0], ir.OpRhs(ir.OpCReal, cv(c)))
	set(s, dest[1], ir.OpRhs(ir.OpCImag, cv(c)))
}

func complexUnary(name string, code ir.OpCode) *ir.Builtin {
	return &ir.Builtin{
		Name:         name,
		ResultLength: fixed(2, 2),
		Generate: func(s *ir.Session, args [][]*ir.Compvar, dest []*ir.Compvar) {
			unpack(s, op(s, code, cv(pack(s, args[0]))), dest)
		},
	}
}

func registerComplex(l *Library) {
	for _, u := range []struct {
		name string
		code ir.OpCode
	}{
		{"c_sqrt", ir.OpCSqrt},
		{"c_sin", ir.OpCSin},
		{"c_cos", ir.OpCCos},
		{"c_tan", ir.OpCTan},
		{"c_asin", ir.OpCAsin},
		{"c_acos", ir.OpCAcos},
		{"c_atan", ir.OpCAtan},
		{"c_exp", ir.OpCExp},
		{"c_log", ir.OpCLog},
		{"c_sinh", ir.OpCSinh},
		{"c_cosh", ir.OpCCosh},
		{"c_tanh", ir.OpCTanh},
		{"c_asinh", ir.OpCAsinh},
		{"c_acosh", ir.OpCAcosh},
		{"c_atanh", ir.OpCAtanh},
		{"c_gamma", ir.OpCGamma},
	} {
		l.Register(complexUnary(u.name, u.code))
	}

	l.Register(&ir.Builtin{
		Name:         "c_pow",
		ResultLength: fixed(2, 2, 2),
		Generate: func(s *ir.Session, args [][]*ir.Compvar, dest []*ir.Compvar) {
			unpack(s, op(s, ir.OpCPow, cv(pack(s, args[0])), cv(pack(s, args[1]))), dest)
		},
	})

	l.Register(&ir.Builtin{
		Name:         "c_mul",
		ResultLength: fixed(2, 2, 2),
		Generate: func(s *ir.Session, args [][]*ir.Compvar, dest []*ir.Compvar) {
			unpack(s, op(s, ir.OpMul, cv(pack(s, args[0])), cv(pack(s, args[1]))), dest)
		},
	})

	// division stays real: DIV always yields a float
	l.Register(&ir.Builtin{
		Name:         "c_div",
		ResultLength: fixed(2, 2, 2),
		Generate: func(s *ir.Session, args [][]*ir.Compvar, dest []*ir.Compvar) {
			a, b := args[0], args[1]
			denom := op(s, ir.OpAdd,
				cv(op(s, ir.OpMul, cv(b[0]), cv(b[0]))),
				cv(op(s, ir.OpMul, cv(b[1]), cv(b[1]))))
			re := op(s, ir.OpAdd,
				cv(op(s, ir.OpMul, cv(a[0]), cv(b[0]))),
				cv(op(s, ir.OpMul, cv(a[1]), cv(b[1]))))
			im := op(s, ir.OpSub,
				cv(op(s, ir.OpMul, cv(a[1]), cv(b[0]))),
				cv(op(s, ir.OpMul, cv(a[0]), cv(b[1]))))
			set(s, dest[0], ir.OpRhs(ir.OpDiv, cv(re), cv(denom)))
			set(s, dest[1], ir.OpRhs(ir.OpDiv, cv(im), cv(denom)))
		},
	})

	l.Register(&ir.Builtin{
		Name:         "c_arg",
		ResultLength: fixed(1, 2),
		Generate: func(s *ir.Session, args [][]*ir.Compvar, dest []*ir.Compvar) {
			set(s, dest[0], ir.OpRhs(ir.OpCArg, cv(pack(s, args[0]))))
		},
	})

	l.Register(&ir.Builtin{
		Name:         "c_abs",
		ResultLength: fixed(1, 2),
		Generate: func(s *ir.Session, args [][]*ir.Compvar, dest []*ir.Compvar) {
			set(s, dest[0], ir.OpRhs(ir.OpHypot, cv(args[0][0]), cv(args[0][1])))
		},
	})
}
