package builtins

import "mathmap/internal/ir"

func compare(name string, code ir.OpCode, swap bool) *ir.Builtin {
	return &ir.Builtin{
		Name:         name,
		ResultLength: fixed(1, 1, 1),
		Generate: func(s *ir.Session, args [][]*ir.Compvar, dest []*ir.Compvar) {
			a, b := args[0][0], args[1][0]
			if swap {
				a, b = b, a
			}
			set(s, dest[0], ir.OpRhs(code, cv(a), cv(b)))
		},
	}
}

func registerComparison(l *Library) {
	l.Register(compare("==", ir.OpEq, false))
	l.Register(compare("<", ir.OpLess, false))
	l.Register(compare("<=", ir.OpLeq, false))
	l.Register(compare(">", ir.OpLess, true))
	l.Register(compare(">=", ir.OpLeq, true))

	l.Register(&ir.Builtin{
		Name:         "!=",
		ResultLength: fixed(1, 1, 1),
		Generate: func(s *ir.Session, args [][]*ir.Compvar, dest []*ir.Compvar) {
			eq := op(s, ir.OpEq, cv(args[0][0]), cv(args[1][0]))
			set(s, dest[0], ir.OpRhs(ir.OpNot, cv(eq)))
		},
	})

	l.Register(&ir.Builtin{
		Name:         "!",
		ResultLength: fixed(1, 1),
		Generate: func(s *ir.Session, args [][]*ir.Compvar, dest []*ir.Compvar) {
			set(s, dest[0], ir.OpRhs(ir.OpNot, cv(args[0][0])))
		},
	})

	// a && b is (a ? !!b : 0), a || b is (a ? 1 : !!b)
	truth := func(s *ir.Session, c *ir.Compvar, dest *ir.Compvar) {
		set(s, dest, ir.OpRhs(ir.OpNot, cv(op(s, ir.OpNot, cv(c)))))
	}
	l.Register(&ir.Builtin{
		Name:         "&&",
		ResultLength: fixed(1, 1, 1),
		Generate: func(s *ir.Session, args [][]*ir.Compvar, dest []*ir.Compvar) {
			ifElse(s, args[0][0],
				func() { truth(s, args[1][0], dest[0]) },
				func() { set(s, dest[0], ir.IntRhs(0)) })
		},
	})
	l.Register(&ir.Builtin{
		Name:         "||",
		ResultLength: fixed(1, 1, 1),
		Generate: func(s *ir.Session, args [][]*ir.Compvar, dest []*ir.Compvar) {
			ifElse(s, args[0][0],
				func() { set(s, dest[0], ir.IntRhs(1)) },
				func() { truth(s, args[1][0], dest[0]) })
		},
	})
}
