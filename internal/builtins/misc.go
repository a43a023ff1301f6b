package builtins

import (
	"fmt"
	"math"

	tlerrors "tlog.app/go/errors"

	"mathmap/internal/ir"
)

func solveLinear(dim int) *ir.Builtin {
	makeMatrix, makeVector, solve := ir.OpMakeM2x2, ir.OpMakeV2, ir.OpSolveLinear2
	if dim == 3 {
		makeMatrix, makeVector, solve = ir.OpMakeM3x3, ir.OpMakeV3, ir.OpSolveLinear3
	}

	return &ir.Builtin{
		Name:         fmt.Sprintf("solve_linear_%d", dim),
		ResultLength: fixed(dim, dim*dim, dim),
		Generate: func(s *ir.Session, args [][]*ir.Compvar, dest []*ir.Compvar) {
			coeffs := make([]ir.Primary, dim*dim)
			for i, c := range args[0] {
				coeffs[i] = cv(c)
			}
			consts := make([]ir.Primary, dim)
			for i, c := range args[1] {
				consts[i] = cv(c)
			}

			m := op(s, makeMatrix, coeffs...)
			v := op(s, makeVector, consts...)
			x := op(s, solve, cv(m), cv(v))
			for i := range dest {
				set(s, dest[i], ir.OpRhs(ir.OpVectorNth, cv(x), ir.IntPrimary(i)))
			}
			op(s, ir.OpFreeMatrix, cv(m))
			op(s, ir.OpFreeVector, cv(v))
			op(s, ir.OpFreeVector, cv(x))
		},
	}
}

func registerMisc(l *Library) {
	l.Register(solveLinear(2))
	l.Register(solveLinear(3))

	l.Register(&ir.Builtin{
		Name:         "noise",
		ResultLength: fixed(1, 3),
		Generate: func(s *ir.Session, args [][]*ir.Compvar, dest []*ir.Compvar) {
			p := args[0]
			set(s, dest[0], ir.OpRhs(ir.OpNoise, cv(p[0]), cv(p[1]), cv(p[2])))
		},
	})

	l.Register(&ir.Builtin{
		Name:         "rand",
		ResultLength: fixed(1, 1, 1),
		Generate: func(s *ir.Session, args [][]*ir.Compvar, dest []*ir.Compvar) {
			set(s, dest[0], ir.OpRhs(ir.OpRand, cv(args[0][0]), cv(args[1][0])))
		},
	})

	l.Register(&ir.Builtin{
		Name: "print",
		ResultLength: func(lengths []int) (int, error) {
			if len(lengths) != 1 {
				return 0, tlerrors.New("takes 1 argument, got %d", len(lengths))
			}
			return 1, nil
		},
		Generate: func(s *ir.Session, args [][]*ir.Compvar, dest []*ir.Compvar) {
			x := args[0]
			for _, c := range x[:len(x)-1] {
				op(s, ir.OpPrint, cv(c))
			}
			set(s, dest[0], ir.OpRhs(ir.OpPrint, cv(x[len(x)-1])))
		},
	})

	l.Register(&ir.Builtin{
		Name:         "newline",
		ResultLength: fixed(1),
		Generate: func(s *ir.Session, args [][]*ir.Compvar, dest []*ir.Compvar) {
			set(s, dest[0], ir.OpRhs(ir.OpNewline))
		},
	})

	// polar angle in [0, 2pi)
	l.Register(&ir.Builtin{
		Name:         "toRA",
		ResultLength: fixed(2, 2),
		Generate: func(s *ir.Session, args [][]*ir.Compvar, dest []*ir.Compvar) {
			x, y := args[0][0], args[0][1]
			set(s, dest[0], ir.OpRhs(ir.OpHypot, cv(x), cv(y)))
			set(s, dest[1], ir.OpRhs(ir.OpAtan2, cv(y), cv(x)))
			ifElse(s, op(s, ir.OpLess, cv(dest[1]), float(0)),
				func() { set(s, dest[1], ir.OpRhs(ir.OpAdd, cv(dest[1]), float(2*math.Pi))) },
				nil)
		},
	})

	l.Register(&ir.Builtin{
		Name:         "toXY",
		ResultLength: fixed(2, 2),
		Generate: func(s *ir.Session, args [][]*ir.Compvar, dest []*ir.Compvar) {
			r, a := args[0][0], args[0][1]
			set(s, dest[0], ir.OpRhs(ir.OpMul, cv(r), cv(op(s, ir.OpCos, cv(a)))))
			set(s, dest[1], ir.OpRhs(ir.OpMul, cv(r), cv(op(s, ir.OpSin, cv(a)))))
		},
	})
}
