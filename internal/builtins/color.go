package builtins

import (
	tlerrors "tlog.app/go/errors"

	"mathmap/internal/ir"
)

func float(f float32) ir.Primary { return ir.FloatPrimary(f) }

func clampUnit(s *ir.Session, c *ir.Compvar) *ir.Compvar {
	return op(s, ir.OpMin, cv(op(s, ir.OpMax, cv(c), float(0))), float(1))
}

// toHSV lowers the RGB to HSV conversion of mathlib.RGBToHSV onto ops
func toHSV(s *ir.Session, args [][]*ir.Compvar, dest []*ir.Compvar) {
	rgba := args[0]
	r, g, b := clampUnit(s, rgba[0]), clampUnit(s, rgba[1]), clampUnit(s, rgba[2])
	h, sat, v := dest[0], dest[1], dest[2]

	mx := op(s, ir.OpMax, cv(op(s, ir.OpMax, cv(r), cv(g))), cv(b))
	mn := op(s, ir.OpMin, cv(op(s, ir.OpMin, cv(r), cv(g))), cv(b))
	set(s, v, ir.CompvarRhs(mx))

	ifElse(s, op(s, ir.OpLess, float(0), cv(mx)),
		func() { set(s, sat, ir.OpRhs(ir.OpDiv, cv(op(s, ir.OpSub, cv(mx), cv(mn))), cv(mx))) },
		func() { set(s, sat, ir.FloatRhs(0)) })

	ifElse(s, op(s, ir.OpEq, cv(sat), float(0)),
		func() { set(s, h, ir.FloatRhs(0)) },
		func() {
			delta := op(s, ir.OpSub, cv(mx), cv(mn))
			sector := s.MakeTemporary()
			ifElse(s, op(s, ir.OpEq, cv(r), cv(mx)),
				func() {
					set(s, sector, ir.OpRhs(ir.OpDiv, cv(op(s, ir.OpSub, cv(g), cv(b))), cv(delta)))
				},
				func() {
					ifElse(s, op(s, ir.OpEq, cv(g), cv(mx)),
						func() {
							d := op(s, ir.OpDiv, cv(op(s, ir.OpSub, cv(b), cv(r))), cv(delta))
							set(s, sector, ir.OpRhs(ir.OpAdd, float(2), cv(d)))
						},
						func() {
							d := op(s, ir.OpDiv, cv(op(s, ir.OpSub, cv(r), cv(g))), cv(delta))
							set(s, sector, ir.OpRhs(ir.OpAdd, float(4), cv(d)))
						})
				})
			set(s, h, ir.OpRhs(ir.OpDiv, cv(sector), float(6)))
			ifElse(s, op(s, ir.OpLess, cv(h), float(0)),
				func() { set(s, h, ir.OpRhs(ir.OpAdd, cv(h), float(1))) },
				nil)
		})

	set(s, dest[3], ir.CompvarRhs(rgba[3]))
}

// fromHSV lowers mathlib.HSVToRGB onto ops
func fromHSV(s *ir.Session, args [][]*ir.Compvar, dest []*ir.Compvar) {
	hsva := args[0]
	h, sat, v := clampUnit(s, hsva[0]), clampUnit(s, hsva[1]), clampUnit(s, hsva[2])
	r, g, b := dest[0], dest[1], dest[2]

	assign := func(rv, gv, bv *ir.Compvar) {
		set(s, r, ir.CompvarRhs(rv))
		set(s, g, ir.CompvarRhs(gv))
		set(s, b, ir.CompvarRhs(bv))
	}

	ifElse(s, op(s, ir.OpEq, cv(sat), float(0)),
		func() { assign(v, v, v) },
		func() {
			ifElse(s, op(s, ir.OpLeq, float(1), cv(h)),
				func() { set(s, h, ir.FloatRhs(0)) },
				nil)
			h6 := op(s, ir.OpMul, cv(h), float(6))
			i := op(s, ir.OpFloor, cv(h6))
			f := op(s, ir.OpSub, cv(h6), cv(i))
			p := op(s, ir.OpMul, cv(v), cv(op(s, ir.OpSub, float(1), cv(sat))))
			q := op(s, ir.OpMul, cv(v), cv(op(s, ir.OpSub, float(1), cv(op(s, ir.OpMul, cv(sat), cv(f))))))
			t := op(s, ir.OpMul, cv(v), cv(op(s, ir.OpSub, float(1),
				cv(op(s, ir.OpMul, cv(sat), cv(op(s, ir.OpSub, float(1), cv(f))))))))

			sextants := [6][3]*ir.Compvar{
				{v, t, p},
				{q, v, p},
				{p, v, t},
				{p, q, v},
				{t, p, v},
				{v, p, q},
			}
			var cascade func(k int)
			cascade = func(k int) {
				if k == len(sextants)-1 {
					assign(sextants[k][0], sextants[k][1], sextants[k][2])
					return
				}
				ifElse(s, op(s, ir.OpLess, cv(i), ir.IntPrimary(k+1)),
					func() { assign(sextants[k][0], sextants[k][1], sextants[k][2]) },
					func() { cascade(k + 1) })
			}
			cascade(0)
		})

	set(s, dest[3], ir.CompvarRhs(hsva[3]))
}

func registerColor(l *Library) {
	l.Register(&ir.Builtin{Name: "toHSV", ResultLength: fixed(4, 4), Generate: toHSV})
	l.Register(&ir.Builtin{Name: "fromHSV", ResultLength: fixed(4, 4), Generate: fromHSV})

	l.Register(&ir.Builtin{
		Name:         "gray",
		ResultLength: fixed(1, 4),
		Generate: func(s *ir.Session, args [][]*ir.Compvar, dest []*ir.Compvar) {
			rgba := args[0]
			r := op(s, ir.OpMul, float(0.299), cv(rgba[0]))
			g := op(s, ir.OpMul, float(0.587), cv(rgba[1]))
			b := op(s, ir.OpMul, float(0.114), cv(rgba[2]))
			set(s, dest[0], ir.OpRhs(ir.OpAdd, cv(op(s, ir.OpAdd, cv(r), cv(g))), cv(b)))
		},
	})

	// origVal(xy, image[, frame]) samples a source image
	l.Register(&ir.Builtin{
		Name: "origVal",
		ResultLength: func(lengths []int) (int, error) {
			if len(lengths) == 2 {
				return fixed(4, 2, 1)(lengths)
			}
			if len(lengths) == 3 {
				return fixed(4, 2, 1, 1)(lengths)
			}
			return 0, tlerrors.New("takes a position, an image and an optional frame")
		},
		Generate: func(s *ir.Session, args [][]*ir.Compvar, dest []*ir.Compvar) {
			frame := ir.FloatPrimary(0)
			if len(args) == 3 {
				frame = cv(args[2][0])
			}
			c := op(s, ir.OpOrigVal, cv(args[0][0]), cv(args[0][1]), cv(args[1][0]), frame)
			s.EmitChannels(c, dest)
		},
	})
}
