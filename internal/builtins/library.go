// Package builtins is the op library: it maps function names appearing in
// expression trees to their result arity and to the code that lowers an
// application onto the op table.
package builtins

import (
	"sort"

	tlerrors "tlog.app/go/errors"

	"mathmap/internal/ir"
)

// Library resolves function applications for the reader and for lowering
type Library struct {
	funcs map[string]*ir.Builtin
}

// New returns a library holding the standard functions
func New() *Library {
	l := &Library{funcs: make(map[string]*ir.Builtin)}
	registerArithmetic(l)
	registerComparison(l)
	registerComplex(l)
	registerColor(l)
	registerMisc(l)
	return l
}

// Register adds b, replacing any function of the same name
func (l *Library) Register(b *ir.Builtin) {
	l.funcs[b.Name] = b
}

// Lookup implements ir.Library
func (l *Library) Lookup(name string) (*ir.Builtin, bool) {
	b, ok := l.funcs[name]
	return b, ok
}

// ResultLength implements exprtree.Signatures
func (l *Library) ResultLength(name string, argLengths []int) (int, error) {
	b, ok := l.funcs[name]
	if !ok {
		return 0, tlerrors.New("no such function")
	}
	return b.ResultLength(argLengths)
}

// Names lists the registered functions in sorted order
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.funcs))
	for name := range l.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Signature shapes

func fixed(result int, args ...int) func([]int) (int, error) {
	return func(lengths []int) (int, error) {
		if len(lengths) != len(args) {
			return 0, tlerrors.New("takes %d arguments, got %d", len(args), len(lengths))
		}
		for i, want := range args {
			if lengths[i] != want {
				return 0, tlerrors.New("argument %d must have %d components, got %d", i+1, want, lengths[i])
			}
		}
		return result, nil
	}
}

// elementwise accepts arity arguments of equal length, or of length 1
// which are broadcast
func elementwise(arity int) func([]int) (int, error) {
	return func(lengths []int) (int, error) {
		if len(lengths) != arity {
			return 0, tlerrors.New("takes %d arguments, got %d", arity, len(lengths))
		}
		n := 1
		for _, l := range lengths {
			if l != 1 {
				if n != 1 && l != n {
					return 0, tlerrors.New("cannot combine tuples of %d and %d components", n, l)
				}
				n = l
			}
		}
		return n, nil
	}
}

// sameLength accepts two arguments of equal length and yields result
func sameLength(result int) func([]int) (int, error) {
	return func(lengths []int) (int, error) {
		if len(lengths) != 2 {
			return 0, tlerrors.New("takes 2 arguments, got %d", len(lengths))
		}
		if lengths[0] != lengths[1] {
			return 0, tlerrors.New("arguments have %d and %d components", lengths[0], lengths[1])
		}
		return result, nil
	}
}

// Emission helpers

func cv(c *ir.Compvar) ir.Primary { return ir.CompvarPrimary(c) }

// op emits a fresh temporary holding the operation's result
func op(s *ir.Session, code ir.OpCode, args ...ir.Primary) *ir.Compvar {
	t := s.MakeTemporary()
	s.EmitAssign(s.MakeLHS(t), ir.OpRhs(code, args...))
	return t
}

func set(s *ir.Session, dest *ir.Compvar, rhs *ir.Rhs) {
	s.EmitAssign(s.MakeLHS(dest), rhs)
}

// component returns component i of arg, broadcasting scalars
func component(arg []*ir.Compvar, i int) *ir.Compvar {
	if len(arg) == 1 {
		return arg[0]
	}
	return arg[i]
}

// ifElse lowers a two-way conditional; either branch may be nil
func ifElse(s *ir.Session, cond *ir.Compvar, then, otherwise func()) {
	s.StartIfCond(ir.CompvarRhs(cond))
	if then != nil {
		then()
	}
	s.SwitchIfBranch()
	if otherwise != nil {
		otherwise()
	}
	s.EndIfCond()
}
