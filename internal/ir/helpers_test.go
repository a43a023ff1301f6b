package ir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mathmap/internal/errors"
	"mathmap/internal/exprtree"
)

type testLibrary map[string]*Builtin

func (l testLibrary) Lookup(name string) (*Builtin, bool) {
	b, ok := l[name]
	return b, ok
}

func binaryBuiltin(name string, op OpCode) *Builtin {
	return &Builtin{
		Name:         name,
		ResultLength: func([]int) (int, error) { return 1, nil },
		Generate: func(s *Session, args [][]*Compvar, dest []*Compvar) {
			s.EmitAssign(s.MakeLHS(dest[0]), OpRhs(op, CompvarPrimary(args[0][0]), CompvarPrimary(args[1][0])))
		},
	}
}

var lib = testLibrary{
	"+": binaryBuiltin("+", OpAdd),
	"*": binaryBuiltin("*", OpMul),
	"<": binaryBuiltin("<", OpLess),
	"complex": binaryBuiltin("complex", OpComplex),
}

func scalar(name string) *exprtree.Variable {
	return &exprtree.Variable{Name: name, Length: 1}
}

func intc(n int) exprtree.Node { return &exprtree.IntConst{Value: n} }

func floatc(f float32) exprtree.Node { return &exprtree.FloatConst{Value: f} }

func ref(v *exprtree.Variable) exprtree.Node { return &exprtree.VarRef{Var: v} }

func assign(v *exprtree.Variable, value exprtree.Node) exprtree.Node {
	return &exprtree.Assign{Var: v, Value: value}
}

func call(name string, args ...exprtree.Node) exprtree.Node {
	return &exprtree.Call{Name: name, Args: args, Result: 1}
}

func seq(nodes ...exprtree.Node) exprtree.Node {
	n := nodes[len(nodes)-1]
	for i := len(nodes) - 2; i >= 0; i-- {
		n = &exprtree.Sequence{Left: nodes[i], Right: n}
	}
	return n
}

func lower(t *testing.T, tree exprtree.Node) *Program {
	t.Helper()
	p, err := NewSession(lib).Lower(tree)
	require.NoError(t, err)
	require.NoError(t, Verify(p), "lowered program should be well formed")
	return p
}

// constantOf follows plain copies back to a constant definition
func constantOf(t *testing.T, v *Value) float64 {
	t.Helper()
	for i := 0; i < 100; i++ {
		require.NotNil(t, v.Def, "value %v has no definition", v)
		require.Equal(t, StmtAssign, v.Def.Kind, "value %v is not defined by a copy", v)
		r := v.Def.Rhs
		require.Equal(t, RhsPrimary, r.Kind)
		switch r.Primary.Kind {
		case PrimaryIntConst:
			return float64(r.Primary.Int)
		case PrimaryFloatConst:
			return float64(r.Primary.Float)
		}
		v = r.Primary.Value
	}
	t.Fatalf("copy chain too long")
	return 0
}

// walk visits every statement reachable from stmt in emission order
func walk(stmt *Statement, visit func(*Statement)) {
	for ; stmt != nil; stmt = stmt.Next {
		visit(stmt)
		switch stmt.Kind {
		case StmtIf:
			walk(stmt.Consequent, visit)
			walk(stmt.Alternative, visit)
		case StmtWhile:
			walk(stmt.Entry, visit)
			walk(stmt.Body, visit)
		}
	}
}

func requireInternal(t *testing.T, f func()) *errors.InternalError {
	t.Helper()
	var got *errors.InternalError
	func() {
		defer func() {
			r := recover()
			require.NotNil(t, r, "expected an internal error")
			ie, ok := r.(*errors.InternalError)
			require.True(t, ok, "expected *errors.InternalError, got %T", r)
			got = ie
		}()
		f()
	}()
	return got
}
