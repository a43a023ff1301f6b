package exprtree

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mathmap/internal/errors"
)

// sums returns the length of its widest argument
type sums struct{}

func (sums) ResultLength(name string, lengths []int) (int, error) {
	if name != "+" {
		return 0, fmt.Errorf("no such function")
	}
	n := 1
	for _, l := range lengths {
		n = max(n, l)
	}
	return n, nil
}

func readErr(t *testing.T, src string) *ReadError {
	t.Helper()
	_, err := Read("test.mmx", src, sums{})
	require.Error(t, err)
	var re *ReadError
	require.ErrorAs(t, err, &re)
	require.NotEmpty(t, re.Diagnostics)
	return re
}

func TestReadSequence(t *testing.T) {
	p, err := Read("test.mmx", "(assign a (int 0))\n(call + (var a) (float 1.5))", sums{})
	require.NoError(t, err)

	seq, ok := p.Root.(*Sequence)
	require.True(t, ok)

	assign, ok := seq.Left.(*Assign)
	require.True(t, ok)
	assert.Equal(t, "a", assign.Var.Name)
	assert.Equal(t, 1, assign.Pos.Line)

	call, ok := seq.Right.(*Call)
	require.True(t, ok)
	assert.Equal(t, "+", call.Name)
	assert.Equal(t, 1, call.Result)
	assert.Equal(t, 2, call.Pos.Line)
	assert.Same(t, assign.Var, call.Args[0].(*VarRef).Var, "references share the variable identity")

	require.Len(t, p.Variables, 1)
}

func TestReadShapes(t *testing.T) {
	tests := []struct {
		src    string
		length int
	}{
		{"(int 3)", 1},
		{"(tuple-const 1 2.5 -3)", 3},
		{"(tuple (int 1) (tuple-const 2 3))", 3},
		{"(select (tuple-const 1 2 3) (int 0) (int 2))", 2},
		{"(cast rgba (tuple-const 1 2 3 4))", 4},
		{"(call + (tuple-const 1 2) (int 1))", 2},
		{"(if (int 1) (tuple-const 1 2) (tuple-const 3 4))", 2},
		{"(while (int 0) (int 1))", 1},
		{"(do-while (int 1) (int 0))", 1},
		{"(userval-color 0)", 4},
		{"(userval-gradient 1 (float 0.5))", 4},
		{"(userval-curve 0 (float 0.5))", 1},
		{"(internal r)", 1},
		{"; comment\n(int 1)", 1},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			p, err := Read("test.mmx", tt.src, sums{})
			require.NoError(t, err)
			assert.Equal(t, tt.length, p.Root.Length())
		})
	}
}

func TestReadDoWhile(t *testing.T) {
	p, err := Read("test.mmx", "(do-while (int 1) (int 0))", sums{})
	require.NoError(t, err)

	w := p.Root.(*While)
	assert.True(t, w.DoWhile)
	assert.Equal(t, 1, w.Body.(*IntConst).Value)
	assert.Equal(t, 0, w.Invariant.(*IntConst).Value)
}

func TestReadSharesUserValues(t *testing.T) {
	p, err := Read("test.mmx", "(tuple (userval-float 2) (userval-float 2) (userval-int 2))", sums{})
	require.NoError(t, err)

	require.Len(t, p.UserVals, 2)
	elems := p.Root.(*Tuple).Elems
	assert.Same(t, elems[0].(*UserVal).Info, elems[1].(*UserVal).Info)
	assert.Equal(t, UserValInt, p.UserVals[1].Kind)
}

func TestReadDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code string
	}{
		{"syntax", "(assign a", errors.ErrorSyntax},
		{"empty", "  ; nothing\n", errors.ErrorEmptyTree},
		{"unknown form", "(frobnicate 1)", errors.ErrorUnknownForm},
		{"undefined variable", "(var b)", errors.ErrorUndefinedVariable},
		{"unknown internal", "(internal q)", errors.ErrorUnknownInternal},
		{"unknown function", "(call sinc (int 1))", errors.ErrorUnknownFunction},
		{"arity", "(int 1 2)", errors.ErrorArityMismatch},
		{"variable length changes", "(assign a (int 1)) (assign a (tuple-const 1 2))", errors.ErrorArityMismatch},
		{"tuple subscript", "(select (tuple-const 1 2) (tuple-const 0 1))", errors.ErrorArityMismatch},
		{"branch lengths", "(if (int 1) (int 1) (tuple-const 1 2))", errors.ErrorArityMismatch},
		{"bad literal", "(int x)", errors.ErrorBadLiteral},
		{"negative user value", "(userval-int -1)", errors.ErrorBadLiteral},
		{"bare symbol", "(tuple x)", errors.ErrorUnknownForm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re := readErr(t, tt.src)
			assert.Equal(t, tt.code, re.Diagnostics[0].Code, re.Error())
		})
	}
}

func TestReadCollectsEveryDiagnostic(t *testing.T) {
	re := readErr(t, "(var a)\n(internal q)")

	require.Len(t, re.Diagnostics, 2)
	assert.Equal(t, 1, re.Diagnostics[0].Position.Line)
	assert.Equal(t, 2, re.Diagnostics[1].Position.Line)
	assert.Contains(t, re.Error(), "undefined variable 'a'")
}

func TestSingleConst(t *testing.T) {
	n, ok := SingleConst(&FloatConst{Value: 2.7})
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	n, ok = SingleConst(&Cast{Tuple: &TupleConst{Data: []float32{-1}}})
	assert.True(t, ok)
	assert.Equal(t, -1, n)

	_, ok = SingleConst(&TupleConst{Data: []float32{1, 2}})
	assert.False(t, ok)
}

func TestStandardInternals(t *testing.T) {
	internals := StandardInternals()

	assert.Len(t, internals, NumInternals)
	assert.Equal(t, InternalX, internals["x"].Index)
	assert.Equal(t, InternalRMax, internals["R"].Index)
	assert.NotSame(t, internals["x"], StandardInternals()["x"])
}
