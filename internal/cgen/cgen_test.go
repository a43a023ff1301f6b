package cgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mathmap/internal/errors"
	"mathmap/internal/exprtree"
	"mathmap/internal/ir"
)

func scalar(name string) *exprtree.Variable {
	return &exprtree.Variable{Name: name, Length: 1}
}

func seq(nodes ...exprtree.Node) exprtree.Node {
	n := nodes[len(nodes)-1]
	for i := len(nodes) - 2; i >= 0; i-- {
		n = &exprtree.Sequence{Left: nodes[i], Right: n}
	}
	return n
}

func generate(t *testing.T, tree exprtree.Node) string {
	t.Helper()
	p, err := ir.NewSession(nil).Lower(tree)
	require.NoError(t, err)
	ir.Propagate(p)
	code, err := Generate(p)
	require.NoError(t, err)
	return code
}

func TestGenerateSwap(t *testing.T) {
	a, b, tmp := scalar("a"), scalar("b"), scalar("t")
	tree := seq(
		&exprtree.Assign{Var: a, Value: &exprtree.IntConst{Value: 0}},
		&exprtree.Assign{Var: b, Value: &exprtree.IntConst{Value: 1}},
		&exprtree.Assign{Var: tmp, Value: &exprtree.VarRef{Var: a}},
		&exprtree.Assign{Var: a, Value: &exprtree.VarRef{Var: b}},
		&exprtree.Assign{Var: b, Value: &exprtree.VarRef{Var: tmp}},
		&exprtree.Tuple{Elems: []exprtree.Node{&exprtree.VarRef{Var: a}, &exprtree.VarRef{Var: b}}},
	)

	code := generate(t, tree)

	assert.Contains(t, code, "int var_a_0 = 0;\n")
	assert.Contains(t, code, "var_t_0 = var_a_0;\n")
	assert.Contains(t, code, "var_a_0 = var_b_0;\n")
	assert.Contains(t, code, "var_b_0 = var_t_0;\n")
	assert.True(t, strings.HasSuffix(code,
		"invocation->stack[0].data[0] = var_a_0;\n"+
			"invocation->stack[0].data[1] = var_b_0;\n"+
			"invocation->stack[0].length = 2;\n"+
			"return &invocation->stack[0];\n"), code)
}

func TestGenerateDeclaresEachCompvarOnce(t *testing.T) {
	a := scalar("a")
	tree := seq(
		&exprtree.Assign{Var: a, Value: &exprtree.IntConst{Value: 1}},
		&exprtree.Assign{Var: a, Value: &exprtree.FloatConst{Value: 2.5}},
		&exprtree.VarRef{Var: a},
	)

	code := generate(t, tree)

	assert.Equal(t, 1, strings.Count(code, "float var_a_0 = 0;"))
	assert.NotContains(t, code, "int var_a_0")
	assert.Contains(t, code, "var_a_0 = 2.5f;")
}

func TestGenerateIfPrintsBothBlocks(t *testing.T) {
	a, b := scalar("a"), scalar("b")
	tree := seq(
		&exprtree.Assign{Var: a, Value: &exprtree.IntConst{Value: 1}},
		&exprtree.Assign{Var: b, Value: &exprtree.If{
			Condition:   &exprtree.VarRef{Var: a},
			Consequent:  &exprtree.IntConst{Value: 2},
			Alternative: &exprtree.IntConst{Value: 3},
		}},
		&exprtree.VarRef{Var: b},
	)

	code := generate(t, tree)

	assert.Regexp(t, `if \(var_a_0\)\n\{\ntmp_1 = 2;\n\}\nelse\n\{\ntmp_1 = 3;\n\}\n`, code)
	assert.Contains(t, code, "var_b_0 = tmp_1;")
	assert.NotContains(t, code, "phi")
}

func TestGenerateWhile(t *testing.T) {
	s := ir.NewSession(nil)
	i := s.MakeTemporary()
	cond := s.MakeTemporary()

	s.EmitAssign(s.MakeLHS(i), ir.IntRhs(0))
	s.EmitAssign(s.MakeLHS(cond), ir.OpRhs(ir.OpLess, ir.CompvarPrimary(i), ir.IntPrimary(3)))
	s.StartWhileLoop(ir.CompvarRhs(cond))
	s.EmitAssign(s.MakeLHS(i), ir.OpRhs(ir.OpAdd, ir.CompvarPrimary(i), ir.IntPrimary(1)))
	s.EmitAssign(s.MakeLHS(cond), ir.OpRhs(ir.OpLess, ir.CompvarPrimary(i), ir.IntPrimary(3)))
	s.EndWhileLoop()

	p := s.Program([]*ir.Compvar{i})
	ir.Propagate(p)
	code, err := Generate(p)
	require.NoError(t, err)

	assert.Contains(t, code, "while (tmp_2)\n{\ntmp_1 = ADD(tmp_1,1);\ntmp_2 = LESS(tmp_1,3);\n}\n")
	assert.Contains(t, code, "invocation->stack[0].length = 1;")
}

func TestGenerateInternalAndOps(t *testing.T) {
	internals := exprtree.StandardInternals()
	a := scalar("a")
	tree := seq(
		&exprtree.Assign{Var: a, Value: &exprtree.InternalRef{Internal: internals["r"]}},
		&exprtree.VarRef{Var: a},
	)

	code := generate(t, tree)

	assert.Contains(t, code, "float var_a_0 = 0;")
	assert.Contains(t, code, "var_a_0 = invocation->internals[2];")
}

func TestGenerateRejectsTopLevelPhi(t *testing.T) {
	s := ir.NewSession(nil)
	c := s.MakeTemporary()
	s.EmitAssign(s.MakeLHS(c), ir.IntRhs(1))
	p := s.Program([]*ir.Compvar{c})
	p.First.Next = &ir.Statement{Kind: ir.StmtPhi, Index: 9, Lhs: s.MakeLHS(c), Rhs: ir.CompvarRhs(c), Rhs2: ir.CompvarRhs(c)}

	_, err := Generate(p)
	require.Error(t, err)
	assert.True(t, errors.IsInternal(err))
}

func TestFloat(t *testing.T) {
	tests := []struct {
		in       float32
		expected string
	}{
		{0, "0.0f"},
		{1, "1.0f"},
		{-2, "-2.0f"},
		{0.5, "0.5f"},
		{1e20, "1e+20f"},
		{3.25, "3.25f"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, Float(tt.in))
		})
	}
}

func TestName(t *testing.T) {
	s := ir.NewSession(nil)
	v := s.MakeVariable(&exprtree.Variable{Name: "my-var", Length: 3}, 2)
	tmp := s.MakeTemporary()

	assert.Equal(t, "var_my_2d_var_2", Name(v))
	assert.Equal(t, "tmp_1", Name(tmp))
}
