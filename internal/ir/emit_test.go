package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mathmap/internal/exprtree"
)

func TestSwapThroughTemporary(t *testing.T) {
	a, b, tmp := scalar("a"), scalar("b"), scalar("t")

	tree := seq(
		assign(a, intc(0)),
		assign(b, intc(1)),
		assign(tmp, ref(a)),
		assign(a, ref(b)),
		assign(b, ref(tmp)),
		&exprtree.Tuple{Elems: []exprtree.Node{ref(a), ref(b)}},
	)

	p := lower(t, tree)

	require.Len(t, p.Result, 2)
	assert.Equal(t, 1.0, constantOf(t, p.Result[0].Current), "a should hold the old b")
	assert.Equal(t, 0.0, constantOf(t, p.Result[1].Current), "b should hold the old a")
}

func TestVariablesVersionPerComponent(t *testing.T) {
	s := NewSession(lib)
	a := s.MakeVariable(scalar("a"), 0)
	tmp := s.MakeTemporary()

	s.EmitAssign(s.MakeLHS(a), IntRhs(0))
	s.EmitAssign(s.MakeLHS(tmp), CompvarRhs(a))
	s.EmitAssign(s.MakeLHS(a), IntRhs(1))

	assert.Equal(t, 2, a.Current.Index)
	assert.Equal(t, 1, tmp.Current.Index)
	assert.Equal(t, 1, a.Values.Next.Index)
	assert.Equal(t, -1, a.Values.Next.Next.Index, "oldest value is the dummy")
	assert.Len(t, a.Values.Next.Uses, 1, "a_1 is read once by the copy into the temporary")
}

func TestRemoveUseOfMissingStatement(t *testing.T) {
	s := NewSession(lib)
	a := s.MakeTemporary()
	s.EmitAssign(s.MakeLHS(a), IntRhs(0))

	ie := requireInternal(t, func() { removeUse(a.Current, &Statement{Index: 42}) })
	assert.Equal(t, "removeUse", ie.Op)
}

func TestIfPhiPlacement(t *testing.T) {
	s := NewSession(lib)
	a := s.MakeVariable(scalar("a"), 0)
	b := s.MakeVariable(scalar("b"), 0)

	s.EmitAssign(s.MakeLHS(a), IntRhs(1))
	s.EmitAssign(s.MakeLHS(b), IntRhs(5))
	before := b.Current

	s.StartIfCond(CompvarRhs(a))
	s.SwitchIfBranch()
	s.EmitAssign(s.MakeLHS(b), IntRhs(2))
	inAlternative := b.Current
	s.EndIfCond()

	p := s.Program([]*Compvar{b})
	require.NoError(t, Verify(p))

	var ifStmt *Statement
	walk(p.First, func(stmt *Statement) {
		if stmt.Kind == StmtIf {
			ifStmt = stmt
		}
	})
	require.NotNil(t, ifStmt)
	assert.Equal(t, StmtNil, ifStmt.Consequent.Kind, "empty consequent gets a no-op")

	phi := ifStmt.Next
	require.NotNil(t, phi)
	require.Equal(t, StmtPhi, phi.Kind)
	assert.Nil(t, phi.Next, "exactly one phi for b")
	assert.Same(t, b, phi.Lhs.Compvar)

	first, _ := phi.Rhs.SingleValue()
	second, _ := phi.Rhs2.SingleValue()
	assert.Same(t, before, first, "consequent did not assign b")
	assert.Same(t, inAlternative, second)
	assert.Same(t, phi.Lhs, b.Current, "the join is the live value after the if")
	assert.Equal(t, 3, phi.Lhs.Index)

	assert.Contains(t, ifStmt.Condition.Primary.Value.Uses, ifStmt, "condition use is registered")
}

func TestIfBothBranchesRestoreBaseline(t *testing.T) {
	s := NewSession(lib)
	c := s.MakeTemporary()
	x := s.MakeTemporary()

	s.EmitAssign(s.MakeLHS(c), IntRhs(1))
	s.EmitAssign(s.MakeLHS(x), IntRhs(0))
	before := x.Current

	s.StartIfCond(CompvarRhs(c))
	s.EmitAssign(s.MakeLHS(x), IntRhs(10))
	s.SwitchIfBranch()
	assert.Same(t, before, x.Current, "alternative starts from the pre-if value")
	y := s.MakeTemporary()
	s.EmitAssign(s.MakeLHS(y), CompvarRhs(x))
	copied := y.Current
	s.EndIfCond()

	p := s.Program([]*Compvar{x})
	require.NoError(t, Verify(p))

	src, _ := copied.Def.Rhs.SingleValue()
	assert.Same(t, before, src, "alternative reads the pre-if value of x")
}

func TestNestedIfJoinsIntoOuterBranch(t *testing.T) {
	s := NewSession(lib)
	c := s.MakeTemporary()
	x := s.MakeTemporary()

	s.EmitAssign(s.MakeLHS(c), IntRhs(1))
	s.EmitAssign(s.MakeLHS(x), IntRhs(0))
	before := x.Current

	s.StartIfCond(CompvarRhs(c))
	s.StartIfCond(CompvarRhs(c))
	s.EmitAssign(s.MakeLHS(x), IntRhs(1))
	s.SwitchIfBranch()
	s.EndIfCond()
	inner := x.Current
	s.SwitchIfBranch()
	s.EndIfCond()

	p := s.Program([]*Compvar{x})
	require.NoError(t, Verify(p))

	outerPhi := x.Current.Def
	require.Equal(t, StmtPhi, outerPhi.Kind)
	first, _ := outerPhi.Rhs.SingleValue()
	second, _ := outerPhi.Rhs2.SingleValue()
	assert.Same(t, inner, first, "consequent ends with the inner join")
	assert.Same(t, before, second, "alternative keeps the pre-if value")

	innerPhi := inner.Def
	innerSecond, _ := innerPhi.Rhs2.SingleValue()
	assert.Same(t, before, innerSecond)
}

func TestLoopRewritesUsesOfPreLoopValue(t *testing.T) {
	i := scalar("i")

	tree := seq(
		assign(i, intc(0)),
		&exprtree.While{
			Invariant: call("<", ref(i), intc(10)),
			Body:      assign(i, call("+", ref(i), intc(1))),
		},
		ref(i),
	)

	p := lower(t, tree)

	var loop *Statement
	walk(p.First, func(stmt *Statement) {
		if stmt.Kind == StmtWhile {
			loop = stmt
		}
	})
	require.NotNil(t, loop)

	var preLoop *Value
	var phi *Statement
	for e := loop.Entry; e != nil; e = e.Next {
		if e.Lhs.Compvar.Var == i {
			phi = e
			preLoop, _ = e.Rhs.SingleValue()
		}
	}
	require.NotNil(t, phi, "loop carried variable gets an entry phi")
	assert.Equal(t, 0.0, constantOf(t, preLoop))

	walk(loop, func(stmt *Statement) {
		if stmt == phi || stmt.Index < loop.Index {
			return
		}
		assert.Nil(t, stmt.findValue(preLoop), "statement %d still reads the pre-loop value", stmt.Index)
	})

	for _, u := range preLoop.Uses {
		assert.True(t, u == phi || u.Index < loop.Index, "pre-loop value used by statement %d", u.Index)
	}
	assert.Same(t, phi.Lhs, p.Result[0].Current, "after the loop i is the entry phi")
}

func TestLoopSecondAssignmentKeepsIntermediateUses(t *testing.T) {
	s := NewSession(lib)
	c := s.MakeTemporary()
	i := s.MakeVariable(scalar("i"), 0)

	s.EmitAssign(s.MakeLHS(c), IntRhs(1))
	s.EmitAssign(s.MakeLHS(i), IntRhs(0))
	pre := i.Current

	s.StartWhileLoop(CompvarRhs(c))
	s.EmitAssign(s.MakeLHS(i), OpRhs(OpAdd, CompvarPrimary(i), IntPrimary(1)))
	added := i.Current
	s.EmitAssign(s.MakeLHS(i), OpRhs(OpMul, CompvarPrimary(i), IntPrimary(2)))
	doubled := i.Current
	s.EndWhileLoop()

	p := s.Program([]*Compvar{i})
	require.NoError(t, Verify(p))

	phi := i.Current.Def
	require.Equal(t, StmtPhi, phi.Kind)
	entry, _ := phi.Rhs.SingleValue()
	carried, _ := phi.Rhs2.SingleValue()
	assert.Same(t, pre, entry)
	assert.Same(t, doubled, carried, "loop carried operand is the last assignment")

	assert.Same(t, phi.Lhs, added.Def.Rhs.Args[0].Value, "first body read refers to the phi")
	assert.Same(t, added, doubled.Def.Rhs.Args[0].Value, "second body read keeps the intermediate value")
}

func TestLoopConditionIsRewritten(t *testing.T) {
	s := NewSession(lib)
	c := s.MakeTemporary()

	s.EmitAssign(s.MakeLHS(c), IntRhs(1))
	s.StartWhileLoop(CompvarRhs(c))
	loop := c.Current.Uses[0]
	s.EmitAssign(s.MakeLHS(c), IntRhs(0))
	s.EndWhileLoop()

	require.NoError(t, Verify(s.Program(nil)))
	v, _ := loop.Invariant.SingleValue()
	assert.Equal(t, StmtPhi, v.Def.Kind, "loop test reads the entry phi")
}

func TestNestingViolations(t *testing.T) {
	s := NewSession(lib)
	c := s.MakeTemporary()
	s.EmitAssign(s.MakeLHS(c), IntRhs(1))

	requireInternal(t, func() { s.SwitchIfBranch() })
	requireInternal(t, func() { s.EndWhileLoop() })

	s.StartWhileLoop(CompvarRhs(c))
	ie := requireInternal(t, func() { s.EndIfCond() })
	assert.Equal(t, "EndIfCond", ie.Op)

	s2 := NewSession(lib)
	c2 := s2.MakeTemporary()
	s2.EmitAssign(s2.MakeLHS(c2), IntRhs(1))
	s2.StartIfCond(CompvarRhs(c2))
	requireInternal(t, func() { s2.EndIfCond() })
}

func TestLowerReportsInternalErrors(t *testing.T) {
	tree := call("undefined", intc(1))

	_, err := NewSession(lib).Lower(tree)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined")
}

func TestOpArityIsChecked(t *testing.T) {
	requireInternal(t, func() { OpRhs(OpAdd, IntPrimary(1)) })
}
