package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mathmap/internal/errors"
	"mathmap/internal/exprtree"
)

func loopProgram() exprtree.Node {
	i, acc := scalar("i"), scalar("acc")
	return seq(
		assign(i, intc(0)),
		assign(acc, floatc(1)),
		&exprtree.While{
			Invariant: call("<", ref(i), intc(4)),
			Body: seq(
				&exprtree.If{
					Condition:   call("<", ref(i), intc(2)),
					Consequent:  assign(acc, call("*", ref(acc), floatc(2))),
					Alternative: assign(acc, call("+", ref(acc), intc(1))),
				},
				assign(i, call("+", ref(i), intc(1))),
			),
		},
		ref(acc),
	)
}

func TestVerifyAcceptsNestedConstructs(t *testing.T) {
	p := lower(t, loopProgram())
	Propagate(p)
	assert.NoError(t, Verify(p))
}

func TestVerifyDetectsStaleUseList(t *testing.T) {
	p := lower(t, loopProgram())

	var victim *Statement
	walk(p.First, func(stmt *Statement) {
		if victim == nil && stmt.Kind == StmtAssign && stmt.Rhs.Kind == RhsOp {
			victim = stmt
		}
	})
	require.NotNil(t, victim)

	v := victim.Rhs.Args[0].Value
	v.Uses = append(v.Uses, victim)

	err := Verify(p)
	require.Error(t, err)
	assert.True(t, errors.IsInternal(err))
}

func TestVerifyDetectsDoubleDefinition(t *testing.T) {
	p := lower(t, seq(assign(scalar("a"), intc(1)), intc(2)))

	first := p.First
	dup := &Statement{Kind: StmtAssign, Index: first.Next.Index + 100, Lhs: first.Lhs, Rhs: IntRhs(3)}
	dup.Next = first.Next.Next
	first.Next.Next = dup

	assert.Error(t, Verify(p))
}

func TestVerifyDetectsMisplacedPhi(t *testing.T) {
	s := NewSession(lib)
	x := s.MakeTemporary()
	s.EmitAssign(s.MakeLHS(x), IntRhs(1))
	p := s.Program(nil)

	phi := s.newPhi(x, x.Current, x.Current)
	p.First.Next = phi
	s.assignValueIndexAndMakeCurrent(phi.Lhs)

	err := Verify(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not follow an if")
}
