package ir

import (
	"mathmap/internal/errors"
)

type branchState int

const (
	stateAwaitingConsequent branchState = iota + 1
	stateInConsequent
	stateInAlternative
	stateAwaitingBody
	stateInBody
	stateClosed
)

var branchStateNames = map[branchState]string{
	stateAwaitingConsequent: "awaiting consequent",
	stateInConsequent:       "in consequent",
	stateInAlternative:      "in alternative",
	stateAwaitingBody:       "awaiting body",
	stateInBody:             "in body",
	stateClosed:             "closed",
}

func (s branchState) String() string { return branchStateNames[s] }

// branchContext tracks one open if or while statement. For every compvar
// assigned inside it, before holds the value live when the construct was
// opened and phis holds the phi in creation order.
type branchContext struct {
	stmt   *Statement
	state  branchState
	before map[*Compvar]*Value
	phis   []*Statement
}

func (ctx *branchContext) findPhi(c *Compvar) *Statement {
	for _, phi := range ctx.phis {
		if phi.Lhs.Compvar == c {
			return phi
		}
	}
	return nil
}

// addPhi records phi and links it into the statement chain: after the if
// statement for joins, into the entry list for loops.
func (ctx *branchContext) addPhi(phi *Statement, before *Value) {
	link := &ctx.stmt.Next
	if ctx.stmt.Kind == StmtWhile {
		link = &ctx.stmt.Entry
	}
	if n := len(ctx.phis); n > 0 {
		link = &ctx.phis[n-1].Next
	}
	*link = phi

	ctx.phis = append(ctx.phis, phi)
	ctx.before[phi.Lhs.Compvar] = before
}

func (s *Session) push(stmt *Statement, state branchState) *branchContext {
	ctx := &branchContext{
		stmt:   stmt,
		state:  state,
		before: make(map[*Compvar]*Value),
	}
	s.stack = append(s.stack, ctx)
	return ctx
}

// expect returns the innermost open construct, checking its kind and state
func (s *Session) expect(op string, kind StmtKind, state branchState) *branchContext {
	ctx := s.top()
	if ctx == nil {
		panic(errors.Internal(op, "no open construct"))
	}
	if ctx.stmt.Kind != kind || ctx.state != state {
		panic(errors.Internal(op, "innermost construct is %v statement %d %v", ctx.stmt.Kind, ctx.stmt.Index, ctx.state))
	}
	return ctx
}

func (s *Session) pop() {
	ctx := s.top()
	ctx.state = stateClosed
	s.stack = s.stack[:len(s.stack)-1]
}

// StartIfCond emits an if statement testing cond and directs emission into
// its consequent.
func (s *Session) StartIfCond(cond *Rhs) {
	stmt := s.newStatement(StmtIf)
	stmt.Condition = cond
	s.emitStmt(stmt)

	ctx := s.push(stmt, stateAwaitingConsequent)
	s.cursor = &stmt.Consequent
	ctx.state = stateInConsequent
}

// SwitchIfBranch closes the consequent and directs emission into the
// alternative. Every compvar assigned in the consequent is reset to its
// value before the if.
func (s *Session) SwitchIfBranch() {
	ctx := s.expect("SwitchIfBranch", StmtIf, stateInConsequent)

	if ctx.stmt.Consequent == nil {
		s.emitNil()
	}

	for _, phi := range ctx.phis {
		c := phi.Lhs.Compvar
		c.Current = ctx.before[c]
	}

	s.cursor = &ctx.stmt.Alternative
	ctx.state = stateInAlternative
}

// EndIfCond closes the alternative, commits the join phis into the
// enclosing construct and moves emission past them.
func (s *Session) EndIfCond() {
	ctx := s.expect("EndIfCond", StmtIf, stateInAlternative)

	if ctx.stmt.Alternative == nil {
		s.emitNil()
	}
	s.pop()

	s.cursor = &ctx.stmt.Next
	for _, phi := range ctx.phis {
		c := phi.Lhs.Compvar
		c.Current = ctx.before[c]
		s.commitAssign(phi)
		s.cursor = &phi.Next
	}
}

// StartWhileLoop emits a while statement testing invariant and directs
// emission into its body.
func (s *Session) StartWhileLoop(invariant *Rhs) {
	stmt := s.newStatement(StmtWhile)
	stmt.Invariant = invariant
	s.emitStmt(stmt)

	ctx := s.push(stmt, stateAwaitingBody)
	s.cursor = &stmt.Body
	ctx.state = stateInBody
}

// EndWhileLoop closes the body, commits the entry phis into the enclosing
// construct and moves emission past the loop.
func (s *Session) EndWhileLoop() {
	ctx := s.expect("EndWhileLoop", StmtWhile, stateInBody)

	if ctx.stmt.Body == nil {
		s.emitNil()
	}
	s.pop()

	for _, phi := range ctx.phis {
		c := phi.Lhs.Compvar
		c.Current = ctx.before[c]
		s.commitAssign(phi)
	}
	s.cursor = &ctx.stmt.Next
}
