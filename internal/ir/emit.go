package ir

import (
	"github.com/tliron/commonlog"

	"mathmap/internal/errors"
	"mathmap/internal/exprtree"
)

var log = commonlog.GetLogger("mathmap.ir")

// Session owns all state of one compilation: the emission cursor, the
// stack of open branch constructs, version counters and every value and
// statement created. Sessions are independent, so separate sessions may
// compile concurrently. A single session is not safe for concurrent use.
type Session struct {
	lib Library

	first     *Statement
	cursor    **Statement
	stack     []*branchContext
	nextIndex int
	nextTemp  int

	varCompvars map[*exprtree.Variable][]*Compvar
	varIndex    map[*exprtree.Variable][]int

	compvars   []*Compvar
	values     []*Value
	statements []*Statement
}

// NewSession creates a session lowering calls through lib
func NewSession(lib Library) *Session {
	s := &Session{lib: lib}
	s.reset()
	return s
}

func (s *Session) reset() {
	s.first = nil
	s.cursor = &s.first
	s.stack = nil
	s.nextIndex = 0
	s.nextTemp = 0
	s.varCompvars = make(map[*exprtree.Variable][]*Compvar)
	s.varIndex = make(map[*exprtree.Variable][]int)
	s.compvars = nil
	s.values = nil
	s.statements = nil
}

// First returns the head of the emitted statement chain
func (s *Session) First() *Statement { return s.first }

func (s *Session) newStatement(kind StmtKind) *Statement {
	stmt := &Statement{Kind: kind}
	s.statements = append(s.statements, stmt)
	return stmt
}

// emitStmt appends stmt at the cursor, stamps its emission index and
// registers it on every value it reads.
func (s *Session) emitStmt(stmt *Statement) {
	stmt.Index = s.nextIndex
	s.nextIndex++

	*s.cursor = stmt
	s.cursor = &stmt.Next

	for _, r := range stmt.reads() {
		for _, p := range r.operands() {
			if p.Kind == PrimaryValue {
				addUse(p.Value, stmt)
			}
		}
	}
}

func (s *Session) emitNil() {
	s.emitStmt(s.newStatement(StmtNil))
}

// EmitAssign emits lhs = rhs and commits lhs as the current value of its
// compvar, synthesizing phis for the innermost open construct.
func (s *Session) EmitAssign(lhs *Value, rhs *Rhs) {
	if lhs.Def != nil {
		panic(errors.Internal("EmitAssign", "value %v assigned twice", lhs))
	}
	stmt := s.newStatement(StmtAssign)
	stmt.Lhs = lhs
	stmt.Rhs = rhs
	lhs.Def = stmt

	s.emitStmt(stmt)
	s.commitAssign(stmt)
}

func (s *Session) top() *branchContext {
	if len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}

// commitAssign makes the lhs of stmt the current value of its compvar
func (s *Session) commitAssign(stmt *Statement) {
	lhs := stmt.Lhs
	c := lhs.Compvar

	if ctx := s.top(); ctx != nil {
		switch ctx.stmt.Kind {
		case StmtIf:
			s.commitInIf(ctx, c, lhs)
		case StmtWhile:
			s.commitInWhile(ctx, c, lhs)
		default:
			panic(errors.Internal("commitAssign", "open construct is a %v statement", ctx.stmt.Kind))
		}
	}

	s.assignValueIndexAndMakeCurrent(lhs)
}

func (s *Session) commitInIf(ctx *branchContext, c *Compvar, lhs *Value) {
	phi := ctx.findPhi(c)
	if phi == nil {
		before := c.Current
		phi = s.newPhi(c, before, before)
		ctx.addPhi(phi, before)
	}

	switch ctx.state {
	case stateInConsequent:
		replaceOperand(phi, &phi.Rhs, lhs)
	case stateInAlternative:
		replaceOperand(phi, &phi.Rhs2, lhs)
	default:
		panic(errors.Internal("commitAssign", "assignment to %v in if statement %d while %v", c, ctx.stmt.Index, ctx.state))
	}
}

func (s *Session) commitInWhile(ctx *branchContext, c *Compvar, lhs *Value) {
	if ctx.state != stateInBody {
		panic(errors.Internal("commitAssign", "assignment to %v in while statement %d while %v", c, ctx.stmt.Index, ctx.state))
	}

	phi := ctx.findPhi(c)
	if phi != nil {
		replaceOperand(phi, &phi.Rhs2, lhs)
		return
	}

	pre := c.Current
	phi = s.newPhi(c, pre, lhs)
	ctx.addPhi(phi, pre)

	// from the loop header on, the loop carried name is the phi
	s.rewriteUses(pre, phi.Lhs, ctx.stmt.Index, phi)
}

// newPhi creates a phi for c with the given incoming operands. The phi is
// indexed now but linked by the caller.
func (s *Session) newPhi(c *Compvar, first, second *Value) *Statement {
	phi := s.newStatement(StmtPhi)
	phi.Index = s.nextIndex
	s.nextIndex++

	phi.Lhs = s.MakeLHS(c)
	phi.Lhs.Def = phi
	phi.Rhs = ValueRhs(first)
	phi.Rhs2 = ValueRhs(second)
	addUse(first, phi)
	addUse(second, phi)
	return phi
}

// replaceOperand points one phi operand at v
func replaceOperand(phi *Statement, operand **Rhs, v *Value) {
	old, ok := (*operand).SingleValue()
	if !ok {
		panic(errors.Internal("replaceOperand", "phi %d operand is not a value", phi.Index))
	}
	removeUse(old, phi)
	*operand = ValueRhs(v)
	addUse(v, phi)
}

// rewriteUses redirects every use of old by a statement indexed at or
// after start to new. The except statement is left alone.
func (s *Session) rewriteUses(old, new *Value, start int, except *Statement) {
	if old == new {
		panic(errors.Internal("rewriteUses", "rewriting %v to itself", old))
	}

	kept := old.Uses[:0]
	for _, stmt := range old.Uses {
		if stmt.Index < start || stmt == except {
			kept = append(kept, stmt)
			continue
		}

		p := stmt.findValue(old)
		if p == nil {
			panic(errors.Internal("rewriteUses", "statement %d listed as use of %v but does not read it", stmt.Index, old))
		}
		p.Value = new
		addUse(new, stmt)
	}
	for i := len(kept); i < len(old.Uses); i++ {
		old.Uses[i] = nil
	}
	old.Uses = kept

	log.Debugf("rewrote uses of %v to %v from index %d", old, new, start)
}
