// Package interp evaluates a typed statement tree in process. It follows
// the semantics of the generated C code: every compvar is one storage
// cell of its propagated type, join phis are copies at the end of each
// branch and loop phis are copies before the loop and at the end of the
// body.
package interp

import (
	"mathmap/internal/errors"
	"mathmap/internal/ir"
	"mathmap/internal/mathlib"
)

// Program is a lowered, type-annotated program ready for evaluation
type Program struct {
	prog *ir.Program
}

// New prepares p for evaluation. Types must have been propagated.
func New(p *ir.Program) *Program {
	return &Program{prog: p}
}

// ResultLength reports the number of result components
func (p *Program) ResultLength() int {
	return len(p.prog.Result)
}

// Machine evaluates a program for one goroutine
type Machine struct {
	prog  *ir.Program
	env   *Environment
	rand  *mathlib.Rand
	store []value
	in    *Internals
}

// NewMachine creates an evaluator bound to env
func (p *Program) NewMachine(env *Environment) *Machine {
	if env == nil {
		env = &Environment{}
	}
	return &Machine{
		prog:  p.prog,
		env:   env,
		rand:  mathlib.NewRand(env.Seed),
		store: make([]value, len(p.prog.Compvars)),
	}
}

// Run evaluates the program once and returns the result components
// converted to float
func (m *Machine) Run(in *Internals) (result []float32, err error) {
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(*errors.InternalError)
			if !ok {
				panic(r)
			}
			result, err = nil, ie
		}
	}()

	if in == nil {
		in = &Internals{}
	}
	m.in = in
	for _, c := range m.prog.Compvars {
		m.store[c.ID] = zero(c.Type)
	}

	m.exec(m.prog.First)

	result = make([]float32, len(m.prog.Result))
	for i, c := range m.prog.Result {
		result[i] = m.store[c.ID].float()
	}
	return result, nil
}

func (m *Machine) primary(p *ir.Primary) value {
	switch p.Kind {
	case ir.PrimaryValue:
		return m.store[p.Value.Compvar.ID]
	case ir.PrimaryIntConst:
		return intValue(int32(p.Int))
	case ir.PrimaryFloatConst:
		return floatValue(p.Float)
	}
	panic(errors.Internal("interp", "unknown primary kind %d", p.Kind))
}

func (m *Machine) eval(r *ir.Rhs) value {
	switch r.Kind {
	case ir.RhsPrimary:
		return m.primary(&r.Primary)
	case ir.RhsInternal:
		return floatValue(m.in[r.Internal.Index])
	case ir.RhsOp:
		var buf [ir.MaxOpArgs]value
		args := buf[:len(r.Args)]
		for i := range r.Args {
			args[i] = m.primary(&r.Args[i])
		}
		return m.apply(r, args)
	}
	panic(errors.Internal("interp", "unknown rhs kind %d", r.Kind))
}

func (m *Machine) assign(lhs *ir.Value, r *ir.Rhs) {
	c := lhs.Compvar
	m.store[c.ID] = convert(m.eval(r), c.Type)
}

func (m *Machine) phis(phi *ir.Statement, second bool) {
	for ; phi != nil && phi.Kind == ir.StmtPhi; phi = phi.Next {
		r := phi.Rhs
		if second {
			r = phi.Rhs2
		}
		m.assign(phi.Lhs, r)
	}
}

func (m *Machine) exec(stmt *ir.Statement) {
	for stmt != nil {
		switch stmt.Kind {
		case ir.StmtNil:
			stmt = stmt.Next

		case ir.StmtAssign:
			m.assign(stmt.Lhs, stmt.Rhs)
			stmt = stmt.Next

		case ir.StmtIf:
			if m.eval(stmt.Condition).truthy() {
				m.exec(stmt.Consequent)
				m.phis(stmt.Next, false)
			} else {
				m.exec(stmt.Alternative)
				m.phis(stmt.Next, true)
			}
			stmt = skipPhis(stmt.Next)

		case ir.StmtWhile:
			m.phis(stmt.Entry, false)
			for m.eval(stmt.Invariant).truthy() {
				m.exec(stmt.Body)
				m.phis(stmt.Entry, true)
			}
			stmt = stmt.Next

		default:
			panic(errors.Internal("interp", "unexpected %v statement %d", stmt.Kind, stmt.Index))
		}
	}
}

func skipPhis(stmt *ir.Statement) *ir.Statement {
	for stmt != nil && stmt.Kind == ir.StmtPhi {
		stmt = stmt.Next
	}
	return stmt
}
