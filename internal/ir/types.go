package ir

import (
	"fmt"

	"mathmap/internal/errors"
)

// Type is the operand type of a compvar. The numeric order is the
// propagation order: a type only ever moves to a larger one.
type Type int

const (
	TypeInt Type = iota + 1
	TypeFloat
	TypeComplex
	TypeColor
	TypeMatrix
	TypeVector
)

var typeNames = map[Type]string{
	TypeInt:     "int",
	TypeFloat:   "float",
	TypeComplex: "complex",
	TypeColor:   "color",
	TypeMatrix:  "matrix",
	TypeVector:  "vector",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", int(t))
}

func primaryType(p *Primary) Type {
	switch p.Kind {
	case PrimaryValue:
		return p.Value.Compvar.Type
	case PrimaryIntConst:
		return TypeInt
	case PrimaryFloatConst:
		return TypeFloat
	}
	panic(errors.Internal("primaryType", "unknown primary kind %d", p.Kind))
}

// RhsType computes the type r evaluates to under the current compvar types
func RhsType(r *Rhs) Type {
	switch r.Kind {
	case RhsPrimary:
		return primaryType(&r.Primary)
	case RhsInternal:
		// some internals are integral, but they are all carried as float
		return TypeFloat
	case RhsOp:
		switch r.Op.Rule {
		case RuleConst:
			return r.Op.ConstType
		case RuleMax:
			t := TypeInt
			for i := range r.Args {
				t = max(t, primaryType(&r.Args[i]))
			}
			return t
		}
		panic(errors.Internal("RhsType", "op %s has unknown type rule %d", r.Op.Name, r.Op.Rule))
	}
	panic(errors.Internal("RhsType", "unknown rhs kind %d", r.Kind))
}

func stmtType(stmt *Statement) Type {
	t := RhsType(stmt.Rhs)
	if stmt.Kind == StmtPhi {
		t = max(t, RhsType(stmt.Rhs2))
	}
	return t
}

type typePropagator struct {
	worklist []*Statement
	raises   int
}

// raise lifts the type of the compvar stmt assigns and queues every
// statement using any of its values.
func (tp *typePropagator) raise(stmt *Statement) {
	c := stmt.Lhs.Compvar
	t := stmtType(stmt)
	if t <= c.Type {
		return
	}
	c.Type = t
	tp.raises++
	for v := c.Values; v != nil; v = v.Next {
		tp.worklist = append(tp.worklist, v.Uses...)
	}
}

func (tp *typePropagator) initial(stmt *Statement) {
	for ; stmt != nil; stmt = stmt.Next {
		switch stmt.Kind {
		case StmtNil:
		case StmtAssign, StmtPhi:
			tp.raise(stmt)
		case StmtIf:
			tp.initial(stmt.Consequent)
			tp.initial(stmt.Alternative)
		case StmtWhile:
			tp.initial(stmt.Entry)
			tp.initial(stmt.Body)
		default:
			panic(errors.Internal("propagateTypes", "unknown statement kind %d", stmt.Kind))
		}
	}
}

// Propagate assigns every compvar the least type covering all of its
// definitions. It returns the number of type raises performed; a second
// run over the same program returns 0.
func Propagate(p *Program) int {
	tp := &typePropagator{}
	tp.initial(p.First)

	for len(tp.worklist) > 0 {
		work := tp.worklist
		tp.worklist = nil
		for _, stmt := range work {
			// conditions and loop tests read values but define nothing
			if stmt.Kind == StmtAssign || stmt.Kind == StmtPhi {
				tp.raise(stmt)
			}
		}
	}

	log.Debugf("type propagation raised %d compvar types", tp.raises)
	return tp.raises
}
