package ir

import (
	"mathmap/internal/errors"
	"mathmap/internal/exprtree"
)

type PrimaryKind int

const (
	PrimaryValue PrimaryKind = iota + 1
	PrimaryIntConst
	PrimaryFloatConst
)

// Primary is an operand: a value or a constant
type Primary struct {
	Kind  PrimaryKind
	Value *Value
	Int   int
	Float float32
}

func IntPrimary(n int) Primary { return Primary{Kind: PrimaryIntConst, Int: n} }

func FloatPrimary(f float32) Primary { return Primary{Kind: PrimaryFloatConst, Float: f} }

func ValuePrimary(v *Value) Primary {
	if v == nil {
		panic(errors.Internal("ValuePrimary", "nil value"))
	}
	return Primary{Kind: PrimaryValue, Value: v}
}

// CompvarPrimary refers to the current value of c
func CompvarPrimary(c *Compvar) Primary { return ValuePrimary(c.Current) }

type RhsKind int

const (
	RhsPrimary RhsKind = iota + 1
	RhsInternal
	RhsOp
)

// Rhs is the right hand side of an assignment or a branch condition
type Rhs struct {
	Kind     RhsKind
	Primary  Primary
	Internal *exprtree.Internal
	Op       *Operation
	Args     []Primary
}

func IntRhs(n int) *Rhs { return &Rhs{Kind: RhsPrimary, Primary: IntPrimary(n)} }

func FloatRhs(f float32) *Rhs { return &Rhs{Kind: RhsPrimary, Primary: FloatPrimary(f)} }

func ValueRhs(v *Value) *Rhs { return &Rhs{Kind: RhsPrimary, Primary: ValuePrimary(v)} }

func CompvarRhs(c *Compvar) *Rhs { return ValueRhs(c.Current) }

func InternalRhs(i *exprtree.Internal) *Rhs { return &Rhs{Kind: RhsInternal, Internal: i} }

// OpRhs applies op to args, which must match its arity
func OpRhs(op OpCode, args ...Primary) *Rhs {
	desc := op.Op()
	if len(args) != desc.Arity {
		panic(errors.Internal("OpRhs", "%s takes %d arguments, got %d", desc.Name, desc.Arity, len(args)))
	}
	return &Rhs{Kind: RhsOp, Op: desc, Args: args}
}

// operands returns pointers to every primary of r
func (r *Rhs) operands() []*Primary {
	switch r.Kind {
	case RhsPrimary:
		return []*Primary{&r.Primary}
	case RhsInternal:
		return nil
	case RhsOp:
		ps := make([]*Primary, len(r.Args))
		for i := range r.Args {
			ps[i] = &r.Args[i]
		}
		return ps
	}
	panic(errors.Internal("operands", "unknown rhs kind %d", r.Kind))
}

// findValue returns the first operand of r referring to v
func (r *Rhs) findValue(v *Value) *Primary {
	for _, p := range r.operands() {
		if p.Kind == PrimaryValue && p.Value == v {
			return p
		}
	}
	return nil
}

// SingleValue returns the value r copies, if r is a plain value reference
func (r *Rhs) SingleValue() (*Value, bool) {
	if r.Kind == RhsPrimary && r.Primary.Kind == PrimaryValue {
		return r.Primary.Value, true
	}
	return nil, false
}

type StmtKind int

const (
	StmtNil StmtKind = iota
	StmtAssign
	StmtPhi
	StmtIf
	StmtWhile
)

var stmtKindNames = map[StmtKind]string{
	StmtNil:    "nil",
	StmtAssign: "assign",
	StmtPhi:    "phi",
	StmtIf:     "if",
	StmtWhile:  "while",
}

func (k StmtKind) String() string { return stmtKindNames[k] }

// Statement is a node of the structured statement tree. Siblings chain
// through Next; conditionals and loops own child chains.
type Statement struct {
	Kind  StmtKind
	Index int

	// assign and phi; Rhs2 is the alternative or loop-carried operand
	Lhs  *Value
	Rhs  *Rhs
	Rhs2 *Rhs

	// if
	Condition   *Rhs
	Consequent  *Statement
	Alternative *Statement

	// while
	Entry     *Statement
	Invariant *Rhs
	Body      *Statement

	Next *Statement
}

// reads returns every rhs whose values the statement uses
func (s *Statement) reads() []*Rhs {
	switch s.Kind {
	case StmtNil:
		return nil
	case StmtAssign:
		return []*Rhs{s.Rhs}
	case StmtPhi:
		return []*Rhs{s.Rhs, s.Rhs2}
	case StmtIf:
		return []*Rhs{s.Condition}
	case StmtWhile:
		return []*Rhs{s.Invariant}
	}
	panic(errors.Internal("reads", "unknown statement kind %d", s.Kind))
}

// findValue returns the first operand of s referring to v
func (s *Statement) findValue(v *Value) *Primary {
	for _, r := range s.reads() {
		if p := r.findValue(v); p != nil {
			return p
		}
	}
	return nil
}
