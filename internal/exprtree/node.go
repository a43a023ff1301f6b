package exprtree

import "fmt"

// Position locates a node in the interchange source it was read from
type Position struct {
	Filename string
	Line     int
	Column   int
}

func (p Position) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// Node is an arity annotated expression tree node.
// Length reports the number of tuple components the node evaluates to.
type Node interface {
	NodePos() Position
	Length() int
	isNode()
}

// Variable is the external identity of a user variable.
// The backend keys its per-component storage on the pointer.
type Variable struct {
	Name   string
	Length int
}

// Internal is an implicit environment input such as the pixel coordinates
type Internal struct {
	Name  string
	Index int
}

type UserValKind int

const (
	UserValInt UserValKind = iota + 1
	UserValFloat
	UserValBool
	UserValCurve
	UserValColor
	UserValGradient
	UserValImage
)

var userValKindNames = map[UserValKind]string{
	UserValInt:      "int",
	UserValFloat:    "float",
	UserValBool:     "bool",
	UserValCurve:    "curve",
	UserValColor:    "color",
	UserValGradient: "gradient",
	UserValImage:    "image",
}

func (k UserValKind) String() string {
	if name, ok := userValKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("userval(%d)", int(k))
}

// UserValInfo describes a typed user parameter slot
type UserValInfo struct {
	Kind  UserValKind
	Index int
}

type (
	IntConst struct {
		Pos   Position
		Value int
	}

	FloatConst struct {
		Pos   Position
		Value float32
	}

	TupleConst struct {
		Pos  Position
		Data []float32
	}

	Tuple struct {
		Pos   Position
		Elems []Node
	}

	Select struct {
		Pos        Position
		Tuple      Node
		Subscripts []Node
	}

	VarRef struct {
		Pos Position
		Var *Variable
	}

	InternalRef struct {
		Pos      Position
		Internal *Internal
	}

	Assign struct {
		Pos   Position
		Var   *Variable
		Value Node
	}

	SubAssign struct {
		Pos        Position
		Var        *Variable
		Value      Node
		Subscripts []Node
	}

	Cast struct {
		Pos   Position
		Tag   string
		Tuple Node
	}

	Call struct {
		Pos    Position
		Name   string
		Args   []Node
		Result int
	}

	Sequence struct {
		Pos   Position
		Left  Node
		Right Node
	}

	// If is if/then when Alternative is nil, if/then/else otherwise
	If struct {
		Pos         Position
		Condition   Node
		Consequent  Node
		Alternative Node
	}

	While struct {
		Pos       Position
		Invariant Node
		Body      Node
		DoWhile   bool
	}

	UserVal struct {
		Pos  Position
		Info *UserValInfo
		Arg  Node // sample position for curves and gradients
	}
)

func (n *IntConst) NodePos() Position    { return n.Pos }
func (n *FloatConst) NodePos() Position  { return n.Pos }
func (n *TupleConst) NodePos() Position  { return n.Pos }
func (n *Tuple) NodePos() Position       { return n.Pos }
func (n *Select) NodePos() Position      { return n.Pos }
func (n *VarRef) NodePos() Position      { return n.Pos }
func (n *InternalRef) NodePos() Position { return n.Pos }
func (n *Assign) NodePos() Position      { return n.Pos }
func (n *SubAssign) NodePos() Position   { return n.Pos }
func (n *Cast) NodePos() Position        { return n.Pos }
func (n *Call) NodePos() Position        { return n.Pos }
func (n *Sequence) NodePos() Position    { return n.Pos }
func (n *If) NodePos() Position          { return n.Pos }
func (n *While) NodePos() Position       { return n.Pos }
func (n *UserVal) NodePos() Position     { return n.Pos }

func (*IntConst) Length() int      { return 1 }
func (*FloatConst) Length() int    { return 1 }
func (n *TupleConst) Length() int  { return len(n.Data) }
func (n *Select) Length() int      { return len(n.Subscripts) }
func (n *VarRef) Length() int      { return n.Var.Length }
func (*InternalRef) Length() int   { return 1 }
func (n *Assign) Length() int      { return n.Var.Length }
func (n *SubAssign) Length() int   { return len(n.Subscripts) }
func (n *Cast) Length() int        { return n.Tuple.Length() }
func (n *Call) Length() int        { return n.Result }
func (n *Sequence) Length() int    { return n.Right.Length() }
func (n *If) Length() int          { return n.Consequent.Length() }
func (*While) Length() int         { return 1 }

func (n *Tuple) Length() int {
	l := 0
	for _, e := range n.Elems {
		l += e.Length()
	}
	return l
}

func (n *UserVal) Length() int {
	if n.Info.Kind == UserValColor || n.Info.Kind == UserValGradient {
		return 4
	}
	return 1
}

func (*IntConst) isNode()    {}
func (*FloatConst) isNode()  {}
func (*TupleConst) isNode()  {}
func (*Tuple) isNode()       {}
func (*Select) isNode()      {}
func (*VarRef) isNode()      {}
func (*InternalRef) isNode() {}
func (*Assign) isNode()      {}
func (*SubAssign) isNode()   {}
func (*Cast) isNode()        {}
func (*Call) isNode()        {}
func (*Sequence) isNode()    {}
func (*If) isNode()          {}
func (*While) isNode()       {}
func (*UserVal) isNode()     {}

// SingleConst reports whether n is a single statically known number and
// returns it truncated to an integer.
func SingleConst(n Node) (int, bool) {
	switch n := n.(type) {
	case *IntConst:
		return n.Value, true
	case *FloatConst:
		return int(n.Value), true
	case *TupleConst:
		if len(n.Data) == 1 {
			return int(n.Data[0]), true
		}
	case *Cast:
		return SingleConst(n.Tuple)
	}
	return 0, false
}

// Standard internal slots, in the order the invocation context stores them
const (
	InternalX = iota
	InternalY
	InternalR
	InternalA
	InternalT
	InternalXMax
	InternalYMax
	InternalW
	InternalH
	InternalRMax

	NumInternals
)

// StandardInternals returns a fresh table of the environment inputs
func StandardInternals() map[string]*Internal {
	names := []string{"x", "y", "r", "a", "t", "X", "Y", "W", "H", "R"}
	internals := make(map[string]*Internal, len(names))
	for i, name := range names {
		internals[name] = &Internal{Name: name, Index: i}
	}
	return internals
}
