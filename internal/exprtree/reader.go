package exprtree

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"

	"mathmap/internal/errors"
)

// Signatures resolves the result arity of a function application
type Signatures interface {
	ResultLength(name string, argLengths []int) (int, error)
}

// Program is a tree read from its interchange form together with the
// identities it introduced.
type Program struct {
	Root      Node
	Variables []*Variable
	Internals map[string]*Internal
	UserVals  []*UserValInfo
}

// ReadError carries every diagnostic produced while reading a tree
type ReadError struct {
	Diagnostics []errors.CompilerError
}

func (e *ReadError) Error() string {
	msgs := make([]string, 0, len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		msgs = append(msgs, fmt.Sprintf("%d:%d: %s", d.Position.Line, d.Position.Column, d.Message))
	}
	return strings.Join(msgs, "; ")
}

type reader struct {
	sigs     Signatures
	vars     map[string]*Variable
	program  *Program
	userVals map[UserValInfo]*UserValInfo
	diags    []errors.CompilerError
}

// Read parses the interchange form and rebuilds the annotated tree.
// Several top level expressions form a sequence.
func Read(filename, source string, sigs Signatures) (*Program, error) {
	file, err := treeParser.ParseString(filename, source)
	if err != nil {
		return nil, &ReadError{Diagnostics: []errors.CompilerError{syntaxDiagnostic(err)}}
	}
	if len(file.Exprs) == 0 {
		return nil, &ReadError{Diagnostics: []errors.CompilerError{
			errors.EmptyTree(errors.Position{Filename: filename, Line: 1, Column: 1}),
		}}
	}

	r := &reader{
		sigs:     sigs,
		vars:     make(map[string]*Variable),
		userVals: make(map[UserValInfo]*UserValInfo),
		program:  &Program{Internals: StandardInternals()},
	}

	// variables are introduced left to right, so build before chaining
	nodes := make([]Node, 0, len(file.Exprs))
	for _, x := range file.Exprs {
		nodes = append(nodes, r.build(x))
	}
	if len(r.diags) > 0 {
		return nil, &ReadError{Diagnostics: r.diags}
	}
	root := nodes[len(nodes)-1]
	for i := len(nodes) - 2; i >= 0; i-- {
		root = &Sequence{Pos: nodes[i].NodePos(), Left: nodes[i], Right: root}
	}

	r.program.Root = root
	return r.program, nil
}

func syntaxDiagnostic(err error) errors.CompilerError {
	if pe, ok := err.(participle.Error); ok {
		pos := pe.Position()
		return errors.Syntax(pe.Message(), errors.Position{Filename: pos.Filename, Line: pos.Line, Column: pos.Column})
	}
	return errors.Syntax(err.Error(), errors.Position{Line: 1, Column: 1})
}

func (r *reader) errorf(pos Position, code, format string, args ...any) {
	r.diags = append(r.diags, errors.CompilerError{
		Level:    errors.Error,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Position: errors.Position{Filename: pos.Filename, Line: pos.Line, Column: pos.Column},
		Length:   1,
	})
}

// bad stands in for a node that failed to build so reading can continue
func bad(pos Position) Node {
	return &IntConst{Pos: pos}
}

func (r *reader) build(x *sexpr) Node {
	pos := position(x.Pos)

	switch x.Head {
	case "int":
		if !r.argc(x, 1, 1) {
			return bad(pos)
		}
		v, ok := r.number(x.Args[0])
		if !ok {
			return bad(pos)
		}
		return &IntConst{Pos: pos, Value: int(v)}

	case "float":
		if !r.argc(x, 1, 1) {
			return bad(pos)
		}
		v, ok := r.number(x.Args[0])
		if !ok {
			return bad(pos)
		}
		return &FloatConst{Pos: pos, Value: float32(v)}

	case "tuple-const":
		if !r.argc(x, 1, -1) {
			return bad(pos)
		}
		data := make([]float32, 0, len(x.Args))
		for _, a := range x.Args {
			v, ok := r.number(a)
			if !ok {
				return bad(pos)
			}
			data = append(data, float32(v))
		}
		return &TupleConst{Pos: pos, Data: data}

	case "tuple":
		if !r.argc(x, 1, -1) {
			return bad(pos)
		}
		return &Tuple{Pos: pos, Elems: r.nodes(x.Args)}

	case "select":
		if !r.argc(x, 2, -1) {
			return bad(pos)
		}
		tuple := r.node(x.Args[0])
		subs := r.nodes(x.Args[1:])
		r.scalars(subs)
		return &Select{Pos: pos, Tuple: tuple, Subscripts: subs}

	case "var":
		if !r.argc(x, 1, 1) {
			return bad(pos)
		}
		name, ok := r.symbol(x.Args[0])
		if !ok {
			return bad(pos)
		}
		v, ok := r.vars[name]
		if !ok {
			r.errorf(pos, errors.ErrorUndefinedVariable, "undefined variable '%s'", name)
			return bad(pos)
		}
		return &VarRef{Pos: pos, Var: v}

	case "internal":
		if !r.argc(x, 1, 1) {
			return bad(pos)
		}
		name, ok := r.symbol(x.Args[0])
		if !ok {
			return bad(pos)
		}
		internal, ok := r.program.Internals[name]
		if !ok {
			r.errorf(pos, errors.ErrorUnknownInternal, "unknown internal '%s'", name)
			return bad(pos)
		}
		return &InternalRef{Pos: pos, Internal: internal}

	case "assign":
		if !r.argc(x, 2, 2) {
			return bad(pos)
		}
		name, ok := r.symbol(x.Args[0])
		if !ok {
			return bad(pos)
		}
		value := r.node(x.Args[1])
		v := r.variable(pos, name, value.Length())
		if v == nil {
			return bad(pos)
		}
		return &Assign{Pos: pos, Var: v, Value: value}

	case "sub-assign":
		if !r.argc(x, 3, -1) {
			return bad(pos)
		}
		name, ok := r.symbol(x.Args[0])
		if !ok {
			return bad(pos)
		}
		v, ok := r.vars[name]
		if !ok {
			r.errorf(pos, errors.ErrorUndefinedVariable, "undefined variable '%s'", name)
			return bad(pos)
		}
		value := r.node(x.Args[1])
		subs := r.nodes(x.Args[2:])
		r.scalars(subs)
		if value.Length() != len(subs) {
			r.errorf(pos, errors.ErrorArityMismatch, "sub-assignment of %d components through %d subscripts", value.Length(), len(subs))
			return bad(pos)
		}
		return &SubAssign{Pos: pos, Var: v, Value: value, Subscripts: subs}

	case "cast":
		if !r.argc(x, 2, 2) {
			return bad(pos)
		}
		tag, ok := r.symbol(x.Args[0])
		if !ok {
			return bad(pos)
		}
		return &Cast{Pos: pos, Tag: tag, Tuple: r.node(x.Args[1])}

	case "call":
		if !r.argc(x, 1, -1) {
			return bad(pos)
		}
		name, ok := r.symbol(x.Args[0])
		if !ok {
			return bad(pos)
		}
		args := r.nodes(x.Args[1:])
		lengths := make([]int, len(args))
		for i, a := range args {
			lengths[i] = a.Length()
		}
		result, err := r.sigs.ResultLength(name, lengths)
		if err != nil {
			r.errorf(pos, errors.ErrorUnknownFunction, "%s: %v", name, err)
			return bad(pos)
		}
		return &Call{Pos: pos, Name: name, Args: args, Result: result}

	case "seq":
		if !r.argc(x, 1, -1) {
			return bad(pos)
		}
		nodes := r.nodes(x.Args)
		n := nodes[len(nodes)-1]
		for i := len(nodes) - 2; i >= 0; i-- {
			n = &Sequence{Pos: nodes[i].NodePos(), Left: nodes[i], Right: n}
		}
		return n

	case "if":
		if !r.argc(x, 2, 3) {
			return bad(pos)
		}
		n := &If{Pos: pos, Condition: r.node(x.Args[0]), Consequent: r.node(x.Args[1])}
		r.scalars([]Node{n.Condition})
		if len(x.Args) == 3 {
			n.Alternative = r.node(x.Args[2])
			if n.Alternative.Length() != n.Consequent.Length() {
				r.errorf(pos, errors.ErrorArityMismatch, "branches have %d and %d components", n.Consequent.Length(), n.Alternative.Length())
			}
		}
		return n

	case "while":
		if !r.argc(x, 2, 2) {
			return bad(pos)
		}
		n := &While{Pos: pos, Invariant: r.node(x.Args[0]), Body: r.node(x.Args[1])}
		r.scalars([]Node{n.Invariant})
		return n

	case "do-while":
		if !r.argc(x, 2, 2) {
			return bad(pos)
		}
		n := &While{Pos: pos, Body: r.node(x.Args[0]), Invariant: r.node(x.Args[1]), DoWhile: true}
		r.scalars([]Node{n.Invariant})
		return n

	case "userval-int", "userval-float", "userval-bool", "userval-color", "userval-image":
		if !r.argc(x, 1, 1) {
			return bad(pos)
		}
		return r.userVal(pos, strings.TrimPrefix(x.Head, "userval-"), x.Args[0], nil)

	case "userval-curve", "userval-gradient":
		if !r.argc(x, 2, 2) {
			return bad(pos)
		}
		arg := r.node(x.Args[1])
		r.scalars([]Node{arg})
		return r.userVal(pos, strings.TrimPrefix(x.Head, "userval-"), x.Args[0], arg)
	}

	r.errorf(pos, errors.ErrorUnknownForm, "unknown form '%s'", x.Head)
	return bad(pos)
}

var userValKinds = map[string]UserValKind{
	"int":      UserValInt,
	"float":    UserValFloat,
	"bool":     UserValBool,
	"curve":    UserValCurve,
	"color":    UserValColor,
	"gradient": UserValGradient,
	"image":    UserValImage,
}

func (r *reader) userVal(pos Position, kind string, index *atom, arg Node) Node {
	idx, ok := r.number(index)
	if !ok {
		return bad(pos)
	}
	if idx < 0 {
		r.errorf(pos, errors.ErrorBadLiteral, "negative user value index %d", int(idx))
		return bad(pos)
	}

	key := UserValInfo{Kind: userValKinds[kind], Index: int(idx)}
	info, ok := r.userVals[key]
	if !ok {
		info = &UserValInfo{Kind: key.Kind, Index: key.Index}
		r.userVals[key] = info
		r.program.UserVals = append(r.program.UserVals, info)
	}

	return &UserVal{Pos: pos, Info: info, Arg: arg}
}

func (r *reader) variable(pos Position, name string, length int) *Variable {
	if v, ok := r.vars[name]; ok {
		if v.Length != length {
			r.errorf(pos, errors.ErrorArityMismatch, "variable '%s' has %d components, assigned %d", name, v.Length, length)
			return nil
		}
		return v
	}

	v := &Variable{Name: name, Length: length}
	r.vars[name] = v
	r.program.Variables = append(r.program.Variables, v)
	return v
}

func (r *reader) argc(x *sexpr, min, max int) bool {
	n := len(x.Args)
	if n < min || (max >= 0 && n > max) {
		r.errorf(position(x.Pos), errors.ErrorArityMismatch, "'%s' takes %s, got %d", x.Head, argRange(min, max), n)
		return false
	}
	return true
}

func argRange(min, max int) string {
	switch {
	case min == max:
		return fmt.Sprintf("%d arguments", min)
	case max < 0:
		return fmt.Sprintf("at least %d arguments", min)
	default:
		return fmt.Sprintf("%d to %d arguments", min, max)
	}
}

func (r *reader) node(a *atom) Node {
	pos := position(a.Pos)
	switch {
	case a.List != nil:
		return r.build(a.List)
	case a.Int != nil:
		return &IntConst{Pos: pos, Value: int(*a.Int)}
	case a.Float != nil:
		return &FloatConst{Pos: pos, Value: float32(*a.Float)}
	}
	r.errorf(pos, errors.ErrorUnknownForm, "bare symbol '%s' is not an expression", *a.Symbol)
	return bad(pos)
}

func (r *reader) nodes(atoms []*atom) []Node {
	nodes := make([]Node, 0, len(atoms))
	for _, a := range atoms {
		nodes = append(nodes, r.node(a))
	}
	return nodes
}

func (r *reader) scalars(nodes []Node) {
	for _, n := range nodes {
		if n.Length() != 1 {
			r.errorf(n.NodePos(), errors.ErrorArityMismatch, "expected a single component, got %d", n.Length())
		}
	}
}

func (r *reader) number(a *atom) (float64, bool) {
	switch {
	case a.Int != nil:
		return float64(*a.Int), true
	case a.Float != nil:
		return *a.Float, true
	}
	r.errorf(position(a.Pos), errors.ErrorBadLiteral, "expected a number")
	return 0, false
}

func (r *reader) symbol(a *atom) (string, bool) {
	if a.Symbol != nil {
		return *a.Symbol, true
	}
	r.errorf(position(a.Pos), errors.ErrorBadLiteral, "expected a name")
	return "", false
}
