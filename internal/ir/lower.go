package ir

import (
	"mathmap/internal/errors"
	"mathmap/internal/exprtree"
)

// Builtin is one entry of the op library. Generate emits code computing
// the function from the argument compvars into dest.
type Builtin struct {
	Name         string
	ResultLength func(argLengths []int) (int, error)
	Generate     func(s *Session, args [][]*Compvar, dest []*Compvar)
}

// Library resolves function applications during lowering
type Library interface {
	Lookup(name string) (*Builtin, bool)
}

// Program is the result of lowering one expression tree
type Program struct {
	First      *Statement
	Result     []*Compvar
	Compvars   []*Compvar
	Values     []*Value
	Statements []*Statement
}

// Lower lowers tree into a fresh statement tree. Compiler invariant
// violations are returned as *errors.InternalError.
func (s *Session) Lower(tree exprtree.Node) (p *Program, err error) {
	s.reset()

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		ie, ok := r.(*errors.InternalError)
		if !ok {
			panic(r)
		}
		log.Errorf("%v", ie)
		p, err = nil, ie
	}()

	result := make([]*Compvar, tree.Length())
	s.genCode(tree, result, false)

	if len(s.stack) != 0 {
		panic(errors.Internal("Lower", "%d constructs left open", len(s.stack)))
	}

	log.Debugf("lowered %d statements over %d compvars", len(s.statements), len(s.compvars))

	return s.Program(result), nil
}

// Program packages everything emitted so far with the given result
func (s *Session) Program(result []*Compvar) *Program {
	return &Program{
		First:      s.first,
		Result:     result,
		Compvars:   s.compvars,
		Values:     s.values,
		Statements: s.statements,
	}
}

func (s *Session) dests(dest []*Compvar, alloced bool) {
	if alloced {
		return
	}
	for i := range dest {
		dest[i] = s.MakeTemporary()
	}
}

// genCode lowers tree into dest. When alloced is set dest holds the
// compvars to assign, otherwise genCode fills it with compvars holding
// the result.
func (s *Session) genCode(tree exprtree.Node, dest []*Compvar, alloced bool) {
	switch n := tree.(type) {
	case *exprtree.IntConst:
		s.dests(dest[:1], alloced)
		s.EmitAssign(s.MakeLHS(dest[0]), IntRhs(n.Value))

	case *exprtree.FloatConst:
		s.dests(dest[:1], alloced)
		s.EmitAssign(s.MakeLHS(dest[0]), FloatRhs(n.Value))

	case *exprtree.TupleConst:
		s.dests(dest[:len(n.Data)], alloced)
		for i, f := range n.Data {
			s.EmitAssign(s.MakeLHS(dest[i]), FloatRhs(f))
		}

	case *exprtree.Tuple:
		i := 0
		for _, elem := range n.Elems {
			l := elem.Length()
			s.genCode(elem, dest[i:i+l], alloced)
			i += l
		}

	case *exprtree.Select:
		s.genSelect(n, dest, alloced)

	case *exprtree.VarRef:
		cvs := s.variableCompvars(n.Var)
		for i, c := range cvs {
			if alloced {
				s.EmitAssign(s.MakeLHS(dest[i]), CompvarRhs(c))
			} else {
				dest[i] = c
			}
		}

	case *exprtree.InternalRef:
		s.dests(dest[:1], alloced)
		s.EmitAssign(s.MakeLHS(dest[0]), InternalRhs(n.Internal))

	case *exprtree.Assign:
		cvs := s.variableCompvars(n.Var)
		s.genCode(n.Value, cvs, true)
		for i, c := range cvs {
			if alloced {
				s.EmitAssign(s.MakeLHS(dest[i]), CompvarRhs(c))
			} else {
				dest[i] = c
			}
		}

	case *exprtree.SubAssign:
		s.genSubAssign(n, dest, alloced)

	case *exprtree.Cast:
		s.genCode(n.Tuple, dest, alloced)

	case *exprtree.Call:
		s.genCall(n, dest, alloced)

	case *exprtree.Sequence:
		s.genCode(n.Left, make([]*Compvar, n.Left.Length()), false)
		s.genCode(n.Right, dest, alloced)

	case *exprtree.If:
		s.genIf(n, dest, alloced)

	case *exprtree.While:
		s.genWhile(n, dest, alloced)

	case *exprtree.UserVal:
		s.genUserVal(n, dest, alloced)

	default:
		panic(errors.Internal("genCode", "unknown node %T", tree))
	}
}

// clamp limits a constant subscript to [0, length-1]
func clamp(subscript, length int) int {
	if subscript < 0 {
		return 0
	}
	if subscript >= length {
		return length - 1
	}
	return subscript
}

func (s *Session) genSelect(n *exprtree.Select, dest []*Compvar, alloced bool) {
	length := n.Tuple.Length()
	temps := make([]*Compvar, length)
	s.genCode(n.Tuple, temps, false)

	for i, sub := range n.Subscripts {
		if k, ok := exprtree.SingleConst(sub); ok {
			k = clamp(k, length)
			if alloced {
				s.EmitAssign(s.MakeLHS(dest[i]), CompvarRhs(temps[k]))
			} else {
				dest[i] = temps[k]
			}
			continue
		}

		if !alloced {
			dest[i] = s.MakeTemporary()
		}
		index := make([]*Compvar, 1)
		s.genCode(sub, index, false)

		// index < 1 ? t0 : index < 2 ? t1 : ... : t[length-1]
		for j := 1; j < length; j++ {
			s.StartIfCond(OpRhs(OpLess, CompvarPrimary(index[0]), IntPrimary(j)))
			s.EmitAssign(s.MakeLHS(dest[i]), CompvarRhs(temps[j-1]))
			s.SwitchIfBranch()
		}
		s.EmitAssign(s.MakeLHS(dest[i]), CompvarRhs(temps[length-1]))
		for j := 1; j < length; j++ {
			s.EndIfCond()
		}
	}
}

func (s *Session) genSubAssign(n *exprtree.SubAssign, dest []*Compvar, alloced bool) {
	cvs := s.variableCompvars(n.Var)
	length := len(cvs)

	temps := make([]*Compvar, n.Value.Length())
	s.genCode(n.Value, temps, false)

	for i, sub := range n.Subscripts {
		if k, ok := exprtree.SingleConst(sub); ok {
			s.EmitAssign(s.MakeLHS(cvs[clamp(k, length)]), CompvarRhs(temps[i]))
		} else {
			index := make([]*Compvar, 1)
			s.genCode(sub, index, false)

			for j := 1; j < length; j++ {
				s.StartIfCond(OpRhs(OpLess, CompvarPrimary(index[0]), IntPrimary(j)))
				s.EmitAssign(s.MakeLHS(cvs[j-1]), CompvarRhs(temps[i]))
				s.SwitchIfBranch()
			}
			s.EmitAssign(s.MakeLHS(cvs[length-1]), CompvarRhs(temps[i]))
			for j := 1; j < length; j++ {
				s.EndIfCond()
			}
		}

		if alloced {
			s.EmitAssign(s.MakeLHS(dest[i]), CompvarRhs(temps[i]))
		} else {
			dest[i] = temps[i]
		}
	}
}

func (s *Session) genCall(n *exprtree.Call, dest []*Compvar, alloced bool) {
	if s.lib == nil {
		panic(errors.Internal("genCall", "no op library for '%s'", n.Name))
	}
	b, ok := s.lib.Lookup(n.Name)
	if !ok {
		panic(errors.Internal("genCall", "function '%s' is not in the op library", n.Name))
	}

	args := make([][]*Compvar, len(n.Args))
	for i, arg := range n.Args {
		args[i] = make([]*Compvar, arg.Length())
		s.genCode(arg, args[i], false)
	}

	s.dests(dest[:n.Result], alloced)
	b.Generate(s, args, dest[:n.Result])
}

func (s *Session) genIf(n *exprtree.If, dest []*Compvar, alloced bool) {
	length := n.Length()
	result := make([]*Compvar, length)
	for i := range result {
		result[i] = s.MakeTemporary()
	}

	cond := make([]*Compvar, 1)
	s.genCode(n.Condition, cond, false)

	s.StartIfCond(CompvarRhs(cond[0]))
	s.genCode(n.Consequent, result, true)
	s.SwitchIfBranch()
	if n.Alternative != nil {
		s.genCode(n.Alternative, result, true)
	}
	s.EndIfCond()

	for i, c := range result {
		if alloced {
			s.EmitAssign(s.MakeLHS(dest[i]), CompvarRhs(c))
		} else {
			dest[i] = c
		}
	}
}

func (s *Session) genWhile(n *exprtree.While, dest []*Compvar, alloced bool) {
	invariant := []*Compvar{s.MakeTemporary()}
	body := make([]*Compvar, n.Body.Length())

	if n.DoWhile {
		s.genCode(n.Body, body, false)
	}

	s.genCode(n.Invariant, invariant, true)
	s.StartWhileLoop(CompvarRhs(invariant[0]))
	s.genCode(n.Body, body, false)
	s.genCode(n.Invariant, invariant, true)
	s.EndWhileLoop()

	s.dests(dest[:1], alloced)
	s.EmitAssign(s.MakeLHS(dest[0]), IntRhs(0))
}

func (s *Session) genUserVal(n *exprtree.UserVal, dest []*Compvar, alloced bool) {
	index := IntPrimary(n.Info.Index)

	switch n.Info.Kind {
	case exprtree.UserValInt:
		s.dests(dest[:1], alloced)
		s.EmitAssign(s.MakeLHS(dest[0]), OpRhs(OpUserValInt, index))

	case exprtree.UserValFloat:
		s.dests(dest[:1], alloced)
		s.EmitAssign(s.MakeLHS(dest[0]), OpRhs(OpUserValFloat, index))

	case exprtree.UserValBool:
		s.dests(dest[:1], alloced)
		s.EmitAssign(s.MakeLHS(dest[0]), OpRhs(OpUserValBool, index))

	case exprtree.UserValCurve:
		s.dests(dest[:1], alloced)
		pos := make([]*Compvar, 1)
		s.genCode(n.Arg, pos, false)
		s.EmitAssign(s.MakeLHS(dest[0]), OpRhs(OpUserValCurve, index, CompvarPrimary(pos[0])))

	case exprtree.UserValColor, exprtree.UserValGradient:
		temp := s.MakeTemporary()
		s.dests(dest[:4], alloced)

		if n.Info.Kind == exprtree.UserValColor {
			s.EmitAssign(s.MakeLHS(temp), OpRhs(OpUserValColor, index))
		} else {
			pos := make([]*Compvar, 1)
			s.genCode(n.Arg, pos, false)
			s.EmitAssign(s.MakeLHS(temp), OpRhs(OpUserValGradient, index, CompvarPrimary(pos[0])))
		}

		s.EmitChannels(temp, dest[:4])

	case exprtree.UserValImage:
		s.dests(dest[:1], alloced)
		s.EmitAssign(s.MakeLHS(dest[0]), IntRhs(n.Info.Index))

	default:
		panic(errors.Internal("genUserVal", "unknown user value kind %v", n.Info.Kind))
	}
}

// EmitChannels decomposes the colour in c into four float channels
func (s *Session) EmitChannels(c *Compvar, dest []*Compvar) {
	if len(dest) != 4 {
		panic(errors.Internal("EmitChannels", "%d destinations for a colour", len(dest)))
	}
	for i, op := range []OpCode{OpRed, OpGreen, OpBlue, OpAlpha} {
		s.EmitAssign(s.MakeLHS(dest[i]), OpRhs(op, CompvarPrimary(c)))
	}
}
