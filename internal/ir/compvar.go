package ir

import (
	"fmt"

	"mathmap/internal/errors"
	"mathmap/internal/exprtree"
)

// Compvar is a storage location accumulating a history of SSA values:
// one component of a user variable, or a compiler temporary.
type Compvar struct {
	Var  *exprtree.Variable // nil for temporaries
	N    int                // component index, variables only
	Temp int                // temporary number, 0 for variables
	ID   int                // dense index within the session

	Type    Type
	Current *Value
	Values  *Value // most recent first

	lastIndex int
}

// IsTemporary reports whether c was created by the compiler
func (c *Compvar) IsTemporary() bool { return c.Var == nil }

func (c *Compvar) String() string {
	if c.Var != nil {
		return fmt.Sprintf("%s[%d]", c.Var.Name, c.N)
	}
	return fmt.Sprintf("$t%d", c.Temp)
}

// Value is a single SSA definition of a compvar
type Value struct {
	Compvar *Compvar
	Index   int          // -1 until committed
	Uses    []*Statement // one entry per operand occurrence
	Next    *Value       // older value of the same compvar
	Def     *Statement
}

func (v *Value) String() string {
	return fmt.Sprintf("%s_%d", v.Compvar, v.Index)
}

func (s *Session) newCompvar(c *Compvar) *Compvar {
	c.ID = len(s.compvars)
	c.Type = TypeInt
	dummy := &Value{Compvar: c, Index: -1}
	c.Current = dummy
	c.Values = dummy
	s.compvars = append(s.compvars, c)
	s.values = append(s.values, dummy)
	return c
}

// MakeTemporary creates a fresh temporary with an unversioned dummy value
func (s *Session) MakeTemporary() *Compvar {
	s.nextTemp++
	return s.newCompvar(&Compvar{Temp: s.nextTemp})
}

// MakeVariable creates the compvar for component n of v
func (s *Session) MakeVariable(v *exprtree.Variable, n int) *Compvar {
	return s.newCompvar(&Compvar{Var: v, N: n})
}

// variableCompvars returns the per-component compvars of v, creating them
// on first reference.
func (s *Session) variableCompvars(v *exprtree.Variable) []*Compvar {
	cvs, ok := s.varCompvars[v]
	if !ok {
		cvs = make([]*Compvar, v.Length)
		s.varCompvars[v] = cvs
	}
	for i := range cvs {
		if cvs[i] == nil {
			cvs[i] = s.MakeVariable(v, i)
		}
	}
	return cvs
}

// MakeLHS allocates a new, not yet versioned value for c
func (s *Session) MakeLHS(c *Compvar) *Value {
	v := &Value{Compvar: c, Index: -1, Next: c.Values}
	c.Values = v
	s.values = append(s.values, v)
	return v
}

// CurrentValue returns the live value of c
func CurrentValue(c *Compvar) *Value {
	return c.Current
}

// assignValueIndexAndMakeCurrent stamps v with the next version of its
// compvar. Variables version per component across every compvar created
// for that component.
func (s *Session) assignValueIndexAndMakeCurrent(v *Value) {
	c := v.Compvar
	if c.Var != nil {
		counters, ok := s.varIndex[c.Var]
		if !ok {
			counters = make([]int, c.Var.Length)
			s.varIndex[c.Var] = counters
		}
		counters[c.N]++
		v.Index = counters[c.N]
	} else {
		c.lastIndex++
		v.Index = c.lastIndex
	}
	c.Current = v
}

func addUse(v *Value, stmt *Statement) {
	v.Uses = append(v.Uses, stmt)
}

func removeUse(v *Value, stmt *Statement) {
	for i, u := range v.Uses {
		if u == stmt {
			v.Uses = append(v.Uses[:i], v.Uses[i+1:]...)
			return
		}
	}
	panic(errors.Internal("removeUse", "statement %d is not a use of %v", stmt.Index, v))
}
