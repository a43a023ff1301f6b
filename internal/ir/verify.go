package ir

import (
	"mathmap/internal/errors"
)

type verifier struct {
	defs      map[*Value]int
	reads     map[*Value]map[*Statement]int
	versions  map[*Compvar]map[int]bool
	lastIndex int
	err       error
}

func (v *verifier) fail(format string, args ...any) {
	if v.err == nil {
		v.err = errors.Internal("Verify", format, args...)
	}
}

// Verify checks the SSA invariants of a lowered program: single
// definitions with unique versions, exact use-lists, phis only at joins
// and loop entries, and increasing emission indices.
func Verify(p *Program) error {
	v := &verifier{
		defs:      make(map[*Value]int),
		reads:     make(map[*Value]map[*Statement]int),
		versions:  make(map[*Compvar]map[int]bool),
		lastIndex: -1,
	}
	v.chain(p.First, false)
	if v.err != nil {
		return v.err
	}

	for val, n := range v.defs {
		if n != 1 {
			v.fail("%v defined %d times", val, n)
		}
	}

	for _, val := range p.Values {
		listed := make(map[*Statement]int)
		for _, stmt := range val.Uses {
			listed[stmt]++
		}
		actual := v.reads[val]
		if len(listed) != len(actual) {
			v.fail("%v has %d using statements listed, %d actual", val, len(listed), len(actual))
			continue
		}
		for stmt, n := range actual {
			if listed[stmt] != n {
				v.fail("%v read %d times by statement %d, listed %d times", val, n, stmt.Index, listed[stmt])
			}
		}
	}

	return v.err
}

func (v *verifier) chain(stmt *Statement, entry bool) {
	var prev *Statement
	for ; stmt != nil; prev, stmt = stmt, stmt.Next {
		if entry {
			if stmt.Kind != StmtPhi {
				v.fail("%v statement %d in loop entry", stmt.Kind, stmt.Index)
			}
		} else if stmt.Kind == StmtPhi {
			if prev == nil || (prev.Kind != StmtIf && prev.Kind != StmtPhi) {
				v.fail("phi %d does not follow an if statement", stmt.Index)
			}
		} else {
			if stmt.Index <= v.lastIndex {
				v.fail("statement %d emitted after statement %d", stmt.Index, v.lastIndex)
			}
			v.lastIndex = stmt.Index
		}

		for _, r := range stmt.reads() {
			for _, p := range r.operands() {
				if p.Kind != PrimaryValue {
					continue
				}
				m := v.reads[p.Value]
				if m == nil {
					m = make(map[*Statement]int)
					v.reads[p.Value] = m
				}
				m[stmt]++
			}
		}

		switch stmt.Kind {
		case StmtAssign, StmtPhi:
			v.define(stmt)
		case StmtIf:
			v.chain(stmt.Consequent, false)
			v.chain(stmt.Alternative, false)
		case StmtWhile:
			v.chain(stmt.Entry, true)
			v.chain(stmt.Body, false)
		}
	}
}

func (v *verifier) define(stmt *Statement) {
	lhs := stmt.Lhs
	v.defs[lhs]++
	if lhs.Def != stmt {
		v.fail("%v does not record statement %d as its definition", lhs, stmt.Index)
	}
	if lhs.Index < 0 {
		v.fail("%v assigned by statement %d was never committed", lhs, stmt.Index)
		return
	}
	seen := v.versions[lhs.Compvar]
	if seen == nil {
		seen = make(map[int]bool)
		v.versions[lhs.Compvar] = seen
	}
	if seen[lhs.Index] {
		v.fail("version %d of %v defined twice", lhs.Index, lhs.Compvar)
	}
	seen[lhs.Index] = true
}
