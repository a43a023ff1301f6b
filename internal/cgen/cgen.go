// Package cgen prints a typed statement tree as the body of the C entry
// point that the compile-and-load pipeline substitutes into its template.
package cgen

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"mathmap/internal/errors"
	"mathmap/internal/ir"
)

// ResultSlot is the invocation field the entry point writes its result to
const ResultSlot = "invocation->stack[0]"

var typeDecls = map[ir.Type]string{
	ir.TypeInt:     "int ",
	ir.TypeFloat:   "float ",
	ir.TypeComplex: "float _Complex ",
	ir.TypeColor:   "color_t ",
	ir.TypeMatrix:  "mm_matrix_t *",
	ir.TypeVector:  "mm_vector_t *",
}

// Generator accumulates the C text for one program
type Generator struct {
	out      strings.Builder
	declared map[*ir.Compvar]bool
}

// NewGenerator creates a generator with nothing declared yet
func NewGenerator() *Generator {
	return &Generator{declared: make(map[*ir.Compvar]bool)}
}

// Generate returns the declarations, statements and result store of p.
// Types must have been propagated.
func Generate(p *ir.Program) (code string, err error) {
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(*errors.InternalError)
			if !ok {
				panic(r)
			}
			err = ie
		}
	}()

	g := NewGenerator()
	g.decls(p.First)
	for _, c := range p.Result {
		g.decl(c)
	}
	g.stmts(p.First)
	g.resultStore(p.Result)
	return g.out.String(), nil
}

// Name returns the C identifier of c
func Name(c *ir.Compvar) string {
	if c.Var != nil {
		return fmt.Sprintf("var_%s_%d", sanitize(c.Var.Name), c.N)
	}
	return fmt.Sprintf("tmp_%d", c.Temp)
}

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			fmt.Fprintf(&b, "_%x_", r)
		}
	}
	return b.String()
}

func (g *Generator) decl(c *ir.Compvar) {
	if g.declared[c] {
		return
	}
	decl, ok := typeDecls[c.Type]
	if !ok {
		panic(errors.Internal("cgen", "compvar %v has no type", c))
	}
	fmt.Fprintf(&g.out, "%s%s = 0;\n", decl, Name(c))
	g.declared[c] = true
}

func (g *Generator) rhsDecls(r *ir.Rhs) {
	switch r.Kind {
	case ir.RhsPrimary:
		if r.Primary.Kind == ir.PrimaryValue {
			g.decl(r.Primary.Value.Compvar)
		}
	case ir.RhsOp:
		for _, a := range r.Args {
			if a.Kind == ir.PrimaryValue {
				g.decl(a.Value.Compvar)
			}
		}
	}
}

func (g *Generator) decls(stmt *ir.Statement) {
	for ; stmt != nil; stmt = stmt.Next {
		switch stmt.Kind {
		case ir.StmtNil:
		case ir.StmtAssign:
			g.decl(stmt.Lhs.Compvar)
			g.rhsDecls(stmt.Rhs)
		case ir.StmtPhi:
			g.decl(stmt.Lhs.Compvar)
			g.rhsDecls(stmt.Rhs)
			g.rhsDecls(stmt.Rhs2)
		case ir.StmtIf:
			g.rhsDecls(stmt.Condition)
			g.decls(stmt.Consequent)
			g.decls(stmt.Alternative)
		case ir.StmtWhile:
			g.rhsDecls(stmt.Invariant)
			g.decls(stmt.Entry)
			g.decls(stmt.Body)
		default:
			panic(errors.Internal("cgen", "unknown statement kind %d", stmt.Kind))
		}
	}
}

// Float formats f as a C float literal
func Float(f float32) string {
	switch {
	case math.IsNaN(float64(f)):
		return "NAN"
	case math.IsInf(float64(f), 1):
		return "HUGE_VALF"
	case math.IsInf(float64(f), -1):
		return "(-HUGE_VALF)"
	}
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s + "f"
}

func primary(p *ir.Primary) string {
	switch p.Kind {
	case ir.PrimaryValue:
		return Name(p.Value.Compvar)
	case ir.PrimaryIntConst:
		return strconv.Itoa(p.Int)
	case ir.PrimaryFloatConst:
		return Float(p.Float)
	}
	panic(errors.Internal("cgen", "unknown primary kind %d", p.Kind))
}

func rhs(r *ir.Rhs) string {
	switch r.Kind {
	case ir.RhsPrimary:
		return primary(&r.Primary)
	case ir.RhsInternal:
		return fmt.Sprintf("invocation->internals[%d]", r.Internal.Index)
	case ir.RhsOp:
		args := make([]string, len(r.Args))
		for i := range r.Args {
			args[i] = primary(&r.Args[i])
		}
		return fmt.Sprintf("%s(%s)", r.Op.Name, strings.Join(args, ","))
	}
	panic(errors.Internal("cgen", "unknown rhs kind %d", r.Kind))
}

// phis prints the assignments one incoming edge makes to a phi chain.
// An operand already living in the phi's own compvar needs no copy.
func (g *Generator) phis(phi *ir.Statement, second bool) {
	for ; phi != nil && phi.Kind == ir.StmtPhi; phi = phi.Next {
		r := phi.Rhs
		if second {
			r = phi.Rhs2
		}
		if v, ok := r.SingleValue(); ok && v.Compvar == phi.Lhs.Compvar {
			continue
		}
		fmt.Fprintf(&g.out, "%s = %s;\n", Name(phi.Lhs.Compvar), rhs(r))
	}
}

func skipPhis(stmt *ir.Statement) *ir.Statement {
	for stmt != nil && stmt.Kind == ir.StmtPhi {
		stmt = stmt.Next
	}
	return stmt
}

func (g *Generator) stmts(stmt *ir.Statement) {
	for stmt != nil {
		switch stmt.Kind {
		case ir.StmtNil:
			stmt = stmt.Next

		case ir.StmtAssign:
			fmt.Fprintf(&g.out, "%s = %s;\n", Name(stmt.Lhs.Compvar), rhs(stmt.Rhs))
			stmt = stmt.Next

		case ir.StmtPhi:
			panic(errors.Internal("cgen", "phi %d outside a join", stmt.Index))

		case ir.StmtIf:
			fmt.Fprintf(&g.out, "if (%s)\n{\n", rhs(stmt.Condition))
			g.stmts(stmt.Consequent)
			g.phis(stmt.Next, false)
			g.out.WriteString("}\nelse\n{\n")
			g.stmts(stmt.Alternative)
			g.phis(stmt.Next, true)
			g.out.WriteString("}\n")
			stmt = skipPhis(stmt.Next)

		case ir.StmtWhile:
			g.phis(stmt.Entry, false)
			fmt.Fprintf(&g.out, "while (%s)\n{\n", rhs(stmt.Invariant))
			g.stmts(stmt.Body)
			g.phis(stmt.Entry, true)
			g.out.WriteString("}\n")
			stmt = stmt.Next

		default:
			panic(errors.Internal("cgen", "unknown statement kind %d", stmt.Kind))
		}
	}
}

func (g *Generator) resultStore(result []*ir.Compvar) {
	for i, c := range result {
		fmt.Fprintf(&g.out, "%s.data[%d] = %s;\n", ResultSlot, i, Name(c))
	}
	fmt.Fprintf(&g.out, "%s.length = %d;\n", ResultSlot, len(result))
	fmt.Fprintf(&g.out, "return &%s;\n", ResultSlot)
}
