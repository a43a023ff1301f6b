package ir

import (
	"fmt"
	"strings"

	"mathmap/internal/errors"
)

// Printer renders a statement tree in a readable form
type Printer struct {
	indent int
	output strings.Builder
}

// NewPrinter creates a new IR printer
func NewPrinter() *Printer {
	return &Printer{indent: 0}
}

// Print returns the typed dump of a lowered program
func Print(p *Program) string {
	pr := NewPrinter()
	pr.printProgram(p)
	return pr.output.String()
}

// PrintStatements returns the dump of a statement chain
func PrintStatements(stmt *Statement) string {
	pr := NewPrinter()
	pr.printStatements(stmt)
	return pr.output.String()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printProgram(prog *Program) {
	p.writeLine("COMPVARS:")
	p.indent++
	for _, c := range prog.Compvars {
		p.writeLine("%-12s : %s", c, c.Type)
	}
	p.indent--
	p.writeLine("")

	p.writeLine("CODE:")
	p.indent++
	p.printStatements(prog.First)
	p.indent--

	results := make([]string, len(prog.Result))
	for i, c := range prog.Result {
		results[i] = c.Current.String()
	}
	p.writeLine("")
	p.writeLine("RESULT: (%s)", strings.Join(results, ", "))
}

func (p *Printer) printStatements(stmt *Statement) {
	for ; stmt != nil; stmt = stmt.Next {
		switch stmt.Kind {
		case StmtNil:
			p.writeLine("nil")

		case StmtAssign:
			p.writeLine("%v = %s", stmt.Lhs, FormatRhs(stmt.Rhs))

		case StmtPhi:
			p.writeLine("%v = phi(%s, %s)", stmt.Lhs, FormatRhs(stmt.Rhs), FormatRhs(stmt.Rhs2))

		case StmtIf:
			p.writeLine("if %s", FormatRhs(stmt.Condition))
			p.indent++
			p.printStatements(stmt.Consequent)
			p.indent--
			p.writeLine("else")
			p.indent++
			p.printStatements(stmt.Alternative)
			p.indent--

		case StmtWhile:
			p.writeLine("start while")
			p.indent++
			p.printStatements(stmt.Entry)
			p.indent--
			p.writeLine("while %s", FormatRhs(stmt.Invariant))
			p.indent++
			p.printStatements(stmt.Body)
			p.indent--

		default:
			panic(errors.Internal("Print", "unknown statement kind %d", stmt.Kind))
		}
	}
}

// FormatPrimary renders a single operand
func FormatPrimary(prim *Primary) string {
	switch prim.Kind {
	case PrimaryValue:
		return prim.Value.String()
	case PrimaryIntConst:
		return fmt.Sprintf("%d", prim.Int)
	case PrimaryFloatConst:
		return fmt.Sprintf("%f", prim.Float)
	}
	panic(errors.Internal("FormatPrimary", "unknown primary kind %d", prim.Kind))
}

// FormatRhs renders r as "op a b" or a single operand
func FormatRhs(r *Rhs) string {
	switch r.Kind {
	case RhsPrimary:
		return FormatPrimary(&r.Primary)
	case RhsInternal:
		return r.Internal.Name
	case RhsOp:
		parts := []string{r.Op.Name}
		for i := range r.Args {
			parts = append(parts, FormatPrimary(&r.Args[i]))
		}
		return strings.Join(parts, " ")
	}
	panic(errors.Internal("FormatRhs", "unknown rhs kind %d", r.Kind))
}
