package lsp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"mathmap/internal/exprtree"
	"mathmap/internal/ir"
)

var formDocs = map[string]string{
	"assign":           "Assigns a tuple to a variable and yields it.",
	"call":             "Applies an op library function.",
	"cast":             "Retags a tuple without changing its components.",
	"do-while":         "Runs the body, then repeats while the condition holds. Yields 0.",
	"float":            "Float literal.",
	"if":               "Conditional yielding the taken branch.",
	"int":              "Integer literal.",
	"internal":         "Reads an environment input such as the pixel coordinates.",
	"select":           "Picks components of a tuple by index.",
	"seq":              "Evaluates both sides and yields the right one.",
	"sub-assign":       "Assigns the components of a variable selected by index.",
	"tuple":            "Builds a tuple from scalar expressions.",
	"tuple-const":      "Constant tuple.",
	"userval-bool":     "Reads a boolean user value.",
	"userval-color":    "Reads a color user value.",
	"userval-curve":    "Samples a curve user value.",
	"userval-float":    "Reads a float user value.",
	"userval-gradient": "Samples a gradient user value.",
	"userval-image":    "Names an input image.",
	"userval-int":      "Reads an integer user value.",
	"var":              "Reads a variable.",
	"while":            "Repeats the body while the condition holds. Yields 0.",
}

// TextDocumentHover describes the form, function, variable or internal
// under the cursor. Variables show the types propagation inferred for each
// component.
func (h *MathmapHandler) TextDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc, err := h.getOrUpdate(ctx, params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	scanned, _ := exprtree.Scan("hover", doc.text)
	tok, ok := tokenAt(scanned, params.Position)
	if !ok {
		return nil, nil
	}

	var text string
	switch tok.Kind {
	case exprtree.TokenForm:
		text = fmt.Sprintf("**%s**\n\n%s", tok.Text, formDocs[tok.Text])
	case exprtree.TokenFunction:
		if _, known := h.lib.Lookup(tok.Text); known {
			text = fmt.Sprintf("function `%s` from the op library", tok.Text)
		} else {
			text = fmt.Sprintf("unknown function `%s`", tok.Text)
		}
	case exprtree.TokenVariable:
		text = describeVariable(doc, tok.Text)
	case exprtree.TokenInternal:
		if in, known := exprtree.StandardInternals()[tok.Text]; known {
			text = fmt.Sprintf("internal `%s`, slot %d", in.Name, in.Index)
		} else {
			text = fmt.Sprintf("unknown internal `%s`", tok.Text)
		}
	default:
		return nil, nil
	}

	start := protocol.Position{Line: zeroBased(tok.Line), Character: zeroBased(tok.Column)}
	end := start
	end.Character += uint32(len(tok.Text))

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: text,
		},
		Range: &protocol.Range{Start: start, End: end},
	}, nil
}

func tokenAt(tokens []exprtree.Token, pos protocol.Position) (exprtree.Token, bool) {
	for _, t := range tokens {
		if zeroBased(t.Line) != pos.Line {
			continue
		}
		start := zeroBased(t.Column)
		if pos.Character >= start && pos.Character < start+uint32(len(t.Text)) {
			return t, true
		}
	}
	return exprtree.Token{}, false
}

func describeVariable(doc *document, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "variable `%s`", name)

	if doc.program == nil {
		if doc.tree != nil {
			for _, v := range doc.tree.Variables {
				if v.Name == name {
					fmt.Fprintf(&b, ", %d components", v.Length)
				}
			}
		}
		return b.String()
	}

	var comps []*ir.Compvar
	for _, c := range doc.program.Compvars {
		if c.Var != nil && c.Var.Name == name {
			comps = append(comps, c)
		}
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i].N < comps[j].N })

	fmt.Fprintf(&b, ", %d components\n", len(comps))
	for _, c := range comps {
		fmt.Fprintf(&b, "\n- `%s[%d]`: %s", name, c.N, c.Type)
	}
	return b.String()
}
