package exprtree

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// The interchange form is a plain S-expression dump of an annotated tree,
// e.g. (seq (assign a (int 0)) (call + (var a) (float 1.5))).

var treeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `;[^\n]*`},
	{Name: "Float", Pattern: `[-+]?[0-9]+\.[0-9]*([eE][-+]?[0-9]+)?`},
	{Name: "Int", Pattern: `[-+]?[0-9]+`},
	{Name: "Ident", Pattern: `[a-zA-Z_+\-*/%<=>!&|][a-zA-Z0-9_+\-*/%<=>!&|.]*`},
	{Name: "Punct", Pattern: `[()]`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})

type sourceFile struct {
	Exprs []*sexpr `@@*`
}

type sexpr struct {
	Pos  lexer.Position
	Head string  `"(" @Ident`
	Args []*atom `@@* ")"`
}

type atom struct {
	Pos    lexer.Position
	List   *sexpr   `  @@`
	Float  *float64 `| @Float`
	Int    *int64   `| @Int`
	Symbol *string  `| @Ident`
}

var treeParser = participle.MustBuild[sourceFile](
	participle.Lexer(treeLexer),
	participle.Elide("Whitespace", "Comment"),
)

func position(pos lexer.Position) Position {
	return Position{Filename: pos.Filename, Line: pos.Line, Column: pos.Column}
}
