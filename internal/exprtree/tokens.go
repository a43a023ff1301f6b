package exprtree

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Forms lists the head symbols of the interchange format
var Forms = []string{
	"assign", "call", "cast", "do-while", "float", "if", "int", "internal",
	"select", "seq", "sub-assign", "tuple", "tuple-const",
	"userval-bool", "userval-color", "userval-curve", "userval-float",
	"userval-gradient", "userval-image", "userval-int",
	"var", "while",
}

type TokenKind int

const (
	TokenForm TokenKind = iota + 1
	TokenFunction
	TokenVariable
	TokenInternal
	TokenNumber
	TokenSymbol
	TokenComment
)

// Token is a classified lexeme of an interchange source. Lines and columns
// are 1-based.
type Token struct {
	Kind   TokenKind
	Text   string
	Line   int
	Column int

	// Definition marks the variable an assign form writes
	Definition bool
}

// Scan classifies the lexemes of source by the role they play in their
// form. It stops at the first lexical error and returns what it has.
func Scan(filename, source string) ([]Token, error) {
	lex, err := treeLexer.Lex(filename, strings.NewReader(source))
	if err != nil {
		return nil, err
	}

	symbols := treeLexer.Symbols()
	names := make(map[lexer.TokenType]string, len(symbols))
	for name, t := range symbols {
		names[t] = name
	}

	type frame struct {
		head string
		args int
	}
	var (
		tokens    []Token
		stack     []frame
		afterOpen bool
	)
	top := func() *frame {
		if len(stack) == 0 {
			return &frame{}
		}
		return &stack[len(stack)-1]
	}

	for {
		t, err := lex.Next()
		if err != nil {
			return tokens, err
		}
		if t.EOF() {
			return tokens, nil
		}

		tok := Token{Text: t.Value, Line: t.Pos.Line, Column: t.Pos.Column}

		switch names[t.Type] {
		case "Whitespace":
			continue
		case "Comment":
			tok.Kind = TokenComment
		case "Punct":
			if t.Value == "(" {
				stack = append(stack, frame{})
				afterOpen = true
			} else if len(stack) > 0 {
				stack = stack[:len(stack)-1]
				top().args++
				afterOpen = false
			}
			continue
		case "Int", "Float":
			tok.Kind = TokenNumber
			top().args++
		case "Ident":
			f := top()
			switch {
			case afterOpen:
				tok.Kind = TokenForm
				f.head = t.Value
			case f.args == 0 && f.head == "call":
				tok.Kind = TokenFunction
			case f.args == 0 && (f.head == "var" || f.head == "assign" || f.head == "sub-assign"):
				tok.Kind = TokenVariable
				tok.Definition = f.head == "assign"
			case f.args == 0 && f.head == "internal":
				tok.Kind = TokenInternal
			default:
				tok.Kind = TokenSymbol
			}
			if !afterOpen {
				f.args++
			}
		}

		afterOpen = false
		tokens = append(tokens, tok)
	}
}
