package lsp

import (
	"path/filepath"
	"unicode/utf8"

	"mathmap/internal/exprtree"
)

// SemanticToken represents a single LSP semantic token entry
// Line and StartChar are 0-based positions
// TokenType is an index into the SemanticTokenTypes array
// TokenModifiers is a bitmask based on SemanticTokenModifiers
type SemanticToken struct {
	Line           uint32
	StartChar      uint32
	Length         uint32
	TokenType      int // index into SemanticTokenTypes
	TokenModifiers int // bitmask
}

var tokenTypeNames = map[exprtree.TokenKind]string{
	exprtree.TokenForm:     "keyword",
	exprtree.TokenFunction: "function",
	exprtree.TokenVariable: "variable",
	exprtree.TokenInternal: "parameter",
	exprtree.TokenNumber:   "number",
	exprtree.TokenComment:  "comment",
	exprtree.TokenSymbol:   "enumMember",
}

// collectSemanticTokens classifies text lexically, so it still highlights
// files the reader rejects. Scanning stops at the first lexical error.
func collectSemanticTokens(rawURI, text string) []SemanticToken {
	name := filepath.Base(rawURI)

	scanned, err := exprtree.Scan(name, text)
	if err != nil {
		log.Debugf("scan of %s stopped: %v", name, err)
	}

	tokens := make([]SemanticToken, 0, len(scanned))
	for _, t := range scanned {
		var modifiers int
		if t.Definition {
			modifiers |= 1 << indexOf("declaration", SemanticTokenModifiers)
		}
		if t.Kind == exprtree.TokenInternal {
			modifiers |= 1 << indexOf("readonly", SemanticTokenModifiers)
		}
		tokens = append(tokens, makeToken(t, tokenTypeNames[t.Kind], modifiers)...)
	}

	return tokens
}

// makeToken creates a semantic token for a scanned lexeme
func makeToken(t exprtree.Token, tokenType string, modifiers int) []SemanticToken {
	if t.Text == "" {
		return nil
	}

	return []SemanticToken{{
		Line:           zeroBased(t.Line),
		StartChar:      zeroBased(t.Column),
		Length:         uint32(utf8.RuneCountInString(t.Text)),
		TokenType:      indexOf(tokenType, SemanticTokenTypes),
		TokenModifiers: modifiers,
	}}
}

// indexOf returns the index of a string in a slice, or 0 if not found
func indexOf(target string, list []string) int {
	for i, v := range list {
		if v == target {
			return i
		}
	}
	return 0
}
