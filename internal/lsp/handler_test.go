package lsp_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"mathmap/internal/lsp"
)

const swapSource = "; swap\n(assign p (tuple (internal y) (internal x)))\n(var p)\n"

func writeSource(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "swap.mmx")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return "file://" + filepath.ToSlash(path)
}

// recorder captures published diagnostics
type recorder struct {
	published []*protocol.PublishDiagnosticsParams
}

func (r *recorder) context() *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {
			if method == protocol.ServerTextDocumentPublishDiagnostics {
				r.published = append(r.published, params.(*protocol.PublishDiagnosticsParams))
			}
		},
	}
}

func (r *recorder) last(t *testing.T) *protocol.PublishDiagnosticsParams {
	t.Helper()
	require.NotEmpty(t, r.published, "no diagnostics published")
	return r.published[len(r.published)-1]
}

func TestTextDocumentSemanticTokensFull(t *testing.T) {
	handler := lsp.NewMathmapHandler()
	uri := writeSource(t, swapSource)

	ctx := &glsp.Context{}
	params := &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{
			URI: uri,
		},
	}

	tokens, err := handler.TextDocumentSemanticTokensFull(ctx, params)
	require.NoError(t, err, "TextDocumentSemanticTokensFull returned error")
	require.NotNil(t, tokens, "Returned tokens should not be nil")

	decoded, err := decodeSemanticTokens(tokens.Data)
	require.NoError(t, err, "Failed to decode semantic tokens")
	require.Len(t, decoded, 10)

	assertToken(t, &decoded[0], 1, 1, 6, "comment", nil)
	assertToken(t, &decoded[1], 2, 2, 6, "keyword", nil)
	assertToken(t, &decoded[2], 2, 9, 1, "variable", []string{"declaration"})
	assertToken(t, &decoded[3], 2, 12, 5, "keyword", nil)
	assertToken(t, &decoded[4], 2, 19, 8, "keyword", nil)
	assertToken(t, &decoded[5], 2, 28, 1, "parameter", []string{"readonly"})
	assertToken(t, &decoded[6], 2, 32, 8, "keyword", nil)
	assertToken(t, &decoded[7], 2, 41, 1, "parameter", []string{"readonly"})
	assertToken(t, &decoded[8], 3, 2, 3, "keyword", nil)
	assertToken(t, &decoded[9], 3, 6, 1, "variable", nil)
}

func TestSemanticTokensOfRejectedDocument(t *testing.T) {
	handler := lsp.NewMathmapHandler()
	rec := &recorder{}
	uri := writeSource(t, "")

	require.NoError(t, handler.TextDocumentDidOpen(rec.context(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Text: "(call nosuch (int 1))"},
	}))

	tokens, err := handler.TextDocumentSemanticTokensFull(rec.context(), &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)

	decoded, err := decodeSemanticTokens(tokens.Data)
	require.NoError(t, err)
	require.Len(t, decoded, 4)
	assertToken(t, &decoded[1], 1, 7, 6, "function", nil)
	assertToken(t, &decoded[3], 1, 19, 1, "number", nil)
}

func TestDiagnosticsArePublishedAndCleared(t *testing.T) {
	handler := lsp.NewMathmapHandler()
	rec := &recorder{}
	uri := writeSource(t, "")

	require.NoError(t, handler.TextDocumentDidOpen(rec.context(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Text: "(call nosuch (int 1))"},
	}))

	published := rec.last(t)
	assert.Equal(t, uri, published.URI)
	require.Len(t, published.Diagnostics, 1)

	d := published.Diagnostics[0]
	assert.Equal(t, uint32(0), d.Range.Start.Line)
	assert.Equal(t, uint32(0), d.Range.Start.Character)
	assert.Equal(t, "E0006", d.Code.Value)
	assert.Equal(t, "mathmap-reader", *d.Source)
	assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)
	assert.Contains(t, d.Message, "nosuch")

	require.NoError(t, handler.TextDocumentDidChange(rec.context(), &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: swapSource}},
	}))

	published = rec.last(t)
	assert.NotNil(t, published.Diagnostics, "an empty list clears the client's diagnostics")
	assert.Empty(t, published.Diagnostics)
}

func TestSyntaxErrorDiagnostic(t *testing.T) {
	handler := lsp.NewMathmapHandler()
	rec := &recorder{}
	uri := writeSource(t, "")

	require.NoError(t, handler.TextDocumentDidOpen(rec.context(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Text: "(int 1\n"},
	}))

	published := rec.last(t)
	require.Len(t, published.Diagnostics, 1)
	assert.Equal(t, "E0001", published.Diagnostics[0].Code.Value)
}

func TestHover(t *testing.T) {
	handler := lsp.NewMathmapHandler()
	uri := writeSource(t, swapSource)

	hover := func(line, char uint32) *protocol.Hover {
		h, err := handler.TextDocumentHover(&glsp.Context{}, &protocol.HoverParams{
			TextDocumentPositionParams: protocol.TextDocumentPositionParams{
				TextDocument: protocol.TextDocumentIdentifier{URI: uri},
				Position:     protocol.Position{Line: line, Character: char},
			},
		})
		require.NoError(t, err)
		return h
	}

	variable := hover(1, 8)
	require.NotNil(t, variable)
	content := variable.Contents.(protocol.MarkupContent)
	assert.Contains(t, content.Value, "variable `p`, 2 components")
	assert.Contains(t, content.Value, "`p[0]`: float")
	assert.Contains(t, content.Value, "`p[1]`: float")
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 1, Character: 8},
		End:   protocol.Position{Line: 1, Character: 9},
	}, *variable.Range)

	internal := hover(1, 27)
	require.NotNil(t, internal)
	assert.Contains(t, internal.Contents.(protocol.MarkupContent).Value, "internal `y`, slot 1")

	form := hover(1, 3)
	require.NotNil(t, form)
	assert.Contains(t, form.Contents.(protocol.MarkupContent).Value, "**assign**")

	assert.Nil(t, hover(1, 9), "whitespace has no hover")
}

func TestCompletion(t *testing.T) {
	handler := lsp.NewMathmapHandler()

	result, err := handler.TextDocumentCompletion(&glsp.Context{}, &protocol.CompletionParams{})
	require.NoError(t, err)

	list := result.(*protocol.CompletionList)
	labels := make(map[string]protocol.CompletionItemKind)
	for _, item := range list.Items {
		labels[item.Label] = *item.Kind
	}

	assert.Equal(t, protocol.CompletionItemKindKeyword, labels["sub-assign"])
	assert.Equal(t, protocol.CompletionItemKindFunction, labels["+"])
	assert.Equal(t, protocol.CompletionItemKindFunction, labels["origVal"])
}

func TestDidCloseForgetsDocument(t *testing.T) {
	handler := lsp.NewMathmapHandler()
	rec := &recorder{}
	uri := writeSource(t, swapSource)

	require.NoError(t, handler.TextDocumentDidOpen(rec.context(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Text: "(int 1)"},
	}))
	require.NoError(t, handler.TextDocumentDidClose(rec.context(), &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))

	// after closing, the file on disk is authoritative again
	tokens, err := handler.TextDocumentSemanticTokensFull(rec.context(), &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	assert.Len(t, tokens.Data, 10*5)
}

type DecodedToken struct {
	Index     int
	Line      uint32
	Char      uint32
	Length    uint32
	Type      string
	Modifiers []string
}

func decodeSemanticTokens(raw []uint32) ([]DecodedToken, error) {
	if len(raw)%5 != 0 {
		return nil, fmt.Errorf("raw token data length %d is not a multiple of 5", len(raw))
	}

	var (
		decoded []DecodedToken
		line    uint32
		char    uint32
	)

	for i := 0; i < len(raw); i += 5 {
		deltaLine := raw[i]
		deltaStart := raw[i+1]
		length := raw[i+2]
		tokenTypeIdx := raw[i+3]
		tokenModMask := raw[i+4]

		if deltaLine == 0 {
			char += deltaStart
		} else {
			line += deltaLine
			char = deltaStart
		}

		var modifiers []string
		for j, name := range lsp.SemanticTokenModifiers {
			if tokenModMask&(1<<j) != 0 {
				modifiers = append(modifiers, name)
			}
		}

		decoded = append(decoded, DecodedToken{
			Index:     i / 5,
			Line:      line + 1, // LSP uses 0-based indexing
			Char:      char + 1, // LSP uses 0-based indexing
			Length:    length,
			Type:      lsp.SemanticTokenTypes[tokenTypeIdx],
			Modifiers: modifiers,
		})
	}

	return decoded, nil
}

func assertToken(t *testing.T, token *DecodedToken, expectedLine, expectedChar, expectedLength uint32, expectedType string, expectedModifiers []string) {
	t.Helper()
	require.Equal(t, expectedLine, token.Line, "line mismatch (expected line %d)", expectedLine)
	require.Equal(t, expectedChar, token.Char, "char mismatch (expected char %d)", expectedChar)
	require.Equal(t, expectedLength, token.Length, "length mismatch")
	require.Equal(t, expectedType, token.Type, "type mismatch")
	require.ElementsMatch(t, expectedModifiers, token.Modifiers, "modifiers mismatch")
}
