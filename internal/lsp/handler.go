// Package lsp serves interchange files to editors: it publishes reader and
// lowering diagnostics, highlights forms, and shows propagated types on
// hover.
package lsp

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"mathmap/internal/builtins"
	"mathmap/internal/exprtree"
	"mathmap/internal/ir"
	"mathmap/internal/pipeline"
)

var log = commonlog.GetLogger("mathmap.lsp")

// SemanticTokenTypes is the token type legend, indexed by token type
var SemanticTokenTypes = []string{
	"keyword",
	"function",
	"variable",
	"parameter",
	"number",
	"comment",
	"enumMember",
}

// SemanticTokenModifiers is the modifier legend, indexed by bit
var SemanticTokenModifiers = []string{
	"declaration",
	"readonly",
}

// document is the analysis of one open file
type document struct {
	text    string
	tree    *exprtree.Program
	program *ir.Program
}

// MathmapHandler implements the LSP server handlers for interchange files
type MathmapHandler struct {
	mu   sync.RWMutex
	lib  *builtins.Library
	docs map[string]*document
}

// NewMathmapHandler creates a handler resolving calls with the standard
// op library
func NewMathmapHandler() *MathmapHandler {
	return &MathmapHandler{
		lib:  builtins.New(),
		docs: make(map[string]*document),
	}
}

// Initialize responds to the LSP client's initialize request and advertises the server's capabilities
func (h *MathmapHandler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("initialize")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			CompletionProvider: &protocol.CompletionOptions{
				ResolveProvider: ptrBool(false),
			},
			HoverProvider: ptrBool(true),
			SemanticTokensProvider: &protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes:     SemanticTokenTypes,
					TokenModifiers: SemanticTokenModifiers,
				},
				Full: ptrBool(true),
			},
		},
	}, nil
}

// Initialized is called after the client receives the server's capabilities and completes initialization
func (h *MathmapHandler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Info("initialized")
	return nil
}

// Shutdown handles the LSP shutdown request
func (h *MathmapHandler) Shutdown(ctx *glsp.Context) error {
	log.Info("shutdown")
	return nil
}

// SetTrace accepts trace level changes; logging is configured at startup
func (h *MathmapHandler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	log.Debugf("trace set to %s", params.Value)
	return nil
}

// TextDocumentDidOpen analyses a newly opened file
func (h *MathmapHandler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	log.Infof("opened %s", params.TextDocument.URI)

	return h.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

// TextDocumentDidClose forgets a closed file
func (h *MathmapHandler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	log.Infof("closed %s", params.TextDocument.URI)

	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.docs, path)

	return nil
}

// TextDocumentDidChange re-analyses a file from its full new text
func (h *MathmapHandler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	log.Debugf("changed %s", params.TextDocument.URI)

	for i := len(params.ContentChanges) - 1; i >= 0; i-- {
		switch change := params.ContentChanges[i].(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			return h.update(ctx, params.TextDocument.URI, change.Text)
		case *protocol.TextDocumentContentChangeEventWhole:
			return h.update(ctx, params.TextDocument.URI, change.Text)
		}
	}

	// incremental edits are not negotiated, so reread the file
	text, err := readURI(params.TextDocument.URI)
	if err != nil {
		return err
	}
	return h.update(ctx, params.TextDocument.URI, text)
}

// TextDocumentCompletion offers form names and op library functions
func (h *MathmapHandler) TextDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	items := make([]protocol.CompletionItem, 0, len(exprtree.Forms)+len(h.lib.Names()))

	keyword := protocol.CompletionItemKindKeyword
	for _, form := range exprtree.Forms {
		items = append(items, protocol.CompletionItem{Label: form, Kind: &keyword})
	}

	function := protocol.CompletionItemKindFunction
	for _, name := range h.lib.Names() {
		items = append(items, protocol.CompletionItem{Label: name, Kind: &function, Detail: ptrString("op library function")})
	}

	return &protocol.CompletionList{
		IsIncomplete: false,
		Items:        items,
	}, nil
}

// TextDocumentSemanticTokensFull handles semantic token requests for the entire document
func (h *MathmapHandler) TextDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	rawURI := params.TextDocument.URI

	doc, err := h.getOrUpdate(ctx, rawURI)
	if err != nil {
		return nil, err
	}

	tokens := collectSemanticTokens(rawURI, doc.text)

	var data []uint32
	var prevLine, prevStart uint32

	// delta-line, delta-start encoding
	for _, token := range tokens {
		deltaLine := token.Line - prevLine
		var deltaStart uint32
		if deltaLine == 0 {
			deltaStart = token.StartChar - prevStart
		} else {
			deltaStart = token.StartChar
		}

		data = append(data, deltaLine, deltaStart, token.Length, uint32(token.TokenType), uint32(token.TokenModifiers))

		prevLine = token.Line
		prevStart = token.StartChar
	}

	return &protocol.SemanticTokens{
		Data: data,
	}, nil
}

func (h *MathmapHandler) getOrUpdate(ctx *glsp.Context, rawURI protocol.DocumentUri) (*document, error) {
	path, err := uriToPath(rawURI)
	if err != nil {
		return nil, err
	}

	h.mu.RLock()
	doc, ok := h.docs[path]
	h.mu.RUnlock()
	if ok {
		return doc, nil
	}

	text, err := readURI(rawURI)
	if err != nil {
		return nil, err
	}
	if err := h.update(ctx, rawURI, text); err != nil {
		return nil, err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.docs[path], nil
}

// update analyses text, stores the result and publishes its diagnostics
func (h *MathmapHandler) update(ctx *glsp.Context, rawURI protocol.DocumentUri, text string) error {
	path, err := uriToPath(rawURI)
	if err != nil {
		return err
	}

	doc, diagnostics := h.analyze(path, text)

	h.mu.Lock()
	h.docs[path] = doc
	h.mu.Unlock()

	sendDiagnosticNotification(ctx, rawURI, diagnostics)
	return nil
}

// analyze reads and lowers text. Whatever stage fails contributes the
// diagnostics; the stages before it stay available to hover.
func (h *MathmapHandler) analyze(path, text string) (*document, []protocol.Diagnostic) {
	doc := &document{text: text}

	tree, err := exprtree.Read(filepath.Base(path), text, h.lib)
	if err != nil {
		return doc, ConvertReadError(err)
	}
	doc.tree = tree

	p, err := pipeline.Lower(tree.Root, h.lib)
	if err != nil {
		return doc, ConvertLowerError(err)
	}
	doc.program = p

	return doc, []protocol.Diagnostic{}
}

func readURI(rawURI protocol.DocumentUri) (string, error) {
	path, err := uriToPath(rawURI)
	if err != nil {
		return "", err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return string(content), nil
}

// Convert URI to platform-local file path
func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path

	// /C:/... on Windows
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}

	return filepath.FromSlash(path), nil
}

func sendDiagnosticNotification(ctx *glsp.Context, uri protocol.URI, diagnostics []protocol.Diagnostic) {
	if ctx == nil || ctx.Notify == nil {
		return
	}

	log.Debugf("sending %d diagnostics for %s", len(diagnostics), uri)

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrString(s string) *string {
	return &s
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
