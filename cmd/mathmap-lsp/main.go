// SPDX-License-Identifier: Apache-2.0
package main

import (
	"log"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"mathmap/internal/lsp"
)

const lsName = "mathmap" // Name identifier for the language server

var handler protocol.Handler // Protocol handler instance (wired up below)

func main() {
	// Configure debug logging (1 = debug level, nil = default logger)
	commonlog.Configure(1, nil)

	mathmapHandler := lsp.NewMathmapHandler()

	handler = protocol.Handler{
		Initialize:                     mathmapHandler.Initialize,
		Initialized:                    mathmapHandler.Initialized,
		Shutdown:                       mathmapHandler.Shutdown,
		SetTrace:                       mathmapHandler.SetTrace,
		TextDocumentDidOpen:            mathmapHandler.TextDocumentDidOpen,
		TextDocumentDidClose:           mathmapHandler.TextDocumentDidClose,
		TextDocumentDidChange:          mathmapHandler.TextDocumentDidChange,
		TextDocumentCompletion:         mathmapHandler.TextDocumentCompletion,
		TextDocumentHover:              mathmapHandler.TextDocumentHover,
		TextDocumentSemanticTokensFull: mathmapHandler.TextDocumentSemanticTokensFull,
	}

	// debug=false keeps glsp's own protocol tracing quiet
	s := server.NewServer(&handler, lsName, false)

	log.Println("Starting mathmap LSP server...")

	if err := s.RunStdio(); err != nil {
		log.Println("Error running mathmap LSP server:", err)
		os.Exit(1)
	}
}
