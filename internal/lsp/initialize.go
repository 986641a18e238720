package lsp

import (
	"context"
	"encoding/json"

	"github.com/novalang/novac/internal/index"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

// initializationOptions is the shape of `initialize`'s `initializationOptions`
// field the Nova server reads: a JVM classpath (jars/directories) for the
// Java class resolver (spec.md §4.4 "Java class resolution").
type initializationOptions struct {
	Classpath []string `json:"classpath"`
}

func (s *Server) onInitialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.InitializeParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}

	var opts initializationOptions
	if raw, ok := params.InitializationOptions.(json.RawMessage); ok {
		_ = json.Unmarshal(raw, &opts)
	} else if b, err := json.Marshal(params.InitializationOptions); err == nil {
		_ = json.Unmarshal(b, &opts)
	}

	s.idx = index.New(opts.Classpath)
	s.idx.OnAnalyzed = s.publishDiagnostics

	result := &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindIncremental,
			},
			HoverProvider:              true,
			DefinitionProvider:         true,
			DocumentSymbolProvider:     true,
			ReferencesProvider:         true,
			DocumentHighlightProvider:  true,
			FoldingRangeProvider:       true,
			WorkspaceSymbolProvider:    true,
			InlayHintProvider:          true,
			RenameProvider: &protocol.RenameOptions{
				PrepareProvider: true,
			},
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{".", ":", "$"},
			},
			SignatureHelpProvider: &protocol.SignatureHelpOptions{
				TriggerCharacters: []string{"(", ","},
			},
			SemanticTokensProvider: &protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes: []string{
						"class", "interface", "enum", "enumMember",
						"function", "parameter", "property", "variable",
					},
					TokenModifiers: []string{"declaration", "readonly"},
				},
				Full: true,
			},
		},
		ServerInfo: &protocol.ServerInfo{Name: "novac", Version: "0.1.0-dev"},
	}
	return reply(ctx, result, nil)
}
