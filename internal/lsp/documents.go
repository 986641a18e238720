package lsp

import (
	"context"
	"encoding/json"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

func (s *Server) onDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}
	s.idx.Open(string(params.TextDocument.URI), params.TextDocument.Text)
	if req.IsNotify() {
		return nil
	}
	return reply(ctx, nil, nil)
}

func (s *Server) onDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidChangeTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}
	uri := string(params.TextDocument.URI)
	for _, change := range params.ContentChanges {
		if change.Range == nil {
			s.idx.Change(uri, change.Text)
			continue
		}
		s.idx.ChangeIncremental(uri,
			int(change.Range.Start.Line), int(change.Range.Start.Character),
			int(change.Range.End.Line), int(change.Range.End.Character),
			change.Text)
	}
	if req.IsNotify() {
		return nil
	}
	return reply(ctx, nil, nil)
}

func (s *Server) onDidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidCloseTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}
	s.idx.Close(string(params.TextDocument.URI))
	if req.IsNotify() {
		return nil
	}
	return reply(ctx, nil, nil)
}
