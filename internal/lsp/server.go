// Package lsp hosts the Nova language server: a JSON-RPC transport
// over go.lsp.dev/jsonrpc2, LSP 3.17 types from go.lsp.dev/protocol,
// and internal/index for the actual query logic (spec.md §4.4/§5).
//
// The concurrency shape follows spec.md §5: notifications (didOpen,
// didChange, didClose, $/cancelRequest) run inline on the single
// transport goroutine so document state updates stay strictly
// ordered, while requests are hopped onto a bounded worker pool so one
// slow query (e.g. a cold workspace symbol search) cannot stall
// others. A request's in-flight cancellation func is recorded under
// cancelMu so $/cancelRequest can reach it.
package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/google/uuid"
	"github.com/novalang/novac/internal/index"
	"github.com/tliron/commonlog"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

const maxWorkers = 4

// Server is one client connection's worth of state.
type Server struct {
	idx  *index.Index
	conn jsonrpc2.Conn
	pool *workerpool.WorkerPool
	log  commonlog.Logger

	// cancels is keyed by an internally-generated uuid rather than the
	// request id's string form directly: two in-flight requests can
	// legally stringify to the same text (a malformed/omitted id), and
	// a uuid key keeps their cancel funcs from clobbering each other.
	// idKeys maps the wire id's string form back to that uuid so
	// $/cancelRequest can still find it.
	cancelMu sync.Mutex
	cancels  map[string]context.CancelFunc
	idKeys   map[string]string
}

// NewServer creates a Server with a fresh, unconfigured index; the
// classpath (and therefore the Java resolver) is wired in from
// `initialize`'s initializationOptions.
func NewServer() *Server {
	return &Server{
		pool:    workerpool.New(maxWorkers),
		log:     commonlog.GetLogger("novac.lsp"),
		cancels: map[string]context.CancelFunc{},
		idKeys:  map[string]string{},
	}
}

// Serve runs the server against one client connection until it closes.
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	stream := jsonrpc2.NewStream(rwc)
	s.conn = jsonrpc2.NewConn(stream)
	s.conn.Go(ctx, s.handle)
	s.idx = index.New(nil)
	s.idx.OnAnalyzed = s.publishDiagnostics
	<-s.conn.Done()
	s.pool.StopWait()
	return s.conn.Err()
}

func (s *Server) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	switch req.Method() {
	case protocol.MethodInitialize:
		return s.onInitialize(ctx, reply, req)
	case protocol.MethodInitialized:
		return reply(ctx, nil, nil)
	case protocol.MethodShutdown:
		return reply(ctx, nil, nil)
	case protocol.MethodExit:
		return s.conn.Close()
	case protocol.MethodCancelRequest:
		return s.onCancel(ctx, reply, req)

	case protocol.MethodTextDocumentDidOpen:
		return s.onDidOpen(ctx, reply, req)
	case protocol.MethodTextDocumentDidChange:
		return s.onDidChange(ctx, reply, req)
	case protocol.MethodTextDocumentDidClose:
		return s.onDidClose(ctx, reply, req)

	case protocol.MethodTextDocumentHover:
		return s.dispatchRequest(ctx, reply, req, s.onHover)
	case protocol.MethodTextDocumentDefinition:
		return s.dispatchRequest(ctx, reply, req, s.onDefinition)
	case protocol.MethodTextDocumentCompletion:
		return s.dispatchRequest(ctx, reply, req, s.onCompletion)
	case protocol.MethodTextDocumentDocumentSymbol:
		return s.dispatchRequest(ctx, reply, req, s.onDocumentSymbol)
	case protocol.MethodTextDocumentReferences:
		return s.dispatchRequest(ctx, reply, req, s.onReferences)
	case protocol.MethodTextDocumentDocumentHighlight:
		return s.dispatchRequest(ctx, reply, req, s.onDocumentHighlight)
	case protocol.MethodTextDocumentRename:
		return s.dispatchRequest(ctx, reply, req, s.onRename)
	case protocol.MethodTextDocumentFoldingRange:
		return s.dispatchRequest(ctx, reply, req, s.onFoldingRange)
	case protocol.MethodTextDocumentSignatureHelp:
		return s.dispatchRequest(ctx, reply, req, s.onSignatureHelp)
	case protocol.MethodTextDocumentSemanticTokensFull:
		return s.dispatchRequest(ctx, reply, req, s.onSemanticTokensFull)
	case protocol.MethodTextDocumentInlayHint:
		return s.dispatchRequest(ctx, reply, req, s.onInlayHint)
	case protocol.MethodWorkspaceSymbol:
		return s.dispatchRequest(ctx, reply, req, s.onWorkspaceSymbol)

	default:
		if req.IsNotify() {
			return nil
		}
		return reply(ctx, nil, fmt.Errorf("method not found: %s", req.Method()))
	}
}

// requestHandler computes a result from decoded params under ctx.
type requestHandler func(ctx context.Context, raw json.RawMessage) (any, error)

// dispatchRequest hops a request onto the worker pool, registering its
// cancel func so $/cancelRequest can reach it, and replies once the
// handler finishes or the request is cancelled (spec.md §5 "bounded
// worker pool... a cancellation map").
func (s *Server) dispatchRequest(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request, handler requestHandler) error {
	idStr := fmt.Sprint(req.ID())
	key := uuid.New().String()
	reqCtx, cancel := context.WithCancel(ctx)

	s.cancelMu.Lock()
	s.cancels[key] = cancel
	s.idKeys[idStr] = key
	s.cancelMu.Unlock()

	params := req.Params()
	s.pool.Submit(func() {
		defer func() {
			s.cancelMu.Lock()
			delete(s.cancels, key)
			if s.idKeys[idStr] == key {
				delete(s.idKeys, idStr)
			}
			s.cancelMu.Unlock()
			cancel()
		}()

		result, err := handler(reqCtx, params)
		if reqCtx.Err() != nil {
			_ = reply(ctx, nil, fmt.Errorf("request cancelled"))
			return
		}
		_ = reply(ctx, result, err)
	})
	return nil
}

func (s *Server) onCancel(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.CancelParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}
	idStr := fmt.Sprint(params.ID)
	s.cancelMu.Lock()
	if key, ok := s.idKeys[idStr]; ok {
		if cancel, ok := s.cancels[key]; ok {
			cancel()
		}
	}
	s.cancelMu.Unlock()
	if req.IsNotify() {
		return nil
	}
	return reply(ctx, nil, nil)
}

func (s *Server) publishDiagnostics(uri string, _ *index.Bundle) {
	diags := s.idx.Diagnostics(uri)
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, protocol.Diagnostic{
			Range:    rangeFromPos(d.Pos),
			Severity: severityToProtocol(d.Severity),
			Message:  d.Message,
			Source:   "novac",
		})
	}
	_ = s.conn.Notify(context.Background(), protocol.MethodTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentURI(uri),
		Diagnostics: out,
	})
}
