package lsp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/novalang/novac/internal/index"
	"go.lsp.dev/protocol"
)

func (s *Server) onHover(ctx context.Context, raw json.RawMessage) (any, error) {
	var params protocol.HoverParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, err
	}
	uri := string(params.TextDocument.URI)
	offset := s.offsetFromParams(uri, params.Position)
	h, ok := s.idx.Hover(uri, offset)
	if !ok {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.PlainText, Value: h.Contents},
		Range:    ptrRange(rangeFromPos(h.Pos)),
	}, nil
}

func (s *Server) onDefinition(ctx context.Context, raw json.RawMessage) (any, error) {
	var params protocol.DefinitionParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, err
	}
	uri := string(params.TextDocument.URI)
	offset := s.offsetFromParams(uri, params.Position)
	pos, ok := s.idx.Definition(uri, offset)
	if !ok {
		return nil, nil
	}
	return []protocol.Location{{URI: protocol.DocumentURI(pos.File), Range: rangeFromPos(pos)}}, nil
}

func (s *Server) onCompletion(ctx context.Context, raw json.RawMessage) (any, error) {
	var params protocol.CompletionParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, err
	}
	uri := string(params.TextDocument.URI)
	offset := s.offsetFromParams(uri, params.Position)
	items, ok := s.idx.Completion(uri, offset)
	if !ok {
		return nil, nil
	}
	out := make([]protocol.CompletionItem, 0, len(items))
	for _, it := range items {
		out = append(out, protocol.CompletionItem{
			Label:  it.Label,
			Kind:   completionKindToProtocol(it.Kind),
			Detail: it.Detail,
		})
	}
	return &protocol.CompletionList{IsIncomplete: false, Items: out}, nil
}

func completionKindToProtocol(k index.CompletionKind) protocol.CompletionItemKind {
	switch k {
	case index.CompFunction:
		return protocol.CompletionItemKindFunction
	case index.CompProperty:
		return protocol.CompletionItemKindField
	case index.CompClass:
		return protocol.CompletionItemKindClass
	case index.CompSnippet:
		return protocol.CompletionItemKindSnippet
	case index.CompKeyword:
		return protocol.CompletionItemKindKeyword
	default:
		return protocol.CompletionItemKindVariable
	}
}

func (s *Server) onDocumentSymbol(ctx context.Context, raw json.RawMessage) (any, error) {
	var params protocol.DocumentSymbolParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, err
	}
	uri := string(params.TextDocument.URI)
	entries, ok := s.idx.DocumentSymbols(uri)
	if !ok {
		return nil, nil
	}
	out := make([]protocol.SymbolInformation, 0, len(entries))
	for _, e := range entries {
		out = append(out, protocol.SymbolInformation{
			Name: e.Name,
			Kind: symbolKindToProtocol(e.Kind),
			Location: protocol.Location{
				URI:   protocol.DocumentURI(e.URI),
				Range: rangeFromPos(e.Pos),
			},
		})
	}
	return out, nil
}

func symbolKindToProtocol(k index.SymbolEntryKind) protocol.SymbolKind {
	switch k {
	case index.EntryClass:
		return protocol.SymbolKindClass
	case index.EntryFunction:
		return protocol.SymbolKindFunction
	case index.EntryProperty:
		return protocol.SymbolKindProperty
	case index.EntryEnumEntry:
		return protocol.SymbolKindEnumMember
	default:
		return protocol.SymbolKindVariable
	}
}

func (s *Server) onReferences(ctx context.Context, raw json.RawMessage) (any, error) {
	var params protocol.ReferenceParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, err
	}
	uri := string(params.TextDocument.URI)
	offset := s.offsetFromParams(uri, params.Position)
	refs, ok := s.idx.References(uri, offset, params.Context.IncludeDeclaration)
	if !ok {
		return nil, nil
	}
	out := make([]protocol.Location, 0, len(refs))
	for _, r := range refs {
		out = append(out, protocol.Location{URI: params.TextDocument.URI, Range: rangeFromPos(r.Pos)})
	}
	return out, nil
}

func (s *Server) onDocumentHighlight(ctx context.Context, raw json.RawMessage) (any, error) {
	var params protocol.DocumentHighlightParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, err
	}
	uri := string(params.TextDocument.URI)
	offset := s.offsetFromParams(uri, params.Position)
	refs, ok := s.idx.DocumentHighlight(uri, offset)
	if !ok {
		return nil, nil
	}
	out := make([]protocol.DocumentHighlight, 0, len(refs))
	for _, r := range refs {
		kind := protocol.DocumentHighlightKindRead
		if r.Write {
			kind = protocol.DocumentHighlightKindWrite
		}
		out = append(out, protocol.DocumentHighlight{Range: rangeFromPos(r.Pos), Kind: kind})
	}
	return out, nil
}

func (s *Server) onRename(ctx context.Context, raw json.RawMessage) (any, error) {
	var params protocol.RenameParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, err
	}
	uri := string(params.TextDocument.URI)
	offset := s.offsetFromParams(uri, params.Position)
	if !index.CanRename(identifierTextAt(s, uri, offset)) {
		return nil, fmt.Errorf("cannot rename a keyword or built-in name")
	}
	edits, ok := s.idx.Rename(uri, offset, params.NewName)
	if !ok {
		return nil, fmt.Errorf("no renameable symbol at this position")
	}
	changes := map[protocol.DocumentURI][]protocol.TextEdit{}
	for _, e := range edits {
		u := protocol.DocumentURI(e.URI)
		changes[u] = append(changes[u], protocol.TextEdit{Range: rangeFromPos(e.Pos), NewText: e.Text})
	}
	return &protocol.WorkspaceEdit{Changes: changes}, nil
}

// identifierTextAt re-derives the identifier name at offset via a
// hover lookup's rendered text is not suitable, so instead ask
// Definition/References indirectly: the simplest reliable source is
// the document content itself, since Rename re-parses the same
// expression internally; this only guards the obviously-invalid cases
// (keywords, builtins) before doing that heavier work.
func identifierTextAt(s *Server, uri string, offset int) string {
	content := s.idx.Content(uri)
	start, end := offset, offset
	for start > 0 && isIdentRune(content[start-1]) {
		start--
	}
	for end < len(content) && isIdentRune(content[end]) {
		end++
	}
	if start == end {
		return ""
	}
	return content[start:end]
}

func isIdentRune(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (s *Server) onFoldingRange(ctx context.Context, raw json.RawMessage) (any, error) {
	var params protocol.FoldingRangeParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, err
	}
	uri := string(params.TextDocument.URI)
	ranges, ok := s.idx.FoldingRanges(uri)
	if !ok {
		return nil, nil
	}
	out := make([]protocol.FoldingRange, 0, len(ranges))
	for _, r := range ranges {
		fr := protocol.FoldingRange{
			StartLine: uint32(r.StartLine - 1),
			EndLine:   uint32(r.EndLine - 1),
		}
		if r.Kind == "comment" {
			fr.Kind = protocol.FoldingRangeKindComment
		} else if r.Kind == "imports" {
			fr.Kind = protocol.FoldingRangeKindImports
		} else {
			fr.Kind = protocol.FoldingRangeKindRegion
		}
		out = append(out, fr)
	}
	return out, nil
}

func (s *Server) onSignatureHelp(ctx context.Context, raw json.RawMessage) (any, error) {
	var params protocol.SignatureHelpParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, err
	}
	uri := string(params.TextDocument.URI)
	offset := s.offsetFromParams(uri, params.Position)
	help, ok := s.idx.SignatureHelp(uri, offset)
	if !ok {
		return nil, nil
	}
	params2 := make([]protocol.ParameterInformation, len(help.Params))
	for i, p := range help.Params {
		params2[i] = protocol.ParameterInformation{Label: p}
	}
	active := uint32(help.ActiveParameter)
	return &protocol.SignatureHelp{
		Signatures: []protocol.SignatureInformation{
			{Label: help.Label, Parameters: params2},
		},
		ActiveParameter: active,
	}, nil
}

func (s *Server) onSemanticTokensFull(ctx context.Context, raw json.RawMessage) (any, error) {
	var params protocol.SemanticTokensParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, err
	}
	uri := string(params.TextDocument.URI)
	data, ok := s.idx.SemanticTokens(uri)
	if !ok {
		return nil, nil
	}
	u32 := make([]uint32, len(data))
	for i, v := range data {
		u32[i] = uint32(v)
	}
	return &protocol.SemanticTokens{Data: u32}, nil
}

func (s *Server) onInlayHint(ctx context.Context, raw json.RawMessage) (any, error) {
	var params protocol.InlayHintParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, err
	}
	uri := string(params.TextDocument.URI)
	hints, ok := s.idx.InlayHints(uri)
	if !ok {
		return nil, nil
	}
	out := make([]protocol.InlayHint, 0, len(hints))
	for _, h := range hints {
		out = append(out, protocol.InlayHint{
			Position: rangeFromPos(h.Pos).Start,
			Label:    h.Text,
		})
	}
	return out, nil
}

func (s *Server) onWorkspaceSymbol(ctx context.Context, raw json.RawMessage) (any, error) {
	var params protocol.WorkspaceSymbolParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, err
	}
	entries := s.idx.WorkspaceSymbols(params.Query)
	out := make([]protocol.SymbolInformation, 0, len(entries))
	for _, e := range entries {
		out = append(out, protocol.SymbolInformation{
			Name:     e.Name,
			Kind:     symbolKindToProtocol(e.Kind),
			Location: protocol.Location{URI: protocol.DocumentURI(e.URI), Range: rangeFromPos(e.Pos)},
		})
	}
	return out, nil
}

func ptrRange(r protocol.Range) *protocol.Range { return &r }
