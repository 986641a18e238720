package lsp

import (
	"github.com/novalang/novac/internal/errors"
	"github.com/novalang/novac/internal/source"
	"go.lsp.dev/protocol"
)

func rangeFromPos(p source.Position) protocol.Range {
	if p.IsUnknown() {
		return protocol.Range{}
	}
	start := protocol.Position{Line: uint32(p.Line - 1), Character: uint32(p.Column - 1)}
	end := protocol.Position{Line: uint32(p.Line - 1), Character: uint32(p.Column - 1 + p.Length)}
	return protocol.Range{Start: start, End: end}
}

func severityToProtocol(sev errors.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case errors.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case errors.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	case errors.SeverityHint:
		return protocol.DiagnosticSeverityHint
	default:
		return protocol.DiagnosticSeverityError
	}
}

// offsetFromParams converts a request's (uri, line, character) into
// the byte offset internal/index's query functions take.
func (s *Server) offsetFromParams(uri string, pos protocol.Position) int {
	return s.idx.OffsetAt(uri, int(pos.Line), int(pos.Character))
}

func positionFromOffset(s *Server, uri string, offset int) protocol.Position {
	line, char := s.idx.LineColAt(uri, offset)
	return protocol.Position{Line: uint32(line), Character: uint32(char)}
}
