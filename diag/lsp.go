package diag

import (
	"path/filepath"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// Source is the diagnostic source reported to editors.
const Source = "schemagen"

// ToLSP groups diagnostics by file into publishDiagnostics payloads, one per
// file in first-seen order. Positions are converted to the zero based
// line/character pairs the protocol uses.
func ToLSP(l List) []*protocol.PublishDiagnosticsParams {
	var res []*protocol.PublishDiagnosticsParams
	byFile := map[string]*protocol.PublishDiagnosticsParams{}
	for _, d := range l {
		params, ok := byFile[d.Pos.Filename]
		if !ok {
			params = &protocol.PublishDiagnosticsParams{
				URI:         documentURI(d.Pos.Filename),
				Diagnostics: []protocol.Diagnostic{},
			}
			byFile[d.Pos.Filename] = params
			res = append(res, params)
		}
		params.Diagnostics = append(params.Diagnostics, toLSPDiagnostic(d))
	}
	return res
}

func toLSPDiagnostic(d *Diagnostic) protocol.Diagnostic {
	line, col := 0, 0
	if d.Pos.Line > 0 {
		line = d.Pos.Line - 1
	}
	if d.Pos.Column > 0 {
		col = d.Pos.Column - 1
	}
	severity := protocol.DiagnosticSeverityError
	if d.Severity() == Warning {
		severity = protocol.DiagnosticSeverityWarning
	}
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: uint32(line), Character: uint32(col)},
			End:   protocol.Position{Line: uint32(line), Character: uint32(col + 1)},
		},
		Severity: severity,
		Code:     string(d.Kind),
		Source:   Source,
		Message:  d.Message,
	}
}

func documentURI(filename string) protocol.DocumentURI {
	if filename == "" {
		return ""
	}
	if abs, err := filepath.Abs(filename); err == nil {
		filename = abs
	}
	return protocol.DocumentURI(uri.File(filename))
}
