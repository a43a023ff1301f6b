package lsp

import (
	stderrors "errors"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"mathmap/internal/errors"
	"mathmap/internal/exprtree"
)

// ConvertReadError transforms reader diagnostics into LSP diagnostics.
// Anything that is not a *exprtree.ReadError is reported at the start of
// the file.
func ConvertReadError(err error) []protocol.Diagnostic {
	var re *exprtree.ReadError
	if !stderrors.As(err, &re) {
		return []protocol.Diagnostic{fileDiagnostic(errors.ErrorSyntax, "mathmap-reader", err.Error())}
	}

	diagnostics := make([]protocol.Diagnostic, 0, len(re.Diagnostics))
	for _, d := range re.Diagnostics {
		length := d.Length
		if length <= 0 {
			length = 1
		}

		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{
					Line:      zeroBased(d.Position.Line),
					Character: zeroBased(d.Position.Column),
				},
				End: protocol.Position{
					Line:      zeroBased(d.Position.Line),
					Character: zeroBased(d.Position.Column) + uint32(length),
				},
			},
			Severity: ptrSeverity(severity(d.Level)),
			Code:     &protocol.IntegerOrString{Value: d.Code},
			Source:   ptrString("mathmap-reader"),
			Message:  d.Message,
		})
	}

	return diagnostics
}

// ConvertLowerError reports a lowering failure. Lowering carries no source
// positions, so the diagnostic covers the first character.
func ConvertLowerError(err error) []protocol.Diagnostic {
	code := errors.ErrorExternal
	if errors.IsInternal(err) {
		code = errors.ErrorInternal
	}
	return []protocol.Diagnostic{fileDiagnostic(code, "mathmap-lower", err.Error())}
}

func fileDiagnostic(code, source, message string) protocol.Diagnostic {
	return protocol.Diagnostic{
		Range: protocol.Range{
			End: protocol.Position{Character: 1},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Code:     &protocol.IntegerOrString{Value: code},
		Source:   ptrString(source),
		Message:  message,
	}
}

func severity(level errors.ErrorLevel) protocol.DiagnosticSeverity {
	switch level {
	case errors.Warning:
		return protocol.DiagnosticSeverityWarning
	case errors.Note:
		return protocol.DiagnosticSeverityInformation
	}
	return protocol.DiagnosticSeverityError
}

// LSP positions are 0-based
func zeroBased(n int) uint32 {
	if n <= 1 {
		return 0
	}
	return uint32(n - 1)
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}
