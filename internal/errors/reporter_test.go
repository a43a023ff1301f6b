package errors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorReporter(t *testing.T) {
	source := `(assign a (int 0))
(call + (var b) (int 1))`

	reporter := NewErrorReporter("swap.mmx", source)

	err := CompilerError{
		Level:    Error,
		Code:     ErrorUndefinedVariable,
		Message:  "undefined variable 'b'",
		Position: Position{Line: 2, Column: 9},
		Length:   7,
	}
	formatted := reporter.FormatError(err)

	assert.Contains(t, formatted, "error["+ErrorUndefinedVariable+"]")
	assert.Contains(t, formatted, "undefined variable 'b'")
	assert.Contains(t, formatted, "swap.mmx:2:9")
	assert.Contains(t, formatted, "(call + (var b) (int 1))")
}

func TestSyntaxDiagnostic(t *testing.T) {
	reporter := NewErrorReporter("bad.mmx", "(assign a")

	err := Syntax("unexpected end of input", Position{Line: 1, Column: 10})
	formatted := reporter.FormatError(err)

	assert.Equal(t, ErrorSyntax, err.Code)
	assert.Contains(t, formatted, "error["+ErrorSyntax+"]")
	assert.Contains(t, formatted, "help:")
}

func TestErrorMarkerCreation(t *testing.T) {
	reporter := NewErrorReporter("test.mmx", "(var value)")

	marker := reporter.createMarker(6, 5, Error)

	assert.Equal(t, 5, strings.Count(marker, " "))
	assert.Equal(t, 5, strings.Count(marker, "^"))
}

func TestErrorLevels(t *testing.T) {
	reporter := NewErrorReporter("test.mmx", "test")
	pos := Position{Line: 1, Column: 1}

	errorFormatted := reporter.FormatError(CompilerError{Level: Error, Message: "test error", Position: pos})
	warningFormatted := reporter.FormatError(CompilerError{Level: Warning, Message: "test warning", Position: pos})

	assert.Contains(t, errorFormatted, "error:")
	assert.Contains(t, warningFormatted, "warning:")
}

func TestFormatAll(t *testing.T) {
	reporter := NewErrorReporter("test.mmx", "(a)\n(b)")

	out := reporter.FormatAll([]CompilerError{
		{Level: Error, Code: ErrorUnknownForm, Message: "unknown form 'a'", Position: Position{Line: 1, Column: 1}},
		{Level: Error, Code: ErrorUnknownForm, Message: "unknown form 'b'", Position: Position{Line: 2, Column: 1}},
	})

	assert.Equal(t, 2, strings.Count(out, ErrorUnknownForm))
}

func TestErrorClassification(t *testing.T) {
	internal := Internal("removeUse", "statement %d not in use-list", 7)
	external := External(StageCompile, fmt.Errorf("exit status 1"), "run %s", "cc")

	assert.True(t, IsInternal(internal))
	assert.False(t, IsExternal(internal))
	assert.True(t, IsExternal(external))
	assert.False(t, IsInternal(external))

	wrapped := fmt.Errorf("compile: %w", external)
	require.True(t, IsExternal(wrapped))
	assert.Contains(t, internal.Error(), "removeUse")
	assert.Contains(t, external.Error(), "compile")
}

func TestGetErrorDescription(t *testing.T) {
	assert.Contains(t, GetErrorDescription(ErrorInternal), "bug")
	assert.Equal(t, "Unknown error", GetErrorDescription("E9999"))
}

func TestFormatExternal(t *testing.T) {
	err := &ExternalError{
		Stage:  StageCompile,
		Output: "mathfunc.c:3:1: error: expected ';'\n1 error generated.\n",
		Err:    fmt.Errorf("exit status 1"),
	}

	formatted := FormatExternal(err)

	assert.Contains(t, formatted, "error["+ErrorExternal+"]")
	assert.Contains(t, formatted, "compile stage failed: exit status 1")
	assert.Contains(t, formatted, "│ mathfunc.c:3:1: error: expected ';'")
	assert.Contains(t, formatted, "│ 1 error generated.")
	assert.Equal(t, 4, strings.Count(formatted, "\n"))
}
