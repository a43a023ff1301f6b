package errors

// Error codes for the mathmap backend.
//
// Error code ranges:
// E0001-E0099: Interchange reader errors
// E0100-E0199: Lowering errors (internal consistency)
// E0200-E0299: Compile-and-load pipeline errors

const (
	// E0001: Malformed interchange text
	ErrorSyntax = "E0001"

	// E0002: Head symbol of a form is not known
	ErrorUnknownForm = "E0002"

	// E0003: Wrong number of arguments or tuple components
	ErrorArityMismatch = "E0003"

	// E0004: Variable read before any assignment
	ErrorUndefinedVariable = "E0004"

	// E0005: Internal name not provided by the environment
	ErrorUnknownInternal = "E0005"

	// E0006: Function not provided by the op library
	ErrorUnknownFunction = "E0006"

	// E0007: Literal of the wrong shape
	ErrorBadLiteral = "E0007"

	// E0008: Input holds no expression
	ErrorEmptyTree = "E0008"

	// E0100: Compiler invariant violated
	ErrorInternal = "E0100"

	// E0200: External resource or tool failed
	ErrorExternal = "E0200"
)

// GetErrorDescription returns a human-readable description of the error code
func GetErrorDescription(code string) string {
	switch code {
	case ErrorSyntax:
		return "Interchange text is not a well-formed S-expression"
	case ErrorUnknownForm:
		return "Form name is not part of the tree interchange format"
	case ErrorArityMismatch:
		return "Number of arguments or tuple components does not match"
	case ErrorUndefinedVariable:
		return "Variable is read before it is assigned"
	case ErrorUnknownInternal:
		return "Internal is not provided by the invocation environment"
	case ErrorUnknownFunction:
		return "Function is not provided by the op library"
	case ErrorBadLiteral:
		return "Literal has the wrong shape"
	case ErrorEmptyTree:
		return "Input contains no expression"
	case ErrorInternal:
		return "Compiler invariant violated; this is a bug"
	case ErrorExternal:
		return "External tool or resource failed"
	default:
		return "Unknown error"
	}
}

// Syntax builds the diagnostic for malformed interchange text
func Syntax(message string, pos Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorSyntax,
		Message:  message,
		Position: pos,
		Length:   1,
		HelpText: "trees are written as (form arg ...), e.g. (assign a (int 0))",
	}
}

// EmptyTree builds the diagnostic for input without any expression
func EmptyTree(pos Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorEmptyTree,
		Message:  "no expression to compile",
		Position: pos,
		Length:   1,
	}
}
