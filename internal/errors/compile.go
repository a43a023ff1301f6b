package errors

import (
	"fmt"

	tlerrors "tlog.app/go/errors"
)

// InternalError reports a violated compiler invariant. It is never the
// caller's fault and compilation cannot continue past it.
type InternalError struct {
	Op      string
	Message string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal compiler error in %s: %s", e.Op, e.Message)
}

// Internal builds an InternalError for the named operation
func Internal(op, format string, args ...any) *InternalError {
	return &InternalError{Op: op, Message: fmt.Sprintf(format, args...)}
}

// Stage names the pipeline step an external failure happened in
type Stage string

const (
	StageTemplate Stage = "template"
	StageCompile  Stage = "compile"
	StageLink     Stage = "link"
	StageLoad     Stage = "load"
	StageSymbol   Stage = "symbol"
	StageIO       Stage = "io"
	StageTimeout  Stage = "timeout"
	StageRuntime  Stage = "runtime"
)

// ExternalError reports a failure of the environment around the compiler:
// missing files, failing tools, unloadable modules. Callers may retry.
type ExternalError struct {
	Stage  Stage
	Output string // diagnostic output of a failing tool, if any
	Err    error
}

func (e *ExternalError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s: %v\n%s", e.Stage, e.Err, e.Output)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *ExternalError) Unwrap() error { return e.Err }

// External wraps err as a failure of the given stage
func External(stage Stage, err error, format string, args ...any) *ExternalError {
	return &ExternalError{Stage: stage, Err: tlerrors.Wrap(err, format, args...)}
}

// IsInternal reports whether err carries an InternalError
func IsInternal(err error) bool {
	var ie *InternalError
	return tlerrors.As(err, &ie)
}

// IsExternal reports whether err carries an ExternalError
func IsExternal(err error) bool {
	var ee *ExternalError
	return tlerrors.As(err, &ee)
}
