// Package pipeline turns a lowered program into something callable: either
// a native module built from the generated C code or an in-process
// evaluator.
package pipeline

import (
	"context"

	"github.com/tliron/commonlog"

	"mathmap/internal/exprtree"
	"mathmap/internal/interp"
	"mathmap/internal/ir"
)

var log = commonlog.GetLogger("mathmap.pipeline")

// Environment is the per-evaluator context shared by every backend
type Environment = interp.Environment

// Internals are the per-pixel inputs shared by every backend
type Internals = interp.Internals

// Evaluator runs a compiled function. It is owned by one goroutine.
type Evaluator interface {
	Run(in *Internals) ([]float32, error)
}

// Function is a compiled program. Evaluators may be created and used
// concurrently; Close releases the function once none is running.
type Function interface {
	ResultLength() int
	NewEvaluator(env *Environment) (Evaluator, error)
	Close() error
}

// Backend compiles typed programs into functions
type Backend interface {
	Compile(ctx context.Context, p *ir.Program) (Function, error)
}

// Lower lowers tree with lib, checks the result and propagates types
func Lower(tree exprtree.Node, lib ir.Library) (*ir.Program, error) {
	p, err := ir.NewSession(lib).Lower(tree)
	if err != nil {
		return nil, err
	}
	if err := ir.Verify(p); err != nil {
		return nil, err
	}
	raises := ir.Propagate(p)
	log.Debugf("program has %d statements, %d result components, %d type raises",
		len(p.Statements), len(p.Result), raises)
	return p, nil
}

// Compile lowers tree and hands the typed program to backend
func Compile(ctx context.Context, tree exprtree.Node, lib ir.Library, backend Backend) (Function, error) {
	p, err := Lower(tree, lib)
	if err != nil {
		return nil, err
	}
	return backend.Compile(ctx, p)
}

// InterpBackend evaluates programs in process
type InterpBackend struct{}

func (InterpBackend) Compile(ctx context.Context, p *ir.Program) (Function, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return interpFunction{prog: interp.New(p)}, nil
}

type interpFunction struct {
	prog *interp.Program
}

func (f interpFunction) ResultLength() int { return f.prog.ResultLength() }

func (f interpFunction) NewEvaluator(env *Environment) (Evaluator, error) {
	return f.prog.NewMachine(env), nil
}

func (interpFunction) Close() error { return nil }
