package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	tlerrors "tlog.app/go/errors"

	"mathmap/internal/cgen"
	"mathmap/internal/errors"
	"mathmap/internal/ir"
)

// NativeBackend builds programs with an external C toolchain and loads the
// result. Compilations through one backend are serialised.
type NativeBackend struct {
	Toolchain Toolchain

	// Template replaces DefaultTemplate when set
	Template string
	// TempDir is the parent of the per-compilation directories; empty
	// selects the system default
	TempDir string

	Plugin   bool
	OpenStep bool

	mu sync.Mutex
}

// NewNativeBackend creates a backend using tc and the embedded template
func NewNativeBackend(tc Toolchain) *NativeBackend {
	return &NativeBackend{Toolchain: tc}
}

// Source returns the complete C translation unit for p
func (b *NativeBackend) Source(p *ir.Program) (string, error) {
	if len(p.Result) > MaxTupleLength {
		return "", &errors.ExternalError{
			Stage: errors.StageTemplate,
			Err:   tlerrors.New("result has %d components, the native runtime holds %d", len(p.Result), MaxTupleLength),
		}
	}

	code, err := cgen.Generate(p)
	if err != nil {
		return "", err
	}

	template := b.Template
	if template == "" {
		template = DefaultTemplate
	}
	return Substitute(template, Tokens{
		MaxTupleLength: MaxTupleLength,
		Plugin:         b.Plugin,
		Code:           code,
		CurvePoints:    CurvePoints,
		GradientPoints: GradientPoints,
		OpenStep:       b.OpenStep,
	})
}

func (b *NativeBackend) Compile(ctx context.Context, p *ir.Program) (Function, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	src, err := b.Source(p)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(b.TempDir, "mathmap-")
	if err != nil {
		return nil, errors.External(errors.StageIO, err, "create build directory")
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warningf("remove %s: %v", dir, err)
		}
	}()

	srcPath := filepath.Join(dir, "mathfunc.c")
	objPath := filepath.Join(dir, "mathfunc.o")
	modPath := filepath.Join(dir, "mathfunc.so")

	if err := os.WriteFile(srcPath, []byte(src), 0o600); err != nil {
		return nil, errors.External(errors.StageIO, err, "write %s", srcPath)
	}
	if err := b.Toolchain.Compile(ctx, srcPath, objPath); err != nil {
		return nil, err
	}
	if err := b.Toolchain.Link(ctx, objPath, modPath); err != nil {
		return nil, err
	}

	mod, err := Load(modPath)
	if err != nil {
		return nil, err
	}

	log.Infof("compiled native function with %d result components", len(p.Result))
	return &nativeFunction{module: mod, resultLength: len(p.Result)}, nil
}

type nativeFunction struct {
	mu           sync.RWMutex
	module       *Module
	resultLength int
}

func (f *nativeFunction) ResultLength() int { return f.resultLength }

func (f *nativeFunction) NewEvaluator(env *Environment) (Evaluator, error) {
	e := &nativeEvaluator{fn: f, inv: NewInvocation(env)}
	if env != nil {
		for i, d := range env.Sampler.Drawables {
			if i == maxDrawables {
				break
			}
			if d != nil && len(d.Pix) > 0 {
				e.pix = append(e.pix, d.Pix)
			}
		}
	}
	return e, nil
}

func (f *nativeFunction) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.module == nil {
		return nil
	}
	err := f.module.Close()
	f.module = nil
	return err
}

type nativeEvaluator struct {
	fn  *nativeFunction
	inv *Invocation
	pix [][]byte
}

func (e *nativeEvaluator) Run(in *Internals) ([]float32, error) {
	e.fn.mu.RLock()
	defer e.fn.mu.RUnlock()

	if e.fn.module == nil {
		return nil, &errors.ExternalError{Stage: errors.StageRuntime, Err: tlerrors.New("function is closed")}
	}

	var pinner runtime.Pinner
	defer pinner.Unpin()
	pinner.Pin(e.inv)
	for _, p := range e.pix {
		pinner.Pin(&p[0])
	}

	e.inv.SetInternals(in)
	if e.fn.module.Call(e.inv) == 0 {
		return nil, &errors.ExternalError{Stage: errors.StageRuntime, Err: tlerrors.New("entry point returned no tuple")}
	}

	result := e.inv.Result()
	if len(result) != e.fn.resultLength {
		return nil, &errors.ExternalError{
			Stage: errors.StageRuntime,
			Err:   tlerrors.New("entry point produced %d components, expected %d", len(result), e.fn.resultLength),
		}
	}
	return result, nil
}
