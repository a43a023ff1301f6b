package pipeline

import (
	"context"
	"os/exec"
	"strings"
	"time"

	tlerrors "tlog.app/go/errors"

	"mathmap/internal/errors"
)

// Toolchain drives the external C compiler and linker
type Toolchain struct {
	CC      string
	CFlags  []string
	LDFlags []string
	Libs    []string

	// Timeout bounds each command; zero means no limit beyond the context
	Timeout time.Duration
}

// DefaultToolchain builds position independent shared modules with cc
func DefaultToolchain() Toolchain {
	return Toolchain{
		CC:      "cc",
		CFlags:  []string{"-std=gnu11", "-O2", "-fPIC", "-w"},
		LDFlags: []string{"-shared"},
		Libs:    []string{"-lm"},
		Timeout: time.Minute,
	}
}

// Available reports whether the compiler command can be found
func (t *Toolchain) Available() bool {
	_, err := exec.LookPath(t.CC)
	return err == nil
}

// Compile translates the C source src into the object file obj
func (t *Toolchain) Compile(ctx context.Context, src, obj string) error {
	args := append(append([]string{}, t.CFlags...), "-c", "-o", obj, src)
	return t.run(ctx, errors.StageCompile, args)
}

// Link turns the object file obj into the loadable module at module
func (t *Toolchain) Link(ctx context.Context, obj, module string) error {
	args := append(append([]string{}, t.LDFlags...), "-o", module, obj)
	args = append(args, t.Libs...)
	return t.run(ctx, errors.StageLink, args)
}

func (t *Toolchain) run(ctx context.Context, stage errors.Stage, args []string) error {
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	log.Debugf("%s: %s %s", stage, t.CC, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, t.CC, args...)
	cmd.WaitDelay = time.Second
	out, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}

	if ctx.Err() != nil {
		return &errors.ExternalError{
			Stage:  errors.StageTimeout,
			Output: string(out),
			Err:    tlerrors.Wrap(ctx.Err(), "%s %s", stage, t.CC),
		}
	}
	return &errors.ExternalError{
		Stage:  stage,
		Output: string(out),
		Err:    tlerrors.Wrap(err, "run %s", t.CC),
	}
}
