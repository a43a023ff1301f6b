//go:build !(darwin || freebsd || linux)

package pipeline

import (
	"runtime"

	tlerrors "tlog.app/go/errors"

	"mathmap/internal/errors"
)

const EntryPoint = "mathmapinit"

// Module is unavailable on this platform
type Module struct{}

func Load(path string) (*Module, error) {
	return nil, &errors.ExternalError{
		Stage: errors.StageLoad,
		Err:   tlerrors.New("loading native modules is not supported on %s", runtime.GOOS),
	}
}

func (m *Module) Call(inv *Invocation) uintptr { return 0 }

func (m *Module) Close() error { return nil }
