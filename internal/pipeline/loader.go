//go:build darwin || freebsd || linux

package pipeline

import (
	"github.com/ebitengine/purego"

	"mathmap/internal/errors"
)

// EntryPoint is the symbol every generated module exports
const EntryPoint = "mathmapinit"

// Module is a loaded native module
type Module struct {
	path   string
	handle uintptr
	entry  func(inv *Invocation) uintptr
}

// Load opens the shared module at path and binds its entry point. The
// file may be removed once Load returns.
func Load(path string) (*Module, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, errors.External(errors.StageLoad, err, "load %s", path)
	}

	sym, err := purego.Dlsym(handle, EntryPoint)
	if err != nil {
		_ = purego.Dlclose(handle)
		return nil, errors.External(errors.StageSymbol, err, "find %s in %s", EntryPoint, path)
	}

	m := &Module{path: path, handle: handle}
	purego.RegisterFunc(&m.entry, sym)

	log.Infof("loaded module %s", path)
	return m, nil
}

// Call runs the entry point on inv
func (m *Module) Call(inv *Invocation) uintptr {
	return m.entry(inv)
}

// Close unloads the module. Functions bound from it must not be called
// afterwards.
func (m *Module) Close() error {
	if m.handle == 0 {
		return nil
	}
	err := purego.Dlclose(m.handle)
	m.handle = 0
	m.entry = nil
	if err != nil {
		return errors.External(errors.StageLoad, err, "unload %s", m.path)
	}
	log.Debugf("unloaded module %s", m.path)
	return nil
}
