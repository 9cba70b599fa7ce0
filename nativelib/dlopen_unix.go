//go:build darwin || linux || freebsd

package nativelib

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// dlLibrary is a library opened with dlopen
type dlLibrary struct {
	path   string
	handle uintptr
}

// Open loads path with RTLD_NOW|RTLD_GLOBAL so later modules can bind against its symbols
func Open(path string) (Library, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("dlopen %s: %w", path, err)
	}
	return &dlLibrary{path: path, handle: handle}, nil
}

func (l *dlLibrary) Path() string {
	return l.path
}

func (l *dlLibrary) Symbol(name string) (uintptr, error) {
	sym, err := purego.Dlsym(l.handle, name)
	if err != nil {
		return 0, fmt.Errorf("dlsym %s in %s: %w", name, l.path, err)
	}
	return sym, nil
}

func (l *dlLibrary) Close() error {
	if l.handle == 0 {
		return nil
	}
	err := purego.Dlclose(l.handle)
	l.handle = 0
	return err
}
