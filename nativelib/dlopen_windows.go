//go:build windows

package nativelib

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// dllLibrary is a library opened with LoadLibrary
type dllLibrary struct {
	path   string
	handle windows.Handle
}

// Open loads path with LoadLibrary
func Open(path string) (Library, error) {
	handle, err := windows.LoadLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("LoadLibrary %s: %w", path, err)
	}
	return &dllLibrary{path: path, handle: handle}, nil
}

func (l *dllLibrary) Path() string {
	return l.path
}

func (l *dllLibrary) Symbol(name string) (uintptr, error) {
	sym, err := windows.GetProcAddress(l.handle, name)
	if err != nil {
		return 0, fmt.Errorf("GetProcAddress %s in %s: %w", name, l.path, err)
	}
	return sym, nil
}

func (l *dllLibrary) Close() error {
	if l.handle == 0 {
		return nil
	}
	err := windows.FreeLibrary(l.handle)
	l.handle = 0
	return err
}
