package nativelib

import (
	"os"
	"strings"

	"go.uber.org/multierr"
)

// Set is the group of libraries opened by one successful tier
type Set struct {
	tier    Tier
	libs    []Library
	names   []string
	dir     string // Directory the libraries were found in, empty for the system tier
	tempDir string // Extraction dir owned by the set, removed on Close
}

// Tier returns the tier that provided the libraries
func (s *Set) Tier() Tier {
	return s.tier
}

// Dir returns the directory the libraries were loaded from
func (s *Set) Dir() string {
	if s.tempDir != "" {
		return s.tempDir
	}
	return s.dir
}

// Lookup returns the library opened for a descriptor name
func (s *Set) Lookup(name string) (Library, bool) {
	for i, n := range s.names {
		if n == name {
			return s.libs[i], true
		}
	}
	return nil, false
}

// Paths returns the opened paths in load order
func (s *Set) Paths() []string {
	out := make([]string, len(s.libs))
	for i, lib := range s.libs {
		out[i] = lib.Path()
	}
	return out
}

func (s *Set) String() string {
	return s.tier.String() + ": " + strings.Join(s.Paths(), ", ")
}

// Close closes the libraries in reverse load order and removes extracted files
func (s *Set) Close() error {
	err := closeAll(s.libs)
	s.libs = nil
	s.names = nil
	if s.tempDir != "" {
		err = multierr.Append(err, os.RemoveAll(s.tempDir))
		s.tempDir = ""
	}
	return err
}
