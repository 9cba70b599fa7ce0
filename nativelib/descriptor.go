// Package nativelib resolves and opens native shared libraries through an ordered fallback chain
package nativelib

// Descriptor names one logical native module and its candidate file names
// Files are tried in order within a location; Bundled is the path inside Loader.Bundle.
type Descriptor struct {
	Name    string
	Files   []string
	Bundled string
}

// Tier is one resolution strategy of the fallback chain
type Tier int

const (
	TierNone Tier = iota
	TierBundled
	TierCustom
	TierSystem
	TierInstall
)

func (t Tier) String() string {
	switch t {
	case TierBundled:
		return "bundled"
	case TierCustom:
		return "custom"
	case TierSystem:
		return "system"
	case TierInstall:
		return "install"
	default:
		return "none"
	}
}

// Library is an opened native module
type Library interface {
	Path() string
	Symbol(name string) (uintptr, error)
	Close() error
}

// Opener opens a library by absolute path or bare file name
type Opener func(path string) (Library, error)
