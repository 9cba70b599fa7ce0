package fmod

import (
	"io"
	"io/fs"
	"runtime"

	"github.com/lixenwraith/fmodapi/audio"
	"github.com/lixenwraith/fmodapi/nativelib"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Backend resolves the FMOD libraries and binds the Studio API
// It implements audio.Backend
type Backend struct {
	Bundle        fs.FS    // Optional bundled library copies under BundleRoot
	InstallDirs   []string // nil uses DefaultInstallDirs
	HeaderVersion uint32   // 0 uses DefaultHeaderVersion
	Logger        *zap.Logger

	// open replaces the platform library opener in tests
	open nativelib.Opener
}

// NewBackend creates a backend with the platform install dirs
func NewBackend(bundle fs.FS) *Backend {
	return &Backend{
		Bundle:      bundle,
		InstallDirs: DefaultInstallDirs(runtime.GOOS),
		Logger:      audio.Logger().Named("nativelib"),
	}
}

// Loader returns the library loader configured for cfg
func (b *Backend) Loader(cfg audio.Config) *nativelib.Loader {
	dirs := b.InstallDirs
	if dirs == nil {
		dirs = DefaultInstallDirs(runtime.GOOS)
	}
	return &nativelib.Loader{
		Bundle:      b.Bundle,
		CustomDir:   cfg.CustomLibraryPath,
		InstallDirs: dirs,
		MaxDepth:    nativelib.DefaultMaxDepth,
		Open:        b.open,
		Logger:      b.Logger,
	}
}

// Load implements audio.Backend
// The returned closer is the *nativelib.Set, whose String names the winning tier.
func (b *Backend) Load(cfg audio.Config) (audio.Native, io.Closer, error) {
	set, err := b.Loader(cfg).Resolve(HostDescriptors())
	if err != nil {
		return nil, nil, err
	}

	studio, err := Bind(set, b.HeaderVersion)
	if err != nil {
		return nil, nil, multierr.Append(err, set.Close())
	}
	return studio, set, nil
}

var _ audio.Backend = (*Backend)(nil)
