package nativelib

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Loader resolves a set of descriptors through four tiers, first full success wins:
// bundled copies, a custom directory, the OS search path, then known install directories.
// A tier either opens every descriptor or closes what it opened before the next tier runs.
type Loader struct {
	Bundle      fs.FS    // Source of bundled copies, nil skips the tier
	CustomDir   string   // User-provided directory, empty skips the tier
	InstallDirs []string // Known SDK install locations
	MaxDepth    int      // Recursive search depth below custom and install dirs, 0 uses DefaultMaxDepth

	Open   Opener      // nil uses the platform Open
	Logger *zap.Logger // nil discards
}

func (l *Loader) opener() Opener {
	if l.Open != nil {
		return l.Open
	}
	return Open
}

func (l *Loader) log() *zap.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return zap.NewNop()
}

func (l *Loader) depth() int {
	if l.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return l.MaxDepth
}

// Resolve opens every descriptor from the first tier that can provide all of them
// Libraries are opened in descriptor order. Not safe for concurrent use.
func (l *Loader) Resolve(descs []Descriptor) (*Set, error) {
	if len(descs) == 0 {
		return nil, errors.New("no libraries to resolve")
	}

	lerr := &LoadError{}
	tiers := []struct {
		tier Tier
		run  func([]Descriptor, *LoadError) (*Set, bool)
	}{
		{TierBundled, l.fromBundle},
		{TierCustom, l.fromCustom},
		{TierSystem, l.fromSystem},
		{TierInstall, l.fromInstallDirs},
	}

	for _, t := range tiers {
		set, ok := t.run(descs, lerr)
		if ok {
			l.log().Info("native libraries loaded",
				zap.Stringer("tier", t.tier),
				zap.Strings("paths", set.Paths()))
			return set, nil
		}
		l.log().Debug("library tier failed", zap.Stringer("tier", t.tier))
	}

	l.log().Error("native libraries not found", zap.Int("attempts", len(lerr.Attempts)))
	return nil, lerr
}

// fromBundle extracts bundled copies to a scoped temp dir and opens them by absolute path
func (l *Loader) fromBundle(descs []Descriptor, lerr *LoadError) (*Set, bool) {
	if l.Bundle == nil {
		lerr.add(Attempt{Tier: TierBundled, Module: descs[0].Name, Err: errors.New("no bundle")})
		return nil, false
	}

	dir, err := os.MkdirTemp("", "fmodapi-libs-")
	if err != nil {
		lerr.add(Attempt{Tier: TierBundled, Module: descs[0].Name, Err: err})
		return nil, false
	}

	paths := make([]string, 0, len(descs))
	for _, d := range descs {
		if d.Bundled == "" {
			lerr.add(Attempt{Tier: TierBundled, Module: d.Name, Err: ErrNotFound})
			os.RemoveAll(dir)
			return nil, false
		}
		data, err := fs.ReadFile(l.Bundle, d.Bundled)
		if err != nil {
			lerr.add(Attempt{Tier: TierBundled, Module: d.Name, Path: d.Bundled, Err: err})
			os.RemoveAll(dir)
			return nil, false
		}
		p := filepath.Join(dir, path.Base(d.Bundled))
		if err := os.WriteFile(p, data, 0o755); err != nil {
			lerr.add(Attempt{Tier: TierBundled, Module: d.Name, Path: p, Err: err})
			os.RemoveAll(dir)
			return nil, false
		}
		paths = append(paths, p)
	}

	libs, ok := l.openPaths(TierBundled, descs, paths, lerr)
	if !ok {
		os.RemoveAll(dir)
		return nil, false
	}
	return &Set{tier: TierBundled, libs: libs, names: names(descs), tempDir: dir}, true
}

// fromCustom loads from CustomDir directly, else from the first qualifying directory below it
func (l *Loader) fromCustom(descs []Descriptor, lerr *LoadError) (*Set, bool) {
	if l.CustomDir == "" {
		lerr.add(Attempt{Tier: TierCustom, Module: descs[0].Name, Err: errors.New("no custom path")})
		return nil, false
	}
	return l.fromDir(TierCustom, l.CustomDir, descs, lerr)
}

// fromSystem opens bare file names through the OS search path
func (l *Loader) fromSystem(descs []Descriptor, lerr *LoadError) (*Set, bool) {
	open := l.opener()
	libs := make([]Library, 0, len(descs))
	for _, d := range descs {
		var lib Library
		for _, name := range d.Files {
			opened, err := open(name)
			if err != nil {
				lerr.add(Attempt{Tier: TierSystem, Module: d.Name, Path: name, Err: err})
				continue
			}
			lib = opened
			break
		}
		if lib == nil {
			closeAll(libs)
			return nil, false
		}
		libs = append(libs, lib)
	}
	return &Set{tier: TierSystem, libs: libs, names: names(descs)}, true
}

// fromInstallDirs tries each known install directory like the custom tier
func (l *Loader) fromInstallDirs(descs []Descriptor, lerr *LoadError) (*Set, bool) {
	for _, dir := range l.InstallDirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			lerr.add(Attempt{Tier: TierInstall, Module: descs[0].Name, Path: dir, Err: ErrNotFound})
			continue
		}
		if set, ok := l.fromDir(TierInstall, dir, descs, lerr); ok {
			return set, true
		}
	}
	return nil, false
}

// fromDir opens every descriptor from root, or from the first directory below root holding all of them
func (l *Loader) fromDir(tier Tier, root string, descs []Descriptor, lerr *LoadError) (*Set, bool) {
	required := make([][]string, len(descs))
	for i, d := range descs {
		required[i] = d.Files
	}

	dir := root
	if !hasAll(root, required) {
		found, ok := FindDir(root, required, l.depth())
		if !ok {
			lerr.add(Attempt{
				Tier:   tier,
				Module: descs[0].Name,
				Path:   root,
				Err:    fmt.Errorf("%w within depth %d", ErrNotFound, l.depth()),
			})
			return nil, false
		}
		l.log().Debug("libraries found by search", zap.String("root", root), zap.String("dir", found))
		dir = found
	}

	paths := make([]string, len(descs))
	for i, d := range descs {
		paths[i], _ = firstFile(dir, d.Files)
	}

	libs, ok := l.openPaths(tier, descs, paths, lerr)
	if !ok {
		return nil, false
	}
	return &Set{tier: tier, libs: libs, names: names(descs), dir: dir}, true
}

// openPaths opens paths in order; on any failure it closes what was opened
func (l *Loader) openPaths(tier Tier, descs []Descriptor, paths []string, lerr *LoadError) ([]Library, bool) {
	open := l.opener()
	libs := make([]Library, 0, len(paths))
	for i, p := range paths {
		lib, err := open(p)
		if err != nil {
			lerr.add(Attempt{Tier: tier, Module: descs[i].Name, Path: p, Err: err})
			closeAll(libs)
			return nil, false
		}
		libs = append(libs, lib)
	}
	return libs, true
}

// closeAll closes libs in reverse open order
func closeAll(libs []Library) error {
	var err error
	for i := len(libs) - 1; i >= 0; i-- {
		err = multierr.Append(err, libs[i].Close())
	}
	return err
}

func names(descs []Descriptor) []string {
	out := make([]string, len(descs))
	for i, d := range descs {
		out[i] = d.Name
	}
	return out
}
