package fmod

import (
	"path"
	"runtime"

	"github.com/lixenwraith/fmodapi/nativelib"
)

// Logical module names; core must load before studio
const (
	ModuleCore   = "fmod"
	ModuleStudio = "fmodstudio"
)

// BundleRoot is the directory inside a bundle FS holding per-platform library copies
const BundleRoot = "native"

// Descriptors returns the core and studio descriptors for goos, core first
func Descriptors(goos, goarch string) []nativelib.Descriptor {
	var core, studio []string
	switch goos {
	case "windows":
		core = []string{"fmod.dll"}
		studio = []string{"fmodstudio.dll"}
	case "darwin":
		core = []string{"libfmod.dylib"}
		studio = []string{"libfmodstudio.dylib"}
	default:
		core = []string{"libfmod.so.13", "libfmod.so"}
		studio = []string{"libfmodstudio.so.13", "libfmodstudio.so"}
	}

	dir := path.Join(BundleRoot, goos+"-"+goarch)
	return []nativelib.Descriptor{
		{Name: ModuleCore, Files: core, Bundled: path.Join(dir, core[0])},
		{Name: ModuleStudio, Files: studio, Bundled: path.Join(dir, studio[0])},
	}
}

// HostDescriptors returns Descriptors for the running platform
func HostDescriptors() []nativelib.Descriptor {
	return Descriptors(runtime.GOOS, runtime.GOARCH)
}

// DefaultInstallDirs returns the known SDK install and side-by-side locations for goos
func DefaultInstallDirs(goos string) []string {
	switch goos {
	case "windows":
		return []string{
			`C:\Program Files (x86)\FMOD SoundSystem\FMOD Studio API Windows\api\core\lib\x64\`,
			`C:\Program Files\FMOD SoundSystem\FMOD Studio API Windows\api\core\lib\x64\`,
			`C:\Program Files (x86)\FMOD\api\core\lib\x64\`,
			`C:\Program Files\FMOD\api\core\lib\x64\`,
			`.\fmod\`,
			`.\libraries\`,
		}
	case "darwin":
		return []string{
			"/Applications/FMOD Programmers API/api",
			"./fmod",
			"./libraries",
		}
	default:
		return []string{
			"/opt/fmod/api",
			"/usr/local/lib/fmod",
			"./fmod",
			"./libraries",
		}
	}
}
