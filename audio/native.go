package audio

import "io"

// Native is the vendor SDK boundary
// Every method is a black-box call; a non-nil error carries the native result code when available.
// Implementations are not assumed thread-safe: the engine calls them from the host tick thread.
type Native interface {
	// System lifecycle
	CreateSystem() (Handle, error)
	SetOutput(system Handle, output OutputType) error
	Initialize(system Handle, maxChannels int) error
	Set3DSettings(system Handle, dopplerScale, distanceFactor, rolloffScale float32) error
	SetListenerCount(system Handle, listeners int) error
	Update(system Handle) error
	ReleaseSystem(system Handle) error

	// Banks and events
	LoadBankFile(system Handle, path string) (Handle, error)
	UnloadBank(bank Handle) error
	GetEvent(system Handle, path string) (Handle, error)

	// Instances
	CreateInstance(description Handle) (Handle, error)
	Start(instance Handle) error
	Stop(instance Handle, immediate bool) error
	ReleaseInstance(instance Handle) error
	Set3DAttributes(instance Handle, attrs Attributes3D) error
	SetVolume(instance Handle, volume float32) error
	SetPitch(instance Handle, pitch float32) error
	SetPaused(instance Handle, paused bool) error
	PlaybackState(instance Handle) (PlaybackState, error)

	// Listener and mix
	SetListenerAttributes(system Handle, listener int, attrs Attributes3D) error
	SetMasterVolume(system Handle, volume float32) error
}

// Backend resolves the native modules and binds the SDK
// Load runs blocking file I/O; the engine calls it at most once per successful outcome.
// The returned Closer releases the native libraries and their extracted files.
type Backend interface {
	Load(cfg Config) (Native, io.Closer, error)
}

// BackendFunc adapts a function to Backend
type BackendFunc func(cfg Config) (Native, io.Closer, error)

// Load implements Backend
func (f BackendFunc) Load(cfg Config) (Native, io.Closer, error) {
	return f(cfg)
}
