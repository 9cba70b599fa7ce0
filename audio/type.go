package audio

import "github.com/lixenwraith/fmodapi/vmath"

// Handle is an opaque native object reference (system, bank, event description or instance)
// Zero is never a valid handle
type Handle uintptr

// PlaybackState mirrors the native instance playback state
type PlaybackState int32

const (
	PlaybackPlaying PlaybackState = iota
	PlaybackSustaining
	PlaybackStopped
	PlaybackStarting
	PlaybackStopping
)

// Terminal reports whether the instance has finished or is finishing
func (p PlaybackState) Terminal() bool {
	return p == PlaybackStopped || p == PlaybackStopping
}

func (p PlaybackState) String() string {
	switch p {
	case PlaybackPlaying:
		return "playing"
	case PlaybackSustaining:
		return "sustaining"
	case PlaybackStopped:
		return "stopped"
	case PlaybackStarting:
		return "starting"
	case PlaybackStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// OutputType selects the native output backend
type OutputType int32

const (
	OutputAutoDetect OutputType = 0
	OutputNoSound    OutputType = 2
	OutputWASAPI     OutputType = 6
	OutputASIO       OutputType = 7
	OutputPulseAudio OutputType = 8
	OutputALSA       OutputType = 9
	OutputCoreAudio  OutputType = 10
)

// ParseOutput maps a config name to an OutputType; unknown names map to auto-detect
func ParseOutput(name string) (OutputType, bool) {
	switch name {
	case "", "auto":
		return OutputAutoDetect, true
	case "nosound":
		return OutputNoSound, true
	case "wasapi":
		return OutputWASAPI, true
	case "asio":
		return OutputASIO, true
	case "pulseaudio", "pulse":
		return OutputPulseAudio, true
	case "alsa":
		return OutputALSA, true
	case "coreaudio":
		return OutputCoreAudio, true
	}
	return OutputAutoDetect, false
}

// Attributes3D is the spatial state of an emitter or listener
type Attributes3D struct {
	Position vmath.Vec3F
	Velocity vmath.Vec3F
	Forward  vmath.Vec3F
	Up       vmath.Vec3F
}

// emitterAttributes builds the fixed-basis attributes used for positional playback
func emitterAttributes(pos, vel vmath.Vec3F) Attributes3D {
	return Attributes3D{
		Position: pos,
		Velocity: vel,
		Forward:  vmath.Forward,
		Up:       vmath.Up,
	}
}
