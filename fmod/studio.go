package fmod

import (
	"fmt"

	"github.com/ebitengine/purego"
	"github.com/lixenwraith/fmodapi/audio"
	"github.com/lixenwraith/fmodapi/nativelib"
)

// DefaultHeaderVersion is the FMOD_VERSION the bindings were written against (2.02.22)
const DefaultHeaderVersion uint32 = 0x00020222

// Flags and modes passed through the C API
const (
	initNormal        uint32 = 0x00000000
	initMixFromUpdate uint32 = 0x00000002
	studioInitNormal  uint32 = 0x00000000
	loadBankNormal    uint32 = 0x00000000
	stopAllowFadeout  int32  = 0
	stopImmediate     int32  = 1
	masterBusPath            = "bus:/"
)

// vector is FMOD_VECTOR
type vector struct {
	X, Y, Z float32
}

// attributes3D is FMOD_3D_ATTRIBUTES
type attributes3D struct {
	Position vector
	Velocity vector
	Forward  vector
	Up       vector
}

func toAttributes(a audio.Attributes3D) attributes3D {
	conv := func(x, y, z float64) vector { return vector{float32(x), float32(y), float32(z)} }
	return attributes3D{
		Position: conv(a.Position.X, a.Position.Y, a.Position.Z),
		Velocity: conv(a.Velocity.X, a.Velocity.Y, a.Velocity.Z),
		Forward:  conv(a.Forward.X, a.Forward.Y, a.Forward.Z),
		Up:       conv(a.Up.X, a.Up.Y, a.Up.Z),
	}
}

// Studio is the runtime-bound FMOD Studio API
// Function fields are filled by purego from the loaded libraries
type Studio struct {
	headerVersion uint32

	// Studio system
	systemCreate               func(system *uintptr, headerVersion uint32) int32
	systemGetCoreSystem        func(system uintptr, core *uintptr) int32
	systemInitialize           func(system uintptr, maxChannels int32, studioFlags, flags uint32, extra uintptr) int32
	systemRelease              func(system uintptr) int32
	systemUpdate               func(system uintptr) int32
	systemLoadBankFile         func(system uintptr, filename string, flags uint32, bank *uintptr) int32
	systemGetEvent             func(system uintptr, path string, description *uintptr) int32
	systemGetBus               func(system uintptr, path string, bus *uintptr) int32
	systemSetNumListeners      func(system uintptr, listeners int32) int32
	systemSetListenerAttribute func(system uintptr, listener int32, attrs *attributes3D, attenuation uintptr) int32

	// Banks, events, buses
	bankUnload              func(bank uintptr) int32
	descriptionCreate       func(description uintptr, instance *uintptr) int32
	instanceStart           func(instance uintptr) int32
	instanceStop            func(instance uintptr, mode int32) int32
	instanceRelease         func(instance uintptr) int32
	instanceSet3DAttributes func(instance uintptr, attrs *attributes3D) int32
	instanceSetVolume       func(instance uintptr, volume float32) int32
	instanceSetPitch        func(instance uintptr, pitch float32) int32
	instanceSetPaused       func(instance uintptr, paused int32) int32
	instanceGetState        func(instance uintptr, state *int32) int32
	busSetVolume            func(bus uintptr, volume float32) int32

	// Core system
	coreSetOutput     func(core uintptr, output int32) int32
	coreSet3DSettings func(core uintptr, dopplerScale, distanceFactor, rolloffScale float32) int32
}

// symbol binds one C function to a Go function field
type symbol struct {
	module string
	name   string
	fptr   any
}

func (s *Studio) symbols() []symbol {
	return []symbol{
		{ModuleStudio, "FMOD_Studio_System_Create", &s.systemCreate},
		{ModuleStudio, "FMOD_Studio_System_GetCoreSystem", &s.systemGetCoreSystem},
		{ModuleStudio, "FMOD_Studio_System_Initialize", &s.systemInitialize},
		{ModuleStudio, "FMOD_Studio_System_Release", &s.systemRelease},
		{ModuleStudio, "FMOD_Studio_System_Update", &s.systemUpdate},
		{ModuleStudio, "FMOD_Studio_System_LoadBankFile", &s.systemLoadBankFile},
		{ModuleStudio, "FMOD_Studio_System_GetEvent", &s.systemGetEvent},
		{ModuleStudio, "FMOD_Studio_System_GetBus", &s.systemGetBus},
		{ModuleStudio, "FMOD_Studio_System_SetNumListeners", &s.systemSetNumListeners},
		{ModuleStudio, "FMOD_Studio_System_SetListenerAttributes", &s.systemSetListenerAttribute},
		{ModuleStudio, "FMOD_Studio_Bank_Unload", &s.bankUnload},
		{ModuleStudio, "FMOD_Studio_EventDescription_CreateInstance", &s.descriptionCreate},
		{ModuleStudio, "FMOD_Studio_EventInstance_Start", &s.instanceStart},
		{ModuleStudio, "FMOD_Studio_EventInstance_Stop", &s.instanceStop},
		{ModuleStudio, "FMOD_Studio_EventInstance_Release", &s.instanceRelease},
		{ModuleStudio, "FMOD_Studio_EventInstance_Set3DAttributes", &s.instanceSet3DAttributes},
		{ModuleStudio, "FMOD_Studio_EventInstance_SetVolume", &s.instanceSetVolume},
		{ModuleStudio, "FMOD_Studio_EventInstance_SetPitch", &s.instanceSetPitch},
		{ModuleStudio, "FMOD_Studio_EventInstance_SetPaused", &s.instanceSetPaused},
		{ModuleStudio, "FMOD_Studio_EventInstance_GetPlaybackState", &s.instanceGetState},
		{ModuleStudio, "FMOD_Studio_Bus_SetVolume", &s.busSetVolume},
		{ModuleCore, "FMOD_System_SetOutput", &s.coreSetOutput},
		{ModuleCore, "FMOD_System_Set3DSettings", &s.coreSet3DSettings},
	}
}

// SymbolNames returns the C functions the bindings require, by module
func SymbolNames() map[string][]string {
	out := make(map[string][]string)
	for _, sym := range (&Studio{}).symbols() {
		out[sym.module] = append(out[sym.module], sym.name)
	}
	return out
}

// Bind resolves every required symbol from set
func Bind(set *nativelib.Set, headerVersion uint32) (studio *Studio, err error) {
	defer func() {
		if r := recover(); r != nil {
			studio, err = nil, fmt.Errorf("bind fmod symbols: %v", r)
		}
	}()

	if headerVersion == 0 {
		headerVersion = DefaultHeaderVersion
	}
	s := &Studio{headerVersion: headerVersion}
	for _, sym := range s.symbols() {
		lib, ok := set.Lookup(sym.module)
		if !ok {
			return nil, fmt.Errorf("module %s not loaded", sym.module)
		}
		addr, err := lib.Symbol(sym.name)
		if err != nil {
			return nil, err
		}
		purego.RegisterFunc(sym.fptr, addr)
	}
	return s, nil
}

// CreateSystem implements audio.Native
func (s *Studio) CreateSystem() (audio.Handle, error) {
	var system uintptr
	if err := check(s.systemCreate(&system, s.headerVersion)); err != nil {
		return 0, err
	}
	return audio.Handle(system), nil
}

func (s *Studio) core(system audio.Handle) (uintptr, error) {
	var core uintptr
	if err := check(s.systemGetCoreSystem(uintptr(system), &core)); err != nil {
		return 0, err
	}
	return core, nil
}

// SetOutput implements audio.Native
func (s *Studio) SetOutput(system audio.Handle, output audio.OutputType) error {
	core, err := s.core(system)
	if err != nil {
		return err
	}
	return check(s.coreSetOutput(core, int32(output)))
}

// Initialize implements audio.Native
func (s *Studio) Initialize(system audio.Handle, maxChannels int) error {
	return check(s.systemInitialize(uintptr(system), int32(maxChannels),
		studioInitNormal, initNormal|initMixFromUpdate, 0))
}

// Set3DSettings implements audio.Native
func (s *Studio) Set3DSettings(system audio.Handle, dopplerScale, distanceFactor, rolloffScale float32) error {
	core, err := s.core(system)
	if err != nil {
		return err
	}
	return check(s.coreSet3DSettings(core, dopplerScale, distanceFactor, rolloffScale))
}

// SetListenerCount implements audio.Native
func (s *Studio) SetListenerCount(system audio.Handle, listeners int) error {
	return check(s.systemSetNumListeners(uintptr(system), int32(listeners)))
}

// Update implements audio.Native
func (s *Studio) Update(system audio.Handle) error {
	return check(s.systemUpdate(uintptr(system)))
}

// ReleaseSystem implements audio.Native
func (s *Studio) ReleaseSystem(system audio.Handle) error {
	return check(s.systemRelease(uintptr(system)))
}

// LoadBankFile implements audio.Native
func (s *Studio) LoadBankFile(system audio.Handle, path string) (audio.Handle, error) {
	var bank uintptr
	if err := check(s.systemLoadBankFile(uintptr(system), path, loadBankNormal, &bank)); err != nil {
		return 0, err
	}
	return audio.Handle(bank), nil
}

// UnloadBank implements audio.Native
func (s *Studio) UnloadBank(bank audio.Handle) error {
	return check(s.bankUnload(uintptr(bank)))
}

// GetEvent implements audio.Native
func (s *Studio) GetEvent(system audio.Handle, path string) (audio.Handle, error) {
	var desc uintptr
	if err := check(s.systemGetEvent(uintptr(system), path, &desc)); err != nil {
		return 0, err
	}
	return audio.Handle(desc), nil
}

// CreateInstance implements audio.Native
func (s *Studio) CreateInstance(description audio.Handle) (audio.Handle, error) {
	var inst uintptr
	if err := check(s.descriptionCreate(uintptr(description), &inst)); err != nil {
		return 0, err
	}
	return audio.Handle(inst), nil
}

// Start implements audio.Native
func (s *Studio) Start(instance audio.Handle) error {
	return check(s.instanceStart(uintptr(instance)))
}

// Stop implements audio.Native
func (s *Studio) Stop(instance audio.Handle, immediate bool) error {
	mode := stopAllowFadeout
	if immediate {
		mode = stopImmediate
	}
	return check(s.instanceStop(uintptr(instance), mode))
}

// ReleaseInstance implements audio.Native
func (s *Studio) ReleaseInstance(instance audio.Handle) error {
	return check(s.instanceRelease(uintptr(instance)))
}

// Set3DAttributes implements audio.Native
func (s *Studio) Set3DAttributes(instance audio.Handle, attrs audio.Attributes3D) error {
	a := toAttributes(attrs)
	return check(s.instanceSet3DAttributes(uintptr(instance), &a))
}

// SetVolume implements audio.Native
func (s *Studio) SetVolume(instance audio.Handle, volume float32) error {
	return check(s.instanceSetVolume(uintptr(instance), volume))
}

// SetPitch implements audio.Native
func (s *Studio) SetPitch(instance audio.Handle, pitch float32) error {
	return check(s.instanceSetPitch(uintptr(instance), pitch))
}

// SetPaused implements audio.Native
func (s *Studio) SetPaused(instance audio.Handle, paused bool) error {
	var p int32
	if paused {
		p = 1
	}
	return check(s.instanceSetPaused(uintptr(instance), p))
}

// PlaybackState implements audio.Native
func (s *Studio) PlaybackState(instance audio.Handle) (audio.PlaybackState, error) {
	var state int32
	if err := check(s.instanceGetState(uintptr(instance), &state)); err != nil {
		return audio.PlaybackStopped, err
	}
	return audio.PlaybackState(state), nil
}

// SetListenerAttributes implements audio.Native
func (s *Studio) SetListenerAttributes(system audio.Handle, listener int, attrs audio.Attributes3D) error {
	a := toAttributes(attrs)
	return check(s.systemSetListenerAttribute(uintptr(system), int32(listener), &a, 0))
}

// SetMasterVolume implements audio.Native
func (s *Studio) SetMasterVolume(system audio.Handle, volume float32) error {
	var bus uintptr
	if err := check(s.systemGetBus(uintptr(system), masterBusPath, &bus)); err != nil {
		return err
	}
	return check(s.busSetVolume(bus, volume))
}

var _ audio.Native = (*Studio)(nil)
