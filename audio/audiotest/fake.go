// Package audiotest provides an in-memory audio.Native for tests
package audiotest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/lixenwraith/fmodapi/audio"
)

// Code is a native result error carrying a numeric code
type Code int

func (c Code) Error() string { return fmt.Sprintf("native result %d", int(c)) }

// Code implements audio.Coder
func (c Code) Code() int { return int(c) }

// Native result codes used by the fake
const (
	CodeFileNotFound   Code = 18
	CodeInvalidHandle  Code = 30
	CodeOutputInit     Code = 51
	CodeEventNotFound  Code = 74
	CodeHeaderMismatch Code = 20
)

// Instance is the fake state of one event instance
type Instance struct {
	Event    string
	State    audio.PlaybackState
	Paused   bool
	Volume   float32
	Pitch    float32
	Attrs    *audio.Attributes3D
	Released bool
	Stopped  bool
}

// Bank is a bank file loaded by the fake
type Bank struct {
	File     string
	Data     []byte
	Unloaded bool
}

// Native is a thread-safe in-memory audio.Native
// Zero handles are never issued; unknown handles yield CodeInvalidHandle.
type Native struct {
	mu sync.Mutex

	next      audio.Handle
	systems   map[audio.Handle]bool // handle -> initialized
	events    map[string]audio.Handle
	instances map[audio.Handle]*Instance
	banks     map[audio.Handle]*Bank

	// Failure injection
	CreateErr     error
	InitErr       error
	OutputErr     error
	SettingsErr   error
	UpdateErr     error
	BankErr       map[string]error // keyed by substring of the bank file name
	StartErr      map[string]error // keyed by event path
	AttributesErr error

	// Observations
	Output         audio.OutputType
	MaxChannels    int
	Listener       *audio.Attributes3D
	ListenerPushes int
	MasterVolume   float32
	Released       int
	Updates        int
	calls          map[string]int
}

// New creates a fake with the given event paths available
func New(events ...string) *Native {
	n := &Native{
		systems:   make(map[audio.Handle]bool),
		events:    make(map[string]audio.Handle),
		instances: make(map[audio.Handle]*Instance),
		banks:     make(map[audio.Handle]*Bank),
		BankErr:   make(map[string]error),
		StartErr:  make(map[string]error),
		calls:     make(map[string]int),
	}
	for _, e := range events {
		n.AddEvent(e)
	}
	return n
}

func (n *Native) handle() audio.Handle {
	n.next++
	return n.next
}

func (n *Native) call(name string) {
	n.calls[name]++
}

// Calls returns how many times a method was called
func (n *Native) Calls(name string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[name]
}

// AddEvent makes an event path resolvable
func (n *Native) AddEvent(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events[path] = n.handle()
}

// CreateSystem implements audio.Native
func (n *Native) CreateSystem() (audio.Handle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.call("CreateSystem")
	if n.CreateErr != nil {
		return 0, n.CreateErr
	}
	h := n.handle()
	n.systems[h] = false
	return h, nil
}

// SetOutput implements audio.Native
func (n *Native) SetOutput(system audio.Handle, output audio.OutputType) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.call("SetOutput")
	if _, ok := n.systems[system]; !ok {
		return CodeInvalidHandle
	}
	if n.OutputErr != nil {
		return n.OutputErr
	}
	n.Output = output
	return nil
}

// Initialize implements audio.Native
func (n *Native) Initialize(system audio.Handle, maxChannels int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.call("Initialize")
	if _, ok := n.systems[system]; !ok {
		return CodeInvalidHandle
	}
	if n.InitErr != nil {
		return n.InitErr
	}
	n.systems[system] = true
	n.MaxChannels = maxChannels
	return nil
}

// Set3DSettings implements audio.Native
func (n *Native) Set3DSettings(system audio.Handle, _, _, _ float32) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.call("Set3DSettings")
	return n.SettingsErr
}

// SetListenerCount implements audio.Native
func (n *Native) SetListenerCount(system audio.Handle, _ int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.call("SetListenerCount")
	return nil
}

// Update implements audio.Native
func (n *Native) Update(system audio.Handle) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.call("Update")
	if !n.systems[system] {
		return CodeInvalidHandle
	}
	n.Updates++
	return n.UpdateErr
}

// ReleaseSystem implements audio.Native
// Releasing a system invalidates every instance created under it
func (n *Native) ReleaseSystem(system audio.Handle) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.call("ReleaseSystem")
	if _, ok := n.systems[system]; !ok {
		return CodeInvalidHandle
	}
	delete(n.systems, system)
	for _, inst := range n.instances {
		inst.Released = true
	}
	n.Released++
	return nil
}

// LoadBankFile implements audio.Native; the file must exist on disk
func (n *Native) LoadBankFile(system audio.Handle, path string) (audio.Handle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.call("LoadBankFile")
	if !n.systems[system] {
		return 0, CodeInvalidHandle
	}
	for key, err := range n.BankErr {
		if strings.Contains(filepath.Base(path), key) {
			return 0, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, CodeFileNotFound
	}
	h := n.handle()
	n.banks[h] = &Bank{File: path, Data: data}
	return h, nil
}

// UnloadBank implements audio.Native
func (n *Native) UnloadBank(bank audio.Handle) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.call("UnloadBank")
	b, ok := n.banks[bank]
	if !ok {
		return CodeInvalidHandle
	}
	b.Unloaded = true
	return nil
}

// GetEvent implements audio.Native
func (n *Native) GetEvent(system audio.Handle, path string) (audio.Handle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.call("GetEvent")
	if !n.systems[system] {
		return 0, CodeInvalidHandle
	}
	h, ok := n.events[path]
	if !ok {
		return 0, CodeEventNotFound
	}
	return h, nil
}

// CreateInstance implements audio.Native
func (n *Native) CreateInstance(description audio.Handle) (audio.Handle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.call("CreateInstance")
	for path, h := range n.events {
		if h == description {
			inst := n.handle()
			n.instances[inst] = &Instance{Event: path, State: audio.PlaybackStopped, Volume: 1, Pitch: 1}
			return inst, nil
		}
	}
	return 0, CodeInvalidHandle
}

func (n *Native) live(h audio.Handle) (*Instance, error) {
	inst, ok := n.instances[h]
	if !ok || inst.Released {
		return nil, CodeInvalidHandle
	}
	return inst, nil
}

// Start implements audio.Native
func (n *Native) Start(instance audio.Handle) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.call("Start")
	inst, err := n.live(instance)
	if err != nil {
		return err
	}
	if serr := n.StartErr[inst.Event]; serr != nil {
		return serr
	}
	inst.State = audio.PlaybackPlaying
	return nil
}

// Stop implements audio.Native
func (n *Native) Stop(instance audio.Handle, immediate bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.call("Stop")
	inst, err := n.live(instance)
	if err != nil {
		return err
	}
	inst.Stopped = true
	if immediate {
		inst.State = audio.PlaybackStopped
	} else {
		inst.State = audio.PlaybackStopping
	}
	return nil
}

// ReleaseInstance implements audio.Native
func (n *Native) ReleaseInstance(instance audio.Handle) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.call("ReleaseInstance")
	inst, err := n.live(instance)
	if err != nil {
		return err
	}
	inst.Released = true
	return nil
}

// Set3DAttributes implements audio.Native
func (n *Native) Set3DAttributes(instance audio.Handle, attrs audio.Attributes3D) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.call("Set3DAttributes")
	inst, err := n.live(instance)
	if err != nil {
		return err
	}
	if n.AttributesErr != nil {
		return n.AttributesErr
	}
	inst.Attrs = &attrs
	return nil
}

// SetVolume implements audio.Native
func (n *Native) SetVolume(instance audio.Handle, volume float32) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.call("SetVolume")
	inst, err := n.live(instance)
	if err != nil {
		return err
	}
	inst.Volume = volume
	return nil
}

// SetPitch implements audio.Native
func (n *Native) SetPitch(instance audio.Handle, pitch float32) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.call("SetPitch")
	inst, err := n.live(instance)
	if err != nil {
		return err
	}
	inst.Pitch = pitch
	return nil
}

// SetPaused implements audio.Native
func (n *Native) SetPaused(instance audio.Handle, paused bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.call("SetPaused")
	inst, err := n.live(instance)
	if err != nil {
		return err
	}
	inst.Paused = paused
	return nil
}

// PlaybackState implements audio.Native
func (n *Native) PlaybackState(instance audio.Handle) (audio.PlaybackState, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.call("PlaybackState")
	inst, err := n.live(instance)
	if err != nil {
		return audio.PlaybackStopped, err
	}
	return inst.State, nil
}

// SetListenerAttributes implements audio.Native
func (n *Native) SetListenerAttributes(system audio.Handle, _ int, attrs audio.Attributes3D) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.call("SetListenerAttributes")
	if !n.systems[system] {
		return CodeInvalidHandle
	}
	n.Listener = &attrs
	n.ListenerPushes++
	return nil
}

// SetMasterVolume implements audio.Native
func (n *Native) SetMasterVolume(system audio.Handle, volume float32) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.call("SetMasterVolume")
	if !n.systems[system] {
		return CodeInvalidHandle
	}
	n.MasterVolume = volume
	return nil
}

// Finish marks every playing instance of event as stopped, as if playback ended
func (n *Native) Finish(event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, inst := range n.instances {
		if inst.Event == event && !inst.Released && inst.State == audio.PlaybackPlaying {
			inst.State = audio.PlaybackStopped
			count++
		}
	}
	return count
}

// Instances returns a copy of every instance ever created
func (n *Native) Instances() []Instance {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Instance, 0, len(n.instances))
	for _, inst := range n.instances {
		out = append(out, *inst)
	}
	return out
}

// Live returns the number of instances not yet released
func (n *Native) Live() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, inst := range n.instances {
		if !inst.Released {
			count++
		}
	}
	return count
}

// Banks returns every bank ever loaded, including unloaded ones
func (n *Native) Banks() []Bank {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Bank, 0, len(n.banks))
	for _, b := range n.banks {
		out = append(out, *b)
	}
	return out
}

// Systems returns the number of live systems
func (n *Native) Systems() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.systems)
}

// Backend returns an audio.Backend serving n, counting loads in loads
// A non-nil err makes every Load fail.
type Backend struct {
	Native *Native
	Err    error
	loads  atomic.Int32
	closes atomic.Int32
}

// NewBackend creates a backend around n
func NewBackend(n *Native) *Backend {
	return &Backend{Native: n}
}

// Load implements audio.Backend
func (b *Backend) Load(audio.Config) (audio.Native, io.Closer, error) {
	b.loads.Add(1)
	if b.Err != nil {
		return nil, nil, b.Err
	}
	return b.Native, closerFunc(func() error {
		b.closes.Add(1)
		return nil
	}), nil
}

// Loads returns the number of Load calls
func (b *Backend) Loads() int {
	return int(b.loads.Load())
}

// Closes returns the number of closer calls
func (b *Backend) Closes() int {
	return int(b.closes.Load())
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
