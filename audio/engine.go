package audio

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/fmodapi/status"
	"go.uber.org/zap"
)

// Status texts reported by the engine
const (
	textNotInitialized = "Not initialized"
	textInitializing   = "Initializing"
	textReady          = "Successfully initialized"
	textRoutingOff     = "Routing disabled"
	textSkipped        = "Skipped (no audio output)"
	textLibraryFailed  = "Library load failed"
	textCreateFailed   = "Create failed"
	textInitFailed     = "Initialize failed"
	textShutdown       = "Shutdown"
)

// binding is the loaded native SDK and the handle releasing its libraries
type binding struct {
	native Native
	closer io.Closer
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithRegistry publishes engine metrics into reg
func WithRegistry(reg *status.Registry) EngineOption {
	return func(e *Engine) { e.registry = reg }
}

// WithOutputProbe replaces the playback device probe used by the auto role
func WithOutputProbe(probe func() (bool, error)) EngineOption {
	return func(e *Engine) { e.probe = probe }
}

// WithClock replaces the time source used for instance ids
func WithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) { e.clock = clock }
}

// WithListenerOptions configures the engine's listener tracker
func WithListenerOptions(opts ...ListenerOption) EngineOption {
	return func(e *Engine) { e.listenerOpts = append(e.listenerOpts, opts...) }
}

// Engine owns the single native audio system and its lifecycle
// Lifecycle transitions are serialized by mu; capability checks read atomics only.
// Native calls run on the caller's goroutine; the engine starts none of its own.
type Engine struct {
	mu      sync.Mutex // Serializes Init/Shutdown/SetEnabled/Close
	cfg     Config     // Guarded by mu
	backend Backend
	lastErr error // Guarded by mu, sticky failure cause

	binding    atomic.Pointer[binding]
	system     atomic.Uintptr
	state      atomic.Int32
	routing    atomic.Bool
	failed     atomic.Bool // Sticky: implicit init attempts return lastErr
	status     atomic.Pointer[EngineStatus]
	generation atomic.Uint64 // Incremented on every successful init

	registry     *status.Registry
	metrics      *metrics
	probe        func() (bool, error)
	clock        func() time.Time
	listenerOpts []ListenerOption

	banks    *BankRegistry
	pool     *InstancePool
	listener *ListenerTracker
	notifier *StatusNotifier
}

// NewEngine creates an engine in StateNotInitialized; no native work happens until Init
func NewEngine(cfg Config, backend Backend, opts ...EngineOption) *Engine {
	cfg = cfg.Normalize()
	e := &Engine{
		cfg:     cfg,
		backend: backend,
		probe:   ProbeOutput,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.metrics = newMetrics(e.registry)
	e.notifier = NewStatusNotifier()
	e.banks = newBankRegistry(e, e.metrics)
	e.pool = newInstancePool(e, e.metrics, cfg.MaxInstances, e.clock)
	e.listener = NewListenerTracker(e, e.listenerOpts...)

	e.routing.Store(cfg.Enabled)
	e.metrics.routing.Store(cfg.Enabled)
	SetDebug(cfg.DebugLogging)
	e.publish(StateNotInitialized, textNotInitialized, BackendPending, CodeOK)
	return e
}

// Init performs an explicit initialization attempt
// Clears the sticky failure flag; no-op when already ready
func (e *Engine) Init() error {
	e.mu.Lock()
	e.failed.Store(false)
	changed, err := e.initLocked()
	e.mu.Unlock()

	if changed {
		e.notifier.Notify()
	}
	return err
}

// EnsureInit initializes opportunistically
// After a failure it returns the recorded error without retrying until Init is called
func (e *Engine) EnsureInit() error {
	if e.State() == StateReady {
		return nil
	}

	e.mu.Lock()
	if e.failed.Load() {
		err := e.lastErr
		e.mu.Unlock()
		return err
	}
	changed, err := e.initLocked()
	e.mu.Unlock()

	if changed {
		e.notifier.Notify()
	}
	return err
}

// initLocked runs one initialization attempt; caller holds mu
// Returns whether the status changed
func (e *Engine) initLocked() (changed bool, err error) {
	switch e.State() {
	case StateReady:
		return false, nil
	case StateSkipped:
		return false, e.lastErr
	}

	var (
		native Native
		system Handle
	)
	defer func() {
		if r := recover(); r != nil {
			Logger().Error("panic during audio init", zap.Any("panic", r))
			if system != 0 {
				e.system.Store(0)
				e.banks.MarkUnloaded()
				e.releaseSystem(native, system)
			}
			err = e.fail(KindEngineInit, "Exception: "+fmt.Sprint(r), fmt.Errorf("panic: %v", r))
			changed = true
		}
	}()

	e.metrics.initAttempts.Add(1)
	e.publish(StateInitializing, textInitializing, BackendPending, CodeOK)

	audible, perr := e.audible()
	if !audible {
		serr := newError(KindSkipped, "init", perr, "role "+e.cfg.Role+" has no audio output")
		e.lastErr = serr
		e.publish(StateSkipped, textSkipped, BackendNone, CodeOK)
		Logger().Info("audio initialization skipped", zap.String("role", e.cfg.Role), zap.Error(perr))
		return true, serr
	}

	native, err = e.bind()
	if err != nil {
		return true, e.fail(KindLibraryLoad, textLibraryFailed, err)
	}

	created, err := native.CreateSystem()
	if err != nil || created == 0 {
		if err == nil {
			err = errors.New("null system handle")
		}
		return true, e.fail(KindEngineCreate, textCreateFailed, err)
	}
	system = created

	if out, known := ParseOutput(e.cfg.Output); !known {
		Logger().Warn("unknown output type, using auto-detect", zap.String("output", e.cfg.Output))
	} else if out != OutputAutoDetect {
		if oerr := native.SetOutput(system, out); oerr != nil {
			Logger().Warn("output preference not applied, using default",
				zap.String("output", e.cfg.Output), zap.Error(oerr))
		}
	}

	if err := native.Initialize(system, e.cfg.MaxChannels); err != nil {
		e.releaseSystem(native, system)
		system = 0
		return true, e.fail(KindEngineInit, textInitFailed, err)
	}

	if err := native.Set3DSettings(system,
		float32(e.cfg.DopplerScale), float32(e.cfg.DistanceFactor), float32(e.cfg.RolloffScale)); err != nil {
		Logger().Warn("3D settings not applied", zap.Error(newError(KindAttributeSet, "init", err, "3d settings")))
	}
	if err := native.SetListenerCount(system, 1); err != nil {
		Logger().Warn("listener count not applied", zap.Error(newError(KindAttributeSet, "init", err, "listeners")))
	}

	e.lastErr = nil
	e.generation.Add(1)
	e.system.Store(uintptr(system))
	e.listener.Reset()
	e.publishReady()

	Logger().Info("audio engine initialized",
		zap.Int("max_channels", e.cfg.MaxChannels),
		zap.Int("max_instances", e.cfg.MaxInstances),
		zap.Bool("routing", e.routing.Load()),
		zap.Uint64("generation", e.generation.Load()))

	e.banks.LoadAll()
	return true, nil
}

// fail records a failed attempt and sets the sticky flag; caller holds mu
func (e *Engine) fail(kind Kind, text string, cause error) error {
	err := newError(kind, "init", cause, text)
	e.lastErr = err
	e.failed.Store(true)
	e.metrics.initFailures.Add(1)
	e.metrics.lastError.Store(err.Error())
	e.publish(StateFailed, text, BackendNone, ErrorCode(err))
	Logger().Error("audio initialization failed", zap.String("kind", string(kind)), zap.Error(cause))
	return err
}

// audible reports whether the configured role produces audio
func (e *Engine) audible() (bool, error) {
	switch e.cfg.Role {
	case RoleServer:
		return false, nil
	case RoleClient:
		return true, nil
	}
	if e.probe == nil {
		return true, nil
	}
	return e.probe()
}

// bind loads the native SDK once; later calls reuse the binding
func (e *Engine) bind() (Native, error) {
	if b := e.binding.Load(); b != nil {
		return b.native, nil
	}
	if e.backend == nil {
		return nil, errors.New("no native backend configured")
	}

	native, closer, err := e.backend.Load(e.cfg)
	if err != nil {
		return nil, err
	}
	if native == nil {
		return nil, errors.New("backend returned no native binding")
	}
	if s, ok := closer.(fmt.Stringer); ok {
		e.metrics.libraryTier.Store(s.String())
	}
	e.binding.Store(&binding{native: native, closer: closer})
	return native, nil
}

// Shutdown stops every instance and releases the native system
// No-op unless ready
func (e *Engine) Shutdown() {
	e.mu.Lock()
	changed := e.shutdownLocked()
	e.mu.Unlock()

	if changed {
		e.notifier.Notify()
	}
}

// shutdownLocked tears the system down; caller holds mu
func (e *Engine) shutdownLocked() bool {
	if e.State() != StateReady {
		return false
	}
	b := e.binding.Load()
	system := Handle(e.system.Load())

	// Leaving READY first makes concurrent Play calls fail fast
	e.state.Store(int32(StateShutdown))
	e.metrics.ready.Store(false)

	stopped := e.pool.drain(b.native)
	e.banks.unloadAll(b.native)
	e.releaseSystem(b.native, system)
	e.system.Store(0)

	e.publish(StateShutdown, textShutdown, BackendNone, CodeOK)
	Logger().Info("audio engine shut down", zap.Int("stopped_instances", stopped))
	return true
}

func (e *Engine) releaseSystem(native Native, system Handle) {
	var err error
	func() {
		defer guard("release_system", &err)
		err = native.ReleaseSystem(system)
	}()
	if err != nil {
		Logger().Warn("system release failed", zap.Error(err))
	}
}

// Reinit shuts down and performs an explicit Init
func (e *Engine) Reinit() error {
	e.mu.Lock()
	shut := e.shutdownLocked()
	e.failed.Store(false)
	changed, err := e.initLocked()
	e.mu.Unlock()

	if shut || changed {
		e.notifier.Notify()
	}
	return err
}

// SetEnabled toggles routing
// Disabling keeps the engine warm. Enabling a ready engine loads pending banks;
// enabling any other state performs an explicit Init.
func (e *Engine) SetEnabled(enabled bool) error {
	e.mu.Lock()
	e.routing.Store(enabled)
	e.metrics.routing.Store(enabled)

	var err error
	if e.State() == StateReady {
		e.publishReady()
		if enabled {
			e.banks.LoadAll()
		}
	} else if enabled {
		e.failed.Store(false)
		_, err = e.initLocked()
	}
	e.mu.Unlock()

	Logger().Info("audio routing changed", zap.Bool("enabled", enabled))
	e.notifier.Notify()
	return err
}

// ApplyConfig applies a reloaded configuration
// Enabling or changing the library path counts as an explicit retry
func (e *Engine) ApplyConfig(cfg Config) error {
	cfg = cfg.Normalize()

	e.mu.Lock()
	prev := e.cfg
	e.cfg = cfg
	e.mu.Unlock()

	SetDebug(cfg.DebugLogging)
	e.pool.setCapacity(cfg.MaxInstances)

	if cfg.Enabled != e.routing.Load() {
		return e.SetEnabled(cfg.Enabled)
	}
	if !cfg.Enabled || e.State() == StateReady {
		return nil
	}
	if cfg.CustomLibraryPath != prev.CustomLibraryPath {
		return e.Init()
	}
	return e.EnsureInit()
}

// Update runs once per host tick: reclaims finished instances and advances the native system
func (e *Engine) Update() (err error) {
	const op = "update"
	defer guard(op, &err)

	native, system, ok := e.session()
	if !ok {
		return nil
	}
	e.pool.Cleanup()
	if err := native.Update(system); err != nil {
		debugLog("native update failed", zap.Error(err))
		return newError(KindUnavailable, op, err, "native update")
	}
	return nil
}

// UpdateListener pushes pose through the throttling tracker
func (e *Engine) UpdateListener(pose Pose) bool {
	return e.listener.Update(pose)
}

// SetListener pushes explicit listener attributes
func (e *Engine) SetListener(attrs Attributes3D) error {
	return e.listener.Set(attrs)
}

// Play starts an event instance; see InstancePool.Play
func (e *Engine) Play(req PlayRequest) (string, error) {
	return e.pool.Play(req)
}

// RegisterBank registers a bank source; see BankRegistry.Register
func (e *Engine) RegisterBank(src fs.FS, path string) bool {
	return e.banks.Register(src, path)
}

// StopAll stops and releases every active instance
func (e *Engine) StopAll() int {
	return e.pool.StopAll()
}

// PauseAll pauses every active instance
func (e *Engine) PauseAll() int {
	return e.pool.PauseAll()
}

// ResumeAll resumes every paused instance
func (e *Engine) ResumeAll() int {
	return e.pool.ResumeAll()
}

// SetMasterVolume sets the master bus volume (0.0-1.0)
func (e *Engine) SetMasterVolume(vol float32) (err error) {
	const op = "set_master_volume"
	defer guard(op, &err)

	native, system, ok := e.session()
	if !ok {
		return unavailable(op, "engine not ready")
	}
	vol = min(max(vol, 0), 1)
	if err := native.SetMasterVolume(system, vol); err != nil {
		return newError(KindAttributeSet, op, err, "bus:/")
	}
	return nil
}

// Close shuts down and releases native libraries and extracted files
func (e *Engine) Close() error {
	e.mu.Lock()
	changed := e.shutdownLocked()
	b := e.binding.Swap(nil)
	e.mu.Unlock()

	if changed {
		e.notifier.Notify()
	}

	var errs []error
	if err := e.banks.Close(); err != nil {
		errs = append(errs, err)
	}
	if b != nil && b.closer != nil {
		if err := b.closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// publish replaces the status snapshot; caller holds mu
func (e *Engine) publish(state State, text, backend string, code int) {
	e.status.Store(&EngineStatus{
		State:       state,
		Text:        text,
		Backend:     backend,
		ErrorCode:   code,
		Initialized: state == StateReady,
	})
	e.state.Store(int32(state))
	e.metrics.state.Store(state.String())
	e.metrics.ready.Store(state == StateReady)
	debugLog("audio status", zap.Stringer("state", state), zap.String("text", text))
}

// publishReady publishes READY with routing-dependent text
func (e *Engine) publishReady() {
	if e.routing.Load() {
		e.publish(StateReady, textReady, BackendFMOD, CodeOK)
	} else {
		e.publish(StateReady, textRoutingOff, BackendFallback, CodeOK)
	}
}

// session returns the native binding and system handle while ready
func (e *Engine) session() (Native, Handle, bool) {
	if State(e.state.Load()) != StateReady {
		return nil, 0, false
	}
	system := Handle(e.system.Load())
	b := e.binding.Load()
	if system == 0 || b == nil {
		return nil, 0, false
	}
	return b.native, system, true
}

// playSession is bankSession gated by routing and the failure flag
func (e *Engine) playSession() (Native, Handle, uint64, bool) {
	if !e.routing.Load() || e.failed.Load() {
		return nil, 0, 0, false
	}
	return e.bankSession()
}

// bankSession is session plus the current generation
func (e *Engine) bankSession() (Native, Handle, uint64, bool) {
	native, system, ok := e.session()
	return native, system, e.generation.Load(), ok
}

// Status returns the current status snapshot
func (e *Engine) Status() EngineStatus {
	return *e.status.Load()
}

// State returns the lifecycle state
func (e *Engine) State() State {
	return State(e.state.Load())
}

// IsAvailable reports whether playback requests can succeed
func (e *Engine) IsAvailable() bool {
	_, _, _, ok := e.playSession()
	return ok
}

// RoutingEnabled reports whether playback is routed to the engine
func (e *Engine) RoutingEnabled() bool {
	return e.routing.Load()
}

// Config returns the current configuration
func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// ActiveInstances returns the number of pooled instances
func (e *Engine) ActiveInstances() int {
	return e.pool.Len()
}

// MaxInstances returns the instance cap
func (e *Engine) MaxInstances() int {
	return e.pool.Cap()
}

// Banks returns the bank registry
func (e *Engine) Banks() *BankRegistry {
	return e.banks
}

// Pool returns the instance pool
func (e *Engine) Pool() *InstancePool {
	return e.pool
}

// Listener returns the listener tracker
func (e *Engine) Listener() *ListenerTracker {
	return e.listener
}

// Notifier returns the status notifier
func (e *Engine) Notifier() *StatusNotifier {
	return e.notifier
}
