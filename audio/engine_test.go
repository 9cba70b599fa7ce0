package audio_test

import (
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"github.com/lixenwraith/fmodapi/audio"
	"github.com/lixenwraith/fmodapi/audio/audiotest"
	"github.com/lixenwraith/fmodapi/status"
)

// testConfig returns a client-role config so no device probe runs
func testConfig() audio.Config {
	cfg := audio.DefaultConfig()
	cfg.Role = audio.RoleClient
	cfg.Output = "auto"
	return cfg
}

// newTestEngine creates an engine over a fake native with the given events
func newTestEngine(t *testing.T, cfg audio.Config, events ...string) (*audio.Engine, *audiotest.Native, *audiotest.Backend) {
	t.Helper()
	native := audiotest.New(events...)
	backend := audiotest.NewBackend(native)
	e := audio.NewEngine(cfg, backend)
	t.Cleanup(func() { e.Close() })
	return e, native, backend
}

// TestNewEngine verifies the initial status before any native work
func TestNewEngine(t *testing.T) {
	e, native, backend := newTestEngine(t, testConfig())

	st := e.Status()
	if st.State != audio.StateNotInitialized {
		t.Errorf("Expected StateNotInitialized, got %v", st.State)
	}
	if st.Initialized {
		t.Error("Expected Initialized=false")
	}
	if st.Backend != audio.BackendPending {
		t.Errorf("Expected backend %q, got %q", audio.BackendPending, st.Backend)
	}
	if backend.Loads() != 0 || native.Calls("CreateSystem") != 0 {
		t.Error("Expected no native work before Init")
	}
	if e.MaxInstances() != audio.DefaultInstances {
		t.Errorf("Expected max instances %d, got %d", audio.DefaultInstances, e.MaxInstances())
	}
}

// TestEngineInitIdempotent verifies a second Init on a ready engine does nothing
func TestEngineInitIdempotent(t *testing.T) {
	e, native, _ := newTestEngine(t, testConfig())

	if err := e.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := e.Init(); err != nil {
		t.Fatalf("Second Init failed: %v", err)
	}

	if got := native.Calls("CreateSystem"); got != 1 {
		t.Errorf("Expected 1 system creation, got %d", got)
	}
	st := e.Status()
	if st.State != audio.StateReady || !st.Initialized {
		t.Errorf("Expected ready status, got %v", st)
	}
	if st.Backend != audio.BackendFMOD {
		t.Errorf("Expected backend %q, got %q", audio.BackendFMOD, st.Backend)
	}
	if st.ErrorCode != audio.CodeOK {
		t.Errorf("Expected error code 0, got %d", st.ErrorCode)
	}
	if native.MaxChannels != audio.DefaultChannels {
		t.Errorf("Expected %d channels, got %d", audio.DefaultChannels, native.MaxChannels)
	}
	if !e.IsAvailable() {
		t.Error("Expected engine to be available")
	}
}

// TestEngineShutdownAndReinit verifies shutdown empties the pool and a later Init works
func TestEngineShutdownAndReinit(t *testing.T) {
	e, native, backend := newTestEngine(t, testConfig(), "event:/a")
	if err := e.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := e.Play(audio.PlayRequest{Event: "a"}); err != nil {
			t.Fatalf("Play failed: %v", err)
		}
	}

	e.Shutdown()

	if e.State() != audio.StateShutdown {
		t.Errorf("Expected StateShutdown, got %v", e.State())
	}
	if e.ActiveInstances() != 0 {
		t.Errorf("Expected empty pool, got %d", e.ActiveInstances())
	}
	if native.Live() != 0 {
		t.Errorf("Expected all native instances released, got %d", native.Live())
	}
	if native.Systems() != 0 {
		t.Errorf("Expected system released, got %d live", native.Systems())
	}
	if _, err := e.Play(audio.PlayRequest{Event: "a"}); !errors.Is(err, audio.ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable after shutdown, got %v", err)
	}

	// Shutdown is a no-op unless ready
	e.Shutdown()
	if got := native.Calls("ReleaseSystem"); got != 1 {
		t.Errorf("Expected 1 system release, got %d", got)
	}

	if err := e.Init(); err != nil {
		t.Fatalf("Re-init failed: %v", err)
	}
	if e.State() != audio.StateReady {
		t.Errorf("Expected ready after re-init, got %v", e.State())
	}
	if backend.Loads() != 1 {
		t.Errorf("Expected library load to be cached, got %d loads", backend.Loads())
	}
	if _, err := e.Play(audio.PlayRequest{Event: "a"}); err != nil {
		t.Errorf("Play after re-init failed: %v", err)
	}
}

// TestEngineLibraryFailureIsSticky verifies implicit init does not retry until an explicit Init
func TestEngineLibraryFailureIsSticky(t *testing.T) {
	e, _, backend := newTestEngine(t, testConfig())
	backend.Err = errors.New("no libraries")

	err := e.EnsureInit()
	if !errors.Is(err, audio.ErrLibraryLoad) {
		t.Fatalf("Expected ErrLibraryLoad, got %v", err)
	}
	st := e.Status()
	if st.State != audio.StateFailed {
		t.Errorf("Expected StateFailed, got %v", st.State)
	}
	if st.ErrorCode != audio.CodeUnknown {
		t.Errorf("Expected unknown error code, got %d", st.ErrorCode)
	}

	if err := e.EnsureInit(); !errors.Is(err, audio.ErrLibraryLoad) {
		t.Errorf("Expected recorded failure, got %v", err)
	}
	if backend.Loads() != 1 {
		t.Errorf("Expected no retry while failure is sticky, got %d loads", backend.Loads())
	}

	backend.Err = nil
	if err := e.Init(); err != nil {
		t.Fatalf("Explicit Init failed: %v", err)
	}
	if backend.Loads() != 2 {
		t.Errorf("Expected explicit Init to retry, got %d loads", backend.Loads())
	}
	if e.State() != audio.StateReady {
		t.Errorf("Expected ready, got %v", e.State())
	}
}

// TestEngineCreateFailure verifies the native result code reaches the status
func TestEngineCreateFailure(t *testing.T) {
	e, native, _ := newTestEngine(t, testConfig())
	native.CreateErr = audiotest.CodeHeaderMismatch

	err := e.Init()
	if !errors.Is(err, audio.ErrEngineCreate) {
		t.Fatalf("Expected ErrEngineCreate, got %v", err)
	}
	if code := audio.ErrorCode(err); code != int(audiotest.CodeHeaderMismatch) {
		t.Errorf("Expected code %d, got %d", audiotest.CodeHeaderMismatch, code)
	}
	st := e.Status()
	if st.ErrorCode != int(audiotest.CodeHeaderMismatch) {
		t.Errorf("Expected status code %d, got %d", audiotest.CodeHeaderMismatch, st.ErrorCode)
	}
	if st.Text != "Create failed" {
		t.Errorf("Expected create failure text, got %q", st.Text)
	}
}

// TestEngineInitFailureReleasesSystem verifies a system that fails to initialize is released
func TestEngineInitFailureReleasesSystem(t *testing.T) {
	e, native, _ := newTestEngine(t, testConfig())
	native.InitErr = audiotest.CodeOutputInit

	err := e.Init()
	if !errors.Is(err, audio.ErrEngineInit) {
		t.Fatalf("Expected ErrEngineInit, got %v", err)
	}
	if native.Systems() != 0 {
		t.Errorf("Expected created system to be released, %d live", native.Systems())
	}
	if e.Status().ErrorCode != int(audiotest.CodeOutputInit) {
		t.Errorf("Expected code %d, got %d", audiotest.CodeOutputInit, e.Status().ErrorCode)
	}
}

// panicListeners panics while the engine configures listeners
type panicListeners struct {
	*audiotest.Native
}

func (p panicListeners) SetListenerCount(audio.Handle, int) error {
	panic("listener table corrupted")
}

// TestEngineInitPanicReleasesSystem verifies a panic after system creation releases the system
func TestEngineInitPanicReleasesSystem(t *testing.T) {
	native := audiotest.New()
	e := audio.NewEngine(testConfig(), nativeBackend{native: panicListeners{native}})
	t.Cleanup(func() { e.Close() })

	err := e.Init()
	if !errors.Is(err, audio.ErrEngineInit) {
		t.Fatalf("Expected ErrEngineInit, got %v", err)
	}
	if e.State() != audio.StateFailed {
		t.Errorf("Expected failed state, got %v", e.State())
	}
	if native.Systems() != 0 {
		t.Errorf("Expected created system to be released, %d live", native.Systems())
	}
	if native.Calls("ReleaseSystem") != 1 {
		t.Errorf("Expected one release, got %d", native.Calls("ReleaseSystem"))
	}
	if e.IsAvailable() {
		t.Error("Expected engine unavailable after panic")
	}
}

// TestEngineNonFatalSettings verifies 3D settings and output failures do not fail init
func TestEngineNonFatalSettings(t *testing.T) {
	cfg := testConfig()
	cfg.Output = "wasapi"
	e, native, _ := newTestEngine(t, cfg)
	native.SettingsErr = errors.New("settings rejected")
	native.OutputErr = errors.New("output rejected")

	if err := e.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if native.Calls("SetOutput") != 1 {
		t.Error("Expected output preference to be attempted")
	}
	if e.State() != audio.StateReady {
		t.Errorf("Expected ready, got %v", e.State())
	}
}

// TestEngineOutputPreference verifies the configured output type is requested
func TestEngineOutputPreference(t *testing.T) {
	cfg := testConfig()
	cfg.Output = "pulseaudio"
	e, native, _ := newTestEngine(t, cfg)

	if err := e.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if native.Output != audio.OutputPulseAudio {
		t.Errorf("Expected output %d, got %d", audio.OutputPulseAudio, native.Output)
	}
}

// TestEngineServerRoleSkipped verifies headless roles never touch the native layer
func TestEngineServerRoleSkipped(t *testing.T) {
	cfg := testConfig()
	cfg.Role = audio.RoleServer
	e, _, backend := newTestEngine(t, cfg)

	err := e.Init()
	if !errors.Is(err, audio.ErrSkipped) {
		t.Fatalf("Expected ErrSkipped, got %v", err)
	}
	if e.State() != audio.StateSkipped {
		t.Errorf("Expected StateSkipped, got %v", e.State())
	}
	if e.Status().Backend != audio.BackendNone {
		t.Errorf("Expected backend None, got %q", e.Status().Backend)
	}

	// Skipped is terminal
	if err := e.Init(); !errors.Is(err, audio.ErrSkipped) {
		t.Errorf("Expected ErrSkipped again, got %v", err)
	}
	if backend.Loads() != 0 {
		t.Errorf("Expected no library loads, got %d", backend.Loads())
	}
}

// TestEngineAutoRoleProbe verifies the auto role follows the output probe
func TestEngineAutoRoleProbe(t *testing.T) {
	cfg := testConfig()
	cfg.Role = audio.RoleAuto

	backend := audiotest.NewBackend(audiotest.New())
	headless := audio.NewEngine(cfg, backend, audio.WithOutputProbe(func() (bool, error) {
		return false, audio.ErrNoAudioBackend
	}))
	defer headless.Close()

	err := headless.Init()
	if !errors.Is(err, audio.ErrSkipped) {
		t.Fatalf("Expected ErrSkipped, got %v", err)
	}
	if !errors.Is(err, audio.ErrNoAudioBackend) {
		t.Errorf("Expected probe error in chain, got %v", err)
	}

	client := audio.NewEngine(cfg, audiotest.NewBackend(audiotest.New()), audio.WithOutputProbe(func() (bool, error) {
		return true, nil
	}))
	defer client.Close()
	if err := client.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
}

// TestEngineNotifier verifies observers fire on transitions and may call back into the engine
func TestEngineNotifier(t *testing.T) {
	e, _, _ := newTestEngine(t, testConfig())

	var calls atomic.Int32
	var last atomic.Value
	sub := e.Notifier().SubscribeFunc(func() {
		calls.Add(1)
		last.Store(e.Status().State)
	})

	if err := e.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("Expected 1 notification after Init, got %d", calls.Load())
	}
	if last.Load() != audio.StateReady {
		t.Errorf("Expected observer to see StateReady, got %v", last.Load())
	}

	// No transition, no notification
	e.Init()
	if calls.Load() != 1 {
		t.Errorf("Expected no notification for idempotent Init, got %d", calls.Load())
	}

	e.Shutdown()
	if calls.Load() != 2 {
		t.Errorf("Expected notification after Shutdown, got %d", calls.Load())
	}

	e.Notifier().Unsubscribe(sub)
	e.Init()
	if calls.Load() != 2 {
		t.Errorf("Expected no notification after Unsubscribe, got %d", calls.Load())
	}
}

// TestEngineNotifierPanicRecovered verifies a panicking observer does not break delivery
func TestEngineNotifierPanicRecovered(t *testing.T) {
	e, _, _ := newTestEngine(t, testConfig())

	var delivered atomic.Bool
	e.Notifier().SubscribeFunc(func() { panic("observer failure") })
	e.Notifier().SubscribeFunc(func() { delivered.Store(true) })

	if err := e.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if !delivered.Load() {
		t.Error("Expected second observer to be notified")
	}
}

// TestEngineWarmDisable verifies disabling routing keeps the engine initialized
func TestEngineWarmDisable(t *testing.T) {
	e, native, _ := newTestEngine(t, testConfig(), "event:/a")
	if err := e.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if err := e.SetEnabled(false); err != nil {
		t.Fatalf("SetEnabled(false) failed: %v", err)
	}
	st := e.Status()
	if st.State != audio.StateReady {
		t.Errorf("Expected engine to stay ready, got %v", st.State)
	}
	if st.Backend != audio.BackendFallback || st.Text != "Routing disabled" {
		t.Errorf("Expected routing-disabled status, got %v", st)
	}
	if e.IsAvailable() {
		t.Error("Expected engine unavailable with routing disabled")
	}
	if _, err := e.Play(audio.PlayRequest{Event: "a"}); !errors.Is(err, audio.ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", err)
	}

	if err := e.SetEnabled(true); err != nil {
		t.Fatalf("SetEnabled(true) failed: %v", err)
	}
	if native.Calls("CreateSystem") != 1 {
		t.Errorf("Expected no re-creation, got %d", native.Calls("CreateSystem"))
	}
	if _, err := e.Play(audio.PlayRequest{Event: "a"}); err != nil {
		t.Errorf("Play after re-enable failed: %v", err)
	}
}

// TestEngineEnableInitializes verifies enabling a never-initialized engine runs Init
func TestEngineEnableInitializes(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	e, _, _ := newTestEngine(t, cfg)

	if e.RoutingEnabled() {
		t.Fatal("Expected routing disabled from config")
	}
	if err := e.SetEnabled(true); err != nil {
		t.Fatalf("SetEnabled failed: %v", err)
	}
	if e.State() != audio.StateReady {
		t.Errorf("Expected ready, got %v", e.State())
	}
}

// TestEngineApplyConfig verifies reloaded settings take effect
func TestEngineApplyConfig(t *testing.T) {
	e, _, backend := newTestEngine(t, testConfig())
	backend.Err = errors.New("missing")
	e.Init()

	cfg := testConfig()
	cfg.MaxInstances = 10 // clamped to minimum
	if err := e.ApplyConfig(cfg); !errors.Is(err, audio.ErrLibraryLoad) {
		t.Errorf("Expected sticky failure without retry, got %v", err)
	}
	if backend.Loads() != 1 {
		t.Errorf("Expected no retry for unchanged path, got %d loads", backend.Loads())
	}
	if e.MaxInstances() != audio.MinInstances {
		t.Errorf("Expected cap %d, got %d", audio.MinInstances, e.MaxInstances())
	}

	backend.Err = nil
	cfg.CustomLibraryPath = "/opt/fmod"
	if err := e.ApplyConfig(cfg); err != nil {
		t.Fatalf("Expected path change to retry, got %v", err)
	}
	if e.State() != audio.StateReady {
		t.Errorf("Expected ready, got %v", e.State())
	}

	cfg.Enabled = false
	e.ApplyConfig(cfg)
	if e.RoutingEnabled() || e.State() != audio.StateReady {
		t.Error("Expected routing off with engine warm")
	}
}

// TestEngineUpdate verifies the tick reaps finished instances and advances the native system
func TestEngineUpdate(t *testing.T) {
	e, native, _ := newTestEngine(t, testConfig(), "event:/a", "event:/b")

	// Not ready: no native work
	if err := e.Update(); err != nil {
		t.Fatalf("Update before init failed: %v", err)
	}
	if native.Updates != 0 {
		t.Error("Expected no native update before init")
	}

	e.Init()
	e.Play(audio.PlayRequest{Event: "a"})
	e.Play(audio.PlayRequest{Event: "b"})
	native.Finish("event:/a")

	if err := e.Update(); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if e.ActiveInstances() != 1 {
		t.Errorf("Expected 1 active instance, got %d", e.ActiveInstances())
	}
	if native.Updates != 1 {
		t.Errorf("Expected 1 native update, got %d", native.Updates)
	}

	native.UpdateErr = errors.New("update failed")
	if err := e.Update(); !errors.Is(err, audio.ErrUnavailable) {
		t.Errorf("Expected update error, got %v", err)
	}
}

// TestEngineMetrics verifies lifecycle counters land in the registry
func TestEngineMetrics(t *testing.T) {
	reg := status.NewRegistry()
	native := audiotest.New("event:/a")
	e := audio.NewEngine(testConfig(), audiotest.NewBackend(native), audio.WithRegistry(reg))
	defer e.Close()

	e.Init()
	e.Play(audio.PlayRequest{Event: "a"})
	e.Play(audio.PlayRequest{Event: "missing"})

	if !reg.Bools.Get(status.KeyEngineReady).Load() {
		t.Error("Expected ready metric")
	}
	if got := reg.Strings.Get(status.KeyEngineState).Load(); got != "ready" {
		t.Errorf("Expected state metric ready, got %q", got)
	}
	if got := reg.Ints.Get(status.KeyInitAttempts).Load(); got != 1 {
		t.Errorf("Expected 1 init attempt, got %d", got)
	}
	if got := reg.Ints.Get(status.KeyInstancesStarted).Load(); got != 1 {
		t.Errorf("Expected 1 started instance, got %d", got)
	}
	if got := reg.Ints.Get(status.KeyInstancesActive).Load(); got != 1 {
		t.Errorf("Expected 1 active instance, got %d", got)
	}

	e.Shutdown()
	if reg.Bools.Get(status.KeyEngineReady).Load() {
		t.Error("Expected ready metric cleared after shutdown")
	}
	if got := reg.Ints.Get(status.KeyInstancesActive).Load(); got != 0 {
		t.Errorf("Expected 0 active instances, got %d", got)
	}
}

// TestEngineMasterVolume verifies the master bus volume is clamped
func TestEngineMasterVolume(t *testing.T) {
	e, native, _ := newTestEngine(t, testConfig())

	if err := e.SetMasterVolume(0.5); !errors.Is(err, audio.ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable before init, got %v", err)
	}

	e.Init()
	if err := e.SetMasterVolume(2); err != nil {
		t.Fatalf("SetMasterVolume failed: %v", err)
	}
	if native.MasterVolume != 1 {
		t.Errorf("Expected clamped volume 1, got %f", native.MasterVolume)
	}
}

// TestEngineClose verifies Close releases the libraries and a later Init reloads them
func TestEngineClose(t *testing.T) {
	e, native, backend := newTestEngine(t, testConfig())
	e.Init()

	if err := e.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if backend.Closes() != 1 {
		t.Errorf("Expected library closer called once, got %d", backend.Closes())
	}
	if native.Systems() != 0 {
		t.Error("Expected system released on Close")
	}

	// Idempotent
	if err := e.Close(); err != nil {
		t.Fatalf("Second Close failed: %v", err)
	}
	if backend.Closes() != 1 {
		t.Errorf("Expected closer not called again, got %d", backend.Closes())
	}

	if err := e.Init(); err != nil {
		t.Fatalf("Init after Close failed: %v", err)
	}
	if backend.Loads() != 2 {
		t.Errorf("Expected libraries reloaded, got %d loads", backend.Loads())
	}
}

// newFake returns a fake native and a backend serving it
func newFake(events ...string) (*audiotest.Native, *audiotest.Backend) {
	native := audiotest.New(events...)
	return native, audiotest.NewBackend(native)
}

// nativeBackend serves a fixed audio.Native
type nativeBackend struct {
	native audio.Native
}

func (b nativeBackend) Load(audio.Config) (audio.Native, io.Closer, error) {
	return b.native, nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
