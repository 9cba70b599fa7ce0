package audio_test

import (
	"errors"
	"testing"

	"github.com/lixenwraith/fmodapi/audio"
	"github.com/lixenwraith/fmodapi/service"
	"github.com/lixenwraith/fmodapi/status"
)

// TestAudioServiceLifecycle verifies the service initializes the engine and publishes into the status registry
func TestAudioServiceLifecycle(t *testing.T) {
	_, backend := newFake("event:/a")
	hub := service.NewHub()
	st := status.NewService()
	svc := audio.NewService(testConfig(), backend)

	if err := hub.Register(st); err != nil {
		t.Fatalf("Register status failed: %v", err)
	}
	if err := hub.Register(svc); err != nil {
		t.Fatalf("Register audio failed: %v", err)
	}
	if err := hub.InitAll(); err != nil {
		t.Fatalf("InitAll failed: %v", err)
	}
	if err := hub.StartAll(); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}

	if svc.IsDisabled() {
		t.Error("Expected service enabled")
	}
	if svc.Engine().State() != audio.StateReady {
		t.Errorf("Expected ready engine, got %v", svc.Engine().State())
	}
	if !st.Registry().Bools.Get(status.KeyEngineReady).Load() {
		t.Error("Expected engine metrics in the shared registry")
	}

	hub.StopAll()
	if backend.Closes() != 1 {
		t.Errorf("Expected libraries released on stop, got %d closes", backend.Closes())
	}
}

// TestAudioServiceDegrades verifies a failing engine does not fail the host
func TestAudioServiceDegrades(t *testing.T) {
	_, backend := newFake()
	backend.Err = errors.New("libraries missing")
	svc := audio.NewService(testConfig(), backend)

	if err := svc.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := svc.Start(); err != nil {
		t.Fatalf("Expected Start to swallow engine failure, got %v", err)
	}
	if !svc.IsDisabled() {
		t.Error("Expected service disabled")
	}
	if svc.Engine().State() != audio.StateFailed {
		t.Errorf("Expected failed engine, got %v", svc.Engine().State())
	}
	if err := svc.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}

// TestAudioServiceDisabled verifies a disabled config creates the engine without initializing it
func TestAudioServiceDisabled(t *testing.T) {
	_, backend := newFake()
	cfg := testConfig()
	cfg.Enabled = false
	svc := audio.NewService(cfg, backend)

	svc.Init()
	svc.Start()
	if svc.Engine().State() != audio.StateNotInitialized {
		t.Errorf("Expected engine not initialized, got %v", svc.Engine().State())
	}
	if backend.Loads() != 0 {
		t.Errorf("Expected no library loads, got %d", backend.Loads())
	}
	if svc.Name() != "audio" || len(svc.Dependencies()) != 1 {
		t.Errorf("Unexpected service identity %q %v", svc.Name(), svc.Dependencies())
	}
}
