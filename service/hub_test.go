package service

import (
	"errors"
	"strings"
	"testing"
)

// recorder is a Service that logs lifecycle calls into a shared journal
type recorder struct {
	name     string
	deps     []string
	journal  *[]string
	startErr error
	hub      *Hub
}

func (r *recorder) Name() string           { return r.name }
func (r *recorder) Dependencies() []string { return r.deps }

func (r *recorder) Init(args ...any) error {
	if len(args) > 0 {
		r.hub, _ = args[0].(*Hub)
	}
	*r.journal = append(*r.journal, "init:"+r.name)
	return nil
}

func (r *recorder) Start() error {
	*r.journal = append(*r.journal, "start:"+r.name)
	return r.startErr
}

func (r *recorder) Stop() error {
	*r.journal = append(*r.journal, "stop:"+r.name)
	return nil
}

// TestHubDependencyOrder verifies services init and start after their dependencies and stop in reverse
func TestHubDependencyOrder(t *testing.T) {
	var journal []string
	h := NewHub()
	h.Register(&recorder{name: "audio", deps: []string{"status"}, journal: &journal})
	h.Register(&recorder{name: "status", journal: &journal})

	if err := h.InitAll(); err != nil {
		t.Fatalf("InitAll failed: %v", err)
	}
	if err := h.StartAll(); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	h.StopAll()

	want := "init:status,init:audio,start:status,start:audio,stop:audio,stop:status"
	if got := strings.Join(journal, ","); got != want {
		t.Errorf("Lifecycle order:\n got %s\nwant %s", got, want)
	}
}

// TestHubInitPassesHub verifies services receive the hub for dependency lookup
func TestHubInitPassesHub(t *testing.T) {
	var journal []string
	h := NewHub()
	svc := &recorder{name: "status", journal: &journal}
	h.Register(svc)
	h.InitAll()

	if svc.hub != h {
		t.Fatal("Expected hub as first Init argument")
	}
	got, err := Lookup[*recorder](h, "status")
	if err != nil || got != svc {
		t.Errorf("Lookup failed: %v", err)
	}
	if _, err := Lookup[*Hub](h, "status"); err == nil {
		t.Error("Expected type mismatch error")
	}
	if _, err := Lookup[*recorder](h, "missing"); err == nil {
		t.Error("Expected not found error")
	}
}

// TestHubDuplicateRegistration verifies names are unique
func TestHubDuplicateRegistration(t *testing.T) {
	var journal []string
	h := NewHub()
	h.Register(&recorder{name: "audio", journal: &journal})
	if err := h.Register(&recorder{name: "audio", journal: &journal}); err == nil {
		t.Error("Expected duplicate registration error")
	}
}

// TestHubMissingDependency verifies unregistered dependencies fail InitAll
func TestHubMissingDependency(t *testing.T) {
	var journal []string
	h := NewHub()
	h.Register(&recorder{name: "audio", deps: []string{"status"}, journal: &journal})

	if err := h.InitAll(); err == nil {
		t.Error("Expected missing dependency error")
	}
}

// TestHubCycle verifies circular dependencies are detected
func TestHubCycle(t *testing.T) {
	var journal []string
	h := NewHub()
	h.Register(&recorder{name: "a", deps: []string{"b"}, journal: &journal})
	h.Register(&recorder{name: "b", deps: []string{"a"}, journal: &journal})

	err := h.InitAll()
	if err == nil || !strings.Contains(err.Error(), "circular") {
		t.Errorf("Expected circular dependency error, got %v", err)
	}
}

// TestHubStartRollback verifies a failed start stops already-started services
func TestHubStartRollback(t *testing.T) {
	var journal []string
	h := NewHub()
	h.Register(&recorder{name: "status", journal: &journal})
	h.Register(&recorder{name: "audio", deps: []string{"status"}, journal: &journal, startErr: errors.New("boom")})
	h.InitAll()

	if err := h.StartAll(); err == nil {
		t.Fatal("Expected start failure")
	}
	want := "init:status,init:audio,start:status,start:audio,stop:status"
	if got := strings.Join(journal, ","); got != want {
		t.Errorf("Lifecycle order:\n got %s\nwant %s", got, want)
	}

	// Nothing left to stop
	h.StopAll()
	if got := strings.Join(journal, ","); got != want {
		t.Errorf("Expected StopAll to be a no-op after rollback, got %s", got)
	}
}

// TestHubStartBeforeInit verifies StartAll requires InitAll
func TestHubStartBeforeInit(t *testing.T) {
	if err := NewHub().StartAll(); err == nil {
		t.Error("Expected error starting uninitialized hub")
	}
}
