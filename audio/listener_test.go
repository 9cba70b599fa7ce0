package audio_test

import (
	"errors"
	"math"
	"testing"

	"github.com/lixenwraith/fmodapi/audio"
	"github.com/lixenwraith/fmodapi/vmath"
)

// TestListenerFirstPush verifies the first pose is always pushed
func TestListenerFirstPush(t *testing.T) {
	e, native := readyEngine(t)

	pose := audio.Pose{Position: vmath.Vec3F{X: 1, Y: 2, Z: 3}}
	if !e.UpdateListener(pose) {
		t.Fatal("Expected first pose to be pushed")
	}
	if native.ListenerPushes != 1 {
		t.Errorf("Expected 1 push, got %d", native.ListenerPushes)
	}
	if native.Listener.Position != pose.Position {
		t.Errorf("Expected position %v, got %v", pose.Position, native.Listener.Position)
	}
	if native.Listener.Up != vmath.Up {
		t.Errorf("Expected up vector %v, got %v", vmath.Up, native.Listener.Up)
	}
}

// TestListenerThresholds verifies small changes are suppressed and larger ones pushed
func TestListenerThresholds(t *testing.T) {
	e, native := readyEngine(t)
	e.UpdateListener(audio.Pose{})

	tests := []struct {
		name string
		pose audio.Pose
		push bool
	}{
		{"below position threshold", audio.Pose{Position: vmath.Vec3F{X: 0.005}}, false},
		{"below angle threshold", audio.Pose{Yaw: 0.05}, false},
		{"position beyond threshold", audio.Pose{Position: vmath.Vec3F{Z: 0.02}}, true},
		{"yaw beyond threshold", audio.Pose{Position: vmath.Vec3F{Z: 0.02}, Yaw: 0.2}, true},
		{"pitch beyond threshold", audio.Pose{Position: vmath.Vec3F{Z: 0.02}, Yaw: 0.2, Pitch: -0.5}, true},
		{"unchanged", audio.Pose{Position: vmath.Vec3F{Z: 0.02}, Yaw: 0.2, Pitch: -0.5}, false},
	}

	pushes := native.ListenerPushes
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.UpdateListener(tt.pose)
			if got != tt.push {
				t.Errorf("UpdateListener() = %t, want %t", got, tt.push)
			}
			if tt.push {
				pushes++
			}
			if native.ListenerPushes != pushes {
				t.Errorf("Expected %d pushes, got %d", pushes, native.ListenerPushes)
			}
		})
	}
}

// TestListenerYawWrap verifies yaw differences are measured across the 0/360 seam
func TestListenerYawWrap(t *testing.T) {
	e, _ := readyEngine(t)

	e.UpdateListener(audio.Pose{Yaw: 359.95})
	if e.UpdateListener(audio.Pose{Yaw: 0.0}) {
		t.Error("Expected 0.05 degree wrap to be suppressed")
	}
	if !e.UpdateListener(audio.Pose{Yaw: 0.5}) {
		t.Error("Expected 0.55 degree change to be pushed")
	}
}

// TestListenerNotReady verifies nothing is pushed or remembered before init
func TestListenerNotReady(t *testing.T) {
	e, native, _ := newTestEngine(t, testConfig())

	if e.UpdateListener(audio.Pose{Yaw: 10}) {
		t.Error("Expected no push before init")
	}
	if _, ok := e.Listener().Last(); ok {
		t.Error("Expected no remembered pose before init")
	}

	e.Init()
	if !e.UpdateListener(audio.Pose{Yaw: 10}) {
		t.Error("Expected push after init")
	}
	if native.ListenerPushes != 1 {
		t.Errorf("Expected 1 push, got %d", native.ListenerPushes)
	}
}

// TestListenerResetOnReinit verifies a reinitialized engine receives the pose again
func TestListenerResetOnReinit(t *testing.T) {
	e, native := readyEngine(t)

	pose := audio.Pose{Position: vmath.Vec3F{X: 4}}
	e.UpdateListener(pose)
	if err := e.Reinit(); err != nil {
		t.Fatalf("Reinit failed: %v", err)
	}
	if !e.UpdateListener(pose) {
		t.Error("Expected unchanged pose to be pushed to the new system")
	}
	if native.ListenerPushes != 2 {
		t.Errorf("Expected 2 pushes, got %d", native.ListenerPushes)
	}
}

// TestListenerSet verifies explicit attributes bypass thresholds and reset the baseline
func TestListenerSet(t *testing.T) {
	e, native, _ := newTestEngine(t, testConfig())

	attrs := audio.Attributes3D{Forward: vmath.Forward, Up: vmath.Up}
	if err := e.SetListener(attrs); !errors.Is(err, audio.ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable before init, got %v", err)
	}

	e.Init()
	e.UpdateListener(audio.Pose{})
	if err := e.SetListener(attrs); err != nil {
		t.Fatalf("SetListener failed: %v", err)
	}
	if !e.UpdateListener(audio.Pose{}) {
		t.Error("Expected pose pushed after explicit attributes")
	}
	if native.ListenerPushes != 3 {
		t.Errorf("Expected 3 pushes, got %d", native.ListenerPushes)
	}
}

// TestListenerCustomThresholds verifies tracker options replace the defaults
func TestListenerCustomThresholds(t *testing.T) {
	native, backend := newFake()
	e := audio.NewEngine(testConfig(), backend,
		audio.WithListenerOptions(audio.WithPositionThreshold(1), audio.WithAngleThreshold(10)))
	defer e.Close()
	e.Init()

	e.UpdateListener(audio.Pose{})
	if e.UpdateListener(audio.Pose{Position: vmath.Vec3F{X: 0.5}, Yaw: 5}) {
		t.Error("Expected change within custom thresholds to be suppressed")
	}
	if native.ListenerPushes != 1 {
		t.Errorf("Expected 1 push, got %d", native.ListenerPushes)
	}
}

// TestPoseForward verifies yaw and pitch map to the facing vector
func TestPoseForward(t *testing.T) {
	tests := []struct {
		yaw, pitch float64
		want       vmath.Vec3F
	}{
		{0, 0, vmath.Vec3F{Z: 1}},
		{90, 0, vmath.Vec3F{X: -1}},
		{180, 0, vmath.Vec3F{Z: -1}},
		{0, 90, vmath.Vec3F{Y: -1}},
	}

	for _, tt := range tests {
		got := audio.Pose{Yaw: tt.yaw, Pitch: tt.pitch}.Forward()
		if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 || math.Abs(got.Z-tt.want.Z) > 1e-9 {
			t.Errorf("Forward(yaw=%v, pitch=%v) = %v, want %v", tt.yaw, tt.pitch, got, tt.want)
		}
	}
}
