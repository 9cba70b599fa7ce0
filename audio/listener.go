package audio

import (
	"sync"

	"github.com/lixenwraith/fmodapi/vmath"
	"go.uber.org/zap"
)

// Default change thresholds below which a listener pose is not pushed
const (
	DefaultPositionThreshold = 0.01 // world units per axis
	DefaultAngleThreshold    = 0.1  // degrees
)

// Pose is the host-reported listener state
// Yaw and Pitch are degrees; yaw 0 faces +Z, positive pitch looks down
type Pose struct {
	Position vmath.Vec3F
	Velocity vmath.Vec3F
	Yaw      float64
	Pitch    float64
}

// Forward returns the unit facing vector derived from yaw and pitch
func (p Pose) Forward() vmath.Vec3F {
	return vmath.V3FFromYawPitch(p.Yaw, p.Pitch)
}

// Attributes returns the listener attributes pushed for this pose
func (p Pose) Attributes() Attributes3D {
	return Attributes3D{
		Position: p.Position,
		Velocity: p.Velocity,
		Forward:  p.Forward(),
		Up:       vmath.Up,
	}
}

// ListenerOption configures a ListenerTracker
type ListenerOption func(*ListenerTracker)

// WithPositionThreshold sets the per-axis movement threshold
func WithPositionThreshold(d float64) ListenerOption {
	return func(t *ListenerTracker) { t.posThreshold = d }
}

// WithAngleThreshold sets the yaw/pitch threshold in degrees
func WithAngleThreshold(deg float64) ListenerOption {
	return func(t *ListenerTracker) { t.angleThreshold = deg }
}

// ListenerTracker pushes the listener pose to the engine only when it changed noticeably
type ListenerTracker struct {
	mu             sync.Mutex
	engine         *Engine
	metrics        *metrics
	last           Pose
	hasLast        bool
	posThreshold   float64
	angleThreshold float64
}

// NewListenerTracker creates a tracker bound to e
// Engine.Listener returns the tracker the engine resets on every init
func NewListenerTracker(e *Engine, opts ...ListenerOption) *ListenerTracker {
	t := &ListenerTracker{
		engine:         e,
		posThreshold:   DefaultPositionThreshold,
		angleThreshold: DefaultAngleThreshold,
	}
	if e != nil {
		t.metrics = e.metrics
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Update pushes pose when it is the first pose or moved beyond a threshold
// Returns true if the pose was pushed. When the engine is not ready nothing is
// pushed and the last pushed pose is kept.
func (t *ListenerTracker) Update(pose Pose) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.hasLast && !t.changed(pose) {
		return false
	}

	native, system, ok := t.engine.session()
	if !ok {
		return false
	}
	if err := t.push(native, system, pose.Attributes()); err != nil {
		debugLog("listener update failed", zap.Error(err))
		return false
	}

	t.last = pose
	t.hasLast = true
	if t.metrics != nil {
		t.metrics.listenerPushes.Add(1)
		t.metrics.listenerSpeed.Set(vmath.V3FMag(pose.Velocity))
	}
	return true
}

// Set pushes explicit listener attributes, bypassing the thresholds
func (t *ListenerTracker) Set(attrs Attributes3D) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	native, system, ok := t.engine.session()
	if !ok {
		return unavailable("set_listener", "engine not ready")
	}
	if err := t.push(native, system, attrs); err != nil {
		return err
	}
	// Explicit attributes invalidate the throttling baseline
	t.hasLast = false
	return nil
}

func (t *ListenerTracker) push(native Native, system Handle, attrs Attributes3D) (err error) {
	const op = "set_listener"
	defer guard(op, &err)
	if err := native.SetListenerAttributes(system, 0, attrs); err != nil {
		return newError(KindAttributeSet, op, err, "listener 0")
	}
	return nil
}

func (t *ListenerTracker) changed(pose Pose) bool {
	if vmath.V3FMaxAxisDelta(pose.Position, t.last.Position) > t.posThreshold {
		return true
	}
	return vmath.AngleDelta(pose.Yaw, t.last.Yaw) > t.angleThreshold ||
		vmath.AngleDelta(pose.Pitch, t.last.Pitch) > t.angleThreshold
}

// Last returns the last pushed pose and whether one exists
func (t *ListenerTracker) Last() (Pose, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last, t.hasLast
}

// Reset forgets the last pose so the next Update always pushes
func (t *ListenerTracker) Reset() {
	t.mu.Lock()
	t.last = Pose{}
	t.hasLast = false
	t.mu.Unlock()
}
