package audio

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/fmodapi/vmath"
	"go.uber.org/zap"
)

// eventPrefix is the namespace of event paths in a loaded bank
const eventPrefix = "event:/"

// PlayRequest describes one playback
// Nil Volume and Pitch mean unity; a nil Position plays the event in 2D
type PlayRequest struct {
	Event    string
	Position *vmath.Vec3F
	Velocity *vmath.Vec3F
	Volume   *float32
	Pitch    *float32
}

// Gain returns the requested linear volume, 1 when unset
func (r PlayRequest) Gain() float32 {
	if r.Volume == nil {
		return 1
	}
	return *r.Volume
}

func (r PlayRequest) pitch() float32 {
	if r.Pitch == nil {
		return 1
	}
	return *r.Pitch
}

// instance is a pooled playback handle
type instance struct {
	handle   Handle
	event    string
	started  time.Time
	released atomic.Bool
}

// InstancePool owns the active playback instances
type InstancePool struct {
	engine    *Engine
	metrics   *metrics
	instances sync.Map // id -> *instance
	count     atomic.Int64
	capacity  atomic.Int64
	seq       atomic.Uint64
	clock     func() time.Time
}

func newInstancePool(e *Engine, m *metrics, capacity int, clock func() time.Time) *InstancePool {
	p := &InstancePool{engine: e, metrics: m, clock: clock}
	p.capacity.Store(int64(capacity))
	return p
}

// EventPath returns name in the event namespace, adding the prefix when missing
func EventPath(name string) string {
	if strings.HasPrefix(name, eventPrefix) {
		return name
	}
	return eventPrefix + strings.TrimPrefix(name, "/")
}

// Play creates, configures and starts an instance of req.Event
// Returns the instance id, or an error whose Kind tells which step failed
func (p *InstancePool) Play(req PlayRequest) (id string, err error) {
	const op = "play"
	defer guard(op, &err)

	native, system, gen, ok := p.engine.playSession()
	if !ok {
		p.metrics.rejected.Add(1)
		return "", unavailable(op, "engine not ready")
	}

	if p.count.Load() >= p.capacity.Load() {
		p.Cleanup()
		if p.count.Load() >= p.capacity.Load() {
			p.metrics.rejected.Add(1)
			Logger().Warn("instance pool full",
				zap.Int64("active", p.count.Load()),
				zap.Int64("max", p.capacity.Load()))
			return "", unavailable(op, "instance pool full")
		}
	}

	event := EventPath(req.Event)
	desc, err := native.GetEvent(system, event)
	if err != nil {
		debugLog("event lookup failed", zap.String("event", event), zap.Error(err))
		return "", newError(KindEventLookup, op, err, event)
	}

	handle, err := native.CreateInstance(desc)
	if err != nil {
		return "", newError(KindInstanceCreate, op, err, event)
	}

	if req.Position != nil {
		var vel vmath.Vec3F
		if req.Velocity != nil {
			vel = *req.Velocity
		}
		if aerr := native.Set3DAttributes(handle, emitterAttributes(*req.Position, vel)); aerr != nil {
			Logger().Warn("3D attributes not applied", zap.String("event", event),
				zap.Error(newError(KindAttributeSet, op, aerr, "3d")))
		}
	}

	if vol := req.Gain(); vol != 1 {
		if aerr := native.SetVolume(handle, vol); aerr != nil {
			Logger().Warn("volume not applied", zap.String("event", event),
				zap.Error(newError(KindAttributeSet, op, aerr, "volume")))
		}
	}

	if pitch := req.pitch(); pitch != 1 {
		if aerr := native.SetPitch(handle, pitch); aerr != nil {
			Logger().Warn("pitch not applied", zap.String("event", event),
				zap.Error(newError(KindAttributeSet, op, aerr, "pitch")))
		}
	}

	if err := native.Start(handle); err != nil {
		if rerr := native.ReleaseInstance(handle); rerr != nil {
			debugLog("release after failed start", zap.Error(rerr))
		}
		return "", newError(KindInstanceStart, op, err, event)
	}

	now := p.clock()
	id = fmt.Sprintf("%s_%d_%d", event, now.UnixNano(), p.seq.Add(1))
	p.instances.Store(id, &instance{handle: handle, event: event, started: now})
	p.metrics.active.Store(p.count.Add(1))

	// A shutdown that raced the native calls has already drained the pool
	if _, cur, curGen, live := p.engine.bankSession(); !live || cur != system || curGen != gen {
		p.remove(id, native, true)
		p.metrics.rejected.Add(1)
		debugLog("engine shut down during play", zap.String("event", event))
		return "", unavailable(op, "engine shut down during play")
	}
	p.metrics.started.Add(1)

	debugLog("instance started", zap.String("id", id))
	return id, nil
}

// Cleanup releases every instance that has stopped or whose state cannot be queried
// Returns the number of reclaimed instances
func (p *InstancePool) Cleanup() (reaped int) {
	defer guard("cleanup", nil)

	native, _, ok := p.engine.session()
	if !ok {
		return 0
	}

	p.instances.Range(func(key, value any) bool {
		inst := value.(*instance)
		state, err := native.PlaybackState(inst.handle)
		if err == nil && !state.Terminal() {
			return true
		}
		if p.remove(key.(string), native, false) {
			reaped++
		}
		return true
	})

	if reaped > 0 {
		p.metrics.reaped.Add(int64(reaped))
		debugLog("instances reclaimed", zap.Int("count", reaped), zap.Int64("active", p.count.Load()))
	}
	return reaped
}

// Stop stops and releases one instance by id
func (p *InstancePool) Stop(id string, immediate bool) bool {
	native, _, ok := p.engine.session()
	if !ok {
		return false
	}
	v, ok := p.instances.Load(id)
	if !ok {
		return false
	}
	if err := native.Stop(v.(*instance).handle, immediate); err != nil {
		debugLog("instance stop failed", zap.String("id", id), zap.Error(err))
	}
	return p.remove(id, native, false)
}

// StopAll stops every instance immediately and releases it
func (p *InstancePool) StopAll() int {
	native, _, ok := p.engine.session()
	if !ok {
		return 0
	}
	return p.drain(native)
}

// drain stops and releases all instances with the given binding
func (p *InstancePool) drain(native Native) (n int) {
	defer guard("stop_all", nil)

	p.instances.Range(func(key, _ any) bool {
		if p.remove(key.(string), native, true) {
			n++
		}
		return true
	})
	return n
}

// remove takes id out of the pool and releases its handle exactly once
func (p *InstancePool) remove(id string, native Native, stop bool) bool {
	v, ok := p.instances.LoadAndDelete(id)
	if !ok {
		return false
	}
	inst := v.(*instance)
	if !inst.released.CompareAndSwap(false, true) {
		return false
	}
	p.metrics.active.Store(p.count.Add(-1))

	if native == nil {
		return true
	}
	if stop {
		if err := native.Stop(inst.handle, true); err != nil {
			debugLog("instance stop failed", zap.String("id", id), zap.Error(err))
		}
	}
	if err := native.ReleaseInstance(inst.handle); err != nil {
		debugLog("instance release failed", zap.String("id", id), zap.Error(err))
	}
	return true
}

// PauseAll pauses every active instance
func (p *InstancePool) PauseAll() int {
	return p.setPaused(true)
}

// ResumeAll resumes every paused instance
func (p *InstancePool) ResumeAll() int {
	return p.setPaused(false)
}

func (p *InstancePool) setPaused(paused bool) (n int) {
	defer guard("set_paused", nil)

	native, _, ok := p.engine.session()
	if !ok {
		return 0
	}
	p.instances.Range(func(key, value any) bool {
		if err := native.SetPaused(value.(*instance).handle, paused); err != nil {
			debugLog("set paused failed", zap.String("id", key.(string)), zap.Error(err))
			return true
		}
		n++
		return true
	})
	return n
}

// Has reports whether id is still pooled
func (p *InstancePool) Has(id string) bool {
	_, ok := p.instances.Load(id)
	return ok
}

// IDs returns the ids of pooled instances (unordered)
func (p *InstancePool) IDs() []string {
	var ids []string
	p.instances.Range(func(key, _ any) bool {
		ids = append(ids, key.(string))
		return true
	})
	return ids
}

// Len returns the number of pooled instances
func (p *InstancePool) Len() int {
	return int(p.count.Load())
}

// Cap returns the instance cap
func (p *InstancePool) Cap() int {
	return int(p.capacity.Load())
}

func (p *InstancePool) setCapacity(n int) {
	p.capacity.Store(int64(n))
}
