package status

import "sync/atomic"

// Metric keys published by the audio engine
const (
	KeyEngineState      = "engine.state"
	KeyEngineReady      = "engine.ready"
	KeyRoutingEnabled   = "engine.routing"
	KeyInitAttempts     = "engine.init_attempts"
	KeyInitFailures     = "engine.init_failures"
	KeyLastError        = "engine.last_error"
	KeyInstancesActive  = "instances.active"
	KeyInstancesStarted = "instances.started"
	KeyInstancesReaped  = "instances.reaped"
	KeyPlayRejected     = "instances.rejected"
	KeyBanksRegistered  = "banks.registered"
	KeyBanksLoaded      = "banks.loaded"
	KeyBankFailures     = "banks.failures"
	KeyListenerPushes   = "listener.pushes"
	KeyListenerSpeed    = "listener.speed"
	KeyLibraryTier      = "library.tier"
)

// Registry is the central metrics facade
// Components cache pointers during construction; hot paths write directly to atomics
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Lines renders every metric as "key=value" in sorted order per type
// Floats also carry their peak
func (r *Registry) Lines() []string {
	lines := make([]string, 0, r.TotalCount())
	r.Bools.Range(func(key string, ptr *atomic.Bool) {
		lines = append(lines, key+"="+formatBool(ptr.Load()))
	})
	r.Ints.Range(func(key string, ptr *atomic.Int64) {
		lines = append(lines, key+"="+formatInt(ptr.Load()))
	})
	r.Floats.Range(func(key string, ptr *AtomicFloat) {
		lines = append(lines, key+"="+formatFloat(ptr.Get())+" peak="+formatFloat(ptr.Peak()))
	})
	r.Strings.Range(func(key string, ptr *AtomicString) {
		lines = append(lines, key+"="+ptr.Load())
	})
	return lines
}
