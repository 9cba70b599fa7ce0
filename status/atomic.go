package status

import (
	"math"
	"sync/atomic"
	"unicode/utf8"
)

// MaxStringLen bounds stored strings so status lines stay single-row in consumers
const MaxStringLen = 120

// clipMarker ends a string cut at MaxStringLen
const clipMarker = "..."

// AtomicString holds a bounded string; the zero value reads as ""
type AtomicString struct {
	v atomic.Value // string
}

// Store sets val, cutting it at a rune boundary when longer than MaxStringLen
func (s *AtomicString) Store(val string) {
	s.v.Store(clip(val))
}

// Load returns the stored string
func (s *AtomicString) Load() string {
	val, _ := s.v.Load().(string)
	return val
}

func clip(val string) string {
	if len(val) <= MaxStringLen {
		return val
	}
	cut := MaxStringLen - len(clipMarker)
	for cut > 0 && !utf8.RuneStart(val[cut]) {
		cut--
	}
	return val[:cut] + clipMarker
}

// AtomicFloat is a float64 gauge that also keeps the largest value set
// The zero value reads as 0 with peak 0
type AtomicFloat struct {
	bits atomic.Uint64
	peak atomic.Uint64
}

// Set stores val and raises the peak when val exceeds it
func (f *AtomicFloat) Set(val float64) {
	f.bits.Store(math.Float64bits(val))
	for {
		old := f.peak.Load()
		if val <= math.Float64frombits(old) || f.peak.CompareAndSwap(old, math.Float64bits(val)) {
			return
		}
	}
}

// Get returns the current value
func (f *AtomicFloat) Get() float64 {
	return math.Float64frombits(f.bits.Load())
}

// Peak returns the largest value set so far
func (f *AtomicFloat) Peak() float64 {
	return math.Float64frombits(f.peak.Load())
}
