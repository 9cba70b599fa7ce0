package audio

import (
	"fmt"
)

// State is the engine lifecycle state
type State int32

const (
	StateNotInitialized State = iota
	StateInitializing
	StateReady
	StateFailed
	StateSkipped  // Non-audio process role, terminal
	StateShutdown // Equivalent to StateNotInitialized for future Init calls
)

func (s State) String() string {
	switch s {
	case StateNotInitialized:
		return "not_initialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateSkipped:
		return "skipped"
	case StateShutdown:
		return "shutdown"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Active audio backend identifiers reported in EngineStatus
const (
	BackendFMOD     = "FMOD"
	BackendFallback = "Fallback"
	BackendNone     = "None"
	BackendPending  = "Pending"
)

// Error codes recorded in EngineStatus besides native result codes
const (
	CodeOK      = 0
	CodeUnknown = -1
)

// EngineStatus is the current lifecycle snapshot; no history is kept
type EngineStatus struct {
	State       State
	Text        string
	Backend     string
	ErrorCode   int
	Initialized bool
}

func (s EngineStatus) String() string {
	return fmt.Sprintf("EngineStatus{status=%q, backend=%q, errorCode=%d, initialized=%t}",
		s.Text, s.Backend, s.ErrorCode, s.Initialized)
}

// DescribeCode returns a short human label for a status error code
func DescribeCode(code int) string {
	if code == CodeOK {
		return "Success"
	}
	return "Error"
}

// LoadResult summarizes one bank batch load
type LoadResult struct {
	Attempted int
	Succeeded int
	Skipped   int // Already loaded in the current engine generation
}

// Failed returns the number of attempted loads that did not succeed
func (r LoadResult) Failed() int {
	return r.Attempted - r.Succeeded
}
