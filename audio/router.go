package audio

import (
	"errors"

	"go.uber.org/zap"
)

// Route identifies which path served a playback request
type Route int

const (
	RouteNone Route = iota
	RouteEngine
	RouteFallback
)

func (r Route) String() string {
	switch r {
	case RouteEngine:
		return BackendFMOD
	case RouteFallback:
		return BackendFallback
	default:
		return BackendNone
	}
}

// Router sends playback to the engine and falls back to the speaker when the engine is unavailable
// Lookup, create or start failures of a ready engine are returned as-is.
type Router struct {
	engine   *Engine
	fallback *SoundManager
}

// NewRouter creates a router; fallback may be nil
func NewRouter(e *Engine, fallback *SoundManager) *Router {
	return &Router{engine: e, fallback: fallback}
}

// Play routes req and returns the engine instance id when the engine served it
func (r *Router) Play(req PlayRequest) (string, Route, error) {
	id, err := r.engine.Play(req)
	if err == nil {
		return id, RouteEngine, nil
	}
	if !errors.Is(err, ErrUnavailable) {
		return "", RouteNone, err
	}

	if r.fallback != nil && r.fallback.Play(EventPath(req.Event), req.Gain()) {
		debugLog("played through fallback", zap.String("event", req.Event))
		return "", RouteFallback, nil
	}
	return "", RouteNone, err
}
