package audio

import (
	"sync/atomic"

	"github.com/lixenwraith/fmodapi/service"
	"github.com/lixenwraith/fmodapi/status"
	"go.uber.org/zap"
)

// AudioService wraps Engine as a Service
// Handles graceful degradation: a failed engine start leaves the host running
type AudioService struct {
	config  Config
	backend Backend
	opts    []EngineOption

	audioEngine *Engine
	disabled    atomic.Bool
}

// NewService creates a new audio service
func NewService(cfg Config, backend Backend, opts ...EngineOption) *AudioService {
	return &AudioService{
		config:  cfg,
		backend: backend,
		opts:    opts,
	}
}

// Name implements Service
func (s *AudioService) Name() string {
	return "audio"
}

// Dependencies implements Service
func (s *AudioService) Dependencies() []string {
	return []string{"status"}
}

// Init implements Service
// args[0]: *service.Hub - used to resolve the status registry
func (s *AudioService) Init(args ...any) error {
	opts := append([]EngineOption(nil), s.opts...)
	if len(args) > 0 {
		if hub, ok := args[0].(*service.Hub); ok {
			if st, err := service.Lookup[*status.Service](hub, "status"); err == nil {
				opts = append(opts, WithRegistry(st.Registry()))
			}
		}
	}

	s.audioEngine = NewEngine(s.config, s.backend, opts...)
	return nil
}

// Start implements Service
// Initializes the engine when enabled; failures are recorded in the engine status, not returned
func (s *AudioService) Start() error {
	if s.audioEngine == nil || !s.config.Enabled {
		return nil
	}

	if err := s.audioEngine.EnsureInit(); err != nil {
		Logger().Warn("audio engine unavailable, continuing without it", zap.Error(err))
		s.disabled.Store(true)
	}
	return nil
}

// Stop implements Service
func (s *AudioService) Stop() error {
	if s.audioEngine == nil {
		return nil
	}
	return s.audioEngine.Close()
}

// IsDisabled returns true if the engine failed to start
func (s *AudioService) IsDisabled() bool {
	return s.disabled.Load()
}

// Engine returns the underlying Engine (nil before Init)
func (s *AudioService) Engine() *Engine {
	return s.audioEngine
}
