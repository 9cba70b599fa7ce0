package service

// Service defines the lifecycle interface for host subsystems
// Services own long-lived resources: the audio engine, metrics registries, fallback output
//
// Lifecycle:
//  1. Construction (via factory)
//  2. Init(args...) - configuration and dependency lookup, no native work
//  3. Start() - acquire resources (engine init, device probes)
//  4. [runtime operation, driven by the host tick]
//  5. Stop() - release resources
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Dependencies returns names of services that must Init before this one
	// Return nil or empty slice if no dependencies
	Dependencies() []string

	// Init configures the service; the Hub passes itself as args[0]
	Init(args ...any) error

	// Start begins service operation
	// Called after all services have initialized
	Start() error

	// Stop halts service operation and releases resources
	// Must be idempotent - safe to call multiple times
	Stop() error
}
