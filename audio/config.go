package audio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Process roles deciding whether the engine runs at all
const (
	RoleAuto   = "auto"   // probe for a playback device
	RoleClient = "client" // always audio-capable
	RoleServer = "server" // headless, initialization is skipped
)

// Instance cap bounds
const (
	MinInstances     = 32
	MaxInstancesCap  = 4096
	DefaultInstances = 512
	DefaultChannels  = 128
)

// Config is the host-provided configuration of the audio subsystem
// Field tags keep the key names of the original mod config file
type Config struct {
	Enabled           bool    `toml:"fmodEnabled"`
	DebugLogging      bool    `toml:"debugLogging"`
	MaxInstances      int     `toml:"maxInstances"`
	CustomLibraryPath string  `toml:"fmodCustomPath"`
	Role              string  `toml:"role"`
	Output            string  `toml:"output"`
	MaxChannels       int     `toml:"maxChannels"`
	DopplerScale      float64 `toml:"dopplerScale"`
	DistanceFactor    float64 `toml:"distanceFactor"`
	RolloffScale      float64 `toml:"rolloffScale"`
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() Config {
	cfg := Config{
		Enabled:        true,
		MaxInstances:   DefaultInstances,
		Role:           RoleAuto,
		Output:         "auto",
		MaxChannels:    DefaultChannels,
		DopplerScale:   1.0,
		DistanceFactor: 1.0,
		RolloffScale:   1.0,
	}
	// Shared-mode WASAPI avoids exclusive-mode conflicts with the host's own audio
	if runtime.GOOS == "windows" {
		cfg.Output = "wasapi"
	}
	return cfg
}

// Normalize returns a copy of c with out-of-range values clamped
func (c Config) Normalize() Config {
	if c.MaxInstances == 0 {
		c.MaxInstances = DefaultInstances
	}
	c.MaxInstances = min(max(c.MaxInstances, MinInstances), MaxInstancesCap)
	if c.MaxChannels <= 0 {
		c.MaxChannels = DefaultChannels
	}
	if c.DopplerScale < 0 {
		c.DopplerScale = 0
	}
	if c.DistanceFactor <= 0 {
		c.DistanceFactor = 1.0
	}
	if c.RolloffScale < 0 {
		c.RolloffScale = 0
	}
	switch c.Role {
	case RoleAuto, RoleClient, RoleServer:
	default:
		c.Role = RoleAuto
	}
	return c
}

// LoadConfigFile reads a TOML config; a missing file yields DefaultConfig
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg.Normalize(), nil
}

// SaveConfigFile writes cfg as TOML
func SaveConfigFile(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv overrides cfg from environment variables
func ApplyEnv(cfg Config) Config {
	if enabled := os.Getenv("FMODAPI_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			cfg.Enabled = val
		}
	}

	if dbg := os.Getenv("FMODAPI_DEBUG"); dbg != "" {
		if val, err := strconv.ParseBool(dbg); err == nil {
			cfg.DebugLogging = val
		}
	}

	if n := os.Getenv("FMODAPI_MAX_INSTANCES"); n != "" {
		if val, err := strconv.Atoi(n); err == nil {
			cfg.MaxInstances = val
		}
	}

	if path := os.Getenv("FMODAPI_CUSTOM_PATH"); path != "" {
		cfg.CustomLibraryPath = path
	}

	if role := os.Getenv("FMODAPI_ROLE"); role != "" {
		cfg.Role = role
	}

	return cfg.Normalize()
}
