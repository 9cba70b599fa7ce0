package audio

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
	loggerMu   sync.RWMutex

	// debug gates per-call tracing; toggled by Config.DebugLogging
	debug atomic.Bool
)

// Logger returns the audio package logger
// It uses a no-op logger until SetLogger is called
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		loggerMu.Lock()
		if logger == nil {
			logger = zap.NewNop()
		}
		loggerMu.Unlock()
	})
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// SetLogger replaces the package logger; nil restores the no-op logger
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerOnce.Do(func() {})
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
}

// SetDebug enables verbose per-call tracing
func SetDebug(enabled bool) {
	debug.Store(enabled)
}

func debugLog(msg string, fields ...zap.Field) {
	if debug.Load() {
		Logger().Debug(msg, fields...)
	}
}
