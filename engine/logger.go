package engine

import (
	"log/slog"
	"sync/atomic"

	"github.com/lixenwraith/rainfield/mask"
)

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(slog.DiscardHandler))
}

// SetLogger configures logging for the engine and the mask builder
// By default nothing is logged, nil restores the silent default
//
// Levels used:
//   - Debug: mask rebuilds, subliminal spawns, resize handling
//   - Info: lifecycle (init, text change)
//   - Warn: degraded modes (readback denied, present failures)
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	loggerPtr.Store(l)
	mask.SetLogger(l.With("component", "mask"))
}

// Logger returns the active engine logger
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
