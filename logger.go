package ggtest

import (
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ggtest/compositor"
)

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(compositor.NopLogger())
}

// SetLogger configures the logger for ggtest, the compositor and the wgpu
// HAL underneath it. By default nothing is logged.
//
// SetLogger is safe for concurrent use. Pass nil to restore silence.
//
// Log levels used by ggtest:
//   - [slog.LevelDebug]: per-event and per-frame detail
//   - [slog.LevelInfo]: lifecycle events (device ready, run finished)
//   - [slog.LevelWarn]: fallbacks (adapter or backend not as requested)
//
// Example:
//
//	ggtest.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = compositor.NopLogger()
	}
	loggerPtr.Store(l)
	compositor.SetLogger(l)
	hal.SetLogger(l)
}

// Logger returns the current ggtest logger. It is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
