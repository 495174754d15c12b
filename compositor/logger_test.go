package compositor

import (
	"context"
	"log/slog"
	"testing"
)

func TestNopHandler(t *testing.T) {
	h := nopHandler{}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if h.Enabled(context.Background(), level) {
			t.Errorf("nopHandler.Enabled(%v) = true, want false", level)
		}
	}
	if err := h.Handle(context.Background(), slog.Record{}); err != nil {
		t.Errorf("nopHandler.Handle() = %v, want nil", err)
	}
	if _, ok := h.WithAttrs([]slog.Attr{slog.String("k", "v")}).(nopHandler); !ok {
		t.Error("WithAttrs did not return nopHandler")
	}
	if _, ok := h.WithGroup("g").(nopHandler); !ok {
		t.Error("WithGroup did not return nopHandler")
	}
}

func TestSetLoggerNil(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })
	SetLogger(slog.Default())
	SetLogger(nil)
	if _, ok := Logger().Handler().(nopHandler); !ok {
		t.Errorf("SetLogger(nil) handler = %T, want nopHandler", Logger().Handler())
	}
	if _, ok := NopLogger().Handler().(nopHandler); !ok {
		t.Error("NopLogger does not use nopHandler")
	}
}
