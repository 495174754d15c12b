package ggtest

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ggtest/compositor"
)

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("default logger should not be enabled for %v", level)
		}
	}
}

func TestSetLoggerPropagates(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	SetLogger(custom)

	if Logger() != custom {
		t.Error("Logger() did not return the custom logger")
	}
	if compositor.Logger() != custom {
		t.Error("SetLogger did not propagate to the compositor")
	}
	if hal.Logger() != custom {
		t.Error("SetLogger did not propagate to the HAL")
	}

	Logger().Info("test message", "key", "value")
	if !strings.Contains(buf.String(), "test message") {
		t.Errorf("log output = %q, want it to contain 'test message'", buf.String())
	}
}

func TestSetLoggerNilRestoresSilent(t *testing.T) {
	SetLogger(slog.Default())
	SetLogger(nil)

	for _, l := range []*slog.Logger{Logger(), compositor.Logger()} {
		if l == nil {
			t.Fatal("SetLogger(nil) left a nil logger")
		}
		if l.Enabled(context.Background(), slog.LevelError) {
			t.Error("SetLogger(nil) should produce a disabled logger")
		}
	}
}

func TestRunLogsSummary(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

	logReporter{}.RunFinished(RunResult{Title: "demo", Events: 2, Applied: 2})
	if !strings.Contains(buf.String(), "run passed") || !strings.Contains(buf.String(), "title=demo") {
		t.Errorf("log output = %q", buf.String())
	}
}

func TestLoggerConcurrentAccess(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = Logger()
		}()
		go func() {
			defer wg.Done()
			SetLogger(slog.Default())
		}()
	}
	wg.Wait()
}
