package ggtest_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogpu/ggtest"
	"github.com/gogpu/ggtest/compositor"
	"github.com/gogpu/ggtest/internal/counter"
	"github.com/gogpu/ggtest/screenshot"
)

type trace = ggtest.Trace[*counter.App, counter.Message]

func noopOptions(extra ...ggtest.Option) []ggtest.Option {
	opts := []ggtest.Option{
		ggtest.WithSize(ggtest.Size{Width: 64, Height: 48}),
		ggtest.WithCompositorOptions(compositor.WithBackendName(compositor.BackendNoop)),
	}
	return append(opts, extra...)
}

func TestAssertionFailureIsNotInfrastructure(t *testing.T) {
	events := trace{}.Assert("never", func(*counter.App) bool { return false })

	_, err := ggtest.Run(context.Background(), counter.New, counter.Flags{}, events)
	if err == nil {
		t.Fatal("Run: expected error, got nil")
	}
	if !ggtest.IsAssertion(err) {
		t.Errorf("IsAssertion(%v) = false, want true", err)
	}
	if ggtest.IsInfrastructure(err) {
		t.Errorf("IsInfrastructure(%v) = true, want false", err)
	}
	var ae *ggtest.AssertionError
	if !errors.As(err, &ae) {
		t.Fatalf("errors.As(*AssertionError) failed for %v", err)
	}
	if ae.Index != 0 || ae.Kind != ggtest.KindAssertState || ae.Name != "never" {
		t.Errorf("AssertionError = %+v", ae)
	}
}

func TestFirstFailureStopsRun(t *testing.T) {
	events := trace{}.
		Send(counter.Increment).
		Assert("is five", func(a *counter.App) bool { return a.Value() == 5 }).
		Send(counter.Increment)

	rec := &recorder{}
	app, err := ggtest.Run(context.Background(), counter.New, counter.Flags{}, events, ggtest.WithReporter(rec))
	if !ggtest.IsAssertion(err) {
		t.Fatalf("Run: got %v, want assertion failure", err)
	}
	if app.Value() != 1 {
		t.Errorf("Value() = %d, want 1 (events after the failure must not run)", app.Value())
	}
	if len(rec.started) != 2 {
		t.Errorf("started %d events, want 2", len(rec.started))
	}
	if rec.result.Applied != 1 || rec.result.Events != 3 || rec.result.Passed() {
		t.Errorf("RunResult = %+v", rec.result)
	}
}

func TestCaptureCheckFailureCarriesDigest(t *testing.T) {
	events := trace{}.Check("reject", func(*screenshot.Screenshot) bool { return false })

	_, err := ggtest.Run(context.Background(), counter.New, counter.Flags{}, events, noopOptions()...)
	var ae *ggtest.AssertionError
	if !errors.As(err, &ae) {
		t.Fatalf("Run: got %v, want *AssertionError", err)
	}
	if ae.Kind != ggtest.KindCaptureAndCheck || len(ae.Digest) != 64 {
		t.Errorf("AssertionError = %+v, want capture kind and a hex digest", ae)
	}
}

func TestCaptureUsesConfiguredSize(t *testing.T) {
	var got *screenshot.Screenshot
	events := trace{}.Check("record", func(s *screenshot.Screenshot) bool {
		got = s
		return true
	})
	if _, err := ggtest.Run(context.Background(), counter.New, counter.Flags{}, events, noopOptions()...); err != nil {
		t.Fatal(err)
	}
	if got.Width() != 64 || got.Height() != 48 {
		t.Errorf("frame = %dx%d, want 64x48", got.Width(), got.Height())
	}
	if got.Provenance() != screenshot.GPUReadback {
		t.Errorf("provenance = %v, want GPUReadback", got.Provenance())
	}
}

func TestSaveFailureIsInfrastructure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "frame.png")
	events := trace{}.Send(counter.Increment).Save(path)

	_, err := ggtest.Run(context.Background(), counter.New, counter.Flags{}, events, noopOptions()...)
	if !ggtest.IsInfrastructure(err) {
		t.Fatalf("IsInfrastructure(%v) = false, want true", err)
	}
	var ee *ggtest.EventError
	if !errors.As(err, &ee) {
		t.Fatalf("errors.As(*EventError) failed for %v", err)
	}
	if ee.Index != 1 || ee.Kind != ggtest.KindCaptureAndSave {
		t.Errorf("EventError = %+v", ee)
	}
}

func TestNilFunctionIsInfrastructure(t *testing.T) {
	tests := []struct {
		name  string
		event ggtest.Event[*counter.App, counter.Message]
		kind  string
	}{
		{"assert", ggtest.AssertState[*counter.App, counter.Message]{Name: "empty"}, ggtest.KindAssertState},
		{"mutate", ggtest.MutateState[*counter.App, counter.Message]{}, ggtest.KindMutateState},
		{"check", ggtest.CaptureAndCheck[*counter.App, counter.Message]{Name: "empty"}, ggtest.KindCaptureAndCheck},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := trace{}.Send(counter.Increment)
			events = append(events, tt.event)

			app, err := ggtest.Run(context.Background(), counter.New, counter.Flags{}, events, noopOptions()...)
			if !ggtest.IsInfrastructure(err) {
				t.Fatalf("IsInfrastructure(%v) = false, want true", err)
			}
			if !errors.Is(err, ggtest.ErrMalformedEvent) {
				t.Errorf("errors.Is(%v, ErrMalformedEvent) = false", err)
			}
			var ee *ggtest.EventError
			if !errors.As(err, &ee) || ee.Index != 1 || ee.Kind != tt.kind {
				t.Errorf("EventError = %+v, want index 1 kind %s", ee, tt.kind)
			}
			if app.Value() != 1 {
				t.Errorf("Value() = %d, want 1", app.Value())
			}
		})
	}
}

func TestNoDeviceIsInfrastructure(t *testing.T) {
	events := trace{}.Check("any", func(*screenshot.Screenshot) bool { return true })
	_, err := ggtest.Run(context.Background(), counter.New, counter.Flags{}, events,
		ggtest.WithCompositorOptions(compositor.WithBackendName("no-such-backend")))
	if !ggtest.IsInfrastructure(err) {
		t.Fatalf("IsInfrastructure(%v) = false, want true", err)
	}
	if !errors.Is(err, compositor.ErrUnknownBackend) {
		t.Errorf("errors.Is(%v, ErrUnknownBackend) = false", err)
	}
}

func TestWaitHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := trace{}.Wait(time.Hour)
	_, err := ggtest.Run(ctx, counter.New, counter.Flags{}, events)
	if !ggtest.IsInfrastructure(err) || !errors.Is(err, context.Canceled) {
		t.Fatalf("Run: got %v, want canceled infrastructure error", err)
	}
}

func TestWaitBlocks(t *testing.T) {
	start := time.Now()
	events := trace{}.Wait(20 * time.Millisecond).Send(counter.Increment)
	app, err := ggtest.Run(context.Background(), counter.New, counter.Flags{}, events)
	if err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("run took %v, want at least 20ms", elapsed)
	}
	if app.Value() != 1 {
		t.Errorf("Value() = %d, want 1", app.Value())
	}
}

func TestEventStructsCompose(t *testing.T) {
	events := []ggtest.Event[*counter.App, counter.Message]{
		ggtest.SendMessage[*counter.App, counter.Message]{Message: counter.Increment},
		ggtest.MutateState[*counter.App, counter.Message]{Fn: func(a *counter.App) { a.SetValue(a.Value() * 10) }},
		ggtest.AssertState[*counter.App, counter.Message]{Name: "ten", Pred: func(a *counter.App) bool { return a.Value() == 10 }},
	}
	for _, ev := range events {
		if ev.Kind() == "" {
			t.Errorf("%T has empty kind", ev)
		}
	}
	if _, err := ggtest.Run(context.Background(), counter.New, counter.Flags{}, events); err != nil {
		t.Fatal(err)
	}
}

func TestCommandHelpers(t *testing.T) {
	if n := ggtest.None[int]().Len(); n != 0 {
		t.Errorf("None().Len() = %d, want 0", n)
	}
	one := ggtest.Perform(func(context.Context) int { return 1 })
	two := ggtest.Perform(func(context.Context) int { return 2 })
	got := ggtest.Batch(one, ggtest.None[int](), two).Execute(context.Background())
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Execute() = %v, want [1 2]", got)
	}
}

type recorder struct {
	started  []string
	finished []error
	result   ggtest.RunResult
}

func (r *recorder) EventStarted(_ int, kind string) { r.started = append(r.started, kind) }

func (r *recorder) EventFinished(_ int, _ string, err error, _ time.Duration) {
	r.finished = append(r.finished, err)
}

func (r *recorder) RunFinished(res ggtest.RunResult) { r.result = res }
