package ggtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gogpu/ggtest/screenshot"
)

// Event kinds.
const (
	KindSendMessage     = "SendMessage"
	KindWait            = "Wait"
	KindAssertState     = "AssertState"
	KindMutateState     = "MutateState"
	KindCaptureAndCheck = "CaptureAndCheck"
	KindCaptureAndSave  = "CaptureAndSave"
)

// Event is one step of a trace. The set of events is closed: SendMessage,
// Wait, AssertState, MutateState, CaptureAndCheck and CaptureAndSave.
type Event[A Application[M], M any] interface {
	// Kind returns the event kind, one of the Kind constants.
	Kind() string
	apply(r *runner[A, M], index int) error
}

// SendMessage delivers Message to the application's Update. The returned
// command is discarded.
type SendMessage[A Application[M], M any] struct {
	Message M
}

func (SendMessage[A, M]) Kind() string { return KindSendMessage }

func (e SendMessage[A, M]) apply(r *runner[A, M], _ int) error {
	if cmd := r.app.Update(e.Message); cmd.Len() > 0 {
		Logger().Debug("ggtest: discarding command", slog.Int("actions", cmd.Len()))
	}
	return nil
}

// Wait blocks for Duration. No other event runs meanwhile.
type Wait[A Application[M], M any] struct {
	Duration time.Duration
}

func (Wait[A, M]) Kind() string { return KindWait }

func (e Wait[A, M]) apply(r *runner[A, M], _ int) error {
	if e.Duration <= 0 {
		return r.ctx.Err()
	}
	t := time.NewTimer(e.Duration)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-r.ctx.Done():
		return r.ctx.Err()
	}
}

// AssertState fails the run when Pred returns false for the current
// application state.
type AssertState[A Application[M], M any] struct {
	Name string
	Pred func(A) bool
}

func (AssertState[A, M]) Kind() string { return KindAssertState }

func (e AssertState[A, M]) apply(r *runner[A, M], index int) error {
	if e.Pred == nil {
		return fmt.Errorf("%w: assert %q has no predicate", ErrMalformedEvent, e.Name)
	}
	if !e.Pred(r.app) {
		return &AssertionError{Index: index, Kind: KindAssertState, Name: e.Name}
	}
	return nil
}

// MutateState calls Fn with the application, bypassing Update. Fn can only
// change state the application value refers to, so A is normally a
// pointer type.
type MutateState[A Application[M], M any] struct {
	Fn func(A)
}

func (MutateState[A, M]) Kind() string { return KindMutateState }

func (e MutateState[A, M]) apply(r *runner[A, M], _ int) error {
	if e.Fn == nil {
		return fmt.Errorf("%w: mutate has no function", ErrMalformedEvent)
	}
	e.Fn(r.app)
	return nil
}

// CaptureAndCheck captures a frame and fails the run when Pred returns
// false for it.
type CaptureAndCheck[A Application[M], M any] struct {
	Name string
	Pred func(*screenshot.Screenshot) bool
}

func (CaptureAndCheck[A, M]) Kind() string { return KindCaptureAndCheck }

func (e CaptureAndCheck[A, M]) apply(r *runner[A, M], index int) error {
	if e.Pred == nil {
		return fmt.Errorf("%w: check %q has no predicate", ErrMalformedEvent, e.Name)
	}
	shot, err := r.capture(index, KindCaptureAndCheck, e.Name)
	if err != nil {
		return err
	}
	if !e.Pred(shot) {
		return &AssertionError{Index: index, Kind: KindCaptureAndCheck, Name: e.Name, Digest: shot.DigestHex()}
	}
	return nil
}

// CaptureAndSave captures a frame and writes it to Path as PNG,
// overwriting any existing file.
type CaptureAndSave[A Application[M], M any] struct {
	Path string
}

func (CaptureAndSave[A, M]) Kind() string { return KindCaptureAndSave }

func (e CaptureAndSave[A, M]) apply(r *runner[A, M], index int) error {
	shot, err := r.capture(index, KindCaptureAndSave, e.Path)
	if err != nil {
		return err
	}
	return screenshot.Save(e.Path, shot)
}

// Trace is an ordered list of events with builder methods.
//
//	type trace = ggtest.Trace[*counter.App, counter.Message]
//	events := trace{}.
//	    Send(counter.Increment).
//	    Assert("is one", func(a *counter.App) bool { return a.Value() == 1 })
type Trace[A Application[M], M any] []Event[A, M]

// Send appends a SendMessage event.
func (t Trace[A, M]) Send(msg M) Trace[A, M] {
	return append(t, SendMessage[A, M]{Message: msg})
}

// Wait appends a Wait event.
func (t Trace[A, M]) Wait(d time.Duration) Trace[A, M] {
	return append(t, Wait[A, M]{Duration: d})
}

// Assert appends an AssertState event.
func (t Trace[A, M]) Assert(name string, pred func(A) bool) Trace[A, M] {
	return append(t, AssertState[A, M]{Name: name, Pred: pred})
}

// Mutate appends a MutateState event.
func (t Trace[A, M]) Mutate(fn func(A)) Trace[A, M] {
	return append(t, MutateState[A, M]{Fn: fn})
}

// Check appends a CaptureAndCheck event.
func (t Trace[A, M]) Check(name string, pred func(*screenshot.Screenshot) bool) Trace[A, M] {
	return append(t, CaptureAndCheck[A, M]{Name: name, Pred: pred})
}

// Save appends a CaptureAndSave event.
func (t Trace[A, M]) Save(path string) Trace[A, M] {
	return append(t, CaptureAndSave[A, M]{Path: path})
}

type runner[A Application[M], M any] struct {
	ctx      context.Context
	app      A
	opts     *options
	captures []CaptureRecord
}

func (r *runner[A, M]) capture(index int, kind, name string) (*screenshot.Screenshot, error) {
	shot, err := capture(r.ctx, r.app, r.opts.size, r.opts)
	if err != nil {
		return nil, err
	}
	r.captures = append(r.captures, CaptureRecord{Index: index, Kind: kind, Name: name, Digest: shot.DigestHex()})
	return shot, nil
}

// Run constructs an application from flags and applies events to it in
// order. It returns the application as left by the last applied event.
//
// The first failing event ends the run. Predicates returning false yield an
// *AssertionError; every other failure is wrapped in an *EventError that
// matches ErrInfrastructure. ctx is observed by Wait events and by
// compositor initialization.
func Run[A Application[M], M any, F any](
	ctx context.Context,
	newApp func(F) (A, Command[M]),
	flags F,
	events []Event[A, M],
	opts ...Option,
) (A, error) {
	o := newOptions(opts)
	rep := o.reporter()
	start := time.Now()

	app, cmd := newApp(flags)
	if cmd.Len() > 0 {
		Logger().Debug("ggtest: discarding initial command", slog.Int("actions", cmd.Len()))
	}
	r := &runner[A, M]{ctx: ctx, app: app, opts: &o}

	result := RunResult{Events: len(events)}
	for i, ev := range events {
		rep.EventStarted(i, ev.Kind())
		evStart := time.Now()
		err := ev.apply(r, i)
		if err != nil && !errors.Is(err, ErrAssertion) {
			err = &EventError{Index: i, Kind: ev.Kind(), Err: err}
		}
		rep.EventFinished(i, ev.Kind(), err, time.Since(evStart))
		if err != nil {
			result.Err = err
			break
		}
		result.Applied++
	}

	result.Title = r.app.Title()
	result.Captures = r.captures
	result.Duration = time.Since(start)
	rep.RunFinished(result)
	if result.Err != nil {
		return r.app, fmt.Errorf("ggtest: run %q: %w", result.Title, result.Err)
	}
	return r.app, nil
}
