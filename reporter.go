package ggtest

import (
	"log/slog"
	"time"
)

// Reporter observes the progress of a Run. Calls happen on the goroutine
// running the trace.
type Reporter interface {
	// EventStarted is called before event index is applied.
	EventStarted(index int, kind string)
	// EventFinished is called after event index was applied. err is nil
	// on success.
	EventFinished(index int, kind string, err error, elapsed time.Duration)
	// RunFinished is called once when the run ends, successfully or not.
	RunFinished(result RunResult)
}

// RunResult summarizes a finished run.
type RunResult struct {
	// Title is the application title after the last applied event.
	Title string
	// Events is the number of events in the trace.
	Events int
	// Applied is the number of events applied successfully.
	Applied int
	// Captures lists the frames captured during the run, in order.
	Captures []CaptureRecord
	// Err is the error that ended the run, nil on success.
	Err error
	// Duration is the wall time of the run.
	Duration time.Duration
}

// Passed reports whether the run applied every event.
func (r RunResult) Passed() bool { return r.Err == nil }

// CaptureRecord identifies a frame captured by an event.
type CaptureRecord struct {
	Index  int
	Kind   string
	Name   string
	Digest string
}

// logReporter writes progress to Logger. It is used when no Reporter is
// configured.
type logReporter struct{}

func (logReporter) EventStarted(index int, kind string) {
	Logger().Debug("ggtest: event started", slog.Int("index", index), slog.String("kind", kind))
}

func (logReporter) EventFinished(index int, kind string, err error, elapsed time.Duration) {
	if err != nil {
		Logger().Debug("ggtest: event failed",
			slog.Int("index", index), slog.String("kind", kind),
			slog.Duration("elapsed", elapsed), slog.String("err", err.Error()))
		return
	}
	Logger().Debug("ggtest: event finished",
		slog.Int("index", index), slog.String("kind", kind), slog.Duration("elapsed", elapsed))
}

func (logReporter) RunFinished(r RunResult) {
	attrs := []any{
		slog.String("title", r.Title),
		slog.Int("events", r.Events),
		slog.Int("applied", r.Applied),
		slog.Int("captures", len(r.Captures)),
		slog.Duration("duration", r.Duration),
	}
	if r.Err != nil {
		Logger().Info("ggtest: run failed", append(attrs, slog.String("err", r.Err.Error()))...)
		return
	}
	Logger().Info("ggtest: run passed", attrs...)
}

type multiReporter []Reporter

func (m multiReporter) EventStarted(index int, kind string) {
	for _, r := range m {
		r.EventStarted(index, kind)
	}
}

func (m multiReporter) EventFinished(index int, kind string, err error, elapsed time.Duration) {
	for _, r := range m {
		r.EventFinished(index, kind, err, elapsed)
	}
}

func (m multiReporter) RunFinished(result RunResult) {
	for _, r := range m {
		r.RunFinished(result)
	}
}
