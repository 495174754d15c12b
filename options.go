package ggtest

import (
	"os"

	"github.com/gogpu/ggtest/compositor"
)

// Environment variables read by the harness.
const (
	// EnvUpdate regenerates golden images when set to 1, true or yes.
	EnvUpdate = "GGTEST_UPDATE"
	// EnvBackend names the compositor backend to use, such as "software".
	EnvBackend = "GGTEST_BACKEND"
)

// Option configures Run, Capture and AssertGolden.
//
// Example:
//
//	app, err := ggtest.Run(ctx, counter.New, nil, events,
//	    ggtest.WithSize(ggtest.Size{Width: 320, Height: 240}),
//	    ggtest.WithCompositorOptions(compositor.WithBackendName("software")))
type Option func(*options)

type options struct {
	size       Size
	compositor []compositor.Option
	reporters  []Reporter
	goldenDir  string
}

func defaultOptions() options {
	return options{
		size:      DefaultSize,
		goldenDir: "testdata/golden",
	}
}

func newOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// compositorOptions returns the compositor options, led by the backend
// named in GGTEST_BACKEND so explicit options override it.
func (o *options) compositorOptions() []compositor.Option {
	out := make([]compositor.Option, 0, len(o.compositor)+1)
	if name := os.Getenv(EnvBackend); name != "" {
		out = append(out, compositor.WithBackendName(name))
	}
	return append(out, o.compositor...)
}

func (o *options) reporter() Reporter {
	switch len(o.reporters) {
	case 0:
		return logReporter{}
	case 1:
		return o.reporters[0]
	default:
		return multiReporter(o.reporters)
	}
}

// WithSize sets the frame size used by capture events. The default is
// DefaultSize.
func WithSize(s Size) Option {
	return func(o *options) {
		o.size = s
	}
}

// WithCompositorOptions passes options to every compositor the harness
// creates.
func WithCompositorOptions(opts ...compositor.Option) Option {
	return func(o *options) {
		o.compositor = append(o.compositor, opts...)
	}
}

// WithReporter adds a Reporter notified of run progress. Reporters are
// called in the order they were added.
func WithReporter(r Reporter) Option {
	return func(o *options) {
		if r != nil {
			o.reporters = append(o.reporters, r)
		}
	}
}

// WithGoldenDir sets the directory AssertGolden reads and writes.
// The default is testdata/golden.
func WithGoldenDir(dir string) Option {
	return func(o *options) {
		o.goldenDir = dir
	}
}
