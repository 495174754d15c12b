package compositor

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Option configures a Compositor during New.
type Option func(*options)

type options struct {
	power        gputypes.PowerPreference
	backend      hal.Backend
	backendName  string
	label        string
	antialiasing bool
}

func defaultOptions() options {
	return options{
		power: gputypes.PowerPreferenceLowPower,
		label: "ggtest",
	}
}

// WithPowerPreference selects which adapter kind New prefers.
// The default is low power.
func WithPowerPreference(p gputypes.PowerPreference) Option {
	return func(o *options) {
		o.power = p
	}
}

// WithAntialiasing requests an antialiasing-capable setup. Antialiasing
// switches the default adapter preference to high performance.
func WithAntialiasing(enabled bool) Option {
	return func(o *options) {
		o.antialiasing = enabled
		if enabled {
			o.power = gputypes.PowerPreferenceHighPerformance
		}
	}
}

// WithBackend opens the device on the given backend handle instead of
// consulting the registry. Use it to share one process-wide backend
// between compositors explicitly.
//
//	c, err := compositor.New(ctx, compositor.WithBackend(software.API{}))
func WithBackend(b hal.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithBackendName selects a registered backend by name, such as
// BackendSoftware or BackendNoop. An empty name keeps automatic selection.
func WithBackendName(name string) Option {
	return func(o *options) {
		o.backendName = name
	}
}

// WithLabel sets the prefix of GPU debug labels.
func WithLabel(label string) Option {
	return func(o *options) {
		o.label = label
	}
}
