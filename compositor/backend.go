package compositor

import (
	"sort"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"github.com/gogpu/wgpu/hal/software"
)

// Registered backend names.
const (
	BackendVulkan   = "vulkan"
	BackendSoftware = "software"
	BackendNoop     = "noop"
)

// autoPriority is the order New tries backends when none is requested.
// The noop backend renders nothing, so it is only used when asked for.
var autoPriority = []string{BackendVulkan, BackendSoftware}

var backends = gpucontext.NewRegistry[hal.Backend](
	gpucontext.WithPriority(autoPriority...),
)

func init() {
	RegisterBackend(BackendSoftware, func() hal.Backend { return software.API{} })
	RegisterBackend(BackendNoop, func() hal.Backend { return noop.API{} })
}

// RegisterBackend makes a HAL backend available under name. Registering an
// existing name replaces it.
func RegisterBackend(name string, factory func() hal.Backend) {
	backends.Register(name, factory)
}

// UnregisterBackend removes a backend. It is mainly useful in tests.
func UnregisterBackend(name string) {
	backends.Unregister(name)
}

// Backends returns the registered backend names in sorted order.
func Backends() []string {
	names := backends.Available()
	sort.Strings(names)
	return names
}

// PreferredBackend returns the name New tries first, or "" if nothing is
// registered.
func PreferredBackend() string {
	return backends.BestName()
}

type namedBackend struct {
	name    string
	backend hal.Backend
}

// candidates lists the backends New should try, in order.
func candidates(o *options) ([]namedBackend, error) {
	if o.backend != nil {
		return []namedBackend{{name: o.backend.Variant().String(), backend: o.backend}}, nil
	}
	if o.backendName != "" {
		if !backends.Has(o.backendName) {
			return nil, &backendError{name: o.backendName}
		}
		return []namedBackend{{name: o.backendName, backend: backends.Get(o.backendName)}}, nil
	}
	var out []namedBackend
	for _, name := range autoPriority {
		if backends.Has(name) {
			out = append(out, namedBackend{name: name, backend: backends.Get(name)})
		}
	}
	return out, nil
}

type backendError struct {
	name string
}

func (e *backendError) Error() string {
	return ErrUnknownBackend.Error() + ": " + e.name
}

func (e *backendError) Unwrap() error { return ErrUnknownBackend }
