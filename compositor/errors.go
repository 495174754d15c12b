package compositor

import "errors"

// Sentinel errors for the compositor.
var (
	// ErrNoCompatibleDevice is returned by New when no backend yields an
	// adapter that can render off-screen. The caller may retry with another
	// power preference or backend.
	ErrNoCompatibleDevice = errors.New("compositor: no compatible device")

	// ErrUnknownBackend is returned when a backend name is not registered.
	ErrUnknownBackend = errors.New("compositor: unknown backend")

	// ErrInvalidSize is returned by Configure for a zero width or height.
	ErrInvalidSize = errors.New("compositor: invalid size")

	// ErrNotConfigured is returned by Present before Configure succeeded.
	ErrNotConfigured = errors.New("compositor: not configured")

	// ErrClosed is returned by any operation after Close.
	ErrClosed = errors.New("compositor: closed")
)
