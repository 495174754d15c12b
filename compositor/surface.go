package compositor

import "fmt"

// Surface is a hidden, undecorated render target handle. It is never shown
// and exists only to give a frame its size and title.
type Surface struct {
	title  string
	width  uint32
	height uint32
	closed bool
}

// NewHiddenSurface returns a surface of the given size.
func NewHiddenSurface(title string, width, height uint32) (*Surface, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: surface %dx%d", ErrInvalidSize, width, height)
	}
	return &Surface{title: title, width: width, height: height}, nil
}

// Title returns the title the surface was created with.
func (s *Surface) Title() string { return s.title }

// Size returns the surface size in pixels.
func (s *Surface) Size() (width, height uint32) { return s.width, s.height }

// Visible always reports false.
func (s *Surface) Visible() bool { return false }

// Decorated always reports false.
func (s *Surface) Decorated() bool { return false }

// Close discards the surface. Closing twice is a no-op.
func (s *Surface) Close() { s.closed = true }

// Closed reports whether Close was called.
func (s *Surface) Closed() bool { return s.closed }
