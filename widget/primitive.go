package widget

import "github.com/gogpu/gg"

// Point is a position in pixels.
type Point struct {
	X, Y float64
}

// Size is a width and height in pixels.
type Size struct {
	Width, Height float64
}

// Rect is an axis-aligned rectangle in pixels.
type Rect struct {
	X, Y, Width, Height float64
}

// Shrink returns r inset by p on every side. Negative results clamp to zero.
func (r Rect) Shrink(p float64) Rect {
	out := Rect{X: r.X + p, Y: r.Y + p, Width: r.Width - 2*p, Height: r.Height - 2*p}
	out.Width = max(out.Width, 0)
	out.Height = max(out.Height, 0)
	return out
}

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Primitive is one drawing command produced by a layout pass.
// The concrete types are Quad and Label.
type Primitive interface {
	primitive()
}

// Quad is a filled rectangle with optional rounded corners and border.
type Quad struct {
	Bounds      Rect
	Color       gg.RGBA
	Radius      float64
	BorderWidth float64
	BorderColor gg.RGBA
}

// Label is a single line of text whose top-left corner sits at Origin.
type Label struct {
	Content string
	Origin  Point
	Size    float64
	Color   gg.RGBA
	Bold    bool
}

func (Quad) primitive()  {}
func (Label) primitive() {}
