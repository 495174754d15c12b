package widget

import "github.com/gogpu/gg"

// Alignment positions children across the main axis of a Column or Row.
type Alignment uint8

const (
	AlignStart Alignment = iota
	AlignCenter
	AlignEnd
)

func (a Alignment) offset(free float64) float64 {
	switch a {
	case AlignCenter:
		return free / 2
	case AlignEnd:
		return free
	default:
		return 0
	}
}

// linear lays children out along one axis.
type linear struct {
	children []Element
	spacing  float64
	padding  float64
	align    Alignment
	vertical bool
}

// main and cross project a size onto the layout axes.
func (l *linear) main(s Size) float64 {
	if l.vertical {
		return s.Height
	}
	return s.Width
}

func (l *linear) cross(s Size) float64 {
	if l.vertical {
		return s.Width
	}
	return s.Height
}

func (l *linear) measure(m Measurer, limits Size) Size {
	inner := Size{Width: max(limits.Width-2*l.padding, 0), Height: max(limits.Height-2*l.padding, 0)}
	var along, across float64
	for i, c := range l.children {
		s := c.Measure(m, inner)
		along += l.main(s)
		if i > 0 {
			along += l.spacing
		}
		across = max(across, l.cross(s))
	}
	along += 2 * l.padding
	across += 2 * l.padding
	if l.vertical {
		return clampSize(Size{Width: across, Height: along}, limits)
	}
	return clampSize(Size{Width: along, Height: across}, limits)
}

func (l *linear) draw(m Measurer, bounds Rect, out []Primitive) []Primitive {
	inner := bounds.Shrink(l.padding)
	cursor := 0.0
	for _, c := range l.children {
		s := c.Measure(m, inner.Size())
		var r Rect
		if l.vertical {
			r = Rect{
				X:      inner.X + l.align.offset(inner.Width-s.Width),
				Y:      inner.Y + cursor,
				Width:  s.Width,
				Height: s.Height,
			}
		} else {
			r = Rect{
				X:      inner.X + cursor,
				Y:      inner.Y + l.align.offset(inner.Height-s.Height),
				Width:  s.Width,
				Height: s.Height,
			}
		}
		out = c.Draw(m, r, out)
		cursor += l.main(s) + l.spacing
	}
	return out
}

// ColumnElement stacks children vertically.
type ColumnElement struct{ l linear }

// Column returns a vertical stack of children.
func Column(children ...Element) *ColumnElement {
	return &ColumnElement{l: linear{children: children, vertical: true}}
}

// Spacing sets the gap between children.
func (c *ColumnElement) Spacing(px float64) *ColumnElement { c.l.spacing = px; return c }

// Padding sets the inset around all children.
func (c *ColumnElement) Padding(px float64) *ColumnElement { c.l.padding = px; return c }

// Align sets horizontal alignment of children.
func (c *ColumnElement) Align(a Alignment) *ColumnElement { c.l.align = a; return c }

// Push appends a child.
func (c *ColumnElement) Push(e Element) *ColumnElement {
	c.l.children = append(c.l.children, e)
	return c
}

func (c *ColumnElement) Measure(m Measurer, limits Size) Size { return c.l.measure(m, limits) }

func (c *ColumnElement) Draw(m Measurer, bounds Rect, out []Primitive) []Primitive {
	return c.l.draw(m, bounds, out)
}

// RowElement places children side by side.
type RowElement struct{ l linear }

// Row returns a horizontal run of children.
func Row(children ...Element) *RowElement {
	return &RowElement{l: linear{children: children}}
}

// Spacing sets the gap between children.
func (r *RowElement) Spacing(px float64) *RowElement { r.l.spacing = px; return r }

// Padding sets the inset around all children.
func (r *RowElement) Padding(px float64) *RowElement { r.l.padding = px; return r }

// Align sets vertical alignment of children.
func (r *RowElement) Align(a Alignment) *RowElement { r.l.align = a; return r }

// Push appends a child.
func (r *RowElement) Push(e Element) *RowElement {
	r.l.children = append(r.l.children, e)
	return r
}

func (r *RowElement) Measure(m Measurer, limits Size) Size { return r.l.measure(m, limits) }

func (r *RowElement) Draw(m Measurer, bounds Rect, out []Primitive) []Primitive {
	return r.l.draw(m, bounds, out)
}

// ContainerElement wraps one child with padding, an optional background
// and optional centering. A filling container takes all available space.
type ContainerElement struct {
	child      Element
	padding    float64
	background *gg.RGBA
	center     bool
	fill       bool
}

// Container wraps child.
func Container(child Element) *ContainerElement {
	return &ContainerElement{child: child}
}

// Padding sets the inset around the child.
func (c *ContainerElement) Padding(px float64) *ContainerElement { c.padding = px; return c }

// Background fills the container's bounds before drawing the child.
func (c *ContainerElement) Background(col gg.RGBA) *ContainerElement {
	c.background = &col
	return c
}

// Center centers the child in both axes and makes the container fill.
func (c *ContainerElement) Center() *ContainerElement {
	c.center = true
	c.fill = true
	return c
}

// Fill makes the container take all available space.
func (c *ContainerElement) Fill() *ContainerElement { c.fill = true; return c }

func (c *ContainerElement) Measure(m Measurer, limits Size) Size {
	if c.fill {
		return limits
	}
	var s Size
	if c.child != nil {
		s = c.child.Measure(m, Size{
			Width:  max(limits.Width-2*c.padding, 0),
			Height: max(limits.Height-2*c.padding, 0),
		})
	}
	return clampSize(Size{Width: s.Width + 2*c.padding, Height: s.Height + 2*c.padding}, limits)
}

func (c *ContainerElement) Draw(m Measurer, bounds Rect, out []Primitive) []Primitive {
	if c.background != nil {
		out = append(out, Quad{Bounds: bounds, Color: *c.background})
	}
	if c.child == nil {
		return out
	}
	inner := bounds.Shrink(c.padding)
	s := c.child.Measure(m, inner.Size())
	r := Rect{X: inner.X, Y: inner.Y, Width: s.Width, Height: s.Height}
	if c.center {
		r.X += (inner.Width - s.Width) / 2
		r.Y += (inner.Height - s.Height) / 2
	}
	return c.child.Draw(m, r, out)
}
