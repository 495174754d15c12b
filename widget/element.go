package widget

import (
	"github.com/gogpu/gg"
	"golang.org/x/text/unicode/norm"
)

// Measurer reports the size of a line of text. The renderer that draws
// Label primitives supplies it so layout and drawing agree on metrics.
type Measurer interface {
	MeasureText(content string, size float64, bold bool) Size
}

// Element is a node of a renderable description returned by an
// application's View.
type Element interface {
	// Measure returns the size the element wants within limits.
	Measure(m Measurer, limits Size) Size
	// Draw appends the primitives of the element placed at bounds.
	Draw(m Measurer, bounds Rect, out []Primitive) []Primitive
}

// Build runs one layout pass of root over a viewport of the given size and
// returns the primitives in painter's order.
func Build(root Element, viewport Size, m Measurer) []Primitive {
	if root == nil {
		return nil
	}
	return root.Draw(m, Rect{Width: viewport.Width, Height: viewport.Height}, nil)
}

func clampSize(s, limits Size) Size {
	return Size{Width: min(s.Width, limits.Width), Height: min(s.Height, limits.Height)}
}

// DefaultTextSize is the text size used when none is set.
const DefaultTextSize = 16

// TextElement is a single line of text.
type TextElement struct {
	content string
	size    float64
	color   gg.RGBA
	bold    bool
}

// Text returns a text element. The content is normalized to NFC so that
// canonically equivalent strings render and measure identically.
func Text(content string) *TextElement {
	return &TextElement{
		content: norm.NFC.String(content),
		size:    DefaultTextSize,
		color:   gg.Black,
	}
}

// Size sets the text size in pixels.
func (t *TextElement) Size(px float64) *TextElement {
	t.size = px
	return t
}

// Color sets the text color.
func (t *TextElement) Color(c gg.RGBA) *TextElement {
	t.color = c
	return t
}

// Bold selects the bold face.
func (t *TextElement) Bold() *TextElement {
	t.bold = true
	return t
}

// Content returns the normalized text.
func (t *TextElement) Content() string { return t.content }

func (t *TextElement) Measure(m Measurer, limits Size) Size {
	return clampSize(m.MeasureText(t.content, t.size, t.bold), limits)
}

func (t *TextElement) Draw(_ Measurer, bounds Rect, out []Primitive) []Primitive {
	return append(out, Label{
		Content: t.content,
		Origin:  Point{X: bounds.X, Y: bounds.Y},
		Size:    t.size,
		Color:   t.color,
		Bold:    t.bold,
	})
}

// ButtonElement is a labelled, rounded box. The harness drives state
// through messages, so a button only describes appearance.
type ButtonElement struct {
	label      *TextElement
	padding    float64
	background gg.RGBA
	radius     float64
}

// Button returns a button showing label.
func Button(label string) *ButtonElement {
	return &ButtonElement{
		label:      Text(label).Color(gg.White),
		padding:    10,
		background: gg.RGB(0.21, 0.46, 0.87),
		radius:     4,
	}
}

// Padding sets the space between the label and the button edge.
func (b *ButtonElement) Padding(p float64) *ButtonElement {
	b.padding = p
	return b
}

// Background sets the fill color.
func (b *ButtonElement) Background(c gg.RGBA) *ButtonElement {
	b.background = c
	return b
}

// TextSize sets the label size in pixels.
func (b *ButtonElement) TextSize(px float64) *ButtonElement {
	b.label.Size(px)
	return b
}

func (b *ButtonElement) Measure(m Measurer, limits Size) Size {
	s := b.label.Measure(m, limits)
	return clampSize(Size{Width: s.Width + 2*b.padding, Height: s.Height + 2*b.padding}, limits)
}

func (b *ButtonElement) Draw(m Measurer, bounds Rect, out []Primitive) []Primitive {
	out = append(out, Quad{Bounds: bounds, Color: b.background, Radius: b.radius})
	return b.label.Draw(m, bounds.Shrink(b.padding), out)
}

// SpaceElement takes up room and draws nothing.
type SpaceElement struct {
	size Size
}

// Space returns an empty element of the given size.
func Space(width, height float64) *SpaceElement {
	return &SpaceElement{size: Size{Width: width, Height: height}}
}

func (s *SpaceElement) Measure(_ Measurer, limits Size) Size {
	return clampSize(s.size, limits)
}

func (s *SpaceElement) Draw(_ Measurer, _ Rect, out []Primitive) []Primitive {
	return out
}
