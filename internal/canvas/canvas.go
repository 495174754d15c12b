// Package canvas rasterizes widget primitives with gg.
package canvas

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/ggtest/widget"
)

// ErrInvalidSize is returned by Render for non-positive dimensions.
var ErrInvalidSize = errors.New("canvas: invalid size")

type fontSources struct {
	regular *text.FontSource
	bold    *text.FontSource
}

// loadFonts parses the embedded Go fonts once per process.
var loadFonts = sync.OnceValues(func() (fontSources, error) {
	regular, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return fontSources{}, fmt.Errorf("canvas: parse Go Regular: %w", err)
	}
	bold, err := text.NewFontSource(gobold.TTF)
	if err != nil {
		return fontSources{}, fmt.Errorf("canvas: parse Go Bold: %w", err)
	}
	return fontSources{regular: regular, bold: bold}, nil
})

type faceKey struct {
	size float64
	bold bool
}

// Canvas draws primitives onto a CPU pixmap and measures text for layout.
// A Canvas is not safe for concurrent use.
type Canvas struct {
	fonts fontSources
	faces map[faceKey]text.Face
}

var _ widget.Measurer = (*Canvas)(nil)

// New returns a Canvas using the Go fonts.
func New() (*Canvas, error) {
	fonts, err := loadFonts()
	if err != nil {
		return nil, err
	}
	return &Canvas{fonts: fonts, faces: make(map[faceKey]text.Face)}, nil
}

func (c *Canvas) face(size float64, bold bool) text.Face {
	k := faceKey{size: size, bold: bold}
	if f, ok := c.faces[k]; ok {
		return f
	}
	src := c.fonts.regular
	if bold {
		src = c.fonts.bold
	}
	f := src.Face(size)
	c.faces[k] = f
	return f
}

// MeasureText implements widget.Measurer.
func (c *Canvas) MeasureText(content string, size float64, bold bool) widget.Size {
	w, h := text.Measure(content, c.face(size, bold))
	return widget.Size{Width: w, Height: h}
}

// Render clears a width x height pixmap to background and draws prims in
// order. The pixmap holds tightly packed RGBA rows.
func (c *Canvas) Render(width, height int, background gg.RGBA, prims []widget.Primitive) (*gg.Pixmap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	dc := gg.NewContext(width, height)
	defer dc.Close()
	dc.ClearWithColor(background)

	for i, p := range prims {
		var err error
		switch p := p.(type) {
		case widget.Quad:
			err = c.drawQuad(dc, p)
		case widget.Label:
			c.drawLabel(dc, p)
		default:
			err = fmt.Errorf("unknown primitive %T", p)
		}
		if err != nil {
			return nil, fmt.Errorf("canvas: primitive %d: %w", i, err)
		}
	}
	return dc.ResizeTarget(), nil
}

func (c *Canvas) drawQuad(dc *gg.Context, q widget.Quad) error {
	b := q.Bounds
	if b.Width <= 0 || b.Height <= 0 {
		return nil
	}
	shape := func() {
		if q.Radius > 0 {
			dc.DrawRoundedRectangle(b.X, b.Y, b.Width, b.Height, q.Radius)
		} else {
			dc.DrawRectangle(b.X, b.Y, b.Width, b.Height)
		}
	}

	shape()
	dc.SetRGBA(q.Color.R, q.Color.G, q.Color.B, q.Color.A)
	if err := dc.Fill(); err != nil {
		return err
	}
	if q.BorderWidth <= 0 {
		return nil
	}
	shape()
	dc.SetRGBA(q.BorderColor.R, q.BorderColor.G, q.BorderColor.B, q.BorderColor.A)
	dc.SetLineWidth(q.BorderWidth)
	return dc.Stroke()
}

func (c *Canvas) drawLabel(dc *gg.Context, l widget.Label) {
	if l.Content == "" {
		return
	}
	face := c.face(l.Size, l.Bold)
	dc.SetFont(face)
	dc.SetRGBA(l.Color.R, l.Color.G, l.Color.B, l.Color.A)
	// Origin is the top-left corner; DrawString takes the baseline.
	dc.DrawString(l.Content, l.Origin.X, l.Origin.Y+face.Metrics().Ascent)
}
