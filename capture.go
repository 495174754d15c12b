package ggtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/ggtest/compositor"
	"github.com/gogpu/ggtest/screenshot"
	"github.com/gogpu/ggtest/widget"
)

// Capture renders one frame of app at size and returns it as a GPU
// readback screenshot.
//
// Each call is independent: it creates a hidden surface and a compositor,
// lays out app.View once, presents, reads back and tears everything down.
func Capture(ctx context.Context, app Viewer, size Size, opts ...Option) (*screenshot.Screenshot, error) {
	o := newOptions(opts)
	return capture(ctx, app, size, &o)
}

func capture(ctx context.Context, app Viewer, size Size, o *options) (*screenshot.Screenshot, error) {
	surface, err := compositor.NewHiddenSurface(app.Title(), size.Width, size.Height)
	if err != nil {
		return nil, fmt.Errorf("ggtest: capture: %w", err)
	}
	defer surface.Close()

	c, err := compositor.New(ctx, o.compositorOptions()...)
	if err != nil {
		return nil, fmt.Errorf("ggtest: capture: %w", err)
	}
	defer func() { _ = c.Close() }()

	if err := c.ConfigureSurface(surface); err != nil {
		return nil, fmt.Errorf("ggtest: capture: %w", err)
	}

	prims := widget.Build(app.View(), size.viewport(), c.Measurer())
	if err := c.Present(prims, app.BackgroundColor()); err != nil {
		return nil, fmt.Errorf("ggtest: capture: %w", err)
	}

	shot, ok, err := c.Read()
	if err != nil {
		return nil, fmt.Errorf("ggtest: capture: %w", err)
	}
	if !ok {
		return nil, errors.New("ggtest: capture: compositor not configured")
	}

	Logger().Debug("ggtest: captured frame",
		slog.String("title", app.Title()),
		slog.String("backend", c.BackendName()),
		slog.Int("primitives", len(prims)),
		slog.String("digest", shot.String()))
	return shot, nil
}
