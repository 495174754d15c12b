package compositor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"unsafe"

	"github.com/gogpu/gg"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/software"

	"github.com/gogpu/ggtest/internal/canvas"
	"github.com/gogpu/ggtest/screenshot"
	"github.com/gogpu/ggtest/widget"
)

// Compositor renders frames into an off-screen texture and reads them back.
//
// A Compositor exclusively owns its instance, device, queue, target texture
// and readback buffer. It is not safe for concurrent use.
//
// Lifecycle:
//
//	c, err := compositor.New(ctx)
//	defer c.Close()
//	err = c.Configure(1024, 768)
//	err = c.Present(prims, background)
//	shot, ok, err := c.Read()
type Compositor struct {
	label   string
	backend string

	instance hal.Instance
	adapter  hal.Adapter
	device   hal.Device
	queue    hal.Queue
	info     gputypes.AdapterInfo

	// tightRows is set for the software device, whose texture-to-buffer
	// copies pack rows tightly regardless of BytesPerRow.
	tightRows bool

	canvas *canvas.Canvas
	target *target
	closed bool
}

var _ gpucontext.DeviceProvider = (*Compositor)(nil)

// opened is the result of device negotiation.
type opened struct {
	backend  string
	instance hal.Instance
	adapter  hal.Adapter
	device   hal.Device
	queue    hal.Queue
	info     gputypes.AdapterInfo
}

func (o *opened) destroy() {
	if o.device != nil {
		o.device.Destroy()
	}
	if o.instance != nil {
		o.instance.Destroy()
	}
}

// New selects a backend and adapter and opens a device. It blocks until the
// device is ready or ctx is done. When no backend yields a usable adapter,
// the error wraps ErrNoCompatibleDevice.
func New(ctx context.Context, opts ...Option) (*Compositor, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	cv, err := canvas.New()
	if err != nil {
		return nil, fmt.Errorf("compositor: %w", err)
	}

	type result struct {
		dev *opened
		err error
	}
	ch := make(chan result, 1)
	go func() {
		dev, err := openDevice(&o)
		ch <- result{dev: dev, err: err}
	}()

	var r result
	select {
	case r = <-ch:
	case <-ctx.Done():
		// Release the device if negotiation finishes after we gave up.
		go func() {
			if late := <-ch; late.dev != nil {
				late.dev.destroy()
			}
		}()
		return nil, fmt.Errorf("compositor: initialize: %w", ctx.Err())
	}
	if r.err != nil {
		return nil, r.err
	}

	Logger().Info("compositor: device ready",
		slog.String("backend", r.dev.backend),
		slog.String("adapter", r.dev.info.Name),
		slog.String("type", r.dev.info.DeviceType.String()),
		slog.Bool("antialiasing", o.antialiasing))

	return &Compositor{
		label:    o.label,
		backend:  r.dev.backend,
		instance: r.dev.instance,
		adapter:  r.dev.adapter,
		device:   r.dev.device,
		queue:    r.dev.queue,
		info:     r.dev.info,
		canvas:   cv,

		tightRows: packsRowsTightly(r.dev.device),
	}, nil
}

func openDevice(o *options) (*opened, error) {
	list, err := candidates(o)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, nb := range list {
		dev, err := openOn(nb, o.power)
		if err != nil {
			Logger().Warn("compositor: backend unavailable",
				slog.String("backend", nb.name), slog.String("err", err.Error()))
			lastErr = err
			continue
		}
		return dev, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoCompatibleDevice, lastErr)
	}
	return nil, ErrNoCompatibleDevice
}

func openOn(nb namedBackend, power gputypes.PowerPreference) (*opened, error) {
	instance, err := nb.backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, errors.New("no adapters")
	}
	selected := pickAdapter(adapters, power)
	dev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device %q: %w", selected.Info.Name, err)
	}
	return &opened{
		backend:  nb.name,
		instance: instance,
		adapter:  selected.Adapter,
		device:   dev.Device,
		queue:    dev.Queue,
		info:     selected.Info,
	}, nil
}

// pickAdapter returns the first adapter of the preferred kind, then the
// first of the other hardware kind, then the first adapter.
func pickAdapter(adapters []hal.ExposedAdapter, power gputypes.PowerPreference) *hal.ExposedAdapter {
	order := []gputypes.DeviceType{gputypes.DeviceTypeIntegratedGPU, gputypes.DeviceTypeDiscreteGPU}
	if power == gputypes.PowerPreferenceHighPerformance {
		order[0], order[1] = order[1], order[0]
	}
	for _, want := range order {
		for i := range adapters {
			if adapters[i].Info.DeviceType == want {
				return &adapters[i]
			}
		}
	}
	Logger().Warn("compositor: no adapter matches preference, using first",
		slog.String("adapter", adapters[0].Info.Name),
		slog.String("power", power.String()))
	return &adapters[0]
}

// Configure allocates the target texture and readback buffer for a
// width x height frame, releasing those of the previous size. Configuring
// the current size again is a no-op.
func (c *Compositor) Configure(width, height uint32) error {
	if c.closed {
		return ErrClosed
	}
	if width == 0 || height == 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if c.target != nil && c.target.matches(width, height) {
		return nil
	}
	if c.target != nil {
		c.target.destroy(c.device)
		c.target = nil
	}
	t, err := newTarget(c.device, width, height, c.label)
	if err != nil {
		return fmt.Errorf("compositor: configure %dx%d: %w", width, height, err)
	}
	c.target = t
	Logger().Debug("compositor: configured",
		slog.Uint64("width", uint64(width)),
		slog.Uint64("height", uint64(height)),
		slog.Uint64("padded_bytes_per_row", uint64(t.dims.PaddedBytesPerRow)))
	return nil
}

// ConfigureSurface configures the compositor for the size of s.
func (c *Compositor) ConfigureSurface(s *Surface) error {
	w, h := s.Size()
	return c.Configure(w, h)
}

// Size returns the configured size, or zeros before Configure.
func (c *Compositor) Size() (width, height uint32) {
	if c.target == nil {
		return 0, 0
	}
	return c.target.dims.Width, c.target.dims.Height
}

// Dimensions returns the readback buffer layout. ok is false before
// Configure.
func (c *Compositor) Dimensions() (dims screenshot.BufferDimensions, ok bool) {
	if c.target == nil {
		return screenshot.BufferDimensions{}, false
	}
	return c.target.dims, true
}

// Present clears the target to background, draws prims and copies the
// target into the readback buffer. It returns once the queue is idle.
//
// The clear runs on the device. Primitives are rasterized on the CPU over a
// transparent layer, composited over the cleared pixel the device stored
// and uploaded for the rectangle they cover.
//
// A Present error leaves the frame undefined; callers should abandon the
// render rather than retry.
func (c *Compositor) Present(prims []widget.Primitive, background gg.RGBA) error {
	if c.closed {
		return ErrClosed
	}
	if c.target == nil {
		return ErrNotConfigured
	}
	t := c.target
	dims := t.dims

	layer, err := c.canvas.Render(int(dims.Width), int(dims.Height), gg.Transparent, prims)
	if err != nil {
		return fmt.Errorf("compositor: present: %w", err)
	}

	if err := c.encodeFrame(t, &background, gputypes.TextureUsageRenderAttachment); err != nil {
		return fmt.Errorf("compositor: present: %w", err)
	}

	box, ok := canvas.Coverage(layer)
	if ok {
		bg, err := c.clearedPixel(t)
		if err != nil {
			return fmt.Errorf("compositor: present: %w", err)
		}
		if err := c.upload(t, box, canvas.Over(layer, box, bg)); err != nil {
			return fmt.Errorf("compositor: present: %w", err)
		}
		if err := c.encodeFrame(t, nil, gputypes.TextureUsageCopyDst); err != nil {
			return fmt.Errorf("compositor: present: %w", err)
		}
	}
	Logger().Debug("compositor: presented",
		slog.Int("primitives", len(prims)),
		slog.String("upload", box.String()))
	return nil
}

// encodeFrame records the readback copy, preceded by a clear pass when
// background is non-nil, then submits and waits for the queue to drain.
// from is the texture usage the frame starts in.
func (c *Compositor) encodeFrame(t *target, background *gg.RGBA, from gputypes.TextureUsage) error {
	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: c.label + "_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(c.label + "_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	if background != nil {
		rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
			Label: c.label + "_clear",
			ColorAttachments: []hal.RenderPassColorAttachment{{
				View:       t.view,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{R: background.R, G: background.G, B: background.B, A: background.A},
			}},
		})
		rp.End()
	}

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.texture,
		Usage: hal.TextureUsageTransition{
			OldUsage: from,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	// The readback copy is part of every frame.
	encoder.CopyTextureToBuffer(t.texture, t.readback, t.copyRegion())

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.texture,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageCopyDst,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer c.device.FreeCommandBuffer(cmdBuf)

	if _, err := c.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	if err := c.device.WaitIdle(); err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	return nil
}

// clearedPixel returns the first pixel of the readback buffer, which holds
// the clear color as the device stored it. Pixel (0, 0) sits at offset 0 in
// both row layouts.
func (c *Compositor) clearedPixel(t *target) (color.NRGBA, error) {
	mapping, err := c.device.MapBuffer(t.readback, 0, bytesPerPixel)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("map readback buffer: %w", err)
	}
	p := unsafe.Slice((*byte)(mapping.Ptr), bytesPerPixel)
	px := color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
	if err := c.device.UnmapBuffer(t.readback); err != nil {
		return color.NRGBA{}, fmt.Errorf("unmap readback buffer: %w", err)
	}
	return px, nil
}

// upload writes tightly packed rows into box of the target texture.
func (c *Compositor) upload(t *target, box image.Rectangle, rows []byte) error {
	err := c.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture: t.texture,
			Origin:  hal.Origin3D{X: uint32(box.Min.X), Y: uint32(box.Min.Y)}, //nolint:gosec // box lies inside the target
			Aspect:  gputypes.TextureAspectAll,
		},
		rows,
		&hal.ImageDataLayout{
			BytesPerRow:  uint32(box.Dx() * bytesPerPixel), //nolint:gosec // bounded by target width
			RowsPerImage: uint32(box.Dy()),                 //nolint:gosec // bounded by target height
		},
		&hal.Extent3D{Width: uint32(box.Dx()), Height: uint32(box.Dy()), DepthOrArrayLayers: 1}, //nolint:gosec // bounded by target size
	)
	if err != nil {
		return fmt.Errorf("upload %v: %w", box, err)
	}
	return nil
}

// Read maps the readback buffer and returns its contents as a GPUReadback
// screenshot. ok is false if Configure was never called. Read blocks until
// the device has finished all submitted work.
func (c *Compositor) Read() (shot *screenshot.Screenshot, ok bool, err error) {
	if c.closed {
		return nil, false, ErrClosed
	}
	if c.target == nil {
		return nil, false, nil
	}
	t := c.target
	size := t.dims.Size()

	if err := c.device.WaitIdle(); err != nil {
		return nil, false, fmt.Errorf("compositor: read: wait for GPU: %w", err)
	}
	mapping, err := c.device.MapBuffer(t.readback, 0, size)
	if err != nil {
		return nil, false, fmt.Errorf("compositor: read: map readback buffer: %w", err)
	}
	payload := bytes.Clone(unsafe.Slice((*byte)(mapping.Ptr), size))
	if err := c.device.UnmapBuffer(t.readback); err != nil {
		return nil, false, fmt.Errorf("compositor: read: unmap readback buffer: %w", err)
	}
	if c.tightRows {
		payload = padRows(payload[:uint64(t.dims.UnpaddedBytesPerRow)*uint64(t.dims.Height)], t.dims)
	}

	shot, err = screenshot.New(payload, t.dims.Width, t.dims.Height, screenshot.RGBA, screenshot.GPUReadback)
	if err != nil {
		return nil, false, fmt.Errorf("compositor: read: %w", err)
	}
	return shot, true, nil
}

func packsRowsTightly(d hal.Device) bool {
	_, ok := d.(*software.Device)
	return ok
}

// Close releases the target, device and instance. Closing twice is a no-op.
func (c *Compositor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.target != nil {
		c.target.destroy(c.device)
		c.target = nil
	}
	if c.device != nil {
		if err := c.device.WaitIdle(); err != nil {
			Logger().Warn("compositor: wait idle on close", slog.String("err", err.Error()))
		}
		c.device.Destroy()
	}
	if c.instance != nil {
		c.instance.Destroy()
	}
	return nil
}

// Measurer returns the text measurer Present rasterizes with, for laying
// out elements before presenting them.
func (c *Compositor) Measurer() widget.Measurer { return c.canvas }

// BackendName returns the name of the backend the device was opened on.
func (c *Compositor) BackendName() string { return c.backend }

// Device implements gpucontext.DeviceProvider.
func (c *Compositor) Device() gpucontext.Device { return c.device }

// Queue implements gpucontext.DeviceProvider.
func (c *Compositor) Queue() gpucontext.Queue { return c.queue }

// Adapter implements gpucontext.DeviceProvider.
func (c *Compositor) Adapter() gpucontext.Adapter { return c.adapter }

// SurfaceFormat implements gpucontext.DeviceProvider. It reports the
// off-screen target format.
func (c *Compositor) SurfaceFormat() gputypes.TextureFormat { return TargetFormat }

// AdapterInfo implements gpucontext.DeviceProvider.
func (c *Compositor) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: c.info.Name, Type: adapterType(c.info.DeviceType)}
}

func adapterType(t gputypes.DeviceType) gpucontext.AdapterType {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		return gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		return gpucontext.AdapterTypeSoftware
	default:
		return gpucontext.AdapterTypeUnknown
	}
}
