package compositor

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ggtest/screenshot"
)

// TargetFormat is the pixel format of the off-screen target.
const TargetFormat = gputypes.TextureFormatRGBA8Unorm

const bytesPerPixel = 4

// target is the off-screen color texture plus the host-readable buffer that
// receives its contents, both sized for one configure epoch.
type target struct {
	texture  hal.Texture
	view     hal.TextureView
	readback hal.Buffer
	dims     screenshot.BufferDimensions
}

func newTarget(device hal.Device, w, h uint32, label string) (*target, error) {
	t := &target{dims: screenshot.NewBufferDimensions(w, h, bytesPerPixel)}

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label + "_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        TargetFormat,
		Usage: gputypes.TextureUsageRenderAttachment |
			gputypes.TextureUsageCopySrc |
			gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create target texture: %w", err)
	}
	t.texture = tex

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: label + "_target_view",
	})
	if err != nil {
		t.destroy(device)
		return nil, fmt.Errorf("create target view: %w", err)
	}
	t.view = view

	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_readback",
		Size:  t.dims.Size(),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		t.destroy(device)
		return nil, fmt.Errorf("create readback buffer: %w", err)
	}
	t.readback = buf
	return t, nil
}

func (t *target) matches(w, h uint32) bool {
	return t.dims.Width == w && t.dims.Height == h
}

// copyRegion describes the whole texture with padded buffer rows.
func (t *target) copyRegion() []hal.BufferTextureCopy {
	return []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  t.dims.PaddedBytesPerRow,
			RowsPerImage: t.dims.Height,
		},
		TextureBase: hal.ImageCopyTexture{Texture: t.texture, MipLevel: 0},
		Size:        hal.Extent3D{Width: t.dims.Width, Height: t.dims.Height, DepthOrArrayLayers: 1},
	}}
}

func (t *target) destroy(device hal.Device) {
	if t.view != nil {
		device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.texture != nil {
		device.DestroyTexture(t.texture)
		t.texture = nil
	}
	if t.readback != nil {
		device.DestroyBuffer(t.readback)
		t.readback = nil
	}
}

// padRows copies tightly packed rows into a buffer laid out with the
// padded stride of dims.
func padRows(tight []byte, dims screenshot.BufferDimensions) []byte {
	if !dims.Padded() {
		return tight
	}
	out := make([]byte, dims.Size())
	row := int(dims.UnpaddedBytesPerRow)
	stride := int(dims.PaddedBytesPerRow)
	for y := 0; y < int(dims.Height); y++ {
		copy(out[y*stride:y*stride+row], tight[y*row:(y+1)*row])
	}
	return out
}
