package screenshot

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"image/color"

	"golang.org/x/crypto/blake2b"
)

// ColorLayout is the byte layout of a single pixel.
type ColorLayout uint8

const (
	// RGBA stores 4 bytes per pixel: red, green, blue, alpha.
	RGBA ColorLayout = iota
	// RGB stores 3 bytes per pixel: red, green, blue.
	RGB
)

// BytesPerPixel returns the pixel size of the layout.
func (l ColorLayout) BytesPerPixel() uint32 {
	switch l {
	case RGB:
		return 3
	default:
		return 4
	}
}

func (l ColorLayout) String() string {
	switch l {
	case RGBA:
		return "RGBA"
	case RGB:
		return "RGB"
	default:
		return fmt.Sprintf("ColorLayout(%d)", uint8(l))
	}
}

// Provenance records which pipeline produced a screenshot's bytes.
type Provenance uint8

const (
	// GPUReadback bytes come from a texture-to-buffer copy. Rows are padded
	// to CopyBytesPerRowAlignment.
	GPUReadback Provenance = iota
	// DecodedImage bytes come from an image file. Rows are tightly packed.
	DecodedImage
)

// Padded reports whether rows produced by p carry alignment padding.
func (p Provenance) Padded() bool {
	return p == GPUReadback
}

func (p Provenance) String() string {
	switch p {
	case GPUReadback:
		return "GPUReadback"
	case DecodedImage:
		return "DecodedImage"
	default:
		return fmt.Sprintf("Provenance(%d)", uint8(p))
	}
}

// Screenshot is an immutable pixel buffer together with its dimensions,
// color layout and provenance.
//
// The payload is shared: the harness and user predicates may hold the same
// Screenshot at once. Nothing mutates it after construction.
type Screenshot struct {
	payload    []byte
	width      uint32
	height     uint32
	layout     ColorLayout
	provenance Provenance
}

// New creates a Screenshot. It takes ownership of payload; the caller must
// not modify the slice afterwards.
//
// The payload length must equal height rows of the stride implied by
// layout and provenance, otherwise ErrPayloadSize is returned.
func New(payload []byte, width, height uint32, layout ColorLayout, provenance Provenance) (*Screenshot, error) {
	if layout != RGBA && layout != RGB {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLayout, layout)
	}
	s := &Screenshot{
		payload:    payload,
		width:      width,
		height:     height,
		layout:     layout,
		provenance: provenance,
	}
	if want := uint64(s.Stride()) * uint64(height); uint64(len(payload)) != want {
		return nil, fmt.Errorf("%w: %dx%d %s %s wants %d bytes, got %d",
			ErrPayloadSize, width, height, layout, provenance, want, len(payload))
	}
	return s, nil
}

// Width returns the width in pixels.
func (s *Screenshot) Width() uint32 { return s.width }

// Height returns the height in pixels.
func (s *Screenshot) Height() uint32 { return s.height }

// Layout returns the color layout.
func (s *Screenshot) Layout() ColorLayout { return s.layout }

// Provenance returns the pipeline that produced the bytes.
func (s *Screenshot) Provenance() Provenance { return s.provenance }

// Stride returns the number of payload bytes per row, padding included.
func (s *Screenshot) Stride() uint32 {
	if s.provenance.Padded() {
		return ComputeRowLayout(s.width, s.layout.BytesPerPixel(), CopyBytesPerRowAlignment).Padded
	}
	return s.width * s.layout.BytesPerPixel()
}

// Len returns the payload length in bytes.
func (s *Screenshot) Len() int { return len(s.payload) }

// Bytes returns a copy of the raw payload, padding included.
func (s *Screenshot) Bytes() []byte {
	return bytes.Clone(s.payload)
}

// View calls fn with the shared payload. fn must not modify or retain it.
func (s *Screenshot) View(fn func(payload []byte)) {
	fn(s.payload)
}

// Pixels returns the tightly packed pixel rows with any padding removed.
// The result is a fresh slice.
func (s *Screenshot) Pixels() []byte {
	return bytes.Clone(s.packed())
}

// packed returns tightly packed rows. It returns the shared payload when no
// padding is present, so callers must treat the result as read-only.
func (s *Screenshot) packed() []byte {
	row := s.width * s.layout.BytesPerPixel()
	stride := s.Stride()
	if row == stride {
		return s.payload
	}
	out := make([]byte, 0, uint64(row)*uint64(s.height))
	for y := uint32(0); y < s.height; y++ {
		off := uint64(y) * uint64(stride)
		out = append(out, s.payload[off:off+uint64(row)]...)
	}
	return out
}

// PixelAt returns the color at (x, y). Out-of-range coordinates return the
// zero color. RGB pixels are reported as opaque.
func (s *Screenshot) PixelAt(x, y uint32) color.NRGBA {
	if x >= s.width || y >= s.height {
		return color.NRGBA{}
	}
	bpp := s.layout.BytesPerPixel()
	i := uint64(y)*uint64(s.Stride()) + uint64(x)*uint64(bpp)
	p := s.payload[i : i+uint64(bpp)]
	c := color.NRGBA{R: p[0], G: p[1], B: p[2], A: 0xff}
	if s.layout == RGBA {
		c.A = p[3]
	}
	return c
}

// Equal reports exact structural equality: same dimensions, layout,
// provenance and payload bytes. A GPU readback never equals a decoded image,
// even when both show the same pixels; see SamePixels and RoundTrip.
func (s *Screenshot) Equal(other *Screenshot) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.width == other.width &&
		s.height == other.height &&
		s.layout == other.layout &&
		s.provenance == other.provenance &&
		bytes.Equal(s.payload, other.payload)
}

// SamePixels reports whether both screenshots hold the same visible pixels
// in the same layout, ignoring provenance and row padding.
func (s *Screenshot) SamePixels(other *Screenshot) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.width == other.width &&
		s.height == other.height &&
		s.layout == other.layout &&
		bytes.Equal(s.packed(), other.packed())
}

// Digest returns a BLAKE2b-256 hash of the header fields and payload.
// Equal screenshots have equal digests.
func (s *Screenshot) Digest() [32]byte {
	buf := make([]byte, 10, 10+len(s.payload))
	binary.BigEndian.PutUint32(buf[0:4], s.width)
	binary.BigEndian.PutUint32(buf[4:8], s.height)
	buf[8] = byte(s.layout)
	buf[9] = byte(s.provenance)
	return blake2b.Sum256(append(buf, s.payload...))
}

// DigestHex returns Digest as a lowercase hex string.
func (s *Screenshot) DigestHex() string {
	d := s.Digest()
	return hex.EncodeToString(d[:])
}

// String returns a short description including the digest prefix.
func (s *Screenshot) String() string {
	if s == nil {
		return "<nil screenshot>"
	}
	d := s.Digest()
	return fmt.Sprintf("%dx%d %s %s %s", s.width, s.height, s.layout, s.provenance, hex.EncodeToString(d[:6]))
}
