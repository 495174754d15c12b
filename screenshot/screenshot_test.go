package screenshot

import (
	"bytes"
	"errors"
	"image/color"
	"testing"
)

// gpuFrame builds a padded GPU readback where pixel (x, y) is
// {x, y, x+y, 0xff} and padding bytes are 0xAB.
func gpuFrame(t *testing.T, w, h uint32) *Screenshot {
	t.Helper()
	dims := NewBufferDimensions(w, h, 4)
	payload := bytes.Repeat([]byte{0xAB}, int(dims.Size()))
	for y := uint32(0); y < h; y++ {
		for x := uint32(0); x < w; x++ {
			i := y*dims.PaddedBytesPerRow + x*4
			payload[i+0] = byte(x)
			payload[i+1] = byte(y)
			payload[i+2] = byte(x + y)
			payload[i+3] = 0xff
		}
	}
	s, err := New(payload, w, h, RGBA, GPUReadback)
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	return s
}

func TestNewValidatesPayloadSize(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		w, h   uint32
		layout ColorLayout
		prov   Provenance
		ok     bool
	}{
		{"decoded rgba", 3 * 2 * 4, 3, 2, RGBA, DecodedImage, true},
		{"decoded rgb", 3 * 2 * 3, 3, 2, RGB, DecodedImage, true},
		{"gpu padded", 256 * 2, 3, 2, RGBA, GPUReadback, true},
		{"gpu missing padding", 3 * 2 * 4, 3, 2, RGBA, GPUReadback, false},
		{"decoded with padding", 256 * 2, 3, 2, RGBA, DecodedImage, false},
		{"empty", 0, 0, 0, RGBA, DecodedImage, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(make([]byte, tt.size), tt.w, tt.h, tt.layout, tt.prov)
			if tt.ok && err != nil {
				t.Fatalf("New: unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrPayloadSize) {
				t.Fatalf("New: got %v, want ErrPayloadSize", err)
			}
		})
	}

	if _, err := New(nil, 0, 0, ColorLayout(9), DecodedImage); !errors.Is(err, ErrUnknownLayout) {
		t.Errorf("New with bad layout: got %v, want ErrUnknownLayout", err)
	}
}

func TestEqualIsProvenanceSensitive(t *testing.T) {
	// 64 px wide rows need no padding, so both payloads are identical bytes.
	payload := bytes.Repeat([]byte{1, 2, 3, 4}, 64*2)
	gpu, err := New(bytes.Clone(payload), 64, 2, RGBA, GPUReadback)
	if err != nil {
		t.Fatal(err)
	}
	dec, err := New(bytes.Clone(payload), 64, 2, RGBA, DecodedImage)
	if err != nil {
		t.Fatal(err)
	}

	if gpu.Equal(dec) {
		t.Error("GPU readback must not equal a decoded image")
	}
	if !gpu.SamePixels(dec) {
		t.Error("SamePixels should ignore provenance")
	}
	if gpu.Digest() == dec.Digest() {
		t.Error("digest should include provenance")
	}

	again, _ := New(bytes.Clone(payload), 64, 2, RGBA, GPUReadback)
	if !gpu.Equal(again) {
		t.Error("identical screenshots should be equal")
	}
	if gpu.Digest() != again.Digest() {
		t.Error("identical screenshots should share a digest")
	}
}

func TestDigestCoversHeader(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	wide, err := New(bytes.Clone(payload), 2, 1, RGBA, DecodedImage)
	if err != nil {
		t.Fatal(err)
	}
	tall, err := New(bytes.Clone(payload), 1, 2, RGBA, DecodedImage)
	if err != nil {
		t.Fatal(err)
	}
	if wide.Digest() == tall.Digest() {
		t.Error("2x1 and 1x2 frames with the same bytes share a digest")
	}
	if got := wide.DigestHex(); len(got) != 64 || got[:12] != wide.String()[len(wide.String())-12:] {
		t.Errorf("DigestHex() = %q, String() = %q", got, wide.String())
	}
}

func TestPixelsStripsPadding(t *testing.T) {
	s := gpuFrame(t, 5, 3)
	if s.Stride() != 256 {
		t.Fatalf("Stride() = %d, want 256", s.Stride())
	}
	pix := s.Pixels()
	if len(pix) != 5*3*4 {
		t.Fatalf("len(Pixels()) = %d, want %d", len(pix), 5*3*4)
	}
	if bytes.IndexByte(pix, 0xAB) >= 0 {
		t.Error("Pixels() still contains padding bytes")
	}
	if got, want := s.PixelAt(4, 2), (color.NRGBA{R: 4, G: 2, B: 6, A: 0xff}); got != want {
		t.Errorf("PixelAt(4, 2) = %v, want %v", got, want)
	}
	if got := s.PixelAt(5, 0); got != (color.NRGBA{}) {
		t.Errorf("PixelAt out of range = %v, want zero", got)
	}
}

func TestBytesReturnsCopy(t *testing.T) {
	s := gpuFrame(t, 2, 2)
	b := s.Bytes()
	b[0] = 0x7f
	if s.PixelAt(0, 0).R != 0 {
		t.Error("mutating Bytes() result changed the screenshot")
	}
	s.View(func(p []byte) {
		if len(p) != s.Len() {
			t.Errorf("View payload len = %d, want %d", len(p), s.Len())
		}
	})
}

func TestPixelAtRGB(t *testing.T) {
	s, err := New([]byte{10, 20, 30, 40, 50, 60}, 2, 1, RGB, DecodedImage)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := s.PixelAt(1, 0), (color.NRGBA{R: 40, G: 50, B: 60, A: 0xff}); got != want {
		t.Errorf("PixelAt(1, 0) = %v, want %v", got, want)
	}
}
