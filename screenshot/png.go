package screenshot

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"io"
)

var pngSignature = [8]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// PNG color types used by the codec.
const (
	pngColorRGB  = 2
	pngColorRGBA = 6
)

func pngColorType(l ColorLayout) byte {
	if l == RGB {
		return pngColorRGB
	}
	return pngColorRGBA
}

// writePNG writes tightly packed rows as an 8-bit PNG whose color type
// matches layout. image/png picks the color type from the image contents
// (an opaque RGBA image is written as RGB), so the container is assembled
// here to keep the layout stable across a round trip.
func writePNG(w io.Writer, pix []byte, width, height uint32, layout ColorLayout) error {
	if _, err := w.Write(pngSignature[:]); err != nil {
		return err
	}

	var ihdr [13]byte
	binary.BigEndian.PutUint32(ihdr[0:4], width)
	binary.BigEndian.PutUint32(ihdr[4:8], height)
	ihdr[8] = 8 // bit depth
	ihdr[9] = pngColorType(layout)
	// compression, filter and interlace methods are all 0.
	if err := writeChunk(w, "IHDR", ihdr[:]); err != nil {
		return err
	}

	var idat bytes.Buffer
	zw := zlib.NewWriter(&idat)
	row := int(width * layout.BytesPerPixel())
	for y := 0; y < int(height); y++ {
		// Filter type 0 (None) per row.
		if _, err := zw.Write([]byte{0}); err != nil {
			return err
		}
		if _, err := zw.Write(pix[y*row : (y+1)*row]); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	if err := writeChunk(w, "IDAT", idat.Bytes()); err != nil {
		return err
	}
	return writeChunk(w, "IEND", nil)
}

func writeChunk(w io.Writer, name string, data []byte) error {
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[0:4], uint32(len(data)))
	copy(hdr[4:8], name)

	crc := crc32.NewIEEE()
	crc.Write(hdr[4:8])
	crc.Write(data)
	var footer [4]byte
	binary.BigEndian.PutUint32(footer[:], crc.Sum32())

	for _, b := range [][]byte{hdr[:], data, footer[:]} {
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}

// pngHeader is the part of IHDR the codec validates before decoding.
type pngHeader struct {
	width     uint32
	height    uint32
	bitDepth  byte
	colorType byte
}

func readPNGHeader(data []byte) (pngHeader, error) {
	// signature(8) + length(4) + "IHDR"(4) + 13 bytes of IHDR data.
	if len(data) < 33 || !bytes.Equal(data[:8], pngSignature[:]) {
		return pngHeader{}, fmt.Errorf("%w: not a PNG stream", ErrCorruptImage)
	}
	if binary.BigEndian.Uint32(data[8:12]) != 13 || string(data[12:16]) != "IHDR" {
		return pngHeader{}, fmt.Errorf("%w: missing IHDR", ErrCorruptImage)
	}
	return pngHeader{
		width:     binary.BigEndian.Uint32(data[16:20]),
		height:    binary.BigEndian.Uint32(data[20:24]),
		bitDepth:  data[24],
		colorType: data[25],
	}, nil
}

func (h pngHeader) layout() (ColorLayout, error) {
	if h.bitDepth != 8 {
		return 0, fmt.Errorf("%w: bit depth %d", ErrUnsupportedColorType, h.bitDepth)
	}
	switch h.colorType {
	case pngColorRGB:
		return RGB, nil
	case pngColorRGBA:
		return RGBA, nil
	default:
		return 0, fmt.Errorf("%w: color type %d", ErrUnsupportedColorType, h.colorType)
	}
}

// readPNG decodes data into tightly packed rows of the layout stored in
// the container.
func readPNG(data []byte) (pix []byte, width, height uint32, layout ColorLayout, err error) {
	hdr, err := readPNGHeader(data)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	layout, err = hdr.layout()
	if err != nil {
		return nil, 0, 0, 0, err
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, 0, fmt.Errorf("%w: %v", ErrCorruptImage, err)
	}

	// image/png yields *image.RGBA for opaque truecolor and *image.NRGBA
	// for truecolor with alpha (or a tRNS chunk). Both store 4 bytes per
	// pixel, unpremultiplied for opaque pixels.
	var src []byte
	var stride int
	switch m := img.(type) {
	case *image.NRGBA:
		src, stride = m.Pix, m.Stride
	case *image.RGBA:
		src, stride = m.Pix, m.Stride
	default:
		return nil, 0, 0, 0, fmt.Errorf("%w: decoded as %T", ErrUnsupportedColorType, img)
	}

	w, h := int(hdr.width), int(hdr.height)
	bpp := int(layout.BytesPerPixel())
	pix = make([]byte, 0, w*h*bpp)
	for y := 0; y < h; y++ {
		line := src[y*stride : y*stride+w*4]
		if layout == RGBA {
			pix = append(pix, line...)
			continue
		}
		for x := 0; x < w; x++ {
			pix = append(pix, line[x*4:x*4+3]...)
		}
	}
	return pix, hdr.width, hdr.height, layout, nil
}
