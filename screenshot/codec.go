package screenshot

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Encode writes s as an 8-bit PNG whose color type matches s.Layout().
// Row padding of GPU readbacks is stripped first.
func Encode(s *Screenshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeTo(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo writes the PNG encoding of s to w.
func EncodeTo(w io.Writer, s *Screenshot) error {
	if s.width == 0 || s.height == 0 {
		return fmt.Errorf("%w: %dx%d", ErrEmptyImage, s.width, s.height)
	}
	if err := writePNG(w, s.packed(), s.width, s.height, s.layout); err != nil {
		return fmt.Errorf("screenshot: encode png: %w", err)
	}
	return nil
}

// Decode parses a PNG into a DecodedImage screenshot with tightly packed
// rows. Only 8-bit RGB and 8-bit RGBA containers are accepted; anything
// else fails with ErrUnsupportedColorType.
func Decode(data []byte) (*Screenshot, error) {
	pix, w, h, layout, err := readPNG(data)
	if err != nil {
		return nil, err
	}
	return New(pix, w, h, layout, DecodedImage)
}

// RoundTrip encodes s and decodes the result. The returned screenshot is a
// DecodedImage and can be compared with Equal against screenshots loaded
// from disk. Decoded inputs come back unchanged.
func RoundTrip(s *Screenshot) (*Screenshot, error) {
	data, err := Encode(s)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Save encodes s and writes it to path, replacing any existing file.
func Save(path string, s *Screenshot) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // image files are not secrets
		return fmt.Errorf("screenshot: save %s: %w", path, err)
	}
	return nil
}

// Load reads and decodes the PNG at path.
func Load(path string) (*Screenshot, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is chosen by the test author
	if err != nil {
		return nil, fmt.Errorf("screenshot: load %s: %w", path, err)
	}
	s, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("screenshot: load %s: %w", path, err)
	}
	return s, nil
}
