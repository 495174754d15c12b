package screenshot

import "errors"

// Sentinel errors for screenshot construction and the PNG codec.
var (
	// ErrPayloadSize is returned when a payload length does not match the
	// dimensions, color layout and provenance of a screenshot.
	ErrPayloadSize = errors.New("screenshot: payload size does not match dimensions")

	// ErrUnknownLayout is returned for a ColorLayout outside RGBA and RGB.
	ErrUnknownLayout = errors.New("screenshot: unknown color layout")

	// ErrEmptyImage is returned when encoding a screenshot with a zero
	// dimension; PNG cannot represent it.
	ErrEmptyImage = errors.New("screenshot: cannot encode empty image")

	// ErrCorruptImage is returned when an image container cannot be parsed.
	ErrCorruptImage = errors.New("screenshot: corrupt image")

	// ErrUnsupportedColorType is returned when a decoded PNG is not 8-bit RGB
	// or 8-bit RGBA. Such images are rejected, never converted.
	ErrUnsupportedColorType = errors.New("screenshot: unsupported PNG color type")
)
