// Package screenshot holds captured frames and their PNG codec.
//
// A [Screenshot] is an immutable pixel buffer tagged with a [ColorLayout]
// and a [Provenance]. GPU readbacks keep each row padded to
// [CopyBytesPerRowAlignment] bytes, exactly as the texture copy wrote it.
// Decoded images are tightly packed.
//
// # Equality
//
// [Screenshot.Equal] compares every field, provenance included, so a raw
// readback never equals the golden image it was saved as. Normalize first:
//
//	got, err := screenshot.RoundTrip(frame)
//	want, err := screenshot.Load("testdata/counter.png")
//	if !got.Equal(want) { ... }
//
// [Screenshot.SamePixels] is the explicit provenance-insensitive check.
//
// # Row alignment
//
// [ComputeRowLayout] and [BufferDimensions] size readback buffers. The
// codec uses the same computation to strip padding on encode.
package screenshot
