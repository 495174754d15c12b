package screenshot

// CopyBytesPerRowAlignment is the alignment WebGPU requires for the
// BytesPerRow of a texture-to-buffer or buffer-to-texture copy.
const CopyBytesPerRowAlignment = 256

// RowLayout describes one row of pixels before and after alignment padding.
type RowLayout struct {
	Unpadded uint32 // width * bytesPerPixel
	Padding  uint32 // bytes appended to reach the alignment
	Padded   uint32 // Unpadded + Padding
}

// ComputeRowLayout returns the padded stride for a row of width pixels of
// bytesPerPixel bytes each, rounded up to a multiple of alignment.
//
// A zero alignment means no padding. Rows that are already a multiple of
// alignment (including empty rows) get no padding.
func ComputeRowLayout(width, bytesPerPixel, alignment uint32) RowLayout {
	unpadded := width * bytesPerPixel
	var padding uint32
	if alignment > 0 {
		padding = (alignment - unpadded%alignment) % alignment
	}
	return RowLayout{
		Unpadded: unpadded,
		Padding:  padding,
		Padded:   unpadded + padding,
	}
}

// BufferDimensions is the layout of a host-readable buffer that receives a
// width x height texture copy.
type BufferDimensions struct {
	Width               uint32
	Height              uint32
	UnpaddedBytesPerRow uint32
	PaddedBytesPerRow   uint32
}

// NewBufferDimensions computes the buffer layout for a texture copy using
// CopyBytesPerRowAlignment.
func NewBufferDimensions(width, height, bytesPerPixel uint32) BufferDimensions {
	row := ComputeRowLayout(width, bytesPerPixel, CopyBytesPerRowAlignment)
	return BufferDimensions{
		Width:               width,
		Height:              height,
		UnpaddedBytesPerRow: row.Unpadded,
		PaddedBytesPerRow:   row.Padded,
	}
}

// Size returns the total buffer size in bytes.
func (d BufferDimensions) Size() uint64 {
	return uint64(d.PaddedBytesPerRow) * uint64(d.Height)
}

// Padded reports whether rows carry alignment padding.
func (d BufferDimensions) Padded() bool {
	return d.PaddedBytesPerRow != d.UnpaddedBytesPerRow
}
