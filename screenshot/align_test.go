package screenshot

import "testing"

func TestComputeRowLayout(t *testing.T) {
	tests := []struct {
		name      string
		width     uint32
		bpp       uint32
		alignment uint32
		want      RowLayout
	}{
		{"zero width", 0, 4, 256, RowLayout{0, 0, 0}},
		{"one pixel", 1, 4, 256, RowLayout{4, 252, 256}},
		{"exact multiple", 64, 4, 256, RowLayout{256, 0, 256}},
		{"one over", 65, 4, 256, RowLayout{260, 252, 512}},
		{"default window", 1024, 4, 256, RowLayout{4096, 0, 4096}},
		{"odd rgb", 33, 3, 256, RowLayout{99, 157, 256}},
		{"small alignment", 3, 3, 4, RowLayout{9, 3, 12}},
		{"no alignment", 7, 4, 0, RowLayout{28, 0, 28}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeRowLayout(tt.width, tt.bpp, tt.alignment)
			if got != tt.want {
				t.Errorf("ComputeRowLayout(%d, %d, %d) = %+v, want %+v",
					tt.width, tt.bpp, tt.alignment, got, tt.want)
			}
		})
	}
}

func TestComputeRowLayoutProperties(t *testing.T) {
	for _, alignment := range []uint32{1, 4, 64, 256, 1000} {
		for _, bpp := range []uint32{1, 3, 4, 8} {
			for width := uint32(1); width <= 600; width++ {
				l := ComputeRowLayout(width, bpp, alignment)
				if l.Padded%alignment != 0 {
					t.Fatalf("w=%d bpp=%d a=%d: padded %d not aligned", width, bpp, alignment, l.Padded)
				}
				if l.Padded < l.Unpadded {
					t.Fatalf("w=%d bpp=%d a=%d: padded %d < unpadded %d", width, bpp, alignment, l.Padded, l.Unpadded)
				}
				if l.Padded >= l.Unpadded+alignment {
					t.Fatalf("w=%d bpp=%d a=%d: padded %d >= unpadded+alignment %d",
						width, bpp, alignment, l.Padded, l.Unpadded+alignment)
				}
				if l.Unpadded%alignment == 0 && l.Padding != 0 {
					t.Fatalf("w=%d bpp=%d a=%d: aligned row got padding %d", width, bpp, alignment, l.Padding)
				}
			}
		}
	}
}

func TestBufferDimensions(t *testing.T) {
	d := NewBufferDimensions(100, 50, 4)
	if d.UnpaddedBytesPerRow != 400 {
		t.Errorf("UnpaddedBytesPerRow = %d, want 400", d.UnpaddedBytesPerRow)
	}
	if d.PaddedBytesPerRow != 512 {
		t.Errorf("PaddedBytesPerRow = %d, want 512", d.PaddedBytesPerRow)
	}
	if got := d.Size(); got != 512*50 {
		t.Errorf("Size() = %d, want %d", got, 512*50)
	}
	if !d.Padded() {
		t.Error("Padded() = false, want true")
	}

	if NewBufferDimensions(256, 10, 4).Padded() {
		t.Error("256px wide rows should not need padding")
	}
}
