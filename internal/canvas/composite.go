package canvas

import (
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"
)

// Coverage returns the smallest rectangle holding every pixel of pm with
// non-zero alpha. ok is false when pm is fully transparent.
func Coverage(pm *gg.Pixmap) (r image.Rectangle, ok bool) {
	d := pm.Data()
	w, h := pm.Width(), pm.Height()
	minX, minY, maxX, maxY := w, h, -1, -1
	for y := 0; y < h; y++ {
		row := d[y*w*4 : (y+1)*w*4]
		for x := 0; x < w; x++ {
			if row[x*4+3] == 0 {
				continue
			}
			minX = min(minX, x)
			maxX = max(maxX, x)
			minY = min(minY, y)
			maxY = y
		}
	}
	if maxX < 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// Over composites the premultiplied pixels of pm inside r over the
// straight-alpha color bg with source-over and returns tightly packed
// straight-alpha RGBA rows covering r.
func Over(pm *gg.Pixmap, r image.Rectangle, bg color.NRGBA) []byte {
	r = r.Intersect(image.Rect(0, 0, pm.Width(), pm.Height()))
	out := make([]byte, 0, r.Dx()*r.Dy()*4)

	ba := float64(bg.A) / 255
	bgPremul := [3]float64{
		float64(bg.R) / 255 * ba,
		float64(bg.G) / 255 * ba,
		float64(bg.B) / 255 * ba,
	}
	d := pm.Data()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := (y*pm.Width() + x) * 4
			pa := float64(d[i+3]) / 255
			oa := pa + ba*(1-pa)
			if oa <= 0 {
				out = append(out, 0, 0, 0, 0)
				continue
			}
			for k := 0; k < 3; k++ {
				oc := float64(d[i+k])/255 + bgPremul[k]*(1-pa)
				out = append(out, unit8(oc/oa))
			}
			out = append(out, unit8(oa))
		}
	}
	return out
}

func unit8(v float64) uint8 {
	return uint8(math.Round(min(max(v, 0), 1) * 255))
}
