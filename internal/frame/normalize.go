package frame

import (
	"image"
	"math"
)

// EffectiveRotation maps a rotation hint onto the supported set.
// Anything other than 0, 90, 180 or 270 is treated as 0.
func EffectiveRotation(degrees int) int {
	switch degrees {
	case 90, 180, 270:
		return degrees
	default:
		return 0
	}
}

// rotationTransform is a clockwise quarter-turn rotation in image coordinates
// (y grows downwards). Only the rotation part is cached; the translation that
// keeps the result inside the raster depends on the source size.
type rotationTransform struct {
	degrees  int
	cos, sin int
}

func newRotationTransform(degrees int) *rotationTransform {
	rad := float64(degrees) * math.Pi / 180
	return &rotationTransform{
		degrees: degrees,
		cos:     int(math.Round(math.Cos(rad))),
		sin:     int(math.Round(math.Sin(rad))),
	}
}

func (t *rotationTransform) project(x, y int) (int, int) {
	return x*t.cos - y*t.sin, x*t.sin + y*t.cos
}

// apply returns a new raster holding src rotated by t.
func (t *rotationTransform) apply(src *image.RGBA) *image.RGBA {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dw, dh := w, h
	if t.sin != 0 {
		dw, dh = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	if w == 0 || h == 0 {
		return dst
	}

	minX, minY := 0, 0
	for _, c := range [][2]int{{w - 1, 0}, {0, h - 1}, {w - 1, h - 1}} {
		px, py := t.project(c[0], c[1])
		minX = min(minX, px)
		minY = min(minY, py)
	}

	for y := 0; y < h; y++ {
		row := src.Pix[src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y):]
		for x := 0; x < w; x++ {
			dx, dy := t.project(x, y)
			o := dst.PixOffset(dx-minX, dy-minY)
			copy(dst.Pix[o:o+4], row[x*4:x*4+4])
		}
	}
	return dst
}

// Normalizer turns converted rasters upright. It caches the rotation transform
// for the last rotation it saw and rebuilds it only when the rotation changes.
// A Normalizer is not safe for concurrent use.
type Normalizer struct {
	transform *rotationTransform
	builds    int
}

// NewNormalizer returns a Normalizer with no cached transform.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize returns a newly allocated upright copy of src. For 90 and 270
// degrees the output width and height are swapped.
func (n *Normalizer) Normalize(src *image.RGBA, rotationDegrees int) *image.RGBA {
	degrees := EffectiveRotation(rotationDegrees)
	if n.transform == nil || n.transform.degrees != degrees {
		n.transform = newRotationTransform(degrees)
		n.builds++
	}
	return n.transform.apply(src)
}

// Builds reports how many times a rotation transform has been constructed.
func (n *Normalizer) Builds() int {
	return n.builds
}

// Reset drops the cached transform.
func (n *Normalizer) Reset() {
	n.transform = nil
}
