package frame

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// indexedRaster encodes each pixel's source position in its red and green bytes.
func indexedRaster(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: byte(x), G: byte(y), B: 7, A: 255})
		}
	}
	return img
}

func TestNormalizer_Dimensions(t *testing.T) {
	tests := []struct {
		degrees      int
		wantW, wantH int
	}{
		{0, 6, 4},
		{90, 4, 6},
		{180, 6, 4},
		{270, 4, 6},
		{45, 6, 4},
		{-90, 6, 4},
		{360, 6, 4},
	}

	for _, tt := range tests {
		n := NewNormalizer()
		out := n.Normalize(indexedRaster(6, 4), tt.degrees)
		assert.Equal(t, tt.wantW, out.Rect.Dx(), "width for %d degrees", tt.degrees)
		assert.Equal(t, tt.wantH, out.Rect.Dy(), "height for %d degrees", tt.degrees)
	}
}

func TestNormalizer_PixelPlacement(t *testing.T) {
	const w, h = 3, 2
	src := indexedRaster(w, h)

	tests := []struct {
		degrees int
		// dst maps a source pixel to its position in the output.
		dst func(x, y int) (int, int)
	}{
		{0, func(x, y int) (int, int) { return x, y }},
		{90, func(x, y int) (int, int) { return h - 1 - y, x }},
		{180, func(x, y int) (int, int) { return w - 1 - x, h - 1 - y }},
		{270, func(x, y int) (int, int) { return y, w - 1 - x }},
	}

	for _, tt := range tests {
		out := NewNormalizer().Normalize(src, tt.degrees)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				dx, dy := tt.dst(x, y)
				got := out.RGBAAt(dx, dy)
				assert.Equal(t, src.RGBAAt(x, y), got, "%d degrees: source (%d,%d) -> (%d,%d)", tt.degrees, x, y, dx, dy)
			}
		}
	}
}

func TestNormalizer_CachesTransform(t *testing.T) {
	n := NewNormalizer()
	src := indexedRaster(4, 2)

	n.Normalize(src, 90)
	n.Normalize(src, 90)
	assert.Equal(t, 1, n.Builds(), "same rotation must reuse the transform")

	n.Normalize(src, 180)
	assert.Equal(t, 2, n.Builds(), "changed rotation must rebuild")

	n.Normalize(src, 90)
	assert.Equal(t, 3, n.Builds())
}

func TestNormalizer_UnsupportedRotationSharesIdentity(t *testing.T) {
	n := NewNormalizer()
	src := indexedRaster(4, 2)

	n.Normalize(src, 0)
	n.Normalize(src, 45)
	assert.Equal(t, 1, n.Builds())
}

func TestNormalizer_ResetForcesRebuild(t *testing.T) {
	n := NewNormalizer()
	src := indexedRaster(4, 2)

	n.Normalize(src, 270)
	n.Reset()
	n.Normalize(src, 270)
	assert.Equal(t, 2, n.Builds())
}

func TestNormalizer_ReturnsIndependentRaster(t *testing.T) {
	src := indexedRaster(4, 2)
	out := NewNormalizer().Normalize(src, 0)

	require.NotSame(t, src, out)
	src.SetRGBA(0, 0, color.RGBA{R: 99, A: 255})
	assert.Equal(t, byte(0), out.RGBAAt(0, 0).R)
}

func TestEffectiveRotation(t *testing.T) {
	for in, want := range map[int]int{0: 0, 90: 90, 180: 180, 270: 270, 30: 0, -90: 0, 360: 0, 450: 0} {
		assert.Equal(t, want, EffectiveRotation(in), "rotation %d", in)
	}
}
