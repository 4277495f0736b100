package frame

import (
	"image"
	"image/color"
)

// ColorConverter writes the RGB rendition of a YUV frame into dst.
type ColorConverter interface {
	Convert(src RawFrame, dst *image.RGBA) error
}

// YUVConverter converts YUV 4:2:0 frames (planar I420 or semi-planar NV12/NV21)
// to RGBA using the full-range BT.601 (JFIF) equations.
type YUVConverter struct{}

// Convert overwrites dst.Pix in place. dst must already match the frame size.
// On error dst holds partial data and the frame should be skipped.
func (YUVConverter) Convert(src RawFrame, dst *image.RGBA) error {
	w, h := src.Width(), src.Height()
	if w <= 0 || h <= 0 {
		return formatErrorf("invalid dimensions %dx%d", w, h)
	}
	if dst == nil || dst.Rect.Dx() != w || dst.Rect.Dy() != h {
		return formatErrorf("raster does not match frame %dx%d", w, h)
	}

	planes := src.Planes()
	if len(planes) != 3 {
		return formatErrorf("expected 3 planes, got %d", len(planes))
	}
	yp, up, vp := planes[0], planes[1], planes[2]

	if yp.PixelStride != 1 {
		return formatErrorf("luma pixel stride %d", yp.PixelStride)
	}
	if up.PixelStride != vp.PixelStride || (up.PixelStride != 1 && up.PixelStride != 2) {
		return formatErrorf("chroma pixel strides %d/%d", up.PixelStride, vp.PixelStride)
	}

	cw, ch := (w+1)/2, (h+1)/2
	if err := checkPlane("Y", yp, w, h); err != nil {
		return err
	}
	if err := checkPlane("U", up, cw, ch); err != nil {
		return err
	}
	if err := checkPlane("V", vp, cw, ch); err != nil {
		return err
	}

	for y := 0; y < h; y++ {
		yRow := yp.Data[y*yp.RowStride:]
		uRow := up.Data[(y/2)*up.RowStride:]
		vRow := vp.Data[(y/2)*vp.RowStride:]
		out := dst.Pix[dst.PixOffset(dst.Rect.Min.X, dst.Rect.Min.Y+y):]

		for x := 0; x < w; x++ {
			r, g, b := color.YCbCrToRGB(yRow[x], uRow[(x/2)*up.PixelStride], vRow[(x/2)*vp.PixelStride])
			o := x * 4
			out[o] = r
			out[o+1] = g
			out[o+2] = b
			out[o+3] = 0xff
		}
	}
	return nil
}

// checkPlane verifies that a plane can be addressed for cols x rows samples.
func checkPlane(name string, p Plane, cols, rows int) error {
	rowSpan := (cols-1)*p.PixelStride + 1
	if p.RowStride < rowSpan {
		return formatErrorf("%s row stride %d shorter than row span %d", name, p.RowStride, rowSpan)
	}
	need := (rows-1)*p.RowStride + rowSpan
	if len(p.Data) < need {
		return formatErrorf("%s plane holds %d bytes, need %d", name, len(p.Data), need)
	}
	return nil
}
