package frame

import "sync/atomic"

type testFrame struct {
	width, height int
	rotation      int
	planes        []Plane
	releases      atomic.Int32
}

func (f *testFrame) Width() int           { return f.width }
func (f *testFrame) Height() int          { return f.height }
func (f *testFrame) RotationDegrees() int { return f.rotation }
func (f *testFrame) Planes() []Plane      { return f.planes }
func (f *testFrame) Release()             { f.releases.Add(1) }

func fill(n int, v byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = v
	}
	return b
}

// solidI420 builds a planar 4:2:0 frame with constant planes.
func solidI420(w, h int, y, u, v byte) *testFrame {
	cw, ch := (w+1)/2, (h+1)/2
	return &testFrame{
		width:  w,
		height: h,
		planes: []Plane{
			{Data: fill(w*h, y), RowStride: w, PixelStride: 1},
			{Data: fill(cw*ch, u), RowStride: cw, PixelStride: 1},
			{Data: fill(cw*ch, v), RowStride: cw, PixelStride: 1},
		},
	}
}

// solidNV21 builds a semi-planar frame with interleaved V/U samples, the
// layout most mobile camera stacks hand out.
func solidNV21(w, h int, y, u, v byte) *testFrame {
	cw, ch := (w+1)/2, (h+1)/2
	vu := make([]byte, cw*ch*2)
	for i := 0; i < len(vu); i += 2 {
		vu[i] = v
		vu[i+1] = u
	}
	return &testFrame{
		width:  w,
		height: h,
		planes: []Plane{
			{Data: fill(w*h, y), RowStride: w, PixelStride: 1},
			{Data: vu[1:], RowStride: cw * 2, PixelStride: 2},
			{Data: vu, RowStride: cw * 2, PixelStride: 2},
		},
	}
}

// solidNV12 is solidNV21 with U first.
func solidNV12(w, h int, y, u, v byte) *testFrame {
	cw, ch := (w+1)/2, (h+1)/2
	uv := make([]byte, cw*ch*2)
	for i := 0; i < len(uv); i += 2 {
		uv[i] = u
		uv[i+1] = v
	}
	return &testFrame{
		width:  w,
		height: h,
		planes: []Plane{
			{Data: fill(w*h, y), RowStride: w, PixelStride: 1},
			{Data: uv, RowStride: cw * 2, PixelStride: 2},
			{Data: uv[1:], RowStride: cw * 2, PixelStride: 2},
		},
	}
}
