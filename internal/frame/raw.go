// Package frame prepares raw YUV camera frames for classification.
package frame

// Plane is one plane of a multi-plane YUV image.
type Plane struct {
	Data        []byte
	RowStride   int
	PixelStride int
}

// RawFrame is a YUV 4:2:0 image borrowed from a frame source.
// Planes are ordered Y, U (Cb), V (Cr). Release hands the frame back to its
// source and must be called exactly once.
type RawFrame interface {
	Width() int
	Height() int
	RotationDegrees() int
	Planes() []Plane
	Release()
}
