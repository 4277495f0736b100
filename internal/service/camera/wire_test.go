package camera

import (
	"bytes"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maskwatch/internal/frame"
	"maskwatch/internal/logger"
)

// encodeSolid builds a frame message whose planes are constant.
func encodeSolid(h Header, y, u, v byte) []byte {
	msg := AppendHeader(nil, h)
	for i := 0; i < h.Width*h.Height; i++ {
		msg = append(msg, y)
	}
	chroma := ((h.Width + 1) / 2) * ((h.Height + 1) / 2)
	switch h.Layout {
	case LayoutI420:
		msg = append(msg, bytes.Repeat([]byte{u}, chroma)...)
		msg = append(msg, bytes.Repeat([]byte{v}, chroma)...)
	case LayoutNV12:
		msg = append(msg, bytes.Repeat([]byte{u, v}, chroma)...)
	case LayoutNV21:
		msg = append(msg, bytes.Repeat([]byte{v, u}, chroma)...)
	}
	return msg
}

func TestHeader_RoundTrip(t *testing.T) {
	want := Header{Width: 640, Height: 480, Rotation: 270, Layout: LayoutNV21, Seq: 42}
	b := AppendHeader(nil, want)
	require.Len(t, b, HeaderSize)

	got, err := ParseHeader(b)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFramePool_DecodesEveryLayout(t *testing.T) {
	pool := NewFramePool(logger.NewWriterLogger(&bytes.Buffer{}))

	for _, layout := range []Layout{LayoutI420, LayoutNV12, LayoutNV21} {
		t.Run(layout.String(), func(t *testing.T) {
			h := Header{Width: 4, Height: 2, Rotation: 90, Layout: layout, Seq: 7}
			f, err := pool.DecodeFrame(encodeSolid(h, 76, 85, 255))
			require.NoError(t, err)
			defer f.Release()

			assert.Equal(t, 4, f.Width())
			assert.Equal(t, 2, f.Height())
			assert.Equal(t, 90, f.RotationDegrees())
			require.Len(t, f.Planes(), 3)

			dst := image.NewRGBA(image.Rect(0, 0, 4, 2))
			require.NoError(t, frame.YUVConverter{}.Convert(f, dst))
			px := dst.RGBAAt(3, 1)
			assert.InDelta(t, 254, int(px.R), 2)
			assert.InDelta(t, 0, int(px.G), 2)
			assert.InDelta(t, 0, int(px.B), 2)
		})
	}
}

func TestParseHeader_AcceptsMaxDimension(t *testing.T) {
	h, err := ParseHeader(AppendHeader(nil, Header{Width: MaxDimension, Height: MaxDimension, Layout: LayoutNV21}))
	require.NoError(t, err)
	assert.Equal(t, MaxDimension, h.Width)

	_, err = ParseHeader(AppendHeader(nil, Header{Width: 640, Height: MaxDimension + 1}))
	assert.ErrorIs(t, err, ErrMalformedFrame)
}

func TestFramePool_OddDimensions(t *testing.T) {
	pool := NewFramePool(nil)
	h := Header{Width: 3, Height: 3, Layout: LayoutNV12}
	f, err := pool.DecodeFrame(encodeSolid(h, 128, 128, 128))
	require.NoError(t, err)
	defer f.Release()

	dst := image.NewRGBA(image.Rect(0, 0, 3, 3))
	assert.NoError(t, frame.YUVConverter{}.Convert(f, dst))
}

func TestFramePool_Malformed(t *testing.T) {
	pool := NewFramePool(nil)
	valid := encodeSolid(Header{Width: 2, Height: 2, Layout: LayoutI420}, 1, 2, 3)

	badMagic := append([]byte(nil), valid...)
	copy(badMagic, "JPEG")
	badLayout := append([]byte(nil), valid...)
	badLayout[10] = 9
	zeroWidth := append([]byte(nil), valid...)
	zeroWidth[4], zeroWidth[5] = 0, 0
	// A tiny message whose header claims a huge frame must not allocate the payload.
	oversized := AppendHeader(nil, Header{Width: 65535, Height: 65535, Layout: LayoutI420})
	oversized = append(oversized, make([]byte, 64)...)
	tooWide := AppendHeader(nil, Header{Width: MaxDimension + 1, Height: 2, Layout: LayoutNV12})

	tests := []struct {
		name string
		msg  []byte
	}{
		{"empty", nil},
		{"short header", valid[:10]},
		{"bad magic", badMagic},
		{"unknown layout", badLayout},
		{"zero width", zeroWidth},
		{"oversized header", oversized},
		{"too wide", tooWide},
		{"short payload", valid[:len(valid)-1]},
		{"trailing bytes", append(append([]byte(nil), valid...), 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pool.DecodeFrame(tt.msg)
			assert.ErrorIs(t, err, ErrMalformedFrame)
		})
	}
}

func TestWireFrame_DoubleReleaseWarns(t *testing.T) {
	var logs bytes.Buffer
	pool := NewFramePool(logger.NewWriterLogger(&logs))

	f, err := pool.DecodeFrame(encodeSolid(Header{Width: 2, Height: 2, Seq: 5}, 1, 2, 3))
	require.NoError(t, err)

	f.Release()
	assert.NotContains(t, logs.String(), "released twice")
	f.Release()
	assert.Contains(t, logs.String(), "Frame 5 released twice")
}
