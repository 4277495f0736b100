package camera

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"maskwatch/internal/frame"
	"maskwatch/internal/logger"
)

const (
	// HeaderSize is the length of the binary frame header.
	HeaderSize = 16
	// MaxDimension bounds frame width and height. Payload buffers are sized
	// from the header, so larger frames are rejected before allocating.
	MaxDimension = 4096
)

var wireMagic = []byte("YUVF")

// ErrMalformedFrame is returned for binary messages that do not carry a frame.
var ErrMalformedFrame = errors.New("malformed frame message")

// Layout identifies how chroma samples are stored after the Y plane.
type Layout uint8

const (
	LayoutI420 Layout = iota // Y, U, V planes
	LayoutNV12               // Y, interleaved UV
	LayoutNV21               // Y, interleaved VU
)

func (l Layout) String() string {
	switch l {
	case LayoutI420:
		return "I420"
	case LayoutNV12:
		return "NV12"
	case LayoutNV21:
		return "NV21"
	default:
		return fmt.Sprintf("Layout(%d)", uint8(l))
	}
}

// Header precedes every frame sent by a camera client.
type Header struct {
	Width    int
	Height   int
	Rotation int
	Layout   Layout
	Seq      uint32
}

// ParseHeader decodes the fixed size header at the start of b.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header is %d bytes", ErrMalformedFrame, len(b))
	}
	if !bytes.Equal(b[:4], wireMagic) {
		return Header{}, fmt.Errorf("%w: bad magic %q", ErrMalformedFrame, b[:4])
	}

	h := Header{
		Width:    int(binary.BigEndian.Uint16(b[4:6])),
		Height:   int(binary.BigEndian.Uint16(b[6:8])),
		Rotation: int(binary.BigEndian.Uint16(b[8:10])),
		Layout:   Layout(b[10]),
		Seq:      binary.BigEndian.Uint32(b[12:16]),
	}
	if h.Width == 0 || h.Height == 0 || h.Width > MaxDimension || h.Height > MaxDimension {
		return Header{}, fmt.Errorf("%w: size %dx%d", ErrMalformedFrame, h.Width, h.Height)
	}
	if h.Layout > LayoutNV21 {
		return Header{}, fmt.Errorf("%w: unknown layout %d", ErrMalformedFrame, b[10])
	}
	return h, nil
}

// AppendHeader appends the encoded header to b.
func AppendHeader(b []byte, h Header) []byte {
	b = append(b, wireMagic...)
	b = binary.BigEndian.AppendUint16(b, uint16(h.Width))
	b = binary.BigEndian.AppendUint16(b, uint16(h.Height))
	b = binary.BigEndian.AppendUint16(b, uint16(h.Rotation))
	b = append(b, byte(h.Layout), 0)
	return binary.BigEndian.AppendUint32(b, h.Seq)
}

// PayloadSize is the number of plane bytes following the header.
func (h Header) PayloadSize() int {
	cw, ch := (h.Width+1)/2, (h.Height+1)/2
	return h.Width*h.Height + 2*cw*ch
}

// FramePool decodes frames into reusable buffers. Each decoded frame returns
// its buffer to the pool when released.
type FramePool struct {
	buffers sync.Pool
	logger  *logger.Logger
}

func NewFramePool(logger *logger.Logger) *FramePool {
	return &FramePool{logger: logger}
}

// ReadFrame reads one header and its planes from r. r must hold exactly one frame.
func (p *FramePool) ReadFrame(r io.Reader) (frame.RawFrame, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	h, err := ParseHeader(hdr[:])
	if err != nil {
		return nil, err
	}

	buf := p.getBuffer(h.PayloadSize())
	if _, err := io.ReadFull(r, *buf); err != nil {
		p.buffers.Put(buf)
		return nil, fmt.Errorf("%w: payload: %v", ErrMalformedFrame, err)
	}
	var extra [1]byte
	if n, _ := r.Read(extra[:]); n > 0 {
		p.buffers.Put(buf)
		return nil, fmt.Errorf("%w: trailing bytes after %s payload", ErrMalformedFrame, h.Layout)
	}

	return newWireFrame(p, h, buf), nil
}

// DecodeFrame decodes a complete binary message.
func (p *FramePool) DecodeFrame(msg []byte) (frame.RawFrame, error) {
	return p.ReadFrame(bytes.NewReader(msg))
}

func (p *FramePool) getBuffer(n int) *[]byte {
	if v, ok := p.buffers.Get().(*[]byte); ok && cap(*v) >= n {
		*v = (*v)[:n]
		return v
	}
	b := make([]byte, n)
	return &b
}

type wireFrame struct {
	header   Header
	buf      *[]byte
	planes   []frame.Plane
	pool     *FramePool
	released atomic.Bool
}

func newWireFrame(pool *FramePool, h Header, buf *[]byte) *wireFrame {
	data := *buf
	ySize := h.Width * h.Height
	cw, ch := (h.Width+1)/2, (h.Height+1)/2
	cSize := cw * ch

	y := frame.Plane{Data: data[:ySize], RowStride: h.Width, PixelStride: 1}
	var u, v frame.Plane
	switch h.Layout {
	case LayoutI420:
		u = frame.Plane{Data: data[ySize : ySize+cSize], RowStride: cw, PixelStride: 1}
		v = frame.Plane{Data: data[ySize+cSize : ySize+2*cSize], RowStride: cw, PixelStride: 1}
	case LayoutNV12:
		uv := data[ySize : ySize+2*cSize]
		u = frame.Plane{Data: uv, RowStride: 2 * cw, PixelStride: 2}
		v = frame.Plane{Data: uv[1:], RowStride: 2 * cw, PixelStride: 2}
	case LayoutNV21:
		vu := data[ySize : ySize+2*cSize]
		v = frame.Plane{Data: vu, RowStride: 2 * cw, PixelStride: 2}
		u = frame.Plane{Data: vu[1:], RowStride: 2 * cw, PixelStride: 2}
	}

	return &wireFrame{
		header: h,
		buf:    buf,
		planes: []frame.Plane{y, u, v},
		pool:   pool,
	}
}

func (f *wireFrame) Width() int            { return f.header.Width }
func (f *wireFrame) Height() int           { return f.header.Height }
func (f *wireFrame) RotationDegrees() int  { return f.header.Rotation }
func (f *wireFrame) Planes() []frame.Plane { return f.planes }
func (f *wireFrame) Sequence() uint32      { return f.header.Seq }

// Release returns the frame's buffer to the pool.
func (f *wireFrame) Release() {
	if !f.released.CompareAndSwap(false, true) {
		if f.pool.logger != nil {
			f.pool.logger.Warning("Frame %d released twice", f.header.Seq)
		}
		return
	}
	buf := f.buf
	f.buf = nil
	f.planes = nil
	f.pool.buffers.Put(buf)
}
