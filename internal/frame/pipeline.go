package frame

import (
	"image"
	"sync/atomic"
)

// FrameCallback receives upright frames produced by a Pipeline.
type FrameCallback interface {
	OnFrame(img *image.RGBA)
}

// FrameCallbackFunc adapts a plain function to FrameCallback.
type FrameCallbackFunc func(img *image.RGBA)

// OnFrame calls f(img).
func (f FrameCallbackFunc) OnFrame(img *image.RGBA) {
	f(img)
}

// Stats is a snapshot of pipeline counters.
type Stats struct {
	Analyzed     uint64 `json:"analyzed"`
	DroppedBusy  uint64 `json:"dropped_busy"`
	FormatErrors uint64 `json:"format_errors"`
}

// Pipeline prepares raw camera frames for classification: it converts them to
// RGBA in a reused raster, rotates the result upright and hands it to the
// registered callback. Only one frame may be in flight; the frame is released
// exactly once whatever happens during analysis.
type Pipeline struct {
	converter  ColorConverter
	normalizer *Normalizer
	callback   FrameCallback

	raster *image.RGBA

	processing   atomic.Bool
	analyzed     atomic.Uint64
	droppedBusy  atomic.Uint64
	formatErrors atomic.Uint64
}

// NewPipeline creates a Pipeline using the YUV converter.
func NewPipeline(callback FrameCallback) *Pipeline {
	return NewPipelineWithConverter(YUVConverter{}, callback)
}

// NewPipelineWithConverter creates a Pipeline with a custom converter.
func NewPipelineWithConverter(converter ColorConverter, callback FrameCallback) *Pipeline {
	return &Pipeline{
		converter:  converter,
		normalizer: NewNormalizer(),
		callback:   callback,
	}
}

// Analyze processes one frame and always releases it.
//
// A frame that arrives while another is in flight is released immediately and
// ErrBusy is returned. A frame that fails conversion is released, the callback
// is skipped and the *FormatError is returned.
func (p *Pipeline) Analyze(f RawFrame) error {
	if !p.processing.CompareAndSwap(false, true) {
		p.droppedBusy.Add(1)
		f.Release()
		return ErrBusy
	}
	defer p.processing.Store(false)
	defer f.Release()

	w, h := f.Width(), f.Height()
	if w <= 0 || h <= 0 {
		p.formatErrors.Add(1)
		return formatErrorf("invalid dimensions %dx%d", w, h)
	}

	raster := p.ensureRaster(w, h)
	if err := p.converter.Convert(f, raster); err != nil {
		if IsFormatError(err) {
			p.formatErrors.Add(1)
		}
		return err
	}

	upright := p.normalizer.Normalize(raster, f.RotationDegrees())
	p.analyzed.Add(1)

	if p.callback != nil {
		p.callback.OnFrame(upright)
	}
	return nil
}

// ensureRaster returns the conversion raster, reallocating only when the
// frame size differs from the previous one.
func (p *Pipeline) ensureRaster(w, h int) *image.RGBA {
	if p.raster == nil || p.raster.Rect.Dx() != w || p.raster.Rect.Dy() != h {
		p.raster = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	return p.raster
}

// Processing reports whether a frame is currently in flight.
func (p *Pipeline) Processing() bool {
	return p.processing.Load()
}

// Stats returns the current counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Analyzed:     p.analyzed.Load(),
		DroppedBusy:  p.droppedBusy.Load(),
		FormatErrors: p.formatErrors.Load(),
	}
}

// Close drops the conversion raster and the cached rotation. It must not be
// called while a frame is in flight.
func (p *Pipeline) Close() {
	p.raster = nil
	p.normalizer.Reset()
}
