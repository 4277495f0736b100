package camera

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"maskwatch/internal/dto"
	"maskwatch/internal/frame"
	"maskwatch/internal/logger"
)

// Lens identifies a camera lens.
type Lens string

const (
	LensFront Lens = "front"
	LensBack  Lens = "back"
)

var (
	ErrNoCamera              = errors.New("camera client reports no usable lens")
	ErrLensSwitchUnavailable = errors.New("lens switching needs both a front and a back lens")
	ErrSessionClosed         = errors.New("camera session closed")
)

// ConfigSink delivers capture configuration to the camera client.
type ConfigSink func(cfg dto.CameraConfig) error

// SelectLens picks the initial lens: front when present, otherwise back.
func SelectLens(lenses dto.Lenses) (Lens, error) {
	switch {
	case lenses.Front:
		return LensFront, nil
	case lenses.Back:
		return LensBack, nil
	default:
		return "", ErrNoCamera
	}
}

// Session is one connected camera. Frames submitted to it are analyzed on a
// single worker goroutine; frames that arrive while the worker is busy are
// dropped and released immediately.
type Session struct {
	id       string
	camera   string
	lenses   dto.Lenses
	aspect   frame.AspectRatio
	rotation int
	callback frame.FrameCallback
	sink     ConfigSink
	logger   *logger.Logger

	// pipeMu guards the pipeline and the lens; it is held for the whole of an
	// analysis so a lens switch waits for the in-flight frame.
	pipeMu   sync.Mutex
	pipeline *frame.Pipeline
	lens     Lens
	retired  frame.Stats

	frames      chan frame.RawFrame
	done        chan struct{}
	closeOnce   sync.Once
	wg          sync.WaitGroup
	droppedBusy atomic.Uint64
}

// NewSession validates the camera's hello, picks a lens and starts the worker.
func NewSession(camera string, hello dto.CameraHello, callback frame.FrameCallback, sink ConfigSink, logger *logger.Logger) (*Session, error) {
	aspect, err := frame.SelectAspectRatio(hello.DisplayWidth, hello.DisplayHeight)
	if err != nil {
		return nil, err
	}
	lens, err := SelectLens(hello.Lenses)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:       uuid.NewString(),
		camera:   camera,
		lenses:   hello.Lenses,
		aspect:   aspect,
		rotation: frame.EffectiveRotation(hello.Rotation),
		callback: callback,
		sink:     sink,
		logger:   logger,
		pipeline: frame.NewPipeline(callback),
		lens:     lens,
		frames:   make(chan frame.RawFrame),
		done:     make(chan struct{}),
	}

	s.wg.Add(1)
	go s.run()

	logger.Info("Camera %s connected (session %s, lens %s, aspect %s)", camera, s.id, lens, aspect)
	return s, nil
}

func (s *Session) ID() string     { return s.id }
func (s *Session) Camera() string { return s.camera }

// Lens returns the active lens.
func (s *Session) Lens() Lens {
	s.pipeMu.Lock()
	defer s.pipeMu.Unlock()
	return s.lens
}

// CanSwitch reports whether the camera has both lenses.
func (s *Session) CanSwitch() bool {
	return s.lenses.Front && s.lenses.Back
}

// Config is the capture configuration for the active lens.
func (s *Session) Config() dto.CameraConfig {
	return dto.CameraConfig{
		Type:        dto.MessageConfig,
		Session:     s.id,
		Lens:        string(s.Lens()),
		AspectRatio: s.aspect,
		Rotation:    s.rotation,
	}
}

// Submit hands f to the worker without blocking. If the worker is still busy
// with an earlier frame, f is released and frame.ErrBusy returned.
func (s *Session) Submit(f frame.RawFrame) error {
	select {
	case <-s.done:
		f.Release()
		return ErrSessionClosed
	default:
	}

	select {
	case s.frames <- f:
		return nil
	case <-s.done:
		f.Release()
		return ErrSessionClosed
	default:
		s.droppedBusy.Add(1)
		f.Release()
		return frame.ErrBusy
	}
}

func (s *Session) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case f := <-s.frames:
			s.analyze(f)
		}
	}
}

func (s *Session) analyze(f frame.RawFrame) {
	s.pipeMu.Lock()
	defer s.pipeMu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Camera %s: frame callback panicked: %v", s.camera, r)
		}
	}()

	err := s.pipeline.Analyze(f)
	switch {
	case err == nil:
	case frame.IsFormatError(err):
		s.logger.Warning("Camera %s: dropping frame: %v", s.camera, err)
	case errors.Is(err, frame.ErrBusy):
	default:
		s.logger.Error("Camera %s: frame analysis failed: %v", s.camera, err)
	}
}

// ToggleLens switches between the front and back lens. The pipeline is torn
// down and rebuilt, and the new configuration is sent to the camera client.
func (s *Session) ToggleLens() (dto.CameraConfig, error) {
	if !s.CanSwitch() {
		return dto.CameraConfig{}, ErrLensSwitchUnavailable
	}
	select {
	case <-s.done:
		return dto.CameraConfig{}, ErrSessionClosed
	default:
	}

	s.pipeMu.Lock()
	s.retired = addStats(s.retired, s.pipeline.Stats())
	s.pipeline.Close()
	s.pipeline = frame.NewPipeline(s.callback)
	if s.lens == LensFront {
		s.lens = LensBack
	} else {
		s.lens = LensFront
	}
	s.pipeMu.Unlock()

	cfg := s.Config()
	s.logger.Info("Camera %s switched to %s lens", s.camera, cfg.Lens)
	if s.sink != nil {
		if err := s.sink(cfg); err != nil {
			return cfg, fmt.Errorf("failed to send config to camera %s: %w", s.camera, err)
		}
	}
	return cfg, nil
}

// Info describes the session for the HTTP API.
func (s *Session) Info() dto.CameraInfo {
	s.pipeMu.Lock()
	stats := addStats(s.retired, s.pipeline.Stats())
	lens := s.lens
	s.pipeMu.Unlock()

	return dto.CameraInfo{
		Camera:      s.camera,
		Session:     s.id,
		Lens:        string(lens),
		CanSwitch:   s.CanSwitch(),
		AspectRatio: s.aspect,
		Stats:       stats,
		DroppedBusy: s.droppedBusy.Load(),
	}
}

// Close stops the worker after the in-flight frame and tears down the pipeline.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()

		s.pipeMu.Lock()
		s.pipeline.Close()
		s.pipeMu.Unlock()
		s.logger.Info("Camera %s disconnected (session %s)", s.camera, s.id)
	})
}

func addStats(a, b frame.Stats) frame.Stats {
	return frame.Stats{
		Analyzed:     a.Analyzed + b.Analyzed,
		DroppedBusy:  a.DroppedBusy + b.DroppedBusy,
		FormatErrors: a.FormatErrors + b.FormatErrors,
	}
}
