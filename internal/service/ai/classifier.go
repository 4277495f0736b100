package ai

import (
	"errors"
	"fmt"
	"image"
	"os"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"

	"maskwatch/internal/config"
	"maskwatch/internal/logger"
	"maskwatch/internal/models"
)

// ErrModelNotLoaded is returned by Classify when the network failed to load.
var ErrModelNotLoaded = errors.New("classification network not initialized")

// ClassifierService runs the face mask classifier on upright RGBA frames.
type ClassifierService struct {
	net        gocv.Net
	ready      atomic.Bool
	modelPath  string
	configPath string
	inputSize  int
	labels     []string
	logger     *logger.Logger
	mu         sync.Mutex // gocv.Net is not safe for concurrent use
}

// NewClassifierService creates a classifier and attempts to load the network.
// A missing or broken model is logged; Classify then reports ErrModelNotLoaded.
func NewClassifierService(cfg *config.Config, logger *logger.Logger) *ClassifierService {
	service := &ClassifierService{
		modelPath:  cfg.ModelPath,
		configPath: cfg.ModelConfigPath,
		inputSize:  cfg.ClassifierInputSize,
		labels:     DefaultLabels,
		logger:     logger,
	}

	if err := service.initializeNet(); err != nil {
		service.logger.Warning("Could not initialize classification network: %v", err)
		return service
	}

	return service
}

// initializeNet loads the DNN network and sets backend/target preferences.
func (s *ClassifierService) initializeNet() error {
	if _, err := os.Stat(s.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", s.modelPath)
	}

	if s.configPath != "" {
		if _, err := os.Stat(s.configPath); os.IsNotExist(err) {
			return fmt.Errorf("config file not found: %s", s.configPath)
		}
	}

	net := gocv.ReadNet(s.modelPath, s.configPath)
	if net.Empty() {
		return fmt.Errorf("failed to load network")
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return fmt.Errorf("failed to set preferable backend or target")
	}

	s.net = net
	s.ready.Store(true)
	s.logger.Info("Classification network initialized from %s", s.modelPath)
	return nil
}

// Ready reports whether the network is loaded.
func (s *ClassifierService) Ready() bool {
	return s.ready.Load()
}

// Classify returns the model's categories for img, best first.
func (s *ClassifierService) Classify(img *image.RGBA) ([]models.Category, error) {
	if !s.ready.Load() {
		return nil, ErrModelNotLoaded
	}

	bgr, err := rgbaToBGR(img)
	if err != nil {
		return nil, err
	}
	defer bgr.Close()

	blob := gocv.BlobFromImage(bgr, 1.0/255.0, image.Pt(s.inputSize, s.inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	s.mu.Lock()
	if !s.ready.Load() {
		s.mu.Unlock()
		return nil, ErrModelNotLoaded
	}
	s.net.SetInput(blob, "")
	output := s.net.Forward("")
	s.mu.Unlock()
	defer output.Close()

	scores := make([]float64, output.Total())
	for i := range scores {
		scores[i] = float64(output.GetFloatAt(0, i))
	}

	return RankCategories(scores, s.labels)
}

// EncodePreview encodes img as a JPEG for viewers and snapshots.
func (s *ClassifierService) EncodePreview(img *image.RGBA) ([]byte, error) {
	bgr, err := rgbaToBGR(img)
	if err != nil {
		return nil, err
	}
	defer bgr.Close()

	buf, err := gocv.IMEncode(".jpg", bgr)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	defer buf.Close()

	preview := make([]byte, len(buf.GetBytes()))
	copy(preview, buf.GetBytes())
	return preview, nil
}

// Close releases the network.
func (s *ClassifierService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready.CompareAndSwap(true, false) {
		return s.net.Close()
	}
	return nil
}

// rgbaToBGR wraps img's pixels in a Mat and converts them to OpenCV's channel order.
func rgbaToBGR(img *image.RGBA) (gocv.Mat, error) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return gocv.Mat{}, fmt.Errorf("empty image")
	}

	rgba, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC4, img.Pix[:w*h*4])
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to wrap image: %w", err)
	}
	defer rgba.Close()

	bgr := gocv.NewMat()
	if err := gocv.CvtColor(rgba, &bgr, gocv.ColorRGBAToBGR); err != nil {
		bgr.Close()
		return gocv.Mat{}, fmt.Errorf("failed to convert image to BGR: %w", err)
	}
	return bgr, nil
}
