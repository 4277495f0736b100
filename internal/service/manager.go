package service

import (
	"encoding/base64"
	"encoding/json"
	"image"
	"sync"

	"maskwatch/internal/config"
	"maskwatch/internal/dto"
	"maskwatch/internal/frame"
	"maskwatch/internal/logger"
	"maskwatch/internal/models"
	"maskwatch/internal/service/camera"
)

// Overlay colors.
const (
	ColorMask   = "green"
	ColorNoMask = "red"
)

// Classifier labels upright frames and encodes them for viewers.
type Classifier interface {
	Classify(img *image.RGBA) ([]models.Category, error)
	EncodePreview(img *image.RGBA) ([]byte, error)
}

// Broadcaster pushes messages to the viewers of a camera.
type Broadcaster interface {
	Broadcast(message []byte, camera string)
}

// SnapshotSink stores frames that show a violation.
type SnapshotSink interface {
	AddSnapshot(data []byte, camera string, category models.Category) bool
}

type frameTask struct {
	camera string
	image  *image.RGBA
}

// Manager owns the camera sessions and the single dispatch goroutine that
// classifies normalized frames and updates viewers.
type Manager struct {
	classifier    Classifier
	snapshots     SnapshotSink
	viewers       Broadcaster
	cameras       *camera.Registry
	logger        *logger.Logger
	minConfidence float64

	queue   chan frameTask
	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

func NewManager(classifier Classifier, snapshots SnapshotSink, viewers Broadcaster, cfg *config.Config, logger *logger.Logger) *Manager {
	queueSize := cfg.ResultQueueSize
	if queueSize < 1 {
		queueSize = 1
	}

	manager := &Manager{
		classifier:    classifier,
		snapshots:     snapshots,
		viewers:       viewers,
		cameras:       camera.NewRegistry(),
		logger:        logger,
		minConfidence: cfg.MinConfidence,
		queue:         make(chan frameTask, queueSize),
	}

	manager.wg.Add(1)
	go manager.dispatch()

	manager.logger.Info("Manager started - result queue holds %d frame(s)", queueSize)
	return manager
}

// OpenSession starts a session for a camera that sent hello. An older session
// for the same camera name is closed.
func (m *Manager) OpenSession(name string, hello dto.CameraHello, sink camera.ConfigSink) (*camera.Session, error) {
	callback := frame.FrameCallbackFunc(func(img *image.RGBA) {
		m.HandleFrame(name, img)
	})

	session, err := camera.NewSession(name, hello, callback, sink, m.logger)
	if err != nil {
		return nil, err
	}

	if previous := m.cameras.Add(session); previous != nil {
		m.logger.Warning("Camera %s reconnected - closing session %s", name, previous.ID())
		previous.Close()
	}
	return session, nil
}

// CloseSession stops s and forgets it.
func (m *Manager) CloseSession(s *camera.Session) {
	m.cameras.Remove(s)
	s.Close()
}

// Cameras lists connected cameras.
func (m *Manager) Cameras() []dto.CameraInfo {
	return m.cameras.List()
}

// ToggleLens switches the lens of a connected camera.
func (m *Manager) ToggleLens(name string) (dto.CameraConfig, error) {
	session, err := m.cameras.Get(name)
	if err != nil {
		return dto.CameraConfig{}, err
	}
	return session.ToggleLens()
}

// HandleFrame queues an upright frame for classification. When the queue is
// full the frame is dropped and false returned.
func (m *Manager) HandleFrame(camera string, img *image.RGBA) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.stopped {
		return false
	}

	select {
	case m.queue <- frameTask{camera: camera, image: img}:
		return true
	default:
		m.logger.Warning("Result queue full for camera %s - skipping classification", camera)
		return false
	}
}

func (m *Manager) dispatch() {
	defer m.wg.Done()
	for task := range m.queue {
		m.processFrame(task)
	}
}

func (m *Manager) processFrame(task frameTask) {
	categories, err := m.classifier.Classify(task.image)
	if err != nil {
		m.logger.Error("Camera %s: classification failed: %v", task.camera, err)
		return
	}
	if len(categories) == 0 {
		return
	}
	top := categories[0]

	preview, err := m.classifier.EncodePreview(task.image)
	if err != nil {
		m.logger.Warning("Camera %s: preview not encoded: %v", task.camera, err)
	}

	msg, err := json.Marshal(BuildOverlay(task.camera, top, preview))
	if err != nil {
		m.logger.Error("Camera %s: overlay not encoded: %v", task.camera, err)
		return
	}
	m.viewers.Broadcast(msg, task.camera)

	if top.Label == models.LabelWithoutMask && top.Score >= m.minConfidence && preview != nil {
		if m.snapshots.AddSnapshot(preview, task.camera, top) {
			m.logger.Info("Camera %s: %s (%.2f) snapshot buffered", task.camera, top.Label, top.Score)
		}
	}
}

// BuildOverlay renders the top category for viewers.
func BuildOverlay(camera string, top models.Category, preview []byte) dto.Overlay {
	overlay := dto.Overlay{
		Camera:   camera,
		Label:    top.Label,
		Score:    top.Score,
		Progress: int(top.Score * 100),
		Color:    ColorNoMask,
	}
	if top.Label == models.LabelWithMask {
		overlay.Color = ColorMask
	}
	if len(preview) > 0 {
		overlay.Image = base64.StdEncoding.EncodeToString(preview)
	}
	return overlay
}

// Stop closes every camera session and waits for queued frames to be processed.
func (m *Manager) Stop() {
	m.cameras.CloseAll()

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	close(m.queue)
	m.mu.Unlock()

	m.wg.Wait()
	m.logger.Info("Manager stopped")
}
