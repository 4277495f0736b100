package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"maskwatch/internal/config"
	"maskwatch/internal/dto"
	"maskwatch/internal/logger"
	"maskwatch/internal/models"
	"maskwatch/internal/repository"
)

const (
	// TimestampFormat is the timestamp layout at the start of every snapshot filename.
	TimestampFormat = "2006-01-02_15-04_05.000"
	// DefaultFlushInterval replaces a non-positive FLUSH_INTERVAL.
	DefaultFlushInterval = 30 * time.Second
)

// BufferService buffers snapshots in memory and periodically flushes them to disk.
type BufferService struct {
	imagesDir     string
	limit         int
	flushInterval time.Duration
	snapshots     []dto.BufferedSnapshot
	bufferCount   map[string]int
	mu            sync.Mutex
	logger        *logger.Logger
	repo          repository.SnapshotRepository
	now           func() time.Time
}

// NewBufferService creates a new BufferService. repo may be nil, in which case
// snapshots are only written to disk.
func NewBufferService(cfg *config.Config, logger *logger.Logger, repo repository.SnapshotRepository) *BufferService {
	flushInterval := time.Duration(cfg.FlushInterval) * time.Second
	if flushInterval <= 0 {
		flushInterval = DefaultFlushInterval
	}

	return &BufferService{
		imagesDir:     cfg.ImageDirectory,
		limit:         cfg.SnapshotBufferLimit,
		flushInterval: flushInterval,
		snapshots:     make([]dto.BufferedSnapshot, 0),
		bufferCount:   make(map[string]int),
		logger:        logger,
		repo:          repo,
		now:           time.Now,
	}
}

// Run flushes buffered snapshots on every tick until ctx is done, then flushes once more.
func (s *BufferService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.FlushSnapshots()
			return
		case <-ticker.C:
			s.FlushSnapshots()
		}
	}
}

// AddSnapshot appends an encoded frame to the buffer for a given camera.
// It reports false when the camera's buffer is already full.
func (s *BufferService) AddSnapshot(data []byte, camera string, category models.Category) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bufferCount[camera] >= s.limit {
		return false
	}

	s.snapshots = append(s.snapshots, dto.BufferedSnapshot{
		Timestamp: s.now(),
		Camera:    camera,
		Category:  category,
		Data:      data,
	})
	s.bufferCount[camera]++
	s.logger.Info("Snapshot buffer for camera %s: %d/%d", camera, s.bufferCount[camera], s.limit)
	return true
}

// Pending returns the number of buffered snapshots.
func (s *BufferService) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snapshots)
}

// FlushSnapshots writes buffered snapshots to disk, indexes them and resets the buffer.
func (s *BufferService) FlushSnapshots() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.snapshots) == 0 {
		return 0
	}

	if err := os.MkdirAll(s.imagesDir, 0755); err != nil {
		s.logger.Error("Error creating directory: %v", err)
		return 0
	}

	saved := make([]models.Snapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		filename := SnapshotFilename(snap.Timestamp, snap.Camera, snap.Category.Label)
		fullpath := filepath.Join(s.imagesDir, filename)

		if err := os.WriteFile(fullpath, snap.Data, 0644); err != nil {
			s.logger.Error("Error saving snapshot %s: %v", filename, err)
			continue
		}

		saved = append(saved, models.Snapshot{
			Filename:  filename,
			Camera:    snap.Camera,
			Label:     snap.Category.Label,
			Score:     snap.Category.Score,
			Timestamp: snap.Timestamp,
			FilePath:  fullpath,
			FileSize:  int64(len(snap.Data)),
		})
	}

	if s.repo != nil && len(saved) > 0 {
		if err := s.repo.InsertBatch(saved); err != nil {
			s.logger.Error("Error saving snapshots to database: %v", err)
		}
	}

	s.logger.Info("Flushed %d snapshots to disk", len(saved))
	s.snapshots = s.snapshots[:0]
	s.bufferCount = make(map[string]int)
	return len(saved)
}

// SnapshotFilename builds "<timestamp>_<camera>_<label>.jpg". Underscores in
// the camera name are replaced so the name can be parsed back.
func SnapshotFilename(ts time.Time, camera, label string) string {
	camera = strings.ReplaceAll(camera, "_", "-")
	return fmt.Sprintf("%s_%s_%s.jpg", ts.Format(TimestampFormat), camera, label)
}

// ParseSnapshotFilename is the inverse of SnapshotFilename.
func ParseSnapshotFilename(name string) (time.Time, string, string, error) {
	if !strings.HasSuffix(name, ".jpg") || len(name) <= len(TimestampFormat)+1 {
		return time.Time{}, "", "", fmt.Errorf("invalid snapshot filename %q", name)
	}

	ts, err := time.ParseInLocation(TimestampFormat, name[:len(TimestampFormat)], time.Local)
	if err != nil {
		return time.Time{}, "", "", fmt.Errorf("invalid timestamp in %q: %w", name, err)
	}

	rest := strings.TrimSuffix(name[len(TimestampFormat):], ".jpg")
	camera, label, ok := strings.Cut(strings.TrimPrefix(rest, "_"), "_")
	if !ok || camera == "" || label == "" {
		return time.Time{}, "", "", fmt.Errorf("missing camera or label in %q", name)
	}
	return ts, camera, label, nil
}
