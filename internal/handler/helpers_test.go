package handler

import (
	"bytes"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"

	"maskwatch/internal/config"
	"maskwatch/internal/logger"
	"maskwatch/internal/models"
	"maskwatch/internal/service"
)

type stubClassifier struct {
	label string
	score float64
}

func (c stubClassifier) Classify(*image.RGBA) ([]models.Category, error) {
	return []models.Category{{Label: c.label, Score: c.score}}, nil
}

func (c stubClassifier) EncodePreview(*image.RGBA) ([]byte, error) {
	return []byte("jpeg"), nil
}

type discardSnapshots struct{}

func (discardSnapshots) AddSnapshot([]byte, string, models.Category) bool { return true }

type nopViewers struct{}

func (nopViewers) Broadcast([]byte, string) {}

func testLogger() *logger.Logger {
	return logger.NewWriterLogger(&bytes.Buffer{})
}

func newTestManager(t *testing.T, viewers service.Broadcaster) *service.Manager {
	t.Helper()
	if viewers == nil {
		viewers = nopViewers{}
	}
	cfg := &config.Config{ResultQueueSize: 4, MinConfidence: 0.5}
	m := service.NewManager(stubClassifier{label: models.LabelWithoutMask, score: 0.75}, discardSnapshots{}, viewers, cfg, testLogger())
	t.Cleanup(m.Stop)
	return m
}

func TestAtoiDefault(t *testing.T) {
	tests := []struct {
		input string
		def   int
		want  int
	}{
		{"10", 5, 10},
		{"1", 0, 1},
		{"", 5, 5},
		{"abc", 24, 24},
		{"0", 24, 24},
		{"-3", 1, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, atoiDefault(tt.input, tt.def), "atoiDefault(%q, %d)", tt.input, tt.def)
	}
}

func TestParseDate(t *testing.T) {
	got := parseDate("2025-06-15")
	assert.Equal(t, 2025, got.Year())
	assert.Equal(t, 15, got.Day())

	assert.True(t, parseDate("").IsZero())
	assert.True(t, parseDate("15/06/2025").IsZero())

	end := endOfDay(got)
	assert.Equal(t, 23, end.Hour())
	assert.True(t, endOfDay(parseDate("")).IsZero())
}
