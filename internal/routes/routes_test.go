package routes

import (
	"bytes"
	"image"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maskwatch/internal/config"
	"maskwatch/internal/logger"
	"maskwatch/internal/middleware"
	"maskwatch/internal/models"
	"maskwatch/internal/repository/sqlite"
	"maskwatch/internal/service"
	hub "maskwatch/internal/service/websocket"
)

type noClassifier struct{}

func (noClassifier) Classify(*image.RGBA) ([]models.Category, error) { return nil, nil }
func (noClassifier) EncodePreview(*image.RGBA) ([]byte, error)       { return nil, nil }

type noSnapshots struct{}

func (noSnapshots) AddSnapshot([]byte, string, models.Category) bool { return false }

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	dir := t.TempDir()
	log := logger.NewWriterLogger(&bytes.Buffer{})
	cfg := &config.Config{ImageDirectory: dir, ResultQueueSize: 1}

	db, err := sqlite.New(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	viewers := hub.NewHubService(log)
	manager := service.NewManager(noClassifier{}, noSnapshots{}, viewers, cfg, log)
	t.Cleanup(manager.Stop)

	static := filepath.Join(dir, "static")
	require.NoError(t, os.MkdirAll(static, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(static, "index.html"), []byte("<h1>maskwatch</h1>"), 0644))

	return SetupRoutes(Deps{
		Config:    cfg,
		Logger:    log,
		Manager:   manager,
		Viewers:   viewers,
		Snapshots: sqlite.NewSnapshotRepository(db),
		StaticDir: static,
	})
}

func TestSetupRoutes(t *testing.T) {
	router := newRouter(t)

	tests := []struct {
		name     string
		method   string
		path     string
		loggedIn bool
		wantCode int
	}{
		{"cameras need login", http.MethodGet, "/api/cameras", false, http.StatusUnauthorized},
		{"cameras", http.MethodGet, "/api/cameras", true, http.StatusOK},
		{"snapshots", http.MethodGet, "/api/snapshots", true, http.StatusOK},
		{"snapshot stats", http.MethodGet, "/api/snapshots/stats", true, http.StatusOK},
		{"lens toggle unknown camera", http.MethodPost, "/api/cameras/door/lens", true, http.StatusNotFound},
		{"index page", http.MethodGet, "/", true, http.StatusOK},
		{"missing page", http.MethodGet, "/settings", true, http.StatusNotFound},
		{"page redirects to login", http.MethodGet, "/", false, http.StatusSeeOther},
		{"camera stream is public", http.MethodGet, "/camera/door/stream", false, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.loggedIn {
				req.AddCookie(&http.Cookie{Name: middleware.AuthCookie, Value: "true"})
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
