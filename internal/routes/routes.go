package routes

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"

	"maskwatch/internal/config"
	"maskwatch/internal/handler"
	"maskwatch/internal/logger"
	"maskwatch/internal/middleware"
	"maskwatch/internal/repository"
	"maskwatch/internal/service"
	hub "maskwatch/internal/service/websocket"
)

// Deps groups what the HTTP layer needs.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	Manager   *service.Manager
	Viewers   *hub.HubService
	Snapshots repository.SnapshotRepository
	StaticDir string
}

// dynamicHTMLHandler serves /path as <static>/path.html if the file exists; otherwise 404.
func dynamicHTMLHandler(staticDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/" {
			path = "/index"
		}

		filePath := filepath.Join(staticDir, filepath.Clean("/"+path)+".html")
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}

		http.ServeFile(w, r, filePath)
	}
}

// SetupRoutes registers camera and viewer streams, API endpoints and static
// pages, and wraps the router with the authentication middleware.
func SetupRoutes(d Deps) http.Handler {
	staticDir := d.StaticDir
	if staticDir == "" {
		staticDir = "static"
	}

	r := mux.NewRouter()

	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))

	// Camera clients
	r.HandleFunc("/camera/{camera}/stream", handler.CameraStreamHandler(d.Manager, d.Logger))

	// Viewers
	r.HandleFunc("/api/view", handler.ViewWebsocketHandler(d.Viewers, d.Logger))

	// Cameras
	r.HandleFunc("/api/cameras", handler.ListCamerasHandler(d.Manager, d.Logger)).Methods(http.MethodGet)
	r.HandleFunc("/api/cameras/{camera}/lens", handler.ToggleLensHandler(d.Manager, d.Logger)).Methods(http.MethodPost)

	// Snapshots
	r.HandleFunc("/api/snapshots", handler.GetSnapshotsHandler(d.Logger, d.Snapshots)).Methods(http.MethodGet)
	r.HandleFunc("/api/snapshots/stats", handler.GetSnapshotStatsHandler(d.Logger, d.Snapshots)).Methods(http.MethodGet)
	r.HandleFunc("/api/snapshots/view", handler.ViewSnapshotHandler(d.Config)).Methods(http.MethodGet)
	r.HandleFunc("/api/snapshots/delete", handler.DeleteSnapshotHandler(d.Config, d.Logger, d.Snapshots)).Methods(http.MethodPost, http.MethodDelete)
	r.HandleFunc("/api/snapshots/clear", handler.ClearSnapshotsHandler(d.Config, d.Logger, d.Snapshots)).Methods(http.MethodPost)

	// Logs
	r.HandleFunc("/logs/{level}", handler.ShowLogsHandler(d.Logger)).Methods(http.MethodGet)
	r.HandleFunc("/logs/{level}/clear", handler.ClearLogsHandler(d.Logger)).Methods(http.MethodPost)

	// Auth
	r.HandleFunc("/auth/login", handler.LoginHandler(d.Config, d.Logger)).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", handler.LogoutHandler)

	// /settings -> static/settings.html
	r.PathPrefix("/").HandlerFunc(dynamicHTMLHandler(staticDir)).Methods(http.MethodGet)

	return middleware.AuthMiddleware(r)
}
