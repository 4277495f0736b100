package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"maskwatch/internal/config"
	"maskwatch/internal/logger"
	"maskwatch/internal/repository/sqlite"
	"maskwatch/internal/routes"
	"maskwatch/internal/service"
	"maskwatch/internal/service/ai"
	"maskwatch/internal/service/storage"
	"maskwatch/internal/service/websocket"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config        *config.Config
	logger        *logger.Logger
	db            *sqlite.DB
	classifier    *ai.ClassifierService
	bufferService *storage.BufferService
	hubService    *websocket.HubService
	manager       *service.Manager
	server        *http.Server
}

// NewApp wires configuration, storage, the classifier and the HTTP server.
func NewApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755); err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		log.Close()
		return nil, err
	}
	repo := sqlite.NewSnapshotRepository(db)

	classifier := ai.NewClassifierService(cfg, log)
	buffer := storage.NewBufferService(cfg, log, repo)
	hub := websocket.NewHubService(log)
	mng := service.NewManager(classifier, buffer, hub, cfg, log)

	router := routes.SetupRoutes(routes.Deps{
		Config:    cfg,
		Logger:    log,
		Manager:   mng,
		Viewers:   hub,
		Snapshots: repo,
	})

	return &App{
		config:        cfg,
		logger:        log,
		db:            db,
		classifier:    classifier,
		bufferService: buffer,
		hubService:    hub,
		manager:       mng,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully: the server
// stops accepting connections, camera sessions close, queued frames are
// classified and buffered snapshots are flushed.
func (a *App) Run(ctx context.Context) error {
	bgCtx, stopBackground := context.WithCancel(context.Background())
	bufferDone := make(chan struct{})
	go func() {
		a.bufferService.Run(bgCtx)
		close(bufferDone)
	}()
	go a.hubService.Run(bgCtx)

	a.logger.Info("maskwatch listening on %s", a.server.Addr)
	a.logger.Info("Snapshots: %s, database: %s", a.config.ImageDirectory, a.config.DatabasePath)
	a.logger.Info("Model: %s (ready: %t)", a.config.ModelPath, a.classifier.Ready())

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.server.ListenAndServe()
	}()

	var runErr error
	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	case <-ctx.Done():
		a.logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("HTTP shutdown: %v", err)
		}
		cancel()
	}

	a.manager.Stop()
	stopBackground()
	<-bufferDone

	a.classifier.Close()
	if err := a.db.Close(); err != nil {
		a.logger.Error("Closing database: %v", err)
	}
	a.logger.Close()
	return runErr
}
