package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"maskwatch/internal/logger"
	"maskwatch/internal/service"
	"maskwatch/internal/service/camera"
)

// ListCamerasHandler returns the connected cameras with their lens and pipeline counters.
func ListCamerasHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, manager.Cameras(), logger)
	}
}

// ToggleLensHandler switches a camera between its front and back lens.
func ToggleLensHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["camera"]

		cfg, err := manager.ToggleLens(name)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, cfg, logger)
		case errors.Is(err, camera.ErrCameraNotFound), errors.Is(err, camera.ErrSessionClosed):
			http.Error(w, "Camera not connected", http.StatusNotFound)
		case errors.Is(err, camera.ErrLensSwitchUnavailable):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			logger.Error("Lens switch for camera %s: %v", name, err)
			http.Error(w, "Camera did not accept the new configuration", http.StatusBadGateway)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}, logger *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}
