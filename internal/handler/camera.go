package handler

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"maskwatch/internal/dto"
	"maskwatch/internal/logger"
	"maskwatch/internal/service"
	"maskwatch/internal/service/camera"
)

const (
	// maxFrameMessage bounds a single camera message (the largest 4:2:0 frame plus header).
	maxFrameMessage = camera.HeaderSize + camera.MaxDimension*camera.MaxDimension*3/2
	helloTimeout    = 10 * time.Second
	writeTimeout    = 5 * time.Second
)

// CameraStreamHandler accepts a camera client over WebSocket. The client sends
// a hello, receives its capture config and then streams binary frames, which
// are submitted to the camera's session.
func CameraStreamHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["camera"]

		conn, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("Camera %s: WebSocket upgrade error: %v", name, err)
			return
		}
		defer conn.Close()
		conn.SetReadLimit(maxFrameMessage)

		var writeMu sync.Mutex
		send := func(v interface{}) error {
			writeMu.Lock()
			defer writeMu.Unlock()
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			return conn.WriteJSON(v)
		}
		reject := func(code int, err error) {
			send(dto.CameraError{Type: dto.MessageError, Message: err.Error()})
			writeMu.Lock()
			conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, err.Error()), time.Now().Add(writeTimeout))
			writeMu.Unlock()
		}

		conn.SetReadDeadline(time.Now().Add(helloTimeout))
		var hello dto.CameraHello
		if err := conn.ReadJSON(&hello); err != nil {
			logger.Warning("Camera %s: invalid hello: %v", name, err)
			reject(websocket.CloseUnsupportedData, errors.New("expected hello message"))
			return
		}
		if hello.Type != dto.MessageHello {
			logger.Warning("Camera %s: expected hello, got %q", name, hello.Type)
			reject(websocket.CloseUnsupportedData, errors.New("expected hello message"))
			return
		}
		conn.SetReadDeadline(time.Time{})

		session, err := manager.OpenSession(name, hello, func(cfg dto.CameraConfig) error {
			return send(cfg)
		})
		if err != nil {
			logger.Warning("Camera %s: rejected: %v", name, err)
			reject(websocket.ClosePolicyViolation, err)
			return
		}
		defer manager.CloseSession(session)

		if err := send(session.Config()); err != nil {
			logger.Error("Camera %s: failed to send config: %v", name, err)
			return
		}

		pool := camera.NewFramePool(logger)
		for {
			kind, reader, err := conn.NextReader()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Info("Camera %s closed the stream", name)
				} else {
					logger.Error("Camera %s: error reading message: %v", name, err)
				}
				return
			}
			if kind != websocket.BinaryMessage {
				continue
			}

			f, err := pool.ReadFrame(reader)
			if err != nil {
				logger.Warning("Camera %s: %v", name, err)
				continue
			}
			if err := session.Submit(f); errors.Is(err, camera.ErrSessionClosed) {
				return
			}
		}
	}
}
