package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"maskwatch/internal/logger"
)

const writeWait = 5 * time.Second

type broadcastMessage struct {
	camera  string
	payload []byte
}

type registration struct {
	conn   *websocket.Conn
	camera string
}

// HubService fans overlay messages out to connected viewers. A viewer either
// follows one camera or, with an empty camera name, all of them.
type HubService struct {
	clients    map[*websocket.Conn]string
	broadcast  chan broadcastMessage
	register   chan registration
	unregister chan *websocket.Conn
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *logger.Logger
}

func NewHubService(logger *logger.Logger) *HubService {
	return &HubService{
		clients:    make(map[*websocket.Conn]string),
		broadcast:  make(chan broadcastMessage, 16),
		register:   make(chan registration),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves registrations and broadcasts until ctx is done, then closes all clients.
func (h *HubService) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case reg := <-h.register:
			h.mutex.Lock()
			h.clients[reg.conn] = reg.camera
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Viewer connected. Total: %d", count)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Viewer disconnected. Total: %d", count)

		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

func (h *HubService) deliver(message broadcastMessage) {
	var failed []*websocket.Conn

	h.mutex.RLock()
	for client, camera := range h.clients {
		if camera != "" && camera != message.camera {
			continue
		}
		client.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.WriteMessage(websocket.TextMessage, message.payload); err != nil {
			h.logger.Error("Error sending message: %v", err)
			failed = append(failed, client)
		}
	}
	h.mutex.RUnlock()

	if len(failed) == 0 {
		return
	}
	h.mutex.Lock()
	for _, client := range failed {
		delete(h.clients, client)
		client.Close()
	}
	h.mutex.Unlock()
}

// Register adds a viewer following camera ("" for all cameras).
// After Run returns the connection is closed instead.
func (h *HubService) Register(client *websocket.Conn, camera string) {
	select {
	case h.register <- registration{conn: client, camera: camera}:
	case <-h.done:
		client.Close()
	}
}

func (h *HubService) Unregister(client *websocket.Conn) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues message for viewers of camera. When the queue is full the
// message is dropped; viewers only care about the latest overlay.
func (h *HubService) Broadcast(message []byte, camera string) {
	select {
	case h.broadcast <- broadcastMessage{camera: camera, payload: message}:
	default:
		h.logger.Warning("Viewer queue full - dropping overlay for camera %s", camera)
	}
}

func (h *HubService) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
