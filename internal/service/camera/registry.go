package camera

import (
	"errors"
	"sort"
	"sync"

	"maskwatch/internal/dto"
)

// ErrCameraNotFound is returned when no session is connected for a camera name.
var ErrCameraNotFound = errors.New("camera not connected")

// Registry tracks the live session of every connected camera.
type Registry struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Add registers s and returns the session it replaced, if any.
func (r *Registry) Add(s *Session) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	previous := r.sessions[s.Camera()]
	r.sessions[s.Camera()] = s
	return previous
}

// Remove unregisters s unless a newer session already took its place.
func (r *Registry) Remove(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.sessions[s.Camera()]; ok && current == s {
		delete(r.sessions, s.Camera())
	}
}

func (r *Registry) Get(camera string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[camera]
	if !ok {
		return nil, ErrCameraNotFound
	}
	return s, nil
}

// List returns info for all sessions, ordered by camera name.
func (r *Registry) List() []dto.CameraInfo {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	infos := make([]dto.CameraInfo, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Camera < infos[j].Camera })
	return infos
}

// CloseAll closes and unregisters every session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
