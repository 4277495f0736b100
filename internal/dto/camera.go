package dto

import "maskwatch/internal/frame"

// Message types exchanged with camera clients.
const (
	MessageHello  = "hello"
	MessageConfig = "config"
	MessageError  = "error"
)

// Lenses lists which lenses a camera client can open.
type Lenses struct {
	Front bool `json:"front"`
	Back  bool `json:"back"`
}

// CameraHello is the first message a camera client sends.
type CameraHello struct {
	Type          string `json:"type"`
	DisplayWidth  int    `json:"display_width"`
	DisplayHeight int    `json:"display_height"`
	Rotation      int    `json:"rotation"`
	Lenses        Lenses `json:"lenses"`
}

// CameraConfig tells the camera client how to configure capture.
type CameraConfig struct {
	Type        string            `json:"type"`
	Session     string            `json:"session"`
	Lens        string            `json:"lens"`
	AspectRatio frame.AspectRatio `json:"aspect_ratio"`
	Rotation    int               `json:"rotation"`
}

// CameraError is sent before the server closes a camera connection.
type CameraError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// CameraInfo describes a connected camera session.
type CameraInfo struct {
	Camera      string            `json:"camera"`
	Session     string            `json:"session"`
	Lens        string            `json:"lens"`
	CanSwitch   bool              `json:"can_switch"`
	AspectRatio frame.AspectRatio `json:"aspect_ratio"`
	Stats       frame.Stats       `json:"stats"`
	DroppedBusy uint64            `json:"dropped_busy"`
}
