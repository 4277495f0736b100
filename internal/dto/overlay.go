package dto

// Overlay is pushed to viewers for every classified frame.
type Overlay struct {
	Camera   string  `json:"camera"`
	Label    string  `json:"label"`
	Score    float64 `json:"score"`
	Progress int     `json:"progress"` // Score as a 0-100 percentage
	Color    string  `json:"color"`
	Image    string  `json:"image,omitempty"` // Base64 JPEG of the upright frame
}
