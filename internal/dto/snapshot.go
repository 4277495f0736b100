package dto

import (
	"encoding/json"
	"time"

	"maskwatch/internal/models"
)

// BufferedSnapshot holds an encoded frame and its classification before flushing to disk.
type BufferedSnapshot struct {
	Timestamp time.Time
	Camera    string
	Category  models.Category
	Data      []byte
}

// SnapshotInfo represents a stored snapshot in API responses.
type SnapshotInfo struct {
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	TimeOfDay time.Time `json:"timeOfDay"`
	Camera    string    `json:"camera"`
	Label     string    `json:"label"`
	Score     float64   `json:"score"`
}

// MarshalJSON customizes JSON output for SnapshotInfo to format date and time-of-day.
func (p SnapshotInfo) MarshalJSON() ([]byte, error) {
	type Alias SnapshotInfo
	return json.Marshal(&struct {
		Date      string `json:"date"`
		TimeOfDay string `json:"timeOfDay"`
		Alias
	}{
		Date:      p.Date.Format("02-01-2006"),
		TimeOfDay: p.TimeOfDay.Format("15:04"),
		Alias:     (Alias)(p),
	})
}

// SnapshotsData is a paginated response payload for the snapshot gallery.
type SnapshotsData struct {
	Snapshots   []SnapshotInfo `json:"snapshots"`
	Length      int            `json:"length"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
	Limit       int            `json:"pageSize"`
}
