package repository

import "maskwatch/internal/models"

// SnapshotRepository defines the interface for snapshot data operations.
type SnapshotRepository interface {
	// Create operations
	Insert(s *models.Snapshot) (int64, error)
	InsertBatch(snapshots []models.Snapshot) error

	// Read operations
	GetByID(id int64) (*models.Snapshot, error)
	GetByFilename(filename string) (*models.Snapshot, error)
	GetAll(filter *models.SnapshotFilter) ([]models.Snapshot, error)
	GetTotalCount(filter *models.SnapshotFilter) (int, error)
	GetStats() (*models.SnapshotStats, error)

	// Delete operations
	DeleteByFilename(filename string) error
	DeleteAll() error
}
