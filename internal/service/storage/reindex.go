package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"maskwatch/internal/models"
	"maskwatch/internal/repository"
)

// ReindexResult summarizes a Reindex run.
type ReindexResult struct {
	Indexed int
	Skipped []string
}

// Reindex scans imagesDir for snapshot files and inserts the ones missing
// from repo. Scores are not part of the filename and are stored as 0.
func Reindex(imagesDir string, repo repository.SnapshotRepository) (ReindexResult, error) {
	var result ReindexResult

	files, err := os.ReadDir(imagesDir)
	if err != nil {
		return result, fmt.Errorf("failed to read snapshot directory: %w", err)
	}

	var snapshots []models.Snapshot
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".jpg" {
			continue
		}

		ts, camera, label, err := ParseSnapshotFilename(file.Name())
		if err != nil {
			result.Skipped = append(result.Skipped, file.Name())
			continue
		}
		info, err := file.Info()
		if err != nil {
			result.Skipped = append(result.Skipped, file.Name())
			continue
		}

		snapshots = append(snapshots, models.Snapshot{
			Filename:  file.Name(),
			Camera:    camera,
			Label:     label,
			Timestamp: ts,
			FilePath:  filepath.Join(imagesDir, file.Name()),
			FileSize:  info.Size(),
		})
	}

	if len(snapshots) == 0 {
		return result, nil
	}
	if err := repo.InsertBatch(snapshots); err != nil {
		return result, err
	}
	result.Indexed = len(snapshots)
	return result, nil
}
