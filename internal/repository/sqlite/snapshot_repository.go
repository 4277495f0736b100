package sqlite

import (
	"database/sql"
	"fmt"

	"maskwatch/internal/models"
)

const snapshotColumns = `id, filename, camera, label, score, timestamp, filepath, filesize`

// SnapshotRepository implements repository.SnapshotRepository for SQLite.
type SnapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a new SQLite snapshot repository.
func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Insert adds a new snapshot record to the database. Timestamps are stored
// in UTC so that range filters compare consistently.
func (r *SnapshotRepository) Insert(s *models.Snapshot) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO snapshots (filename, camera, label, score, timestamp, filepath, filesize)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.Filename, s.Camera, s.Label, s.Score, s.Timestamp.UTC(), s.FilePath, s.FileSize)
	if err != nil {
		return 0, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return result.LastInsertId()
}

// InsertBatch adds multiple snapshots in a single transaction. Filenames that
// already exist are skipped.
func (r *SnapshotRepository) InsertBatch(snapshots []models.Snapshot) error {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO snapshots (filename, camera, label, score, timestamp, filepath, filesize)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, s := range snapshots {
		if _, err := stmt.Exec(s.Filename, s.Camera, s.Label, s.Score, s.Timestamp.UTC(), s.FilePath, s.FileSize); err != nil {
			return fmt.Errorf("failed to insert snapshot %s: %w", s.Filename, err)
		}
	}

	return tx.Commit()
}

// GetByID retrieves a snapshot by its ID. It returns nil when none exists.
func (r *SnapshotRepository) GetByID(id int64) (*models.Snapshot, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	return scanSnapshot(r.db.Conn().QueryRow(`SELECT `+snapshotColumns+` FROM snapshots WHERE id = ?`, id))
}

// GetByFilename retrieves a snapshot by its filename. It returns nil when none exists.
func (r *SnapshotRepository) GetByFilename(filename string) (*models.Snapshot, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	return scanSnapshot(r.db.Conn().QueryRow(`SELECT `+snapshotColumns+` FROM snapshots WHERE filename = ?`, filename))
}

func scanSnapshot(row *sql.Row) (*models.Snapshot, error) {
	var s models.Snapshot
	err := row.Scan(&s.ID, &s.Filename, &s.Camera, &s.Label, &s.Score, &s.Timestamp, &s.FilePath, &s.FileSize)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return &s, nil
}

// whereClause renders the filter as SQL conditions and arguments.
func whereClause(filter *models.SnapshotFilter) (string, []interface{}) {
	clause := " WHERE 1=1"
	args := []interface{}{}
	if filter == nil {
		return clause, args
	}

	if filter.Camera != "" {
		clause += " AND camera = ?"
		args = append(args, filter.Camera)
	}

	if filter.Label != "" {
		clause += " AND label = ?"
		args = append(args, filter.Label)
	}

	if !filter.StartDate.IsZero() {
		clause += " AND timestamp >= ?"
		args = append(args, filter.StartDate.UTC())
	}

	if !filter.EndDate.IsZero() {
		clause += " AND timestamp <= ?"
		args = append(args, filter.EndDate.UTC())
	}

	return clause, args
}

// GetAll retrieves snapshots based on filter criteria, newest first.
func (r *SnapshotRepository) GetAll(filter *models.SnapshotFilter) ([]models.Snapshot, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := whereClause(filter)
	query := `SELECT ` + snapshotColumns + ` FROM snapshots` + where + ` ORDER BY timestamp DESC, id DESC`

	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)

		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []models.Snapshot
	for rows.Next() {
		var s models.Snapshot
		if err := rows.Scan(&s.ID, &s.Filename, &s.Camera, &s.Label, &s.Score, &s.Timestamp, &s.FilePath, &s.FileSize); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}

	return snapshots, rows.Err()
}

// GetTotalCount returns the total count of snapshots matching the filter.
func (r *SnapshotRepository) GetTotalCount(filter *models.SnapshotFilter) (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := whereClause(filter)

	var count int
	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM snapshots`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}

	return count, nil
}

// GetStats returns statistics about stored snapshots.
func (r *SnapshotRepository) GetStats() (*models.SnapshotStats, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	stats := &models.SnapshotStats{
		PerCamera: make(map[string]int),
		PerLabel:  make(map[string]int),
	}

	if err := r.db.Conn().QueryRow(`SELECT COUNT(*), COALESCE(SUM(filesize), 0) FROM snapshots`).
		Scan(&stats.TotalSnapshots, &stats.TotalSizeBytes); err != nil {
		return nil, fmt.Errorf("failed to query totals: %w", err)
	}

	if err := r.countBy(`SELECT camera, COUNT(*) FROM snapshots GROUP BY camera`, stats.PerCamera); err != nil {
		return nil, err
	}
	if err := r.countBy(`SELECT label, COUNT(*) FROM snapshots GROUP BY label`, stats.PerLabel); err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *SnapshotRepository) countBy(query string, into map[string]int) error {
	rows, err := r.db.Conn().Query(query)
	if err != nil {
		return fmt.Errorf("failed to query counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("failed to scan count: %w", err)
		}
		into[key] = count
	}
	return rows.Err()
}

// DeleteByFilename removes a snapshot by its filename.
func (r *SnapshotRepository) DeleteByFilename(filename string) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM snapshots WHERE filename = ?`, filename); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// DeleteAll removes all snapshots.
func (r *SnapshotRepository) DeleteAll() error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM snapshots`); err != nil {
		return fmt.Errorf("failed to delete snapshots: %w", err)
	}
	return nil
}
