package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maskwatch/internal/models"
)

func TestReindex(t *testing.T) {
	buf, repo, dir := newTestBuffer(t, 5)
	ts := time.Date(2025, 6, 15, 14, 30, 5, 0, time.Local)
	buf.now = func() time.Time { return ts }

	// One snapshot already indexed by a flush, one written by an older run.
	buf.AddSnapshot([]byte("a"), "door", models.Category{Label: models.LabelWithoutMask, Score: 0.9})
	require.Equal(t, 1, buf.FlushSnapshots())

	older := SnapshotFilename(ts.Add(-time.Hour), "yard", models.LabelWithoutMask)
	require.NoError(t, os.WriteFile(filepath.Join(dir, older), []byte("bb"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "holiday.jpg"), []byte("c"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("d"), 0644))

	result, err := Reindex(dir, repo)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Indexed)
	assert.Equal(t, []string{"holiday.jpg"}, result.Skipped)

	count, err := repo.GetTotalCount(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	stored, err := repo.GetByFilename(older)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "yard", stored.Camera)
	assert.EqualValues(t, 2, stored.FileSize)
	assert.True(t, ts.Add(-time.Hour).Equal(stored.Timestamp))

	flushed, err := repo.GetByFilename(SnapshotFilename(ts, "door", models.LabelWithoutMask))
	require.NoError(t, err)
	assert.InDelta(t, 0.9, flushed.Score, 1e-9, "existing rows keep their score")
}

func TestReindex_MissingDirectory(t *testing.T) {
	_, repo, dir := newTestBuffer(t, 1)
	_, err := Reindex(filepath.Join(dir, "nope"), repo)
	assert.Error(t, err)
}
