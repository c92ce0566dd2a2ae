package repository

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"filemerge/internal/db"
	"filemerge/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) {
	t.Helper()
	require.NoError(t, db.Init(filepath.Join(t.TempDir(), "test.db")))
	t.Cleanup(func() { _ = db.Close() })
}

func result(status model.TransferStatus, src string, err error) model.TransferResult {
	return model.TransferResult{
		Record:  model.FileRecord{ContentHash: "h-" + src, RelativePath: src, SizeBytes: 3},
		SrcPath: "/src/" + src,
		DstPath: "/out/" + src,
		Status:  status,
		Err:     err,
	}
}

func TestRecorder_RunLifecycleAndStats(t *testing.T) {
	setupDB(t)
	rec := NewRecorder()

	run := &model.Run{OutputDir: "/out", Mode: model.ModeCopy, PlannedFiles: 4, PlannedBytes: 12}
	require.NoError(t, rec.Begin(run))
	require.NotZero(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	results := []model.TransferResult{
		result(model.TransferDone, "a", nil),
		result(model.TransferDone, "b", nil),
		result(model.TransferSkipped, "c", nil),
		result(model.TransferFailed, "d", errors.New("permission denied")),
	}

	var wg sync.WaitGroup
	for _, r := range results {
		wg.Add(1)
		go func(r model.TransferResult) {
			defer wg.Done()
			assert.NoError(t, rec.Record(run.ID, r))
		}(r)
	}
	wg.Wait()

	run.Transferred, run.Skipped, run.Failed = 2, 1, 1
	require.NoError(t, rec.Finish(run))

	stats, err := NewHistoryRepository().GetStats(run.ID)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 4, Transferred: 2, Skipped: 1, Failed: 1}, stats)

	failed, err := NewHistoryRepository().GetFailed(run.ID)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "/src/d", failed[0].SrcPath)
	assert.Equal(t, "permission denied", failed[0].ErrMsg)

	stored, err := NewRunRepository().GetByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFinished, stored.Status)
	assert.NotNil(t, stored.FinishedAt)
	assert.Equal(t, 2, stored.Transferred)
}

func TestRunRepository_GetRecent(t *testing.T) {
	setupDB(t)
	runs := NewRunRepository()

	for range 3 {
		require.NoError(t, runs.Start(&model.Run{OutputDir: "/out", Mode: model.ModeMove}))
	}

	recent, err := runs.GetRecent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Greater(t, recent[0].ID, recent[1].ID)
}
