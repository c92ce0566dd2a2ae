package cache

import (
	"errors"
	"os"

	"filemerge/internal/logger"
	"filemerge/internal/model"
	"filemerge/internal/util"

	"go.uber.org/zap"
)

// planEntry is the stored form of a FileRecord. Paths are raw bytes so a
// resumed run finds files whose names are not valid UTF-8.
type planEntry struct {
	SourcePriority int    `json:"source_priority"`
	ContentHash    string `json:"content_hash"`
	SourceDir      []byte `json:"source_dir"`
	RelativePath   []byte `json:"relative_path"`
	SizeBytes      int64  `json:"size_bytes"`
}

// LoadPlan returns the confirmed plan from an earlier run, if there is one
// and it was built with algorithm.
func LoadPlan(path, algorithm string) (model.MovePlan, bool) {
	stored, err := readSnapshot[[]planEntry](path, kindPlan, algorithm)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Log.Warn("move plan cache unusable, ignoring",
				zap.String("path", path),
				zap.Error(err))
		}
		return nil, false
	}

	plan := make(model.MovePlan, 0, len(stored))
	for _, e := range stored {
		plan = append(plan, model.FileRecord{
			SourcePriority: e.SourcePriority,
			ContentHash:    e.ContentHash,
			SourceDir:      string(e.SourceDir),
			RelativePath:   string(e.RelativePath),
			SizeBytes:      e.SizeBytes,
		})
	}

	return plan, true
}

func SavePlan(path, algorithm string, plan model.MovePlan) error {
	stored := make([]planEntry, 0, len(plan))
	for _, rec := range plan {
		stored = append(stored, planEntry{
			SourcePriority: rec.SourcePriority,
			ContentHash:    rec.ContentHash,
			SourceDir:      []byte(rec.SourceDir),
			RelativePath:   []byte(rec.RelativePath),
			SizeBytes:      rec.SizeBytes,
		})
	}

	return writeSnapshot(path, kindPlan, algorithm, stored)
}

// Clear deletes the given cache files. Missing files are not an error.
func Clear(paths ...string) error {
	for _, p := range paths {
		if err := util.RemoveIfExists(p); err != nil {
			return err
		}
		logger.Log.Debug("cache removed", zap.String("path", p))
	}

	return nil
}
