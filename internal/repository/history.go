package repository

import (
	"time"

	"filemerge/internal/db"
	"filemerge/internal/model"

	"gorm.io/gorm"
)

type HistoryRepository struct{}

func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{}
}

func (r *HistoryRepository) Save(runID uint, result model.TransferResult) error {
	errMsg := ""
	if result.Err != nil {
		errMsg = result.Err.Error()
	}

	history := model.History{
		RunID:       runID,
		Status:      result.Status,
		SrcPath:     result.SrcPath,
		DstPath:     result.DstPath,
		ContentHash: result.Record.ContentHash,
		SizeBytes:   result.Record.SizeBytes,
		ErrMsg:      errMsg,
		SyncedAt:    time.Now(),
	}

	return db.DB.Create(&history).Error
}

type Stats struct {
	Total       int64
	Transferred int64
	Skipped     int64
	Failed      int64
}

func (r *HistoryRepository) GetStats(runID uint) (Stats, error) {
	var stats Stats
	q := db.DB.Model(&model.History{}).
		Where("run_id = ?", runID).
		Session(&gorm.Session{})

	if err := q.Count(&stats.Total).Error; err != nil {
		return stats, err
	}

	if err := q.
		Where("status = ?", model.TransferDone).
		Count(&stats.Transferred).Error; err != nil {
		return stats, err
	}

	if err := q.
		Where("status = ?", model.TransferSkipped).
		Count(&stats.Skipped).Error; err != nil {
		return stats, err
	}

	stats.Failed = stats.Total - stats.Transferred - stats.Skipped
	return stats, nil
}

func (r *HistoryRepository) GetFailed(runID uint) ([]model.History, error) {
	var histories []model.History
	result := db.DB.
		Where("run_id = ? AND status = ?", runID, model.TransferFailed).
		Order("src_path").
		Find(&histories)

	return histories, result.Error
}
