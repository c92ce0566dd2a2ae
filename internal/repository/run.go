package repository

import (
	"time"

	"filemerge/internal/db"
	"filemerge/internal/model"
)

type RunRepository struct{}

func NewRunRepository() *RunRepository {
	return &RunRepository{}
}

func (r *RunRepository) Start(run *model.Run) error {
	run.Status = model.RunStatusRunning
	return db.DB.Create(run).Error
}

func (r *RunRepository) Finish(run *model.Run) error {
	run.Status = model.RunStatusFinished
	run.FinishedAt = new(time.Now())
	return db.DB.Save(run).Error
}

func (r *RunRepository) GetByID(id uint) (model.Run, error) {
	var run model.Run
	return run, db.DB.First(&run, id).Error
}

func (r *RunRepository) GetRecent(limit int) ([]model.Run, error) {
	var runs []model.Run
	result := db.DB.
		Order("id desc").
		Limit(limit).
		Find(&runs)

	return runs, result.Error
}
