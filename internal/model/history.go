package model

import (
	"time"

	"gorm.io/gorm"
)

type RunStatus string

const (
	RunStatusRunning  RunStatus = "RUNNING"
	RunStatusFinished RunStatus = "FINISHED"
)

type Run struct {
	gorm.Model
	OutputDir     string       `gorm:"not null"`
	Mode          TransferMode `gorm:"not null"`
	Status        RunStatus    `gorm:"not null;default:'RUNNING'"`
	PlanFromCache bool
	PlannedFiles  int
	PlannedBytes  int64
	Transferred   int
	Skipped       int
	Failed        int
	FinishedAt    *time.Time
}

type History struct {
	gorm.Model
	RunID       uint           `gorm:"index;not null"`
	Status      TransferStatus `gorm:"not null"`
	SrcPath     string         `gorm:"not null"`
	DstPath     string         `gorm:"not null"`
	ContentHash string
	SizeBytes   int64
	ErrMsg      string
	SyncedAt    time.Time `gorm:"not null"`
}
