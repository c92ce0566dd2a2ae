package repository

import (
	"sync"

	"filemerge/internal/model"
)

// Recorder writes a run and its transfers. Record may be called from many
// goroutines; writes are serialised since sqlite allows a single writer.
type Recorder struct {
	mu      sync.Mutex
	runs    *RunRepository
	history *HistoryRepository
}

func NewRecorder() *Recorder {
	return &Recorder{
		runs:    NewRunRepository(),
		history: NewHistoryRepository(),
	}
}

func (r *Recorder) Begin(run *model.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs.Start(run)
}

func (r *Recorder) Record(runID uint, result model.TransferResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.Save(runID, result)
}

func (r *Recorder) Finish(run *model.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs.Finish(run)
}
