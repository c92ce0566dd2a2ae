package model

import "fmt"

type TransferStatus string

const (
	TransferDone    TransferStatus = "TRANSFERRED"
	TransferSkipped TransferStatus = "SKIPPED"
	TransferFailed  TransferStatus = "FAILED"
)

type TransferMode string

const (
	ModeCopy TransferMode = "copy"
	ModeMove TransferMode = "move"
)

type TransferResult struct {
	Record  FileRecord
	SrcPath string
	DstPath string
	Status  TransferStatus
	Err     error
}

// FileError is a failure scoped to a single file. It never aborts a batch.
type FileError struct {
	Path string
	Op   string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
