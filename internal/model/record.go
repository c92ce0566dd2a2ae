package model

import "path/filepath"

// FileRecord is a deduplicated file that survived indexing.
type FileRecord struct {
	SourcePriority int    `json:"source_priority"`
	ContentHash    string `json:"content_hash"`
	SourceDir      string `json:"source_dir"`
	RelativePath   string `json:"relative_path"` // slash separated, same under the output dir
	SizeBytes      int64  `json:"size_bytes"`
}

func (r FileRecord) SourcePath() string {
	return filepath.Join(r.SourceDir, filepath.FromSlash(r.RelativePath))
}

func (r FileRecord) DestPath(outputDir string) string {
	return filepath.Join(outputDir, filepath.FromSlash(r.RelativePath))
}

// MovePlan is the confirmed, ordered list of records to transfer.
type MovePlan []FileRecord

func (p MovePlan) TotalBytes() int64 {
	var total int64
	for _, r := range p {
		total += r.SizeBytes
	}
	return total
}

// ConflictGroup holds records that would land on the same output path.
type ConflictGroup struct {
	RelativePath string
	Members      []FileRecord
}
