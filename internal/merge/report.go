package merge

import (
	"fmt"
	"io"
	"strconv"

	"filemerge/internal/executor"
	"filemerge/internal/logger"
	"filemerge/internal/model"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"go.uber.org/zap"
)

// WriteConflicts lists every member of every conflict. The last member of a
// group is the one that would be kept.
func WriteConflicts(w io.Writer, conflicts []model.ConflictGroup) {
	data := [][]string{{"Path", "Source", "Priority", "Size", "Hash"}}
	for _, c := range conflicts {
		for i, m := range c.Members {
			path := c.RelativePath
			if i > 0 {
				path = ""
			}
			data = append(data, []string{
				path,
				m.SourceDir,
				strconv.Itoa(m.SourcePriority),
				humanize.IBytes(uint64(m.SizeBytes)),
				m.ContentHash,
			})
		}
	}

	pterm.Warning.WithWriter(w).Printfln("%d paths exist with different content in more than one source", len(conflicts))
	render(w, data)
}

func WriteFailures(w io.Writer, title string, failures []*model.FileError) {
	data := [][]string{{"Path", "Operation", "Error"}}
	for _, f := range failures {
		data = append(data, []string{f.Path, f.Op, f.Err.Error()})
	}

	pterm.Error.WithWriter(w).Printfln("%s: %d", title, len(failures))
	render(w, data)
}

func WriteSummary(w io.Writer, report *executor.Report) {
	pterm.Info.WithWriter(w).Printfln("%d transferred, %d already in place, %d failed (%s planned)",
		report.Transferred, report.Skipped, len(report.Failures), humanize.IBytes(uint64(report.TotalBytes)))

	if len(report.Failures) > 0 {
		WriteFailures(w, "Files that could not be transferred", report.Failures)
	}
}

func render(w io.Writer, data [][]string) {
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(w).Render(); err != nil {
		logger.Log.Warn("failed to render table", zap.Error(err))
		for _, row := range data {
			_, _ = fmt.Fprintln(w, row)
		}
	}
}
