package cmd

import (
	"fmt"
	"strconv"

	"filemerge/internal/repository"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	historyN   int
	historyRun uint
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View past merge runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyRun != 0 {
			return showRun(cmd, historyRun)
		}
		return showRuns(cmd, historyN)
	},
}

func showRuns(cmd *cobra.Command, limit int) error {
	runs, err := repository.NewRunRepository().GetRecent(limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no runs yet")
		return nil
	}

	data := [][]string{{"RUN", "STARTED", "MODE", "STATUS", "FILES", "SIZE", "DONE", "SKIPPED", "FAILED"}}
	for _, r := range runs {
		data = append(data, []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			string(r.Mode),
			string(r.Status),
			strconv.Itoa(r.PlannedFiles),
			humanize.IBytes(uint64(r.PlannedBytes)),
			strconv.Itoa(r.Transferred),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Failed),
		})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(cmd.OutOrStdout()).Render()
}

func showRun(cmd *cobra.Command, runID uint) error {
	run, err := repository.NewRunRepository().GetByID(runID)
	if err != nil {
		return fmt.Errorf("run %d: %w", runID, err)
	}

	histories := repository.NewHistoryRepository()
	stats, err := histories.GetStats(runID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "run %d (%s, %s) into %s\n", run.ID, run.Mode, run.Status, run.OutputDir)
	_, _ = fmt.Fprintf(out, "%d recorded: %d transferred, %d skipped, %d failed\n",
		stats.Total, stats.Transferred, stats.Skipped, stats.Failed)

	failed, err := histories.GetFailed(runID)
	if err != nil {
		return err
	}

	for _, h := range failed {
		_, _ = fmt.Fprintf(out, "✗ %s: %s\n", h.SrcPath, h.ErrMsg)
	}

	return nil
}

func init() {
	historyCmd.Flags().IntVar(&historyN, "n", 20, "number of runs to show")
	historyCmd.Flags().UintVar(&historyRun, "run", 0, "show the failures of one run")
	rootCmd.AddCommand(historyCmd)
}
