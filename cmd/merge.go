package cmd

import (
	"errors"
	"os/signal"
	"syscall"

	"filemerge/internal/conflict"
	"filemerge/internal/logger"
	"filemerge/internal/merge"
	"filemerge/internal/progress"
	"filemerge/internal/repository"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Index the sources and merge them into the output directory",
	Long: `Index every source directory, drop duplicate content, ask before
resolving filename conflicts and transfer the result into the output
directory. A confirmed plan is cached; run clear-cache to plan again.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMerge(cmd)
	},
}

func runMerge(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	res, err := merge.RunMerge(ctx, cfg, merge.Deps{
		Confirm:  confirmer(cmd),
		Out:      out,
		Hashing:  progress.NewBar(out),
		Transfer: progress.NewBar(out),
		Recorder: repository.NewRecorder(),
	})
	if errors.Is(err, conflict.ErrConflictRejected) {
		logger.Log.Info("nothing was transferred, rerun merge once the conflicts are settled")
	}
	if err != nil {
		return err
	}

	logger.Log.Info("merge finished",
		zap.Uint("run", res.RunID),
		zap.Bool("cachedPlan", res.PlanFromCache),
		zap.Int("failed", len(res.Report.Failures)))

	return nil
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
