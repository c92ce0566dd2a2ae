package cmd

import (
	"fmt"

	"filemerge/internal/merge"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the caches hold",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd)
	},
}

func showStatus(cmd *cobra.Command) error {
	st := merge.Inspect(cfg)
	out := cmd.OutOrStdout()

	_, _ = fmt.Fprintf(out, "output:     %s\n", cfg.OutputDir)
	for i, dir := range cfg.SourceDirs {
		_, _ = fmt.Fprintf(out, "source %d:   %s\n", i, dir)
	}
	_, _ = fmt.Fprintf(out, "hash cache: %d %s entries (%s)\n", st.HashEntries, st.Algorithm, st.HashCachePath)

	if !st.PlanCached {
		_, _ = fmt.Fprintf(out, "move plan:  none, the next merge will index the sources\n")
		return nil
	}

	_, _ = fmt.Fprintf(out, "move plan:  %d files, %s (%s)\n",
		st.PlanFiles, humanize.IBytes(uint64(st.PlanBytes)), st.PlanCachePath)
	return nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
