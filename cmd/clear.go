package cmd

import (
	"fmt"

	"filemerge/internal/merge"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Delete the hash cache and the cached move plan",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return clearCaches(cmd)
	},
}

func clearCaches(cmd *cobra.Command) error {
	if err := merge.ClearCaches(cfg); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %s and %s\n", cfg.HashCachePath(), cfg.PlanCachePath())
	return nil
}

func init() {
	rootCmd.AddCommand(clearCmd)
}
