package cmd

import (
	"fmt"

	"filemerge/internal/config"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with placeholder directories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		created, err := config.WriteDefault(cfgFile)
		if err != nil {
			return err
		}

		if !created {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s already exists, leaving it alone\n", cfgFile)
			return nil
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s, set output_dir and source_dirs before merging\n", cfgFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
