package cmd

import (
	"os"

	"filemerge/internal/config"
	"filemerge/internal/db"
	"filemerge/internal/logger"
	"filemerge/internal/prompt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg        *config.Config
	cfgFile    string
	debug      bool
	assumeYes  bool
	databaseUp bool
)

var rootCmd = &cobra.Command{
	Use:          "filemerge",
	Short:        "Merge several source directories into one deduplicated output directory",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "init" {
			return nil
		}

		logger.Init(debug)

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}

		dbCmds := map[string]bool{
			"merge": true, "history": true, "menu": true,
		}
		if dbCmds[cmd.Name()] {
			if err := db.Init(cfg.DBPath); err != nil {
				return err
			}
			databaseUp = true
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if databaseUp {
			if err := db.Close(); err != nil {
				logger.Log.Warn("failed to close db", zap.Error(err))
			}
			databaseUp = false
		}
		logger.Sync()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// confirmer answers every question with yes when running headless.
func confirmer(cmd *cobra.Command) prompt.Confirmer {
	if assumeYes || cfg.AutoConfirm {
		return prompt.Fixed(true)
	}
	return prompt.NewConsole(cmd.InOrStdin(), cmd.OutOrStdout())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigFile, "path to the config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug mode")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "confirm conflict resolution without asking")
}
