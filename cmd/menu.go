package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

type menuHandler func(cmd *cobra.Command) error

var errQuit = errors.New("quit")

// menuHandlers is fixed at startup; a name not listed here is rejected.
var menuHandlers = map[string]menuHandler{
	"merge":       runMerge,
	"clear-cache": clearCaches,
	"status":      showStatus,
	"history":     func(cmd *cobra.Command) error { return showRuns(cmd, historyN) },
	"quit":        func(*cobra.Command) error { return errQuit },
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Choose actions interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// handlers share the reader so confirmations see the next line
		in := bufio.NewReader(cmd.InOrStdin())
		cmd.SetIn(in)
		return runMenu(cmd, in)
	},
}

func runMenu(cmd *cobra.Command, in *bufio.Reader) error {
	out := cmd.OutOrStdout()

	names := make([]string, 0, len(menuHandlers))
	for name := range menuHandlers {
		names = append(names, name)
	}
	slices.Sort(names)

	for {
		_, _ = fmt.Fprintf(out, "\n[%s]\n> ", strings.Join(names, ", "))

		line, err := in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read user input: %w", err)
		}
		choice := strings.ToLower(strings.TrimSpace(line))

		if choice == "" {
			if err != nil {
				return nil
			}
			continue
		}

		handler, ok := menuHandlers[choice]
		if !ok {
			_, _ = fmt.Fprintf(out, "unknown action %q\n", choice)
		} else if herr := handler(cmd); errors.Is(herr, errQuit) {
			return nil
		} else if herr != nil {
			_, _ = fmt.Fprintf(out, "%s failed: %v\n", choice, herr)
		}

		if err != nil {
			return nil
		}
	}
}

func init() {
	rootCmd.AddCommand(menuCmd)
}
