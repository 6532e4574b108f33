package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	configDir string
	logLevel  string

	// current is set up by the root PersistentPreRunE for every subcommand.
	current *app
)

// newRootCmd builds a fresh command tree.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "acrossrec",
		Short: "Decode, inspect and catalogue motorcycle replay files",
		Long: `acrossrec reads .rec replay files in both the legacy (v1.00) and
modern (v1.20) header layouts. It can batch-check a directory tree, print a
summary of a single replay, and re-encode replays byte for byte.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			current = setupApp(configDir, time.Now())
			if logLevel != "" {
				current.SlogManager.SetupOutputs(logLevel, current.outputs)
				current.Logger = current.SlogManager.Logger()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory containing acrossrec.cfg.json")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logLevel from the config")

	root.AddCommand(newScanCmd(), newInspectCmd(), newReencodeCmd())
	return root
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	err := newRootCmd().Execute()
	closeCurrent()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// closeCurrent releases the app set up by the last command, which cobra's
// post-run hooks would skip when the command fails.
func closeCurrent() {
	if current != nil {
		current.close()
		current = nil
	}
}
