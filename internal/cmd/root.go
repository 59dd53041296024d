package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for harness.
// Invoked without a subcommand it runs the full build-and-test pipeline.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harness",
		Short: "Build a project and run its executable against every fixture",
		Long: `Harness compiles a project with its configure-then-compile toolchain,
then runs the resulting executable once for every file under a fixture
directory and prints what each run produced: trimmed stdout when the program
exits 0, trimmed stderr otherwise.

Running harness with no subcommand is the same as "harness run".

Configuration is loaded from .harness/config.yaml if present.
CLI flags override configuration file settings.`,
		Version: Version,
		Args:    cobra.NoArgs,
		RunE:    runCommand,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: .harness/config.yaml)")
	addRunFlags(cmd)

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewBuildCommand())
	cmd.AddCommand(NewRenameCommand())
	cmd.AddCommand(NewHistoryCommand())
	cmd.AddCommand(NewInitCommand())

	return cmd
}
