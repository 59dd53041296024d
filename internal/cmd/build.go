package cmd

import (
	"errors"
	"fmt"

	"github.com/neznayu/harness/internal/display"
	"github.com/neznayu/harness/internal/executor"
	"github.com/neznayu/harness/internal/filelock"
	"github.com/spf13/cobra"
)

// NewBuildCommand creates the build command
func NewBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Run only the build steps",
		Long: `Run the configured build steps in order, stopping at the first one that
fails. No fixtures are run. A failed build is reported and returns normally
unless --fail-on-build-error is set.`,
		Args: cobra.NoArgs,
		RunE: buildCommand,
	}

	cmd.Flags().String("build-dir", "", "Build output directory (default: ../build)")
	cmd.Flags().String("command-timeout", "", "Maximum time per build step (e.g., 5m)")
	cmd.Flags().Bool("verbose", false, "Show every build step")
	cmd.Flags().Bool("fail-on-build-error", false, "Exit non-zero when a build step fails")

	return cmd
}

func buildCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	lock, err := filelock.AcquireRunLock(cfg.LockFile)
	if err != nil {
		return err
	}
	defer lock.Release()

	log, closeLog, err := newRunLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	out := cmd.OutOrStdout()
	steps, err := executor.RunBuild(cmd.Context(), executor.NewExecRunner(cfg.CommandTimeout), cfg.BuildSteps, log)

	var buildErr *executor.BuildError
	if errors.As(err, &buildErr) {
		display.PrintBuildFailure(out, buildErr, display.ReportOptions{Color: display.ColorEnabled(out)})
		return buildFailureResult(cfg)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Build succeeded (%d step(s))\n", len(steps))
	return nil
}
