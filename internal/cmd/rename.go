package cmd

import (
	"fmt"

	"github.com/neznayu/harness/internal/display"
	"github.com/neznayu/harness/internal/filelock"
	"github.com/neznayu/harness/internal/fileutil"
	"github.com/spf13/cobra"
)

// NewRenameCommand creates the rename command
func NewRenameCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <old-ext> <new-ext> [dir]",
		Short: "Change the extension of every matching file under a directory",
		Long: `Rename every file under dir (default: the fixture root) whose extension is
old-ext so that it ends in new-ext. Extensions may be given with or without
the leading dot. Existing files are never overwritten, and running the same
rename twice does nothing the second time.

Examples:
  harness rename txt lox                   # closure/**/*.txt -> *.lox
  harness rename .nz .lox tests --dry-run  # Show what would change`,
		Args: cobra.RangeArgs(2, 3),
		RunE: renameCommand,
	}

	cmd.Flags().Bool("dry-run", false, "List planned renames without changing anything")

	return cmd
}

func renameCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	dir := cfg.FixtureRoot
	if len(args) == 3 {
		dir = args[2]
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	// A run reading fixtures must not see them renamed underneath it
	if !dryRun {
		lock, err := filelock.AcquireRunLock(cfg.LockFile)
		if err != nil {
			return err
		}
		defer lock.Release()
	}

	out := cmd.OutOrStdout()
	progress := display.NewRenameProgress(out, dryRun, display.ColorEnabled(out))

	result, err := fileutil.RewriteExtensions(dir, args[0], args[1], fileutil.RewriteOptions{
		DryRun:   dryRun,
		OnRename: progress.Step,
	})
	if err != nil {
		return err
	}
	progress.Complete()

	if len(result.Errors) > 0 {
		items := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			items = append(items, e.Error())
		}
		display.Warning{
			Title: fmt.Sprintf("%d file(s) not renamed", len(result.Errors)),
			Items: items,
		}.Display(cmd.ErrOrStderr(), display.ColorEnabled(cmd.ErrOrStderr()))
		return fmt.Errorf("%d file(s) could not be renamed", len(result.Errors))
	}
	return nil
}
