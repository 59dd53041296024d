package cmd

import (
	"fmt"
	"os"

	"github.com/neznayu/harness/internal/display"
	"github.com/neznayu/harness/internal/history"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded runs or show one run's results",
		Long: `Without arguments, list the most recent recorded runs. With a run ID (or
an unambiguous prefix of one), show that run's per-fixture results.

Runs are recorded only when history is enabled (history.enabled in the
config file, or --record on harness run).`,
		Args: cobra.MaximumNArgs(1),
		RunE: historyCommand,
	}

	cmd.Flags().Int("limit", 20, "Maximum number of runs to list (0 = all)")
	cmd.Flags().String("db", "", "History database path (default: .harness/history.db)")

	return cmd
}

func historyCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	dbPath := cfg.History.DBPath
	if cmd.Flags().Changed("db") {
		dbPath, _ = cmd.Flags().GetString("db")
	}

	out := cmd.OutOrStdout()
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintln(out, "No recorded runs.")
		fmt.Fprintln(out, "Enable recording with --record or history.enabled: true in the config file.")
		return nil
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer store.Close()

	if len(args) == 1 {
		run, results, err := store.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		display.PrintRunDetail(out, run, results)
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	display.PrintRunTable(out, runs)
	return nil
}
