package cmd

import (
	"fmt"

	"github.com/josephgoksu/chorepay/internal/telemetry"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Start the next month",
	Long: `Reset every non-recurring task for the next month: completion and proof
pictures are cleared and each task's month moves forward by one.
Recurring templates are left alone; their instances are regenerated
for the new month on the next list.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	resetCmd.Flags().Bool("backup", true, "write a backup of the task file first")
}

func runReset(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	withBackup, _ := cmd.Flags().GetBool("backup")

	if !yes {
		ok, err := confirm("Reset all tasks for next month")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Operation cancelled.")
			return nil
		}
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if withBackup {
		path := defaultBackupPath(a.cfg.Data.File, "reset")
		if err := a.store.Backup(path); err != nil {
			return fmt.Errorf("backup before reset: %w", err)
		}
		LogError("backup written to "+path, nil)
	}

	n, err := a.svc.Reset(cmd.Context())
	if err != nil {
		return friendlyError("reset tasks", err)
	}
	a.telemetry.Track(telemetry.EventTasksReset, map[string]any{"count": n, "source": "cli"})

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), map[string]int{"reset": n})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reset %d tasks for next month.\n", n)
	return nil
}
