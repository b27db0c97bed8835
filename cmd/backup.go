package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/josephgoksu/chorepay/internal/ui"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup [path]",
	Short: "Back up the task list",
	Long: `Write a copy of the task list. Without a path the copy goes next to the
data file under backups/ with a timestamped name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBackup,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <path>",
	Short: "Restore the task list from a backup",
	Long: `Replace the task list with the contents of a backup written by
'chorepay backup'. The restored list gets a new version, so clients
holding the old list see the change.`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func init() {
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}

// defaultBackupPath returns backups/<name>-<label>-<timestamp><ext> beside dataFile.
func defaultBackupPath(dataFile, label string) string {
	dir := filepath.Join(filepath.Dir(dataFile), "backups")
	ext := filepath.Ext(dataFile)
	name := strings.TrimSuffix(filepath.Base(dataFile), ext)
	stamp := time.Now().Format("20060102-150405")
	return filepath.Join(dir, fmt.Sprintf("%s-%s-%s%s", name, label, stamp, ext))
}

func runBackup(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	path := defaultBackupPath(a.cfg.Data.File, "backup")
	if len(args) > 0 {
		path = args[0]
	}
	if err := a.store.Backup(path); err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), map[string]string{"path": path})
	}
	ui.RenderPageHeader(cmd.OutOrStdout(), "Backup written", path)
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		ok, err := confirm(fmt.Sprintf("Replace the task list with %s", args[0]))
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

	if err := a.store.Restore(args[0]); err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	// Values in the backup were computed for whatever pool was set then.
	if _, err := a.svc.Recalculate(cmd.Context()); err != nil {
		return friendlyError("recalculate values", err)
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), map[string]string{"restored": args[0]})
	}
	ui.RenderPageHeader(cmd.OutOrStdout(), "Task list restored", args[0])
	return nil
}
