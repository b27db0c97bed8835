/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"github.com/josephgoksu/chorepay/internal/ui"
	"github.com/josephgoksu/chorepay/models"
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List tasks with their current value.

Listing expands recurring chores for the current month first, exactly
as the API does.`,
	Example: `  chorepay list
  chorepay list --month 2025-07 --pending
  chorepay list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringP("month", "m", "", "only tasks of this month (YYYY-MM)")
	listCmd.Flags().Bool("pending", false, "only tasks that are not done")
	listCmd.Flags().Bool("templates", false, "include recurring templates")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	month, _ := cmd.Flags().GetString("month")
	pendingOnly, _ := cmd.Flags().GetBool("pending")
	withTemplates, _ := cmd.Flags().GetBool("templates")

	tasks, err := a.svc.List(cmd.Context(), month)
	if err != nil {
		return friendlyError("list tasks", err)
	}

	filtered := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if pendingOnly && t.Completed {
			continue
		}
		if !withTemplates && t.IsTemplate() {
			continue
		}
		filtered = append(filtered, t)
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), filtered)
	}
	ui.RenderTaskList(cmd.OutOrStdout(), filtered)
	return nil
}
