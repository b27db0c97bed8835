package cmd

import (
	"fmt"
	"strings"

	"github.com/josephgoksu/chorepay/internal/chores"
	"github.com/josephgoksu/chorepay/internal/telemetry"
	"github.com/josephgoksu/chorepay/internal/ui"
	"github.com/josephgoksu/chorepay/models"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a task",
	Long: `Add a task to the list. Its value is assigned from the reward pool
according to its size; every other task's value shifts to make room.`,
	Example: `  chorepay add "Vacuum living room" --size large
  chorepay add "Water plants" --recurring weekly
  chorepay add "Pay rent reminder" --recurring monthly --due 2025-07-05`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringP("size", "s", string(models.SizeSmall), "extra-small, small, medium or large")
	addCmd.Flags().StringP("month", "m", "", "month the task belongs to (YYYY-MM, default current)")
	addCmd.Flags().StringP("recurring", "r", string(models.RecurNone), "none, daily, weekly or monthly")
	addCmd.Flags().String("due", "", "due date (YYYY-MM-DD)")
	addCmd.Flags().String("user", "", "who the task is for")
}

func runAdd(cmd *cobra.Command, args []string) error {
	name := strings.Join(args, " ")
	size, _ := cmd.Flags().GetString("size")
	month, _ := cmd.Flags().GetString("month")
	recurring, _ := cmd.Flags().GetString("recurring")
	due, _ := cmd.Flags().GetString("due")
	user, _ := cmd.Flags().GetString("user")

	ts := models.TaskSize(size)
	if !ts.Valid() {
		return fmt.Errorf("unknown size %q (use extra-small, small, medium or large)", size)
	}
	rec := models.Recurrence(recurring)
	in := chores.TaskFields{
		Name:      &name,
		Size:      &ts,
		Recurring: &rec,
	}
	if month != "" {
		in.Month = &month
	}
	if due != "" {
		in.DueDate = &due
	}
	if user != "" {
		in.UserName = &user
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	task, err := a.svc.Create(cmd.Context(), in)
	if err != nil {
		return friendlyError("add task", err)
	}
	a.telemetry.Track(telemetry.EventTaskCreated, map[string]any{"size": string(task.Size), "source": "cli"})

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), task)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added '%s' (ID: %s) worth %s\n", task.Name, task.ID, ui.Money(task.Value))
	return nil
}
