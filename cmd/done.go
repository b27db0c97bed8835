package cmd

import (
	"errors"
	"fmt"

	"github.com/josephgoksu/chorepay/internal/telemetry"
	"github.com/josephgoksu/chorepay/internal/ui"
	"github.com/josephgoksu/chorepay/models"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

// doneCmd represents the done command
var doneCmd = &cobra.Command{
	Use:     "done [task_id]",
	Aliases: []string{"complete", "d"},
	Short:   "Mark a task as done",
	Long: `Mark a task as completed. If task_id is provided (a full id or a unique
prefix), that task is marked directly. Otherwise an interactive list of
this month's open tasks is shown.`,
	Example: `  # Interactive mode
  chorepay done

  # Complete specific task
  chorepay done 3f2a9c1e

  # Undo a completion
  chorepay done 3f2a9c1e --undo`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDone,
}

func init() {
	rootCmd.AddCommand(doneCmd)
	doneCmd.Flags().Bool("undo", false, "mark the task as not done")
}

func runDone(cmd *cobra.Command, args []string) error {
	undo, _ := cmd.Flags().GetBool("undo")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	ctx := cmd.Context()

	var task models.Task
	if len(args) > 0 {
		task, err = resolveTask(ctx, a.svc, args[0])
		if err != nil {
			return friendlyError(fmt.Sprintf("find task '%s'", args[0]), err)
		}
	} else {
		if !ui.IsInteractive() {
			return errors.New("no task id given and no terminal to choose one from")
		}
		tasks, err := a.svc.List(ctx, a.svc.CurrentPeriod().String())
		if err != nil {
			return friendlyError("list tasks", err)
		}
		openOnly := func(t models.Task) bool { return !t.IsTemplate() && t.Completed == undo }
		task, err = selectTaskInteractive(tasks, openOnly, "Select task to mark as done")
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) {
				fmt.Fprintln(cmd.OutOrStdout(), "Operation cancelled.")
				return nil
			}
			if errors.Is(err, ErrNoTasksFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks available to change.")
				return nil
			}
			return fmt.Errorf("could not select a task: %w", err)
		}
	}

	if task.Completed != undo {
		state := "done"
		if undo {
			state = "open"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task '%s' (ID: %s) is already %s.\n", task.Name, task.ID, state)
		return nil
	}

	updated, err := a.svc.SetCompleted(ctx, task.ID, !undo)
	if err != nil {
		return friendlyError(fmt.Sprintf("update task '%s'", task.Name), err)
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), updated)
	}
	if undo {
		fmt.Fprintf(cmd.OutOrStdout(), "Task '%s' (ID: %s) reopened.\n", updated.Name, updated.ID)
		return nil
	}
	a.telemetry.Track(telemetry.EventTaskCompleted, map[string]any{"size": string(updated.Size), "source": "cli"})
	fmt.Fprintf(cmd.OutOrStdout(), "🎉 Task '%s' (ID: %s) done, %s earned!\n", updated.Name, updated.ID, ui.Money(updated.Value))
	return nil
}
