package cmd

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <task_id>",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long:    `Delete a task by id or unique id prefix. Its proof picture is removed too.`,
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	ctx := cmd.Context()

	task, err := resolveTask(ctx, a.svc, args[0])
	if err != nil {
		return friendlyError(fmt.Sprintf("find task '%s'", args[0]), err)
	}

	if !yes {
		ok, err := confirm(fmt.Sprintf("Delete '%s'", task.Name))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Operation cancelled.")
			return nil
		}
	}

	if err := a.svc.Delete(ctx, task.ID); err != nil {
		return friendlyError("delete task", err)
	}
	if isJSON() {
		return printJSON(cmd.OutOrStdout(), map[string]string{"id": task.ID})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted '%s' (ID: %s)\n", task.Name, task.ID)
	return nil
}

// confirm asks a yes/no question. Without a terminal it answers no.
func confirm(label string) (bool, error) {
	prompt := promptui.Prompt{Label: label, IsConfirm: true}
	if _, err := prompt.Run(); err != nil {
		if err == promptui.ErrAbort || err == promptui.ErrInterrupt || err == promptui.ErrEOF {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
