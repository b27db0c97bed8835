package cmd

import (
	"errors"

	"github.com/josephgoksu/chorepay/internal/chores"
	"github.com/josephgoksu/chorepay/internal/ui"
	"github.com/spf13/cobra"
)

var _ ui.DashboardBackend = (*chores.Service)(nil)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"ui"},
	Short:   "Open the interactive month view",
	Long: `Show this month's chores with a progress bar and what they pay.
Use the arrow keys to move and space to tick a chore off.`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().StringP("month", "m", "", "month to show (YYYY-MM, default current)")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if !ui.IsInteractive() {
		return errors.New("the dashboard needs a terminal; use 'chorepay report' instead")
	}
	month, _ := cmd.Flags().GetString("month")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if month == "" {
		month = a.svc.CurrentPeriod().String()
	}
	return ui.RunDashboard(cmd.Context(), a.svc, month)
}
