package cmd

import (
	"fmt"
	"runtime"

	"github.com/josephgoksu/chorepay/internal/logger"
	"github.com/josephgoksu/chorepay/internal/ui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Long: `Print the version and build platform. Crash reports left in the data
directory are listed too, newest last, so they can be attached to a bug report.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		crashes, err := logger.ListCrashLogs()
		if err != nil {
			LogError("could not list crash reports", err)
		}

		if isJSON() {
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"version":      version,
				"go":           runtime.Version(),
				"crashReports": crashes,
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "chorepay %s (%s %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		if len(crashes) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), ui.StyleWarning.Render(fmt.Sprintf("%d crash report(s), latest: %s", len(crashes), crashes[len(crashes)-1])))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
