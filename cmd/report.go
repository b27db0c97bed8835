package cmd

import (
	"fmt"
	"io"

	"github.com/josephgoksu/chorepay/internal/chores"
	"github.com/josephgoksu/chorepay/internal/ui"
	"github.com/josephgoksu/chorepay/models"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show what this month pays",
	Long: `Summarize a month: tasks done, money earned, whether the completion
bonus is earned and whether payment can be requested.

--format csv writes the same columns as the web export.`,
	Example: `  chorepay report
  chorepay report --month 2025-06 --format csv > june.csv
  chorepay report --format yaml`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringP("month", "m", "", "month to report (YYYY-MM, default current)")
	reportCmd.Flags().StringP("format", "f", "table", "table, csv, json, yaml or toml")
}

func runReport(cmd *cobra.Command, args []string) error {
	month, _ := cmd.Flags().GetString("month")
	format, _ := cmd.Flags().GetString("format")
	if isJSON() {
		format = "json"
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	report, err := a.svc.Report(cmd.Context(), month)
	if err != nil {
		return friendlyError("build report", err)
	}
	return writeReport(cmd.OutOrStdout(), report, format)
}

// writeReport renders report in the given format.
func writeReport(w io.Writer, report models.Report, format string) error {
	switch format {
	case "table", "":
		ui.RenderReport(w, report)
		return nil
	case "csv":
		return chores.WriteCSV(w, report.Tasks)
	case "json":
		return printJSON(w, report)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case "toml":
		if err := toml.NewEncoder(w).Encode(report); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown format %q (use table, csv, json, yaml or toml)", format)
}
