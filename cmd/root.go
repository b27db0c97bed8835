/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/josephgoksu/chorepay/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables verbose output.
	verbose bool
	// ErrNoTasksFound is returned when an interactive selection is attempted but no tasks are available.
	ErrNoTasksFound = errors.New("no tasks found matching your criteria")
	// version is the application version.
	version = "1.0.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chorepay",
	Short: "chorepay tracks household chores and what they pay.",
	Long: `chorepay keeps a monthly chore list, splits a fixed reward pool across
the chores by size, and serves the list to the family pages over HTTP.

Run 'chorepay serve' to start the API, or use the other commands to manage
the list from the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg := GetConfig()
		slog.SetDefault(logger.New(os.Stderr, cfg.Log.Format, cfg.Verbose))

		logger.SetVersion(version)
		logger.SetCommand(strings.Join(os.Args, " "))
		logger.SetDataFile(cfg.Data.File)
		logger.SetBasePath(filepath.Dir(cfg.Data.File))
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		PrintError(err.Error(), err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(InitConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./.chorepay.yaml or $HOME/.chorepay.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().Bool("json", false, "print machine readable JSON")
	rootCmd.PersistentFlags().String("data", "", "task document path (overrides data.file)")

	// Bind persistent flags to Viper
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("data.file", rootCmd.PersistentFlags().Lookup("data"))
}

// GetVersion returns the application version.
func GetVersion() string {
	return version
}
