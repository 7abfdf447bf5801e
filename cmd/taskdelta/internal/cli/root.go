// Package cli implements the taskdelta command-line interface.
package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"taskdelta/internal/log"
	"taskdelta/pkg/config"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// globalFlags holds persistent flags that apply to all commands
var globalFlags struct {
	workspace string
	task      string
	verbosity int
	logFormat string
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "taskdelta",
	Short: "Incremental build change detection",
	Long: `Taskdelta inspects the change-detection state of an incremental build:
which filesystem entries a task actually produced, and which source files
would be recompiled on the next run.

State is kept in .taskdelta/state.json inside the workspace.`,
	// Default behavior: show help
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("taskdelta %s (%s)\n", Version, GitCommit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVarP(&globalFlags.workspace, "workspace", "C", ".",
		"Workspace root directory")
	rootCmd.PersistentFlags().StringVar(&globalFlags.task, "task", "compile",
		"Task identifier in the state file")
	rootCmd.PersistentFlags().IntVarP(&globalFlags.verbosity, "verbosity", "v", 1,
		"Verbosity level (0=error, 1=warn, 2=info, 3=debug, 4=trace)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.logFormat, "log-format", "text",
		"Log format (text, json)")

	cobra.OnInitialize(initLogging)
}

// initLogging applies CLI flags to the logger.
// This runs after flags are parsed but before command execution.
func initLogging() {
	log.Init(globalFlags.verbosity, globalFlags.logFormat)
}

// workspaceRoot resolves the workspace flag to an absolute path.
func workspaceRoot() (string, error) {
	return filepath.Abs(globalFlags.workspace)
}

// loadConfig loads the layered configuration for the workspace.
func loadConfig() (*config.Config, string, error) {
	root, err := workspaceRoot()
	if err != nil {
		return nil, "", err
	}
	return config.LoadFrom(root), root, nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// RootCmd returns the root command for testing.
func RootCmd() *cobra.Command {
	return rootCmd
}
