/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/josephgoksu/taskgraph/internal/config"
	"github.com/josephgoksu/taskgraph/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables verbose output.
	verbose bool
	// outputFormat selects text, json or yaml output.
	outputFormat string
	// version is the application version, set at build time.
	version = "0.1.0"

	// cfg and log are resolved once per invocation in PersistentPreRunE.
	cfg *config.Config
	log *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "taskgraph",
	Short: "Dependency-aware task graphs for projects",
	Long: `taskgraph tracks the tasks of a project as a dependency graph.

A task cannot start until everything it depends on is completed; completing
a task unblocks its dependents. Project progress, blocked tasks, a
priority-ordered critical path, a CPM schedule and blueprint-driven roadmaps
are derived from the graph.

The same operations are served over HTTP (taskgraph serve) and MCP
(taskgraph mcp).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initRuntime(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./.taskgraph/.taskgraph.yaml or $HOME/.taskgraph.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format: text, json or yaml")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initRuntime loads configuration and sets up logging and crash capture.
func initRuntime(cmd *cobra.Command, args []string) error {
	if err := validateOutputFormat(outputFormat); err != nil {
		return err
	}

	c, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return err
	}
	if c.Verbose {
		c.Log.Level = "debug"
	}
	l, err := logger.New(logger.Options{Level: c.Log.Level, Format: c.Log.Format})
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	cfg, log = c, l
	slog.SetDefault(l)

	logger.SetBasePath(c.Data.Dir)
	logger.SetVersion(version)
	logger.SetCommand(cmd.CommandPath(), args)
	return nil
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return version
}

// watchConfig keeps the log level in step with the config file for
// long-running commands.
func watchConfig() {
	config.Watch(viper.GetViper(), log, func(c *config.Config) {
		level := c.Log.Level
		if verbose {
			level = "debug"
		}
		if err := logger.SetLevel(level); err != nil {
			log.Warn("ignoring log level from config", "level", level, "error", err)
		}
	})
}
