/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/josephgoksu/taskgraph/internal/config"
	"github.com/josephgoksu/taskgraph/internal/telemetry"
	"github.com/josephgoksu/taskgraph/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configCmd is the parent config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change configuration",
	Long: `Configuration is read from flags, TASKGRAPH_* environment variables, a .env
file and .taskgraph.yaml (in ./.taskgraph, $HOME or the working directory),
in that order of precedence.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := config.Redacted(viper.GetViper())
		return render(cmd, settings, func(w io.Writer) {
			file := viper.ConfigFileUsed()
			if file == "" {
				file = "(none)"
			}
			fmt.Fprintf(w, "%s %s\n", ui.StyleSubtle.Render("config file:"), file)
			fmt.Fprintf(w, "%s %s\n\n", ui.StyleSubtle.Render("data dir:   "), cfg.Data.Dir)
			keys := config.Keys()
			slices.Sort(keys)
			for _, k := range keys {
				fmt.Fprintf(w, "  %-24s %v\n", k, settings[k])
			}
		})
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long:  "Set a configuration value and write it to the config file.\n\nKeys: " + strings.Join(config.Keys(), ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Set(viper.GetViper(), config.LocalDirName, args[0], args[1])
		if err != nil {
			return usagef("%v", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s (%s)\n", ui.StyleSuccess.Render("✓"), args[0], args[1], path)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := config.Redacted(viper.GetViper())
		v, ok := settings[args[0]]
		if !ok {
			return usagef("unknown config key %q", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

// Telemetry subcommands
var telemetryCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "Manage anonymous usage telemetry",
	Long: `Telemetry is off by default. When enabled (and telemetry.api_key is set),
command names, durations and success flags are sent with an anonymous
install id. Task and project names are never sent.`,
}

var telemetryStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current telemetry status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := telemetry.LoadState(cfg.Data.Dir)
		if err != nil {
			return err
		}
		enabled := state.Enabled || cfg.Telemetry.Enabled
		return render(cmd, map[string]any{"enabled": enabled, "anonymousId": state.AnonymousID}, func(w io.Writer) {
			if enabled {
				fmt.Fprintf(w, "Telemetry: enabled (install id %s)\n", state.AnonymousID)
				return
			}
			fmt.Fprintln(w, "Telemetry: disabled")
		})
	},
}

func setTelemetry(enabled bool) error {
	state, err := telemetry.LoadState(cfg.Data.Dir)
	if err != nil {
		return err
	}
	state.Enabled = enabled
	return state.Save(cfg.Data.Dir)
}

var telemetryEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable anonymous telemetry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setTelemetry(true); err != nil {
			return fmt.Errorf("enable telemetry: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.StyleSuccess.Render("✓")+" Telemetry enabled.")
		return nil
	},
}

var telemetryDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable anonymous telemetry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setTelemetry(false); err != nil {
			return fmt.Errorf("disable telemetry: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.StyleSuccess.Render("✓")+" Telemetry disabled.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSetCmd, configGetCmd, telemetryCmd)
	telemetryCmd.AddCommand(telemetryStatusCmd, telemetryEnableCmd, telemetryDisableCmd)
}
