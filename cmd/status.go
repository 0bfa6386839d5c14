/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"io"

	"github.com/josephgoksu/taskgraph/internal/ui"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <task-id>",
	Short: "Show what a task is waiting on and what it can do next",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("status", func(rt *appRuntime) error {
			id, err := rt.tasks.ResolveID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			v, err := rt.tasks.Status(cmd.Context(), id)
			if err != nil {
				return err
			}
			return render(cmd, v, func(w io.Writer) { ui.RenderStatusView(w, v) })
		})
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show project progress, blocked tasks and the critical path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("summary", func(rt *appRuntime) error {
			id, err := resolveProject(cmd.Context(), rt, cmd)
			if err != nil {
				return err
			}
			s, err := rt.projects.Summary(cmd.Context(), id)
			if err != nil {
				return err
			}
			return render(cmd, s, func(w io.Writer) { ui.RenderSummary(w, s) })
		})
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Show the critical path schedule",
	Long: `Run the critical path method over the project's dependency graph.

Durations are estimated hours (1h when unset). Cancelled tasks are left out.
Tasks with zero slack are critical; tasks in the same wave can run in
parallel.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("schedule", func(rt *appRuntime) error {
			id, err := resolveProject(cmd.Context(), rt, cmd)
			if err != nil {
				return err
			}
			s, err := rt.projects.Schedule(cmd.Context(), id)
			if err != nil {
				return err
			}
			return render(cmd, s, func(w io.Writer) { ui.RenderSchedule(w, s) })
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd, summaryCmd, scheduleCmd)
	summaryCmd.Flags().StringP("project", "p", "", "project id or prefix")
	scheduleCmd.Flags().StringP("project", "p", "", "project id or prefix")
}
