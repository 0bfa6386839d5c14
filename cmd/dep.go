/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/josephgoksu/taskgraph/internal/ui"
	"github.com/spf13/cobra"
)

var depCmd = &cobra.Command{
	Use:     "dep",
	Aliases: []string{"deps", "dependency"},
	Short:   "Add or remove task dependencies",
}

var depAddCmd = &cobra.Command{
	Use:   "add <task-id> <depends-on-id>",
	Short: "Make a task depend on another",
	Long: `Record that <task-id> cannot start until <depends-on-id> is COMPLETED.

Both tasks must be in the same project. Self-dependencies and edges that
would close a cycle are rejected; adding an existing edge is a no-op.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("dep add", func(rt *appRuntime) error {
			ctx := cmd.Context()
			from, err := rt.tasks.ResolveID(ctx, args[0])
			if err != nil {
				return err
			}
			to, err := rt.tasks.ResolveID(ctx, args[1])
			if err != nil {
				return err
			}
			e, err := rt.tasks.AddDependency(ctx, from, to)
			if err != nil {
				return err
			}
			return render(cmd, e, func(w io.Writer) {
				fmt.Fprintf(w, "%s %s now depends on %s\n", ui.StyleSuccess.Render("✓"), e.TaskID, e.DependsOnID)
			})
		})
	},
}

var depRemoveCmd = &cobra.Command{
	Use:     "rm <task-id> <depends-on-id>",
	Aliases: []string{"remove"},
	Short:   "Remove a dependency",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("dep rm", func(rt *appRuntime) error {
			ctx := cmd.Context()
			from, err := rt.tasks.ResolveID(ctx, args[0])
			if err != nil {
				return err
			}
			to, err := rt.tasks.ResolveID(ctx, args[1])
			if err != nil {
				return err
			}
			if err := rt.tasks.RemoveDependency(ctx, from, to); err != nil {
				return err
			}
			out := map[string]string{"taskId": from, "dependsOnId": to}
			return render(cmd, out, func(w io.Writer) {
				fmt.Fprintf(w, "%s %s no longer depends on %s\n", ui.StyleSuccess.Render("✓"), from, to)
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(depCmd)
	depCmd.AddCommand(depAddCmd, depRemoveCmd)
}
