/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/josephgoksu/taskgraph/internal/task"
	"github.com/josephgoksu/taskgraph/internal/ui"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"tasks", "t"},
	Short:   "Create, inspect and move tasks",
	Long: `Manage the tasks of a project.

Task and project ids may be abbreviated to any unique prefix, with or
without the "task-" / "proj-" part. When only one project exists,
--project can be omitted.`,
}

var taskAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a task",
	Example: `  taskgraph task add "Design schema" -p proj-1a2b --priority high --estimate 4
  taskgraph task add "Write handlers" --depends-on 3f9c --parent 77aa`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTaskAdd(cmd, strings.Join(args, " "))
	},
}

var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List a project's tasks",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTaskList(cmd)
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show a task with its dependencies, dependents and subtasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("task show", func(rt *appRuntime) error {
			id, err := rt.tasks.ResolveID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			d, err := rt.tasks.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return render(cmd, d, func(w io.Writer) { ui.RenderTaskDetail(w, d) })
		})
	},
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update <task-id>",
	Short: "Edit a task's name, description, priority, complexity or estimate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTaskUpdate(cmd, args[0])
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:     "delete <task-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a task and its subtasks",
	Long: `Delete a task and, recursively, its subtasks.

Deletion is refused while any other task depends on the task or one of its
subtasks; remove those dependencies first with 'taskgraph dep rm'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("task delete", func(rt *appRuntime) error {
			id, err := rt.tasks.ResolveID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			res, err := rt.tasks.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			return render(cmd, res, func(w io.Writer) {
				fmt.Fprintf(w, "%s Deleted %d task(s): %s\n", ui.StyleSuccess.Render("✓"), len(res.Deleted), strings.Join(res.Deleted, ", "))
			})
		})
	},
}

var taskMoveCmd = &cobra.Command{
	Use:   "move <task-id> <status>",
	Short: "Change a task's status",
	Long: `Move a task to PENDING, IN_PROGRESS, BLOCKED, COMPLETED or CANCELLED.

Moving to IN_PROGRESS requires every dependency to be COMPLETED. Completing
a task returns any BLOCKED dependents whose dependencies are now all
complete to PENDING.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := task.ParseStatus(args[1])
		if err != nil {
			return err
		}
		return runTransition(cmd, args[0], status)
	},
}

// shortcut builds a one-argument transition command such as "task start".
func shortcut(use, short string, target task.Status) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(cmd, args[0], target)
		},
	}
}

func runTaskAdd(cmd *cobra.Command, name string) error {
	return withApp("task add", func(rt *appRuntime) error {
		ctx := cmd.Context()
		projectID, err := resolveProject(ctx, rt, cmd)
		if err != nil {
			return err
		}
		spec := task.NewTask{ProjectID: projectID, Name: name}
		spec.Description, _ = cmd.Flags().GetString("description")
		spec.AssignedAgent, _ = cmd.Flags().GetString("agent")
		spec.Complexity, _ = cmd.Flags().GetInt("complexity")

		if raw, _ := cmd.Flags().GetString("priority"); raw != "" {
			if spec.Priority, err = task.ParsePriority(raw); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("estimate") {
			h, _ := cmd.Flags().GetFloat64("estimate")
			spec.EstimatedHours = &h
		}
		if raw, _ := cmd.Flags().GetString("parent"); raw != "" {
			if spec.ParentTaskID, err = rt.tasks.ResolveID(ctx, raw); err != nil {
				return err
			}
		}
		deps, _ := cmd.Flags().GetStringSlice("depends-on")
		for _, raw := range deps {
			id, err := rt.tasks.ResolveID(ctx, raw)
			if err != nil {
				return err
			}
			spec.Dependencies = append(spec.Dependencies, id)
		}

		t, err := rt.tasks.Create(ctx, spec)
		if err != nil {
			return err
		}
		return render(cmd, t, func(w io.Writer) {
			fmt.Fprintf(w, "%s Added %s (%s)\n", ui.StyleSuccess.Render("✓"), t.Name, t.ID)
		})
	})
}

func runTaskList(cmd *cobra.Command) error {
	return withApp("task list", func(rt *appRuntime) error {
		ctx := cmd.Context()
		projectID, err := resolveProject(ctx, rt, cmd)
		if err != nil {
			return err
		}
		var filter task.Filter
		if raw, _ := cmd.Flags().GetString("status"); raw != "" {
			if filter.Status, err = task.ParseStatus(raw); err != nil {
				return err
			}
		}
		if raw, _ := cmd.Flags().GetString("priority"); raw != "" {
			if filter.Priority, err = task.ParsePriority(raw); err != nil {
				return err
			}
		}
		filter.AssignedAgent, _ = cmd.Flags().GetString("agent")

		list, err := rt.tasks.List(ctx, projectID, filter)
		if err != nil {
			return err
		}
		return render(cmd, list, func(w io.Writer) { ui.RenderTaskList(w, list.Tasks, list.Stats) })
	})
}

func runTaskUpdate(cmd *cobra.Command, rawID string) error {
	var u task.FieldUpdate
	flags := cmd.Flags()
	if flags.Changed("name") {
		v, _ := flags.GetString("name")
		u.Name = &v
	}
	if flags.Changed("description") {
		v, _ := flags.GetString("description")
		u.Description = &v
	}
	if flags.Changed("priority") {
		raw, _ := flags.GetString("priority")
		p, err := task.ParsePriority(raw)
		if err != nil {
			return err
		}
		u.Priority = &p
	}
	if flags.Changed("complexity") {
		v, _ := flags.GetInt("complexity")
		u.Complexity = &v
	}
	if flags.Changed("estimate") {
		v, _ := flags.GetFloat64("estimate")
		u.EstimatedHours = &v
	}
	u.ExpectedVersion, _ = flags.GetInt64("expected-version")
	if u.IsEmpty() {
		return usagef("nothing to update: pass at least one of --name, --description, --priority, --complexity, --estimate")
	}

	return withApp("task update", func(rt *appRuntime) error {
		id, err := rt.tasks.ResolveID(cmd.Context(), rawID)
		if err != nil {
			return err
		}
		t, err := rt.tasks.Update(cmd.Context(), id, u)
		if err != nil {
			return err
		}
		return render(cmd, t, func(w io.Writer) {
			fmt.Fprintf(w, "%s Updated %s (version %d)\n", ui.StyleSuccess.Render("✓"), t.ID, t.Version)
		})
	})
}

func runTransition(cmd *cobra.Command, rawID string, target task.Status) error {
	var opts task.TransitionOptions
	flags := cmd.Flags()
	if flags.Changed("hours") {
		h, _ := flags.GetFloat64("hours")
		opts.ActualHours = &h
	}
	if flags.Changed("agent") {
		a, _ := flags.GetString("agent")
		opts.AssignedAgent = &a
	}
	opts.ExpectedVersion, _ = flags.GetInt64("expected-version")

	return withApp("task move", func(rt *appRuntime) error {
		id, err := rt.tasks.ResolveID(cmd.Context(), rawID)
		if err != nil {
			return err
		}
		res, err := rt.tasks.Transition(cmd.Context(), id, target, opts)
		if err != nil {
			return err
		}
		return render(cmd, res, func(w io.Writer) { ui.RenderTransition(w, res) })
	})
}

// resolveProject reads --project, falling back to the only project when
// there is exactly one.
func resolveProject(ctx context.Context, rt *appRuntime, cmd *cobra.Command) (string, error) {
	raw, _ := cmd.Flags().GetString("project")
	if raw != "" {
		return rt.projects.ResolveID(ctx, raw)
	}
	projects, err := rt.projects.List(ctx)
	if err != nil {
		return "", err
	}
	switch len(projects) {
	case 0:
		return "", usagef("no projects yet: create one with 'taskgraph project create <name>'")
	case 1:
		return projects[0].ID, nil
	}
	return "", usagef("%d projects exist: pass --project", len(projects))
}

func addTransitionFlags(c *cobra.Command) {
	c.Flags().Float64("hours", 0, "actual hours spent")
	c.Flags().String("agent", "", "assign to this agent")
	c.Flags().Int64("expected-version", 0, "fail unless the task is at this version")
}

func init() {
	rootCmd.AddCommand(taskCmd)

	taskAddCmd.Flags().StringP("project", "p", "", "project id or prefix")
	taskAddCmd.Flags().StringP("description", "d", "", "task description")
	taskAddCmd.Flags().String("priority", "", "LOW, MEDIUM, HIGH or CRITICAL (default MEDIUM)")
	taskAddCmd.Flags().Int("complexity", 0, "complexity 1-5 (default 1)")
	taskAddCmd.Flags().Float64("estimate", 0, "estimated hours")
	taskAddCmd.Flags().String("parent", "", "parent task id")
	taskAddCmd.Flags().String("agent", "", "assigned agent")
	taskAddCmd.Flags().StringSlice("depends-on", nil, "ids of tasks this task depends on")

	taskListCmd.Flags().StringP("project", "p", "", "project id or prefix")
	taskListCmd.Flags().String("status", "", "filter by status")
	taskListCmd.Flags().String("priority", "", "filter by priority")
	taskListCmd.Flags().String("agent", "", "filter by assigned agent")

	taskUpdateCmd.Flags().String("name", "", "new name")
	taskUpdateCmd.Flags().StringP("description", "d", "", "new description")
	taskUpdateCmd.Flags().String("priority", "", "new priority")
	taskUpdateCmd.Flags().Int("complexity", 0, "new complexity 1-5")
	taskUpdateCmd.Flags().Float64("estimate", 0, "new estimated hours")
	taskUpdateCmd.Flags().Int64("expected-version", 0, "fail unless the task is at this version")

	start := shortcut("start", "Move a task to IN_PROGRESS", task.StatusInProgress)
	done := shortcut("done", "Move a task to COMPLETED", task.StatusCompleted)
	block := shortcut("block", "Move a task to BLOCKED", task.StatusBlocked)
	cancel := shortcut("cancel", "Move a task to CANCELLED", task.StatusCancelled)
	for _, c := range []*cobra.Command{taskMoveCmd, start, done, block, cancel} {
		addTransitionFlags(c)
	}

	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskShowCmd, taskUpdateCmd, taskDeleteCmd,
		taskMoveCmd, start, done, block, cancel)
}
