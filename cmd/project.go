/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/josephgoksu/taskgraph/internal/task"
	"github.com/josephgoksu/taskgraph/internal/ui"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"projects", "p"},
	Short:   "Create and list projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, _ := cmd.Flags().GetString("description")
		return runProjectCreate(cmd, strings.Join(args, " "), desc)
	},
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("project list", func(rt *appRuntime) error {
			projects, err := rt.projects.List(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd, projects, func(w io.Writer) { ui.RenderProjects(w, projects) })
		})
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show <project-id>",
	Short: "Show a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("project show", func(rt *appRuntime) error {
			id, err := rt.projects.ResolveID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p, err := rt.projects.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return render(cmd, p, func(w io.Writer) {
				ui.RenderProjects(w, []task.Project{*p})
				if p.Description != "" {
					fmt.Fprintln(w, " "+p.Description)
				}
			})
		})
	},
}

func runProjectCreate(cmd *cobra.Command, name, description string) error {
	return withApp("project create", func(rt *appRuntime) error {
		p, err := rt.projects.Create(cmd.Context(), name, description)
		if err != nil {
			return err
		}
		return render(cmd, p, func(w io.Writer) {
			fmt.Fprintf(w, "%s Created project %s (%s)\n", ui.StyleSuccess.Render("✓"), p.Name, p.ID)
		})
	})
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectCreateCmd, projectListCmd, projectShowCmd)
	projectCreateCmd.Flags().StringP("description", "d", "", "project description")
}
