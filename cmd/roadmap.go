/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/josephgoksu/taskgraph/internal/roadmap"
	"github.com/josephgoksu/taskgraph/internal/ui"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// appFs is the filesystem blueprints are read from. Tests swap in a MemMapFs.
var appFs = afero.NewOsFs()

var roadmapCmd = &cobra.Command{
	Use:   "roadmap",
	Short: "Synthesize and view phased roadmaps",
}

var roadmapShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show phases with their completion",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("roadmap show", func(rt *appRuntime) error {
			id, err := resolveProject(cmd.Context(), rt, cmd)
			if err != nil {
				return err
			}
			v, err := rt.projects.Roadmap(cmd.Context(), id)
			if err != nil {
				return err
			}
			return render(cmd, v, func(w io.Writer) { ui.RenderRoadmap(w, v) })
		})
	},
}

var roadmapSynthesizeCmd = &cobra.Command{
	Use:   "synthesize",
	Short: "Generate phases and tasks from a blueprint file",
	Long: `Read a YAML or JSON blueprint and create one phase task per phase, each
with its subtasks, chained so every phase depends on the one before.

Blueprint keys: projectName, projectType (web-app, mobile-app, api, ...),
timeline (e.g. "4-6 weeks"), techStack {frontend, backend, database,
deployment, testing}, aiAssistance (none, partial, full) and complexity
(0..1). Unknown keys are rejected.

The blueprint is stored on the project as a new version.`,
	Example: `  taskgraph roadmap synthesize -f blueprint.yaml
  taskgraph roadmap synthesize -f blueprint.json --dry-run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			return usagef("--file is required")
		}
		b, err := roadmap.LoadBlueprint(appFs, file)
		if err != nil {
			return err
		}

		if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
			plan := roadmap.Synthesize(*b)
			return render(cmd, plan, func(w io.Writer) { ui.RenderPlan(w, plan) })
		}

		return withApp("roadmap synthesize", func(rt *appRuntime) error {
			id, err := resolveProject(cmd.Context(), rt, cmd)
			if err != nil {
				return err
			}
			res, err := rt.projects.SynthesizeRoadmap(cmd.Context(), id, *b)
			if err != nil {
				return err
			}
			return render(cmd, res, func(w io.Writer) {
				ui.RenderPlan(w, res.Plan)
				fmt.Fprintf(w, "\n%s Created %d task(s), blueprint v%d\n",
					ui.StyleSuccess.Render("✓"), res.TasksCreated, res.BlueprintVersion)
			})
		})
	},
}

var roadmapBlueprintCmd = &cobra.Command{
	Use:   "blueprint",
	Short: "Print the latest stored blueprint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("roadmap blueprint", func(rt *appRuntime) error {
			id, err := resolveProject(cmd.Context(), rt, cmd)
			if err != nil {
				return err
			}
			b, version, err := rt.projects.Blueprint(cmd.Context(), id)
			if err != nil {
				return err
			}
			if b == nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.StyleSubtle.Render(" No blueprint stored yet."))
				return nil
			}
			if outputFormat == outputText {
				fmt.Fprintf(cmd.OutOrStdout(), "# blueprint v%d\n", version)
				return writeYAML(cmd.OutOrStdout(), b)
			}
			return render(cmd, map[string]any{"version": version, "blueprint": b}, nil)
		})
	},
}

func init() {
	rootCmd.AddCommand(roadmapCmd)
	roadmapCmd.AddCommand(roadmapShowCmd, roadmapSynthesizeCmd, roadmapBlueprintCmd)

	for _, c := range []*cobra.Command{roadmapShowCmd, roadmapSynthesizeCmd, roadmapBlueprintCmd} {
		c.Flags().StringP("project", "p", "", "project id or prefix")
	}
	roadmapSynthesizeCmd.Flags().StringP("file", "f", "", "blueprint file (.yaml, .yml or .json)")
	roadmapSynthesizeCmd.Flags().Bool("dry-run", false, "print the plan without storing anything")
}
