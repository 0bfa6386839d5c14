/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"

	"github.com/josephgoksu/taskgraph/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server on stdio",
	Long: `Start a Model Context Protocol server so AI assistants can read and change
the task graph.

Two tools are exposed:
  task     create, list, get, update, delete, transition, status, depend, undepend
  project  create, list, summary, roadmap, synthesize, schedule

Results are Markdown. The server runs until the client disconnects.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout belongs to JSON-RPC; logs already go to stderr.
		watchConfig()
		return withApp("mcp", func(rt *appRuntime) error {
			log.Info("mcp server starting", "data_dir", cfg.Data.Dir)
			server := mcp.NewServer(mcp.NewHandlers(rt.ctx), version, log)
			if err := mcp.Serve(cmd.Context(), server); err != nil {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
