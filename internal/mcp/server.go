package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

const taskToolDescription = `Task graph operations. Use the action parameter to select one:
- create: add a task (project_id, name; optional description, priority, complexity, estimated_hours, parent_task_id, assigned_agent, dependencies)
- list: list a project's tasks (project_id; optional status, priority, assigned_agent filters)
- get: task detail with completion, dependencies, dependents and subtasks (task_id)
- update: edit name, description, priority, complexity or estimated_hours (task_id; optional expected_version)
- delete: delete a task and its subtasks (task_id)
- transition: change status (task_id, status; optional actual_hours, assigned_agent, expected_version). Starting requires every dependency COMPLETED.
- status: what the task is waiting on (task_id)
- depend / undepend: add or remove a dependency (task_id, depends_on_id)
IDs may be given as unique prefixes.`

const projectToolDescription = `Project operations. Use the action parameter to select one:
- create: create a project (name; optional description)
- list: list projects
- summary: progress, counts, blocked tasks and critical path (project_id)
- roadmap: phases with completion (project_id)
- synthesize: generate and store phases and tasks from a blueprint (project_id, blueprint)
- schedule: critical path schedule with earliest/latest times and slack (project_id)`

// Register adds the task and project tools to server.
func Register(server *mcpsdk.Server, h *Handlers, log *slog.Logger) {
	mcpsdk.AddTool(server, &mcpsdk.Tool{Name: "task", Description: taskToolDescription},
		func(ctx context.Context, _ *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[TaskToolParams]) (*mcpsdk.CallToolResultFor[any], error) {
			res := h.HandleTaskTool(ctx, params.Arguments)
			logResult(log, "task", res)
			return toCallResult(res), nil
		})

	mcpsdk.AddTool(server, &mcpsdk.Tool{Name: "project", Description: projectToolDescription},
		func(ctx context.Context, _ *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[ProjectToolParams]) (*mcpsdk.CallToolResultFor[any], error) {
			res := h.HandleProjectTool(ctx, params.Arguments)
			logResult(log, "project", res)
			return toCallResult(res), nil
		})
}

// NewServer builds an MCP server with both tools registered.
func NewServer(h *Handlers, version string, log *slog.Logger) *mcpsdk.Server {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{Name: "taskgraph", Version: version}, &mcpsdk.ServerOptions{
		InitializedHandler: func(context.Context, *mcpsdk.ServerSession, *mcpsdk.InitializedParams) {
			log.Info("mcp client initialized")
		},
	})
	Register(server, h, log)
	return server
}

// Serve runs the server over stdio until the client disconnects or ctx ends.
// stdout carries JSON-RPC only; log must write elsewhere.
func Serve(ctx context.Context, server *mcpsdk.Server) error {
	return server.Run(ctx, mcpsdk.NewStdioTransport())
}

// Tool errors go back in the result with IsError so the client can see them.
func toCallResult(res *ToolResult) *mcpsdk.CallToolResultFor[any] {
	if res.Error != "" {
		return &mcpsdk.CallToolResultFor[any]{
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: res.Error}},
			IsError: true,
		}
	}
	return &mcpsdk.CallToolResultFor[any]{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: res.Content}},
	}
}

func logResult(log *slog.Logger, tool string, res *ToolResult) {
	if res.Error != "" {
		log.Debug("mcp tool failed", "tool", tool, "action", res.Action, "code", res.Code)
		return
	}
	log.Debug("mcp tool call", "tool", tool, "action", res.Action)
}
