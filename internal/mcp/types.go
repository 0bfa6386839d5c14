// Package mcp exposes the task graph to MCP clients as two action-routed
// tools, "task" and "project".
package mcp

import "github.com/josephgoksu/taskgraph/internal/roadmap"

// TaskAction selects the operation of the task tool.
type TaskAction string

const (
	TaskActionCreate     TaskAction = "create"
	TaskActionList       TaskAction = "list"
	TaskActionGet        TaskAction = "get"
	TaskActionUpdate     TaskAction = "update"
	TaskActionDelete     TaskAction = "delete"
	TaskActionTransition TaskAction = "transition"
	TaskActionStatus     TaskAction = "status"
	TaskActionDepend     TaskAction = "depend"
	TaskActionUndepend   TaskAction = "undepend"
)

// ValidTaskActions returns all task actions in display order.
func ValidTaskActions() []TaskAction {
	return []TaskAction{
		TaskActionCreate, TaskActionList, TaskActionGet, TaskActionUpdate, TaskActionDelete,
		TaskActionTransition, TaskActionStatus, TaskActionDepend, TaskActionUndepend,
	}
}

func (a TaskAction) IsValid() bool {
	for _, v := range ValidTaskActions() {
		if a == v {
			return true
		}
	}
	return false
}

// ProjectAction selects the operation of the project tool.
type ProjectAction string

const (
	ProjectActionCreate     ProjectAction = "create"
	ProjectActionList       ProjectAction = "list"
	ProjectActionSummary    ProjectAction = "summary"
	ProjectActionRoadmap    ProjectAction = "roadmap"
	ProjectActionSynthesize ProjectAction = "synthesize"
	ProjectActionSchedule   ProjectAction = "schedule"
)

func ValidProjectActions() []ProjectAction {
	return []ProjectAction{
		ProjectActionCreate, ProjectActionList, ProjectActionSummary,
		ProjectActionRoadmap, ProjectActionSynthesize, ProjectActionSchedule,
	}
}

func (a ProjectAction) IsValid() bool {
	for _, v := range ValidProjectActions() {
		if a == v {
			return true
		}
	}
	return false
}

// TaskToolParams are the arguments of the task tool. Which fields are read
// depends on Action.
type TaskToolParams struct {
	// Action is required. One of: create, list, get, update, delete,
	// transition, status, depend, undepend.
	Action TaskAction `json:"action"`

	// ProjectID (or a unique prefix) is required for create and list.
	ProjectID string `json:"project_id,omitempty"`

	// TaskID (or a unique prefix) is required for every action except
	// create and list.
	TaskID string `json:"task_id,omitempty"`

	Name           *string  `json:"name,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Priority       *string  `json:"priority,omitempty"`
	Complexity     *int     `json:"complexity,omitempty"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty"`
	ParentTaskID   string   `json:"parent_task_id,omitempty"`
	Dependencies   []string `json:"dependencies,omitempty"`

	// Status is the transition target, or a list filter.
	Status string `json:"status,omitempty"`

	// AssignedAgent is set on create and transition, or filters a list.
	AssignedAgent *string  `json:"assigned_agent,omitempty"`
	ActualHours   *float64 `json:"actual_hours,omitempty"`

	// DependsOnID is the prerequisite for depend and undepend.
	DependsOnID string `json:"depends_on_id,omitempty"`

	// ExpectedVersion guards update and transition when non-zero.
	ExpectedVersion int64 `json:"expected_version,omitempty"`
}

// ProjectToolParams are the arguments of the project tool.
type ProjectToolParams struct {
	// Action is required. One of: create, list, summary, roadmap,
	// synthesize, schedule.
	Action ProjectAction `json:"action"`

	// ProjectID (or a unique prefix) is required for everything but create
	// and list.
	ProjectID string `json:"project_id,omitempty"`

	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`

	// Blueprint is required for synthesize.
	Blueprint *roadmap.Blueprint `json:"blueprint,omitempty"`
}

// ToolResult is what a tool handler produces before it is wrapped for the
// protocol. Exactly one of Content and Error is set.
type ToolResult struct {
	Action  string `json:"action"`
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
	// Code is the stable error code when Error is set.
	Code string `json:"code,omitempty"`
}
