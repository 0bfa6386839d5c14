package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/josephgoksu/taskgraph/internal/app"
	"github.com/josephgoksu/taskgraph/internal/task"
)

// Handlers routes tool calls to the application layer.
type Handlers struct {
	tasks    *app.TaskApp
	projects *app.ProjectApp
}

func NewHandlers(actx *app.Context) *Handlers {
	return &Handlers{tasks: app.NewTaskApp(actx), projects: app.NewProjectApp(actx)}
}

func failed(action string, err error) *ToolResult {
	return &ToolResult{Action: action, Error: FormatError(err), Code: task.Kind(err)}
}

func invalid(action, field, message string) *ToolResult {
	return failed(action, &task.ValidationError{Field: field, Message: message})
}

func ok(action, content string) *ToolResult {
	return &ToolResult{Action: action, Content: content}
}

// HandleTaskTool runs one task tool action. Domain failures are reported in
// the result, never as a Go error, so the client can read and correct them.
func (h *Handlers) HandleTaskTool(ctx context.Context, p TaskToolParams) *ToolResult {
	action := string(p.Action)
	if !p.Action.IsValid() {
		return invalid(action, "action", fmt.Sprintf("unknown action %q, must be one of: %s", p.Action, joinActions(ValidTaskActions())))
	}

	switch p.Action {
	case TaskActionCreate:
		return h.taskCreate(ctx, p)
	case TaskActionList:
		return h.taskList(ctx, p)
	}

	if strings.TrimSpace(p.TaskID) == "" {
		return invalid(action, "task_id", "task_id is required for "+action)
	}
	id, err := h.tasks.ResolveID(ctx, p.TaskID)
	if err != nil {
		return failed(action, err)
	}

	switch p.Action {
	case TaskActionGet:
		d, err := h.tasks.Get(ctx, id)
		if err != nil {
			return failed(action, err)
		}
		return ok(action, FormatTaskDetail(d))

	case TaskActionStatus:
		v, err := h.tasks.Status(ctx, id)
		if err != nil {
			return failed(action, err)
		}
		return ok(action, FormatStatusView(v))

	case TaskActionUpdate:
		u := task.FieldUpdate{
			Name:            p.Name,
			Description:     p.Description,
			Complexity:      p.Complexity,
			EstimatedHours:  p.EstimatedHours,
			ExpectedVersion: p.ExpectedVersion,
		}
		if p.Priority != nil {
			pr, err := task.ParsePriority(*p.Priority)
			if err != nil {
				return failed(action, err)
			}
			u.Priority = &pr
		}
		if u.IsEmpty() {
			return invalid(action, "update", "nothing to update")
		}
		t, err := h.tasks.Update(ctx, id, u)
		if err != nil {
			return failed(action, err)
		}
		return ok(action, "Updated.\n\n"+FormatTask(t))

	case TaskActionDelete:
		res, err := h.tasks.Delete(ctx, id)
		if err != nil {
			return failed(action, err)
		}
		return ok(action, FormatDeleted(res.Deleted))

	case TaskActionTransition:
		if p.Status == "" {
			return invalid(action, "status", "status is required for transition")
		}
		target, err := task.ParseStatus(p.Status)
		if err != nil {
			return failed(action, err)
		}
		res, err := h.tasks.Transition(ctx, id, target, task.TransitionOptions{
			ActualHours:     p.ActualHours,
			AssignedAgent:   p.AssignedAgent,
			ExpectedVersion: p.ExpectedVersion,
		})
		if err != nil {
			return failed(action, err)
		}
		return ok(action, FormatTransition(res))

	case TaskActionDepend, TaskActionUndepend:
		if strings.TrimSpace(p.DependsOnID) == "" {
			return invalid(action, "depends_on_id", "depends_on_id is required for "+action)
		}
		dep, err := h.tasks.ResolveID(ctx, p.DependsOnID)
		if err != nil {
			return failed(action, err)
		}
		if p.Action == TaskActionDepend {
			if _, err := h.tasks.AddDependency(ctx, id, dep); err != nil {
				return failed(action, err)
			}
			return ok(action, fmt.Sprintf("`%s` now depends on `%s`.", id, dep))
		}
		if err := h.tasks.RemoveDependency(ctx, id, dep); err != nil {
			return failed(action, err)
		}
		return ok(action, fmt.Sprintf("`%s` no longer depends on `%s`.", id, dep))
	}
	return invalid(action, "action", "unsupported action")
}

func (h *Handlers) taskCreate(ctx context.Context, p TaskToolParams) *ToolResult {
	action := string(p.Action)
	projectID, res := h.requireProject(ctx, action, p.ProjectID)
	if res != nil {
		return res
	}
	spec := task.NewTask{
		ProjectID:      projectID,
		EstimatedHours: p.EstimatedHours,
		Dependencies:   p.Dependencies,
	}
	if p.Name != nil {
		spec.Name = *p.Name
	}
	if p.Description != nil {
		spec.Description = *p.Description
	}
	if p.Complexity != nil {
		spec.Complexity = *p.Complexity
	}
	if p.AssignedAgent != nil {
		spec.AssignedAgent = *p.AssignedAgent
	}
	if p.Priority != nil {
		pr, err := task.ParsePriority(*p.Priority)
		if err != nil {
			return failed(action, err)
		}
		spec.Priority = pr
	}
	if p.ParentTaskID != "" {
		parent, err := h.tasks.ResolveID(ctx, p.ParentTaskID)
		if err != nil {
			return failed(action, err)
		}
		spec.ParentTaskID = parent
	}
	t, err := h.tasks.Create(ctx, spec)
	if err != nil {
		return failed(action, err)
	}
	return ok(action, "Created.\n\n"+FormatTask(t))
}

func (h *Handlers) taskList(ctx context.Context, p TaskToolParams) *ToolResult {
	action := string(p.Action)
	projectID, res := h.requireProject(ctx, action, p.ProjectID)
	if res != nil {
		return res
	}
	var filter task.Filter
	if p.Status != "" {
		st, err := task.ParseStatus(p.Status)
		if err != nil {
			return failed(action, err)
		}
		filter.Status = st
	}
	if p.Priority != nil {
		pr, err := task.ParsePriority(*p.Priority)
		if err != nil {
			return failed(action, err)
		}
		filter.Priority = pr
	}
	if p.AssignedAgent != nil {
		filter.AssignedAgent = *p.AssignedAgent
	}
	list, err := h.tasks.List(ctx, projectID, filter)
	if err != nil {
		return failed(action, err)
	}
	return ok(action, FormatTaskList(list))
}

func (h *Handlers) requireProject(ctx context.Context, action, raw string) (string, *ToolResult) {
	if strings.TrimSpace(raw) == "" {
		return "", invalid(action, "project_id", "project_id is required for "+action)
	}
	id, err := h.projects.ResolveID(ctx, raw)
	if err != nil {
		return "", failed(action, err)
	}
	return id, nil
}

// HandleProjectTool runs one project tool action.
func (h *Handlers) HandleProjectTool(ctx context.Context, p ProjectToolParams) *ToolResult {
	action := string(p.Action)
	if !p.Action.IsValid() {
		return invalid(action, "action", fmt.Sprintf("unknown action %q, must be one of: %s", p.Action, joinActions(ValidProjectActions())))
	}

	switch p.Action {
	case ProjectActionCreate:
		proj, err := h.projects.Create(ctx, p.Name, p.Description)
		if err != nil {
			return failed(action, err)
		}
		return ok(action, "Created.\n\n"+FormatProject(proj))
	case ProjectActionList:
		list, err := h.projects.List(ctx)
		if err != nil {
			return failed(action, err)
		}
		return ok(action, FormatProjects(list))
	}

	id, res := h.requireProject(ctx, action, p.ProjectID)
	if res != nil {
		return res
	}

	switch p.Action {
	case ProjectActionSummary:
		s, err := h.projects.Summary(ctx, id)
		if err != nil {
			return failed(action, err)
		}
		return ok(action, FormatSummary(s))
	case ProjectActionRoadmap:
		v, err := h.projects.Roadmap(ctx, id)
		if err != nil {
			return failed(action, err)
		}
		return ok(action, FormatRoadmap(v))
	case ProjectActionSynthesize:
		if p.Blueprint == nil {
			return invalid(action, "blueprint", "blueprint is required for synthesize")
		}
		r, err := h.projects.SynthesizeRoadmap(ctx, id, *p.Blueprint)
		if err != nil {
			return failed(action, err)
		}
		return ok(action, FormatSynthesis(r))
	case ProjectActionSchedule:
		s, err := h.projects.Schedule(ctx, id)
		if err != nil {
			return failed(action, err)
		}
		return ok(action, FormatSchedule(s))
	}
	return invalid(action, "action", "unsupported action")
}

func joinActions[T ~string](actions []T) string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = string(a)
	}
	return strings.Join(out, ", ")
}
