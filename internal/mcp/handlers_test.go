package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/josephgoksu/taskgraph/internal/app"
	"github.com/josephgoksu/taskgraph/internal/logger"
	"github.com/josephgoksu/taskgraph/internal/memory"
	"github.com/josephgoksu/taskgraph/internal/roadmap"
	"github.com/josephgoksu/taskgraph/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandlers(t *testing.T) (*Handlers, *app.TaskApp, string) {
	t.Helper()
	store, err := memory.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	actx := app.NewContext(store, app.WithLogger(logger.Discard()))
	p, err := app.NewProjectApp(actx).Create(context.Background(), "MCP", "")
	require.NoError(t, err)
	return NewHandlers(actx), app.NewTaskApp(actx), p.ID
}

func strPtr(s string) *string { return &s }

func TestHandleTaskTool_InvalidAction(t *testing.T) {
	h, _, _ := newHandlers(t)
	res := h.HandleTaskTool(context.Background(), TaskToolParams{Action: "explode"})
	assert.Equal(t, task.CodeValidation, res.Code)
	assert.Contains(t, res.Error, "must be one of: create, list")
	assert.Empty(t, res.Content)
}

func TestHandleTaskTool_RequiredIDs(t *testing.T) {
	h, _, _ := newHandlers(t)
	ctx := context.Background()

	res := h.HandleTaskTool(ctx, TaskToolParams{Action: TaskActionGet})
	assert.Equal(t, task.CodeValidation, res.Code)
	assert.Contains(t, res.Error, "task_id")

	res = h.HandleTaskTool(ctx, TaskToolParams{Action: TaskActionCreate, Name: strPtr("x")})
	assert.Contains(t, res.Error, "project_id")

	res = h.HandleTaskTool(ctx, TaskToolParams{Action: TaskActionGet, TaskID: "task-missing"})
	assert.Equal(t, task.CodeNotFound, res.Code)
}

func TestHandleTaskTool_Lifecycle(t *testing.T) {
	h, tasks, project := newHandlers(t)
	ctx := context.Background()

	res := h.HandleTaskTool(ctx, TaskToolParams{Action: TaskActionCreate, ProjectID: project, Name: strPtr("schema"), Priority: strPtr("high")})
	require.Empty(t, res.Error)
	assert.Contains(t, res.Content, "Created.")
	assert.Contains(t, res.Content, "**Priority**: High")

	list, err := tasks.List(ctx, project, task.Filter{})
	require.NoError(t, err)
	require.Len(t, list.Tasks, 1)
	a := list.Tasks[0].ID

	res = h.HandleTaskTool(ctx, TaskToolParams{Action: TaskActionCreate, ProjectID: project, Name: strPtr("handlers"), Dependencies: []string{a}})
	require.Empty(t, res.Error)
	list, err = tasks.List(ctx, project, task.Filter{})
	require.NoError(t, err)
	var b string
	for _, tk := range list.Tasks {
		if tk.Name == "handlers" {
			b = tk.ID
		}
	}
	require.NotEmpty(t, b)

	res = h.HandleTaskTool(ctx, TaskToolParams{Action: TaskActionTransition, TaskID: b, Status: "blocked"})
	require.Empty(t, res.Error)

	res = h.HandleTaskTool(ctx, TaskToolParams{Action: TaskActionTransition, TaskID: b, Status: "in_progress"})
	assert.Equal(t, task.CodeDependencyNotSatisfied, res.Code)
	assert.Contains(t, res.Error, "Blocked by")
	assert.Contains(t, res.Error, a)

	res = h.HandleTaskTool(ctx, TaskToolParams{Action: TaskActionTransition, TaskID: a, Status: "COMPLETED"})
	require.Empty(t, res.Error)
	assert.Contains(t, res.Content, "Pending → Completed")
	assert.Contains(t, res.Content, "**Unblocked**")
	assert.Contains(t, res.Content, "**Project progress**: 50%")

	res = h.HandleTaskTool(ctx, TaskToolParams{Action: TaskActionStatus, TaskID: b})
	require.Empty(t, res.Error)
	assert.Contains(t, res.Content, "Can start: true")

	res = h.HandleTaskTool(ctx, TaskToolParams{Action: TaskActionGet, TaskID: a})
	require.Empty(t, res.Error)
	assert.Contains(t, res.Content, "### Required by")
	assert.Contains(t, res.Content, "**Completion**: 100%")

	res = h.HandleTaskTool(ctx, TaskToolParams{Action: TaskActionList, ProjectID: project, Status: "completed"})
	require.Empty(t, res.Error)
	assert.Contains(t, res.Content, "schema")
	assert.NotContains(t, res.Content, "handlers")
}

func TestHandleTaskTool_UpdateAndDelete(t *testing.T) {
	h, tasks, project := newHandlers(t)
	ctx := context.Background()

	a, err := tasks.Create(ctx, task.NewTask{ProjectID: project, Name: "a"})
	require.NoError(t, err)
	b, err := tasks.Create(ctx, task.NewTask{ProjectID: project, Name: "b", Dependencies: []string{a.ID}})
	require.NoError(t, err)

	res := h.HandleTaskTool(ctx, TaskToolParams{Action: TaskActionUpdate, TaskID: a.ID})
	assert.Equal(t, task.CodeValidation, res.Code, "empty update")

	res = h.HandleTaskTool(ctx, TaskToolParams{Action: TaskActionUpdate, TaskID: a.ID, Name: strPtr("a2"), ExpectedVersion: 99})
	assert.Equal(t, task.CodeConflict, res.Code)

	res = h.HandleTaskTool(ctx, TaskToolParams{Action: TaskActionUpdate, TaskID: a.ID, Name: strPtr("a2")})
	require.Empty(t, res.Error)
	assert.Contains(t, res.Content, "a2")

	res = h.HandleTaskTool(ctx, TaskToolParams{Action: TaskActionDelete, TaskID: a.ID})
	assert.Equal(t, task.CodeHasDependents, res.Code)
	assert.Contains(t, res.Error, b.ID)

	res = h.HandleTaskTool(ctx, TaskToolParams{Action: TaskActionUndepend, TaskID: b.ID, DependsOnID: a.ID})
	require.Empty(t, res.Error)

	res = h.HandleTaskTool(ctx, TaskToolParams{Action: TaskActionDelete, TaskID: a.ID})
	require.Empty(t, res.Error)
	assert.Contains(t, res.Content, "Deleted 1 task(s)")
}

func TestHandleTaskTool_DependRejectsCycle(t *testing.T) {
	h, tasks, project := newHandlers(t)
	ctx := context.Background()

	a, err := tasks.Create(ctx, task.NewTask{ProjectID: project, Name: "a"})
	require.NoError(t, err)
	b, err := tasks.Create(ctx, task.NewTask{ProjectID: project, Name: "b"})
	require.NoError(t, err)

	res := h.HandleTaskTool(ctx, TaskToolParams{Action: TaskActionDepend, TaskID: b.ID})
	assert.Contains(t, res.Error, "depends_on_id")

	res = h.HandleTaskTool(ctx, TaskToolParams{Action: TaskActionDepend, TaskID: b.ID, DependsOnID: a.ID})
	require.Empty(t, res.Error)

	res = h.HandleTaskTool(ctx, TaskToolParams{Action: TaskActionDepend, TaskID: a.ID, DependsOnID: b.ID})
	assert.Equal(t, task.CodeCyclicDependency, res.Code)
}

func TestHandleProjectTool(t *testing.T) {
	h, _, project := newHandlers(t)
	ctx := context.Background()

	res := h.HandleProjectTool(ctx, ProjectToolParams{Action: ProjectActionCreate})
	assert.Equal(t, task.CodeValidation, res.Code, "name is required")

	res = h.HandleProjectTool(ctx, ProjectToolParams{Action: ProjectActionList})
	require.Empty(t, res.Error)
	assert.Contains(t, res.Content, project)

	res = h.HandleProjectTool(ctx, ProjectToolParams{Action: ProjectActionRoadmap, ProjectID: project})
	require.Empty(t, res.Error)
	assert.Contains(t, res.Content, "No phases yet")

	res = h.HandleProjectTool(ctx, ProjectToolParams{Action: ProjectActionSynthesize, ProjectID: project})
	assert.Contains(t, res.Error, "blueprint")

	res = h.HandleProjectTool(ctx, ProjectToolParams{
		Action:    ProjectActionSynthesize,
		ProjectID: project,
		Blueprint: &roadmap.Blueprint{ProjectType: "api", Timeline: "1-month"},
	})
	require.Empty(t, res.Error)
	assert.Contains(t, res.Content, "Stored blueprint v1")

	res = h.HandleProjectTool(ctx, ProjectToolParams{Action: ProjectActionRoadmap, ProjectID: project})
	require.Empty(t, res.Error)
	assert.Contains(t, res.Content, "blueprint v1")
	assert.Contains(t, res.Content, "### Phase 1")

	res = h.HandleProjectTool(ctx, ProjectToolParams{Action: ProjectActionSchedule, ProjectID: project})
	require.Empty(t, res.Error)
	assert.True(t, strings.HasPrefix(res.Content, "## Schedule:"))

	res = h.HandleProjectTool(ctx, ProjectToolParams{Action: ProjectActionSummary, ProjectID: project})
	require.Empty(t, res.Error)
	assert.Contains(t, res.Content, "## MCP (0%)")

	res = h.HandleProjectTool(ctx, ProjectToolParams{Action: ProjectActionSummary, ProjectID: "proj-nope"})
	assert.Equal(t, task.CodeNotFound, res.Code)
}
