package app

import (
	"context"
	"time"

	"github.com/josephgoksu/taskgraph/internal/events"
	"github.com/josephgoksu/taskgraph/internal/task"
	"github.com/josephgoksu/taskgraph/internal/telemetry"
	"github.com/josephgoksu/taskgraph/internal/util"
)

// TaskList is a filtered task listing with analytics over the same tasks.
type TaskList struct {
	Tasks []task.Task    `json:"tasks"`
	Stats task.TaskStats `json:"analytics"`
}

// DeleteResult lists every task removed, root first.
type DeleteResult struct {
	Deleted []string `json:"deleted"`
}

// TaskApp provides task lifecycle operations.
type TaskApp struct {
	ctx *Context
}

func NewTaskApp(ctx *Context) *TaskApp {
	return &TaskApp{ctx: ctx}
}

// ResolveID expands a task id prefix.
func (a *TaskApp) ResolveID(ctx context.Context, idOrPrefix string) (string, error) {
	return util.ResolveTaskID(ctx, a.ctx.Repo, idOrPrefix)
}

// Create adds a PENDING task and its dependency edges in one unit of work.
func (a *TaskApp) Create(ctx context.Context, spec task.NewTask) (t *task.Task, err error) {
	started := time.Now()
	defer func() { a.ctx.finish("create_task", started, err, "project_id", spec.ProjectID) }()

	err = a.ctx.mutate(ctx, spec.ProjectID, func(g *task.Graph) error {
		var err error
		t, err = g.CreateTask(ctx, spec)
		return err
	})
	if err != nil {
		return nil, err
	}

	evs := []events.Event{events.New(events.TaskCreated, t.ProjectID, t.ID, map[string]any{"name": t.Name})}
	for _, dep := range spec.Dependencies {
		evs = append(evs, events.New(events.DependencyAdded, t.ProjectID, t.ID, map[string]any{"dependsOnId": dep}))
	}
	a.ctx.publish(ctx, evs...)
	a.ctx.Telemetry.Track(telemetry.EventTaskCreated, telemetry.Properties{"dependencies": len(spec.Dependencies)})
	return t, nil
}

// List returns a project's tasks matching filter, in creation order.
func (a *TaskApp) List(ctx context.Context, projectID string, filter task.Filter) (*TaskList, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	var tasks []task.Task
	err := a.ctx.Repo.View(ctx, func(r task.Reader) error {
		if _, err := r.GetProject(ctx, projectID); err != nil {
			return err
		}
		var err error
		tasks, err = r.ListTasks(ctx, projectID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &TaskList{Tasks: tasks, Stats: task.ComputeStats(tasks)}, nil
}

// Get returns a task with its completion and neighbours.
func (a *TaskApp) Get(ctx context.Context, id string) (d *task.TaskDetail, err error) {
	err = a.ctx.Repo.View(ctx, func(r task.Reader) error {
		d, err = task.BuildTaskDetail(ctx, r, id)
		return err
	})
	return d, err
}

// Status returns the dependency-aware status view of a task.
func (a *TaskApp) Status(ctx context.Context, id string) (v *task.StatusView, err error) {
	err = a.ctx.Repo.View(ctx, func(r task.Reader) error {
		v, err = task.BuildStatusView(ctx, r, id)
		return err
	})
	return v, err
}

// Update edits fields outside the state machine.
func (a *TaskApp) Update(ctx context.Context, id string, u task.FieldUpdate) (t *task.Task, err error) {
	started := time.Now()
	defer func() { a.ctx.finish("update_task", started, err, "task_id", id) }()

	projectID, err := a.ctx.projectOf(ctx, id)
	if err != nil {
		return nil, err
	}
	err = a.ctx.mutate(ctx, projectID, func(g *task.Graph) error {
		var err error
		t, err = g.UpdateFields(ctx, id, u)
		return err
	})
	if err != nil {
		return nil, err
	}
	a.ctx.publish(ctx, events.New(events.TaskUpdated, projectID, id, map[string]any{"version": t.Version}))
	return t, nil
}

// Delete removes a task and its subtasks unless something depends on them.
func (a *TaskApp) Delete(ctx context.Context, id string) (res *DeleteResult, err error) {
	started := time.Now()
	defer func() { a.ctx.finish("delete_task", started, err, "task_id", id) }()

	projectID, err := a.ctx.projectOf(ctx, id)
	if err != nil {
		return nil, err
	}
	var deleted []string
	err = a.ctx.mutate(ctx, projectID, func(g *task.Graph) error {
		var err error
		deleted, err = g.DeleteTask(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	evs := make([]events.Event, 0, len(deleted))
	for _, d := range deleted {
		evs = append(evs, events.New(events.TaskDeleted, projectID, d, nil))
	}
	a.ctx.publish(ctx, evs...)
	a.ctx.Telemetry.Track(telemetry.EventTaskDeleted, telemetry.Properties{"removed": len(deleted)})
	return &DeleteResult{Deleted: deleted}, nil
}

// Transition changes a task's status, cascading on completion.
func (a *TaskApp) Transition(ctx context.Context, id string, target task.Status, opts task.TransitionOptions) (res *task.TransitionResult, err error) {
	started := time.Now()
	defer func() { a.ctx.finish("transition", started, err, "task_id", id, "to", target) }()

	projectID, err := a.ctx.projectOf(ctx, id)
	if err != nil {
		return nil, err
	}
	err = a.ctx.mutate(ctx, projectID, func(g *task.Graph) error {
		var err error
		res, err = g.Transition(ctx, id, target, opts)
		return err
	})
	if err != nil {
		return nil, err
	}

	from, to := string(res.PreviousStatus), string(res.Task.Status)
	a.ctx.Metrics.ObserveTransition(from, to)
	a.ctx.Metrics.AddUnblocked(len(res.Unblocked))

	evs := []events.Event{events.New(events.TaskTransitioned, projectID, id, map[string]any{
		"from": from, "to": to, "projectProgress": res.ProjectProgress,
	})}
	for _, u := range res.Unblocked {
		evs = append(evs, events.New(events.TaskUnblocked, projectID, u, map[string]any{"completedTaskId": id}))
	}
	a.ctx.publish(ctx, evs...)
	a.ctx.Telemetry.Track(telemetry.EventTaskTransitioned, telemetry.Properties{
		"from": from, "to": to, "unblocked": len(res.Unblocked),
	})
	return res, nil
}

// AddDependency records that taskID depends on dependsOnID.
func (a *TaskApp) AddDependency(ctx context.Context, taskID, dependsOnID string) (e *task.Edge, err error) {
	started := time.Now()
	defer func() { a.ctx.finish("add_dependency", started, err, "task_id", taskID, "depends_on", dependsOnID) }()

	projectID, err := a.ctx.projectOf(ctx, taskID)
	if err != nil {
		return nil, err
	}
	var edge task.Edge
	err = a.ctx.mutate(ctx, projectID, func(g *task.Graph) error {
		var err error
		edge, err = g.CreateEdge(ctx, taskID, dependsOnID)
		return err
	})
	if err != nil {
		return nil, err
	}
	a.ctx.publish(ctx, events.New(events.DependencyAdded, projectID, taskID, map[string]any{"dependsOnId": dependsOnID}))
	return &edge, nil
}

// RemoveDependency drops an edge. A missing edge is NotFound.
func (a *TaskApp) RemoveDependency(ctx context.Context, taskID, dependsOnID string) (err error) {
	started := time.Now()
	defer func() { a.ctx.finish("remove_dependency", started, err, "task_id", taskID, "depends_on", dependsOnID) }()

	projectID, err := a.ctx.projectOf(ctx, taskID)
	if err != nil {
		return err
	}
	err = a.ctx.mutate(ctx, projectID, func(g *task.Graph) error {
		return g.RemoveEdge(ctx, taskID, dependsOnID)
	})
	if err != nil {
		return err
	}
	a.ctx.publish(ctx, events.New(events.DependencyRemoved, projectID, taskID, map[string]any{"dependsOnId": dependsOnID}))
	return nil
}
