package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Graph applies the task-graph rules to a single unit of work. Build one per
// Repository.Atomic call; it holds no state of its own beyond its options.
type Graph struct {
	w         Writer
	now       func() time.Time
	logger    *slog.Logger
	taskID    func() string
	projectID func() string
}

type Option func(*Graph)

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Graph) {
		if now != nil {
			g.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Graph) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithIDs overrides id generation, mainly for tests.
func WithIDs(taskID, projectID func() string) Option {
	return func(g *Graph) {
		if taskID != nil {
			g.taskID = taskID
		}
		if projectID != nil {
			g.projectID = projectID
		}
	}
}

func NewGraph(w Writer, opts ...Option) *Graph {
	g := &Graph{w: w, now: time.Now, logger: slog.Default(), taskID: NewTaskID, projectID: NewProjectID}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// insertFresh runs insert and, if the generated id is taken, retries once
// with a new one. Short ids make a collision rare, two in a row rarer still.
func insertFresh(insert func() error, renew func()) error {
	err := insert()
	if errors.Is(err, ErrDuplicateID) {
		renew()
		err = insert()
	}
	return err
}

func (g *Graph) timestamp() time.Time {
	return g.now().UTC()
}

// CreateProject registers a new empty project.
func (g *Graph) CreateProject(ctx context.Context, name, description string) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "is required"}
	}
	now := g.timestamp()
	p := &Project{
		ID:          g.projectID(),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := insertFresh(func() error { return g.w.CreateProject(ctx, p) }, func() { p.ID = g.projectID() })
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

// CreateTask validates spec, stores the task as PENDING and wires its
// dependency edges.
func (g *Graph) CreateTask(ctx context.Context, spec NewTask) (*Task, error) {
	spec.Name = strings.TrimSpace(spec.Name)
	if err := validateStruct(spec); err != nil {
		return nil, err
	}

	if _, err := g.w.GetProject(ctx, spec.ProjectID); err != nil {
		if IsNotFound(err) {
			return nil, &ValidationError{Field: "projectId", Message: fmt.Sprintf("project %s does not exist", spec.ProjectID)}
		}
		return nil, err
	}

	if spec.ParentTaskID != "" {
		parent, err := g.w.GetTask(ctx, spec.ParentTaskID)
		if err != nil {
			if IsNotFound(err) {
				return nil, &ValidationError{Field: "parentTaskId", Message: fmt.Sprintf("task %s does not exist", spec.ParentTaskID)}
			}
			return nil, err
		}
		if parent.ProjectID != spec.ProjectID {
			return nil, &ValidationError{Field: "parentTaskId", Message: "parent task belongs to another project"}
		}
	}

	now := g.timestamp()
	t := &Task{
		ID:             g.taskID(),
		ProjectID:      spec.ProjectID,
		Name:           spec.Name,
		Description:    strings.TrimSpace(spec.Description),
		Status:         StatusPending,
		Priority:       spec.Priority,
		Complexity:     spec.Complexity,
		EstimatedHours: spec.EstimatedHours,
		ParentTaskID:   spec.ParentTaskID,
		AssignedAgent:  strings.TrimSpace(spec.AssignedAgent),
		CreatedAt:      now,
		UpdatedAt:      now,
		Version:        1,
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Complexity == 0 {
		t.Complexity = 1
	}

	if err := insertFresh(func() error { return g.w.InsertTask(ctx, t) }, func() { t.ID = g.taskID() }); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	for _, dep := range spec.Dependencies {
		if _, err := g.CreateEdge(ctx, t.ID, dep); err != nil {
			return nil, err
		}
	}

	if _, err := g.RefreshProgress(ctx, t.ProjectID); err != nil {
		return nil, err
	}

	g.logger.Debug("task created", "task_id", t.ID, "project_id", t.ProjectID, "dependencies", len(spec.Dependencies))
	return t, nil
}

// CreateEdge records that taskID depends on dependsOnID. Re-adding an
// existing edge is a no-op.
func (g *Graph) CreateEdge(ctx context.Context, taskID, dependsOnID string) (Edge, error) {
	t, err := g.w.GetTask(ctx, taskID)
	if err != nil {
		return Edge{}, err
	}
	dep, err := g.w.GetTask(ctx, dependsOnID)
	if err != nil {
		return Edge{}, err
	}
	if t.ID == dep.ID {
		return Edge{}, &SelfDependencyError{TaskID: t.ID}
	}
	if t.ProjectID != dep.ProjectID {
		return Edge{}, &ValidationError{Field: "dependsOnId", Message: "dependencies must stay within one project"}
	}

	edges, err := g.w.ListEdges(ctx, t.ProjectID)
	if err != nil {
		return Edge{}, fmt.Errorf("list edges: %w", err)
	}
	for _, e := range edges {
		if e.TaskID == t.ID && e.DependsOnID == dep.ID {
			return e, nil
		}
	}
	if path := FindPath(edges, dep.ID, t.ID); path != nil {
		return Edge{}, &CyclicDependencyError{TaskID: t.ID, DependsOnID: dep.ID, Path: path}
	}

	e := Edge{TaskID: t.ID, DependsOnID: dep.ID, CreatedAt: g.timestamp()}
	if err := g.w.InsertEdge(ctx, e); err != nil {
		return Edge{}, fmt.Errorf("insert edge: %w", err)
	}
	return e, nil
}

// RemoveEdge drops a dependency edge.
func (g *Graph) RemoveEdge(ctx context.Context, taskID, dependsOnID string) error {
	return g.w.DeleteEdge(ctx, taskID, dependsOnID)
}

// UpdateFields edits name, description, priority, complexity or estimate.
// Status, timestamps, hours and assignment belong to Transition.
func (g *Graph) UpdateFields(ctx context.Context, id string, u FieldUpdate) (*Task, error) {
	if u.Name != nil {
		trimmed := strings.TrimSpace(*u.Name)
		u.Name = &trimmed
	}
	if err := validateStruct(u); err != nil {
		return nil, err
	}

	t, err := g.w.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.ExpectedVersion != 0 && u.ExpectedVersion != t.Version {
		return nil, &ConflictError{TaskID: id, Expected: u.ExpectedVersion, Actual: t.Version}
	}
	if u.IsEmpty() {
		return t, nil
	}

	if u.Name != nil {
		t.Name = *u.Name
	}
	if u.Description != nil {
		t.Description = strings.TrimSpace(*u.Description)
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.Complexity != nil {
		t.Complexity = *u.Complexity
	}
	if u.EstimatedHours != nil {
		t.EstimatedHours = floatPtr(*u.EstimatedHours)
	}
	t.UpdatedAt = g.timestamp()

	if err := g.w.UpdateTask(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTask removes a task together with its subtasks and their outgoing
// edges. If any task in that set still has a dependent, nothing is removed.
// The returned ids are in removal order, root first.
func (g *Graph) DeleteTask(ctx context.Context, id string) ([]string, error) {
	root, err := g.w.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := []string{root.ID}
	for i := 0; i < len(ids); i++ {
		subtasks, err := g.w.ListSubtasks(ctx, ids[i])
		if err != nil {
			return nil, fmt.Errorf("list subtasks of %s: %w", ids[i], err)
		}
		for _, s := range subtasks {
			ids = append(ids, s.ID)
		}
	}

	for _, tid := range ids {
		dependents, err := g.w.ListDependents(ctx, tid)
		if err != nil {
			return nil, fmt.Errorf("list dependents of %s: %w", tid, err)
		}
		if len(dependents) > 0 {
			depIDs := make([]string, 0, len(dependents))
			for _, d := range dependents {
				depIDs = append(depIDs, d.ID)
			}
			return nil, &HasDependentsError{TaskID: tid, Dependents: depIDs}
		}
	}

	if err := g.w.DeleteTasks(ctx, ids); err != nil {
		return nil, fmt.Errorf("delete tasks: %w", err)
	}
	if _, err := g.RefreshProgress(ctx, root.ProjectID); err != nil {
		return nil, err
	}

	g.logger.Debug("task deleted", "task_id", root.ID, "removed", len(ids))
	return ids, nil
}

// RefreshProgress recomputes the project's cached progress and stores it.
func (g *Graph) RefreshProgress(ctx context.Context, projectID string) (int, error) {
	tasks, err := g.w.ListTasks(ctx, projectID, Filter{})
	if err != nil {
		return 0, fmt.Errorf("list tasks: %w", err)
	}
	progress := ProjectProgress(tasks)
	if err := g.w.SetProjectProgress(ctx, projectID, progress, g.timestamp()); err != nil {
		return 0, fmt.Errorf("store progress: %w", err)
	}
	return progress, nil
}
