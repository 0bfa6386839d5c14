package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/josephgoksu/taskgraph/internal/cpm"
	"github.com/josephgoksu/taskgraph/internal/events"
	"github.com/josephgoksu/taskgraph/internal/roadmap"
	"github.com/josephgoksu/taskgraph/internal/task"
	"github.com/josephgoksu/taskgraph/internal/telemetry"
	"github.com/josephgoksu/taskgraph/internal/util"
)

// SynthesisResult is what a blueprint submission produced.
type SynthesisResult struct {
	Plan             roadmap.Plan           `json:"plan"`
	Phases           []roadmap.CreatedPhase `json:"phases"`
	TasksCreated     int                    `json:"tasksCreated"`
	BlueprintVersion int                    `json:"blueprintVersion"`
}

// ProjectApp provides project-level operations and views.
type ProjectApp struct {
	ctx *Context
}

func NewProjectApp(ctx *Context) *ProjectApp {
	return &ProjectApp{ctx: ctx}
}

// ResolveID expands a project id prefix.
func (a *ProjectApp) ResolveID(ctx context.Context, idOrPrefix string) (string, error) {
	return util.ResolveProjectID(ctx, a.ctx.Repo, idOrPrefix)
}

func (a *ProjectApp) Create(ctx context.Context, name, description string) (p *task.Project, err error) {
	started := time.Now()
	defer func() { a.ctx.finish("create_project", started, err) }()

	err = a.ctx.Repo.Atomic(ctx, func(w task.Writer) error {
		var err error
		p, err = task.NewGraph(w, task.WithClock(a.ctx.Now), task.WithLogger(a.ctx.Logger)).CreateProject(ctx, name, description)
		return err
	})
	if err != nil {
		return nil, err
	}
	a.ctx.publish(ctx, events.New(events.ProjectCreated, p.ID, "", map[string]any{"name": p.Name}))
	a.ctx.Telemetry.Track(telemetry.EventProjectCreated, nil)
	return p, nil
}

func (a *ProjectApp) List(ctx context.Context) ([]task.Project, error) {
	return a.ctx.Repo.ListProjects(ctx)
}

func (a *ProjectApp) Get(ctx context.Context, id string) (*task.Project, error) {
	return a.ctx.Repo.GetProject(ctx, id)
}

// Summary returns progress, analytics, blocked tasks and the
// priority-ordered critical path.
func (a *ProjectApp) Summary(ctx context.Context, id string) (*task.ProjectSummary, error) {
	var summary *task.ProjectSummary
	err := a.ctx.Repo.View(ctx, func(r task.Reader) error {
		var err error
		summary, err = task.BuildSummary(ctx, r, id)
		return err
	})
	return summary, err
}

// SynthesizeRoadmap turns b into phase and child tasks. The tasks, their
// edges and the stored blueprint version commit together or not at all.
func (a *ProjectApp) SynthesizeRoadmap(ctx context.Context, projectID string, b roadmap.Blueprint) (res *SynthesisResult, err error) {
	started := time.Now()
	defer func() { a.ctx.finish("synthesize_roadmap", started, err, "project_id", projectID) }()

	if err := b.Validate(); err != nil {
		return nil, err
	}
	content, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encode blueprint: %w", err)
	}
	plan := roadmap.Synthesize(b)

	res = &SynthesisResult{Plan: plan}
	err = a.ctx.mutateTx(ctx, projectID, func(g *task.Graph, w task.Writer) error {
		// CreateTask reports a missing project as a validation error on
		// projectId; check first so callers get NotFound.
		if _, err := w.GetProject(ctx, projectID); err != nil {
			return err
		}
		applied, err := roadmap.Apply(ctx, g, projectID, plan)
		if err != nil {
			return err
		}
		res.Phases, res.TasksCreated = applied.Phases, applied.TasksCreated
		res.BlueprintVersion, err = w.SaveBlueprint(ctx, projectID, content, a.ctx.Now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}

	a.ctx.publish(ctx, events.New(events.RoadmapSynthesized, projectID, "", map[string]any{
		"tasksCreated": res.TasksCreated, "blueprintVersion": res.BlueprintVersion,
	}))
	a.ctx.Telemetry.Track(telemetry.EventRoadmapSynthesized, telemetry.Properties{
		"project_type": plan.ProjectType, "weeks": plan.EstimatedWeeks, "tasks": res.TasksCreated,
	})
	return res, nil
}

// Roadmap derives the phased view from the project's current tasks.
func (a *ProjectApp) Roadmap(ctx context.Context, projectID string) (*roadmap.View, error) {
	var (
		tasks   []task.Task
		version int
	)
	err := a.ctx.Repo.View(ctx, func(r task.Reader) error {
		if _, err := r.GetProject(ctx, projectID); err != nil {
			return err
		}
		var err error
		if tasks, err = r.ListTasks(ctx, projectID, task.Filter{}); err != nil {
			return err
		}
		_, version, err = r.LatestBlueprint(ctx, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	view := roadmap.BuildView(tasks)
	view.BlueprintVersion = version
	return &view, nil
}

// Blueprint returns the latest stored blueprint, or nil if none was submitted.
func (a *ProjectApp) Blueprint(ctx context.Context, projectID string) (*roadmap.Blueprint, int, error) {
	content, version, err := a.ctx.Repo.LatestBlueprint(ctx, projectID)
	if err != nil || content == nil {
		return nil, 0, err
	}
	b, err := roadmap.ParseBlueprint(content, roadmap.FormatJSON)
	if err != nil {
		return nil, 0, fmt.Errorf("decode stored blueprint v%d: %w", version, err)
	}
	return b, version, nil
}

// Schedule runs the critical path method over the project's non-cancelled
// tasks, using estimated hours as durations.
func (a *ProjectApp) Schedule(ctx context.Context, projectID string) (*cpm.Schedule, error) {
	var (
		tasks []task.Task
		edges []task.Edge
	)
	err := a.ctx.Repo.View(ctx, func(r task.Reader) error {
		if _, err := r.GetProject(ctx, projectID); err != nil {
			return err
		}
		var err error
		if tasks, err = r.ListTasks(ctx, projectID, task.Filter{}); err != nil {
			return err
		}
		edges, err = r.ListEdges(ctx, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := task.VerifyDAG(edges); err != nil {
		return nil, err
	}

	active := tasks[:0:0]
	for _, t := range tasks {
		if t.Status != task.StatusCancelled {
			active = append(active, t)
		}
	}
	return cpm.Analyze(active, edges)
}
