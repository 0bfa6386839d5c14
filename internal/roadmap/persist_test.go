package roadmap_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josephgoksu/taskgraph/internal/memory"
	"github.com/josephgoksu/taskgraph/internal/roadmap"
	"github.com/josephgoksu/taskgraph/internal/task"
)

func newProject(t *testing.T) (*memory.SQLiteStore, string) {
	t.Helper()
	store, err := memory.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	var projectID string
	require.NoError(t, store.Atomic(context.Background(), func(w task.Writer) error {
		p, err := task.NewGraph(w).CreateProject(context.Background(), "Roadmap", "")
		if err != nil {
			return err
		}
		projectID = p.ID
		return nil
	}))
	return store, projectID
}

func TestApply_APIProject(t *testing.T) {
	ctx := context.Background()
	store, projectID := newProject(t)
	plan := roadmap.Synthesize(roadmap.Blueprint{ProjectType: "api", Timeline: "2-3 months"})

	var res *roadmap.Result
	require.NoError(t, store.Atomic(ctx, func(w task.Writer) error {
		var err error
		res, err = roadmap.Apply(ctx, task.NewGraph(w), projectID, plan)
		return err
	}))

	require.Len(t, res.Phases, 4)
	assert.Equal(t, plan.TaskCount(), res.TasksCreated)
	require.Len(t, res.Edges, 3)
	for i, e := range res.Edges {
		assert.Equal(t, res.Phases[i+1].Phase.ID, e.TaskID)
		assert.Equal(t, res.Phases[i].Phase.ID, e.DependsOnID)
	}

	edges, err := store.ListEdges(ctx, projectID)
	require.NoError(t, err)
	assert.Len(t, edges, 3)

	first := res.Phases[0].Phase
	assert.Equal(t, "Phase 1: Foundation & Setup", first.Name)
	assert.Equal(t, task.PriorityHigh, first.Priority)
	assert.Equal(t, task.StatusPending, first.Status)
	require.NotNil(t, first.EstimatedHours)
	assert.Equal(t, 40.0, *first.EstimatedHours)

	for _, ph := range res.Phases {
		for _, sub := range ph.Subtasks {
			assert.Equal(t, ph.Phase.ID, sub.ParentTaskID)
			assert.Equal(t, ph.Phase.Priority, sub.Priority)
			assert.NotContains(t, sub.Name, "Frontend")
		}
	}

	tasks, err := store.ListTasks(ctx, projectID, task.Filter{})
	require.NoError(t, err)
	assert.Len(t, tasks, res.TasksCreated)

	// Phase 2 cannot start before phase 1 is done.
	err = store.Atomic(ctx, func(w task.Writer) error {
		_, err := task.NewGraph(w).Transition(ctx, res.Phases[1].Phase.ID, task.StatusInProgress, task.TransitionOptions{})
		return err
	})
	assert.ErrorIs(t, err, task.ErrDependencyNotSatisfied)
}

func TestApply_IsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store, projectID := newProject(t)
	plan := roadmap.Synthesize(roadmap.Blueprint{})

	boom := errors.New("disk full")
	err := store.Atomic(ctx, func(w task.Writer) error {
		if _, err := roadmap.Apply(ctx, task.NewGraph(w), projectID, plan); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	tasks, err := store.ListTasks(ctx, projectID, task.Filter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestApply_UnknownProject(t *testing.T) {
	ctx := context.Background()
	store, _ := newProject(t)
	err := store.Atomic(ctx, func(w task.Writer) error {
		_, err := roadmap.Apply(ctx, task.NewGraph(w), "proj-missing", roadmap.Synthesize(roadmap.Blueprint{}))
		return err
	})
	assert.ErrorIs(t, err, task.ErrValidation)
}

func TestBuildView(t *testing.T) {
	ctx := context.Background()
	store, projectID := newProject(t)

	var res *roadmap.Result
	require.NoError(t, store.Atomic(ctx, func(w task.Writer) error {
		g := task.NewGraph(w)
		var err error
		if res, err = roadmap.Apply(ctx, g, projectID, roadmap.Synthesize(roadmap.Blueprint{})); err != nil {
			return err
		}
		// A loose top-level task without subtasks is not a phase.
		_, err = g.CreateTask(ctx, task.NewTask{ProjectID: projectID, Name: "Loose end"})
		return err
	}))

	require.NoError(t, store.Atomic(ctx, func(w task.Writer) error {
		g := task.NewGraph(w)
		for _, sub := range res.Phases[0].Subtasks[:2] {
			if _, err := g.Transition(ctx, sub.ID, task.StatusCompleted, task.TransitionOptions{}); err != nil {
				return err
			}
		}
		return nil
	}))

	tasks, err := store.ListTasks(ctx, projectID, task.Filter{})
	require.NoError(t, err)
	view := roadmap.BuildView(tasks)

	require.Len(t, view.Phases, 4)
	assert.Equal(t, res.Phases[0].Phase.ID, view.Phases[0].ID)
	assert.Equal(t, 40, view.Phases[0].Completion)
	assert.Equal(t, 0, view.Phases[1].Completion)
	assert.Equal(t, 10, view.OverallCompletion)
	assert.Equal(t, res.TasksCreated+1, view.TotalTasks)
	assert.Equal(t, 2, view.CompletedTasks)
	assert.Len(t, view.Phases[0].Tasks, 5)
}

func TestBuildView_Empty(t *testing.T) {
	view := roadmap.BuildView(nil)
	assert.Empty(t, view.Phases)
	assert.Equal(t, 0, view.OverallCompletion)
}
