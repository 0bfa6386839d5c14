package task

import (
	"context"
	"fmt"
	"math"
	"time"
)

// StatusView describes what a task is waiting on and what it can do next.
type StatusView struct {
	TaskID        string     `json:"taskId"`
	Status        Status     `json:"status"`
	IsBlocked     bool       `json:"isBlocked"`
	CanStart      bool       `json:"canStart"`
	CanComplete   bool       `json:"canComplete"`
	BlockedBy     []TaskRef  `json:"blockedBy"`
	BlocksCount   int        `json:"blocksCount"`
	TimeSpent     float64    `json:"timeSpent"`
	TimeRemaining float64    `json:"timeRemaining"`
	DurationDays  *int       `json:"durationDays,omitempty"`
	StartedAt     *time.Time `json:"startedAt,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

// BuildStatusView reads a task with its neighbours and derives its status view.
func BuildStatusView(ctx context.Context, r Reader, id string) (*StatusView, error) {
	t, err := r.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	deps, err := r.ListDependencies(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list dependencies: %w", err)
	}
	dependents, err := r.ListDependents(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list dependents: %w", err)
	}
	return NewStatusView(*t, deps, dependents), nil
}

// NewStatusView is the pure part of BuildStatusView.
func NewStatusView(t Task, deps, dependents []Task) *StatusView {
	blocking := incomplete(deps)
	v := &StatusView{
		TaskID:      t.ID,
		Status:      t.Status,
		IsBlocked:   len(blocking) > 0,
		BlockedBy:   refs(blocking),
		BlocksCount: countStatus(dependents, StatusBlocked),
		StartedAt:   t.StartedAt,
		CompletedAt: t.CompletedAt,
	}
	v.CanStart = !v.IsBlocked && t.Status == StatusPending
	v.CanComplete = t.Status == StatusInProgress

	if t.ActualHours != nil {
		v.TimeSpent = *t.ActualHours
	}
	estimated := 0.0
	if t.EstimatedHours != nil {
		estimated = *t.EstimatedHours
	}
	// Negative once a task overruns its estimate.
	v.TimeRemaining = estimated - v.TimeSpent
	if t.StartedAt != nil && t.CompletedAt != nil {
		days := int(math.Ceil(t.CompletedAt.Sub(*t.StartedAt).Hours() / 24))
		v.DurationDays = &days
	}
	return v
}

// TaskDetail is a task together with its computed completion and neighbours.
type TaskDetail struct {
	Task
	Completion   int       `json:"completion"`
	Dependencies []TaskRef `json:"dependencies"`
	Dependents   []TaskRef `json:"dependents"`
	Subtasks     []TaskRef `json:"subtasks"`
}

func BuildTaskDetail(ctx context.Context, r Reader, id string) (*TaskDetail, error) {
	t, err := r.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	deps, err := r.ListDependencies(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list dependencies: %w", err)
	}
	dependents, err := r.ListDependents(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list dependents: %w", err)
	}
	subtasks, err := r.ListSubtasks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}
	return &TaskDetail{
		Task:         *t,
		Completion:   TaskCompletion(*t, subtasks),
		Dependencies: refs(deps),
		Dependents:   refs(dependents),
		Subtasks:     refs(subtasks),
	}, nil
}

// ProjectSummary is the project dashboard.
type ProjectSummary struct {
	Project      Project   `json:"project"`
	Progress     int       `json:"progress"`
	TaskStats    TaskStats `json:"taskStats"`
	BlockedTasks []Task    `json:"blockedTasks"`
	CriticalPath []Task    `json:"criticalPath"`
}

func BuildSummary(ctx context.Context, r Reader, projectID string) (*ProjectSummary, error) {
	p, err := r.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := r.ListTasks(ctx, projectID, Filter{})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	edges, err := r.ListEdges(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	return &ProjectSummary{
		Project:      *p,
		Progress:     ProjectProgress(tasks),
		TaskStats:    ComputeStats(tasks),
		BlockedTasks: BlockedTasks(tasks, edges),
		CriticalPath: CriticalPath(tasks),
	}, nil
}
