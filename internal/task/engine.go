package task

import (
	"context"
	"fmt"
)

// TransitionOptions carries the optional field updates of a status change.
type TransitionOptions struct {
	ActualHours   *float64 `json:"actualHours,omitempty" validate:"omitempty,gte=0"`
	AssignedAgent *string  `json:"assignedAgent,omitempty" validate:"omitempty,max=100"`
	// ExpectedVersion, when non-zero, must equal the stored version.
	ExpectedVersion int64 `json:"expectedVersion,omitempty"`
}

// TransitionResult is what a status change reports back to the caller.
type TransitionResult struct {
	Task            *Task    `json:"task"`
	PreviousStatus  Status   `json:"previousStatus"`
	Unblocked       []string `json:"unblocked"`
	ProjectProgress int      `json:"projectProgress"`
}

// Transition moves a task to target. Starting a task requires every
// dependency to be COMPLETED; completing one cascades to its dependents and
// every transition refreshes the project's progress.
func (g *Graph) Transition(ctx context.Context, id string, target Status, opts TransitionOptions) (*TransitionResult, error) {
	if !target.IsValid() {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", target)}
	}
	if err := validateStruct(opts); err != nil {
		return nil, err
	}

	t, err := g.w.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if opts.ExpectedVersion != 0 && opts.ExpectedVersion != t.Version {
		return nil, &ConflictError{TaskID: id, Expected: opts.ExpectedVersion, Actual: t.Version}
	}

	if target == StatusInProgress {
		deps, err := g.w.ListDependencies(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("list dependencies: %w", err)
		}
		if blocking := incomplete(deps); len(blocking) > 0 {
			return nil, &DependencyNotSatisfiedError{TaskID: id, Blocking: refs(blocking)}
		}
	}

	previous := t.Status
	if opts.AssignedAgent != nil {
		t.AssignedAgent = *opts.AssignedAgent
	}
	if opts.ActualHours != nil {
		t.ActualHours = floatPtr(*opts.ActualHours)
	}

	now := g.timestamp()
	switch target {
	case StatusInProgress:
		if t.StartedAt == nil {
			t.StartedAt = timePtr(now)
		}
	case StatusCompleted:
		if t.CompletedAt == nil {
			t.CompletedAt = timePtr(now)
		}
		if opts.ActualHours == nil {
			t.ActualHours = defaultActualHours(t)
		}
	}
	if target != StatusCompleted {
		t.CompletedAt = nil
	}
	t.Status = target
	t.UpdatedAt = now

	if err := g.w.UpdateTask(ctx, t); err != nil {
		return nil, err
	}

	unblocked := []string{}
	if target == StatusCompleted {
		unblocked, err = g.propagate(ctx, t.ID)
		if err != nil {
			return nil, err
		}
	}

	progress, err := g.RefreshProgress(ctx, t.ProjectID)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("task transitioned", "task_id", t.ID, "from", previous, "to", target, "unblocked", len(unblocked))
	return &TransitionResult{
		Task:            t,
		PreviousStatus:  previous,
		Unblocked:       unblocked,
		ProjectProgress: progress,
	}, nil
}

// setStatus is the internal, non-validating setter used by the cascade.
func (g *Graph) setStatus(ctx context.Context, t *Task, s Status) error {
	t.Status = s
	if s != StatusCompleted {
		t.CompletedAt = nil
	}
	t.UpdatedAt = g.timestamp()
	return g.w.UpdateTask(ctx, t)
}

// defaultActualHours is the larger of the recorded and estimated hours.
func defaultActualHours(t *Task) *float64 {
	switch {
	case t.ActualHours == nil && t.EstimatedHours == nil:
		return nil
	case t.ActualHours == nil:
		return floatPtr(*t.EstimatedHours)
	case t.EstimatedHours == nil:
		return t.ActualHours
	}
	return floatPtr(max(*t.ActualHours, *t.EstimatedHours))
}

// incomplete returns the tasks that are not COMPLETED.
func incomplete(tasks []Task) []Task {
	var out []Task
	for _, t := range tasks {
		if t.Status != StatusCompleted {
			out = append(out, t)
		}
	}
	return out
}
