package task

import (
	"context"
	"fmt"
)

// propagate walks dependents breadth-first from a newly completed task and
// moves every BLOCKED task whose dependencies are now all COMPLETED back to
// PENDING. Any failure aborts the walk; the caller's unit of work then rolls
// back everything, including the triggering transition.
func (g *Graph) propagate(ctx context.Context, completedID string) ([]string, error) {
	unblocked := []string{}
	visited := map[string]bool{completedID: true}
	queue := []string{completedID}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		dependents, err := g.w.ListDependents(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("cascade: list dependents of %s: %w", id, err)
		}

		for i := range dependents {
			d := &dependents[i]
			if visited[d.ID] {
				continue
			}
			visited[d.ID] = true

			if d.Status != StatusBlocked {
				continue
			}
			deps, err := g.w.ListDependencies(ctx, d.ID)
			if err != nil {
				return nil, fmt.Errorf("cascade: list dependencies of %s: %w", d.ID, err)
			}
			if len(incomplete(deps)) > 0 {
				continue
			}

			if err := g.setStatus(ctx, d, StatusPending); err != nil {
				return nil, fmt.Errorf("cascade: unblock %s: %w", d.ID, err)
			}
			unblocked = append(unblocked, d.ID)
			queue = append(queue, d.ID)
		}
	}

	if len(unblocked) > 0 {
		g.logger.Info("dependents unblocked", "completed_task", completedID, "count", len(unblocked), "task_ids", unblocked)
	}
	return unblocked, nil
}
