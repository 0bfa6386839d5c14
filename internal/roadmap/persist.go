package roadmap

import (
	"context"
	"fmt"

	"github.com/josephgoksu/taskgraph/internal/task"
)

// CreatedPhase is a stored phase task with its children.
type CreatedPhase struct {
	Phase    task.Task   `json:"phase"`
	Subtasks []task.Task `json:"subtasks"`
}

// Result reports what Apply stored.
type Result struct {
	Phases       []CreatedPhase `json:"phases"`
	TasksCreated int            `json:"tasksCreated"`
	Edges        []task.Edge    `json:"edges"`
}

// Apply writes plan into projectID through g. Each phase task depends on the
// previous one. Run it inside Repository.Atomic so a failure leaves no
// partial roadmap behind.
func Apply(ctx context.Context, g *task.Graph, projectID string, plan Plan) (*Result, error) {
	res := &Result{Phases: make([]CreatedPhase, 0, len(plan.Phases))}
	var previous *task.Task

	for _, ph := range plan.Phases {
		hours := ph.Hours()
		spec := task.NewTask{
			ProjectID:      projectID,
			Name:           ph.Title(),
			Description:    ph.Description(),
			Priority:       ph.Priority(),
			Complexity:     ph.PhaseComplexity(),
			EstimatedHours: &hours,
			AssignedAgent:  task.AgentDeveloper,
		}
		if previous != nil {
			spec.Dependencies = []string{previous.ID}
		}
		parent, err := g.CreateTask(ctx, spec)
		if err != nil {
			return nil, fmt.Errorf("create phase %d: %w", ph.Number, err)
		}
		if previous != nil {
			res.Edges = append(res.Edges, task.Edge{TaskID: parent.ID, DependsOnID: previous.ID, CreatedAt: parent.CreatedAt})
		}

		created := CreatedPhase{Phase: *parent, Subtasks: make([]task.Task, 0, len(ph.Tasks))}
		for _, name := range ph.Tasks {
			childHours := ph.TaskHours()
			child, err := g.CreateTask(ctx, task.NewTask{
				ProjectID:      projectID,
				Name:           name,
				Description:    fmt.Sprintf("Part of %s phase", ph.Name),
				Priority:       ph.Priority(),
				Complexity:     ph.TaskComplexity(),
				EstimatedHours: &childHours,
				ParentTaskID:   parent.ID,
				AssignedAgent:  AgentFor(name),
			})
			if err != nil {
				return nil, fmt.Errorf("create task %q in phase %d: %w", name, ph.Number, err)
			}
			created.Subtasks = append(created.Subtasks, *child)
		}

		res.Phases = append(res.Phases, created)
		res.TasksCreated += 1 + len(created.Subtasks)
		previous = parent
	}
	return res, nil
}
