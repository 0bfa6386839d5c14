package roadmap

import (
	"math"

	"github.com/josephgoksu/taskgraph/internal/task"
)

// PhaseView is a top-level task together with its subtasks.
type PhaseView struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description,omitempty"`
	Status         task.Status `json:"status"`
	Completion     int         `json:"completion"`
	EstimatedHours *float64    `json:"estimatedHours,omitempty"`
	Tasks          []task.Task `json:"tasks"`
}

// View is a project's roadmap as derived from its current tasks.
type View struct {
	Phases            []PhaseView `json:"phases"`
	OverallCompletion int         `json:"overallCompletion"`
	TotalTasks        int         `json:"totalTasks"`
	CompletedTasks    int         `json:"completedTasks"`
	BlueprintVersion  int         `json:"blueprintVersion,omitempty"`
}

// BuildView groups tasks into phases. A phase is any top-level task that owns
// at least one subtask; tasks must be in creation order.
func BuildView(tasks []task.Task) View {
	children := make(map[string][]task.Task)
	for _, t := range tasks {
		if t.ParentTaskID != "" {
			children[t.ParentTaskID] = append(children[t.ParentTaskID], t)
		}
	}

	v := View{Phases: []PhaseView{}, TotalTasks: len(tasks)}
	sum := 0
	for _, t := range tasks {
		if t.Status == task.StatusCompleted {
			v.CompletedTasks++
		}
		subs := children[t.ID]
		if t.ParentTaskID != "" || len(subs) == 0 {
			continue
		}
		pv := PhaseView{
			ID:             t.ID,
			Name:           t.Name,
			Description:    t.Description,
			Status:         t.Status,
			Completion:     task.TaskCompletion(t, subs),
			EstimatedHours: t.EstimatedHours,
			Tasks:          subs,
		}
		sum += pv.Completion
		v.Phases = append(v.Phases, pv)
	}
	if len(v.Phases) > 0 {
		v.OverallCompletion = int(math.Round(float64(sum) / float64(len(v.Phases))))
	}
	return v
}
