package task

import (
	"math"
	"sort"
)

// TaskCompletion is the completion percent of one task. A task with subtasks
// reports the share of completed subtasks; a leaf reports 100, 50 or 0 for
// COMPLETED, IN_PROGRESS and anything else.
func TaskCompletion(t Task, subtasks []Task) int {
	if len(subtasks) > 0 {
		return percent(countStatus(subtasks, StatusCompleted), len(subtasks))
	}
	switch t.Status {
	case StatusCompleted:
		return 100
	case StatusInProgress:
		return 50
	}
	return 0
}

// ProjectProgress is the share of COMPLETED tasks, 0 for an empty project.
func ProjectProgress(tasks []Task) int {
	return percent(countStatus(tasks, StatusCompleted), len(tasks))
}

// BlockedTasks returns the tasks with at least one dependency that is not
// COMPLETED, in input order.
func BlockedTasks(tasks []Task, edges []Edge) []Task {
	status := make(map[string]Status, len(tasks))
	for _, t := range tasks {
		status[t.ID] = t.Status
	}
	blocked := make(map[string]bool)
	for _, e := range edges {
		if s, ok := status[e.DependsOnID]; ok && s != StatusCompleted {
			blocked[e.TaskID] = true
		}
	}

	out := []Task{}
	for _, t := range tasks {
		if blocked[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

// CriticalPath returns CRITICAL then HIGH priority tasks, each group in
// creation order. tasks must already be in creation order.
func CriticalPath(tasks []Task) []Task {
	out := []Task{}
	for _, t := range tasks {
		if t.Priority == PriorityCritical || t.Priority == PriorityHigh {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Rank() > out[j].Priority.Rank()
	})
	return out
}

// TaskStats is the analytics block of task listings and project summaries.
type TaskStats struct {
	Total          int              `json:"total"`
	ByStatus       map[Status]int   `json:"byStatus"`
	ByPriority     map[Priority]int `json:"byPriority"`
	ByAgent        map[string]int   `json:"byAgent"`
	EstimatedHours float64          `json:"estimatedHours"`
	ActualHours    float64          `json:"actualHours"`
}

// ComputeStats counts tasks per status, priority and agent. Every known
// status, priority and agent label is present even when its count is 0.
func ComputeStats(tasks []Task) TaskStats {
	stats := TaskStats{
		Total:      len(tasks),
		ByStatus:   make(map[Status]int),
		ByPriority: make(map[Priority]int),
		ByAgent: map[string]int{
			AgentDeveloper:  0,
			AgentAuditor:    0,
			AgentUser:       0,
			AgentUnassigned: 0,
		},
	}
	for _, s := range ValidStatuses() {
		stats.ByStatus[s] = 0
	}
	for _, p := range ValidPriorities() {
		stats.ByPriority[p] = 0
	}

	for _, t := range tasks {
		stats.ByStatus[t.Status]++
		stats.ByPriority[t.Priority]++
		agent := t.AssignedAgent
		if agent == "" {
			agent = AgentUnassigned
		}
		stats.ByAgent[agent]++
		if t.EstimatedHours != nil {
			stats.EstimatedHours += *t.EstimatedHours
		}
		if t.ActualHours != nil {
			stats.ActualHours += *t.ActualHours
		}
	}
	return stats
}

func countStatus(tasks []Task, s Status) int {
	n := 0
	for _, t := range tasks {
		if t.Status == s {
			n++
		}
	}
	return n
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}
