// Package cpm schedules a project's dependency graph with the critical path
// method.
package cpm

import (
	"fmt"
	"math"
	"sort"

	"github.com/josephgoksu/taskgraph/internal/task"
)

// DefaultDuration is used for tasks without an estimate, in hours.
const DefaultDuration = 1.0

const epsilon = 1e-9

// Duration is a task's estimated hours, or DefaultDuration when unset or zero.
func Duration(t task.Task) float64 {
	if t.EstimatedHours != nil && *t.EstimatedHours > 0 {
		return *t.EstimatedHours
	}
	return DefaultDuration
}

type graph struct {
	index map[string]int
	succ  [][]int // dependency -> dependents
	pred  [][]int // dependent -> dependencies
}

func build(tasks []task.Task, edges []task.Edge) graph {
	g := graph{
		index: make(map[string]int, len(tasks)),
		succ:  make([][]int, len(tasks)),
		pred:  make([][]int, len(tasks)),
	}
	for i, t := range tasks {
		g.index[t.ID] = i
	}
	for _, e := range edges {
		from, okFrom := g.index[e.DependsOnID]
		to, okTo := g.index[e.TaskID]
		if !okFrom || !okTo {
			continue
		}
		g.succ[from] = append(g.succ[from], to)
		g.pred[to] = append(g.pred[to], from)
	}
	return g
}

// Analyze runs the forward and backward passes over tasks (in creation
// order) and edges. Edges that reference unknown tasks are ignored.
func Analyze(tasks []task.Task, edges []task.Edge) (*Schedule, error) {
	g := build(tasks, edges)
	order, err := topoSort(g, len(tasks))
	if err != nil {
		return nil, err
	}

	n := len(tasks)
	dur := make([]float64, n)
	for i, t := range tasks {
		dur[i] = Duration(t)
	}
	es, ef := make([]float64, n), make([]float64, n)
	ls, lf := make([]float64, n), make([]float64, n)

	// Forward pass: ES = max(EF of predecessors)
	total := 0.0
	for _, i := range order {
		for _, p := range g.pred[i] {
			es[i] = math.Max(es[i], ef[p])
		}
		ef[i] = es[i] + dur[i]
		total = math.Max(total, ef[i])
	}

	// Backward pass: LF = min(LS of successors), or the project end for sinks
	for k := len(order) - 1; k >= 0; k-- {
		i := order[k]
		lf[i] = total
		for _, s := range g.succ[i] {
			lf[i] = math.Min(lf[i], ls[s])
		}
		ls[i] = lf[i] - dur[i]
	}

	sched := &Schedule{
		Tasks:        make([]TaskSchedule, 0, n),
		CriticalPath: []string{},
		TotalHours:   total,
	}
	for _, i := range order {
		slack := ls[i] - es[i]
		if math.Abs(slack) < epsilon {
			slack = 0
		}
		ts := TaskSchedule{
			TaskID:   tasks[i].ID,
			Name:     tasks[i].Name,
			Duration: dur[i],
			ES:       es[i],
			EF:       ef[i],
			LS:       ls[i],
			LF:       lf[i],
			Slack:    slack,
			Critical: slack == 0,
		}
		sched.Tasks = append(sched.Tasks, ts)
		if ts.Critical {
			sched.CriticalPath = append(sched.CriticalPath, ts.TaskID)
		}
	}
	sched.Waves = computeWaves(sched)
	return sched, nil
}

// topoSort is Kahn's algorithm. Ready tasks are released in input order so
// the result is deterministic.
func topoSort(g graph, n int) ([]int, error) {
	inDegree := make([]int, n)
	for i := range n {
		inDegree[i] = len(g.pred[i])
	}

	var queue []int
	for i := range n {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	order := make([]int, 0, n)
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		var ready []int
		for _, s := range g.succ[node] {
			inDegree[s]--
			if inDegree[s] == 0 {
				ready = append(ready, s)
			}
		}
		sort.Ints(ready)
		queue = append(queue, ready...)
	}

	if len(order) != n {
		return nil, fmt.Errorf("schedule: %w (%d of %d tasks sorted)", task.ErrCyclicDependency, len(order), n)
	}
	return order, nil
}

// computeWaves groups tasks by earliest start, critical tasks first within a wave.
func computeWaves(s *Schedule) []Wave {
	groups := make(map[float64][]int)
	for i, ts := range s.Tasks {
		groups[ts.ES] = append(groups[ts.ES], i)
	}
	starts := make([]float64, 0, len(groups))
	for es := range groups {
		starts = append(starts, es)
	}
	sort.Float64s(starts)

	waves := make([]Wave, len(starts))
	for w, start := range starts {
		members := groups[start]
		sort.SliceStable(members, func(a, b int) bool {
			return s.Tasks[members[a]].Critical && !s.Tasks[members[b]].Critical
		})

		wave := Wave{Index: w, Start: start, TaskIDs: make([]string, 0, len(members))}
		for _, i := range members {
			s.Tasks[i].Wave = w
			wave.TaskIDs = append(wave.TaskIDs, s.Tasks[i].TaskID)
			if s.Tasks[i].Critical {
				wave.Critical = true
			}
		}
		waves[w] = wave
	}
	return waves
}
