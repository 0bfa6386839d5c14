package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/josephgoksu/taskgraph/internal/cpm"
	"github.com/josephgoksu/taskgraph/internal/roadmap"
	"github.com/josephgoksu/taskgraph/internal/task"
	"github.com/josephgoksu/taskgraph/internal/util"
)

const nameWidth = 48

func hours(h *float64) string {
	if h == nil {
		return "-"
	}
	return strconv.FormatFloat(*h, 'f', -1, 64) + "h"
}

// RenderProjects prints one row per project.
func RenderProjects(w io.Writer, projects []task.Project) {
	if len(projects) == 0 {
		fprintln(w, StyleSubtle.Render(" No projects yet. Create one with `taskgraph project create <name>`."))
		return
	}
	tbl := &Table{Headers: []string{"ID", "Name", "Progress", "Updated"}, MaxWidth: nameWidth}
	for _, p := range projects {
		tbl.Rows = append(tbl.Rows, []string{p.ID, p.Name, fmt.Sprintf("%d%%", p.Progress), p.UpdatedAt.Format("2006-01-02 15:04")})
	}
	fprintf(w, "%s", tbl.Render())
}

// RenderTaskList prints tasks as a table followed by a one-line breakdown.
func RenderTaskList(w io.Writer, tasks []task.Task, stats task.TaskStats) {
	if len(tasks) == 0 {
		fprintln(w, StyleSubtle.Render(" No tasks match."))
		return
	}
	tbl := &Table{
		Headers:  []string{"", "ID", "Name", "Status", "Priority", "Est", "Agent"},
		MaxWidth: nameWidth,
	}
	for _, t := range tasks {
		name := t.Name
		if t.ParentTaskID != "" {
			name = "  └ " + name
		}
		tbl.Rows = append(tbl.Rows, []string{
			StatusIcon(t.Status), util.ShortID(t.ID, 13), name, Label(string(t.Status)),
			Label(string(t.Priority)), hours(t.EstimatedHours), t.AssignedAgent,
		})
	}
	tbl.CellStyle = func(row, col int) lipgloss.Style {
		t := tasks[row]
		switch col {
		case 0, 3:
			return StatusStyle(t.Status)
		case 4:
			return PriorityStyle(t.Priority)
		}
		return StyleText
	}
	fprintf(w, "%s", tbl.Render())
	fprintln(w, StyleSubtle.Render(statsLine(stats)))
}

func statsLine(s task.TaskStats) string {
	parts := make([]string, 0, len(task.ValidStatuses()))
	for _, st := range task.ValidStatuses() {
		if n := s.ByStatus[st]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", Label(string(st)), n))
		}
	}
	line := fmt.Sprintf(" %d tasks", s.Total)
	if len(parts) > 0 {
		line += " • " + strings.Join(parts, " • ")
	}
	if s.EstimatedHours > 0 || s.ActualHours > 0 {
		line += fmt.Sprintf(" • %.1fh estimated, %.1fh actual", s.EstimatedHours, s.ActualHours)
	}
	return line
}

// RenderTaskDetail prints a task with its completion and neighbours.
func RenderTaskDetail(w io.Writer, d *task.TaskDetail) {
	fprintln(w, StyleHeader.Render(d.Name))
	fprintf(w, " %s  %s\n", StyleSubtle.Render("ID:"), d.ID)
	fprintf(w, " %s  %s\n", StyleSubtle.Render("Status:"), StatusStyle(d.Status).Render(Label(string(d.Status))))
	fprintf(w, " %s  %s\n", StyleSubtle.Render("Priority:"), PriorityStyle(d.Priority).Render(Label(string(d.Priority))))
	fprintf(w, " %s  %d/5\n", StyleSubtle.Render("Complexity:"), d.Complexity)
	fprintf(w, " %s  %s estimated, %s actual\n", StyleSubtle.Render("Hours:"), hours(d.EstimatedHours), hours(d.ActualHours))
	if d.AssignedAgent != "" {
		fprintf(w, " %s  %s\n", StyleSubtle.Render("Agent:"), d.AssignedAgent)
	}
	fprintf(w, " %s  %s\n", StyleSubtle.Render("Completion:"), ProgressBar(d.Completion, 20))
	if d.Description != "" {
		fprintln(w)
		fprintln(w, " "+d.Description)
	}
	renderRefs(w, "Depends on", d.Dependencies)
	renderRefs(w, "Required by", d.Dependents)
	renderRefs(w, "Subtasks", d.Subtasks)
}

func renderRefs(w io.Writer, title string, refs []task.TaskRef) {
	if len(refs) == 0 {
		return
	}
	fprintln(w)
	fprintln(w, StyleSectionTitle.Render(title))
	for _, r := range refs {
		fprintf(w, " %s %s %s\n", StatusStyle(r.Status).Render(StatusIcon(r.Status)), StyleSubtle.Render(r.ID), r.Name)
	}
}

// RenderStatusView prints what a task waits on and what it can do next.
func RenderStatusView(w io.Writer, v *task.StatusView) {
	fprintf(w, " %s %s\n", StyleSubtle.Render(v.TaskID), StatusStyle(v.Status).Render(Label(string(v.Status))))
	fprintf(w, " can start: %t   can complete: %t   blocks: %d\n", v.CanStart, v.CanComplete, v.BlocksCount)
	fprintf(w, " time spent: %.1fh   remaining: %.1fh", v.TimeSpent, v.TimeRemaining)
	if v.DurationDays != nil {
		fprintf(w, "   took: %d day(s)", *v.DurationDays)
	}
	fprintln(w)
	if v.IsBlocked {
		fprintln(w, StyleWarning.Render(" Waiting on:"))
		for _, r := range v.BlockedBy {
			fprintf(w, "   %s %s (%s)\n", StyleSubtle.Render(r.ID), r.Name, Label(string(r.Status)))
		}
	}
}

// RenderTransition prints the outcome of a status change.
func RenderTransition(w io.Writer, r *task.TransitionResult) {
	fprintf(w, "%s %s: %s → %s\n", StyleSuccess.Render("✓"), r.Task.Name,
		Label(string(r.PreviousStatus)), StatusStyle(r.Task.Status).Render(Label(string(r.Task.Status))))
	if len(r.Unblocked) > 0 {
		fprintf(w, "  unblocked: %s\n", strings.Join(r.Unblocked, ", "))
	}
	fprintf(w, "  project progress: %s\n", ProgressBar(r.ProjectProgress, 20))
}

// RenderSummary prints the project dashboard.
func RenderSummary(w io.Writer, s *task.ProjectSummary) {
	fprintln(w, StyleHeader.Render(s.Project.Name))
	fprintf(w, " %s\n\n", ProgressBar(s.Progress, 30))
	fprintln(w, StyleSubtle.Render(statsLine(s.TaskStats)))

	agents := make([]string, 0, len(s.TaskStats.ByAgent))
	for _, a := range []string{task.AgentDeveloper, task.AgentAuditor, task.AgentUser, task.AgentUnassigned} {
		agents = append(agents, fmt.Sprintf("%s %d", a, s.TaskStats.ByAgent[a]))
	}
	fprintln(w, StyleSubtle.Render(" by agent: "+strings.Join(agents, " • ")))

	if len(s.BlockedTasks) > 0 {
		fprintln(w)
		fprintln(w, StyleSectionTitle.Render("Blocked"))
		for _, t := range s.BlockedTasks {
			fprintf(w, " %s %s %s\n", StatusStyle(t.Status).Render(StatusIcon(t.Status)), StyleSubtle.Render(t.ID), t.Name)
		}
	}
	if len(s.CriticalPath) > 0 {
		fprintln(w)
		fprintln(w, StyleSectionTitle.Render("Critical path"))
		for i, t := range s.CriticalPath {
			fprintf(w, " %2d. %s %s %s\n", i+1, PriorityStyle(t.Priority).Render(Label(string(t.Priority))), StyleSubtle.Render(t.ID), t.Name)
		}
	}
}

// RenderPlan prints a synthesized roadmap before or after it is stored.
func RenderPlan(w io.Writer, p roadmap.Plan) {
	fprintf(w, "%s %s, %d week(s), complexity %.2f\n",
		StyleHeader.Render(p.ProjectName), p.ProjectType, p.EstimatedWeeks, p.Complexity)
	for _, ph := range p.Phases {
		fprintf(w, " %s  %s\n", StyleTitle.Render(ph.Title()), StyleSubtle.Render(ph.Description()))
		for _, name := range ph.Tasks {
			fprintf(w, "   • %s\n", name)
		}
	}
}

// RenderRoadmap prints phases with per-phase completion.
func RenderRoadmap(w io.Writer, v *roadmap.View) {
	if len(v.Phases) == 0 {
		fprintln(w, StyleSubtle.Render(" No phases. Submit a blueprint with `taskgraph roadmap synthesize`."))
		return
	}
	fprintf(w, " Overall %s   %d/%d tasks completed", ProgressBar(v.OverallCompletion, 30), v.CompletedTasks, v.TotalTasks)
	if v.BlueprintVersion > 0 {
		fprintf(w, "   blueprint v%d", v.BlueprintVersion)
	}
	fprintln(w)
	for _, ph := range v.Phases {
		fprintln(w)
		fprintf(w, " %s %s\n", StyleTitle.Render(ph.Name), StyleSubtle.Render(ph.ID))
		fprintf(w, " %s\n", ProgressBar(ph.Completion, 20))
		for _, t := range ph.Tasks {
			fprintf(w, "   %s %s\n", StatusStyle(t.Status).Render(StatusIcon(t.Status)), t.Name)
		}
	}
}

// RenderSchedule prints the CPM schedule grouped by wave.
func RenderSchedule(w io.Writer, s *cpm.Schedule) {
	if len(s.Tasks) == 0 {
		fprintln(w, StyleSubtle.Render(" Nothing to schedule."))
		return
	}
	fprintf(w, " Project duration: %s   critical tasks: %d\n\n",
		StyleTitle.Render(strconv.FormatFloat(s.TotalHours, 'f', -1, 64)+"h"), len(s.CriticalPath))

	tbl := &Table{Headers: []string{"Wave", "ID", "Name", "Dur", "ES", "EF", "Slack"}, MaxWidth: nameWidth}
	var rows []cpm.TaskSchedule
	for _, wave := range s.Waves {
		for _, id := range wave.TaskIDs {
			ts, ok := s.Get(id)
			if !ok {
				continue
			}
			rows = append(rows, ts)
			tbl.Rows = append(tbl.Rows, []string{
				strconv.Itoa(wave.Index), util.ShortID(ts.TaskID, 13), ts.Name,
				fmtHours(ts.Duration), fmtHours(ts.ES), fmtHours(ts.EF), fmtHours(ts.Slack),
			})
		}
	}
	tbl.CellStyle = func(row, _ int) lipgloss.Style {
		if rows[row].Critical {
			return StyleCritical
		}
		return StyleText
	}
	fprintf(w, "%s", tbl.Render())
}

func fmtHours(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
