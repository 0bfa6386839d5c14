package mcp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/josephgoksu/taskgraph/internal/app"
	"github.com/josephgoksu/taskgraph/internal/cpm"
	"github.com/josephgoksu/taskgraph/internal/roadmap"
	"github.com/josephgoksu/taskgraph/internal/task"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Presenters turn app results into compact Markdown for LLM clients. The ui
// package renders the same data for terminals.

var titleCaser = cases.Title(language.English)

// label turns IN_PROGRESS into "In Progress".
func label[T ~string](v T) string {
	return titleCaser.String(strings.ReplaceAll(strings.ToLower(string(v)), "_", " "))
}

func statusIcon(s task.Status) string {
	switch s {
	case task.StatusCompleted:
		return "✅"
	case task.StatusInProgress:
		return "🔄"
	case task.StatusBlocked:
		return "⛔"
	case task.StatusCancelled:
		return "🚫"
	default:
		return "⏳"
	}
}

func hours(h *float64) string {
	if h == nil {
		return "-"
	}
	return strconv.FormatFloat(*h, 'f', -1, 64) + "h"
}

func writeRefs(sb *strings.Builder, title string, refs []task.TaskRef) {
	if len(refs) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n### %s\n", title)
	for _, r := range refs {
		fmt.Fprintf(sb, "- %s `%s` %s (%s)\n", statusIcon(r.Status), r.ID, r.Name, label(r.Status))
	}
}

// FormatTask renders a single task record.
func FormatTask(t *task.Task) string {
	if t == nil {
		return "No task."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s %s\n", statusIcon(t.Status), t.Name)
	fmt.Fprintf(&sb, "**ID**: `%s` | **Status**: %s | **Priority**: %s | **Complexity**: %d/5 | **Version**: %d\n",
		t.ID, label(t.Status), label(t.Priority), t.Complexity, t.Version)
	fmt.Fprintf(&sb, "**Hours**: %s estimated, %s actual", hours(t.EstimatedHours), hours(t.ActualHours))
	if t.AssignedAgent != "" {
		fmt.Fprintf(&sb, " | **Agent**: %s", t.AssignedAgent)
	}
	if t.ParentTaskID != "" {
		fmt.Fprintf(&sb, " | **Parent**: `%s`", t.ParentTaskID)
	}
	sb.WriteString("\n")
	if t.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", t.Description)
	}
	return strings.TrimSpace(sb.String())
}

// FormatTaskDetail renders a task with completion and neighbours.
func FormatTaskDetail(d *task.TaskDetail) string {
	var sb strings.Builder
	sb.WriteString(FormatTask(&d.Task))
	fmt.Fprintf(&sb, "\n**Completion**: %d%%\n", d.Completion)
	writeRefs(&sb, "Depends on", d.Dependencies)
	writeRefs(&sb, "Required by", d.Dependents)
	writeRefs(&sb, "Subtasks", d.Subtasks)
	return strings.TrimSpace(sb.String())
}

// FormatTaskList renders tasks as a Markdown table with a count line.
func FormatTaskList(list *app.TaskList) string {
	if len(list.Tasks) == 0 {
		return "No tasks match."
	}
	var sb strings.Builder
	sb.WriteString("| | ID | Name | Status | Priority | Est | Agent |\n")
	sb.WriteString("|---|---|---|---|---|---|---|\n")
	for _, t := range list.Tasks {
		name := t.Name
		if t.ParentTaskID != "" {
			name = "↳ " + name
		}
		fmt.Fprintf(&sb, "| %s | `%s` | %s | %s | %s | %s | %s |\n",
			statusIcon(t.Status), t.ID, escapeCell(name), label(t.Status), label(t.Priority),
			hours(t.EstimatedHours), t.AssignedAgent)
	}
	fmt.Fprintf(&sb, "\n%s", statsLine(list.Stats))
	return sb.String()
}

func statsLine(s task.TaskStats) string {
	parts := []string{fmt.Sprintf("**%d tasks**", s.Total)}
	for _, st := range task.ValidStatuses() {
		if n := s.ByStatus[st]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", label(st), n))
		}
	}
	if s.EstimatedHours > 0 || s.ActualHours > 0 {
		parts = append(parts, fmt.Sprintf("%.1fh estimated / %.1fh actual", s.EstimatedHours, s.ActualHours))
	}
	return strings.Join(parts, " · ")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// FormatStatusView renders what a task waits on.
func FormatStatusView(v *task.StatusView) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s `%s` is %s\n", statusIcon(v.Status), v.TaskID, label(v.Status))
	fmt.Fprintf(&sb, "- Can start: %t\n- Can complete: %t\n- Blocks %d task(s)\n", v.CanStart, v.CanComplete, v.BlocksCount)
	fmt.Fprintf(&sb, "- Time spent: %.1fh\n- Time remaining: %.1fh\n", v.TimeSpent, v.TimeRemaining)
	if v.DurationDays != nil {
		fmt.Fprintf(&sb, "- Took %d day(s)\n", *v.DurationDays)
	}
	writeRefs(&sb, "Waiting on", v.BlockedBy)
	return strings.TrimSpace(sb.String())
}

// FormatTransition renders the outcome of a status change.
func FormatTransition(r *task.TransitionResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s **%s**: %s → %s\n", statusIcon(r.Task.Status), r.Task.Name, label(r.PreviousStatus), label(r.Task.Status))
	if len(r.Unblocked) > 0 {
		sb.WriteString("\n**Unblocked**:\n")
		for _, id := range r.Unblocked {
			fmt.Fprintf(&sb, "- `%s`\n", id)
		}
	}
	fmt.Fprintf(&sb, "\n**Project progress**: %d%%", r.ProjectProgress)
	return sb.String()
}

func FormatDeleted(ids []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Deleted %d task(s):\n", len(ids))
	for _, id := range ids {
		fmt.Fprintf(&sb, "- `%s`\n", id)
	}
	return strings.TrimSpace(sb.String())
}

func FormatProject(p *task.Project) string {
	s := fmt.Sprintf("## %s\n**ID**: `%s` | **Progress**: %d%%", p.Name, p.ID, p.Progress)
	if p.Description != "" {
		s += "\n\n" + p.Description
	}
	return s
}

func FormatProjects(list []task.Project) string {
	if len(list) == 0 {
		return "No projects yet. Use action=create to add one."
	}
	var sb strings.Builder
	sb.WriteString("| ID | Name | Progress |\n|---|---|---|\n")
	for _, p := range list {
		fmt.Fprintf(&sb, "| `%s` | %s | %d%% |\n", p.ID, escapeCell(p.Name), p.Progress)
	}
	return strings.TrimSpace(sb.String())
}

// FormatSummary renders the project dashboard.
func FormatSummary(s *task.ProjectSummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s (%d%%)\n%s\n", s.Project.Name, s.Progress, statsLine(s.TaskStats))

	agents := make([]string, 0, 4)
	for _, a := range []string{task.AgentDeveloper, task.AgentAuditor, task.AgentUser, task.AgentUnassigned} {
		agents = append(agents, fmt.Sprintf("%s %d", a, s.TaskStats.ByAgent[a]))
	}
	fmt.Fprintf(&sb, "By agent: %s\n", strings.Join(agents, " · "))

	if len(s.BlockedTasks) > 0 {
		sb.WriteString("\n### Blocked\n")
		for _, t := range s.BlockedTasks {
			fmt.Fprintf(&sb, "- `%s` %s\n", t.ID, t.Name)
		}
	}
	if len(s.CriticalPath) > 0 {
		sb.WriteString("\n### Critical path\n")
		for i, t := range s.CriticalPath {
			fmt.Fprintf(&sb, "%d. [%s] `%s` %s\n", i+1, label(t.Priority), t.ID, t.Name)
		}
	}
	return strings.TrimSpace(sb.String())
}

// FormatRoadmap renders phases with their completion.
func FormatRoadmap(v *roadmap.View) string {
	if len(v.Phases) == 0 {
		return "No phases yet. Use action=synthesize with a blueprint."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Roadmap: %d%% (%d/%d tasks)", v.OverallCompletion, v.CompletedTasks, v.TotalTasks)
	if v.BlueprintVersion > 0 {
		fmt.Fprintf(&sb, ", blueprint v%d", v.BlueprintVersion)
	}
	sb.WriteString("\n")
	for _, ph := range v.Phases {
		fmt.Fprintf(&sb, "\n### %s (%d%%)\n", ph.Name, ph.Completion)
		for _, t := range ph.Tasks {
			fmt.Fprintf(&sb, "- %s `%s` %s\n", statusIcon(t.Status), t.ID, t.Name)
		}
	}
	return strings.TrimSpace(sb.String())
}

func FormatSynthesis(r *app.SynthesisResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Stored blueprint v%d and created %d task(s) in %d phase(s).\n",
		r.BlueprintVersion, r.TasksCreated, len(r.Phases))
	fmt.Fprintf(&sb, "Type: %s · Complexity: %.2f · Estimated: %d week(s)\n",
		r.Plan.ProjectType, r.Plan.Complexity, r.Plan.EstimatedWeeks)
	for _, ph := range r.Phases {
		fmt.Fprintf(&sb, "\n### %s `%s`\n", ph.Phase.Name, ph.Phase.ID)
		for _, t := range ph.Subtasks {
			fmt.Fprintf(&sb, "- `%s` %s (%s)\n", t.ID, t.Name, t.AssignedAgent)
		}
	}
	return strings.TrimSpace(sb.String())
}

// FormatSchedule renders the CPM schedule wave by wave.
func FormatSchedule(s *cpm.Schedule) string {
	if len(s.Tasks) == 0 {
		return "Nothing to schedule."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Schedule: %sh, %d critical task(s)\n", strconv.FormatFloat(s.TotalHours, 'f', -1, 64), len(s.CriticalPath))
	for _, w := range s.Waves {
		fmt.Fprintf(&sb, "\n### Wave %d (starts at %sh)\n", w.Index, strconv.FormatFloat(w.Start, 'f', -1, 64))
		for _, id := range w.TaskIDs {
			ts, found := s.Get(id)
			if !found {
				continue
			}
			marker := ""
			if ts.Critical {
				marker = " **critical**"
			}
			fmt.Fprintf(&sb, "- `%s` %s: %sh, slack %sh%s\n", ts.TaskID, ts.Name,
				strconv.FormatFloat(ts.Duration, 'f', -1, 64), strconv.FormatFloat(ts.Slack, 'f', -1, 64), marker)
		}
	}
	return strings.TrimSpace(sb.String())
}

// FormatError renders err with its stable code and any blocking tasks.
func FormatError(err error) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## ❌ %s\n\n**Details**: %s", task.Kind(err), err.Error())

	var blocked *task.DependencyNotSatisfiedError
	if errors.As(err, &blocked) {
		writeRefs(&sb, "Blocked by", blocked.Blocking)
	}
	var hasDeps *task.HasDependentsError
	if errors.As(err, &hasDeps) {
		sb.WriteString("\n\n**Remove these dependencies first**:\n")
		for _, id := range hasDeps.Dependents {
			fmt.Fprintf(&sb, "- `%s`\n", id)
		}
	}
	return strings.TrimSpace(sb.String())
}
