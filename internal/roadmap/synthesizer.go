package roadmap

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/josephgoksu/taskgraph/internal/task"
)

// DefaultWeeks is the multiplier for timelines missing from the table.
const DefaultWeeks = 3

// HoursPerWeek converts phase durations into estimated hours.
const HoursPerWeek = 40

var timelineWeeks = map[string]int{
	"1-2 weeks":  1,
	"2-4 weeks":  2,
	"4-6 weeks":  3,
	"6-8 weeks":  4,
	"2-3 months": 6,
	"3-6 months": 12,
	"6+ months":  24,
}

// TimelineWeeks maps a timeline label to its week multiplier.
func TimelineWeeks(timeline string) int {
	if w, ok := timelineWeeks[strings.ToLower(strings.TrimSpace(timeline))]; ok {
		return w
	}
	return DefaultWeeks
}

type template struct {
	name     string
	fraction float64
	minWeeks int
	tasks    []string
}

// Phase task names that only make sense with a user-facing frontend.
var frontendTasks = []string{
	"Frontend component development",
	"User interface development",
}

func templates() []template {
	return []template{
		{
			name: "Foundation & Setup", fraction: 0.2, minWeeks: 1,
			tasks: []string{
				"Project scaffolding and initial setup",
				"Development environment configuration",
				"Version control and CI/CD setup",
				"Database schema design and setup",
				"Authentication system implementation",
			},
		},
		{
			name: "Core Development", fraction: 0.4, minWeeks: 2,
			tasks: []string{
				"Frontend component development",
				"Backend API implementation",
				"Database integration",
				"Core business logic",
				"User interface development",
			},
		},
		{
			name: "Integration & Features", fraction: 0.25, minWeeks: 1,
			tasks: []string{
				"API integration and testing",
				"Feature completion and refinement",
				"Third-party service integration",
				"Performance optimization",
				"Security implementation",
			},
		},
		{
			name: "Testing & Deployment", fraction: 0.15, minWeeks: 1,
			tasks: []string{
				"Comprehensive testing suite",
				"Bug fixes and quality assurance",
				"Production deployment setup",
				"Performance monitoring",
				"Documentation and handover",
			},
		},
	}
}

// Plan is a synthesized roadmap that has not been stored yet.
type Plan struct {
	ProjectName    string  `json:"projectName,omitempty"`
	ProjectType    string  `json:"projectType"`
	Complexity     float64 `json:"complexity"`
	EstimatedWeeks int     `json:"estimatedWeeks"`
	Phases         []Phase `json:"phases"`
}

// Phase is one sequential stage of a Plan.
type Phase struct {
	Number     int      `json:"number"`
	Name       string   `json:"name"`
	Weeks      int      `json:"weeks"`
	Complexity float64  `json:"complexity"`
	Tasks      []string `json:"tasks"`
}

// Title is the phase task name, e.g. "Phase 2: Core Development".
func (p Phase) Title() string {
	return fmt.Sprintf("Phase %d: %s", p.Number, p.Name)
}

// Description is the phase task description, e.g. "Duration: 2 weeks".
func (p Phase) Description() string {
	unit := "week"
	if p.Weeks > 1 {
		unit = "weeks"
	}
	return fmt.Sprintf("Duration: %d %s", p.Weeks, unit)
}

// Hours is the phase budget at HoursPerWeek.
func (p Phase) Hours() float64 {
	return float64(p.Weeks * HoursPerWeek)
}

// TaskHours is the phase budget split evenly across its tasks.
func (p Phase) TaskHours() float64 {
	if len(p.Tasks) == 0 {
		return 0
	}
	return math.Round(p.Hours() / float64(len(p.Tasks)))
}

// Priority is HIGH for the first phase, MEDIUM for the second and LOW after.
func (p Phase) Priority() task.Priority {
	switch p.Number {
	case 1:
		return task.PriorityHigh
	case 2:
		return task.PriorityMedium
	}
	return task.PriorityLow
}

// PhaseComplexity is the 1..5 complexity of the phase task itself.
func (p Phase) PhaseComplexity() int {
	return clamp(int(math.Round(p.Complexity*5)), 1, 5)
}

// TaskComplexity is the 1..5 complexity given to each task in the phase.
func (p Phase) TaskComplexity() int {
	return clamp(int(math.Round(p.Complexity*3)), 1, 5)
}

// AgentFor assigns testing and verification work to the auditor.
func AgentFor(taskName string) string {
	name := strings.ToLower(taskName)
	if strings.Contains(name, "test") || strings.Contains(name, "verif") {
		return task.AgentAuditor
	}
	return task.AgentDeveloper
}

// Synthesize builds the four-phase plan for b. It is deterministic and
// touches no storage.
func Synthesize(b Blueprint) Plan {
	weeks := TimelineWeeks(b.Timeline)
	projectType := b.NormalizedType()
	score := b.ComplexityScore()
	phaseComplexity := math.Min(1, float64(len(b.TechStack.Frontend)+len(b.TechStack.Backend))/10+score)

	tpls := templates()
	switch projectType {
	case ProjectTypeMobileApp:
		tpls[1].tasks = append(tpls[1].tasks, "Mobile platform optimization")
		tpls[2].tasks = append(tpls[2].tasks, "App store preparation")
	case ProjectTypeAPI:
		tpls[1].tasks = slices.DeleteFunc(tpls[1].tasks, func(name string) bool {
			return slices.Contains(frontendTasks, name)
		})
		tpls[1].tasks = append(tpls[1].tasks, "API documentation")
		tpls[2].tasks = append(tpls[2].tasks, "Rate limiting and throttling")
	}
	if strings.EqualFold(strings.TrimSpace(b.AIAssistance), "full") {
		tpls[1].tasks = append(tpls[1].tasks, "AI-powered code generation setup")
		tpls[2].tasks = append(tpls[2].tasks, "Automated code review integration")
	}

	plan := Plan{
		ProjectName:    strings.TrimSpace(b.ProjectName),
		ProjectType:    projectType,
		Complexity:     score,
		EstimatedWeeks: weeks,
		Phases:         make([]Phase, 0, len(tpls)),
	}
	for i, tpl := range tpls {
		plan.Phases = append(plan.Phases, Phase{
			Number:     i + 1,
			Name:       tpl.name,
			Weeks:      max(tpl.minWeeks, int(math.Round(float64(weeks)*tpl.fraction))),
			Complexity: phaseComplexity,
			Tasks:      tpl.tasks,
		})
	}
	return plan
}

// TaskCount is the number of tasks the plan creates, phases included.
func (p Plan) TaskCount() int {
	n := len(p.Phases)
	for _, ph := range p.Phases {
		n += len(ph.Tasks)
	}
	return n
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
