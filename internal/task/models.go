package task

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusBlocked    Status = "BLOCKED"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// ValidStatuses returns every status in lifecycle order.
func ValidStatuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusBlocked, StatusCompleted, StatusCancelled}
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusBlocked, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus accepts any casing and "-" or " " as word separators ("in-progress").
func ParseStatus(raw string) (Status, error) {
	s := Status(normalizeEnum(raw))
	if !s.IsValid() {
		return "", &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", raw)}
	}
	return s, nil
}

// Priority orders tasks for the critical path.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// ValidPriorities returns priorities from lowest to highest.
func ValidPriorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

func (p Priority) IsValid() bool {
	return p.Rank() >= 0
}

// Rank is 0 for LOW up to 3 for CRITICAL, -1 for unknown values.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	case PriorityCritical:
		return 3
	}
	return -1
}

func ParsePriority(raw string) (Priority, error) {
	p := Priority(normalizeEnum(raw))
	if !p.IsValid() {
		return "", &ValidationError{Field: "priority", Message: fmt.Sprintf("unknown priority %q", raw)}
	}
	return p, nil
}

func normalizeEnum(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}

// Agent labels used by roadmap synthesis and analytics. The core treats
// assignedAgent as opaque; these are only the well-known values.
const (
	AgentDeveloper  = "developer"
	AgentAuditor    = "auditor"
	AgentUser       = "user"
	AgentUnassigned = "unassigned"
)

// Task is a unit of work in a project's dependency graph.
type Task struct {
	ID             string     `json:"id"`
	ProjectID      string     `json:"projectId"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	Status         Status     `json:"status"`
	Priority       Priority   `json:"priority"`
	Complexity     int        `json:"complexity"`
	EstimatedHours *float64   `json:"estimatedHours,omitempty"`
	ActualHours    *float64   `json:"actualHours,omitempty"`
	ParentTaskID   string     `json:"parentTaskId,omitempty"`
	AssignedAgent  string     `json:"assignedAgent,omitempty"`
	StartedAt      *time.Time `json:"startedAt,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	Version        int64      `json:"version"`
}

// Ref returns the compact form used in error details and views.
func (t Task) Ref() TaskRef {
	return TaskRef{ID: t.ID, Name: t.Name, Status: t.Status, Priority: t.Priority}
}

// TaskRef identifies a task without carrying its full record.
type TaskRef struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Status   Status   `json:"status"`
	Priority Priority `json:"priority,omitempty"`
}

func refs(tasks []Task) []TaskRef {
	out := make([]TaskRef, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Ref())
	}
	return out
}

// Edge is a directed depends-on constraint: TaskID cannot start until
// DependsOnID is COMPLETED.
type Edge struct {
	TaskID      string    `json:"taskId"`
	DependsOnID string    `json:"dependsOnId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Project owns a task graph and caches its aggregate progress.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Progress    int       `json:"progress"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Filter narrows ListTasks. Zero values match everything.
type Filter struct {
	Status        Status   `json:"status,omitempty" validate:"omitempty,oneof=PENDING IN_PROGRESS BLOCKED COMPLETED CANCELLED"`
	Priority      Priority `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	AssignedAgent string   `json:"assignedAgent,omitempty"`
}

// Matches reports whether t satisfies every set field of f.
func (f Filter) Matches(t Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.AssignedAgent != "" && t.AssignedAgent != f.AssignedAgent {
		return false
	}
	return true
}

// Validate rejects unknown enum values.
func (f Filter) Validate() error {
	return validateStruct(f)
}

// NewTask is the input to CreateTask.
type NewTask struct {
	ProjectID      string   `json:"projectId" validate:"required"`
	Name           string   `json:"name" validate:"required,max=255"`
	Description    string   `json:"description,omitempty" validate:"max=10000"`
	Priority       Priority `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	Complexity     int      `json:"complexity,omitempty" validate:"omitempty,min=1,max=5"`
	EstimatedHours *float64 `json:"estimatedHours,omitempty" validate:"omitempty,gte=0"`
	ParentTaskID   string   `json:"parentTaskId,omitempty"`
	AssignedAgent  string   `json:"assignedAgent,omitempty" validate:"max=100"`
	Dependencies   []string `json:"dependencies,omitempty" validate:"dive,required"`
}

// FieldUpdate edits fields outside the state machine. Nil fields are left alone.
type FieldUpdate struct {
	Name            *string   `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description     *string   `json:"description,omitempty" validate:"omitempty,max=10000"`
	Priority        *Priority `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	Complexity      *int      `json:"complexity,omitempty" validate:"omitempty,min=1,max=5"`
	EstimatedHours  *float64  `json:"estimatedHours,omitempty" validate:"omitempty,gte=0"`
	ExpectedVersion int64     `json:"expectedVersion,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (u FieldUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Priority == nil && u.Complexity == nil && u.EstimatedHours == nil
}

func floatPtr(v float64) *float64 { return &v }

func timePtr(v time.Time) *time.Time { return &v }
