package task

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Every typed error below unwraps to one of these so callers
// can branch with errors.Is.
var (
	ErrNotFound               = errors.New("not found")
	ErrValidation             = errors.New("validation failed")
	ErrSelfDependency         = errors.New("task cannot depend on itself")
	ErrCyclicDependency       = errors.New("dependency would create a cycle")
	ErrDependencyNotSatisfied = errors.New("dependencies not satisfied")
	ErrHasDependents          = errors.New("task has dependents")
	ErrConflict               = errors.New("concurrent modification")
	// ErrDuplicateID is returned by stores when a generated id is already taken.
	ErrDuplicateID = errors.New("id already exists")
)

// NotFoundError reports a missing project, task or dependency edge.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

type SelfDependencyError struct {
	TaskID string
}

func (e *SelfDependencyError) Error() string {
	return fmt.Sprintf("task %s cannot depend on itself", e.TaskID)
}

func (e *SelfDependencyError) Unwrap() error { return ErrSelfDependency }

// CyclicDependencyError carries the existing path from DependsOnID back to TaskID.
type CyclicDependencyError struct {
	TaskID      string
	DependsOnID string
	Path        []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("task %s cannot depend on %s: cycle %s -> %s",
		e.TaskID, e.DependsOnID, e.TaskID, strings.Join(e.Path, " -> "))
}

func (e *CyclicDependencyError) Unwrap() error { return ErrCyclicDependency }

// DependencyNotSatisfiedError is returned when a task is started before all
// of its dependencies are COMPLETED.
type DependencyNotSatisfiedError struct {
	TaskID   string
	Blocking []TaskRef
}

func (e *DependencyNotSatisfiedError) Error() string {
	names := make([]string, 0, len(e.Blocking))
	for _, b := range e.Blocking {
		names = append(names, fmt.Sprintf("%s (%s)", b.ID, b.Status))
	}
	return fmt.Sprintf("task %s is blocked by %d incomplete dependencies: %s",
		e.TaskID, len(e.Blocking), strings.Join(names, ", "))
}

func (e *DependencyNotSatisfiedError) Unwrap() error { return ErrDependencyNotSatisfied }

// HasDependentsError blocks deletion of a task that other tasks depend on.
type HasDependentsError struct {
	TaskID     string
	Dependents []string
}

func (e *HasDependentsError) Error() string {
	return fmt.Sprintf("task %s has %d dependent task(s): %s",
		e.TaskID, len(e.Dependents), strings.Join(e.Dependents, ", "))
}

func (e *HasDependentsError) Unwrap() error { return ErrHasDependents }

// ConflictError reports a version mismatch on a read-modify-write.
type ConflictError struct {
	TaskID   string
	Expected int64
	Actual   int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("task %s was modified concurrently (expected version %d, found %d)",
		e.TaskID, e.Expected, e.Actual)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// Error codes shared by the HTTP, MCP and CLI surfaces.
const (
	CodeNotFound               = "NOT_FOUND"
	CodeValidation             = "VALIDATION_ERROR"
	CodeSelfDependency         = "SELF_DEPENDENCY"
	CodeCyclicDependency       = "CYCLIC_DEPENDENCY"
	CodeDependencyNotSatisfied = "DEPENDENCY_NOT_SATISFIED"
	CodeHasDependents          = "HAS_DEPENDENTS"
	CodeConflict               = "CONFLICT"
	CodeInternal               = "INTERNAL"
)

// Kind maps err to its stable error code.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrSelfDependency):
		return CodeSelfDependency
	case errors.Is(err, ErrCyclicDependency):
		return CodeCyclicDependency
	case errors.Is(err, ErrDependencyNotSatisfied):
		return CodeDependencyNotSatisfied
	case errors.Is(err, ErrHasDependents):
		return CodeHasDependents
	case errors.Is(err, ErrConflict):
		return CodeConflict
	}
	return CodeInternal
}

// Details extracts the structured payload of a typed error, or nil.
func Details(err error) map[string]any {
	var (
		notFound *NotFoundError
		invalid  *ValidationError
		cyclic   *CyclicDependencyError
		blocked  *DependencyNotSatisfiedError
		hasDeps  *HasDependentsError
		conflict *ConflictError
	)
	switch {
	case errors.As(err, &notFound):
		return map[string]any{"entity": notFound.Entity, "id": notFound.ID}
	case errors.As(err, &invalid):
		return map[string]any{"field": invalid.Field}
	case errors.As(err, &cyclic):
		return map[string]any{"taskId": cyclic.TaskID, "dependsOnId": cyclic.DependsOnID, "path": cyclic.Path}
	case errors.As(err, &blocked):
		return map[string]any{"taskId": blocked.TaskID, "blockedBy": blocked.Blocking}
	case errors.As(err, &hasDeps):
		return map[string]any{"taskId": hasDeps.TaskID, "dependents": hasDeps.Dependents}
	case errors.As(err, &conflict):
		return map[string]any{"taskId": conflict.TaskID, "expectedVersion": conflict.Expected, "actualVersion": conflict.Actual}
	}
	return nil
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
