package task

import "github.com/google/uuid"

// ID prefixes. Ids are the prefix plus the first 8 hex chars of a UUIDv4.
const (
	TaskIDPrefix    = "task-"
	ProjectIDPrefix = "proj-"
)

func NewTaskID() string {
	return TaskIDPrefix + uuid.New().String()[:8]
}

func NewProjectID() string {
	return ProjectIDPrefix + uuid.New().String()[:8]
}
