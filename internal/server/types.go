package server

import "github.com/josephgoksu/taskgraph/internal/task"

// CreateProjectRequest is the payload for POST /api/projects
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TransitionRequest is the payload for PUT /api/tasks/{id}/status
type TransitionRequest struct {
	Status string `json:"status"`
	task.TransitionOptions
}

// DependencyRequest is the payload for POST /api/tasks/{id}/dependencies
type DependencyRequest struct {
	DependsOnID string `json:"dependsOnId"`
}

// ErrorBody is the envelope of every non-2xx response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
