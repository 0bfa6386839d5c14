package server

import "net/http"

// registerRoutes sets up all API endpoints
func (s *Server) registerRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/projects", s.handleListProjects)
	mux.HandleFunc("POST /api/projects", s.handleCreateProject)
	mux.HandleFunc("GET /api/projects/{id}", s.handleGetProject)
	mux.HandleFunc("GET /api/projects/{id}/summary", s.handleProjectSummary)
	mux.HandleFunc("GET /api/projects/{id}/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/projects/{id}/tasks", s.handleCreateTask)
	mux.HandleFunc("GET /api/projects/{id}/roadmap", s.handleGetRoadmap)
	mux.HandleFunc("POST /api/projects/{id}/roadmap", s.handleSynthesizeRoadmap)
	mux.HandleFunc("GET /api/projects/{id}/schedule", s.handleSchedule)

	mux.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("PATCH /api/tasks/{id}", s.handleUpdateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)
	mux.HandleFunc("GET /api/tasks/{id}/status", s.handleTaskStatus)
	mux.HandleFunc("PUT /api/tasks/{id}/status", s.handleTransition)
	mux.HandleFunc("POST /api/tasks/{id}/dependencies", s.handleAddDependency)
	mux.HandleFunc("DELETE /api/tasks/{id}/dependencies/{dependsOnId}", s.handleRemoveDependency)

	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	return s.recoverMiddleware(s.logMiddleware(s.corsMiddleware(mux)))
}
