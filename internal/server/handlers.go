package server

import (
	"io"
	"net/http"

	"github.com/josephgoksu/taskgraph/internal/roadmap"
	"github.com/josephgoksu/taskgraph/internal/task"
)

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.projects.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeAPIJSON(w, map[string]any{"projects": projects})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := s.projects.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.projects.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeAPIJSON(w, p)
}

func (s *Server) handleProjectSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.projects.Summary(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeAPIJSON(w, sum)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	list, err := s.tasks.List(r.Context(), r.PathValue("id"), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeAPIJSON(w, list)
}

func filterFromQuery(r *http.Request) (task.Filter, error) {
	q := r.URL.Query()
	f := task.Filter{AssignedAgent: q.Get("assignedAgent")}
	if raw := q.Get("status"); raw != "" {
		st, err := task.ParseStatus(raw)
		if err != nil {
			return f, err
		}
		f.Status = st
	}
	if raw := q.Get("priority"); raw != "" {
		p, err := task.ParsePriority(raw)
		if err != nil {
			return f, err
		}
		f.Priority = p
	}
	return f, nil
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var spec task.NewTask
	if err := decodeBody(w, r, &spec); err != nil {
		writeError(w, err)
		return
	}
	spec.ProjectID = r.PathValue("id")
	// In the body a bad projectId is a validation error; in the path it is 404.
	if _, err := s.projects.Get(r.Context(), spec.ProjectID); err != nil {
		writeError(w, err)
		return
	}
	t, err := s.tasks.Create(r.Context(), spec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetRoadmap(w http.ResponseWriter, r *http.Request) {
	view, err := s.projects.Roadmap(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeAPIJSON(w, view)
}

func (s *Server) handleSynthesizeRoadmap(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, &task.ValidationError{Field: "body", Message: err.Error()})
		return
	}
	b, err := roadmap.ParseBlueprint(body, roadmap.FormatJSON)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.projects.SynthesizeRoadmap(r.Context(), r.PathValue("id"), *b)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	sched, err := s.projects.Schedule(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeAPIJSON(w, sched)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	d, err := s.tasks.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeAPIJSON(w, d)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var u task.FieldUpdate
	if err := decodeBody(w, r, &u); err != nil {
		writeError(w, err)
		return
	}
	t, err := s.tasks.Update(r.Context(), r.PathValue("id"), u)
	if err != nil {
		writeError(w, err)
		return
	}
	writeAPIJSON(w, t)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	res, err := s.tasks.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeAPIJSON(w, res)
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	v, err := s.tasks.Status(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeAPIJSON(w, v)
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	var req TransitionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	target, err := task.ParseStatus(req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.tasks.Transition(r.Context(), r.PathValue("id"), target, req.TransitionOptions)
	if err != nil {
		writeError(w, err)
		return
	}
	writeAPIJSON(w, res)
}

func (s *Server) handleAddDependency(w http.ResponseWriter, r *http.Request) {
	var req DependencyRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.DependsOnID == "" {
		writeError(w, &task.ValidationError{Field: "dependsOnId", Message: "is required"})
		return
	}
	e, err := s.tasks.AddDependency(r.Context(), r.PathValue("id"), req.DependsOnID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleRemoveDependency(w http.ResponseWriter, r *http.Request) {
	if err := s.tasks.RemoveDependency(r.Context(), r.PathValue("id"), r.PathValue("dependsOnId")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
