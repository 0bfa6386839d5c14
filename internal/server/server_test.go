package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/josephgoksu/taskgraph/internal/app"
	"github.com/josephgoksu/taskgraph/internal/logger"
	"github.com/josephgoksu/taskgraph/internal/memory"
	"github.com/josephgoksu/taskgraph/internal/metrics"
	"github.com/josephgoksu/taskgraph/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiClient struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) *apiClient {
	t.Helper()
	store, err := memory.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	m := metrics.New()
	actx := app.NewContext(store, app.WithLogger(logger.Discard()), app.WithMetrics(m))
	srv := New(actx, Options{
		Addr:           ":0",
		AllowedOrigins: []string{"http://localhost:3000"},
		Logger:         logger.Discard(),
		Metrics:        m,
	})
	return &apiClient{t: t, handler: srv.Handler()}
}

func (c *apiClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (c *apiClient) createProject(name string) string {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/api/projects", CreateProjectRequest{Name: name})
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[task.Project](c.t, rec).ID
}

func (c *apiClient) createTask(projectID string, body map[string]any) string {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/api/projects/"+projectID+"/tasks", body)
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[task.Task](c.t, rec).ID
}

func TestProjectAndTaskFlow(t *testing.T) {
	c := newTestServer(t)
	pid := c.createProject("Launch")

	a := c.createTask(pid, map[string]any{"name": "Schema", "priority": "HIGH", "estimatedHours": 3})
	b := c.createTask(pid, map[string]any{"name": "Handlers", "dependencies": []string{a}})

	rec := c.do(http.MethodPut, "/api/tasks/"+b+"/status", TransitionRequest{Status: "in-progress"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decode[ErrorBody](t, rec)
	assert.Equal(t, task.CodeDependencyNotSatisfied, body.Error.Code)
	assert.NotEmpty(t, body.Error.Details["blockedBy"])

	rec = c.do(http.MethodPut, "/api/tasks/"+a+"/status", TransitionRequest{Status: "COMPLETED"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[task.TransitionResult](t, rec)
	assert.Equal(t, task.StatusPending, res.PreviousStatus)
	assert.Equal(t, 50, res.ProjectProgress)

	rec = c.do(http.MethodGet, "/api/tasks/"+b+"/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[task.StatusView](t, rec).CanStart)

	rec = c.do(http.MethodGet, "/api/projects/"+pid+"/tasks?status=completed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[app.TaskList](t, rec)
	require.Len(t, list.Tasks, 1)
	assert.Equal(t, a, list.Tasks[0].ID)

	rec = c.do(http.MethodGet, "/api/projects/"+pid+"/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, decode[task.ProjectSummary](t, rec).Progress)

	rec = c.do(http.MethodGet, "/api/tasks/"+a, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[task.TaskDetail](t, rec)
	assert.Equal(t, 100, detail.Completion)
	require.Len(t, detail.Dependents, 1)
}

func TestErrorMapping(t *testing.T) {
	c := newTestServer(t)
	pid := c.createProject("Errors")
	a := c.createTask(pid, map[string]any{"name": "a"})
	b := c.createTask(pid, map[string]any{"name": "b", "dependencies": []string{a}})

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"missing task", http.MethodGet, "/api/tasks/task-nope", nil, 404, task.CodeNotFound},
		{"missing project tasks", http.MethodPost, "/api/projects/proj-nope/tasks", map[string]any{"name": "x"}, 404, task.CodeNotFound},
		{"blank name", http.MethodPost, "/api/projects/" + pid + "/tasks", map[string]any{"name": ""}, 400, task.CodeValidation},
		{"unknown field", http.MethodPost, "/api/projects/" + pid + "/tasks", map[string]any{"title": "x"}, 400, task.CodeValidation},
		{"bad status", http.MethodPut, "/api/tasks/" + a + "/status", TransitionRequest{Status: "DONE"}, 400, task.CodeValidation},
		{"bad filter", http.MethodGet, "/api/projects/" + pid + "/tasks?priority=urgent", nil, 400, task.CodeValidation},
		{"self dependency", http.MethodPost, "/api/tasks/" + a + "/dependencies", DependencyRequest{DependsOnID: a}, 400, task.CodeSelfDependency},
		{"cycle", http.MethodPost, "/api/tasks/" + a + "/dependencies", DependencyRequest{DependsOnID: b}, 400, task.CodeCyclicDependency},
		{"has dependents", http.MethodDelete, "/api/tasks/" + a, nil, 409, task.CodeHasDependents},
		{"stale version", http.MethodPatch, "/api/tasks/" + a, map[string]any{"name": "a2", "expectedVersion": 99}, 409, task.CodeConflict},
		{"missing edge", http.MethodDelete, "/api/tasks/" + b + "/dependencies/task-nope", nil, 404, task.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := c.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decode[ErrorBody](t, rec).Error.Code)
		})
	}
}

func TestDependencyRoutes(t *testing.T) {
	c := newTestServer(t)
	pid := c.createProject("Deps")
	a := c.createTask(pid, map[string]any{"name": "a"})
	b := c.createTask(pid, map[string]any{"name": "b"})

	rec := c.do(http.MethodPost, "/api/tasks/"+b+"/dependencies", DependencyRequest{DependsOnID: a})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = c.do(http.MethodDelete, "/api/tasks/"+b+"/dependencies/"+a, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = c.do(http.MethodDelete, "/api/tasks/"+a, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{a}, decode[app.DeleteResult](t, rec).Deleted)
}

func TestRoadmapAndSchedule(t *testing.T) {
	c := newTestServer(t)
	pid := c.createProject("Roadmap")

	rec := c.do(http.MethodPost, "/api/projects/"+pid+"/roadmap", `{"projectType":"api","timeline":"2-4 weeks"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode[app.SynthesisResult](t, rec)
	assert.Len(t, res.Phases, 4)
	assert.Equal(t, 1, res.BlueprintVersion)

	rec = c.do(http.MethodPost, "/api/projects/"+pid+"/roadmap", `{"projectType":"api","color":"blue"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodGet, "/api/projects/"+pid+"/roadmap", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[map[string]any](t, rec)
	assert.Len(t, view["phases"], 4)

	rec = c.do(http.MethodGet, "/api/projects/"+pid+"/schedule", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sched := decode[map[string]any](t, rec)
	assert.NotEmpty(t, sched["criticalPath"])
}

func TestCORSAndMetrics(t *testing.T) {
	c := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	req.Header.Set("Origin", "http://evil.test")
	rec = httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	c.createProject("Measured")
	rec = c.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "taskgraph_operations_total"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(task.CodeInternal))
	assert.Equal(t, http.StatusConflict, statusFor(task.CodeConflict))
}
