package memory

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/josephgoksu/taskgraph/internal/task"
)

func setupTestStore(t *testing.T) (*SQLiteStore, func()) {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "taskgraph-test-*")
	if err != nil {
		t.Fatalf("create temp dir: %v", err)
	}
	store, err := NewSQLiteStore(tmpDir)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		t.Fatalf("create store: %v", err)
	}
	return store, func() {
		_ = store.Close()
		_ = os.RemoveAll(tmpDir)
	}
}

var testTime = time.Date(2026, 3, 1, 9, 30, 0, 123456789, time.UTC)

func seedProject(t *testing.T, s *SQLiteStore, id string) {
	t.Helper()
	p := &task.Project{ID: id, Name: "Project " + id, CreatedAt: testTime, UpdatedAt: testTime}
	if err := s.CreateProject(context.Background(), p); err != nil {
		t.Fatalf("create project: %v", err)
	}
}

func seedTask(t *testing.T, s *SQLiteStore, id, projectID string, status task.Status) *task.Task {
	t.Helper()
	tk := &task.Task{
		ID:        id,
		ProjectID: projectID,
		Name:      "Task " + id,
		Status:    status,
		Priority:  task.PriorityMedium,
		CreatedAt: testTime,
		UpdatedAt: testTime,
		Version:   1,
	}
	if err := s.InsertTask(context.Background(), tk); err != nil {
		t.Fatalf("insert task %s: %v", id, err)
	}
	return tk
}

func TestTaskRoundTripKeepsOptionalFields(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	seedProject(t, s, "proj-1")

	est, actual := 12.5, 3.0
	started := testTime.Add(time.Hour)
	in := &task.Task{
		ID: "task-a", ProjectID: "proj-1", Name: "Schema", Description: "tables",
		Status: task.StatusInProgress, Priority: task.PriorityHigh, Complexity: 4,
		EstimatedHours: &est, ActualHours: &actual, AssignedAgent: "developer",
		StartedAt: &started, CreatedAt: testTime, UpdatedAt: testTime, Version: 1,
	}
	if err := s.InsertTask(ctx, in); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.GetTask(ctx, "task-a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.EstimatedHours == nil || *got.EstimatedHours != est {
		t.Errorf("estimated hours = %v, want %v", got.EstimatedHours, est)
	}
	if got.StartedAt == nil || !got.StartedAt.Equal(started) {
		t.Errorf("startedAt = %v, want %v", got.StartedAt, started)
	}
	if got.CompletedAt != nil {
		t.Errorf("completedAt = %v, want nil", got.CompletedAt)
	}
	if !got.CreatedAt.Equal(testTime) {
		t.Errorf("createdAt lost precision: %v", got.CreatedAt)
	}
	if got.ParentTaskID != "" {
		t.Errorf("parentTaskId = %q, want empty", got.ParentTaskID)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.GetTask(context.Background(), "task-missing")
	if !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListTasksFilterAndOrder(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	seedProject(t, s, "proj-1")
	seedProject(t, s, "proj-2")

	// Ids deliberately out of lexical order to prove creation order wins.
	seedTask(t, s, "task-z", "proj-1", task.StatusPending)
	seedTask(t, s, "task-b", "proj-1", task.StatusCompleted)
	seedTask(t, s, "task-m", "proj-1", task.StatusPending)
	seedTask(t, s, "task-x", "proj-2", task.StatusPending)

	all, err := s.ListTasks(ctx, "proj-1", task.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"task-z", "task-b", "task-m"}
	if len(all) != len(want) {
		t.Fatalf("got %d tasks, want %d", len(all), len(want))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, all[i].ID, id)
		}
	}

	pending, err := s.ListTasks(ctx, "proj-1", task.Filter{Status: task.StatusPending})
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("pending = %d, want 2", len(pending))
	}
}

func TestUpdateTaskVersionCheck(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	seedProject(t, s, "proj-1")
	tk := seedTask(t, s, "task-a", "proj-1", task.StatusPending)

	stale := *tk
	tk.Name = "renamed"
	if err := s.UpdateTask(ctx, tk); err != nil {
		t.Fatalf("update: %v", err)
	}
	if tk.Version != 2 {
		t.Errorf("version = %d, want 2", tk.Version)
	}

	stale.Name = "lost update"
	err := s.UpdateTask(ctx, &stale)
	var conflict *task.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Expected != 1 || conflict.Actual != 2 {
		t.Errorf("conflict versions = %d/%d, want 1/2", conflict.Expected, conflict.Actual)
	}

	got, _ := s.GetTask(ctx, "task-a")
	if got.Name != "renamed" {
		t.Errorf("name = %q, stale write must not apply", got.Name)
	}
}

func TestDependencyQueries(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	seedProject(t, s, "proj-1")
	seedTask(t, s, "task-a", "proj-1", task.StatusCompleted)
	seedTask(t, s, "task-b", "proj-1", task.StatusPending)
	seedTask(t, s, "task-c", "proj-1", task.StatusPending)

	for _, e := range []task.Edge{
		{TaskID: "task-b", DependsOnID: "task-a", CreatedAt: testTime},
		{TaskID: "task-c", DependsOnID: "task-a", CreatedAt: testTime},
		{TaskID: "task-c", DependsOnID: "task-b", CreatedAt: testTime},
		{TaskID: "task-c", DependsOnID: "task-b", CreatedAt: testTime}, // duplicate is ignored
	} {
		if err := s.InsertEdge(ctx, e); err != nil {
			t.Fatalf("insert edge: %v", err)
		}
	}

	deps, err := s.ListDependencies(ctx, "task-c")
	if err != nil {
		t.Fatalf("dependencies: %v", err)
	}
	if len(deps) != 2 || deps[0].ID != "task-a" || deps[1].ID != "task-b" {
		t.Errorf("dependencies of task-c = %+v", deps)
	}

	dependents, err := s.ListDependents(ctx, "task-a")
	if err != nil {
		t.Fatalf("dependents: %v", err)
	}
	if len(dependents) != 2 {
		t.Errorf("dependents of task-a = %d, want 2", len(dependents))
	}

	edges, err := s.ListEdges(ctx, "proj-1")
	if err != nil {
		t.Fatalf("edges: %v", err)
	}
	if len(edges) != 3 {
		t.Errorf("edges = %d, want 3", len(edges))
	}

	if err := s.DeleteEdge(ctx, "task-c", "task-b"); err != nil {
		t.Fatalf("delete edge: %v", err)
	}
	if err := s.DeleteEdge(ctx, "task-c", "task-b"); !errors.Is(err, task.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTasksRemovesEdgesAndSubtasks(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	seedProject(t, s, "proj-1")
	seedTask(t, s, "task-p", "proj-1", task.StatusPending)
	child := &task.Task{
		ID: "task-c", ProjectID: "proj-1", Name: "child", Status: task.StatusPending,
		Priority: task.PriorityLow, ParentTaskID: "task-p", CreatedAt: testTime, UpdatedAt: testTime, Version: 1,
	}
	if err := s.InsertTask(ctx, child); err != nil {
		t.Fatalf("insert child: %v", err)
	}
	seedTask(t, s, "task-o", "proj-1", task.StatusPending)
	if err := s.InsertEdge(ctx, task.Edge{TaskID: "task-p", DependsOnID: "task-o", CreatedAt: testTime}); err != nil {
		t.Fatalf("insert edge: %v", err)
	}

	if err := s.DeleteTasks(ctx, []string{"task-p", "task-c"}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	remaining, _ := s.ListTasks(ctx, "proj-1", task.Filter{})
	if len(remaining) != 1 || remaining[0].ID != "task-o" {
		t.Errorf("remaining = %+v", remaining)
	}
	edges, _ := s.ListEdges(ctx, "proj-1")
	if len(edges) != 0 {
		t.Errorf("edges = %d, want 0", len(edges))
	}
}

func TestAtomicRollsBackOnError(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	seedProject(t, s, "proj-1")

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(w task.Writer) error {
		tk := &task.Task{ID: "task-a", ProjectID: "proj-1", Name: "a", Status: task.StatusPending,
			Priority: task.PriorityLow, CreatedAt: testTime, UpdatedAt: testTime, Version: 1}
		if err := w.InsertTask(ctx, tk); err != nil {
			return err
		}
		if err := w.SetProjectProgress(ctx, "proj-1", 100, testTime); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if _, err := s.GetTask(ctx, "task-a"); !errors.Is(err, task.ErrNotFound) {
		t.Errorf("task should have been rolled back, got %v", err)
	}
	p, err := s.GetProject(ctx, "proj-1")
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if p.Progress != 0 {
		t.Errorf("progress = %d, want 0 after rollback", p.Progress)
	}
}

func TestFindTaskIDsByPrefix(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	seedProject(t, s, "proj-1")
	seedTask(t, s, "task-ab12", "proj-1", task.StatusPending)
	seedTask(t, s, "task-ab34", "proj-1", task.StatusPending)
	seedTask(t, s, "task-cd56", "proj-1", task.StatusPending)

	ids, err := s.FindTaskIDsByPrefix(ctx, "task-ab")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("ids = %v, want 2 matches", ids)
	}

	// "_" must be literal, not a LIKE wildcard.
	ids, err = s.FindTaskIDsByPrefix(ctx, "task_")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ids = %v, want none", ids)
	}
}

func TestBlueprintVersions(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	seedProject(t, s, "proj-1")

	content, version, err := s.LatestBlueprint(ctx, "proj-1")
	if err != nil || content != nil || version != 0 {
		t.Fatalf("empty project: content=%q version=%d err=%v", content, version, err)
	}

	for i, body := range []string{`{"timeline":"1-2 weeks"}`, `{"timeline":"6+ months"}`} {
		v, err := s.SaveBlueprint(ctx, "proj-1", []byte(body), testTime)
		if err != nil {
			t.Fatalf("save: %v", err)
		}
		if v != i+1 {
			t.Errorf("version = %d, want %d", v, i+1)
		}
	}

	content, version, err = s.LatestBlueprint(ctx, "proj-1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if version != 2 || string(content) != `{"timeline":"6+ months"}` {
		t.Errorf("latest = v%d %s", version, content)
	}
}

func TestInMemoryStore(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	seedProject(t, s, "proj-1")
	projects, err := s.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(projects) != 1 {
		t.Errorf("projects = %d, want 1", len(projects))
	}
	if s.Path() != ":memory:" {
		t.Errorf("path = %q", s.Path())
	}
}
