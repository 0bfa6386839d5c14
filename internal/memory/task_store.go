package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/josephgoksu/taskgraph/internal/task"
)

const taskColumns = `id, project_id, name, description, status, priority, complexity,
	estimated_hours, actual_hours, parent_task_id, assigned_agent,
	started_at, completed_at, created_at, updated_at, version`

// qualified prefixes every task column with alias, for joins.
func qualified(alias string) string {
	cols := strings.Split(taskColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

type taskRowScanner interface {
	Scan(dest ...any) error
}

func scanTaskRow(row taskRowScanner) (task.Task, error) {
	var (
		t                      task.Task
		status, priority       string
		estimated, actual      sql.NullFloat64
		parentID, agent        sql.NullString
		startedAt, completedAt sql.NullString
		createdAt, updatedAt   string
	)
	err := row.Scan(
		&t.ID, &t.ProjectID, &t.Name, &t.Description, &status, &priority, &t.Complexity,
		&estimated, &actual, &parentID, &agent,
		&startedAt, &completedAt, &createdAt, &updatedAt, &t.Version,
	)
	if err != nil {
		return task.Task{}, err
	}

	t.Status = task.Status(status)
	t.Priority = task.Priority(priority)
	if estimated.Valid {
		v := estimated.Float64
		t.EstimatedHours = &v
	}
	if actual.Valid {
		v := actual.Float64
		t.ActualHours = &v
	}
	t.ParentTaskID = parentID.String
	t.AssignedAgent = agent.String

	if t.StartedAt, err = parseNullTime(startedAt); err != nil {
		return task.Task{}, err
	}
	if t.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return task.Task{}, err
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return task.Task{}, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

func (s *tables) queryTasks(ctx context.Context, query string, args ...any) ([]task.Task, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []task.Task{}
	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := checkRowsErr(rows); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *tables) GetTask(ctx context.Context, id string) (*task.Task, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTaskRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &task.NotFoundError{Entity: "task", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return &t, nil
}

func (s *tables) ListTasks(ctx context.Context, projectID string, filter task.Filter) ([]task.Task, error) {
	where := []string{"project_id = ?"}
	args := []any{projectID}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Priority != "" {
		where = append(where, "priority = ?")
		args = append(args, string(filter.Priority))
	}
	if filter.AssignedAgent != "" {
		where = append(where, "assigned_agent = ?")
		args = append(args, filter.AssignedAgent)
	}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + strings.Join(where, " AND ") + ` ORDER BY rowid`
	return s.queryTasks(ctx, query, args...)
}

func (s *tables) ListDependencies(ctx context.Context, taskID string) ([]task.Task, error) {
	return s.queryTasks(ctx, `
		SELECT `+qualified("t")+`
		FROM task_dependencies d
		JOIN tasks t ON t.id = d.depends_on
		WHERE d.task_id = ?
		ORDER BY t.rowid`, taskID)
}

func (s *tables) ListDependents(ctx context.Context, taskID string) ([]task.Task, error) {
	return s.queryTasks(ctx, `
		SELECT `+qualified("t")+`
		FROM task_dependencies d
		JOIN tasks t ON t.id = d.task_id
		WHERE d.depends_on = ?
		ORDER BY t.rowid`, taskID)
}

func (s *tables) ListSubtasks(ctx context.Context, taskID string) ([]task.Task, error) {
	return s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE parent_task_id = ? ORDER BY rowid`, taskID)
}

func (s *tables) ListEdges(ctx context.Context, projectID string) ([]task.Edge, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT d.task_id, d.depends_on, d.created_at
		FROM task_dependencies d
		JOIN tasks t ON t.id = d.task_id
		WHERE t.project_id = ?
		ORDER BY d.rowid`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	edges := []task.Edge{}
	for rows.Next() {
		var (
			e         task.Edge
			createdAt string
		)
		if err := rows.Scan(&e.TaskID, &e.DependsOnID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	if err := checkRowsErr(rows); err != nil {
		return nil, err
	}
	return edges, nil
}

func (s *tables) FindTaskIDsByPrefix(ctx context.Context, prefix string) ([]string, error) {
	return s.findIDs(ctx, "tasks", prefix)
}

func (s *tables) FindProjectIDsByPrefix(ctx context.Context, prefix string) ([]string, error) {
	return s.findIDs(ctx, "projects", prefix)
}

func (s *tables) findIDs(ctx context.Context, table, prefix string) ([]string, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id FROM `+table+` WHERE id LIKE ? ESCAPE '\' ORDER BY id`, likePrefix(prefix))
	if err != nil {
		return nil, fmt.Errorf("find ids in %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := checkRowsErr(rows); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *tables) InsertTask(ctx context.Context, t *task.Task) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, t.Name, t.Description, string(t.Status), string(t.Priority), t.Complexity,
		nullFloat(t.EstimatedHours), nullFloat(t.ActualHours), nullString(t.ParentTaskID), nullString(t.AssignedAgent),
		nullTimeString(t.StartedAt), nullTimeString(t.CompletedAt), formatTime(t.CreatedAt), formatTime(t.UpdatedAt), t.Version,
	)
	if isPrimaryKeyViolation(err) {
		return fmt.Errorf("insert task %s: %w", t.ID, task.ErrDuplicateID)
	}
	if err != nil {
		return fmt.Errorf("insert task %s: %w", t.ID, err)
	}
	return nil
}

func (s *tables) UpdateTask(ctx context.Context, t *task.Task) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE tasks SET
			name = ?, description = ?, status = ?, priority = ?, complexity = ?,
			estimated_hours = ?, actual_hours = ?, assigned_agent = ?,
			started_at = ?, completed_at = ?, updated_at = ?,
			version = version + 1
		WHERE id = ? AND version = ?`,
		t.Name, t.Description, string(t.Status), string(t.Priority), t.Complexity,
		nullFloat(t.EstimatedHours), nullFloat(t.ActualHours), nullString(t.AssignedAgent),
		nullTimeString(t.StartedAt), nullTimeString(t.CompletedAt), formatTime(t.UpdatedAt),
		t.ID, t.Version,
	)
	if err != nil {
		return fmt.Errorf("update task %s: %w", t.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task %s: %w", t.ID, err)
	}
	if n == 0 {
		var actual int64
		err := s.q.QueryRowContext(ctx, `SELECT version FROM tasks WHERE id = ?`, t.ID).Scan(&actual)
		if errors.Is(err, sql.ErrNoRows) {
			return &task.NotFoundError{Entity: "task", ID: t.ID}
		}
		if err != nil {
			return fmt.Errorf("read version of %s: %w", t.ID, err)
		}
		return &task.ConflictError{TaskID: t.ID, Expected: t.Version, Actual: actual}
	}
	t.Version++
	return nil
}

func (s *tables) DeleteTasks(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	marks, args := placeholders(ids)
	edgeArgs := append(append([]any{}, args...), args...)
	if _, err := s.q.ExecContext(ctx,
		`DELETE FROM task_dependencies WHERE task_id IN (`+marks+`) OR depends_on IN (`+marks+`)`,
		edgeArgs...); err != nil {
		return fmt.Errorf("delete edges: %w", err)
	}
	if _, err := s.q.ExecContext(ctx, `DELETE FROM tasks WHERE id IN (`+marks+`)`, args...); err != nil {
		return fmt.Errorf("delete tasks: %w", err)
	}
	return nil
}

func (s *tables) InsertEdge(ctx context.Context, e task.Edge) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO task_dependencies (task_id, depends_on, created_at) VALUES (?, ?, ?)`,
		e.TaskID, e.DependsOnID, formatTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert edge %s -> %s: %w", e.TaskID, e.DependsOnID, err)
	}
	return nil
}

func (s *tables) DeleteEdge(ctx context.Context, taskID, dependsOnID string) error {
	res, err := s.q.ExecContext(ctx,
		`DELETE FROM task_dependencies WHERE task_id = ? AND depends_on = ?`, taskID, dependsOnID)
	if err != nil {
		return fmt.Errorf("delete edge %s -> %s: %w", taskID, dependsOnID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete edge %s -> %s: %w", taskID, dependsOnID, err)
	}
	if n == 0 {
		return &task.NotFoundError{Entity: "dependency", ID: taskID + " -> " + dependsOnID}
	}
	return nil
}
