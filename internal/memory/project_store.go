package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/josephgoksu/taskgraph/internal/task"
)

const projectColumns = `id, name, description, progress, created_at, updated_at`

func scanProjectRow(row taskRowScanner) (task.Project, error) {
	var (
		p                    task.Project
		createdAt, updatedAt string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Progress, &createdAt, &updatedAt); err != nil {
		return task.Project{}, err
	}
	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return task.Project{}, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return task.Project{}, err
	}
	return p, nil
}

func (s *tables) CreateProject(ctx context.Context, p *task.Project) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Progress, formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if isPrimaryKeyViolation(err) {
		return fmt.Errorf("insert project %s: %w", p.ID, task.ErrDuplicateID)
	}
	if err != nil {
		return fmt.Errorf("insert project %s: %w", p.ID, err)
	}
	return nil
}

func (s *tables) GetProject(ctx context.Context, id string) (*task.Project, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProjectRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &task.NotFoundError{Entity: "project", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", id, err)
	}
	return &p, nil
}

func (s *tables) ListProjects(ctx context.Context) ([]task.Project, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	projects := []task.Project{}
	for rows.Next() {
		p, err := scanProjectRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := checkRowsErr(rows); err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *tables) SetProjectProgress(ctx context.Context, projectID string, progress int, at time.Time) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE projects SET progress = ?, updated_at = ? WHERE id = ?`,
		progress, formatTime(at), projectID)
	if err != nil {
		return fmt.Errorf("update project %s: %w", projectID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update project %s: %w", projectID, err)
	}
	if n == 0 {
		return &task.NotFoundError{Entity: "project", ID: projectID}
	}
	return nil
}

// SaveBlueprint stores content as the project's next blueprint version.
func (s *tables) SaveBlueprint(ctx context.Context, projectID string, content []byte, at time.Time) (int, error) {
	var next int
	err := s.q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM blueprints WHERE project_id = ?`, projectID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next blueprint version: %w", err)
	}
	if _, err := s.q.ExecContext(ctx,
		`INSERT INTO blueprints (project_id, version, content, created_at) VALUES (?, ?, ?, ?)`,
		projectID, next, string(content), formatTime(at)); err != nil {
		return 0, fmt.Errorf("insert blueprint: %w", err)
	}
	return next, nil
}

// LatestBlueprint returns the newest stored blueprint and its version, or
// (nil, 0, nil) when the project has none.
func (s *tables) LatestBlueprint(ctx context.Context, projectID string) ([]byte, int, error) {
	var (
		content string
		version int
	)
	err := s.q.QueryRowContext(ctx,
		`SELECT content, version FROM blueprints WHERE project_id = ? ORDER BY version DESC LIMIT 1`,
		projectID).Scan(&content, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("latest blueprint: %w", err)
	}
	return []byte(content), version, nil
}
