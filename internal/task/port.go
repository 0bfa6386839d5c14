package task

import (
	"context"
	"time"
)

// Reader is the query side of the persistence port.
type Reader interface {
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context) ([]Project, error)
	LatestBlueprint(ctx context.Context, projectID string) ([]byte, int, error)

	GetTask(ctx context.Context, id string) (*Task, error)
	// ListTasks returns a project's tasks in creation order.
	ListTasks(ctx context.Context, projectID string, filter Filter) ([]Task, error)
	// ListDependencies returns the tasks that taskID depends on.
	ListDependencies(ctx context.Context, taskID string) ([]Task, error)
	// ListDependents returns the tasks that depend on taskID.
	ListDependents(ctx context.Context, taskID string) ([]Task, error)
	ListSubtasks(ctx context.Context, taskID string) ([]Task, error)
	ListEdges(ctx context.Context, projectID string) ([]Edge, error)

	FindTaskIDsByPrefix(ctx context.Context, prefix string) ([]string, error)
	FindProjectIDsByPrefix(ctx context.Context, prefix string) ([]string, error)
}

// Writer is the mutation side of the port. A Writer is only ever handed out
// inside Repository.Atomic, so everything done through it commits or rolls
// back together.
type Writer interface {
	Reader

	CreateProject(ctx context.Context, p *Project) error
	SetProjectProgress(ctx context.Context, projectID string, progress int, at time.Time) error
	SaveBlueprint(ctx context.Context, projectID string, content []byte, at time.Time) (int, error)

	InsertTask(ctx context.Context, t *Task) error
	// UpdateTask persists t if the stored version still equals t.Version and
	// increments t.Version on success. A mismatch returns *ConflictError.
	UpdateTask(ctx context.Context, t *Task) error
	// DeleteTasks removes the tasks and every edge touching them.
	DeleteTasks(ctx context.Context, ids []string) error

	InsertEdge(ctx context.Context, e Edge) error
	DeleteEdge(ctx context.Context, taskID, dependsOnID string) error
}

// Repository is implemented by storage backends.
type Repository interface {
	Reader
	Atomic(ctx context.Context, fn func(w Writer) error) error
	// View runs fn against one consistent snapshot. Views assembled from
	// several reads go through here so a concurrent unit of work is seen
	// entirely or not at all.
	View(ctx context.Context, fn func(r Reader) error) error
	Close() error
}
