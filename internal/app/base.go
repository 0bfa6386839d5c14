// Package app is the single entry point for task-graph operations. The CLI,
// the HTTP API and the MCP server are thin adapters over TaskApp and
// ProjectApp.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/josephgoksu/taskgraph/internal/events"
	"github.com/josephgoksu/taskgraph/internal/metrics"
	"github.com/josephgoksu/taskgraph/internal/task"
	"github.com/josephgoksu/taskgraph/internal/telemetry"
)

// Context holds the dependencies shared by every app service.
type Context struct {
	Repo      task.Repository
	Locks     *task.ProjectLocks
	Logger    *slog.Logger
	Events    events.Publisher
	Metrics   *metrics.Metrics
	Telemetry telemetry.Client
	Now       func() time.Time
}

type Option func(*Context)

func WithLogger(l *slog.Logger) Option {
	return func(c *Context) { c.Logger = l }
}

func WithEvents(p events.Publisher) Option {
	return func(c *Context) { c.Events = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Context) { c.Metrics = m }
}

func WithTelemetry(t telemetry.Client) Option {
	return func(c *Context) { c.Telemetry = t }
}

// WithClock overrides time.Now for stored timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Context) { c.Now = now }
}

// NewContext wires repo with no-op publishers unless options say otherwise.
func NewContext(repo task.Repository, opts ...Option) *Context {
	c := &Context{
		Repo:      repo,
		Locks:     task.NewProjectLocks(),
		Logger:    slog.Default(),
		Events:    events.Noop{},
		Telemetry: telemetry.NoopClient{},
		Now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// mutate runs fn as one unit of work: the project lock is held across a
// single store transaction, so concurrent requests against the same project
// are serialized and a failed fn leaves nothing behind.
func (c *Context) mutate(ctx context.Context, projectID string, fn func(g *task.Graph) error) error {
	return c.mutateTx(ctx, projectID, func(g *task.Graph, _ task.Writer) error { return fn(g) })
}

// mutateTx is mutate for callers that also write outside the graph. Reads
// inside fn must go through w: the store has a single connection.
func (c *Context) mutateTx(ctx context.Context, projectID string, fn func(g *task.Graph, w task.Writer) error) error {
	waitStart := time.Now()
	unlock := c.Locks.Lock(projectID)
	defer unlock()
	c.Metrics.ObserveLockWait(time.Since(waitStart))

	return c.Repo.Atomic(ctx, func(w task.Writer) error {
		return fn(task.NewGraph(w, task.WithClock(c.Now), task.WithLogger(c.Logger)), w)
	})
}

// finish records the outcome of an operation.
func (c *Context) finish(op string, started time.Time, err error, attrs ...any) {
	outcome := "ok"
	if err != nil {
		outcome = task.Kind(err)
	}
	c.Metrics.ObserveOperation(op, outcome, started)

	switch {
	case err == nil:
		c.Logger.Debug("operation completed", append([]any{"op", op, "duration", time.Since(started)}, attrs...)...)
	case outcome == task.CodeInternal:
		c.Logger.Error("operation failed", append([]any{"op", op, "error", err}, attrs...)...)
		c.Telemetry.Track(telemetry.EventOperationFailed, telemetry.Properties{"operation": op})
	default:
		c.Logger.Info("operation rejected", append([]any{"op", op, "code", outcome, "error", err}, attrs...)...)
	}
}

// publish sends committed changes. Delivery failures are logged, never
// returned: the change is already durable.
func (c *Context) publish(ctx context.Context, evs ...events.Event) {
	for _, e := range evs {
		if err := c.Events.Publish(ctx, e); err != nil {
			c.Logger.Warn("event publish failed", "type", e.Type, "task_id", e.TaskID, "error", err)
		}
	}
}

// projectOf returns the project a task belongs to. A task never moves
// between projects, so this is safe to read before taking the lock.
func (c *Context) projectOf(ctx context.Context, taskID string) (string, error) {
	t, err := c.Repo.GetTask(ctx, taskID)
	if err != nil {
		return "", err
	}
	return t.ProjectID, nil
}
