// Package events publishes task-graph change notifications.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Type names a change. Published subjects are "<prefix>.<type>".
type Type string

const (
	ProjectCreated     Type = "project.created"
	TaskCreated        Type = "task.created"
	TaskUpdated        Type = "task.updated"
	TaskDeleted        Type = "task.deleted"
	TaskTransitioned   Type = "task.transitioned"
	TaskUnblocked      Type = "task.unblocked"
	DependencyAdded    Type = "dependency.added"
	DependencyRemoved  Type = "dependency.removed"
	RoadmapSynthesized Type = "roadmap.synthesized"
)

// Event is one committed change.
type Event struct {
	ID         string         `json:"id"`
	Type       Type           `json:"type"`
	ProjectID  string         `json:"projectId"`
	TaskID     string         `json:"taskId,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
	Data       map[string]any `json:"data,omitempty"`
}

// New stamps an event with a ULID and the current time.
func New(t Type, projectID, taskID string, data map[string]any) Event {
	return Event{
		ID:         ulid.Make().String(),
		Type:       t,
		ProjectID:  projectID,
		TaskID:     taskID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// Publisher delivers events after their unit of work has committed.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop drops events. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

func (Noop) Close() error { return nil }

// Memory keeps published events in order, for tests and local inspection.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func (m *Memory) Publish(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *Memory) Close() error { return nil }

// Events returns a copy of everything published so far.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// OfType filters Events by type.
func (m *Memory) OfType(t Type) []Event {
	var out []Event
	for _, e := range m.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
