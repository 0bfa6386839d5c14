package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subjects []string
	payloads [][]byte
	drained  int
	err      error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func (f *fakeConn) Drain() error {
	f.drained++
	return nil
}

func TestNew(t *testing.T) {
	e := New(TaskTransitioned, "proj-1", "task-1", map[string]any{"to": "COMPLETED"})
	_, err := ulid.Parse(e.ID)
	require.NoError(t, err)
	assert.Equal(t, TaskTransitioned, e.Type)
	assert.False(t, e.OccurredAt.IsZero())

	other := New(TaskTransitioned, "proj-1", "task-1", nil)
	assert.NotEqual(t, e.ID, other.ID)
}

func TestNATSPublisher_Publish(t *testing.T) {
	fc := &fakeConn{}
	p := newNATSPublisher(fc, "acme.tasks.")

	e := New(TaskUnblocked, "proj-1", "task-9", map[string]any{"cause": "task-1"})
	require.NoError(t, p.Publish(context.Background(), e))

	require.Len(t, fc.subjects, 1)
	assert.Equal(t, "acme.tasks.task.unblocked", fc.subjects[0])

	var decoded Event
	require.NoError(t, json.Unmarshal(fc.payloads[0], &decoded))
	assert.Equal(t, e.ID, decoded.ID)
	assert.Equal(t, "task-9", decoded.TaskID)
	assert.Equal(t, "task-1", decoded.Data["cause"])
}

func TestNATSPublisher_DefaultPrefix(t *testing.T) {
	p := newNATSPublisher(&fakeConn{}, "  ")
	assert.Equal(t, "taskgraph.project.created", p.Subject(ProjectCreated))
}

func TestNATSPublisher_Errors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fc := &fakeConn{}
	p := newNATSPublisher(fc, "")
	assert.ErrorIs(t, p.Publish(ctx, New(TaskCreated, "p", "t", nil)), context.Canceled)
	assert.Empty(t, fc.subjects)

	broken := errors.New("connection closed")
	p = newNATSPublisher(&fakeConn{err: broken}, "")
	assert.ErrorIs(t, p.Publish(context.Background(), New(TaskCreated, "p", "t", nil)), broken)
}

func TestNATSPublisher_Close(t *testing.T) {
	fc := &fakeConn{}
	p := newNATSPublisher(fc, "")
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, fc.drained)
	assert.Error(t, p.Publish(context.Background(), New(TaskCreated, "p", "t", nil)))
}

func TestMemory(t *testing.T) {
	var m Memory
	ctx := context.Background()
	require.NoError(t, m.Publish(ctx, New(TaskCreated, "p", "a", nil)))
	require.NoError(t, m.Publish(ctx, New(TaskUnblocked, "p", "b", nil)))
	require.NoError(t, m.Publish(ctx, New(TaskUnblocked, "p", "c", nil)))

	assert.Len(t, m.Events(), 3)
	unblocked := m.OfType(TaskUnblocked)
	require.Len(t, unblocked, 2)
	assert.Equal(t, "b", unblocked[0].TaskID)

	var n Noop
	assert.NoError(t, n.Publish(ctx, Event{}))
	assert.NoError(t, n.Close())
}
