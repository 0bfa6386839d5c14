package util

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/josephgoksu/taskgraph/internal/task"
)

func TestShortID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		n    int
		want string
	}{
		{"default length truncates", "task-abcdef12", 0, "task-abc"},
		{"negative uses default", "task-abcdef12", -1, "task-abc"},
		{"explicit length", "task-abcdef12", 10, "task-abcde"},
		{"shorter than n", "proj-ab", 20, "proj-ab"},
		{"empty", "", 8, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShortID(tt.id, tt.n); got != tt.want {
				t.Errorf("ShortID(%q, %d) = %q, want %q", tt.id, tt.n, got, tt.want)
			}
		})
	}
}

type fakeFinder struct {
	tasks    []string
	projects []string
	err      error
}

func match(ids []string, prefix string) []string {
	var out []string
	for _, id := range ids {
		if strings.HasPrefix(id, prefix) {
			out = append(out, id)
		}
	}
	return out
}

func (f fakeFinder) FindTaskIDsByPrefix(_ context.Context, prefix string) ([]string, error) {
	return match(f.tasks, prefix), f.err
}

func (f fakeFinder) FindProjectIDsByPrefix(_ context.Context, prefix string) ([]string, error) {
	return match(f.projects, prefix), f.err
}

func TestResolveTaskID(t *testing.T) {
	f := fakeFinder{tasks: []string{"task-abc12345", "task-abd99999", "task-ff000000"}}
	ctx := context.Background()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"full id", "task-abc12345", "task-abc12345", nil},
		{"prefix with entity", "task-ff", "task-ff000000", nil},
		{"bare prefix", "abc", "task-abc12345", nil},
		{"ambiguous", "ab", "", task.ErrValidation},
		{"unknown", "zzz", "", task.ErrNotFound},
		{"empty", "  ", "", task.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveTaskID(ctx, f, tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveTaskID_AmbiguousListsCandidates(t *testing.T) {
	f := fakeFinder{tasks: []string{"task-a1", "task-a2", "task-a3"}}
	_, err := ResolveTaskID(context.Background(), f, "a")

	var amb *AmbiguousIDError
	if !errors.As(err, &amb) {
		t.Fatalf("expected *AmbiguousIDError, got %T", err)
	}
	if len(amb.Candidates) != 3 || !strings.Contains(err.Error(), "task-a2") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestResolveTaskID_ExactWinsOverLongerMatches(t *testing.T) {
	f := fakeFinder{tasks: []string{"task-abc", "task-abcd"}}
	got, err := ResolveTaskID(context.Background(), f, "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "task-abc" {
		t.Errorf("got %q, want task-abc", got)
	}
}

func TestResolveProjectID(t *testing.T) {
	f := fakeFinder{projects: []string{"proj-1234abcd"}}
	got, err := ResolveProjectID(context.Background(), f, "1234")
	if err != nil || got != "proj-1234abcd" {
		t.Fatalf("got %q, %v", got, err)
	}

	boom := errors.New("db down")
	_, err = ResolveProjectID(context.Background(), fakeFinder{err: boom}, "x")
	if !errors.Is(err, boom) {
		t.Errorf("expected store error, got %v", err)
	}
}
