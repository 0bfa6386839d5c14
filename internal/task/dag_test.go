package task

import (
	"errors"
	"reflect"
	"testing"
)

func edge(from, to string) Edge { return Edge{TaskID: from, DependsOnID: to} }

func TestFindPath(t *testing.T) {
	// c -> b -> a, d -> a
	edges := []Edge{edge("c", "b"), edge("b", "a"), edge("d", "a")}

	tests := []struct {
		name     string
		from, to string
		want     []string
	}{
		{"direct", "b", "a", []string{"b", "a"}},
		{"transitive", "c", "a", []string{"c", "b", "a"}},
		{"same node", "a", "a", []string{"a"}},
		{"wrong direction", "a", "c", nil},
		{"unrelated", "d", "c", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindPath(edges, tt.from, tt.to)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindPath(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestVerifyDAG_Valid(t *testing.T) {
	edges := []Edge{edge("2", "1"), edge("3", "2"), edge("3", "1")}
	if err := VerifyDAG(edges); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestVerifyDAG_Cycle(t *testing.T) {
	edges := []Edge{edge("1", "2"), edge("2", "3"), edge("3", "1")}
	err := VerifyDAG(edges)
	if err == nil {
		t.Fatal("Expected cycle error, got nil")
	}
	if !errors.Is(err, ErrCyclicDependency) {
		t.Fatalf("Expected ErrCyclicDependency, got %v", err)
	}
	var cyc *CyclicDependencyError
	if !errors.As(err, &cyc) {
		t.Fatalf("Expected *CyclicDependencyError, got %T", err)
	}
	if len(cyc.Path) != 3 {
		t.Errorf("cycle path = %v, want 3 nodes", cyc.Path)
	}
}

func TestVerifyDAG_SelfLoop(t *testing.T) {
	if err := VerifyDAG([]Edge{edge("1", "1")}); err == nil {
		t.Error("Expected self-loop to be reported as a cycle")
	}
}
