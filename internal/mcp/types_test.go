package mcp

import "testing"

func TestActionValidity(t *testing.T) {
	for _, a := range ValidTaskActions() {
		if !a.IsValid() {
			t.Errorf("task action %q should be valid", a)
		}
	}
	for _, a := range ValidProjectActions() {
		if !a.IsValid() {
			t.Errorf("project action %q should be valid", a)
		}
	}
	if TaskAction("next").IsValid() {
		t.Error("next is not a task action")
	}
	if ProjectAction("delete").IsValid() {
		t.Error("delete is not a project action")
	}
	if got := len(ValidTaskActions()); got != 9 {
		t.Errorf("expected 9 task actions, got %d", got)
	}
}
