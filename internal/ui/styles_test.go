package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/josephgoksu/taskgraph/internal/task"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestStyles(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI256)

	out := StyleSuccess.Render("Test")
	assert.Contains(t, out, "Test")
	assert.NotEqual(t, "Test", out, "Style should add ANSI codes when forced")
}

func TestStatusStyle_CoversEveryStatus(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI256)

	for _, s := range task.ValidStatuses() {
		out := StatusStyle(s).Render("x")
		assert.NotEqual(t, "x", out, "status %s has no style", s)
	}
	assert.Equal(t, StyleText.Render("x"), StatusStyle("UNKNOWN").Render("x"))
}

func TestStatusIcon(t *testing.T) {
	assert.Equal(t, "✓", StatusIcon(task.StatusCompleted))
	assert.Equal(t, "○", StatusIcon(task.StatusPending))
	assert.Equal(t, "○", StatusIcon("weird"))
}

func TestIcon(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI256)

	out := Icon("X", StyleError)
	assert.Contains(t, out, "X")
	assert.NotEqual(t, "X", out)
}
