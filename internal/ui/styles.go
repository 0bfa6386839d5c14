package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/josephgoksu/taskgraph/internal/task"
)

var (
	ColorPrimary   = lipgloss.Color("205") // Pink
	ColorSecondary = lipgloss.Color("241") // Gray
	ColorSuccess   = lipgloss.Color("42")  // Green
	ColorError     = lipgloss.Color("160") // Red
	ColorWarning   = lipgloss.Color("214") // Orange
	ColorText      = lipgloss.Color("252")
	ColorCyan      = lipgloss.Color("87")
	ColorBlue      = lipgloss.Color("75")

	StyleTitle   = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
	StyleSubtle  = lipgloss.NewStyle().Foreground(ColorSecondary)
	StylePrimary = lipgloss.NewStyle().Foreground(ColorPrimary)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleText    = lipgloss.NewStyle().Foreground(ColorText)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true).
			Padding(0, 1)

	StyleSectionTitle = lipgloss.NewStyle().
				Foreground(ColorPrimary).
				Bold(true).
				Underline(true)

	StyleCritical = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
)

var statusStyles = map[task.Status]lipgloss.Style{
	task.StatusPending:    lipgloss.NewStyle().Foreground(ColorText),
	task.StatusInProgress: lipgloss.NewStyle().Foreground(ColorCyan).Bold(true),
	task.StatusBlocked:    lipgloss.NewStyle().Foreground(ColorWarning),
	task.StatusCompleted:  lipgloss.NewStyle().Foreground(ColorSuccess),
	task.StatusCancelled:  lipgloss.NewStyle().Foreground(ColorSecondary).Strikethrough(true),
}

var priorityStyles = map[task.Priority]lipgloss.Style{
	task.PriorityLow:      StyleSubtle,
	task.PriorityMedium:   StyleText,
	task.PriorityHigh:     StyleWarning,
	task.PriorityCritical: StyleCritical,
}

// StatusStyle returns the style for s, plain text for unknown values.
func StatusStyle(s task.Status) lipgloss.Style {
	if st, ok := statusStyles[s]; ok {
		return st
	}
	return StyleText
}

func PriorityStyle(p task.Priority) lipgloss.Style {
	if st, ok := priorityStyles[p]; ok {
		return st
	}
	return StyleText
}

// StatusIcon is a one-rune marker for list output.
func StatusIcon(s task.Status) string {
	switch s {
	case task.StatusCompleted:
		return "✓"
	case task.StatusInProgress:
		return "▶"
	case task.StatusBlocked:
		return "⏸"
	case task.StatusCancelled:
		return "✗"
	default:
		return "○"
	}
}

// Icon returns a styled icon string
func Icon(icon string, style lipgloss.Style) string {
	return style.Render(icon)
}
