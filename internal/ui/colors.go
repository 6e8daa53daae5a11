package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/td0m/tracker/pkg/task"
)

const (
	Background = lipgloss.Color("#000")

	Primary   = lipgloss.Color("#fff")
	Secondary = lipgloss.Color("#888")
	Faded     = lipgloss.Color("#555")

	Blue   = lipgloss.Color("#4db7ff")
	Green  = lipgloss.Color("#00a352")
	Red    = lipgloss.Color("#c42912")
	Yellow = lipgloss.Color("#c4b810")
	Orange = lipgloss.Color("#c27510")
)

var statusColors = map[task.Status]lipgloss.Color{
	task.StatusNew:        Secondary,
	task.StatusInProgress: Yellow,
	task.StatusDone:       Green,
}
