package ui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/td0m/tracker/pkg/schedule"
	"github.com/td0m/tracker/pkg/task"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	TaskIcon     = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	TaskTitle    = lipgloss.NewStyle().Bold(true)
	SubTaskTitle = lipgloss.NewStyle().Foreground(Secondary)
	TaskKind     = lipgloss.NewStyle().Foreground(Faded).Padding(0, 1, 0, 0)

	TaskDivider = lipgloss.NewStyle().Foreground(Faded).Padding(0, 1).Render("∙")
	TaskTimer   = lipgloss.NewStyle().Foreground(Blue)
)

var statusIcons = map[task.Status]string{
	task.StatusNew:        "•",
	task.StatusInProgress: "◐",
	task.StatusDone:       "✓",
}

var titleCase = cases.Title(language.English)

// StatusLabel renders IN_PROGRESS as "In Progress".
func StatusLabel(s task.Status) string {
	return titleCase.String(strings.ReplaceAll(strings.ToLower(s.String()), "_", " "))
}

// renderTask draws one list row. showKind prefixes the kind for tabs that
// mix tasks, epics and subtasks.
func renderTask(t task.Task, now time.Time, selected, showKind bool) string {
	s := TaskIcon.Copy().Foreground(statusColors[t.Status]).Render(statusIcons[t.Status])
	if showKind {
		s += TaskKind.Render(strings.ToLower(t.Kind.String()))
	}

	title := TaskTitle
	if t.Kind == task.KindSubtask {
		title = SubTaskTitle
	}
	if t.Status == task.StatusDone {
		title = title.Copy().Strikethrough(true)
	}
	if selected {
		title = title.Copy().Background(Faded)
	}
	s += title.Render(t.Title)

	if t.Kind == task.KindEpic {
		s += TaskDivider + lipgloss.NewStyle().Foreground(Secondary).Render(strconv.Itoa(len(t.SubtaskIDs))+" subtasks")
	}
	if t.StartTime != nil {
		s += TaskDivider
		s += lipgloss.NewStyle().Foreground(dueColor(*t.StartTime, now)).
			Render(schedule.Describe(*t.StartTime, now) + t.StartTime.Format(" 15:04"))
	}
	if t.Duration != nil {
		s += formatDuration(*t.Duration)
	}
	return s
}

func dueColor(t, now time.Time) lipgloss.Color {
	switch days := t.Sub(now).Hours() / 24; {
	case days < 0:
		return Faded
	case days <= 2:
		return Red
	case days <= 14:
		return Orange
	default:
		return Secondary
	}
}

func formatDuration(d time.Duration) string {
	bracket := lipgloss.NewStyle().Foreground(Faded).Render
	return bracket(" (") + TaskTimer.Render(d.String()) + bracket(")")
}
