package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matryer/is"
	"github.com/td0m/tracker/pkg/task"
)

var fixedNow = time.Date(2025, time.June, 5, 14, 30, 0, 0, time.UTC)

func newTestApp(m task.Manager) *App {
	a := NewApp(m, func() time.Time { return fixedNow })
	a.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return a
}

func press(a *App, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "delete":
			msg = tea.KeyMsg{Type: tea.KeyDelete}
		default:
			if strings.HasPrefix(k, "alt+") {
				msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(strings.TrimPrefix(k, "alt+")), Alt: true}
			} else {
				msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
			}
		}
		a.Update(msg)
	}
}

// typeText sends s one rune at a time.
func typeText(a *App, s string) {
	for _, r := range s {
		press(a, string(r))
	}
}

func TestApp_CreateTask(t *testing.T) {
	is := is.New(t)
	s := task.NewStore()
	a := newTestApp(s)

	press(a, "o")
	typeText(a, "write docs")
	press(a, "enter")

	tasks := s.Tasks()
	is.Equal(len(tasks), 1)
	is.Equal(tasks[0].Title, "write docs")
	is.True(strings.Contains(a.View(), "write docs"))

	// empty titles are dropped
	press(a, "o", "enter")
	is.Equal(len(s.Tasks()), 1)

	// esc cancels
	press(a, "o")
	typeText(a, "nope")
	press(a, "esc")
	is.Equal(len(s.Tasks()), 1)
}

func TestApp_CycleStatusAndRename(t *testing.T) {
	is := is.New(t)
	s := task.NewStore()
	created, _ := s.CreateTask(task.New("a", ""))
	a := newTestApp(s)

	press(a, "t")
	got, _ := s.GetTask(created.ID)
	is.Equal(got.Status, task.StatusInProgress)

	press(a, "t", "t")
	got, _ = s.GetTask(created.ID)
	is.Equal(got.Status, task.StatusNew)

	press(a, "i")
	typeText(a, "bc")
	press(a, "enter")
	got, _ = s.GetTask(created.ID)
	is.Equal(got.Title, "abc")
}

func TestApp_EpicsAndSubtasks(t *testing.T) {
	is := is.New(t)
	s := task.NewStore()
	a := newTestApp(s)

	press(a, "alt+2", "e")
	typeText(a, "release")
	press(a, "enter")
	is.Equal(len(s.Epics()), 1)

	press(a, "s")
	typeText(a, "tag")
	press(a, "enter")
	press(a, "s")
	typeText(a, "announce")
	press(a, "enter")

	epic := s.Epics()[0]
	is.Equal(len(epic.SubtaskIDs), 2)

	// epic status cannot be cycled directly
	press(a, "g", "t")
	status, err := a.Status()
	is.NoErr(err)
	is.True(strings.Contains(status, "epic"))

	press(a, "alt+3", "t", "t")
	epic, _ = s.GetEpic(epic.ID)
	is.Equal(epic.Status, task.StatusInProgress)

	// a subtask needs an epic
	press(a, "alt+1", "s")
	status, _ = a.Status()
	is.True(strings.Contains(status, "select an epic"))

	press(a, "alt+2", "delete")
	is.Equal(len(s.Epics()), 0)
	is.Equal(len(s.Subtasks()), 0)
}

func TestApp_Schedule(t *testing.T) {
	is := is.New(t)
	s := task.NewStore()
	first, _ := s.CreateTask(task.New("first", ""))
	second, _ := s.CreateTask(task.New("second", ""))
	a := newTestApp(s)

	press(a, "p")
	typeText(a, "tomorrow 10:00 90m")
	press(a, "enter")
	got, _ := s.GetTask(first.ID)
	is.True(got.StartTime != nil)
	is.Equal(*got.StartTime, time.Date(2025, time.June, 6, 10, 0, 0, 0, time.UTC))
	is.Equal(*got.Duration, 90*time.Minute)

	// an overlapping schedule is reported, not applied
	press(a, "j", "p")
	typeText(a, "tomorrow 11:00 1h")
	press(a, "enter")
	_, err := a.Status()
	is.True(errors.Is(err, task.ErrConflict))
	got, _ = s.GetTask(second.ID)
	is.Equal(got.StartTime, nil)

	// unparsable input keeps the prompt open
	press(a, "p")
	typeText(a, "someday")
	press(a, "enter")
	_, err = a.Status()
	is.True(err != nil)
	press(a, "esc")

	press(a, "alt+5")
	is.True(strings.Contains(a.View(), "first"))
	is.True(!strings.Contains(a.View(), "second"))

	press(a, "x")
	is.Equal(len(s.Prioritized()), 0)
}

func TestApp_ViewRecordsHistory(t *testing.T) {
	is := is.New(t)
	s := task.NewStore()
	_, _ = s.CreateTask(task.New("a", "first task"))
	_, _ = s.CreateTask(task.New("b", ""))
	a := newTestApp(s)

	press(a, "j", "enter", "k", "enter")
	status, err := a.Status()
	is.NoErr(err)
	is.True(strings.Contains(status, "first task"))

	hist := s.History()
	is.Equal(len(hist), 2)
	is.Equal(hist[0].Title, "b")
	is.Equal(hist[1].Title, "a")

	press(a, "tab", "tab", "tab")
	is.Equal(a.tabs.Value(), tabHistory)
	is.Equal(len(a.visible), 2)
}

func TestStatusLabel(t *testing.T) {
	is := is.New(t)
	is.Equal(StatusLabel(task.StatusInProgress), "In Progress")
	is.Equal(StatusLabel(task.StatusDone), "Done")
}

func TestTabs_Counts(t *testing.T) {
	is := is.New(t)
	s := task.NewStore()
	_, _ = s.CreateTask(task.New("a", ""))
	e, _ := s.CreateEpic(task.NewEpic("e", ""))
	_, _ = s.CreateSubtask(task.NewSubtask(e.ID, "s", ""))
	a := newTestApp(s)

	is.Equal(a.tabs.counts, []int{1, 1, 1, 0, 0})
	is.True(strings.Contains(a.tabs.View(), "Thu 05 Jun"))

	press(a, "tab", "tab", "tab", "tab", "tab")
	is.Equal(a.tabs.Value(), tabTasks)
}
