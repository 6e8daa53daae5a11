package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/td0m/tracker/pkg/schedule"
	"github.com/td0m/tracker/pkg/task"
)

const (
	headerHeight = 3
	footerHeight = 2
)

const (
	tabTasks = iota
	tabEpics
	tabSubtasks
	tabHistory
	tabPrioritized
)

var tabNames = []string{"Tasks", "Epics", "Subtasks", "History", "Prioritized"}

type mode int

const (
	modeNormal mode = iota
	modeTitle
	modeSchedule
)

var (
	errorLine  = lipgloss.NewStyle().Foreground(Red)
	detailLine = lipgloss.NewStyle().Foreground(Secondary)
)

// App is the terminal UI over a task.Manager.
type App struct {
	m   task.Manager
	now func() time.Time

	mode      mode
	viewport  viewport.Model
	nameinput textinput.Model
	schedule  schedule.Model
	tabs      Tabs

	// creating is the kind a title prompt creates, or -1 when it renames.
	creating task.Kind
	// epic owns a subtask being created.
	epic task.ID

	cursor  int
	visible []task.Task

	status string
	err    error
}

var _ tea.Model = &App{}

func NewApp(m task.Manager, now func() time.Time) *App {
	if now == nil {
		now = time.Now
	}
	i := textinput.NewModel()
	i.Focus()
	i.Prompt = ""
	i.Width = 40

	a := &App{
		m:         m,
		now:       now,
		nameinput: i,
		schedule:  schedule.NewModel(now),
		tabs:      NewTabs(tabNames),
	}
	a.refresh()
	return a
}

// Init is the first function that will be called. It returns an optional
// initial command. To not perform an initial command return nil.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update is called when a message is received. Use it to inspect messages
// and, in response, update the model and/or send a command.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.viewport.Width = msg.Width
		a.viewport.Height = msg.Height - headerHeight - footerHeight
		a.tabs.Width = msg.Width
		a.setCursor(a.cursor)
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return a, tea.Quit
		case tea.KeyEsc:
			a.mode = modeNormal
		default:
			cmd = a.keyUpdate(msg)
		}
	}
	a.render()
	return a, cmd
}

// handle keys differently based on the current mode
func (a *App) keyUpdate(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch a.mode {
	case modeTitle:
		if msg.Type == tea.KeyEnter {
			a.submitTitle()
			return nil
		}
		a.nameinput, cmd = a.nameinput.Update(msg)
		return cmd
	case modeSchedule:
		if msg.Type == tea.KeyEnter {
			a.submitSchedule()
			return nil
		}
		a.schedule, cmd = a.schedule.Update(msg)
		return cmd
	}

	a.status, a.err = "", nil
	switch msg.String() {
	case "j":
		a.setCursor(a.cursor + 1)
	case "k":
		a.setCursor(a.cursor - 1)
	case "g":
		a.setCursor(0)
	case "G":
		a.setCursor(len(a.visible) - 1)
	case "tab":
		a.tabs, _ = a.tabs.Update(msg)
		a.setTab(a.tabs.Value())
	case "alt+1", "alt+2", "alt+3", "alt+4", "alt+5":
		a.setTab(int(msg.Runes[0] - '1'))
	case "enter":
		a.view()
	case "t":
		a.cycleStatus()
	case "o":
		a.prompt(task.KindTask, "")
	case "e":
		a.prompt(task.KindEpic, "")
	case "s":
		a.promptSubtask()
	case "i":
		if t, ok := a.atCursor(); ok {
			a.prompt(-1, t.Title)
		}
	case "p":
		a.promptSchedule()
	case "x":
		a.unschedule()
	case tea.KeyDelete.String():
		a.delete()
	}
	return nil
}

func (a *App) setTab(i int) {
	a.tabs.Set(i)
	a.refresh()
	a.setCursor(0)
}

// refresh reloads the rows of the current tab and the counts of all of them.
func (a *App) refresh() {
	lists := [...]func() []task.Task{
		tabTasks:       a.m.Tasks,
		tabEpics:       a.m.Epics,
		tabSubtasks:    a.m.Subtasks,
		tabHistory:     a.m.History,
		tabPrioritized: a.m.Prioritized,
	}
	for i, list := range lists {
		rows := list()
		a.tabs.Count(i, len(rows))
		if i == a.tabs.Value() {
			a.visible = rows
		}
	}
	a.tabs.Info = a.now().Format("Mon 02 Jan")
	a.setCursor(a.cursor)
}

func (a *App) setCursor(value int) {
	a.cursor = min(max(value, 0), max(len(a.visible)-1, 0))
	if a.viewport.Height <= 0 {
		return
	}
	if a.cursor >= a.viewport.YOffset+a.viewport.Height {
		a.viewport.YOffset = a.cursor - a.viewport.Height + 1
	}
	if a.cursor < a.viewport.YOffset {
		a.viewport.YOffset = a.cursor
	}
}

func (a *App) atCursor() (task.Task, bool) {
	// if no items visible
	if a.cursor >= len(a.visible) {
		return task.Task{}, false
	}
	return a.visible[a.cursor], true
}

// report shows err in the status line. It returns whether the change
// happened, which is true for a failed save since the store keeps it.
func (a *App) report(err error) bool {
	a.err = err
	a.refresh()
	return err == nil || errors.Is(err, task.ErrPersistence)
}

func (a *App) get(id task.ID, kind task.Kind) (task.Task, error) {
	switch kind {
	case task.KindEpic:
		return a.m.GetEpic(id)
	case task.KindSubtask:
		return a.m.GetSubtask(id)
	default:
		return a.m.GetTask(id)
	}
}

func (a *App) update(t task.Task) error {
	var err error
	switch t.Kind {
	case task.KindEpic:
		_, err = a.m.UpdateEpic(t)
	case task.KindSubtask:
		_, err = a.m.UpdateSubtask(t)
	default:
		_, err = a.m.UpdateTask(t)
	}
	return err
}

func (a *App) view() {
	t, ok := a.atCursor()
	if !ok {
		return
	}
	t, err := a.get(t.ID, t.Kind)
	if err != nil {
		a.report(err)
		return
	}
	parts := []string{fmt.Sprintf("#%d %s", t.ID, StatusLabel(t.Status))}
	if t.Description != "" {
		parts = append(parts, t.Description)
	}
	if t.Kind == task.KindSubtask {
		parts = append(parts, fmt.Sprintf("epic #%d", t.EpicID))
	}
	if end := t.EndTime(); end != nil {
		parts = append(parts, "ends "+end.Format("02/01 15:04"))
	}
	a.status = strings.Join(parts, " ∙ ")
	a.refresh()
}

func (a *App) cycleStatus() {
	t, ok := a.atCursor()
	if !ok {
		return
	}
	if t.Kind == task.KindEpic {
		a.status = "epic status follows its subtasks"
		return
	}
	t.Status = t.Status.Next()
	a.report(a.update(t))
}

func (a *App) prompt(kind task.Kind, value string) {
	a.mode = modeTitle
	a.creating = kind
	a.nameinput.SetValue(value)
	a.nameinput.SetCursor(len(value))
}

func (a *App) promptSubtask() {
	t, ok := a.atCursor()
	switch {
	case ok && t.Kind == task.KindEpic:
		a.epic = t.ID
	case ok && t.Kind == task.KindSubtask:
		a.epic = t.EpicID
	default:
		a.status = "select an epic to add a subtask"
		return
	}
	a.prompt(task.KindSubtask, "")
}

func (a *App) submitTitle() {
	a.mode = modeNormal
	title := strings.TrimSpace(a.nameinput.Value())
	if title == "" {
		return
	}
	var err error
	switch a.creating {
	case task.KindTask:
		_, err = a.m.CreateTask(task.New(title, ""))
	case task.KindEpic:
		_, err = a.m.CreateEpic(task.NewEpic(title, ""))
	case task.KindSubtask:
		_, err = a.m.CreateSubtask(task.NewSubtask(a.epic, title, ""))
	default:
		t, ok := a.atCursor()
		if !ok {
			return
		}
		t.Title = title
		err = a.update(t)
	}
	if a.report(err) && a.creating >= 0 {
		a.setCursor(len(a.visible) - 1)
	}
}

func (a *App) promptSchedule() {
	t, ok := a.atCursor()
	if !ok {
		return
	}
	if t.Kind == task.KindEpic {
		a.status = "epic schedule follows its subtasks"
		return
	}
	a.mode = modeSchedule
	a.schedule.SetValue(t.StartTime, t.Duration)
}

func (a *App) submitSchedule() {
	start, d, err := a.schedule.Value()
	if err != nil {
		a.err = err
		return
	}
	a.mode = modeNormal
	t, ok := a.atCursor()
	if !ok {
		return
	}
	t.StartTime, t.Duration = start, d
	a.report(a.update(t))
}

func (a *App) unschedule() {
	t, ok := a.atCursor()
	if !ok || t.Kind == task.KindEpic {
		return
	}
	t.StartTime, t.Duration = nil, nil
	a.report(a.update(t))
}

func (a *App) delete() {
	t, ok := a.atCursor()
	if !ok {
		return
	}
	var err error
	switch t.Kind {
	case task.KindEpic:
		err = a.m.DeleteEpic(t.ID)
	case task.KindSubtask:
		err = a.m.DeleteSubtask(t.ID)
	default:
		err = a.m.DeleteTask(t.ID)
	}
	a.report(err)
}

func (a *App) render() {
	a.viewport.SetContent(a.viewTasks())
}

func (a *App) viewTasks() string {
	mixed := a.tabs.Value() == tabHistory || a.tabs.Value() == tabPrioritized
	now := a.now()
	var b strings.Builder
	for i, t := range a.visible {
		if a.mode == modeTitle && a.creating < 0 && i == a.cursor {
			b.WriteString(TaskIcon.Render("•") + a.nameinput.View() + "\n")
			continue
		}
		b.WriteString(renderTask(t, now, i == a.cursor, mixed))
		b.WriteString("\n")
	}
	if len(a.visible) == 0 {
		b.WriteString(detailLine.Render("  nothing here yet"))
	}
	return b.String()
}

// View renders the program's UI, which is just a string. The view is
// rendered after every Update.
func (a *App) View() string {
	statusline := ""
	switch {
	case a.mode == modeTitle && a.creating >= 0:
		statusline = "new " + strings.ToLower(a.creating.String()) + ": " + a.nameinput.View()
	case a.mode == modeSchedule:
		statusline = a.schedule.View()
	}
	if a.err != nil {
		statusline += errorLine.Render(" " + a.err.Error())
	} else if a.status != "" {
		statusline += detailLine.Render(a.status)
	}
	return a.tabs.View() + a.viewport.View() + "\n" + statusline
}

// Status returns the status line text and the last error.
func (a *App) Status() (string, error) {
	return a.status, a.err
}
