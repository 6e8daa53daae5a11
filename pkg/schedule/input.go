package schedule

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	indicator = lipgloss.NewStyle().Padding(0, 1).Bold(true)
	checkmark = indicator.Copy().
			Foreground(lipgloss.AdaptiveColor{Light: "#00ad3b", Dark: "#73F59F"}).
			Render("✓")

	cross = indicator.Copy().
		Foreground(lipgloss.AdaptiveColor{Light: "", Dark: "#FF5047"}).
		Render("✗")

	faded = lipgloss.AdaptiveColor{Light: "#666", Dark: "#999"}
)

// Model is a single line input that parses a schedule as it is typed.
type Model struct {
	i        textinput.Model
	now      func() time.Time
	start    *time.Time
	duration *time.Duration
	err      error
}

func NewModel(now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	i := textinput.NewModel()
	i.Focus()
	i.CharLimit = 40
	i.Prompt = ""
	i.Placeholder = "tomorrow 10:00 90m"
	return Model{i: i, now: now}
}

// Init is the first function that will be called. It returns an optional
// initial command. To not perform an initial command return nil.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update is called when a message is received. Use it to inspect messages
// and, in response, update the model and/or send a command.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.i, cmd = m.i.Update(msg)
		m.parse()
		return m, cmd
	}
	return m, nil
}

func (m *Model) parse() {
	start, d, err := Parse(m.i.Value(), m.now())
	if err != nil {
		m.start, m.duration, m.err = nil, nil, err
		return
	}
	m.start, m.duration, m.err = &start, d, nil
}

// View renders the program's UI, which is just a string. The view is
// rendered after every Update.
func (m Model) View() string {
	mark := cross
	if m.i.Value() == "" {
		mark = ""
	} else if m.start != nil {
		mark = checkmark + " " + Describe(*m.start, m.now()) + m.start.Format(" 15:04")
		if m.duration != nil {
			mark += " for " + m.duration.String()
		}
	}
	return lipgloss.NewStyle().Foreground(faded).Render("schedule: ") + m.i.View() + mark
}

// Value returns the parsed schedule, or the parse error of the current text.
func (m Model) Value() (*time.Time, *time.Duration, error) {
	return m.start, m.duration, m.err
}

func (m *Model) SetValue(start *time.Time, d *time.Duration) {
	if start == nil {
		m.i.SetValue("")
		m.start, m.duration, m.err = nil, nil, ErrEmpty
		return
	}
	m.i.SetValue(Format(*start, d))
	m.parse()
}
