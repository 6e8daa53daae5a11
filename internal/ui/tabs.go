package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	tabContainer = lipgloss.NewStyle().Padding(1, 1)
	activeTab    = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	inactiveTab  = lipgloss.NewStyle().Foreground(Secondary)
	tabCount     = lipgloss.NewStyle().Foreground(Faded)
	tabDivider   = lipgloss.NewStyle().Foreground(Faded)
)

// Tabs is the header row. Each tab shows how many rows it currently holds;
// Info is right aligned.
type Tabs struct {
	names  []string
	counts []int
	i      int

	Width int
	Info  string
}

func NewTabs(names []string) Tabs {
	return Tabs{names: names, counts: make([]int, len(names))}
}

func (m Tabs) Init() tea.Cmd {
	return nil
}

// Update moves to the next tab on tab, wrapping around.
func (m Tabs) Update(msg tea.Msg) (Tabs, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyTab {
		m.Set((m.i + 1) % len(m.names))
	}
	return m, nil
}

func (m Tabs) View() string {
	labels := make([]string, len(m.names))
	for i, name := range m.names {
		style := inactiveTab
		if i == m.i {
			style = activeTab
		}
		labels[i] = style.Render(name) + tabCount.Render(fmt.Sprintf(" %d", m.counts[i]))
	}
	left := strings.Join(labels, tabDivider.Render(" | "))
	gap := m.Width - 2 - lipgloss.Width(left) - lipgloss.Width(m.Info)
	space := lipgloss.NewStyle().Width(max(gap, 0)).Render("")
	return tabContainer.Render(lipgloss.JoinHorizontal(lipgloss.Center, left, space, m.Info)) + "\n"
}

func (m Tabs) Value() int {
	return m.i
}

// Set clamps i into range.
func (m *Tabs) Set(i int) {
	m.i = min(max(i, 0), len(m.names)-1)
}

// Count records how many rows tab i holds.
func (m *Tabs) Count(i, n int) {
	if i >= 0 && i < len(m.counts) {
		m.counts[i] = n
	}
}
