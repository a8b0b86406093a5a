package monitor

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/hypertop/internal/model"
)

// keyMap holds every binding the dashboard reacts to.
type keyMap struct {
	Quit       key.Binding
	Refresh    key.Binding
	SortAuto   key.Binding
	SortCPU    key.Binding
	SortMemory key.Binding
	SortIO     key.Binding
	SortTime   key.Binding
	Up         key.Binding
	Down       key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Help       key.Binding
	Close      key.Binding
}

func newKeyMap(hasProcessTime bool) keyMap {
	k := keyMap{
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		SortAuto:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "auto sort")),
		SortCPU:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "by CPU")),
		SortMemory: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "by memory")),
		SortIO:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "by I/O")),
		SortTime:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "by time")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll down")),
		PageUp:     key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown:   key.NewBinding(key.WithKeys("pgdown", " "), key.WithHelp("pgdn", "page down")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Close:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	}
	k.SortTime.SetEnabled(hasProcessTime)
	return k
}

// ShortHelp is shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Refresh, k.SortAuto, k.SortCPU, k.SortMemory, k.SortIO, k.SortTime, k.Help}
}

// FullHelp is shown in the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.SortAuto, k.SortCPU, k.SortMemory, k.SortIO, k.SortTime},
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Refresh, k.Help, k.Close, k.Quit},
	}
}

func sortRef(o model.SortOrder) *model.SortOrder {
	return &o
}

// HandleKeyMsg processes keyboard input and returns updated model state and command.
// Returns true if the key was handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	// Help toggle takes priority
	if key.Matches(msg, m.keys.Help) {
		m.showHelp = !m.showHelp
		return true, nil
	}

	if m.showHelp && key.Matches(msg, m.keys.Close) {
		m.showHelp = false
		return true, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return true, tea.Quit

	case key.Matches(msg, m.keys.Refresh):
		return true, m.collectCmd()

	case key.Matches(msg, m.keys.SortAuto):
		m.setSort(nil)
		return true, nil

	case key.Matches(msg, m.keys.SortCPU):
		m.setSort(sortRef(model.SortByCPU))
		return true, nil

	case key.Matches(msg, m.keys.SortMemory):
		m.setSort(sortRef(model.SortByMemory))
		return true, nil

	case key.Matches(msg, m.keys.SortIO):
		m.setSort(sortRef(model.SortByIO))
		return true, nil

	case key.Matches(msg, m.keys.SortTime):
		m.setSort(sortRef(model.SortByTime))
		return true, nil
	}

	return false, nil
}

// setSort records the preference and reorders the table on screen right
// away; the next refresh picks it up too.
func (m *Model) setSort(o *model.SortOrder) {
	m.state.SetSort(o)
	m.state.Resort(m.snapshot)
	m.refreshTable()
}
