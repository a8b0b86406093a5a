package monitor

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/hypertop/internal/config"
)

// LayoutMode represents the responsive layout mode based on terminal size.
type LayoutMode int

const (
	// LayoutMinimal is for terminals < 80 columns: gauges only, no graphs
	LayoutMinimal LayoutMode = iota
	// LayoutStandard is for terminals 80-160 columns: gauges with sparklines, one column
	LayoutStandard
	// LayoutWide is for terminals 160+ columns: system and I/O sections side by side
	LayoutWide
)

// Width breakpoints for layout modes
const (
	BreakpointStandard = 80
	BreakpointWide     = 160
)

// defaultWidth is used before the first WindowSizeMsg arrives.
const defaultWidth = 100

// minTableHeight is the fewest process rows shown, even on short terminals.
const minTableHeight = 3

// GaugeThresholds holds the color breakpoints per gauge.
type GaugeThresholds struct {
	CPU    Thresholds
	Memory Thresholds
	GPU    Thresholds
}

// GaugeThresholdsFrom converts the thresholds config section.
func GaugeThresholdsFrom(c config.ThresholdsConfig) GaugeThresholds {
	return GaugeThresholds{
		CPU:    ThresholdsFrom(c.CPU),
		Memory: ThresholdsFrom(c.Memory),
		GPU:    ThresholdsFrom(c.GPU),
	}
}

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	state      *State
	thresholds GaugeThresholds
	history    *History

	snapshot   *Snapshot
	lastErr    error
	lastUpdate time.Time
	interval   time.Duration
	collecting bool

	keys  keyMap
	help  help.Model
	table viewport.Model

	width    int
	height   int
	quitting bool
	showHelp bool
}

// tickMsg signals a periodic refresh.
type tickMsg time.Time

// snapshotMsg carries the result of one refresh cycle.
type snapshotMsg struct {
	snap *Snapshot
	err  error
	time time.Time
}

// NewModel creates a dashboard over state. interval comes from the state
// when zero.
func NewModel(state *State, thresholds GaugeThresholds) Model {
	interval := state.RefreshInterval()
	if interval <= 0 {
		interval = config.DefaultRefresh
	}

	h := help.New()
	h.Styles.ShortKey = LabelStyle
	h.Styles.ShortDesc = MutedStyle
	h.Styles.ShortSeparator = MutedStyle

	return Model{
		state:      state,
		thresholds: thresholds,
		history:    NewHistory(DefaultHistorySize),
		interval:   interval,
		keys:       newKeyMap(state.Backend().HasProcessTime()),
		help:       h,
		table:      viewport.New(defaultWidth, minTableHeight),
		// Init starts the first cycle.
		collecting: true,
	}
}

// Init starts the tick timer and triggers the first refresh.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.tickCmd(),
		m.refreshCmd(),
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.refreshTable()
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.tickCmd(), m.collectCmd())

	case snapshotMsg:
		m.collecting = false
		m.lastUpdate = msg.time
		m.lastErr = msg.err
		if msg.snap != nil {
			m.snapshot = msg.snap
			m.history.Push(msg.snap)
		}
		m.refreshTable()
		return m, nil
	}

	// Anything else (scroll keys, mouse) goes to the process table.
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderDashboard()
}

// tickCmd returns a command that sends a tick after the refresh interval.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// collectCmd runs one refresh cycle off the UI loop. Only one cycle runs at a
// time; a tick that lands while one is in flight is dropped.
func (m *Model) collectCmd() tea.Cmd {
	if m.collecting {
		return nil
	}
	m.collecting = true
	return m.refreshCmd()
}

// refreshCmd runs the cycle without checking for one in flight.
func (m Model) refreshCmd() tea.Cmd {
	state := m.state
	return func() tea.Msg {
		if err := state.Refresh(); err != nil {
			return snapshotMsg{err: err, time: time.Now()}
		}
		snap, err := state.Collect()
		return snapshotMsg{snap: snap, err: err, time: time.Now()}
	}
}

// refreshTable re-renders the process rows into the scrollable table and
// fits it to whatever height the sections above leave over.
func (m *Model) refreshTable() {
	w := m.contentWidth()
	m.table.Width = w
	m.table.SetContent(m.renderProcessRows(w))

	h := minTableHeight
	if m.height > 0 {
		// headline, column header and footer
		h = m.height - lipgloss.Height(m.renderTop()) - 3
	}
	if h < minTableHeight {
		h = minTableHeight
	}
	m.table.Height = h
}

// Snapshot is the most recent refresh result, nil before the first one.
func (m Model) Snapshot() *Snapshot {
	return m.snapshot
}

// SecondsSinceUpdate returns the number of seconds since the last refresh.
func (m Model) SecondsSinceUpdate() int {
	if m.lastUpdate.IsZero() {
		return 0
	}
	return int(time.Since(m.lastUpdate).Seconds())
}

// LayoutMode returns the layout for the current terminal width.
func (m Model) LayoutMode() LayoutMode {
	switch w := m.contentWidth(); {
	case w >= BreakpointWide:
		return LayoutWide
	case w >= BreakpointStandard:
		return LayoutStandard
	default:
		return LayoutMinimal
	}
}

func (m Model) contentWidth() int {
	if m.width <= 0 {
		return defaultWidth
	}
	return m.width
}
