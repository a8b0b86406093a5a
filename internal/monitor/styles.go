package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/hypertop/internal/config"
)

// Dashboard color palette
const (
	ColorDarkBg    = lipgloss.Color("#0A0A0F")
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A2A4A")

	// Semantic colors for metrics
	ColorHealthy  = lipgloss.Color("#39FF14")
	ColorWarning  = lipgloss.Color("#FFAA00")
	ColorCritical = lipgloss.Color("#FF0055")

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	ColorAccent    = lipgloss.Color("#FF2E97")
	ColorAccentDim = lipgloss.Color("#BF40FF")

	ColorGraph   = lipgloss.Color("#00FFFF")
	ColorGraphTx = lipgloss.Color("#BF40FF")
)

// Default thresholds for metric severity levels, in percent.
const (
	WarningThreshold  = 70
	CriticalThreshold = 90
)

// Base styles for the dashboard
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorCritical)

	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true)
)

// Thresholds are the warning and critical breakpoints for one gauge.
type Thresholds struct {
	Warning  int
	Critical int
}

// DefaultThresholds is 70% warning, 90% critical.
var DefaultThresholds = Thresholds{Warning: WarningThreshold, Critical: CriticalThreshold}

// ThresholdsFrom converts configured values. Zero values fall back to the
// defaults.
func ThresholdsFrom(v config.ThresholdValues) Thresholds {
	t := Thresholds{Warning: v.Warning, Critical: v.Critical}
	if t.Warning == 0 {
		t.Warning = WarningThreshold
	}
	if t.Critical == 0 {
		t.Critical = CriticalThreshold
	}
	return t
}

// Color returns the gauge color for a percentage: healthy below warning,
// warning below critical, critical otherwise.
func (t Thresholds) Color(percent float64) lipgloss.Color {
	return MetricColorWithThresholds(percent, t.Warning, t.Critical)
}

// Bar renders a progress bar colored by t.
func (t Thresholds) Bar(width int, percent float64) string {
	return CompactProgressBarWithThresholds(width, percent, t.Warning, t.Critical)
}

// MetricColor returns the appropriate color for a percentage-based metric
// using the default thresholds.
func MetricColor(percent float64) lipgloss.Color {
	return MetricColorWithThresholds(percent, WarningThreshold, CriticalThreshold)
}

// MetricColorWithThresholds returns the appropriate color for a percentage-based metric
// using the provided warning and critical threshold values.
func MetricColorWithThresholds(percent float64, warning, critical int) lipgloss.Color {
	switch {
	case percent >= float64(critical):
		return ColorCritical
	case percent >= float64(warning):
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// CompactProgressBarWithThresholds renders a minimal progress bar using custom thresholds.
func CompactProgressBarWithThresholds(width int, percent float64, warning, critical int) string {
	if width < 1 {
		width = 1
	}

	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled)
	return lipgloss.NewStyle().Foreground(MetricColorWithThresholds(percent, warning, critical)).Render(bar)
}

// SectionHeader renders a section header with the title on the left and value on the right.
// Format: ╭─ Title ────────────────────────────────────── Value ╮
func SectionHeader(title, value string, width int) string {
	if width < 10 {
		width = 10
	}

	// Left: "╭─ " + title + " ", right: " " + value + " ╮"
	leftWidth := 3 + lipgloss.Width(title) + 1
	rightWidth := 1 + lipgloss.Width(value) + 2

	fillWidth := width - leftWidth - rightWidth
	if fillWidth < 1 {
		fillWidth = 1
	}

	middle := strings.Repeat("─", fillWidth)

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	titleStyle := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(ColorGraph).Bold(true)

	return borderStyle.Render("╭─ ") +
		titleStyle.Render(title) +
		borderStyle.Render(" "+middle+" ") +
		valueStyle.Render(value) +
		borderStyle.Render(" ╮")
}

// SectionFooter renders the bottom border of a section.
// Format: ╰────────────────────────────────────────────────────╯
func SectionFooter(width int) string {
	if width < 2 {
		width = 2
	}

	middle := strings.Repeat("─", width-2)

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	return borderStyle.Render("╰" + middle + "╯")
}

// SectionContentLine renders a content line with left and right borders, properly padded to width.
// Format: │ content                                              │
func SectionContentLine(content string, width int) string {
	if width < 4 {
		width = 4
	}

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)

	// Inner width excludes "│ " on the left and " │" on the right.
	innerWidth := width - 4
	content = truncate(content, innerWidth)

	padding := innerWidth - lipgloss.Width(content)
	if padding < 0 {
		padding = 0
	}

	return borderStyle.Render("│") + " " + content + strings.Repeat(" ", padding) + " " + borderStyle.Render("│")
}

// truncate shortens s to at most width cells.
func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}

// Section renders a bordered block with a header, one content line per
// entry in lines, and a footer.
func Section(title, value string, lines []string, width int) string {
	out := make([]string, 0, len(lines)+2)
	out = append(out, SectionHeader(title, value, width))
	for _, l := range lines {
		out = append(out, SectionContentLine(l, width))
	}
	out = append(out, SectionFooter(width))
	return strings.Join(out, "\n")
}
