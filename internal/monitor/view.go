package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/hypertop/internal/model"
)

const (
	gaugeBarWidth  = 20
	sparklineWidth = 30
	// labelWidth pads gauge labels so bars line up.
	labelWidth = 5
)

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderTop())
	b.WriteString("\n")
	b.WriteString(m.renderProcessHeadline())
	b.WriteString("\n")
	b.WriteString(TableHeaderStyle.Render(processHeader()))
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderTop renders everything above the process table.
func (m Model) renderTop() string {
	header := m.renderHeader()
	if m.snapshot == nil {
		return header + "\n" + LabelStyle.Render("Collecting first sample...")
	}

	w := m.contentWidth()
	if m.LayoutMode() == LayoutWide {
		half := w / 2
		left := lipgloss.JoinVertical(lipgloss.Left, m.renderSystemSections(half)...)
		right := lipgloss.JoinVertical(lipgloss.Left, m.renderIOSections(w-half)...)
		return header + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	}

	parts := append([]string{header}, m.renderSystemSections(w)...)
	parts = append(parts, m.renderIOSections(w)...)
	return strings.Join(parts, "\n")
}

// renderHeader renders the title line with host identity.
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("hypertop")

	var facts []string
	if s := m.snapshot; s != nil {
		if s.Hostname.OK() {
			facts = append(facts, *s.Hostname.Value)
		}
		if s.Version.OK() {
			facts = append(facts, *s.Version.Value)
		}
		if s.Uptime.OK() {
			facts = append(facts, "up "+formatUptime(*s.Uptime.Value))
		}
		if s.Load.OK() {
			l := s.Load.Value
			facts = append(facts, fmt.Sprintf("load %.2f %.2f %.2f", l.One, l.Five, l.Fifteen))
		}
	}
	facts = append(facts, "updated "+m.updatedText())

	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(" | " + strings.Join(facts, " | "))

	return HeaderStyle.Render(title + stats)
}

func (m Model) updatedText() string {
	switch s := m.SecondsSinceUpdate(); s {
	case 0:
		return "just now"
	case 1:
		return "1s ago"
	default:
		return fmt.Sprintf("%ds ago", s)
	}
}

// unavailable renders the marker shown in place of a widget's value.
func unavailable[T any](r Reading[T]) string {
	if r.Failed {
		return ErrorStyle.Render("error: " + r.Unavailable)
	}
	return MutedStyle.Render("unavailable: " + r.Unavailable)
}

func label(s string) string {
	return LabelStyle.Render(fmt.Sprintf("%-*s", labelWidth, s))
}

func percent(frac float64) string {
	return fmt.Sprintf("%5.1f%%", frac*100)
}

func (m Model) showGraphs() bool {
	return m.LayoutMode() != LayoutMinimal
}

// renderSystemSections renders CPU, memory, pressure and GPUs.
func (m Model) renderSystemSections(width int) []string {
	s := m.snapshot
	var sections []string

	// CPU
	var lines []string
	cpuValue := ""
	if s.CPU.OK() {
		c := s.CPU.Value
		line := label("cpu") + m.thresholds.CPU.Bar(gaugeBarWidth, c.Utilization*100) + " " + ValueStyle.Render(percent(c.Utilization))
		if m.showGraphs() {
			line += " " + PercentSparkline(m.history.CPU(sparklineWidth), sparklineWidth, m.thresholds.CPU)
		}
		lines = append(lines, line, LabelStyle.Render(cpuStates(c.States)))
		cpuValue = strings.TrimSpace(percent(c.Utilization))
	} else {
		lines = append(lines, unavailable(s.CPU))
	}
	lines = append(lines, LabelStyle.Render(coreCount(s)))
	sections = append(sections, Section("CPU", cpuValue, lines, width))

	// Memory and swap
	lines = nil
	memValue := ""
	if s.Memory.OK() {
		mem := s.Memory.Value
		line := label("mem") + m.thresholds.Memory.Bar(gaugeBarWidth, mem.UsedFrac()*100) + " " + ValueStyle.Render(percent(mem.UsedFrac()))
		if m.showGraphs() {
			line += " " + PercentSparkline(m.history.Memory(sparklineWidth), sparklineWidth, m.thresholds.Memory)
		}
		lines = append(lines, line, LabelStyle.Render(fmt.Sprintf("used %s  cache %s  free %s  total %s",
			formatBytes(mem.Used), formatBytes(mem.Freeable), formatBytes(mem.Free), formatBytes(mem.Total))))
		memValue = formatBytes(mem.Used) + " / " + formatBytes(mem.Total)
	} else {
		lines = append(lines, unavailable(s.Memory))
	}
	switch {
	case !s.Swap.OK():
		lines = append(lines, label("swap")+unavailable(s.Swap))
	case s.Swap.Value.Total == 0:
		lines = append(lines, label("swap")+MutedStyle.Render("none"))
	default:
		sw := s.Swap.Value
		lines = append(lines, label("swap")+m.thresholds.Memory.Bar(gaugeBarWidth, sw.UsedFrac()*100)+" "+
			ValueStyle.Render(percent(sw.UsedFrac()))+" "+LabelStyle.Render(formatBytes(sw.Used)+" / "+formatBytes(sw.Total)))
	}
	sections = append(sections, Section("Memory", memValue, lines, width))

	// Pressure
	if s.Pressure.OK() {
		p := s.Pressure.Value
		lines = []string{
			pressureLine("cpu", p.CPU),
			pressureLine("mem", p.Memory),
			pressureLine("io", p.IO),
		}
		sections = append(sections, Section("Pressure", "avg10 / avg60 / avg300", lines, width))
	}

	// GPUs
	if s.GPUs.OK() && len(*s.GPUs.Value) > 0 {
		lines = nil
		for _, g := range *s.GPUs.Value {
			lines = append(lines, m.gpuLine(g))
		}
		sections = append(sections, Section("GPU", fmt.Sprintf("%d", len(lines)), lines, width))
	} else if s.GPUs.Failed {
		sections = append(sections, Section("GPU", "", []string{unavailable(s.GPUs)}, width))
	}

	return sections
}

func cpuStates(st model.CPUStates) string {
	parts := []string{
		fmt.Sprintf("usr %.1f%%", st.User*100),
		fmt.Sprintf("nice %.1f%%", st.Nice*100),
		fmt.Sprintf("sys %.1f%%", st.System*100),
	}
	opt := func(name string, v *float64) {
		if v != nil {
			parts = append(parts, fmt.Sprintf("%s %.1f%%", name, *v*100))
		}
	}
	opt("wait", st.IOWait)
	opt("irq", st.IRQ)
	opt("sirq", st.SoftIRQ)
	opt("steal", st.Steal)
	return strings.Join(parts, "  ")
}

func coreCount(s *Snapshot) string {
	logical := "?"
	if s.Logical.OK() {
		logical = fmt.Sprintf("%d", *s.Logical.Value)
	}
	if s.Cores.OK() {
		return fmt.Sprintf("%d cores, %s threads", *s.Cores.Value, logical)
	}
	return logical + " logical CPUs"
}

func pressureLine(name string, st model.PressureStat) string {
	line := label(name) + fmt.Sprintf("some %5.2f %5.2f %5.2f", st.Some.Avg10, st.Some.Avg60, st.Some.Avg300)
	if st.Full != nil {
		line += fmt.Sprintf("   full %5.2f %5.2f %5.2f", st.Full.Avg10, st.Full.Avg60, st.Full.Avg300)
	}
	return line
}

func (m Model) gpuLine(g model.GPU) string {
	line := fmt.Sprintf("%-4d", g.Index) + m.thresholds.GPU.Bar(gaugeBarWidth/2, g.Utilization*100) + " " +
		ValueStyle.Render(percent(g.Utilization)) + " " +
		LabelStyle.Render(fmt.Sprintf("mem %s / %s", formatBytes(g.MemUsed), formatBytes(g.MemTotal)))
	if g.Temperature != nil {
		line += LabelStyle.Render(fmt.Sprintf("  %.0f°C", *g.Temperature))
	}
	if g.Power != nil {
		p := fmt.Sprintf("  %.0f W", *g.Power)
		if g.PowerLimit != nil {
			p = fmt.Sprintf("  %.0f / %.0f W", *g.Power, *g.PowerLimit)
		}
		line += LabelStyle.Render(p)
	}
	return line + "  " + MutedStyle.Render(g.Name)
}

// renderIOSections renders networks, disks and filesystems.
func (m Model) renderIOSections(width int) []string {
	s := m.snapshot
	var sections []string

	// Network
	var lines []string
	if s.Networks.OK() {
		for _, n := range *s.Networks.Value {
			lines = append(lines, netLine(n))
		}
		if m.showGraphs() {
			in, out := m.history.Network(sparklineWidth)
			if len(in) > 0 {
				lines = append(lines,
					label("rx")+RateSparkline(in, sparklineWidth, ColorGraph),
					label("tx")+RateSparkline(out, sparklineWidth, ColorGraphTx))
			}
		}
	} else {
		lines = append(lines, unavailable(s.Networks))
	}
	sections = append(sections, Section("Network", "rx / tx", lines, width))

	// Disk I/O
	lines = nil
	if s.Disks.OK() {
		for _, d := range *s.Disks.Value {
			lines = append(lines, diskLine(d))
		}
	} else {
		lines = append(lines, unavailable(s.Disks))
	}
	sections = append(sections, Section("Disk I/O", "read / write", lines, width))

	// Filesystems
	lines = nil
	if s.Filesystems.OK() {
		for _, f := range *s.Filesystems.Value {
			lines = append(lines, m.fsLine(f))
		}
	} else {
		lines = append(lines, unavailable(s.Filesystems))
	}
	sections = append(sections, Section("Filesystems", "", lines, width))

	return sections
}

func netLine(n model.NetworkStats) string {
	name := fmt.Sprintf("%-12s", n.Name)
	if n.Rate == nil {
		return LabelStyle.Render(name) + MutedStyle.Render("measuring...")
	}
	return LabelStyle.Render(name) + ValueStyle.Render(fmt.Sprintf("↓ %-11s ↑ %-11s",
		FormatRate(float64(n.Rate.RxBytes)), FormatRate(float64(n.Rate.TxBytes)))) +
		MutedStyle.Render(fmt.Sprintf(" total %s / %s", formatBytes(n.Total.RxBytes), formatBytes(n.Total.TxBytes)))
}

func diskLine(d model.DiskIO) string {
	name := fmt.Sprintf("%-12s", d.Name)
	if d.Rate == nil {
		return LabelStyle.Render(name) + MutedStyle.Render("measuring...")
	}
	return LabelStyle.Render(name) + ValueStyle.Render(fmt.Sprintf("R %-11s W %-11s",
		FormatRate(float64(d.Rate.ReadBytes)), FormatRate(float64(d.Rate.WriteBytes))))
}

func (m Model) fsLine(f model.Filesystem) string {
	u := f.Utilization()
	return LabelStyle.Render(fmt.Sprintf("%-16s", f.MountPoint)) +
		m.thresholds.Memory.Bar(gaugeBarWidth/2, u*100) + " " + ValueStyle.Render(percent(u)) + " " +
		LabelStyle.Render(fmt.Sprintf("%s / %s", formatBytes(f.Used), formatBytes(f.Used+f.Available))) + "  " +
		MutedStyle.Render(f.FSType)
}

// renderProcessHeadline renders the summary line above the table.
func (m Model) renderProcessHeadline() string {
	if m.snapshot == nil {
		return ""
	}
	p := m.snapshot.Processes
	if !p.OK() {
		return unavailable(p)
	}
	return ValueStyle.Render(p.Value.Headline())
}

func processHeader() string {
	return fmt.Sprintf("%7s %-10s %s %6s %6s %8s %10s %10s %10s  %s",
		"PID", "USER", "S", "CPU%", "MEM%", "RSS", "READ", "WRITE", "TIME", "COMMAND")
}

// renderProcessRows renders one line per process for the table viewport.
func (m Model) renderProcessRows(width int) string {
	if m.snapshot == nil || !m.snapshot.Processes.OK() {
		return ""
	}
	rows := m.snapshot.Processes.Value.Rows
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = truncate(processLine(r), width)
	}
	return strings.Join(lines, "\n")
}

func processLine(r ProcessRow) string {
	cpu := "-"
	if r.CPU != nil {
		cpu = fmt.Sprintf("%.1f", *r.CPU*100)
	}
	rate := func(v *uint64) string {
		if v == nil {
			return "-"
		}
		return FormatRate(float64(*v))
	}
	cpuTime := "-"
	if t := r.CPUTime(); t != nil {
		cpuTime = formatCPUTime(*t)
	}
	user := r.User
	if len(user) > 10 {
		user = user[:9] + "+"
	}
	return fmt.Sprintf("%7d %-10s %s %6s %6.1f %8s %10s %10s %10s  %s",
		r.PID, user, r.Status, cpu, r.MemUtil*100, formatBytes(r.MemRSS),
		rate(r.IORead), rate(r.IOWrite), cpuTime, r.Name)
}

// renderFooter renders the key hints, plus the last refresh error if any.
func (m Model) renderFooter() string {
	footer := FooterStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
	if m.lastErr != nil {
		msg := strings.SplitN(m.lastErr.Error(), "\n", 2)[0]
		footer += " " + ErrorStyle.Render(msg)
	}
	return footer
}

// formatBytes formats a byte count as a human-readable string.
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	units := []string{"KB", "MB", "GB", "TB", "PB", "EB"}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), units[exp])
}

// FormatRate formats a bytes-per-second rate as a human-readable string.
func FormatRate(bytesPerSecond float64) string {
	if bytesPerSecond < 1024 {
		return fmt.Sprintf("%.0f B/s", bytesPerSecond)
	} else if bytesPerSecond < 1024*1024 {
		return fmt.Sprintf("%.1f KB/s", bytesPerSecond/1024)
	} else if bytesPerSecond < 1024*1024*1024 {
		return fmt.Sprintf("%.1f MB/s", bytesPerSecond/(1024*1024))
	}
	return fmt.Sprintf("%.1f GB/s", bytesPerSecond/(1024*1024*1024))
}

// formatUptime renders d as "3d 4h 5m", dropping leading zero units.
func formatUptime(d time.Duration) string {
	d = d.Truncate(time.Minute)
	days := int(d / (24 * time.Hour))
	hours := int(d/time.Hour) % 24
	mins := int(d/time.Minute) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}

// formatCPUTime renders cumulative CPU time as minutes:seconds.hundredths,
// switching to hours:minutes past 100 minutes.
func formatCPUTime(d time.Duration) string {
	if d >= 100*time.Minute {
		return fmt.Sprintf("%dh%02d", int(d/time.Hour), int(d/time.Minute)%60)
	}
	mins := int(d / time.Minute)
	secs := d - time.Duration(mins)*time.Minute
	return fmt.Sprintf("%d:%05.2f", mins, secs.Seconds())
}
