// Package monitor assembles what one refresh cycle observed and shows it as
// a terminal dashboard.
//
// # Architecture
//
// State owns a backend and the user's process sort preference. Each cycle
// calls State.Refresh, which advances the backend's logical clock, then
// State.Collect, which reads every widget into a Snapshot. A widget whose
// source is absent on this machine carries an "unavailable" reason instead
// of a value; a source that broke is marked as failed and its error is
// returned alongside the snapshot.
//
// The dashboard uses the Bubble Tea framework (Model-Update-View):
//
//   - Model: the latest Snapshot, gauge history, and the process table viewport
//   - Update: keystrokes, ticks, and snapshots arriving from a refresh
//   - View: renders the current state to a string for display
//
// # Message Flow
//
//  1. tickMsg fires at the configured refresh interval
//  2. collectCmd() runs Refresh and Collect off the UI loop; only one cycle
//     is in flight at a time
//  3. snapshotMsg arrives, the history ring buffers are pushed and the
//     process table is re-rendered
//
// # Layout Modes
//
//	LayoutMinimal  (<80 cols)  - gauges only, no sparklines
//	LayoutStandard (80-160)    - gauges with sparklines, one column
//	LayoutWide     (160+)      - system and I/O sections side by side
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	r           - Force refresh
//	a           - Sort processes automatically
//	c, m, i, t  - Sort by CPU, memory, I/O, CPU time (t needs process times)
//	j/k, ↑/↓    - Scroll the process table
//	?           - Toggle help overlay
package monitor
