package sample

import "time"

// DefaultWindow is the nominal window reported before a source has been
// refreshed twice.
const DefaultWindow = time.Second

// Tick is the logical refresh-cycle counter. The driving loop calls Advance
// once per cycle; caches compare against Current to decide whether to fetch.
type Tick struct {
	n uint64
}

// NewTick returns a clock positioned at cycle 1, so a fresh window (tick 0)
// is always stale.
func NewTick() *Tick {
	return &Tick{n: 1}
}

// Advance moves the clock to the next cycle.
func (t *Tick) Advance() {
	t.n++
}

// Current returns the cycle number.
func (t *Tick) Current() uint64 {
	return t.n
}

// Window records when one source was last refreshed and how long the
// interval between its last two refreshes was.
type Window struct {
	tick     uint64
	at       time.Time
	duration time.Duration
	now      func() time.Time
}

// NewWindow returns a window that has never been refreshed.
func NewWindow() *Window {
	return &Window{duration: DefaultWindow, now: time.Now}
}

// IsCurrent reports whether the window was already refreshed in the clock's
// current cycle.
func (w *Window) IsCurrent(clock *Tick) bool {
	return w.tick >= clock.Current()
}

// Update stamps the window with the current cycle and instant. The duration
// becomes the time since the previous stamp; the very first stamp keeps the
// nominal default.
func (w *Window) Update(clock *Tick) {
	now := w.now()
	if !w.at.IsZero() {
		d := now.Sub(w.at)
		if d < 0 {
			d = 0
		}
		w.duration = d
	}
	w.at = now
	w.tick = clock.Current()
}

// Duration is the interval between the last two refreshes.
func (w *Window) Duration() time.Duration {
	return w.duration
}

// At is the instant of the last refresh, zero if never refreshed.
func (w *Window) At() time.Time {
	return w.at
}

// Tick is the cycle of the last refresh.
func (w *Window) Tick() uint64 {
	return w.tick
}
