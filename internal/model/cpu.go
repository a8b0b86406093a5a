// Package model defines the backend-neutral values a monitor backend hands to
// the display layer, and the arithmetic that turns raw kernel counters into
// them.
package model

import "github.com/rileyhilliard/hypertop/internal/sample"

// TicksPerSecond is the USER_HZ unit all CPU tick counters are expressed in.
const TicksPerSecond = 100

// CPUTicks is a sample of the kernel's cumulative per-state CPU time, in
// ticks. The optional fields are not reported by every platform.
type CPUTicks struct {
	User      uint64  `json:"user" yaml:"user"`
	Nice      uint64  `json:"nice" yaml:"nice"`
	System    uint64  `json:"system" yaml:"system"`
	Idle      uint64  `json:"idle" yaml:"idle"`
	IOWait    *uint64 `json:"iowait,omitempty" yaml:"iowait,omitempty"`
	IRQ       *uint64 `json:"irq,omitempty" yaml:"irq,omitempty"`
	SoftIRQ   *uint64 `json:"softirq,omitempty" yaml:"softirq,omitempty"`
	Steal     *uint64 `json:"steal,omitempty" yaml:"steal,omitempty"`
	Guest     *uint64 `json:"guest,omitempty" yaml:"guest,omitempty"`
	GuestNice *uint64 `json:"guest_nice,omitempty" yaml:"guest_nice,omitempty"`
}

func opt(v *uint64) uint64 {
	if v == nil {
		return 0
	}
	return *v
}

// Total is the sum of every present field.
func (t CPUTicks) Total() uint64 {
	return t.User + t.Nice + t.System + t.Idle +
		opt(t.IOWait) + opt(t.IRQ) + opt(t.SoftIRQ) +
		opt(t.Steal) + opt(t.Guest) + opt(t.GuestNice)
}

// TotalUsed is Total minus idle and iowait.
func (t CPUTicks) TotalUsed() uint64 {
	return sample.SubSat(t.Total(), t.Idle+opt(t.IOWait))
}

// Sub diffs two samples field by field. Counters that went backwards diff to
// zero; optional fields are present only when both samples carry them.
func (t CPUTicks) Sub(prev CPUTicks) CPUTicks {
	return CPUTicks{
		User:      sample.SubSat(t.User, prev.User),
		Nice:      sample.SubSat(t.Nice, prev.Nice),
		System:    sample.SubSat(t.System, prev.System),
		Idle:      sample.SubSat(t.Idle, prev.Idle),
		IOWait:    sample.DiffOpt(t.IOWait, prev.IOWait),
		IRQ:       sample.DiffOpt(t.IRQ, prev.IRQ),
		SoftIRQ:   sample.DiffOpt(t.SoftIRQ, prev.SoftIRQ),
		Steal:     sample.DiffOpt(t.Steal, prev.Steal),
		Guest:     sample.DiffOpt(t.Guest, prev.Guest),
		GuestNice: sample.DiffOpt(t.GuestNice, prev.GuestNice),
	}
}

// Window returns the ticks elapsed between prev and t, or the raw totals when
// there is no previous sample. The second result is false in the latter case.
func (t CPUTicks) Window(prev *CPUTicks) (CPUTicks, bool) {
	if prev == nil {
		return t, false
	}
	return t.Sub(*prev), true
}

// CPUStates breaks utilization down by state, each as a fraction of the
// window's total ticks.
type CPUStates struct {
	User    float64  `json:"user" yaml:"user"`
	Nice    float64  `json:"nice" yaml:"nice"`
	System  float64  `json:"system" yaml:"system"`
	Idle    float64  `json:"idle" yaml:"idle"`
	IOWait  *float64 `json:"iowait,omitempty" yaml:"iowait,omitempty"`
	IRQ     *float64 `json:"irq,omitempty" yaml:"irq,omitempty"`
	SoftIRQ *float64 `json:"softirq,omitempty" yaml:"softirq,omitempty"`
	Steal   *float64 `json:"steal,omitempty" yaml:"steal,omitempty"`
}

// CPU is global CPU usage over one refresh window.
type CPU struct {
	// Utilization is used ticks over total ticks, 0..1.
	Utilization float64 `json:"utilization" yaml:"utilization"`
	// Instantaneous is set when no previous sample existed and the figures
	// are since-boot averages rather than a window.
	Instantaneous bool      `json:"instantaneous" yaml:"instantaneous"`
	States        CPUStates `json:"states" yaml:"states"`
}

// NewCPU computes utilization from the current sample and the previous one,
// if any.
func NewCPU(cur CPUTicks, prev *CPUTicks) CPU {
	win, diffed := cur.Window(prev)
	total := win.Total()
	frac := func(v uint64) float64 {
		if total == 0 {
			return 0
		}
		return float64(v) / float64(total)
	}
	fracOpt := func(v *uint64) *float64 {
		if v == nil {
			return nil
		}
		f := frac(*v)
		return &f
	}
	return CPU{
		Utilization:   frac(win.TotalUsed()),
		Instantaneous: !diffed,
		States: CPUStates{
			User:    frac(win.User),
			Nice:    frac(win.Nice),
			System:  frac(win.System),
			Idle:    frac(win.Idle),
			IOWait:  fracOpt(win.IOWait),
			IRQ:     fracOpt(win.IRQ),
			SoftIRQ: fracOpt(win.SoftIRQ),
			Steal:   fracOpt(win.Steal),
		},
	}
}
