package model

import (
	"time"

	"github.com/rileyhilliard/hypertop/internal/sample"
)

// RawProcess is one process as read in a single enumeration pass.
type RawProcess struct {
	PID    int
	PPID   *int
	Name   string
	UID    *uint32
	Status Status

	// Cumulative user and system CPU time in ticks; nil when unreadable.
	UTime *uint64
	STime *uint64
	// Start time in ticks since boot, used to detect pid reuse. Zero if
	// unknown.
	StartTime uint64

	VSize   uint64
	RSS     uint64
	Threads int

	// Cumulative bytes read from and written to storage; nil when the
	// process's I/O accounting is not readable.
	IORead  *uint64
	IOWrite *uint64

	// When this record was read. Rates use the interval between a
	// process's own two reads, not the global window.
	Fetched time.Time
}

// ProcessSet is one enumeration keyed by pid.
type ProcessSet map[int]RawProcess

// ProcessSample is one enumeration together with the global CPU ticks read
// in the same refresh cycle. CPU is nil when /proc/stat could not be read
// that cycle.
type ProcessSample struct {
	Procs ProcessSet
	CPU   *CPUTicks
}

// TrackContext carries the global figures per-process arithmetic needs.
type TrackContext struct {
	// GlobalTicks is the diffed global total ticks over the window the two
	// process samples span. Zero disables CPU shares. TrackSamples fills it
	// in from the samples.
	GlobalTicks uint64
	// LogicalCPUs scales shares so a process saturating one core reads 1.0.
	LogicalCPUs int
	MemTotal    uint64
}

// Track pairs every process in cur with its own previous record and builds
// display records. Processes that vanished are dropped; new ones get no CPU
// share or I/O rate.
func Track(cur, prev ProcessSet, ctx TrackContext) []Process {
	out := make([]Process, 0, len(cur))
	for pid, c := range cur {
		var p *RawProcess
		if old, ok := prev[pid]; ok && samePID(c, old) {
			p = &old
		}
		out = append(out, TrackOne(c, p, ctx))
	}
	return out
}

// TrackSamples is Track over two samples. The global ticks come from the
// samples themselves, so shares span exactly the interval between the two
// enumerations; without ticks on both sides there are no shares.
func TrackSamples(cur ProcessSample, prev *ProcessSample, ctx TrackContext) []Process {
	ctx.GlobalTicks = 0
	var prevSet ProcessSet
	if prev != nil {
		prevSet = prev.Procs
		if cur.CPU != nil && prev.CPU != nil {
			ctx.GlobalTicks = cur.CPU.Sub(*prev.CPU).Total()
		}
	}
	return Track(cur.Procs, prevSet, ctx)
}

// samePID guards against a pid being recycled between two enumerations.
func samePID(cur, prev RawProcess) bool {
	if cur.StartTime == 0 || prev.StartTime == 0 {
		return true
	}
	return cur.StartTime == prev.StartTime
}

func ticksToDuration(t *uint64) *time.Duration {
	if t == nil {
		return nil
	}
	d := time.Duration(*t) * time.Second / TicksPerSecond
	return &d
}

// TrackOne builds the display record for cur given its previous record.
func TrackOne(cur RawProcess, prev *RawProcess, ctx TrackContext) Process {
	proc := Process{
		PID:        cur.PID,
		PPID:       cur.PPID,
		Name:       cur.Name,
		UID:        cur.UID,
		Status:     cur.Status,
		UserTime:   ticksToDuration(cur.UTime),
		SystemTime: ticksToDuration(cur.STime),
		MemRSS:     cur.RSS,
		MemVirt:    cur.VSize,
		MemUtil:    fraction(cur.RSS, ctx.MemTotal),
		Threads:    cur.Threads,
	}
	if prev == nil {
		return proc
	}

	proc.CPU = CPUShare(cur, *prev, ctx)

	window := cur.Fetched.Sub(prev.Fetched)
	if d := sample.DiffOpt(cur.IORead, prev.IORead); d != nil {
		r := sample.NormUint64(*d, window)
		proc.IORead = &r
	}
	if d := sample.DiffOpt(cur.IOWrite, prev.IOWrite); d != nil {
		r := sample.NormUint64(*d, window)
		proc.IOWrite = &r
	}
	return proc
}

// CPUShare is (process ticks used x logical CPUs) / global ticks elapsed, or
// nil when either side lacks the data.
func CPUShare(cur, prev RawProcess, ctx TrackContext) *float64 {
	if ctx.GlobalTicks == 0 || cur.UTime == nil || cur.STime == nil || prev.UTime == nil || prev.STime == nil {
		return nil
	}
	used := sample.SubSat(*cur.UTime+*cur.STime, *prev.UTime+*prev.STime)
	ncpu := ctx.LogicalCPUs
	if ncpu < 1 {
		ncpu = 1
	}
	share := float64(used) * float64(ncpu) / float64(ctx.GlobalTicks)
	return &share
}
