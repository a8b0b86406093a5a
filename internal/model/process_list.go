package model

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// SortOrder selects how the process list is ordered. All orders are
// descending.
type SortOrder int

const (
	SortByCPU SortOrder = iota
	SortByMemory
	SortByIO
	SortByTime
)

// Thresholds for picking a sort order automatically.
const (
	AutoSortCPUThreshold    = 0.9
	AutoSortMemoryThreshold = 0.5
)

// String returns a human-readable label for the sort order.
func (s SortOrder) String() string {
	switch s {
	case SortByCPU:
		return "CPU"
	case SortByMemory:
		return "memory"
	case SortByIO:
		return "I/O"
	case SortByTime:
		return "time"
	default:
		return "CPU"
	}
}

// ParseSortOrder accepts cpu, memory (mem), io and time. "auto" and "" yield
// nil, meaning no explicit preference.
func ParseSortOrder(s string) (*SortOrder, error) {
	var o SortOrder
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return nil, nil
	case "cpu":
		o = SortByCPU
	case "memory", "mem":
		o = SortByMemory
	case "io":
		o = SortByIO
	case "time":
		o = SortByTime
	default:
		return nil, fmt.Errorf("unknown sort order %q", s)
	}
	return &o, nil
}

// ResolveSortOrder returns pref when set. Otherwise CPU order wins when the
// machine is CPU-saturated, memory order when more than half of memory is
// used, and CPU order by default.
func ResolveSortOrder(pref *SortOrder, cpuUtil, memUsedFrac float64) SortOrder {
	if pref != nil {
		return *pref
	}
	switch {
	case cpuUtil >= AutoSortCPUThreshold:
		return SortByCPU
	case memUsedFrac >= AutoSortMemoryThreshold:
		return SortByMemory
	default:
		return SortByCPU
	}
}

// StatusCounts summarizes a process list by state.
type StatusCounts struct {
	Running  int `json:"running" yaml:"running"`
	Sleeping int `json:"sleeping" yaml:"sleeping"`
	Other    int `json:"other" yaml:"other"`
}

// ProcessList is one cycle's processes in a fixed order. It is immutable once
// built: the order and status counts never change for a given instance.
type ProcessList struct {
	procs []Process
	order SortOrder
	auto  bool

	countsOnce sync.Once
	counts     StatusCounts
}

// NewProcessList copies procs and sorts the copy by order. auto records
// whether the order was picked automatically.
func NewProcessList(procs []Process, order SortOrder, auto bool) *ProcessList {
	sorted := make([]Process, len(procs))
	copy(sorted, procs)
	less := lessFor(order)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := &sorted[i], &sorted[j]
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return a.PID < b.PID
	})
	return &ProcessList{procs: sorted, order: order, auto: auto}
}

// Len is the number of processes.
func (l *ProcessList) Len() int {
	return len(l.procs)
}

// At returns the i-th process in sort order.
func (l *ProcessList) At(i int) Process {
	return l.procs[i]
}

// Processes returns a copy of the sorted processes.
func (l *ProcessList) Processes() []Process {
	out := make([]Process, len(l.procs))
	copy(out, l.procs)
	return out
}

// SortOrder is the order this list was built with.
func (l *ProcessList) SortOrder() SortOrder {
	return l.order
}

// Auto reports whether the order was picked automatically.
func (l *ProcessList) Auto() bool {
	return l.auto
}

// Counts tallies processes by state. Computed on first call and cached.
func (l *ProcessList) Counts() StatusCounts {
	l.countsOnce.Do(func() {
		for i := range l.procs {
			switch l.procs[i].Status {
			case StatusRunning:
				l.counts.Running++
			case StatusSleeping, StatusIdle, StatusDiskSleep:
				l.counts.Sleeping++
			default:
				l.counts.Other++
			}
		}
	})
	return l.counts
}

// lessFor returns a "sorts after" comparison for descending order. Unknown
// values sort last.
func lessFor(order SortOrder) func(a, b *Process) bool {
	switch order {
	case SortByMemory:
		return func(a, b *Process) bool { return a.MemRSS > b.MemRSS }
	case SortByIO:
		return func(a, b *Process) bool { return a.IOTotal() > b.IOTotal() }
	case SortByTime:
		return func(a, b *Process) bool {
			ta, tb := a.CPUTime(), b.CPUTime()
			switch {
			case ta == nil:
				return false
			case tb == nil:
				return true
			}
			return *ta > *tb
		}
	default:
		return func(a, b *Process) bool {
			switch {
			case a.CPU == nil:
				return false
			case b.CPU == nil:
				return true
			}
			return *a.CPU > *b.CPU
		}
	}
}
