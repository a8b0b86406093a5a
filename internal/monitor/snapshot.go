package monitor

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/rileyhilliard/hypertop/internal/backend"
	"github.com/rileyhilliard/hypertop/internal/errors"
	"github.com/rileyhilliard/hypertop/internal/model"
)

// Reading is one widget's content: a value, or the reason there is none.
type Reading[T any] struct {
	Value       *T     `json:"value,omitempty" yaml:"value,omitempty"`
	Unavailable string `json:"unavailable,omitempty" yaml:"unavailable,omitempty"`
	// Failed is set when the source broke rather than being absent.
	Failed bool `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// OK reports whether the reading has a value.
func (r Reading[T]) OK() bool {
	return r.Value != nil
}

// ProcessRow is a process plus its owner's name.
type ProcessRow struct {
	model.Process `yaml:",inline"`
	User          string `json:"user,omitempty" yaml:"user,omitempty"`
}

// ProcessTable is the ordered process list as displayed.
type ProcessTable struct {
	SortedBy string             `json:"sorted_by" yaml:"sorted_by"`
	Auto     bool               `json:"auto" yaml:"auto"`
	Counts   model.StatusCounts `json:"counts" yaml:"counts"`
	Rows     []ProcessRow       `json:"rows" yaml:"rows"`

	list *model.ProcessList
}

// Headline summarizes the table, e.g.
// "12 processes (1 running, 10 sleeping, 1 other), sorted by CPU automatically".
func (t ProcessTable) Headline() string {
	suffix := ""
	if t.Auto {
		suffix = " automatically"
	}
	return fmt.Sprintf("%d processes (%d running, %d sleeping, %d other), sorted by %s%s",
		len(t.Rows), t.Counts.Running, t.Counts.Sleeping, t.Counts.Other, t.SortedBy, suffix)
}

// Snapshot is everything the dashboard shows for one refresh cycle.
type Snapshot struct {
	Backend string    `json:"backend" yaml:"backend"`
	At      time.Time `json:"at" yaml:"at"`

	Hostname Reading[string]        `json:"hostname" yaml:"hostname"`
	Version  Reading[string]        `json:"version" yaml:"version"`
	Uptime   Reading[time.Duration] `json:"uptime" yaml:"uptime"`
	Cores    Reading[int]           `json:"cores" yaml:"cores"`
	Logical  Reading[int]           `json:"logical_cpus" yaml:"logical_cpus"`

	CPU      Reading[model.CPU]      `json:"cpu" yaml:"cpu"`
	Memory   Reading[model.Memory]   `json:"memory" yaml:"memory"`
	Swap     Reading[model.Swap]     `json:"swap" yaml:"swap"`
	Load     Reading[model.LoadAvg]  `json:"load" yaml:"load"`
	Pressure Reading[model.Pressure] `json:"pressure" yaml:"pressure"`

	Networks    Reading[[]model.NetworkStats] `json:"networks" yaml:"networks"`
	Disks       Reading[[]model.DiskIO]       `json:"disks" yaml:"disks"`
	Filesystems Reading[[]model.Filesystem]   `json:"filesystems" yaml:"filesystems"`
	GPUs        Reading[[]model.GPU]          `json:"gpus" yaml:"gpus"`

	Processes Reading[ProcessTable] `json:"processes" yaml:"processes"`
}

// collector accumulates hard failures while readings are assembled.
type collector struct {
	errs []error
}

func read[T any](c *collector, what string, v T, err error) Reading[T] {
	p, hard := errors.Acceptable(v, err)
	switch {
	case hard != nil:
		c.errs = append(c.errs, errors.Wrap(hard, fmt.Sprintf("couldn't read %s", what)))
		return Reading[T]{Unavailable: errors.Reason(hard), Failed: true}
	case p == nil:
		return Reading[T]{Unavailable: errors.Reason(err)}
	}
	return Reading[T]{Value: p}
}

// Collect reads every widget from the current cycle. Absent sources become
// "unavailable" markers. Broken sources are marked too, and their errors are
// joined into the returned error; the snapshot is usable either way.
func (s *State) Collect() (*Snapshot, error) {
	b := s.backend
	c := &collector{}
	snap := &Snapshot{Backend: b.Name(), At: time.Now()}

	host, err := b.Hostname()
	snap.Hostname = read(c, "hostname", host, err)
	version, err := b.SystemVersion()
	snap.Version = read(c, "system version", version, err)
	up, err := b.Uptime()
	snap.Uptime = read(c, "uptime", up, err)
	cores, err := b.CPUCount()
	snap.Cores = read(c, "CPU count", cores, err)
	logical, err := b.LogicalCPUCount()
	snap.Logical = read(c, "logical CPU count", logical, err)

	cpu, err := b.GlobalCPU()
	snap.CPU = read(c, "CPU usage", cpu, err)
	mem, err := b.Memory()
	snap.Memory = read(c, "memory", mem, err)
	swap, err := b.Swap()
	snap.Swap = read(c, "swap", swap, err)
	load, err := b.LoadAvg()
	snap.Load = read(c, "load average", load, err)
	psi, err := b.Pressure()
	snap.Pressure = read(c, "pressure", psi, err)

	nets, err := b.Networks()
	snap.Networks = read(c, "networks", nets, err)
	disks, err := b.DiskIO()
	snap.Disks = read(c, "disk I/O", disks, err)
	fs, err := b.Filesystems()
	snap.Filesystems = read(c, "filesystems", fs, err)
	if b.HasGPU() {
		gpus, err := b.GPUs()
		snap.GPUs = read(c, "GPUs", gpus, err)
	} else {
		snap.GPUs = Reading[[]model.GPU]{Unavailable: "no GPU detected"}
	}

	list, err := s.ProcessList()
	var table ProcessTable
	if err == nil {
		table = s.table(list)
	}
	snap.Processes = read(c, "processes", table, err)

	if len(c.errs) > 0 {
		return snap, stderrors.Join(c.errs...)
	}
	return snap, nil
}

func hintsFrom(snap *Snapshot) sortHints {
	var h sortHints
	if snap.CPU.OK() {
		h.cpu = snap.CPU.Value.Utilization
	}
	if snap.Memory.OK() {
		h.mem = snap.Memory.Value.UsedFrac()
	}
	return h
}

func (s *State) table(list *model.ProcessList) ProcessTable {
	rows := make([]ProcessRow, list.Len())
	for i := range rows {
		p := list.At(i)
		rows[i] = ProcessRow{Process: p}
		if p.UID != nil {
			rows[i].User = s.Username(*p.UID)
		}
	}
	return ProcessTable{
		SortedBy: list.SortOrder().String(),
		Auto:     list.Auto(),
		Counts:   list.Counts(),
		Rows:     rows,
		list:     list,
	}
}

// Resort reorders snap's process table with the current preference, without
// reading the backend again.
func (s *State) Resort(snap *Snapshot) {
	if snap == nil || !snap.Processes.OK() {
		return
	}
	t := snap.Processes.Value
	var procs []model.Process
	if t.list != nil {
		procs = t.list.Processes()
	} else {
		procs = make([]model.Process, len(t.Rows))
		for i, r := range t.Rows {
			procs[i] = r.Process
		}
	}
	table := s.table(s.order(procs, hintsFrom(snap)))
	snap.Processes = Reading[ProcessTable]{Value: &table}
}

// Collect runs one cycle against b with automatic sorting and returns what it
// saw.
func Collect(b backend.Backend) (*Snapshot, error) {
	s := NewState(b, Options{})
	if err := s.Refresh(); err != nil {
		return nil, err
	}
	return s.Collect()
}
