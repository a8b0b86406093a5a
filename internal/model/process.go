package model

import "time"

// Status is a single-character process state as reported by the kernel.
type Status byte

// Process states.
const (
	StatusRunning   Status = 'R'
	StatusSleeping  Status = 'S'
	StatusDiskSleep Status = 'D'
	StatusIdle      Status = 'I'
	StatusStopped   Status = 'T'
	StatusTracing   Status = 't'
	StatusZombie    Status = 'Z'
	StatusDead      Status = 'X'
	StatusWakekill  Status = 'K'
	StatusWaking    Status = 'W'
	StatusParked    Status = 'P'
	StatusLocked    Status = 'L'
	StatusUnknown   Status = '?'
)

// String returns the single-character code.
func (s Status) String() string {
	if s == 0 {
		return string(StatusUnknown)
	}
	return string(rune(s))
}

// ParseStatus reads the first character of a state string, "?" when empty.
func ParseStatus(s string) Status {
	if s == "" {
		return StatusUnknown
	}
	return Status(s[0])
}

// MarshalText renders the status as its character.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Process is one process as displayed for one refresh cycle.
type Process struct {
	PID    int     `json:"pid" yaml:"pid"`
	PPID   *int    `json:"ppid,omitempty" yaml:"ppid,omitempty"`
	Name   string  `json:"name" yaml:"name"`
	UID    *uint32 `json:"uid,omitempty" yaml:"uid,omitempty"`
	Status Status  `json:"status" yaml:"status"`

	// CPU is the share of one CPU used over the last window; nil for a
	// process seen for the first time.
	CPU *float64 `json:"cpu,omitempty" yaml:"cpu,omitempty"`
	// Cumulative CPU time, nil when the backend cannot report it.
	UserTime   *time.Duration `json:"user_time,omitempty" yaml:"user_time,omitempty"`
	SystemTime *time.Duration `json:"system_time,omitempty" yaml:"system_time,omitempty"`

	MemRSS  uint64  `json:"mem_rss" yaml:"mem_rss"`
	MemVirt uint64  `json:"mem_virt" yaml:"mem_virt"`
	MemUtil float64 `json:"mem_util" yaml:"mem_util"`

	// Bytes per second over the process's own window; nil when unknown.
	IORead  *uint64 `json:"io_read,omitempty" yaml:"io_read,omitempty"`
	IOWrite *uint64 `json:"io_write,omitempty" yaml:"io_write,omitempty"`

	Threads int `json:"threads,omitempty" yaml:"threads,omitempty"`
}

// CPUTime is user plus system time, nil when either is unknown.
func (p Process) CPUTime() *time.Duration {
	if p.UserTime == nil || p.SystemTime == nil {
		return nil
	}
	t := *p.UserTime + *p.SystemTime
	return &t
}

// IOTotal is the combined read and write rate; zero when unknown.
func (p Process) IOTotal() uint64 {
	var n uint64
	if p.IORead != nil {
		n += *p.IORead
	}
	if p.IOWrite != nil {
		n += *p.IOWrite
	}
	return n
}

// ProcessCommandInfo is the expensive per-pid detail fetched on demand.
type ProcessCommandInfo struct {
	Exe     string   `json:"exe,omitempty" yaml:"exe,omitempty"`
	Cmdline []string `json:"cmdline" yaml:"cmdline"`
}
