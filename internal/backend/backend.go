// Package backend defines the capability interface every platform
// implementation satisfies and picks one at startup.
//
// Every query returns either a value or an error classified with one of the
// capability codes in internal/errors. NOT_SUPPORTED is a steady state, not a
// fault: callers should render "unavailable" and move on.
package backend

import (
	"time"

	"github.com/rileyhilliard/hypertop/internal/model"
)

// Backend exposes one machine's telemetry. Update must be called once per
// refresh cycle before any reads; reads within a cycle are served from the
// samples fetched on first access.
type Backend interface {
	// Update starts a new refresh cycle.
	Update() error

	Hostname() (string, error)
	SystemVersion() (string, error)
	Uptime() (time.Duration, error)

	// CPUCount is the number of physical cores.
	CPUCount() (int, error)
	LogicalCPUCount() (int, error)

	GlobalCPU() (model.CPU, error)
	Memory() (model.Memory, error)
	Swap() (model.Swap, error)
	LoadAvg() (model.LoadAvg, error)
	Pressure() (model.Pressure, error)

	Processes() ([]model.Process, error)
	ProcessCmdInfo(pid int) (model.ProcessCommandInfo, error)

	Networks() ([]model.NetworkStats, error)
	DiskIO() ([]model.DiskIO, error)
	Filesystems() ([]model.Filesystem, error)
	GPUs() ([]model.GPU, error)

	// HasProcessTime reports whether processes carry cumulative CPU time.
	HasProcessTime() bool
	// HasGPU reports whether any GPU was detected at startup.
	HasGPU() bool

	// Name identifies the implementation, for logs and the dump header.
	Name() string
}
