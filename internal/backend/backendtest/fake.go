// Package backendtest provides a scriptable Backend for tests of code that
// consumes one.
package backendtest

import (
	"time"

	"github.com/rileyhilliard/hypertop/internal/errors"
	"github.com/rileyhilliard/hypertop/internal/model"
)

// Fake returns whatever its fields hold. A nil error field means success.
type Fake struct {
	Updates int

	Host       string
	Version    string
	Up         time.Duration
	Cores      int
	Logical    int
	CPU        model.CPU
	CPUErr     error
	Mem        model.Memory
	MemErr     error
	SwapStat   model.Swap
	SwapErr    error
	Load       model.LoadAvg
	LoadErr    error
	PSI        model.Pressure
	PSIErr     error
	Procs      []model.Process
	ProcsErr   error
	Cmd        map[int]model.ProcessCommandInfo
	Nets       []model.NetworkStats
	NetsErr    error
	Disks      []model.DiskIO
	DisksErr   error
	FS         []model.Filesystem
	FSErr      error
	GPUList    []model.GPU
	NoProcTime bool
}

// New returns a fake with plausible identity values and pressure reported
// as not supported.
func New() *Fake {
	return &Fake{
		Host:    "testhost",
		Version: "Linux 6.1.0",
		Up:      3 * time.Hour,
		Cores:   4,
		Logical: 8,
		PSIErr:  errors.NotSupported("pressure stall information"),
	}
}

func (f *Fake) Update() error {
	f.Updates++
	return nil
}

func (f *Fake) Name() string                   { return "fake" }
func (f *Fake) Hostname() (string, error)      { return f.Host, nil }
func (f *Fake) SystemVersion() (string, error) { return f.Version, nil }
func (f *Fake) Uptime() (time.Duration, error) { return f.Up, nil }
func (f *Fake) CPUCount() (int, error)         { return f.Cores, nil }
func (f *Fake) LogicalCPUCount() (int, error)  { return f.Logical, nil }

func (f *Fake) GlobalCPU() (model.CPU, error)            { return f.CPU, f.CPUErr }
func (f *Fake) Memory() (model.Memory, error)            { return f.Mem, f.MemErr }
func (f *Fake) Swap() (model.Swap, error)                { return f.SwapStat, f.SwapErr }
func (f *Fake) LoadAvg() (model.LoadAvg, error)          { return f.Load, f.LoadErr }
func (f *Fake) Pressure() (model.Pressure, error)        { return f.PSI, f.PSIErr }
func (f *Fake) Processes() ([]model.Process, error)      { return f.Procs, f.ProcsErr }
func (f *Fake) Networks() ([]model.NetworkStats, error)  { return f.Nets, f.NetsErr }
func (f *Fake) DiskIO() ([]model.DiskIO, error)          { return f.Disks, f.DisksErr }
func (f *Fake) Filesystems() ([]model.Filesystem, error) { return f.FS, f.FSErr }
func (f *Fake) GPUs() ([]model.GPU, error)               { return f.GPUList, nil }
func (f *Fake) HasProcessTime() bool                     { return !f.NoProcTime }
func (f *Fake) HasGPU() bool                             { return len(f.GPUList) > 0 }

func (f *Fake) ProcessCmdInfo(pid int) (model.ProcessCommandInfo, error) {
	info, ok := f.Cmd[pid]
	if !ok {
		return model.ProcessCommandInfo{}, errors.NotFound("process")
	}
	return info, nil
}
