//go:build linux

// Package linux implements the backend on top of /proc and /sys.
//
// Every data source sits behind its own sample.Cache, all driven by one clock
// that Update advances. Reads in a cycle share the samples fetched on first
// access.
package linux

import (
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/procfs"

	"github.com/rileyhilliard/hypertop/internal/backend/collect"
	"github.com/rileyhilliard/hypertop/internal/backend/gpu"
	"github.com/rileyhilliard/hypertop/internal/errors"
	"github.com/rileyhilliard/hypertop/internal/logger"
	"github.com/rileyhilliard/hypertop/internal/model"
	"github.com/rileyhilliard/hypertop/internal/sample"
)

// Options configures a Backend. The zero value reads the live system.
type Options struct {
	// Source defaults to /proc and /sys.
	Source Source
	// GPU is nil when GPU support is disabled.
	GPU      *gpu.Collector
	Logger   logger.Logger
	Observer sample.Observer
	// Now overrides the wall clock used for refresh windows.
	Now func() time.Time
}

// Backend is the Linux implementation.
type Backend struct {
	src   Source
	log   logger.Logger
	clock *sample.Tick
	gpu   *gpu.Collector
	opts  []sample.Option

	cpu   *sample.Cache[model.CPUTicks]
	mem   *sample.Cache[procfs.Meminfo]
	load  *sample.Cache[procfs.LoadAvg]
	psi   *sample.Cache[model.Pressure]
	net   *sample.Cache[map[string]model.NetCounters]
	disk  *sample.Cache[map[string]model.DiskCounters]
	procs *sample.Cache[model.ProcessSample]
	fs    *sample.Cache[[]model.Filesystem]
	gpus  *sample.Cache[[]model.GPU]

	topoOnce sync.Once
	cores    int
	logical  int
	coresErr error
}

// New builds a backend. It fails only when /proc is not mounted.
func New(o Options) (*Backend, error) {
	if o.Source == nil {
		src, err := NewProcSource()
		if err != nil {
			return nil, err
		}
		o.Source = src
	}
	if o.Logger == nil {
		o.Logger = logger.Noop()
	}

	b := &Backend{
		src:   o.Source,
		log:   o.Logger,
		clock: sample.NewTick(),
		gpu:   o.GPU,
	}
	if o.Observer != nil {
		b.opts = append(b.opts, sample.WithObserver(o.Observer))
	}
	if o.Now != nil {
		b.opts = append(b.opts, sample.WithNow(o.Now))
	}

	b.cpu = newCache(b, "cpu", b.src.CPUTicks)
	b.mem = newCache(b, "memory", b.src.Meminfo)
	b.load = newCache(b, "loadavg", b.src.LoadAvg)
	b.psi = newCache(b, "pressure", b.readPressure)
	b.net = newCache(b, "network", b.readNetworks)
	b.disk = newCache(b, "disk", b.readDisks)
	b.procs = newCache(b, "processes", collect.ProcessFetch(b.cpu, b.src.Processes))
	b.fs = newCache(b, "filesystems", b.readFilesystems)
	b.gpus = newCache(b, "gpu", func() ([]model.GPU, error) {
		return b.gpu.Collect()
	})
	return b, nil
}

func newCache[T any](b *Backend, name string, fetch func() (T, error)) *sample.Cache[T] {
	return collect.NewCache(name, b.clock, b.log, fetch, b.opts...)
}

// Name implements backend.Backend.
func (b *Backend) Name() string {
	return "linux"
}

// Update starts a new refresh cycle.
func (b *Backend) Update() error {
	b.clock.Advance()
	return nil
}

func (b *Backend) Hostname() (string, error) {
	return b.src.Hostname()
}

func (b *Backend) SystemVersion() (string, error) {
	return b.src.SystemVersion()
}

func (b *Backend) Uptime() (time.Duration, error) {
	return b.src.Uptime()
}

// topology reads cpuinfo once; core counts do not change while running.
func (b *Backend) topology() {
	b.topoOnce.Do(func() {
		info, err := b.src.CPUInfo()
		if err != nil || len(info) == 0 {
			b.logical = runtime.NumCPU()
			b.coresErr = errors.NotAvailable("physical core count", err)
			return
		}
		b.logical = len(info)

		type core struct{ pkg, id string }
		seen := make(map[core]struct{})
		for _, c := range info {
			if c.CoreID == "" {
				continue
			}
			seen[core{c.PhysicalID, c.CoreID}] = struct{}{}
		}
		if len(seen) == 0 {
			b.coresErr = errors.NotAvailable("physical core count", nil)
			return
		}
		b.cores = len(seen)
	})
}

// CPUCount is the number of distinct physical cores.
func (b *Backend) CPUCount() (int, error) {
	b.topology()
	if b.coresErr != nil {
		return 0, b.coresErr
	}
	return b.cores, nil
}

func (b *Backend) LogicalCPUCount() (int, error) {
	b.topology()
	return b.logical, nil
}

func (b *Backend) GlobalCPU() (model.CPU, error) {
	snap, err := b.cpu.Snapshot()
	if err != nil {
		return model.CPU{}, err
	}
	return model.NewCPU(snap.Current, snap.Previous), nil
}

func (b *Backend) Memory() (model.Memory, error) {
	m, err := b.mem.Current()
	if err != nil {
		return model.Memory{}, err
	}
	return memoryFrom(m)
}

func (b *Backend) Swap() (model.Swap, error) {
	m, err := b.mem.Current()
	if err != nil {
		return model.Swap{}, err
	}
	return swapFrom(m)
}

func (b *Backend) LoadAvg() (model.LoadAvg, error) {
	l, err := b.load.Current()
	if err != nil {
		return model.LoadAvg{}, err
	}
	return model.LoadAvg{One: l.Load1, Five: l.Load5, Fifteen: l.Load15}, nil
}

func (b *Backend) Pressure() (model.Pressure, error) {
	return b.psi.Current()
}

// Processes pairs the current enumeration with the previous one. Each
// enumeration carries the /proc/stat totals of its own cycle, so shares are
// measured over exactly the interval between the two.
func (b *Backend) Processes() ([]model.Process, error) {
	ctx := model.TrackContext{}
	ctx.LogicalCPUs, _ = b.LogicalCPUCount()
	if m, err := b.mem.Current(); err == nil && m.MemTotalBytes != nil {
		ctx.MemTotal = *m.MemTotalBytes
	}
	return collect.Processes(b.procs, ctx)
}

func (b *Backend) ProcessCmdInfo(pid int) (model.ProcessCommandInfo, error) {
	return b.src.CmdInfo(pid)
}

func (b *Backend) Networks() ([]model.NetworkStats, error) {
	snap, err := b.net.Snapshot()
	if err != nil {
		return nil, err
	}
	return collect.Networks(snap), nil
}

func (b *Backend) DiskIO() ([]model.DiskIO, error) {
	snap, err := b.disk.Snapshot()
	if err != nil {
		return nil, err
	}
	return collect.Disks(snap), nil
}

func (b *Backend) Filesystems() ([]model.Filesystem, error) {
	return b.fs.Current()
}

// GPUs returns an empty list when no GPU was detected at startup.
func (b *Backend) GPUs() ([]model.GPU, error) {
	if !b.HasGPU() {
		return nil, nil
	}
	return b.gpus.Current()
}

func (b *Backend) HasProcessTime() bool {
	return true
}

func (b *Backend) HasGPU() bool {
	return b.gpu != nil && b.gpu.Available()
}
