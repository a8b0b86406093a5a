// Package generic is the reduced-capability backend for platforms without a
// dedicated implementation. It answers through gopsutil and reports the rest
// (pressure stall information) as not supported.
package generic

import (
	"fmt"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/rileyhilliard/hypertop/internal/backend/collect"
	"github.com/rileyhilliard/hypertop/internal/backend/gpu"
	"github.com/rileyhilliard/hypertop/internal/errors"
	"github.com/rileyhilliard/hypertop/internal/logger"
	"github.com/rileyhilliard/hypertop/internal/model"
	"github.com/rileyhilliard/hypertop/internal/sample"
)

// Options configures a Backend.
type Options struct {
	// Source defaults to gopsutil against the live system.
	Source   Source
	GPU      *gpu.Collector
	Logger   logger.Logger
	Observer sample.Observer
	Now      func() time.Time
}

// Backend answers through gopsutil.
type Backend struct {
	src   Source
	log   logger.Logger
	clock *sample.Tick
	gpu   *gpu.Collector
	opts  []sample.Option

	cpu   *sample.Cache[model.CPUTicks]
	mem   *sample.Cache[*mem.VirtualMemoryStat]
	net   *sample.Cache[map[string]model.NetCounters]
	disk  *sample.Cache[map[string]model.DiskCounters]
	procs *sample.Cache[model.ProcessSample]
	fs    *sample.Cache[[]model.Filesystem]
	gpus  *sample.Cache[[]model.GPU]
}

// New builds a backend. It never fails; unreadable sources surface as
// errors from the individual queries.
func New(o Options) *Backend {
	if o.Source == nil {
		o.Source = NewPSSource()
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

	b.cpu = newCache(b, "cpu", b.readCPU)
	b.mem = newCache(b, "memory", b.src.VirtualMemory)
	b.net = newCache(b, "network", b.readNetworks)
	b.disk = newCache(b, "disk", b.readDisks)
	b.procs = newCache(b, "processes", collect.ProcessFetch(b.cpu, b.src.Processes))
	b.fs = newCache(b, "filesystems", b.readFilesystems)
	b.gpus = newCache(b, "gpu", func() ([]model.GPU, error) {
		return b.gpu.Collect()
	})
	return b
}

func newCache[T any](b *Backend, name string, fetch func() (T, error)) *sample.Cache[T] {
	return collect.NewCache(name, b.clock, b.log, fetch, b.opts...)
}

// Name implements backend.Backend.
func (b *Backend) Name() string {
	return "generic"
}

// Update starts a new refresh cycle.
func (b *Backend) Update() error {
	b.clock.Advance()
	return nil
}

func (b *Backend) Hostname() (string, error) {
	info, err := b.src.HostInfo()
	if err != nil {
		return "", err
	}
	return info.Hostname, nil
}

func (b *Backend) SystemVersion() (string, error) {
	info, err := b.src.HostInfo()
	if err != nil {
		return "", err
	}
	if info.Platform == "" {
		return fmt.Sprintf("%s %s", info.OS, info.KernelVersion), nil
	}
	return fmt.Sprintf("%s %s (%s %s)", info.Platform, info.PlatformVersion, info.OS, info.KernelVersion), nil
}

func (b *Backend) Uptime() (time.Duration, error) {
	info, err := b.src.HostInfo()
	if err != nil {
		return 0, err
	}
	return time.Duration(info.Uptime) * time.Second, nil
}

func (b *Backend) CPUCount() (int, error) {
	return b.src.CPUCount(false)
}

// LogicalCPUCount falls back to the Go runtime's view when gopsutil cannot
// count.
func (b *Backend) LogicalCPUCount() (int, error) {
	n, err := b.src.CPUCount(true)
	if err != nil || n < 1 {
		return runtime.NumCPU(), nil
	}
	return n, nil
}

func (b *Backend) readCPU() (model.CPUTicks, error) {
	t, err := b.src.CPUTimes()
	if err != nil {
		return model.CPUTicks{}, err
	}
	return model.CPUTicks{
		User:      *secondsToTicks(t.User),
		Nice:      *secondsToTicks(t.Nice),
		System:    *secondsToTicks(t.System),
		Idle:      *secondsToTicks(t.Idle),
		IOWait:    secondsToTicks(t.Iowait),
		IRQ:       secondsToTicks(t.Irq),
		SoftIRQ:   secondsToTicks(t.Softirq),
		Steal:     secondsToTicks(t.Steal),
		Guest:     secondsToTicks(t.Guest),
		GuestNice: secondsToTicks(t.GuestNice),
	}, nil
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
	buffers, cached, shared, avail := m.Buffers, m.Cached, m.Shared, m.Available
	return model.Memory{
		Used:      m.Used,
		Freeable:  buffers + cached,
		Free:      m.Free,
		Total:     m.Total,
		Shared:    &shared,
		Buffers:   &buffers,
		Cached:    &cached,
		Available: &avail,
	}, nil
}

func (b *Backend) Swap() (model.Swap, error) {
	s, err := b.src.SwapMemory()
	if err != nil {
		return model.Swap{}, err
	}
	return model.Swap{Used: s.Used, Total: s.Total}, nil
}

func (b *Backend) LoadAvg() (model.LoadAvg, error) {
	l, err := b.src.LoadAvg()
	if err != nil {
		return model.LoadAvg{}, err
	}
	return model.LoadAvg{One: l.Load1, Five: l.Load5, Fifteen: l.Load15}, nil
}

// Pressure stall information is a Linux interface.
func (b *Backend) Pressure() (model.Pressure, error) {
	return model.Pressure{}, errors.NotSupported("pressure stall information")
}

func (b *Backend) Processes() ([]model.Process, error) {
	ctx := model.TrackContext{}
	ctx.LogicalCPUs, _ = b.LogicalCPUCount()
	if m, err := b.mem.Current(); err == nil {
		ctx.MemTotal = m.Total
	}
	return collect.Processes(b.procs, ctx)
}

func (b *Backend) ProcessCmdInfo(pid int) (model.ProcessCommandInfo, error) {
	return b.src.CmdInfo(pid)
}

func (b *Backend) readNetworks() (map[string]model.NetCounters, error) {
	stats, err := b.src.NetIO()
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.NetCounters, len(stats))
	for _, s := range stats {
		out[s.Name] = model.NetCounters{
			RxBytes:   s.BytesRecv,
			RxPackets: s.PacketsRecv,
			RxErrors:  s.Errin,
			RxDropped: s.Dropin,
			TxBytes:   s.BytesSent,
			TxPackets: s.PacketsSent,
			TxErrors:  s.Errout,
			TxDropped: s.Dropout,
		}
	}
	return out, nil
}

func (b *Backend) Networks() ([]model.NetworkStats, error) {
	snap, err := b.net.Snapshot()
	if err != nil {
		return nil, err
	}
	return collect.Networks(snap), nil
}

func (b *Backend) readDisks() (map[string]model.DiskCounters, error) {
	stats, err := b.src.DiskIO()
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.DiskCounters, len(stats))
	for name, s := range stats {
		ioTime := s.IoTime
		out[name] = model.DiskCounters{
			ReadBytes:  s.ReadBytes,
			WriteBytes: s.WriteBytes,
			Reads:      s.ReadCount,
			Writes:     s.WriteCount,
			IOTime:     &ioTime,
		}
	}
	return out, nil
}

func (b *Backend) DiskIO() ([]model.DiskIO, error) {
	snap, err := b.disk.Snapshot()
	if err != nil {
		return nil, err
	}
	return collect.Disks(snap), nil
}

// readFilesystems lists physical partitions only, one entry per device.
func (b *Backend) readFilesystems() ([]model.Filesystem, error) {
	parts, err := b.src.Partitions()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []model.Filesystem
	for _, p := range parts {
		if seen[p.Device] {
			continue
		}
		u, err := b.src.Usage(p.Mountpoint)
		if err != nil || u.Total == 0 {
			continue
		}
		seen[p.Device] = true
		out = append(out, filesystemFrom(p, u))
	}
	return out, nil
}

func filesystemFrom(p disk.PartitionStat, u *disk.UsageStat) model.Filesystem {
	return model.Filesystem{
		Device:     p.Device,
		MountPoint: p.Mountpoint,
		FSType:     p.Fstype,
		Total:      u.Total,
		Used:       u.Used,
		Free:       sample.SubSat(u.Total, u.Used),
		Available:  u.Free,
	}
}

func (b *Backend) Filesystems() ([]model.Filesystem, error) {
	return b.fs.Current()
}

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
