package generic

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/hypertop/internal/errors"
	"github.com/rileyhilliard/hypertop/internal/model"
)

type fakeSource struct {
	times  cpu.TimesStat
	vm     mem.VirtualMemoryStat
	nets   []net.IOCountersStat
	disks  map[string]disk.IOCountersStat
	parts  []disk.PartitionStat
	usage  map[string]disk.UsageStat
	procs  model.ProcessSet
	counts map[bool]int

	cpuReads int
}

func (f *fakeSource) HostInfo() (*host.InfoStat, error) {
	return &host.InfoStat{
		Hostname: "mac", Uptime: 90, OS: "darwin",
		Platform: "darwin", PlatformVersion: "14.5", KernelVersion: "23.5.0",
	}, nil
}

func (f *fakeSource) CPUTimes() (cpu.TimesStat, error) {
	f.cpuReads++
	return f.times, nil
}

func (f *fakeSource) CPUCount(logical bool) (int, error) {
	n, ok := f.counts[logical]
	if !ok {
		return 0, errors.NotSupported("cpu count")
	}
	return n, nil
}

func (f *fakeSource) VirtualMemory() (*mem.VirtualMemoryStat, error) { return &f.vm, nil }

func (f *fakeSource) SwapMemory() (*mem.SwapMemoryStat, error) {
	return &mem.SwapMemoryStat{Total: 100, Used: 25}, nil
}

func (f *fakeSource) LoadAvg() (*load.AvgStat, error) {
	return &load.AvgStat{Load1: 1, Load5: 2, Load15: 3}, nil
}

func (f *fakeSource) NetIO() ([]net.IOCountersStat, error)            { return f.nets, nil }
func (f *fakeSource) DiskIO() (map[string]disk.IOCountersStat, error) { return f.disks, nil }
func (f *fakeSource) Partitions() ([]disk.PartitionStat, error)       { return f.parts, nil }

func (f *fakeSource) Usage(path string) (*disk.UsageStat, error) {
	u, ok := f.usage[path]
	if !ok {
		return nil, errors.NotAllowed(path, nil)
	}
	return &u, nil
}

func (f *fakeSource) Processes() (model.ProcessSet, error) { return f.procs, nil }

func (f *fakeSource) CmdInfo(pid int) (model.ProcessCommandInfo, error) {
	return model.ProcessCommandInfo{}, errors.NotFound("process")
}

type manualClock struct{ t time.Time }

func (c *manualClock) Now() time.Time { return c.t }

func newTestBackend(src *fakeSource) (*Backend, *manualClock) {
	clock := &manualClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New(Options{Source: src, Now: clock.Now}), clock
}

func cycle(b *Backend, clock *manualClock, d time.Duration) {
	clock.t = clock.t.Add(d)
	_ = b.Update()
}

func TestGlobalCPU(t *testing.T) {
	src := &fakeSource{times: cpu.TimesStat{User: 1, Idle: 9}}
	b, clock := newTestBackend(src)

	first, err := b.GlobalCPU()
	require.NoError(t, err)
	assert.True(t, first.Instantaneous)
	assert.InDelta(t, 0.1, first.Utilization, 1e-9)

	src.times = cpu.TimesStat{User: 2, Idle: 10}
	cycle(b, clock, time.Second)

	second, err := b.GlobalCPU()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, second.Utilization, 1e-9)
	assert.Equal(t, 2, src.cpuReads)
}

func TestPressureNotSupported(t *testing.T) {
	b, _ := newTestBackend(&fakeSource{})
	_, err := b.Pressure()
	assert.True(t, errors.IsCode(err, errors.ErrNotSupported))
}

func TestIdentity(t *testing.T) {
	b, _ := newTestBackend(&fakeSource{})

	host, err := b.Hostname()
	require.NoError(t, err)
	assert.Equal(t, "mac", host)

	version, err := b.SystemVersion()
	require.NoError(t, err)
	assert.Equal(t, "darwin 14.5 (darwin 23.5.0)", version)

	up, err := b.Uptime()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, up)
	assert.Equal(t, "generic", b.Name())
}

func TestCPUCounts(t *testing.T) {
	b, _ := newTestBackend(&fakeSource{counts: map[bool]int{false: 4, true: 8}})
	cores, err := b.CPUCount()
	require.NoError(t, err)
	assert.Equal(t, 4, cores)
	logical, _ := b.LogicalCPUCount()
	assert.Equal(t, 8, logical)

	b, _ = newTestBackend(&fakeSource{})
	_, err = b.CPUCount()
	assert.True(t, errors.IsCode(err, errors.ErrNotSupported))
	logical, err = b.LogicalCPUCount()
	require.NoError(t, err)
	assert.Positive(t, logical)
}

func TestMemorySwapLoad(t *testing.T) {
	src := &fakeSource{vm: mem.VirtualMemoryStat{Total: 1000, Used: 400, Free: 300, Buffers: 100, Cached: 200}}
	b, _ := newTestBackend(src)

	m, err := b.Memory()
	require.NoError(t, err)
	assert.Equal(t, uint64(400), m.Used)
	assert.Equal(t, uint64(300), m.Freeable)
	assert.InDelta(t, 0.4, m.UsedFrac(), 1e-9)

	s, err := b.Swap()
	require.NoError(t, err)
	assert.InDelta(t, 0.25, s.UsedFrac(), 1e-9)

	l, err := b.LoadAvg()
	require.NoError(t, err)
	assert.Equal(t, model.LoadAvg{One: 1, Five: 2, Fifteen: 3}, l)
}

func TestNetworksAndDisks(t *testing.T) {
	src := &fakeSource{
		nets:  []net.IOCountersStat{{Name: "en0", BytesRecv: 100}},
		disks: map[string]disk.IOCountersStat{"disk0": {ReadBytes: 1000}},
	}
	b, clock := newTestBackend(src)

	nets, err := b.Networks()
	require.NoError(t, err)
	require.Len(t, nets, 1)
	assert.Nil(t, nets[0].Rate)

	src.nets = []net.IOCountersStat{{Name: "en0", BytesRecv: 600}}
	src.disks = map[string]disk.IOCountersStat{"disk0": {ReadBytes: 3000}}
	cycle(b, clock, 500*time.Millisecond)

	nets, err = b.Networks()
	require.NoError(t, err)
	require.NotNil(t, nets[0].Rate)
	assert.Equal(t, uint64(1000), nets[0].Rate.RxBytes)

	disks, err := b.DiskIO()
	require.NoError(t, err)
	require.Len(t, disks, 1)
	assert.Nil(t, disks[0].Rate, "disks were first read this cycle")
	assert.Equal(t, uint64(3000), disks[0].Total.ReadBytes)
}

func TestFilesystems(t *testing.T) {
	src := &fakeSource{
		parts: []disk.PartitionStat{
			{Device: "/dev/disk1s1", Mountpoint: "/", Fstype: "apfs"},
			{Device: "/dev/disk1s1", Mountpoint: "/System/Volumes/Data", Fstype: "apfs"},
			{Device: "/dev/disk2s1", Mountpoint: "/Volumes/Locked", Fstype: "apfs"},
		},
		usage: map[string]disk.UsageStat{
			"/": {Total: 1000, Used: 600, Free: 300},
		},
	}
	b, _ := newTestBackend(src)

	fss, err := b.Filesystems()
	require.NoError(t, err)
	require.Len(t, fss, 1)
	assert.Equal(t, uint64(400), fss[0].Free)
	assert.Equal(t, uint64(300), fss[0].Available)
}

func TestProcesses(t *testing.T) {
	ticks := func(v uint64) *uint64 { return &v }
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{
		counts: map[bool]int{true: 1},
		times:  cpu.TimesStat{Idle: 10},
		procs: model.ProcessSet{
			1: {PID: 1, Name: "launchd", UTime: ticks(0), STime: ticks(0), Fetched: at},
		},
	}
	b, clock := newTestBackend(src)

	procs, err := b.Processes()
	require.NoError(t, err)
	require.Len(t, procs, 1)
	assert.Nil(t, procs[0].CPU)

	src.times = cpu.TimesStat{User: 0.5, Idle: 10.5}
	src.procs = model.ProcessSet{
		1: {PID: 1, Name: "launchd", UTime: ticks(25), STime: ticks(25), Fetched: at.Add(time.Second)},
	}
	cycle(b, clock, time.Second)

	procs, err = b.Processes()
	require.NoError(t, err)
	require.NotNil(t, procs[0].CPU)
	assert.InDelta(t, 0.5, *procs[0].CPU, 1e-9)
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil, "x"))
	assert.True(t, errors.IsCode(classify(stderrors.New("not implemented yet"), "x"), errors.ErrNotSupported))
	assert.True(t, errors.IsCode(classify(process.ErrorProcessNotRunning, "x"), errors.ErrNotFound))
	assert.True(t, errors.IsCode(classify(stderrors.New("boom"), "x"), errors.ErrOther))
}

func TestGPUsDisabled(t *testing.T) {
	b, _ := newTestBackend(&fakeSource{})
	assert.False(t, b.HasGPU())
	gpus, err := b.GPUs()
	assert.NoError(t, err)
	assert.Empty(t, gpus)
}
