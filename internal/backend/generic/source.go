package generic

import (
	stderrors "errors"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/rileyhilliard/hypertop/internal/errors"
	"github.com/rileyhilliard/hypertop/internal/model"
)

// Source is the set of gopsutil reads the backend uses. Every error it
// returns is already classified.
type Source interface {
	HostInfo() (*host.InfoStat, error)
	CPUTimes() (cpu.TimesStat, error)
	CPUCount(logical bool) (int, error)
	VirtualMemory() (*mem.VirtualMemoryStat, error)
	SwapMemory() (*mem.SwapMemoryStat, error)
	LoadAvg() (*load.AvgStat, error)
	NetIO() ([]net.IOCountersStat, error)
	DiskIO() (map[string]disk.IOCountersStat, error)
	Partitions() ([]disk.PartitionStat, error)
	Usage(path string) (*disk.UsageStat, error)
	Processes() (model.ProcessSet, error)
	CmdInfo(pid int) (model.ProcessCommandInfo, error)
}

// classify folds gopsutil's "not implemented" sentinel into NOT_SUPPORTED.
// The sentinel lives in an internal package, so it is matched by text.
func classify(err error, what string) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "not implemented") {
		return errors.NotSupported(what)
	}
	if stderrors.Is(err, process.ErrorProcessNotRunning) {
		return errors.NotFound(what)
	}
	return errors.Classify(err, what)
}

type psSource struct {
	now func() time.Time
}

// NewPSSource reads the live system through gopsutil.
func NewPSSource() Source {
	return &psSource{now: time.Now}
}

func (s *psSource) HostInfo() (*host.InfoStat, error) {
	info, err := host.Info()
	return info, classify(err, "host info")
}

func (s *psSource) CPUTimes() (cpu.TimesStat, error) {
	times, err := cpu.Times(false)
	if err != nil {
		return cpu.TimesStat{}, classify(err, "cpu times")
	}
	if len(times) == 0 {
		return cpu.TimesStat{}, errors.NotAvailable("cpu times", nil)
	}
	return times[0], nil
}

func (s *psSource) CPUCount(logical bool) (int, error) {
	n, err := cpu.Counts(logical)
	return n, classify(err, "cpu count")
}

func (s *psSource) VirtualMemory() (*mem.VirtualMemoryStat, error) {
	m, err := mem.VirtualMemory()
	return m, classify(err, "memory")
}

func (s *psSource) SwapMemory() (*mem.SwapMemoryStat, error) {
	m, err := mem.SwapMemory()
	return m, classify(err, "swap")
}

func (s *psSource) LoadAvg() (*load.AvgStat, error) {
	l, err := load.Avg()
	return l, classify(err, "load average")
}

func (s *psSource) NetIO() ([]net.IOCountersStat, error) {
	n, err := net.IOCounters(true)
	return n, classify(err, "network counters")
}

func (s *psSource) DiskIO() (map[string]disk.IOCountersStat, error) {
	d, err := disk.IOCounters()
	return d, classify(err, "disk counters")
}

func (s *psSource) Partitions() ([]disk.PartitionStat, error) {
	p, err := disk.Partitions(false)
	return p, classify(err, "partitions")
}

func (s *psSource) Usage(path string) (*disk.UsageStat, error) {
	u, err := disk.Usage(path)
	return u, classify(err, "usage of "+path)
}

// statusChars maps gopsutil's state names back to kernel state letters.
var statusChars = map[string]model.Status{
	process.Running: model.StatusRunning,
	process.Sleep:   model.StatusSleeping,
	process.Blocked: model.StatusDiskSleep,
	process.Idle:    model.StatusIdle,
	process.Stop:    model.StatusStopped,
	process.Zombie:  model.StatusZombie,
	process.Wait:    model.StatusWaking,
	process.Lock:    model.StatusLocked,
}

func secondsToTicks(s float64) *uint64 {
	t := uint64(s*model.TicksPerSecond + 0.5)
	return &t
}

func (s *psSource) Processes() (model.ProcessSet, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, classify(err, "process table")
	}
	set := make(model.ProcessSet, len(procs))
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		rec := model.RawProcess{PID: int(p.Pid), Name: name, Status: model.StatusUnknown}
		if ppid, err := p.Ppid(); err == nil {
			v := int(ppid)
			rec.PPID = &v
		}
		if st, err := p.Status(); err == nil && len(st) > 0 {
			if c, ok := statusChars[st[0]]; ok {
				rec.Status = c
			}
		}
		if uids, err := p.Uids(); err == nil && len(uids) > 0 {
			uid := uint32(uids[0])
			rec.UID = &uid
		}
		if t, err := p.Times(); err == nil {
			rec.UTime = secondsToTicks(t.User)
			rec.STime = secondsToTicks(t.System)
		}
		if created, err := p.CreateTime(); err == nil && created > 0 {
			rec.StartTime = uint64(created)
		}
		if m, err := p.MemoryInfo(); err == nil {
			rec.RSS, rec.VSize = m.RSS, m.VMS
		}
		if n, err := p.NumThreads(); err == nil {
			rec.Threads = int(n)
		}
		if io, err := p.IOCounters(); err == nil {
			rb, wb := io.ReadBytes, io.WriteBytes
			rec.IORead, rec.IOWrite = &rb, &wb
		}
		rec.Fetched = s.now()
		set[rec.PID] = rec
	}
	return set, nil
}

func (s *psSource) CmdInfo(pid int) (model.ProcessCommandInfo, error) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return model.ProcessCommandInfo{}, classify(err, "process")
	}
	args, err := p.CmdlineSlice()
	if err != nil {
		return model.ProcessCommandInfo{}, classify(err, "process command line")
	}
	info := model.ProcessCommandInfo{Cmdline: args}
	if exe, err := p.Exe(); err == nil {
		info.Exe = exe
	}
	return info, nil
}
