//go:build linux

package linux

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/prometheus/procfs"
	"github.com/prometheus/procfs/blockdevice"
	"github.com/shirou/gopsutil/v3/host"
	"golang.org/x/sys/unix"

	"github.com/rileyhilliard/hypertop/internal/errors"
	"github.com/rileyhilliard/hypertop/internal/model"
)

// FSUsage is the result of one statfs call, in bytes.
type FSUsage struct {
	Total     uint64
	Free      uint64
	Available uint64
}

// Source performs the raw point-in-time reads the backend is built on. Every
// error it returns is already classified.
type Source interface {
	Hostname() (string, error)
	SystemVersion() (string, error)
	Uptime() (time.Duration, error)
	CPUInfo() ([]procfs.CPUInfo, error)

	CPUTicks() (model.CPUTicks, error)
	Meminfo() (procfs.Meminfo, error)
	LoadAvg() (procfs.LoadAvg, error)
	Pressure(resource string) (procfs.PSIStats, error)
	NetDev() (procfs.NetDev, error)
	DiskStats() ([]blockdevice.Diskstats, error)
	// BlockDevices lists whole disks (no partitions).
	BlockDevices() ([]string, error)
	Mounts() ([]*procfs.MountInfo, error)
	Statfs(path string) (FSUsage, error)

	// Processes enumerates every process in one pass. Processes that vanish
	// mid-read are skipped.
	Processes() (model.ProcessSet, error)
	CmdInfo(pid int) (model.ProcessCommandInfo, error)
}

// procSource reads /proc and /sys.
type procSource struct {
	proc  procfs.FS
	block blockdevice.FS
	now   func() time.Time
}

// NewProcSource opens the default /proc and /sys mounts.
func NewProcSource() (Source, error) {
	proc, err := procfs.NewDefaultFS()
	if err != nil {
		return nil, errors.NotSupported("procfs")
	}
	block, err := blockdevice.NewDefaultFS()
	if err != nil {
		return nil, errors.NotSupported("sysfs")
	}
	return &procSource{proc: proc, block: block, now: time.Now}, nil
}

func (s *procSource) Hostname() (string, error) {
	name, err := os.Hostname()
	return name, errors.Classify(err, "hostname")
}

func (s *procSource) SystemVersion() (string, error) {
	kernel, err := host.KernelVersion()
	if err != nil {
		return "", errors.Classify(err, "kernel version")
	}
	platform, _, version, err := host.PlatformInformation()
	if err != nil || platform == "" {
		return "Linux " + kernel, nil
	}
	return fmt.Sprintf("%s %s (Linux %s)", platform, version, kernel), nil
}

func (s *procSource) Uptime() (time.Duration, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, errors.Classify(err, "uptime")
	}
	return time.Duration(info.Uptime) * time.Second, nil
}

func (s *procSource) CPUInfo() ([]procfs.CPUInfo, error) {
	info, err := s.proc.CPUInfo()
	return info, errors.Classify(err, "cpuinfo")
}

// ticks converts procfs seconds back to USER_HZ ticks.
func ticks(seconds float64) uint64 {
	return uint64(seconds*model.TicksPerSecond + 0.5)
}

func ticksPtr(seconds float64) *uint64 {
	t := ticks(seconds)
	return &t
}

func (s *procSource) CPUTicks() (model.CPUTicks, error) {
	stat, err := s.proc.Stat()
	if err != nil {
		return model.CPUTicks{}, errors.Classify(err, "/proc/stat")
	}
	c := stat.CPUTotal
	return model.CPUTicks{
		User:      ticks(c.User),
		Nice:      ticks(c.Nice),
		System:    ticks(c.System),
		Idle:      ticks(c.Idle),
		IOWait:    ticksPtr(c.Iowait),
		IRQ:       ticksPtr(c.IRQ),
		SoftIRQ:   ticksPtr(c.SoftIRQ),
		Steal:     ticksPtr(c.Steal),
		Guest:     ticksPtr(c.Guest),
		GuestNice: ticksPtr(c.GuestNice),
	}, nil
}

func (s *procSource) Meminfo() (procfs.Meminfo, error) {
	m, err := s.proc.Meminfo()
	return m, errors.Classify(err, "/proc/meminfo")
}

func (s *procSource) LoadAvg() (procfs.LoadAvg, error) {
	l, err := s.proc.LoadAvg()
	if err != nil {
		return procfs.LoadAvg{}, errors.Classify(err, "/proc/loadavg")
	}
	return *l, nil
}

func (s *procSource) Pressure(resource string) (procfs.PSIStats, error) {
	p, err := s.proc.PSIStatsForResource(resource)
	if err != nil {
		err = errors.Classify(err, "/proc/pressure/"+resource)
		if errors.IsCode(err, errors.ErrNotFound) {
			return p, errors.NotSupported("pressure stall information")
		}
		return p, err
	}
	return p, nil
}

func (s *procSource) NetDev() (procfs.NetDev, error) {
	n, err := s.proc.NetDev()
	return n, errors.Classify(err, "/proc/net/dev")
}

func (s *procSource) DiskStats() ([]blockdevice.Diskstats, error) {
	d, err := s.block.ProcDiskstats()
	return d, errors.Classify(err, "/proc/diskstats")
}

func (s *procSource) BlockDevices() ([]string, error) {
	d, err := s.block.SysBlockDevices()
	return d, errors.Classify(err, "/sys/block")
}

func (s *procSource) Mounts() ([]*procfs.MountInfo, error) {
	m, err := procfs.GetMounts()
	return m, errors.Classify(err, "mountinfo")
}

func (s *procSource) Statfs(path string) (FSUsage, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return FSUsage{}, errors.Classify(err, "statfs "+path)
	}
	bs := uint64(st.Bsize)
	return FSUsage{
		Total:     st.Blocks * bs,
		Free:      st.Bfree * bs,
		Available: st.Bavail * bs,
	}, nil
}

func (s *procSource) Processes() (model.ProcessSet, error) {
	procs, err := s.proc.AllProcs()
	if err != nil {
		return nil, errors.Classify(err, "process table")
	}
	set := make(model.ProcessSet, len(procs))
	for _, p := range procs {
		stat, err := p.Stat()
		if err != nil {
			// Exited between listing and reading.
			continue
		}
		ppid := stat.PPID
		utime, stime := uint64(stat.UTime), uint64(stat.STime)
		rec := model.RawProcess{
			PID:       p.PID,
			PPID:      &ppid,
			Name:      stat.Comm,
			Status:    model.ParseStatus(stat.State),
			UTime:     &utime,
			STime:     &stime,
			StartTime: stat.Starttime,
			VSize:     uint64(stat.VirtualMemory()),
			RSS:       uint64(stat.ResidentMemory()),
			Threads:   stat.NumThreads,
		}
		if status, err := p.NewStatus(); err == nil {
			uid := uint32(status.UIDs[0])
			rec.UID = &uid
		}
		if io, err := p.IO(); err == nil {
			rb, wb := io.ReadBytes, io.WriteBytes
			rec.IORead, rec.IOWrite = &rb, &wb
		}
		rec.Fetched = s.now()
		set[p.PID] = rec
	}
	return set, nil
}

func (s *procSource) CmdInfo(pid int) (model.ProcessCommandInfo, error) {
	what := fmt.Sprintf("process %d", pid)
	p, err := s.proc.Proc(pid)
	if err != nil {
		return model.ProcessCommandInfo{}, errors.Classify(err, what)
	}
	cmdline, err := p.CmdLine()
	if err != nil {
		return model.ProcessCommandInfo{}, errors.Classify(err, what)
	}
	info := model.ProcessCommandInfo{Cmdline: cmdline}
	// Kernel threads and other users' processes have no readable exe link.
	if exe, err := p.Executable(); err == nil {
		info.Exe = strings.TrimSuffix(exe, " (deleted)")
	}
	return info, nil
}
