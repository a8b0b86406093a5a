//go:build linux

package linux

import (
	"time"

	"github.com/prometheus/procfs"
	"github.com/prometheus/procfs/blockdevice"

	"github.com/rileyhilliard/hypertop/internal/errors"
	"github.com/rileyhilliard/hypertop/internal/model"
)

// fakeSource serves scripted readings. Fields may be swapped between refresh
// cycles; counters record how often each source was read.
type fakeSource struct {
	ticks    model.CPUTicks
	ticksErr error
	meminfo  procfs.Meminfo
	load     procfs.LoadAvg
	psi      map[string]procfs.PSIStats
	netdev   procfs.NetDev
	disks    []blockdevice.Diskstats
	whole    []string
	mounts   []*procfs.MountInfo
	statfs   map[string]FSUsage
	procs    model.ProcessSet
	cpuinfo  []procfs.CPUInfo
	cmd      map[int]model.ProcessCommandInfo

	reads map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{reads: make(map[string]int)}
}

func (f *fakeSource) Hostname() (string, error)          { return "box", nil }
func (f *fakeSource) SystemVersion() (string, error)     { return "Linux 6.1.0", nil }
func (f *fakeSource) Uptime() (time.Duration, error)     { return time.Hour, nil }
func (f *fakeSource) CPUInfo() ([]procfs.CPUInfo, error) { return f.cpuinfo, nil }

func (f *fakeSource) CPUTicks() (model.CPUTicks, error) {
	f.reads["cpu"]++
	return f.ticks, f.ticksErr
}

func (f *fakeSource) Meminfo() (procfs.Meminfo, error) {
	f.reads["memory"]++
	return f.meminfo, nil
}

func (f *fakeSource) LoadAvg() (procfs.LoadAvg, error) {
	return f.load, nil
}

func (f *fakeSource) Pressure(resource string) (procfs.PSIStats, error) {
	s, ok := f.psi[resource]
	if !ok {
		return procfs.PSIStats{}, errors.NotSupported("pressure stall information")
	}
	return s, nil
}

func (f *fakeSource) NetDev() (procfs.NetDev, error) {
	return f.netdev, nil
}

func (f *fakeSource) DiskStats() ([]blockdevice.Diskstats, error) {
	return f.disks, nil
}

func (f *fakeSource) BlockDevices() ([]string, error) {
	if f.whole == nil {
		return nil, errors.NotFound("/sys/block")
	}
	return f.whole, nil
}

func (f *fakeSource) Mounts() ([]*procfs.MountInfo, error) {
	return f.mounts, nil
}

func (f *fakeSource) Statfs(path string) (FSUsage, error) {
	u, ok := f.statfs[path]
	if !ok {
		return FSUsage{}, errors.NotAllowed("statfs "+path, nil)
	}
	return u, nil
}

func (f *fakeSource) Processes() (model.ProcessSet, error) {
	f.reads["processes"]++
	return f.procs, nil
}

func (f *fakeSource) CmdInfo(pid int) (model.ProcessCommandInfo, error) {
	info, ok := f.cmd[pid]
	if !ok {
		return model.ProcessCommandInfo{}, errors.NotFound("process")
	}
	return info, nil
}

func u64(v uint64) *uint64 {
	return &v
}

func diskstat(name string, readSectors, writeSectors uint64) blockdevice.Diskstats {
	return blockdevice.Diskstats{
		Info:    blockdevice.Info{DeviceName: name},
		IOStats: blockdevice.IOStats{ReadSectors: readSectors, WriteSectors: writeSectors, ReadIOs: 1, WriteIOs: 1},
	}
}
