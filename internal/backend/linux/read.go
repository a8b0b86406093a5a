//go:build linux

package linux

import (
	"strings"

	"github.com/prometheus/procfs"

	"github.com/rileyhilliard/hypertop/internal/errors"
	"github.com/rileyhilliard/hypertop/internal/model"
	"github.com/rileyhilliard/hypertop/internal/sample"
)

// sectorSize is the fixed unit /proc/diskstats counts in, regardless of the
// device's physical sector size.
const sectorSize = 512

func val(p *uint64) uint64 {
	if p == nil {
		return 0
	}
	return *p
}

// memoryFrom derives used memory the way free(1) does: total minus free,
// buffers, page cache and reclaimable slab.
func memoryFrom(m procfs.Meminfo) (model.Memory, error) {
	if m.MemTotalBytes == nil || m.MemFreeBytes == nil {
		return model.Memory{}, errors.NotAvailable("MemTotal/MemFree in /proc/meminfo", nil)
	}
	total, free := *m.MemTotalBytes, *m.MemFreeBytes
	freeable := val(m.BuffersBytes) + val(m.CachedBytes) + val(m.SReclaimableBytes)
	return model.Memory{
		Used:      sample.SubSat(sample.SubSat(total, free), freeable),
		Freeable:  freeable,
		Free:      free,
		Total:     total,
		Shared:    m.ShmemBytes,
		Buffers:   m.BuffersBytes,
		Cached:    m.CachedBytes,
		Available: m.MemAvailableBytes,
	}, nil
}

func swapFrom(m procfs.Meminfo) (model.Swap, error) {
	if m.SwapTotalBytes == nil {
		return model.Swap{}, errors.NotAvailable("SwapTotal in /proc/meminfo", nil)
	}
	total := *m.SwapTotalBytes
	return model.Swap{
		Used:  sample.SubSat(total, val(m.SwapFreeBytes)),
		Total: total,
	}, nil
}

func psiLine(l *procfs.PSILine) model.PressureLine {
	if l == nil {
		return model.PressureLine{}
	}
	return model.PressureLine{Avg10: l.Avg10, Avg60: l.Avg60, Avg300: l.Avg300, Total: l.Total}
}

func psiStat(s procfs.PSIStats) model.PressureStat {
	out := model.PressureStat{Some: psiLine(s.Some)}
	if s.Full != nil {
		full := psiLine(s.Full)
		out.Full = &full
	}
	return out
}

func (b *Backend) readPressure() (model.Pressure, error) {
	var p model.Pressure
	for _, r := range []struct {
		name string
		dst  *model.PressureStat
	}{
		{"cpu", &p.CPU},
		{"memory", &p.Memory},
		{"io", &p.IO},
	} {
		s, err := b.src.Pressure(r.name)
		if err != nil {
			return model.Pressure{}, err
		}
		*r.dst = psiStat(s)
	}
	return p, nil
}

func (b *Backend) readNetworks() (map[string]model.NetCounters, error) {
	dev, err := b.src.NetDev()
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.NetCounters, len(dev))
	for name, l := range dev {
		out[name] = model.NetCounters{
			RxBytes:   l.RxBytes,
			RxPackets: l.RxPackets,
			RxErrors:  l.RxErrors,
			RxDropped: l.RxDropped,
			TxBytes:   l.TxBytes,
			TxPackets: l.TxPackets,
			TxErrors:  l.TxErrors,
			TxDropped: l.TxDropped,
		}
	}
	return out, nil
}

// virtualDisk reports block devices that never touch real storage.
func virtualDisk(name string) bool {
	return strings.HasPrefix(name, "loop") || strings.HasPrefix(name, "ram")
}

// readDisks keeps whole disks only. When /sys/block cannot be listed every
// non-virtual device is kept, partitions included.
func (b *Backend) readDisks() (map[string]model.DiskCounters, error) {
	stats, err := b.src.DiskStats()
	if err != nil {
		return nil, err
	}
	var whole map[string]bool
	if names, err := b.src.BlockDevices(); err == nil {
		whole = make(map[string]bool, len(names))
		for _, n := range names {
			whole[n] = true
		}
	} else {
		b.log.Debug("listing whole disks: %v", err)
	}

	out := make(map[string]model.DiskCounters, len(stats))
	for _, d := range stats {
		name := d.DeviceName
		if virtualDisk(name) || (whole != nil && !whole[name]) {
			continue
		}
		ioTime := d.IOsTotalTicks
		out[name] = model.DiskCounters{
			ReadBytes:  d.ReadSectors * sectorSize,
			WriteBytes: d.WriteSectors * sectorSize,
			Reads:      d.ReadIOs,
			Writes:     d.WriteIOs,
			IOTime:     &ioTime,
		}
	}
	return out, nil
}

// pseudoFS lists filesystem types with no backing storage.
var pseudoFS = map[string]bool{
	"autofs": true, "binfmt_misc": true, "bpf": true, "cgroup": true,
	"cgroup2": true, "configfs": true, "debugfs": true, "devpts": true,
	"devtmpfs": true, "efivarfs": true, "fusectl": true, "hugetlbfs": true,
	"mqueue": true, "nsfs": true, "overlay": true, "proc": true,
	"pstore": true, "ramfs": true, "rpc_pipefs": true, "securityfs": true,
	"squashfs": true, "sysfs": true, "tmpfs": true, "tracefs": true,
}

// readFilesystems reports each storage device once, at the first mount point
// listed for it.
func (b *Backend) readFilesystems() ([]model.Filesystem, error) {
	mounts, err := b.src.Mounts()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []model.Filesystem
	for _, m := range mounts {
		if pseudoFS[m.FSType] || seen[m.Source] {
			continue
		}
		if !strings.HasPrefix(m.Source, "/") && m.FSType != "zfs" && m.FSType != "btrfs" {
			continue
		}
		u, err := b.src.Statfs(m.MountPoint)
		if err != nil {
			b.log.Debug("statfs %s: %v", m.MountPoint, err)
			continue
		}
		if u.Total == 0 {
			continue
		}
		seen[m.Source] = true
		out = append(out, model.Filesystem{
			Device:     m.Source,
			MountPoint: m.MountPoint,
			FSType:     m.FSType,
			Total:      u.Total,
			Used:       sample.SubSat(u.Total, u.Free),
			Free:       u.Free,
			Available:  u.Available,
		})
	}
	return out, nil
}
