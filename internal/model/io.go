package model

import (
	"time"

	"github.com/rileyhilliard/hypertop/internal/sample"
)

// NetCounters are an interface's cumulative counters, or a per-second rate
// derived from them.
type NetCounters struct {
	RxBytes   uint64 `json:"rx_bytes" yaml:"rx_bytes"`
	RxPackets uint64 `json:"rx_packets" yaml:"rx_packets"`
	RxErrors  uint64 `json:"rx_errors" yaml:"rx_errors"`
	RxDropped uint64 `json:"rx_dropped" yaml:"rx_dropped"`
	TxBytes   uint64 `json:"tx_bytes" yaml:"tx_bytes"`
	TxPackets uint64 `json:"tx_packets" yaml:"tx_packets"`
	TxErrors  uint64 `json:"tx_errors" yaml:"tx_errors"`
	TxDropped uint64 `json:"tx_dropped" yaml:"tx_dropped"`
}

// Sub diffs two samples of the same interface.
func (c NetCounters) Sub(prev NetCounters) NetCounters {
	return NetCounters{
		RxBytes:   sample.SubSat(c.RxBytes, prev.RxBytes),
		RxPackets: sample.SubSat(c.RxPackets, prev.RxPackets),
		RxErrors:  sample.SubSat(c.RxErrors, prev.RxErrors),
		RxDropped: sample.SubSat(c.RxDropped, prev.RxDropped),
		TxBytes:   sample.SubSat(c.TxBytes, prev.TxBytes),
		TxPackets: sample.SubSat(c.TxPackets, prev.TxPackets),
		TxErrors:  sample.SubSat(c.TxErrors, prev.TxErrors),
		TxDropped: sample.SubSat(c.TxDropped, prev.TxDropped),
	}
}

// PerSecond scales every counter over d.
func (c NetCounters) PerSecond(d time.Duration) NetCounters {
	return NetCounters{
		RxBytes:   sample.NormUint64(c.RxBytes, d),
		RxPackets: sample.NormUint64(c.RxPackets, d),
		RxErrors:  sample.NormUint64(c.RxErrors, d),
		RxDropped: sample.NormUint64(c.RxDropped, d),
		TxBytes:   sample.NormUint64(c.TxBytes, d),
		TxPackets: sample.NormUint64(c.TxPackets, d),
		TxErrors:  sample.NormUint64(c.TxErrors, d),
		TxDropped: sample.NormUint64(c.TxDropped, d),
	}
}

// NetworkStats is one interface: cumulative totals plus the rate over the
// last window. Rate is nil until the interface has been seen twice.
type NetworkStats struct {
	Name  string       `json:"name" yaml:"name"`
	Total NetCounters  `json:"total" yaml:"total"`
	Rate  *NetCounters `json:"rate,omitempty" yaml:"rate,omitempty"`
}

// DiskCounters are a block device's cumulative counters or a rate.
type DiskCounters struct {
	ReadBytes  uint64 `json:"read_bytes" yaml:"read_bytes"`
	WriteBytes uint64 `json:"write_bytes" yaml:"write_bytes"`
	Reads      uint64 `json:"reads" yaml:"reads"`
	Writes     uint64 `json:"writes" yaml:"writes"`
	// Milliseconds spent doing I/O, when the platform reports it.
	IOTime *uint64 `json:"io_time,omitempty" yaml:"io_time,omitempty"`
}

// Sub diffs two samples of the same device.
func (c DiskCounters) Sub(prev DiskCounters) DiskCounters {
	return DiskCounters{
		ReadBytes:  sample.SubSat(c.ReadBytes, prev.ReadBytes),
		WriteBytes: sample.SubSat(c.WriteBytes, prev.WriteBytes),
		Reads:      sample.SubSat(c.Reads, prev.Reads),
		Writes:     sample.SubSat(c.Writes, prev.Writes),
		IOTime:     sample.DiffOpt(c.IOTime, prev.IOTime),
	}
}

// PerSecond scales every counter over d.
func (c DiskCounters) PerSecond(d time.Duration) DiskCounters {
	return DiskCounters{
		ReadBytes:  sample.NormUint64(c.ReadBytes, d),
		WriteBytes: sample.NormUint64(c.WriteBytes, d),
		Reads:      sample.NormUint64(c.Reads, d),
		Writes:     sample.NormUint64(c.Writes, d),
		IOTime:     sample.NormOpt(c.IOTime, d),
	}
}

// DiskIO is one block device: totals plus the rate over the last window.
type DiskIO struct {
	Name  string        `json:"name" yaml:"name"`
	Total DiskCounters  `json:"total" yaml:"total"`
	Rate  *DiskCounters `json:"rate,omitempty" yaml:"rate,omitempty"`
}

// Filesystem is usage of one mounted filesystem, in bytes.
type Filesystem struct {
	Device     string `json:"device" yaml:"device"`
	MountPoint string `json:"mount_point" yaml:"mount_point"`
	FSType     string `json:"fs_type" yaml:"fs_type"`
	Total      uint64 `json:"total" yaml:"total"`
	Used       uint64 `json:"used" yaml:"used"`
	Free       uint64 `json:"free" yaml:"free"`
	// Available to unprivileged users; smaller than Free when blocks are
	// reserved for root.
	Available uint64 `json:"available" yaml:"available"`
}

// Utilization is the fraction of user-visible space in use.
func (f Filesystem) Utilization() float64 {
	return fraction(f.Used, f.Used+f.Available)
}

// GPU is one device's telemetry. Temperature and power are nil when the
// device does not report them.
type GPU struct {
	Index       int      `json:"index" yaml:"index"`
	Name        string   `json:"name" yaml:"name"`
	UUID        string   `json:"uuid,omitempty" yaml:"uuid,omitempty"`
	Utilization float64  `json:"utilization" yaml:"utilization"`
	MemUsed     uint64   `json:"mem_used" yaml:"mem_used"`
	MemTotal    uint64   `json:"mem_total" yaml:"mem_total"`
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	Power       *float64 `json:"power,omitempty" yaml:"power,omitempty"`
	PowerLimit  *float64 `json:"power_limit,omitempty" yaml:"power_limit,omitempty"`
}

// MemFrac is used device memory as a fraction of total.
func (g GPU) MemFrac() float64 {
	return fraction(g.MemUsed, g.MemTotal)
}
