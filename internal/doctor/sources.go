package doctor

import (
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rileyhilliard/hypertop/internal/backend"
	"github.com/rileyhilliard/hypertop/internal/backend/gpu"
	"github.com/rileyhilliard/hypertop/internal/errors"
)

// SourceCheck reads one data source. Absent sources warn; broken ones fail.
type SourceCheck struct {
	ID    string
	Label string
	// Read returns a short description of what was read.
	Read func() (string, error)
}

func (c *SourceCheck) Name() string     { return "source_" + c.ID }
func (c *SourceCheck) Category() string { return CategorySources }

func (c *SourceCheck) Run() CheckResult {
	detail, err := c.Read()
	switch {
	case err == nil:
		msg := c.Label
		if detail != "" {
			msg += ": " + detail
		}
		return CheckResult{Name: c.Name(), Status: StatusPass, Message: msg}
	case errors.IsAcceptable(err):
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("%s: %s", c.Label, errors.Reason(err)),
			Suggestion: suggestionFor(err),
		}
	default:
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s: %s", c.Label, errors.Reason(err)),
			Suggestion: "The dashboard shows this widget as an error; the log file has details",
		}
	}
}

func suggestionFor(err error) string {
	switch errors.Kind(err) {
	case errors.ErrNotAllowed:
		return "Run hypertop with more privileges to see this"
	case errors.ErrNotSupported:
		return "This backend or kernel doesn't provide it; try --backend linux on Linux"
	}
	return ""
}

// NewSourceChecks returns one check per backend data source. b must have
// completed Update so reads have a cycle to draw from.
func NewSourceChecks(b backend.Backend) []Check {
	source := func(id, label string, read func() (string, error)) Check {
		return &SourceCheck{ID: id, Label: label, Read: read}
	}

	return []Check{
		source("backend", "Backend", func() (string, error) {
			return b.Name(), nil
		}),
		source("hostname", "Hostname", b.Hostname),
		source("version", "System version", b.SystemVersion),
		source("uptime", "Uptime", func() (string, error) {
			up, err := b.Uptime()
			return up.Truncate(time.Second).String(), err
		}),
		source("cpu_count", "CPU count", func() (string, error) {
			cores, err := b.CPUCount()
			if err != nil {
				return "", err
			}
			logical, err := b.LogicalCPUCount()
			return fmt.Sprintf("%d cores, %d threads", cores, logical), err
		}),
		source("cpu", "CPU usage", func() (string, error) {
			cpu, err := b.GlobalCPU()
			return fmt.Sprintf("%.1f%%", cpu.Utilization*100), err
		}),
		source("memory", "Memory", func() (string, error) {
			mem, err := b.Memory()
			return fmt.Sprintf("%.1f%% used", mem.UsedFrac()*100), err
		}),
		source("swap", "Swap", func() (string, error) {
			swap, err := b.Swap()
			if swap.Total == 0 {
				return "none configured", err
			}
			return fmt.Sprintf("%.1f%% used", swap.UsedFrac()*100), err
		}),
		source("load", "Load average", func() (string, error) {
			l, err := b.LoadAvg()
			return fmt.Sprintf("%.2f %.2f %.2f", l.One, l.Five, l.Fifteen), err
		}),
		source("pressure", "Pressure stall information", func() (string, error) {
			_, err := b.Pressure()
			return "", err
		}),
		source("processes", "Processes", func() (string, error) {
			procs, err := b.Processes()
			return fmt.Sprintf("%d visible", len(procs)), err
		}),
		source("process_time", "Per-process CPU time", func() (string, error) {
			if !b.HasProcessTime() {
				return "", errors.NotSupported("per-process CPU time")
			}
			return "time sort available", nil
		}),
		source("networks", "Network interfaces", func() (string, error) {
			nets, err := b.Networks()
			names := make([]string, 0, len(nets))
			for _, n := range nets {
				names = append(names, n.Name)
			}
			return strings.Join(names, ", "), err
		}),
		source("disks", "Disk I/O", func() (string, error) {
			disks, err := b.DiskIO()
			return fmt.Sprintf("%d devices", len(disks)), err
		}),
		source("filesystems", "Filesystems", func() (string, error) {
			fs, err := b.Filesystems()
			return fmt.Sprintf("%d mounted", len(fs)), err
		}),
	}
}

// GPUCheck reports whether GPU statistics will appear.
type GPUCheck struct {
	Enabled  bool
	Backend  backend.Backend
	LookPath func(string) (string, error) // defaults to exec.LookPath
}

func (c *GPUCheck) Name() string     { return "gpu" }
func (c *GPUCheck) Category() string { return CategoryGPU }

func (c *GPUCheck) Run() CheckResult {
	if !c.Enabled {
		return CheckResult{Name: c.Name(), Status: StatusPass, Message: "GPU probing disabled"}
	}

	lookPath := c.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if _, err := lookPath(gpu.DefaultBinary); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    gpu.DefaultBinary + " not found",
			Suggestion: "Install the NVIDIA driver utilities to see GPU usage, or set gpu.enabled: false",
		}
	}

	if !c.Backend.HasGPU() {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    gpu.DefaultBinary + " found, but it reported no GPUs",
			Suggestion: "Check that the driver is loaded: run " + gpu.DefaultBinary + " by hand",
		}
	}

	gpus, err := c.Backend.GPUs()
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Reading GPUs failed: " + errors.Reason(err),
			Suggestion: "Raise gpu.timeout if nvidia-smi is slow on this machine",
		}
	}
	names := make([]string, 0, len(gpus))
	for _, g := range gpus {
		names = append(names, g.Name)
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%d GPU%s: %s", len(gpus), pluralize(len(gpus)), strings.Join(names, ", ")),
	}
}
