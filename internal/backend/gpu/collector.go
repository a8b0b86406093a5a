// Package gpu reads NVIDIA GPU telemetry through the nvidia-smi CLI.
//
// A missing binary, a driver that is not loaded or a permission failure at
// startup all mean "this machine has no GPUs we can see", never an error.
package gpu

import (
	"bufio"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/rileyhilliard/hypertop/internal/errors"
	"github.com/rileyhilliard/hypertop/internal/logger"
	"github.com/rileyhilliard/hypertop/internal/model"
)

// DefaultTimeout bounds a single nvidia-smi invocation.
const DefaultTimeout = 2 * time.Second

// DefaultBinary is the vendor CLI looked up on PATH.
const DefaultBinary = "nvidia-smi"

// Runner runs an external command. Tests substitute a fake.
type Runner interface {
	LookPath(name string) (string, error)
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Options configures a Collector.
type Options struct {
	Binary  string
	Timeout time.Duration
	Runner  Runner
	Logger  logger.Logger
}

// Collector queries GPUs once per call. It is initialized once at startup.
type Collector struct {
	path    string
	timeout time.Duration
	runner  Runner
	log     logger.Logger
	devices int
}

// New probes for GPUs. It never fails: when the CLI is missing or cannot
// list devices the collector simply reports none.
func New(opts Options) *Collector {
	if opts.Binary == "" {
		opts.Binary = DefaultBinary
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Runner == nil {
		opts.Runner = execRunner{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}
	c := &Collector{
		timeout: opts.Timeout,
		runner:  opts.Runner,
		log:     opts.Logger,
	}

	path, err := c.runner.LookPath(opts.Binary)
	if err != nil {
		c.log.Info("GPU support disabled: %s not found", opts.Binary)
		return c
	}

	out, err := c.run(path, "-L")
	if err != nil {
		c.log.Info("GPU support disabled: %s -L failed: %v", opts.Binary, err)
		return c
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "GPU ") {
			c.devices++
		}
	}
	if c.devices == 0 {
		c.log.Info("GPU support disabled: no devices listed")
		return c
	}
	c.path = path
	c.log.Info("found %d GPU(s)", c.devices)
	return c
}

// Available reports whether any GPU was found at startup.
func (c *Collector) Available() bool {
	return c.path != ""
}

func (c *Collector) run(path string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	return c.runner.Run(ctx, path, args...)
}

// Collect reads every device. A device whose line cannot be parsed is logged
// and skipped so the others still report. A failing query (driver unloaded
// since startup, timeout) is NOT_AVAILABLE.
func (c *Collector) Collect() ([]model.GPU, error) {
	if !c.Available() {
		return nil, nil
	}

	out, err := c.run(c.path,
		"--query-gpu="+strings.Join(queryFields, ","),
		"--format=csv,noheader,nounits")
	if err != nil {
		return nil, errors.NotAvailable("GPU telemetry", err)
	}

	var gpus []model.GPU
	sc := bufio.NewScanner(strings.NewReader(string(out)))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		g, err := ParseLine(line)
		if err != nil {
			c.log.Warn("skipping GPU line %q: %v", line, err)
			continue
		}
		gpus = append(gpus, g)
	}
	return gpus, nil
}
