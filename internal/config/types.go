package config

import (
	"os"
	"path/filepath"
	"time"
)

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

const (
	// DefaultRefresh is the interval between refresh cycles.
	DefaultRefresh = 2500 * time.Millisecond
	// MinRefresh is the shortest accepted refresh interval.
	MinRefresh = 500 * time.Millisecond
)

// Config represents the complete hypertop configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// Refresh is the time between refresh cycles.
	Refresh time.Duration `yaml:"refresh" mapstructure:"refresh"`

	// Backend selects the data source: "auto", "linux" or "generic".
	Backend string `yaml:"backend" mapstructure:"backend"`

	// Sort is the initial process sort: "auto", "cpu", "memory", "io" or "time".
	Sort string `yaml:"sort" mapstructure:"sort"`

	GPU        GPUConfig        `yaml:"gpu" mapstructure:"gpu"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Metrics    MetricsConfig    `yaml:"metrics" mapstructure:"metrics"`
	Dump       DumpConfig       `yaml:"dump" mapstructure:"dump"`
	Thresholds ThresholdsConfig `yaml:"thresholds" mapstructure:"thresholds"`
}

// GPUConfig controls the nvidia-smi probe.
type GPUConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Timeout bounds each nvidia-smi invocation.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// LogConfig controls the log file. The dashboard owns the terminal, so logs
// never go to stdout while it runs.
type LogConfig struct {
	File  string `yaml:"file" mapstructure:"file"`
	Level string `yaml:"level" mapstructure:"level"`
}

// MetricsConfig controls the self-metrics endpoint.
type MetricsConfig struct {
	// Listen is a host:port for /metrics. Empty disables the endpoint.
	Listen string `yaml:"listen" mapstructure:"listen"`
}

// DumpConfig controls the one-shot dump command.
type DumpConfig struct {
	// Wait is the pause between the two samples, so rates have a window.
	Wait time.Duration `yaml:"wait" mapstructure:"wait"`

	// Format is "yaml" or "json".
	Format string `yaml:"format" mapstructure:"format"`
}

// ThresholdsConfig sets the gauge color breakpoints, in percent.
type ThresholdsConfig struct {
	CPU    ThresholdValues `yaml:"cpu" mapstructure:"cpu"`
	Memory ThresholdValues `yaml:"memory" mapstructure:"memory"`
	GPU    ThresholdValues `yaml:"gpu" mapstructure:"gpu"`
}

// ThresholdValues holds warning and critical percentages for one metric.
type ThresholdValues struct {
	Warning  int `yaml:"warning" mapstructure:"warning"`
	Critical int `yaml:"critical" mapstructure:"critical"`
}

// DefaultLogFile is $XDG_STATE_HOME/hypertop/hypertop.log, falling back to
// ~/.local/state.
func DefaultLogFile() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "hypertop", "hypertop.log")
	}
	return filepath.Join(getHome(), ".local", "state", "hypertop", "hypertop.log")
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Refresh: DefaultRefresh,
		Backend: "auto",
		Sort:    "auto",
		GPU: GPUConfig{
			Enabled: true,
			Timeout: 2 * time.Second,
		},
		Log: LogConfig{
			File:  DefaultLogFile(),
			Level: "info",
		},
		Dump: DumpConfig{
			Wait:   500 * time.Millisecond,
			Format: "yaml",
		},
		Thresholds: ThresholdsConfig{
			CPU:    ThresholdValues{Warning: 70, Critical: 90},
			Memory: ThresholdValues{Warning: 70, Critical: 90},
			GPU:    ThresholdValues{Warning: 70, Critical: 90},
		},
	}
}
