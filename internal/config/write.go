package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/hypertop/internal/errors"
)

// fileConfig is the on-disk shape of Config. Durations are written as
// strings ("2.5s") so the file stays readable.
type fileConfig struct {
	Version    int              `yaml:"version"`
	Refresh    string           `yaml:"refresh"`
	Backend    string           `yaml:"backend"`
	Sort       string           `yaml:"sort"`
	GPU        fileGPU          `yaml:"gpu"`
	Log        LogConfig        `yaml:"log"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Dump       fileDump         `yaml:"dump"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
}

type fileGPU struct {
	Enabled bool   `yaml:"enabled"`
	Timeout string `yaml:"timeout"`
}

type fileDump struct {
	Wait   string `yaml:"wait"`
	Format string `yaml:"format"`
}

const fileHeader = `# hypertop configuration
# Every key can be overridden from the environment, e.g. HYPERTOP_REFRESH=1s
# or HYPERTOP_GPU_ENABLED=false.

`

// Marshal renders cfg as a commented YAML config file.
func Marshal(cfg *Config) ([]byte, error) {
	out := fileConfig{
		Version: cfg.Version,
		Refresh: cfg.Refresh.String(),
		Backend: cfg.Backend,
		Sort:    cfg.Sort,
		GPU: fileGPU{
			Enabled: cfg.GPU.Enabled,
			Timeout: cfg.GPU.Timeout.String(),
		},
		Log:     cfg.Log,
		Metrics: cfg.Metrics,
		Dump: fileDump{
			Wait:   cfg.Dump.Wait.String(),
			Format: cfg.Dump.Format,
		},
		Thresholds: cfg.Thresholds,
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, err
	}
	return append([]byte(fileHeader), data...), nil
}

// Write validates cfg and saves it to path, creating the directory.
func Write(path string, cfg *Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	data, err := Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config",
			"This shouldn't happen - please report this bug")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to create config directory for %s", path),
			"Check directory permissions")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", path),
			"Check directory permissions")
	}
	return nil
}

// GlobalPath is the user-wide config file location.
func GlobalPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Can't find your home directory",
			"Set $HOME, or write a local config instead")
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile), nil
}
