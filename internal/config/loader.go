package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/rileyhilliard/hypertop/internal/errors"
)

const (
	// ConfigFileName is the per-directory config file name.
	ConfigFileName = ".hypertop.yaml"
	// GlobalConfigDir is the directory for the user's config.
	GlobalConfigDir = ".config/hypertop"
	// GlobalConfigFile is the user config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. HYPERTOP_REFRESH=1s.
	EnvPrefix = "HYPERTOP"
)

// newViper returns a viper instance with defaults and environment overrides
// wired up. Every key needs a default for AutomaticEnv to reach it during
// Unmarshal.
func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults mirrors DefaultConfig.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("refresh", d.Refresh.String())
	v.SetDefault("backend", d.Backend)
	v.SetDefault("sort", d.Sort)
	v.SetDefault("gpu.enabled", d.GPU.Enabled)
	v.SetDefault("gpu.timeout", d.GPU.Timeout.String())
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("metrics.listen", d.Metrics.Listen)
	v.SetDefault("dump.wait", d.Dump.Wait.String())
	v.SetDefault("dump.format", d.Dump.Format)
	v.SetDefault("thresholds.cpu.warning", d.Thresholds.CPU.Warning)
	v.SetDefault("thresholds.cpu.critical", d.Thresholds.CPU.Critical)
	v.SetDefault("thresholds.memory.warning", d.Thresholds.Memory.Warning)
	v.SetDefault("thresholds.memory.critical", d.Thresholds.Memory.Critical)
	v.SetDefault("thresholds.gpu.warning", d.Thresholds.GPU.Warning)
	v.SetDefault("thresholds.gpu.critical", d.Thresholds.GPU.Critical)
}

// Load reads config from the specified path.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Check the path passed to --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .hypertop.yaml in current directory
// 3. ~/.config/hypertop/config.yaml
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	if cwd, err := os.Getwd(); err == nil {
		local := filepath.Join(cwd, ConfigFileName)
		if _, err := os.Stat(local); err == nil {
			return local, nil
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		global := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(global); err == nil {
			return global, nil
		}
	}

	return "", nil
}

// LoadOrDefault loads the config found for explicit, or defaults plus
// environment overrides when there is no file.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		cfg, err := parseConfig(newViper(), "environment")
		return cfg, "", err
	}
	cfg, err := Load(path)
	return cfg, path, err
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, source string) (*Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the values in "+source)
	}
	cfg.Log.File = ExpandTilde(Expand(cfg.Log.File))
	return cfg, nil
}
