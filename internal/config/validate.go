package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/rileyhilliard/hypertop/internal/errors"
)

var (
	validBackends    = []string{"auto", "linux", "generic"}
	validSorts       = []string{"auto", "cpu", "memory", "mem", "io", "time"}
	validDumpFormats = []string{"yaml", "json"}
	validLogLevels   = []string{"debug", "info", "warn", "error"}
)

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but hypertop only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade hypertop or lower the version field.")
	}

	if cfg.Refresh < MinRefresh {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("refresh %s is too fast - the minimum is %s", cfg.Refresh, MinRefresh),
			"Set refresh to something like '1s' or '2.5s'.")
	}

	if !oneOf(cfg.Backend, validBackends) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("backend '%s' isn't one I know", cfg.Backend),
			"Use one of: "+strings.Join(validBackends, ", "))
	}

	if !oneOf(cfg.Sort, validSorts) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("sort '%s' isn't a sort order", cfg.Sort),
			"Use one of: auto, cpu, memory, io, time")
	}

	if cfg.GPU.Enabled && cfg.GPU.Timeout <= 0 {
		return errors.New(errors.ErrConfig,
			"gpu.timeout needs to be positive",
			"Set gpu.timeout to something like '2s', or disable GPUs with gpu.enabled: false")
	}

	if cfg.Log.Level != "" && !oneOf(cfg.Log.Level, validLogLevels) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("log.level '%s' isn't a log level", cfg.Log.Level),
			"Use one of: "+strings.Join(validLogLevels, ", "))
	}

	if cfg.Metrics.Listen != "" {
		if _, _, err := net.SplitHostPort(cfg.Metrics.Listen); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("metrics.listen '%s' isn't a host:port address", cfg.Metrics.Listen),
				"Use something like '127.0.0.1:9101' or ':9101'.")
		}
	}

	if err := validateDump(cfg.Dump); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'dump' section in your config.")
	}

	if err := validateThresholdsConfig(cfg.Thresholds); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'thresholds' section in your config.")
	}

	return nil
}

func validateDump(d DumpConfig) error {
	if d.Wait < 0 {
		return fmt.Errorf("dump.wait can't be negative (got %s)", d.Wait)
	}
	if !oneOf(d.Format, validDumpFormats) {
		return fmt.Errorf("dump.format '%s' needs to be yaml or json", d.Format)
	}
	return nil
}

func validateThresholdsConfig(t ThresholdsConfig) error {
	if err := validateThresholds("cpu", t.CPU); err != nil {
		return err
	}
	if err := validateThresholds("memory", t.Memory); err != nil {
		return err
	}
	return validateThresholds("gpu", t.GPU)
}

// validateThresholds checks a threshold configuration for a single metric type.
func validateThresholds(name string, thresh ThresholdValues) error {
	if thresh.Warning < 0 || thresh.Warning > 100 {
		return fmt.Errorf("thresholds.%s.warning needs to be 0-100 (got %d)", name, thresh.Warning)
	}
	if thresh.Critical < 0 || thresh.Critical > 100 {
		return fmt.Errorf("thresholds.%s.critical needs to be 0-100 (got %d)", name, thresh.Critical)
	}
	// Warning should be less than critical (if both are non-zero)
	if thresh.Warning > 0 && thresh.Critical > 0 && thresh.Warning >= thresh.Critical {
		return fmt.Errorf("thresholds.%s.warning (%d%%) is higher than critical (%d%%) - should be the other way around", name, thresh.Warning, thresh.Critical)
	}
	return nil
}
