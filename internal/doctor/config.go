package doctor

import (
	stderrors "errors"
	"fmt"

	"github.com/rileyhilliard/hypertop/internal/config"
	"github.com/rileyhilliard/hypertop/internal/errors"
)

// describe splits a structured error into its message and suggestion.
func describe(err error, fallback string) (string, string) {
	var e *errors.Error
	if stderrors.As(err, &e) && e.Suggestion != "" {
		return e.Message, e.Suggestion
	}
	return errors.Reason(err), fallback
}

// ConfigFileCheck reports which config file is in effect. Running on
// defaults is fine, so a missing file only warns.
type ConfigFileCheck struct {
	ConfigPath string // Explicit path, or empty to search
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return CategoryConfig }

func (c *ConfigFileCheck) Run() CheckResult {
	path, err := config.Find(c.ConfigPath)
	if err != nil {
		msg, suggestion := describe(err, "Check the --config path, or run 'hypertop init' to create a config")
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    msg,
			Suggestion: suggestion,
		}
	}

	if path == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No config file found, using defaults",
			Suggestion: "Run 'hypertop init' to write one",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Config file: %s", path),
	}
}

// ConfigSchemaCheck loads and validates the config in effect, including
// HYPERTOP_* environment overrides.
type ConfigSchemaCheck struct {
	ConfigPath string
}

func (c *ConfigSchemaCheck) Name() string     { return "config_schema" }
func (c *ConfigSchemaCheck) Category() string { return CategoryConfig }

func (c *ConfigSchemaCheck) Run() CheckResult {
	cfg, path, err := config.LoadOrDefault(c.ConfigPath)
	if err != nil {
		msg, suggestion := describe(err, "Check the YAML syntax in your config file")
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Failed to load config: " + msg,
			Suggestion: suggestion,
		}
	}

	if err := config.Validate(cfg); err != nil {
		where := "your config file"
		if path == "" {
			where = "your HYPERTOP_* environment variables"
		}
		msg, suggestion := describe(err, "Fix the values in "+where)
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Schema error in %s: %s", where, msg),
			Suggestion: suggestion,
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Config valid (refresh %s, %s backend, %s sort)", cfg.Refresh, cfg.Backend, cfg.Sort),
	}
}

// NewConfigChecks returns the CONFIG category checks.
func NewConfigChecks(configPath string) []Check {
	return []Check{
		&ConfigFileCheck{ConfigPath: configPath},
		&ConfigSchemaCheck{ConfigPath: configPath},
	}
}
