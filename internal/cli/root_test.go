package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/hypertop/internal/config"
	"github.com/rileyhilliard/hypertop/internal/errors"
)

// writeTestConfig writes a config whose log file lives in a temp dir.
func writeTestConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "log:\n  file: " + filepath.Join(dir, "hypertop.log") + "\n" + body
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// newTestCommand returns a command carrying the global flags plus the
// dump flags, parsed from args.
func newTestCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addGlobalFlags(cmd.Flags())
	cmd.Flags().Duration("wait", 0, "")
	cmd.Flags().String("format", "", "")
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestApplyFlags(t *testing.T) {
	cmd := newTestCommand(t,
		"--refresh", "1s",
		"--backend", "generic",
		"--sort", "memory",
		"--metrics-addr", ":9101",
		"--no-gpu",
		"--log-level", "debug",
		"--format", "json",
		"--wait", "2s",
	)

	cfg := config.DefaultConfig()
	require.NoError(t, applyFlags(cfg, cmd.Flags()))

	assert.Equal(t, time.Second, cfg.Refresh)
	assert.Equal(t, "generic", cfg.Backend)
	assert.Equal(t, "memory", cfg.Sort)
	assert.Equal(t, ":9101", cfg.Metrics.Listen)
	assert.False(t, cfg.GPU.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Dump.Format)
	assert.Equal(t, 2*time.Second, cfg.Dump.Wait)
}

func TestApplyFlags_Unset(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Sort = "io"
	require.NoError(t, applyFlags(cfg, newTestCommand(t).Flags()))

	assert.Equal(t, "io", cfg.Sort, "unset flags leave the config alone")
	assert.True(t, cfg.GPU.Enabled)
	assert.Equal(t, config.DefaultRefresh, cfg.Refresh)
}

func TestApplyFlags_UndefinedFlagsIgnored(t *testing.T) {
	fs := pflag.NewFlagSet("bare", pflag.ContinueOnError)
	fs.Bool("no-gpu", false, "")
	require.NoError(t, fs.Parse([]string{"--no-gpu"}))

	cfg := config.DefaultConfig()
	require.NoError(t, applyFlags(cfg, fs))
	assert.False(t, cfg.GPU.Enabled)
}

func TestLoadConfig(t *testing.T) {
	path := writeTestConfig(t, "refresh: 3s\nsort: io\n")

	cfg, err := loadConfig(newTestCommand(t, "--config", path, "--sort", "time").Flags())
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Refresh)
	assert.Equal(t, "time", cfg.Sort, "flags win over the file")
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"refresh too fast", []string{"--refresh", "10ms"}},
		{"unknown backend", []string{"--backend", "bsd"}},
		{"unknown sort", []string{"--sort", "name"}},
		{"bad format", []string{"--format", "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", writeTestConfig(t, "")}, tt.args...)
			_, err := loadConfig(newTestCommand(t, args...).Flags())
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := loadConfig(newTestCommand(t, "--config", filepath.Join(t.TempDir(), "nope.yaml")).Flags())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestRootCommand(t *testing.T) {
	for _, name := range []string{"dump", "init", "version", "completion"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}

	for _, flag := range []string{"config", "refresh", "backend", "sort", "metrics-addr", "no-gpu", "log-level", "no-color"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestDashboardCommand_NeedsTerminal(t *testing.T) {
	orig := isTerminal
	isTerminal = func() bool { return false }
	t.Cleanup(func() { isTerminal = orig })

	err := dashboardCommand(newTestCommand(t))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrExec))
	assert.Contains(t, err.Error(), "hypertop dump")
}
