package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/hypertop/internal/config"
	"github.com/rileyhilliard/hypertop/internal/errors"
)

// stubForm answers every form without touching its values.
func stubForm(t *testing.T) *int {
	t.Helper()
	calls := 0
	orig := runForm
	runForm = func(*huh.Form) error {
		calls++
		return nil
	}
	t.Cleanup(func() { runForm = orig })
	return &calls
}

func TestInit_NonInteractive(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".hypertop.yaml")
	cfg := config.DefaultConfig()
	cfg.Sort = "memory"
	cfg.Log.File = filepath.Join(t.TempDir(), "hypertop.log")

	var out bytes.Buffer
	require.NoError(t, Init(cfg, InitOptions{Path: path, NonInteractive: true, Out: &out}))

	assert.Contains(t, out.String(), "Created "+path)
	got, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", got.Sort)
	assert.Equal(t, config.DefaultRefresh, got.Refresh)
}

func TestInit_NonInteractive_ConfigExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".hypertop.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sort: io\n"), 0o644))

	err := Init(config.DefaultConfig(), InitOptions{Path: path, NonInteractive: true, Out: &bytes.Buffer{}})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))

	data, _ := os.ReadFile(path)
	assert.Equal(t, "sort: io\n", string(data), "existing file is untouched")
}

func TestInit_ForceOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".hypertop.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sort: io\n"), 0o644))

	cfg := config.DefaultConfig()
	cfg.Backend = "generic"
	require.NoError(t, Init(cfg, InitOptions{Path: path, Overwrite: true, NonInteractive: true, Out: &bytes.Buffer{}}))

	got, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "generic", got.Backend)
	assert.Equal(t, "auto", got.Sort)
}

func TestInit_Interactive(t *testing.T) {
	calls := stubForm(t)
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")
	cfg := config.DefaultConfig()
	cfg.Refresh = time.Second
	cfg.Metrics.Listen = " :9101 "

	require.NoError(t, Init(cfg, InitOptions{Path: path, Out: &bytes.Buffer{}}))
	assert.Equal(t, 1, *calls, "no overwrite question for a new file")

	got, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, time.Second, got.Refresh, "answers start from the given config")
	assert.Equal(t, ":9101", got.Metrics.Listen)
}

func TestInit_Interactive_DeclineOverwrite(t *testing.T) {
	stubForm(t)
	path := filepath.Join(t.TempDir(), ".hypertop.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sort: io\n"), 0o644))

	var out bytes.Buffer
	require.NoError(t, Init(config.DefaultConfig(), InitOptions{Path: path, Out: &out}))

	assert.Contains(t, out.String(), "Cancelled.")
	data, _ := os.ReadFile(path)
	assert.Equal(t, "sort: io\n", string(data))
}

func TestInitCommand_Global(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("HYPERTOP_NON_INTERACTIVE", "1")

	cmd := newTestCommand(t, "--refresh", "750ms")
	cmd.Flags().Bool("global", false, "")
	cmd.Flags().Bool("force", false, "")
	cmd.Flags().Bool("non-interactive", false, "")
	require.NoError(t, cmd.ParseFlags([]string{"--global"}))
	cmd.SetOut(&bytes.Buffer{})

	require.NoError(t, initCommand(cmd))

	got, err := config.Load(filepath.Join(home, ".config", "hypertop", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, got.Refresh)
}

func TestValidateRefresh(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"1s", false},
		{" 2500ms ", false},
		{"500ms", false},
		{"100ms", true},
		{"soon", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := validateRefresh(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateListen(t *testing.T) {
	assert.NoError(t, validateListen(""))
	assert.NoError(t, validateListen(":9101"))
	assert.NoError(t, validateListen("127.0.0.1:9101"))
	assert.Error(t, validateListen("localhost"))
}
