package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/hypertop/internal/backend"
	"github.com/rileyhilliard/hypertop/internal/errors"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestDoctorCommand_Text(t *testing.T) {
	b := dumpFake()
	stubBackend(t, b)
	cmd := newTestCommand(t, "--config", writeTestConfig(t, "gpu:\n  enabled: false\n"))

	var out bytes.Buffer
	require.NoError(t, doctorCommand(cmd, &out, false))

	text := out.String()
	assert.Contains(t, text, "hypertop Diagnostic Report")
	assert.Contains(t, text, "CONFIG")
	assert.Contains(t, text, "SOURCES")
	assert.Contains(t, text, "Hostname: testhost")
	assert.Contains(t, text, "Pressure stall information: not supported")
	assert.Contains(t, text, "GPU probing disabled")
	assert.Contains(t, text, "1 warning, nothing broken")
	assert.Equal(t, 1, b.Updates)
}

func TestDoctorCommand_JSON(t *testing.T) {
	b := dumpFake()
	b.FSErr = errors.Other("filesystems", nil)
	stubBackend(t, b)
	cmd := newTestCommand(t, "--config", writeTestConfig(t, "gpu:\n  enabled: false\n"))

	var out bytes.Buffer
	require.NoError(t, doctorCommand(cmd, &out, true))

	var doc DoctorOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))

	names := make([]string, 0, len(doc.Categories))
	for _, c := range doc.Categories {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"CONFIG", "SOURCES", "GPU"}, names)
	assert.Equal(t, 1, doc.Summary.Fail, "broken filesystems read")
	assert.False(t, doc.Summary.AllClear)
	assert.Contains(t, out.String(), `"status": "fail"`)
}

func TestDoctorCommand_BadConfig(t *testing.T) {
	opened := false
	orig := openBackend
	openBackend = func(backend.Options) (backend.Backend, error) {
		opened = true
		return dumpFake(), nil
	}
	t.Cleanup(func() { openBackend = orig })

	cmd := newTestCommand(t, "--config", writeTestConfig(t, "sort: alphabetical\n"))
	var out bytes.Buffer
	require.NoError(t, doctorCommand(cmd, &out, false))

	assert.False(t, opened, "sources aren't probed with an invalid config")
	assert.Contains(t, out.String(), "Schema error")
}

func TestDoctorCommand_BackendFails(t *testing.T) {
	orig := openBackend
	openBackend = func(backend.Options) (backend.Backend, error) {
		return nil, errors.NotSupported("linux backend")
	}
	t.Cleanup(func() { openBackend = orig })

	cmd := newTestCommand(t, "--config", writeTestConfig(t, ""))
	var out bytes.Buffer
	require.NoError(t, doctorCommand(cmd, &out, false))

	assert.Contains(t, out.String(), "Backend: not supported")
}
