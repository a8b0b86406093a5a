package collect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/hypertop/internal/errors"
	"github.com/rileyhilliard/hypertop/internal/logger"
	"github.com/rileyhilliard/hypertop/internal/model"
	"github.com/rileyhilliard/hypertop/internal/sample"
)

func TestNewCache_LogsOnlyUnexpectedFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		warned bool
	}{
		{"success", nil, false},
		{"not supported", errors.NotSupported("pressure"), false},
		{"other", errors.Other("/proc/stat", assert.AnError), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := logger.NewBufferLogger()
			c := NewCache("cpu", sample.NewTick(), log, func() (int, error) { return 1, tt.err })

			_, err := c.Current()
			assert.Equal(t, tt.err, err)
			assert.Equal(t, tt.warned, log.HasLevel("warn"))
		})
	}
}

func TestNetworks(t *testing.T) {
	prev := map[string]model.NetCounters{"eth0": {RxBytes: 1000}}
	snap := sample.Snapshot[map[string]model.NetCounters]{
		Current: map[string]model.NetCounters{
			"wlan0": {RxBytes: 10},
			"eth0":  {RxBytes: 3000},
		},
		Previous: &prev,
		Window:   2 * time.Second,
	}

	stats := Networks(snap)

	require.Len(t, stats, 2)
	assert.Equal(t, "eth0", stats[0].Name, "sorted by name")
	require.NotNil(t, stats[0].Rate)
	assert.Equal(t, uint64(1000), stats[0].Rate.RxBytes)
	assert.Nil(t, stats[1].Rate, "new interface has no rate yet")
}

func TestDisks_NoPreviousSample(t *testing.T) {
	snap := sample.Snapshot[map[string]model.DiskCounters]{
		Current: map[string]model.DiskCounters{"sda": {ReadBytes: 512}},
		Window:  time.Second,
	}

	stats := Disks(snap)

	require.Len(t, stats, 1)
	assert.Equal(t, uint64(512), stats[0].Total.ReadBytes)
	assert.Nil(t, stats[0].Rate)
}

func TestProcessFetch(t *testing.T) {
	clock := sample.NewTick()
	ticks := model.CPUTicks{User: 5, Idle: 95}
	var ticksErr error
	cpuReads := 0
	cpu := sample.NewCache("cpu", clock, func() (model.CPUTicks, error) {
		cpuReads++
		return ticks, ticksErr
	})
	set := model.ProcessSet{1: {PID: 1}}
	fetch := ProcessFetch(cpu, func() (model.ProcessSet, error) { return set, nil })

	_, _ = cpu.Current()
	s, err := fetch()
	require.NoError(t, err)
	assert.Equal(t, set, s.Procs)
	require.NotNil(t, s.CPU)
	assert.Equal(t, ticks, *s.CPU)
	assert.Equal(t, 1, cpuReads, "shares the cycle's /proc/stat read")

	clock.Advance()
	ticksErr = assert.AnError
	s, err = fetch()
	require.NoError(t, err, "the enumeration still succeeds")
	assert.Nil(t, s.CPU)
}

func TestProcessFetch_ListFails(t *testing.T) {
	cpu := sample.NewCache("cpu", sample.NewTick(), func() (model.CPUTicks, error) {
		return model.CPUTicks{}, nil
	})
	fetch := ProcessFetch(cpu, func() (model.ProcessSet, error) {
		return nil, errors.NotAllowed("/proc", nil)
	})

	_, err := fetch()
	assert.True(t, errors.IsCode(err, errors.ErrNotAllowed))
}
