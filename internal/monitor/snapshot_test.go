package monitor

import (
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/hypertop/internal/backend/backendtest"
	"github.com/rileyhilliard/hypertop/internal/errors"
	"github.com/rileyhilliard/hypertop/internal/model"
)

func fullFake() *backendtest.Fake {
	b := backendtest.New()
	b.CPU = model.CPU{Utilization: 0.25}
	b.Mem = model.Memory{Used: 4 << 30, Total: 16 << 30}
	b.SwapStat = model.Swap{Used: 1 << 20, Total: 2 << 30}
	b.Load = model.LoadAvg{One: 0.5, Five: 0.4, Fifteen: 0.3}
	running := proc(1, 0.5, 100)
	running.Status = model.StatusRunning
	running.UID = u32(0)
	zombie := proc(2, 0, 0)
	zombie.Status = model.StatusZombie
	b.Procs = []model.Process{running, zombie, proc(3, 0.1, 300)}
	b.Nets = []model.NetworkStats{{Name: "eth0"}}
	b.FS = []model.Filesystem{{MountPoint: "/", Total: 100, Used: 40, Available: 60}}
	return b
}

func TestCollect_Values(t *testing.T) {
	b := fullFake()
	s := testState(b, nil)

	snap, err := s.Collect()
	require.NoError(t, err)

	assert.Equal(t, "fake", snap.Backend)
	require.True(t, snap.Hostname.OK())
	assert.Equal(t, "testhost", *snap.Hostname.Value)
	assert.Equal(t, 4, *snap.Cores.Value)
	assert.Equal(t, 8, *snap.Logical.Value)
	assert.InDelta(t, 0.25, snap.CPU.Value.Utilization, 1e-9)
	assert.Equal(t, uint64(16<<30), snap.Memory.Value.Total)
	assert.Len(t, *snap.Networks.Value, 1)
	assert.Len(t, *snap.Filesystems.Value, 1)

	require.True(t, snap.Processes.OK())
	table := snap.Processes.Value
	assert.Equal(t, "CPU", table.SortedBy)
	assert.True(t, table.Auto)
	assert.Equal(t, model.StatusCounts{Running: 1, Sleeping: 1, Other: 1}, table.Counts)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, 1, table.Rows[0].PID)
	assert.Equal(t, "root", table.Rows[0].User)
	assert.Empty(t, table.Rows[1].User, "no uid, no user")
}

func TestCollect_Unavailable(t *testing.T) {
	b := fullFake()
	b.SwapErr = errors.NotAvailable("swap", nil)

	snap, err := testState(b, nil).Collect()
	require.NoError(t, err, "absent sources are not errors")

	assert.False(t, snap.Pressure.OK())
	assert.Equal(t, "not supported", snap.Pressure.Unavailable)
	assert.False(t, snap.Pressure.Failed)

	assert.Equal(t, "not available", snap.Swap.Unavailable)
	assert.Equal(t, "no GPU detected", snap.GPUs.Unavailable)
}

func TestCollect_HardFailures(t *testing.T) {
	b := fullFake()
	b.MemErr = errors.Other("memory", io.ErrUnexpectedEOF)
	b.DisksErr = fmt.Errorf("disk stats exploded")

	snap, err := testState(b, nil).Collect()
	require.Error(t, err)
	require.NotNil(t, snap, "the snapshot is still usable")

	assert.Contains(t, err.Error(), "couldn't read memory")
	assert.Contains(t, err.Error(), "couldn't read disk I/O")

	assert.True(t, snap.Memory.Failed)
	assert.False(t, snap.Memory.OK())
	assert.True(t, snap.Disks.Failed)
	assert.Equal(t, "disk stats exploded", snap.Disks.Unavailable)
	assert.True(t, snap.CPU.OK(), "other widgets are unaffected")
	assert.True(t, snap.Processes.OK())
}

func TestCollect_GPUs(t *testing.T) {
	b := fullFake()
	b.GPUList = []model.GPU{{Index: 0, Name: "A100", Utilization: 0.5}}

	snap, err := testState(b, nil).Collect()
	require.NoError(t, err)
	require.True(t, snap.GPUs.OK())
	assert.Equal(t, "A100", (*snap.GPUs.Value)[0].Name)
}

func TestCollect_Func(t *testing.T) {
	b := fullFake()

	snap, err := Collect(b)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Updates)
	assert.True(t, snap.Processes.OK())
}

func TestResort(t *testing.T) {
	b := fullFake()
	s := testState(b, nil)
	snap, err := s.Collect()
	require.NoError(t, err)

	s.SetSort(sortRef(model.SortByMemory))
	s.Resort(snap)

	table := snap.Processes.Value
	assert.Equal(t, "memory", table.SortedBy)
	assert.False(t, table.Auto)
	assert.Equal(t, 3, table.Rows[0].PID)
	assert.Equal(t, 1, table.Rows[1].PID)
	assert.Equal(t, "root", table.Rows[1].User)

	// Nothing to reorder.
	s.Resort(nil)
	s.Resort(&Snapshot{})
}

func TestProcessTable_Headline(t *testing.T) {
	tests := []struct {
		name  string
		table ProcessTable
		want  string
	}{
		{
			name: "automatic",
			table: ProcessTable{
				SortedBy: "CPU",
				Auto:     true,
				Counts:   model.StatusCounts{Running: 1, Sleeping: 2, Other: 0},
				Rows:     make([]ProcessRow, 3),
			},
			want: "3 processes (1 running, 2 sleeping, 0 other), sorted by CPU automatically",
		},
		{
			name: "explicit",
			table: ProcessTable{
				SortedBy: "I/O",
				Counts:   model.StatusCounts{Other: 1},
				Rows:     make([]ProcessRow, 1),
			},
			want: "1 processes (0 running, 0 sleeping, 1 other), sorted by I/O",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.table.Headline())
		})
	}
}

func TestSnapshot_Encoding(t *testing.T) {
	snap, err := testState(fullFake(), nil).Collect()
	require.NoError(t, err)

	out, err := yaml.Marshal(snap)
	require.NoError(t, err)
	doc := string(out)
	assert.Contains(t, doc, "hostname:\n    value: testhost")
	assert.Contains(t, doc, "unavailable: not supported")
	assert.Contains(t, doc, "status: R")
	assert.Contains(t, doc, "user: root")

	js, err := json.Marshal(snap)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(js, &decoded))
	procs := decoded["processes"].(map[string]any)["value"].(map[string]any)
	rows := procs["rows"].([]any)
	assert.Equal(t, "R", rows[0].(map[string]any)["status"])
	assert.Equal(t, float64(1), rows[0].(map[string]any)["pid"])
}
