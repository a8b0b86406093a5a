package monitor

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/hypertop/internal/backend/backendtest"
	"github.com/rileyhilliard/hypertop/internal/model"
)

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestHandleKeyMsg_Sort(t *testing.T) {
	tests := []struct {
		key      string
		want     *model.SortOrder
		sortedBy string
	}{
		{"c", sortRef(model.SortByCPU), "CPU"},
		{"m", sortRef(model.SortByMemory), "memory"},
		{"i", sortRef(model.SortByIO), "I/O"},
		{"t", sortRef(model.SortByTime), "time"},
		{"a", nil, "CPU"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m := loadedModel(t, fullFake())
			m.state.SetSort(sortRef(model.SortByIO))

			handled, cmd := m.HandleKeyMsg(runeKey(tt.key))
			require.True(t, handled)
			assert.Nil(t, cmd)

			assert.Equal(t, tt.want, m.state.Sort())
			assert.Equal(t, tt.sortedBy, m.snapshot.Processes.Value.SortedBy, "table is reordered immediately")
		})
	}
}

func TestHandleKeyMsg_TimeSortNeedsProcessTime(t *testing.T) {
	b := fullFake()
	b.NoProcTime = true
	m := loadedModel(t, b)

	handled, _ := m.HandleKeyMsg(runeKey("t"))
	assert.False(t, handled)
	assert.Nil(t, m.state.Sort())
}

func TestHandleKeyMsg_Help(t *testing.T) {
	m := newTestModel(fullFake())

	handled, _ := m.HandleKeyMsg(runeKey("?"))
	assert.True(t, handled)
	assert.True(t, m.showHelp)

	handled, _ = m.HandleKeyMsg(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, handled)
	assert.False(t, m.showHelp)

	handled, _ = m.HandleKeyMsg(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, handled, "esc does nothing without the overlay")
}

func TestHandleKeyMsg_Quit(t *testing.T) {
	for _, msg := range []tea.KeyMsg{runeKey("q"), {Type: tea.KeyCtrlC}} {
		m := newTestModel(fullFake())
		handled, cmd := m.HandleKeyMsg(msg)
		assert.True(t, handled)
		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
		assert.True(t, m.quitting)
	}
}

func TestHandleKeyMsg_Refresh(t *testing.T) {
	b := fullFake()
	m := idleModel(b)

	handled, cmd := m.HandleKeyMsg(runeKey("r"))
	require.True(t, handled)
	require.NotNil(t, cmd)
	assert.True(t, m.collecting)

	_, ok := cmd().(snapshotMsg)
	assert.True(t, ok)
	assert.Equal(t, 1, b.Updates)

	_, again := m.HandleKeyMsg(runeKey("r"))
	assert.Nil(t, again, "a refresh is already in flight")
}

func TestHandleKeyMsg_Unhandled(t *testing.T) {
	m := newTestModel(backendtest.New())
	handled, cmd := m.HandleKeyMsg(runeKey("z"))
	assert.False(t, handled)
	assert.Nil(t, cmd)
}

func TestKeyMap_Help(t *testing.T) {
	k := newKeyMap(false)
	assert.False(t, k.SortTime.Enabled())
	assert.Len(t, k.ShortHelp(), 8)
	assert.Len(t, k.FullHelp(), 3)
	assert.True(t, newKeyMap(true).SortTime.Enabled())
}
