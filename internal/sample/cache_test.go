package sample

import (
	"errors"
	"testing"
	"time"

	hterrors "github.com/rileyhilliard/hypertop/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource returns successive integers and records how often it ran.
type countingSource struct {
	calls int
	fail  error
}

func (s *countingSource) fetch() (int, error) {
	s.calls++
	if s.fail != nil {
		return 0, s.fail
	}
	return s.calls * 10, nil
}

type recordingObserver struct {
	sources []string
	errs    []error
}

func (r *recordingObserver) Fetched(source string, _ time.Duration, err error) {
	r.sources = append(r.sources, source)
	r.errs = append(r.errs, err)
}

func TestCache_FirstAccessHasNoPrevious(t *testing.T) {
	src := &countingSource{}
	c := NewCache("counter", NewTick(), src.fetch)

	snap, err := c.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 10, snap.Current)
	assert.Nil(t, snap.Previous)
	assert.False(t, snap.HasPrevious())
	assert.Equal(t, DefaultWindow, snap.Window)
}

func TestCache_SecondCyclePopulatesPrevious(t *testing.T) {
	fc := newFakeClock()
	clock := NewTick()
	src := &countingSource{}
	c := NewCache("counter", clock, src.fetch, WithNow(fc.Now))

	_, err := c.Snapshot()
	require.NoError(t, err)

	clock.Advance()
	fc.Add(2 * time.Second)

	snap, err := c.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 20, snap.Current)
	require.NotNil(t, snap.Previous)
	assert.Equal(t, 10, *snap.Previous)
	assert.Equal(t, 2*time.Second, snap.Window)
	assert.Greater(t, snap.Window, time.Duration(0))
}

func TestCache_OneFetchPerCycle(t *testing.T) {
	clock := NewTick()
	src := &countingSource{}
	c := NewCache("counter", clock, src.fetch)

	for i := 0; i < 5; i++ {
		_, err := c.Current()
		require.NoError(t, err)
	}
	assert.Equal(t, 1, src.calls)

	clock.Advance()
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Access())
	}
	assert.Equal(t, 2, src.calls)
}

func TestCache_FailureRetriesNextCycle(t *testing.T) {
	clock := NewTick()
	src := &countingSource{}
	obs := &recordingObserver{}
	c := NewCache("counter", clock, src.fetch, WithObserver(obs))

	require.NoError(t, c.Access())

	clock.Advance()
	src.fail = errors.New("read failed")
	err := c.Access()
	require.Error(t, err)

	// Same cycle: the failure is remembered, no second fetch.
	_, err = c.Current()
	require.Error(t, err)
	assert.Equal(t, 2, src.calls)

	// Next cycle: the source is tried again.
	clock.Advance()
	src.fail = nil
	snap, err := c.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 30, snap.Current)
	require.NotNil(t, snap.Previous)
	assert.Equal(t, 10, *snap.Previous, "failed fetch must not shift samples")

	assert.Equal(t, []string{"counter", "counter", "counter"}, obs.sources)
	assert.Nil(t, obs.errs[0])
	assert.Error(t, obs.errs[1])
}

func TestCache_FailureOnFirstAccess(t *testing.T) {
	src := &countingSource{fail: hterrors.NotSupported("pressure")}
	c := NewCache("pressure", NewTick(), src.fetch)

	_, err := c.Current()
	require.Error(t, err)
	assert.True(t, hterrors.IsCode(err, hterrors.ErrNotSupported))
	assert.Equal(t, "pressure", c.Name())
}
