package sample

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v uint64) *uint64 {
	return &v
}

func TestSubSat(t *testing.T) {
	tests := []struct {
		name      string
		cur, prev uint64
		want      uint64
	}{
		{"forward", 150, 100, 50},
		{"equal", 7, 7, 0},
		{"reset", 3, 900, 0},
		{"max", math.MaxUint64, 0, math.MaxUint64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SubSat(tt.cur, tt.prev))
		})
	}
}

func TestDiffOpt(t *testing.T) {
	assert.Nil(t, DiffOpt(nil, ptr(1)))
	assert.Nil(t, DiffOpt(ptr(1), nil))
	assert.Nil(t, DiffOpt(nil, nil))

	d := DiffOpt(ptr(40), ptr(15))
	require.NotNil(t, d)
	assert.Equal(t, uint64(25), *d)

	d = DiffOpt(ptr(1), ptr(15))
	require.NotNil(t, d)
	assert.Equal(t, uint64(0), *d)
}

func TestNormUint64(t *testing.T) {
	tests := []struct {
		name string
		val  uint64
		d    time.Duration
		want uint64
	}{
		{"one second", 4096, time.Second, 4096},
		{"two seconds", 4096, 2 * time.Second, 2048},
		{"half second", 100, 500 * time.Millisecond, 200},
		{"zero window counts as one ms", 3, 0, 3000},
		{"overflow saturates", math.MaxUint64, time.Millisecond, math.MaxUint64},
		{"large value no overflow", math.MaxUint64 / 10, 10 * time.Second, math.MaxUint64 / 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormUint64(tt.val, tt.d))
		})
	}
}

func TestNormFloat64(t *testing.T) {
	assert.InDelta(t, 50.0, NormFloat64(100, 2*time.Second), 1e-9)
	assert.InDelta(t, 100000.0, NormFloat64(100, 0), 1e-6)
}

func TestNormOpt(t *testing.T) {
	assert.Nil(t, NormOpt(nil, time.Second))
	n := NormOpt(ptr(10), 2*time.Second)
	require.NotNil(t, n)
	assert.Equal(t, uint64(5), *n)
}

type pair struct {
	A, B uint64
}

func (p pair) Sub(prev pair) pair {
	return pair{A: SubSat(p.A, prev.A), B: SubSat(p.B, prev.B)}
}

func (p pair) PerSecond(d time.Duration) pair {
	return pair{A: NormUint64(p.A, d), B: NormUint64(p.B, d)}
}

func TestRate(t *testing.T) {
	assert.Nil(t, Rate(pair{A: 10}, nil, time.Second))

	r := Rate(pair{A: 300, B: 10}, &pair{A: 100, B: 50}, 2*time.Second)
	require.NotNil(t, r)
	assert.Equal(t, pair{A: 100, B: 0}, *r)
}

func TestDiffProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("forward counters diff exactly", prop.ForAll(
		func(prev, delta uint64) bool {
			if prev > math.MaxUint64-delta {
				delta = math.MaxUint64 - prev
			}
			return SubSat(prev+delta, prev) == delta
		},
		gen.UInt64(), gen.UInt64(),
	))

	properties.Property("backwards counters never wrap", prop.ForAll(
		func(a, b uint64) bool {
			if a >= b {
				return true
			}
			return SubSat(a, b) == 0
		},
		gen.UInt64(), gen.UInt64(),
	))

	properties.Property("one second window is identity", prop.ForAll(
		func(v uint64) bool {
			return NormUint64(v, time.Second) == v
		},
		gen.UInt64Range(0, math.MaxUint64/1000),
	))

	properties.Property("longer windows never give larger rates", prop.ForAll(
		func(v uint64, ms int64) bool {
			short := NormUint64(v, time.Duration(ms)*time.Millisecond)
			long := NormUint64(v, time.Duration(ms+1)*time.Millisecond)
			return long <= short
		},
		gen.UInt64Range(0, 1<<40), gen.Int64Range(1, 600000),
	))

	properties.TestingRun(t)
}
