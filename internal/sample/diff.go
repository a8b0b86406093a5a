package sample

import (
	"math"
	"math/bits"
	"time"
)

// SubSat returns cur-prev, or 0 when the counter went backwards (reset,
// device replaced, wrap).
func SubSat(cur, prev uint64) uint64 {
	if prev > cur {
		return 0
	}
	return cur - prev
}

// DiffOpt diffs an optional counter field. The result is present only when
// both samples carry the field.
func DiffOpt(cur, prev *uint64) *uint64 {
	if cur == nil || prev == nil {
		return nil
	}
	d := SubSat(*cur, *prev)
	return &d
}

// NormUint64 scales val to a per-second figure over d using integer math
// (val * 1000 / ms). A sub-millisecond window counts as one millisecond and
// results that do not fit saturate at MaxUint64.
func NormUint64(val uint64, d time.Duration) uint64 {
	ms := uint64(1)
	if d > time.Millisecond {
		ms = uint64(d / time.Millisecond)
	}
	hi, lo := bits.Mul64(val, 1000)
	if hi >= ms {
		return math.MaxUint64
	}
	q, _ := bits.Div64(hi, lo, ms)
	return q
}

// NormOpt is NormUint64 for optional fields.
func NormOpt(val *uint64, d time.Duration) *uint64 {
	if val == nil {
		return nil
	}
	n := NormUint64(*val, d)
	return &n
}

// NormFloat64 scales val to a per-second figure over d.
func NormFloat64(val float64, d time.Duration) float64 {
	secs := d.Seconds()
	if secs < 0.001 {
		secs = 0.001
	}
	return val / secs
}

// Counter is a sample of cumulative counters that knows how to diff itself
// against an earlier sample and scale a delta to per-second figures.
type Counter[T any] interface {
	Sub(prev T) T
	PerSecond(d time.Duration) T
}

// Rate diffs cur against prev and normalizes the delta over d. It returns nil
// when there is no previous sample to diff against.
func Rate[T Counter[T]](cur T, prev *T, d time.Duration) *T {
	if prev == nil {
		return nil
	}
	r := cur.Sub(*prev).PerSecond(d)
	return &r
}
