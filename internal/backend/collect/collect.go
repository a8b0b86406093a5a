// Package collect holds the cache plumbing both backends build on: logged
// caches, counter maps turned into per-device rates, and process samples
// that carry the global CPU ticks of their own cycle.
package collect

import (
	"sort"

	"github.com/rileyhilliard/hypertop/internal/errors"
	"github.com/rileyhilliard/hypertop/internal/logger"
	"github.com/rileyhilliard/hypertop/internal/model"
	"github.com/rileyhilliard/hypertop/internal/sample"
)

// NewCache wraps fetch so unexpected failures are logged once per attempt.
// Acceptable absences stay quiet.
func NewCache[T any](name string, clock *sample.Tick, log logger.Logger, fetch func() (T, error), opts ...sample.Option) *sample.Cache[T] {
	logged := func() (T, error) {
		v, err := fetch()
		if err != nil && !errors.IsAcceptable(err) {
			log.Warn("read %s: %v", name, err)
		}
		return v, err
	}
	return sample.NewCache(name, clock, logged, opts...)
}

// Networks pairs every interface with its previous counters. Interfaces seen
// for the first time have no rate.
func Networks(s sample.Snapshot[map[string]model.NetCounters]) []model.NetworkStats {
	out := make([]model.NetworkStats, 0, len(s.Current))
	for _, name := range sortedKeys(s.Current) {
		cur := s.Current[name]
		out = append(out, model.NetworkStats{
			Name:  name,
			Total: cur,
			Rate:  sample.Rate(cur, previous(s.Previous, name), s.Window),
		})
	}
	return out
}

// Disks is Networks for block devices.
func Disks(s sample.Snapshot[map[string]model.DiskCounters]) []model.DiskIO {
	out := make([]model.DiskIO, 0, len(s.Current))
	for _, name := range sortedKeys(s.Current) {
		cur := s.Current[name]
		out = append(out, model.DiskIO{
			Name:  name,
			Total: cur,
			Rate:  sample.Rate(cur, previous(s.Previous, name), s.Window),
		})
	}
	return out
}

// ProcessFetch enumerates processes with list and records the global CPU
// ticks of the same cycle next to them, read through cpu so /proc/stat is
// still fetched once per cycle.
func ProcessFetch(cpu *sample.Cache[model.CPUTicks], list func() (model.ProcessSet, error)) func() (model.ProcessSample, error) {
	return func() (model.ProcessSample, error) {
		set, err := list()
		if err != nil {
			return model.ProcessSample{}, err
		}
		s := model.ProcessSample{Procs: set}
		if t, err := cpu.Current(); err == nil {
			s.CPU = &t
		}
		return s, nil
	}
}

// Processes builds display records from the newest process sample and the
// one before it.
func Processes(procs *sample.Cache[model.ProcessSample], ctx model.TrackContext) ([]model.Process, error) {
	snap, err := procs.Snapshot()
	if err != nil {
		return nil, err
	}
	return model.TrackSamples(snap.Current, snap.Previous, ctx), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func previous[V any](m *map[string]V, name string) *V {
	if m == nil {
		return nil
	}
	v, ok := (*m)[name]
	if !ok {
		return nil
	}
	return &v
}
