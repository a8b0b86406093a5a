package sample

import (
	"time"

	"github.com/rileyhilliard/hypertop/internal/errors"
)

// Observer is told about every underlying fetch a cache performs.
type Observer interface {
	Fetched(source string, took time.Duration, err error)
}

// Option configures a Cache.
type Option func(*cacheOptions)

type cacheOptions struct {
	observer Observer
	now      func() time.Time
}

// WithObserver reports fetches to o.
func WithObserver(o Observer) Option {
	return func(c *cacheOptions) {
		c.observer = o
	}
}

// WithNow overrides the wall clock used for windows and fetch timing.
func WithNow(now func() time.Time) Option {
	return func(c *cacheOptions) {
		c.now = now
	}
}

// Cache wraps one raw data source and refreshes it at most once per cycle of
// the shared clock, keeping the newest and the immediately prior sample.
//
// A failed fetch leaves the window untouched so the next cycle retries. The
// failure is remembered for the rest of the cycle it happened in, so several
// readers in one cycle do not hammer a broken source.
type Cache[T any] struct {
	name     string
	fetch    func() (T, error)
	clock    *Tick
	window   *Window
	current  *T
	previous *T

	failedTick uint64
	lastErr    error

	observer Observer
	now      func() time.Time
}

// NewCache creates a cache named name over fetch, driven by clock.
func NewCache[T any](name string, clock *Tick, fetch func() (T, error), opts ...Option) *Cache[T] {
	o := cacheOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	w := NewWindow()
	w.now = o.now
	return &Cache[T]{
		name:     name,
		fetch:    fetch,
		clock:    clock,
		window:   w,
		observer: o.observer,
		now:      o.now,
	}
}

// Name returns the source name the cache was created with.
func (c *Cache[T]) Name() string {
	return c.name
}

// Access refreshes the cache if the clock moved since the last successful
// fetch. It performs at most one fetch per cycle.
func (c *Cache[T]) Access() error {
	if c.window.IsCurrent(c.clock) {
		return nil
	}
	if c.lastErr != nil && c.failedTick == c.clock.Current() {
		return c.lastErr
	}

	start := c.now()
	v, err := c.fetch()
	if c.observer != nil {
		c.observer.Fetched(c.name, c.now().Sub(start), err)
	}
	if err != nil {
		c.lastErr = err
		c.failedTick = c.clock.Current()
		return err
	}

	c.lastErr = nil
	c.previous = c.current
	c.current = &v
	c.window.Update(c.clock)
	return nil
}

// Current refreshes if needed and returns the newest sample.
func (c *Cache[T]) Current() (T, error) {
	var zero T
	if err := c.Access(); err != nil {
		return zero, err
	}
	if c.current == nil {
		return zero, errors.NotAvailable(c.name, nil)
	}
	return *c.current, nil
}

// Snapshot is a consistent view of one cache after a refresh.
type Snapshot[T any] struct {
	Current  T
	Previous *T
	Window   time.Duration
	At       time.Time
}

// HasPrevious reports whether a rate can be computed.
func (s Snapshot[T]) HasPrevious() bool {
	return s.Previous != nil
}

// Snapshot refreshes if needed and returns current, previous and the window
// between them.
func (c *Cache[T]) Snapshot() (Snapshot[T], error) {
	cur, err := c.Current()
	if err != nil {
		return Snapshot[T]{}, err
	}
	return Snapshot[T]{
		Current:  cur,
		Previous: c.previous,
		Window:   c.window.Duration(),
		At:       c.window.At(),
	}, nil
}
