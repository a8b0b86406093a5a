package monitor

import (
	"os/user"
	"strconv"
	"sync"
	"time"

	"github.com/rileyhilliard/hypertop/internal/backend"
	"github.com/rileyhilliard/hypertop/internal/logger"
	"github.com/rileyhilliard/hypertop/internal/model"
)

// Options configures a State.
type Options struct {
	// Sort is the initial sort preference; nil picks the order automatically.
	Sort    *model.SortOrder
	Refresh time.Duration
	Logger  logger.Logger

	// lookupUser resolves a numeric uid. Tests replace it.
	lookupUser func(uid string) (*user.User, error)
}

// State drives refresh cycles against one backend and remembers the user's
// sort preference between them. It is safe to change the preference while a
// refresh is running on another goroutine.
type State struct {
	backend backend.Backend
	log     logger.Logger
	refresh time.Duration

	mu   sync.Mutex
	pref *model.SortOrder

	usersMu    sync.Mutex
	users      map[uint32]string
	lookupUser func(uid string) (*user.User, error)
}

// NewState wraps b.
func NewState(b backend.Backend, opts Options) *State {
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}
	if opts.lookupUser == nil {
		opts.lookupUser = user.LookupId
	}
	return &State{
		backend:    b,
		log:        opts.Logger,
		refresh:    opts.Refresh,
		pref:       copySort(opts.Sort),
		users:      make(map[uint32]string),
		lookupUser: opts.lookupUser,
	}
}

func copySort(o *model.SortOrder) *model.SortOrder {
	if o == nil {
		return nil
	}
	v := *o
	return &v
}

// Backend is the backend being sampled.
func (s *State) Backend() backend.Backend {
	return s.backend
}

// RefreshInterval is the configured time between refresh cycles.
func (s *State) RefreshInterval() time.Duration {
	return s.refresh
}

// Refresh starts a new cycle: the backend's logical clock advances, so the
// next read of every source fetches fresh data.
func (s *State) Refresh() error {
	if err := s.backend.Update(); err != nil {
		s.log.Error("refresh failed: %v", err)
		return err
	}
	return nil
}

// SetSort replaces the sort preference. nil means automatic.
func (s *State) SetSort(o *model.SortOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pref = copySort(o)
}

// Sort returns the current preference, nil when automatic.
func (s *State) Sort() *model.SortOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySort(s.pref)
}

// ProcessList reads the current processes and orders them. With no explicit
// preference the order follows what the machine is short of: CPU when the
// global CPU is saturated, memory when more than half of it is used.
func (s *State) ProcessList() (*model.ProcessList, error) {
	procs, err := s.backend.Processes()
	if err != nil {
		return nil, err
	}
	return s.order(procs, s.pressureHints()), nil
}

type sortHints struct {
	cpu, mem float64
}

func (s *State) pressureHints() sortHints {
	var h sortHints
	if cpu, err := s.backend.GlobalCPU(); err == nil {
		h.cpu = cpu.Utilization
	}
	if mem, err := s.backend.Memory(); err == nil {
		h.mem = mem.UsedFrac()
	}
	return h
}

func (s *State) order(procs []model.Process, h sortHints) *model.ProcessList {
	pref := s.Sort()
	order := model.ResolveSortOrder(pref, h.cpu, h.mem)
	return model.NewProcessList(procs, order, pref == nil)
}

// Username returns the login name for uid, or the number itself when the
// account can't be resolved. Results are cached for the life of the State.
func (s *State) Username(uid uint32) string {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	if name, ok := s.users[uid]; ok {
		return name
	}
	id := strconv.FormatUint(uint64(uid), 10)
	name := id
	if u, err := s.lookupUser(id); err == nil && u.Username != "" {
		name = u.Username
	} else if err != nil {
		s.log.Debug("user lookup for uid %s: %v", id, err)
	}
	s.users[uid] = name
	return name
}
