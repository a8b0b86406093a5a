package cli

import (
	"context"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/rileyhilliard/hypertop/internal/backend"
	"github.com/rileyhilliard/hypertop/internal/config"
	"github.com/rileyhilliard/hypertop/internal/logger"
	"github.com/rileyhilliard/hypertop/internal/model"
	"github.com/rileyhilliard/hypertop/internal/monitor"
	"github.com/rileyhilliard/hypertop/internal/telemetry"
)

// openBackend is replaced in tests.
var openBackend = backend.Open

// session holds everything a command needs to sample the system, and the
// resources to release afterwards.
type session struct {
	cfg     *config.Config
	log     logger.Logger
	state   *monitor.State
	metrics *telemetry.Server
	logFile io.Closer
}

// openSession wires the logger, the optional metrics endpoint and the
// backend described by cfg.
func openSession(cfg *config.Config) (*session, error) {
	s := &session{cfg: cfg}

	log, closer, err := logger.NewFile(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		log = logger.NewConsole("")
		log.Warn("logging to stderr: %v", err)
	}
	s.log, s.logFile = log, closer
	logger.SetDefault(log)

	platform, err := backend.ParsePlatform(cfg.Backend)
	if err != nil {
		s.Close()
		return nil, err
	}
	opts := backend.Options{
		Platform:   platform,
		Logger:     log,
		GPU:        cfg.GPU.Enabled,
		GPUTimeout: cfg.GPU.Timeout,
	}

	if cfg.Metrics.Listen != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		observer, err := telemetry.New(reg)
		if err != nil {
			s.Close()
			return nil, err
		}
		opts.Observer = observer
		if s.metrics, err = telemetry.Serve(cfg.Metrics.Listen, reg, log); err != nil {
			s.Close()
			return nil, err
		}
	}

	b, err := openBackend(opts)
	if err != nil {
		s.Close()
		return nil, err
	}

	// Validate has already accepted the name.
	sortPref, _ := model.ParseSortOrder(cfg.Sort)
	s.state = monitor.NewState(b, monitor.Options{
		Sort:    sortPref,
		Refresh: cfg.Refresh,
		Logger:  log,
	})
	return s, nil
}

// Close stops the metrics server and closes the log file.
func (s *session) Close() {
	if s.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := s.metrics.Shutdown(ctx); err != nil {
			s.log.Warn("metrics server shutdown: %v", err)
		}
		cancel()
		s.metrics = nil
	}
	if s.logFile != nil {
		_ = s.logFile.Close()
		s.logFile = nil
	}
}
