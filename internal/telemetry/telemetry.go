// Package telemetry exports hypertop's own data-source activity as
// Prometheus metrics: how often each source is read, how long reads take and
// how they fail.
package telemetry

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rileyhilliard/hypertop/internal/errors"
	"github.com/rileyhilliard/hypertop/internal/logger"
)

const namespace = "hypertop"

// Collector records cache fetches. It satisfies sample.Observer.
type Collector struct {
	fetches  *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_fetches_total",
			Help:      "Underlying reads performed per data source.",
		}, []string{"source"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_failures_total",
			Help:      "Failed reads per data source and error kind.",
		}, []string{"source", "kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_fetch_seconds",
			Help:      "Time spent reading each data source.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"source"}),
	}
	for _, m := range []prometheus.Collector{c.fetches, c.failures, c.duration} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Fetched records one read.
func (c *Collector) Fetched(source string, took time.Duration, err error) {
	c.fetches.WithLabelValues(source).Inc()
	c.duration.WithLabelValues(source).Observe(took.Seconds())
	if err != nil {
		c.failures.WithLabelValues(source, kindLabel(err)).Inc()
	}
}

func kindLabel(err error) string {
	kind := errors.Kind(err)
	if kind == "" {
		kind = errors.ErrOther
	}
	return strings.ToLower(kind)
}

// Server serves /metrics in the background.
type Server struct {
	srv  *http.Server
	addr string
}

// Serve starts listening on addr and serves gatherer's metrics until
// Shutdown. The listener is bound before Serve returns so a bad address is
// reported immediately.
func Serve(addr string, gatherer prometheus.Gatherer, log logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.Noop()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"can't listen for metrics on "+addr,
			"Pick a free address with --metrics-addr, or leave it empty to disable metrics")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	s := &Server{
		srv:  &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		addr: ln.Addr().String(),
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped: %v", err)
		}
	}()
	log.Info("serving metrics on http://%s/metrics", s.addr)
	return s, nil
}

// Addr is the bound address, useful when listening on port 0.
func (s *Server) Addr() string {
	return s.addr
}

// Shutdown stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
