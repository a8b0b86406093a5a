package backend

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/hypertop/internal/backend/generic"
	"github.com/rileyhilliard/hypertop/internal/backend/gpu"
	"github.com/rileyhilliard/hypertop/internal/errors"
	"github.com/rileyhilliard/hypertop/internal/logger"
	"github.com/rileyhilliard/hypertop/internal/sample"
)

// Platform names an implementation.
type Platform string

const (
	// PlatformAuto picks the most capable implementation for this OS.
	PlatformAuto    Platform = "auto"
	PlatformLinux   Platform = "linux"
	PlatformGeneric Platform = "generic"
)

// ParsePlatform validates a platform name; "" means auto.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case "", PlatformAuto:
		return PlatformAuto, nil
	case PlatformLinux, PlatformGeneric:
		return p, nil
	default:
		return "", errors.New(errors.ErrConfig,
			fmt.Sprintf("unknown backend %q", s),
			"Use one of: auto, linux, generic")
	}
}

// Options configures Open.
type Options struct {
	Platform Platform
	Logger   logger.Logger
	// Observer is told about every underlying fetch, for self-metrics.
	Observer sample.Observer
	// GPU enables the nvidia-smi probe at startup.
	GPU        bool
	GPUTimeout time.Duration
}

// Open builds the backend for the requested platform. With PlatformAuto a
// platform backend that cannot start falls back to the generic one.
func Open(opts Options) (Backend, error) {
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}
	if opts.Platform == "" {
		opts.Platform = PlatformAuto
	}

	var g *gpu.Collector
	if opts.GPU {
		g = gpu.New(gpu.Options{Timeout: opts.GPUTimeout, Logger: opts.Logger})
	}

	b, err := openPlatform(opts, g)
	if err != nil {
		return nil, err
	}
	opts.Logger.Info("using %s backend", b.Name())
	return b, nil
}

func openGeneric(opts Options, g *gpu.Collector) Backend {
	return generic.New(generic.Options{
		GPU:      g,
		Logger:   opts.Logger,
		Observer: opts.Observer,
	})
}

var _ Backend = (*generic.Backend)(nil)
