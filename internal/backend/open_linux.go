package backend

import (
	"github.com/rileyhilliard/hypertop/internal/backend/gpu"
	"github.com/rileyhilliard/hypertop/internal/backend/linux"
)

var _ Backend = (*linux.Backend)(nil)

func openPlatform(opts Options, g *gpu.Collector) (Backend, error) {
	if opts.Platform == PlatformGeneric {
		return openGeneric(opts, g), nil
	}
	b, err := linux.New(linux.Options{
		GPU:      g,
		Logger:   opts.Logger,
		Observer: opts.Observer,
	})
	if err != nil {
		if opts.Platform == PlatformLinux {
			return nil, err
		}
		opts.Logger.Warn("linux backend unavailable, falling back to generic: %v", err)
		return openGeneric(opts, g), nil
	}
	return b, nil
}
