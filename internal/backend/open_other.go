//go:build !linux

package backend

import (
	"runtime"

	"github.com/rileyhilliard/hypertop/internal/backend/gpu"
	"github.com/rileyhilliard/hypertop/internal/errors"
)

func openPlatform(opts Options, g *gpu.Collector) (Backend, error) {
	if opts.Platform == PlatformLinux {
		return nil, errors.New(errors.ErrBackend,
			"the linux backend is not available on "+runtime.GOOS,
			"Use --backend auto or --backend generic")
	}
	return openGeneric(opts, g), nil
}
