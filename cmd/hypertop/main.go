// Command hypertop is a terminal system monitor.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rileyhilliard/hypertop/internal/cli"
)

// Version info set via ldflags at build time:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123 -X main.date=2024-01-01" ./cmd/hypertop
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx)
	stop()
	os.Exit(code)
}

func run(ctx context.Context) int {
	cli.SetVersionInfo(version, commit, date)
	if err := cli.Execute(ctx); err != nil {
		return 1
	}
	return 0
}
