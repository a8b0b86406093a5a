package cli

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/hypertop/internal/errors"
	"github.com/rileyhilliard/hypertop/internal/monitor"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print one snapshot as YAML or JSON",
	Long: `Sample the system twice, wait in between so rates have a window, and
print everything the dashboard would show to stdout.

Widgets that can't be read on this machine carry an "unavailable" reason
instead of a value. If a source fails outright the snapshot is still printed,
and hypertop exits non-zero.

Examples:
  hypertop dump
  hypertop dump --format json --wait 1s | jq '.processes.value.rows[:5]'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dumpCommand(cmd, cmd.OutOrStdout())
	},
}

func init() {
	dumpCmd.Flags().Duration("wait", 0, "pause between the two samples (default from config, 500ms)")
	dumpCmd.Flags().String("format", "", "output format: yaml or json")
	rootCmd.AddCommand(dumpCmd)
}

func dumpCommand(cmd *cobra.Command, out io.Writer) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	snap, collectErr := sampleTwice(cmd.Context(), s.state, cfg.Dump.Wait)
	if snap == nil {
		return collectErr
	}
	if err := writeSnapshot(out, snap, cfg.Dump.Format); err != nil {
		return err
	}
	if collectErr != nil {
		return errors.WrapWithCode(collectErr, errors.ErrBackend,
			"Some sources failed while sampling",
			"The snapshot above marks them as failed; see the log for details")
	}
	return nil
}

// sampleTwice refreshes, waits, refreshes again and collects. The first
// cycle only primes the caches so the second one has rates.
func sampleTwice(ctx context.Context, state *monitor.State, wait time.Duration) (*monitor.Snapshot, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := state.Refresh(); err != nil {
		return nil, err
	}
	// Reading every source once stores the previous sample.
	_, _ = state.Collect()

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	if err := state.Refresh(); err != nil {
		return nil, err
	}
	return state.Collect()
}

func writeSnapshot(w io.Writer, snap *monitor.Snapshot, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errors.New(errors.ErrConfig,
			"Unknown dump format: "+format,
			"Use --format yaml or --format json")
	}
}
