package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rileyhilliard/hypertop/internal/config"
	"github.com/rileyhilliard/hypertop/internal/errors"
)

var rootCmd = &cobra.Command{
	Use:   "hypertop",
	Short: "A terminal system monitor",
	Long: `hypertop shows CPU, memory, pressure, network, disk, filesystem and GPU
usage above a sorted process table, refreshed on an interval.

Press ? inside the dashboard for keyboard shortcuts. Use 'hypertop dump' to
print a single snapshot as YAML or JSON.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor, _ := cmd.Flags().GetBool("no-color"); noColor || os.Getenv("NO_COLOR") != "" {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(cmd)
	},
}

func init() {
	addGlobalFlags(rootCmd.PersistentFlags())
}

// Execute runs the root command until ctx is cancelled. Errors are printed
// to stderr before being returned.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return err
}

// addGlobalFlags defines the flags every command shares. Each one overrides
// the matching config key when set.
func addGlobalFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default: ./"+config.ConfigFileName+" or ~/"+config.GlobalConfigDir+"/"+config.GlobalConfigFile+")")
	fs.Duration("refresh", 0, "time between refreshes, e.g. 1s or 2500ms")
	fs.String("backend", "", "data source: auto, linux or generic")
	fs.String("sort", "", "initial process sort: auto, cpu, memory, io or time")
	fs.String("metrics-addr", "", "serve self-metrics on this host:port")
	fs.Bool("no-gpu", false, "skip the nvidia-smi probe")
	fs.String("log-level", "", "log level: debug, info, warn or error")
	fs.Bool("no-color", false, "disable colors")
}

// loadConfig reads the config file selected by --config (or found on the
// search path) and applies flag overrides on top.
func loadConfig(fs *pflag.FlagSet) (*config.Config, error) {
	path, _ := fs.GetString("config")
	cfg, _, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cfg, fs); err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cfg *config.Config, fs *pflag.FlagSet) error {
	var err error
	str := func(name string, dst *string) {
		if err == nil && fs.Changed(name) {
			*dst, err = fs.GetString(name)
		}
	}
	str("backend", &cfg.Backend)
	str("sort", &cfg.Sort)
	str("metrics-addr", &cfg.Metrics.Listen)
	str("log-level", &cfg.Log.Level)
	str("format", &cfg.Dump.Format)

	dur := func(name string, dst *time.Duration) {
		if err == nil && fs.Changed(name) {
			*dst, err = fs.GetDuration(name)
		}
	}
	dur("refresh", &cfg.Refresh)
	dur("wait", &cfg.Dump.Wait)

	if err == nil && fs.Changed("no-gpu") {
		var off bool
		if off, err = fs.GetBool("no-gpu"); err == nil && off {
			cfg.GPU.Enabled = false
		}
	}
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid command-line flag",
			"Run 'hypertop --help' to see the accepted values")
	}
	return nil
}
