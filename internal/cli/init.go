package cli

import (
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rileyhilliard/hypertop/internal/config"
	"github.com/rileyhilliard/hypertop/internal/errors"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Path           string // Where to write; empty means ./.hypertop.yaml
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, write the given config as is
	Out            io.Writer
}

// runForm is replaced in tests.
var runForm = func(f *huh.Form) error { return f.Run() }

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a hypertop config file",
	Long: `Create a config file with your preferred refresh interval, backend, sort
order, GPU probing and metrics address.

The file goes to ./` + config.ConfigFileName + ` unless --global is given. Global flags such
as --refresh and --sort seed the answers, which makes --non-interactive
useful in scripts:

  hypertop init --global --non-interactive --refresh 1s --sort memory`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(cmd)
	},
}

func init() {
	initCmd.Flags().Bool("global", false, "write ~/"+config.GlobalConfigDir+"/"+config.GlobalConfigFile)
	initCmd.Flags().Bool("force", false, "overwrite an existing config file")
	initCmd.Flags().Bool("non-interactive", false, "don't prompt, use defaults and flags")
	rootCmd.AddCommand(initCmd)
}

func initCommand(cmd *cobra.Command) error {
	cfg := config.DefaultConfig()
	if err := applyFlags(cfg, cmd.Flags()); err != nil {
		return err
	}

	opts := InitOptions{Out: cmd.OutOrStdout()}
	opts.Overwrite, _ = cmd.Flags().GetBool("force")
	opts.NonInteractive, _ = cmd.Flags().GetBool("non-interactive")
	if !opts.NonInteractive {
		opts.NonInteractive = nonInteractiveEnv()
	}
	if global, _ := cmd.Flags().GetBool("global"); global {
		path, err := config.GlobalPath()
		if err != nil {
			return err
		}
		opts.Path = path
	}
	return Init(cfg, opts)
}

// nonInteractiveEnv reports whether prompts would have nobody to answer them.
func nonInteractiveEnv() bool {
	if os.Getenv("HYPERTOP_NON_INTERACTIVE") != "" || os.Getenv("CI") != "" {
		return true
	}
	return !term.IsTerminal(int(os.Stdin.Fd()))
}

// Init writes cfg to a config file, first letting the user adjust it unless
// opts.NonInteractive is set.
func Init(cfg *config.Config, opts InitOptions) error {
	if opts.Path == "" {
		opts.Path = filepath.Join(".", config.ConfigFileName)
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	proceed, err := checkExistingConfig(opts)
	if err != nil || !proceed {
		return err
	}

	if !opts.NonInteractive {
		if err := promptConfig(cfg); err != nil {
			return err
		}
	}

	if err := config.Write(opts.Path, cfg); err != nil {
		return err
	}

	fmt.Fprintf(opts.Out, "✓ Created %s\n\n", opts.Path)
	fmt.Fprintln(opts.Out, "Next steps:")
	fmt.Fprintln(opts.Out, "  hypertop        - Open the dashboard")
	fmt.Fprintln(opts.Out, "  hypertop dump   - Print one snapshot")
	return nil
}

// checkExistingConfig decides whether an existing file may be replaced.
func checkExistingConfig(opts InitOptions) (bool, error) {
	if _, err := os.Stat(opts.Path); err != nil || opts.Overwrite {
		return true, nil
	}
	if opts.NonInteractive {
		return false, errors.New(errors.ErrConfig,
			fmt.Sprintf("Config file already exists: %s", opts.Path),
			"Use --force to overwrite")
	}

	var overwrite bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", opts.Path)).
				Value(&overwrite),
		),
	)
	if err := runForm(form); err != nil {
		return false, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Try running with --force to overwrite")
	}
	if !overwrite {
		fmt.Fprintln(opts.Out, "Cancelled.")
	}
	return overwrite, nil
}

// promptConfig asks for the commonly changed settings, starting from cfg.
func promptConfig(cfg *config.Config) error {
	refresh := cfg.Refresh.String()
	backendName := strings.ToLower(cfg.Backend)
	sortName := strings.ToLower(cfg.Sort)
	gpuEnabled := cfg.GPU.Enabled
	listen := cfg.Metrics.Listen

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Refresh interval").
				Description(fmt.Sprintf("How often to sample, at least %s", config.MinRefresh)).
				Placeholder(config.DefaultRefresh.String()).
				Value(&refresh).
				Validate(validateRefresh),
			huh.NewSelect[string]().
				Title("Backend").
				Options(
					huh.NewOption("Automatic (best for this OS)", "auto"),
					huh.NewOption("Linux /proc and /sys", "linux"),
					huh.NewOption("Generic (any OS, fewer details)", "generic"),
				).
				Value(&backendName),
			huh.NewSelect[string]().
				Title("Process sort").
				Options(
					huh.NewOption("Automatic (by CPU, memory under pressure)", "auto"),
					huh.NewOption("CPU", "cpu"),
					huh.NewOption("Memory", "memory"),
					huh.NewOption("I/O", "io"),
					huh.NewOption("CPU time", "time"),
				).
				Value(&sortName),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Probe for NVIDIA GPUs?").
				Description("Runs nvidia-smi each refresh when a GPU is found").
				Value(&gpuEnabled),
			huh.NewInput().
				Title("Metrics address (optional)").
				Description("Serve hypertop's own Prometheus metrics, e.g. 127.0.0.1:9101").
				Placeholder("leave empty to disable").
				Value(&listen).
				Validate(validateListen),
		),
	)

	if err := runForm(form); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or use --non-interactive flag")
	}

	d, err := time.ParseDuration(strings.TrimSpace(refresh))
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid refresh interval: "+refresh,
			"Use a duration like 1s or 2500ms")
	}
	cfg.Refresh = d
	cfg.Backend = backendName
	cfg.Sort = sortName
	cfg.GPU.Enabled = gpuEnabled
	cfg.Metrics.Listen = strings.TrimSpace(listen)
	return nil
}

func validateRefresh(s string) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("not a duration, try 1s or 2500ms")
	}
	if d < config.MinRefresh {
		return fmt.Errorf("the minimum is %s", config.MinRefresh)
	}
	return nil
}

func validateListen(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(s); err != nil {
		return fmt.Errorf("use host:port, e.g. :9101")
	}
	return nil
}
