package cli

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rileyhilliard/hypertop/internal/errors"
	"github.com/rileyhilliard/hypertop/internal/monitor"
)

// isTerminal is replaced in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// dashboardCommand runs the full-screen dashboard until the user quits.
func dashboardCommand(cmd *cobra.Command) error {
	if !isTerminal() {
		return errors.New(errors.ErrExec,
			"The dashboard needs an interactive terminal",
			"Use 'hypertop dump' to print a snapshot instead")
	}

	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	m := monitor.NewModel(s.state, monitor.GaugeThresholdsFrom(cfg.Thresholds))
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			s.log.Info("dashboard stopped by signal")
			return nil
		}
		return errors.WrapWithCode(err, errors.ErrExec,
			"Dashboard error",
			"Check terminal compatibility")
	}
	s.log.Info("dashboard closed")
	return nil
}
