package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rileyhilliard/hypertop/internal/doctor"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check which statistics hypertop can read here",
	Long: `Validate the config, then read every data source once and report which
ones work on this machine, which are unavailable (not supported, or no
permission) and which fail outright. Also checks for nvidia-smi when GPU
probing is enabled.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return doctorCommand(cmd, cmd.OutOrStdout(), asJSON)
	},
}

func init() {
	doctorCmd.Flags().Bool("json", false, "output in JSON format")
	rootCmd.AddCommand(doctorCmd)
}

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	AllClear bool `json:"all_clear"`
}

func doctorCommand(cmd *cobra.Command, out io.Writer, asJSON bool) error {
	checks, done := collectChecks(cmd.Flags())
	results := doctor.RunAll(checks)
	done()

	if asJSON {
		return outputDoctorJSON(out, checks, results)
	}
	outputDoctorText(out, checks, results)
	return nil
}

// collectChecks gathers the config checks and, when the config loads, one
// check per data source of the configured backend. done releases the
// session once the checks have run.
func collectChecks(fs *pflag.FlagSet) (checks []doctor.Check, done func()) {
	configPath, _ := fs.GetString("config")
	checks = doctor.NewConfigChecks(configPath)
	done = func() {}

	cfg, err := loadConfig(fs)
	if err != nil {
		// The schema check already reports why.
		return checks, done
	}

	s, err := openSession(cfg)
	if err != nil {
		return append(checks, failedSource("backend", "Backend", err)), done
	}
	if err := s.state.Refresh(); err != nil {
		return append(checks, failedSource("refresh", "Refresh", err)), s.Close
	}

	b := s.state.Backend()
	checks = append(checks, doctor.NewSourceChecks(b)...)
	checks = append(checks, &doctor.GPUCheck{Enabled: cfg.GPU.Enabled, Backend: b})
	return checks, s.Close
}

func failedSource(id, label string, err error) doctor.Check {
	return &doctor.SourceCheck{
		ID:    id,
		Label: label,
		Read:  func() (string, error) { return "", err },
	}
}

func outputDoctorJSON(w io.Writer, checks []doctor.Check, results []doctor.CheckResult) error {
	grouped := doctor.GroupByCategory(checks)
	output := DoctorOutput{Categories: []CategoryOutput{}}

	for _, cat := range doctor.Categories {
		indices, ok := grouped[cat]
		if !ok {
			continue
		}
		co := CategoryOutput{Name: cat}
		for _, idx := range indices {
			co.Results = append(co.Results, results[idx])
		}
		output.Categories = append(output.Categories, co)
	}

	counts := doctor.CountByStatus(results)
	output.Summary = SummaryOutput{
		Pass:     counts[doctor.StatusPass],
		Warn:     counts[doctor.StatusWarn],
		Fail:     counts[doctor.StatusFail],
		AllClear: !doctor.HasIssues(results),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

var (
	doctorPassStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	doctorFailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	doctorWarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	doctorMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	doctorHeadStyle  = lipgloss.NewStyle().Bold(true)
)

func outputDoctorText(w io.Writer, checks []doctor.Check, results []doctor.CheckResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doctorHeadStyle.Render("hypertop Diagnostic Report"))
	fmt.Fprintln(w)

	grouped := doctor.GroupByCategory(checks)
	for _, category := range doctor.Categories {
		indices, ok := grouped[category]
		if !ok {
			continue
		}
		fmt.Fprintln(w, doctorHeadStyle.Render(category))
		for _, idx := range indices {
			renderCheckResult(w, results[idx])
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("━", 60))
	fmt.Fprintln(w)

	symbol := doctorPassStyle.Render("✓")
	if doctor.HasFailures(results) {
		symbol = doctorFailStyle.Render("✗")
	} else if doctor.HasIssues(results) {
		symbol = doctorWarnStyle.Render("●")
	}
	fmt.Fprintf(w, "%s %s\n\n", symbol, doctor.Summary(results))
}

func renderCheckResult(w io.Writer, result doctor.CheckResult) {
	var symbol string
	switch result.Status {
	case doctor.StatusPass:
		symbol = doctorPassStyle.Render("●")
	case doctor.StatusWarn:
		symbol = doctorWarnStyle.Render("●")
	default:
		symbol = doctorFailStyle.Render("✗")
	}

	fmt.Fprintf(w, "  %s %s\n", symbol, result.Message)

	if result.Suggestion != "" && result.Status != doctor.StatusPass {
		for _, line := range strings.Split(result.Suggestion, "\n") {
			fmt.Fprintf(w, "    %s\n", doctorMutedStyle.Render(line))
		}
	}
}
