package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pingspark/internal/config"
	"github.com/rileyhilliard/pingspark/internal/display"
	"github.com/rileyhilliard/pingspark/internal/doctor"
	"github.com/rileyhilliard/pingspark/internal/probe"
	"github.com/rileyhilliard/pingspark/internal/ui"
	"github.com/spf13/cobra"
)

// doctorTimeout bounds the whole report so an unreachable host can't hang it.
const doctorTimeout = 10 * time.Second

var (
	doctorJSON    bool
	doctorFix     bool
	doctorNoProbe bool
)

// doctorCmd diagnoses config, terminal and ICMP issues
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose config, terminal and ICMP issues",
	Long: `Run diagnostic checks to find out why pingspark cannot probe or draw.

Checks:
  - Config file presence and validity
  - Terminal size and plot area after margins
  - Permission to open an ICMP socket
  - Each configured host resolves and answers one echo request

Examples:
  pingspark doctor
  pingspark doctor --fix
  pingspark doctor --json --no-probe`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output in JSON format")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "attempt automatic fixes where possible")
	doctorCmd.Flags().BoolVar(&doctorNoProbe, "no-probe", false, "resolve hosts without sending echo requests")

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
	Fixable  int  `json:"fixable"`
	AllClear bool `json:"all_clear"`
}

// doctorCommand implements the doctor command logic.
func doctorCommand(ctx context.Context, w io.Writer) error {
	// Fall back to defaults so the terminal and ICMP checks still run;
	// the config checks report the load error.
	cfg, _, err := config.LoadOrDefault(Config())
	if err != nil {
		cfg = config.DefaultConfig()
	}

	var dialer probe.Dialer
	if !doctorNoProbe {
		dialer = probe.ICMPOptions{
			Privileged: cfg.Probe.Privileged,
			Timeout:    cfg.Probe.Timeout,
		}.Dialer()
	}

	checks := collectChecks(Config(), cfg, dialer)

	ctx, cancel := context.WithTimeout(ctx, doctorTimeout)
	defer cancel()

	results := doctor.RunAllParallel(ctx, checks)

	if doctorFix {
		results = attemptFixes(ctx, checks, results)
	}

	if doctorJSON {
		return outputDoctorJSON(w, checks, results)
	}
	outputDoctorText(w, checks, results)
	return nil
}

// collectChecks gathers every diagnostic check for cfg. A nil dialer limits
// host checks to name resolution.
func collectChecks(cfgPath string, cfg *config.Config, dialer probe.Dialer) []doctor.Check {
	checks := []doctor.Check{
		&doctor.ConfigFileCheck{ConfigPath: cfgPath},
		&doctor.ConfigSchemaCheck{ConfigPath: cfgPath},
		&doctor.TerminalCheck{
			Size:         display.TerminalSize,
			BottomMargin: cfg.Display.BottomMargin,
			RightMargin:  cfg.Display.RightMargin,
		},
		&doctor.SocketCheck{Privileged: cfg.Probe.Privileged},
	}
	return append(checks, doctor.NewHostChecks(cfg.Hosts, probe.Resolve, dialer)...)
}

// attemptFixes tries to fix issues where possible.
func attemptFixes(ctx context.Context, checks []doctor.Check, results []doctor.CheckResult) []doctor.CheckResult {
	for i, result := range results {
		if result.Fixable && result.Status != doctor.StatusPass {
			if err := checks[i].Fix(); err == nil {
				// Re-run the check to see if it's fixed
				results[i] = checks[i].Run(ctx)
			}
		}
	}
	return results
}

// buildDoctorOutput groups results by category in report order.
func buildDoctorOutput(checks []doctor.Check, results []doctor.CheckResult) DoctorOutput {
	grouped := doctor.GroupByCategory(checks)

	output := DoctorOutput{Categories: make([]CategoryOutput, 0, len(grouped))}
	for _, cat := range doctor.CategoryOrder {
		indices := grouped[cat]
		if len(indices) == 0 {
			continue
		}
		co := CategoryOutput{Name: cat, Results: make([]doctor.CheckResult, 0, len(indices))}
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
		Fixable:  doctor.FixableCount(results),
		AllClear: !doctor.HasIssues(results),
	}
	return output
}

// outputDoctorJSON outputs results in JSON format.
func outputDoctorJSON(w io.Writer, checks []doctor.Check, results []doctor.CheckResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(buildDoctorOutput(checks, results))
}

// outputDoctorText outputs results in human-readable format.
func outputDoctorText(w io.Writer, checks []doctor.Check, results []doctor.CheckResult) {
	successStyle := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	errorStyle := lipgloss.NewStyle().Foreground(ui.ColorError)
	mutedStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)
	headerStyle := lipgloss.NewStyle().Bold(true)

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("pingspark Diagnostic Report"))
	fmt.Fprintln(w)

	for _, category := range buildDoctorOutput(checks, results).Categories {
		fmt.Fprintln(w, headerStyle.Render(category.Name))
		for _, result := range category.Results {
			renderCheckResult(w, result)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat(ui.SymbolDivider, 60))
	fmt.Fprintln(w)

	if !doctor.HasIssues(results) {
		fmt.Fprintf(w, "%s %s\n", successStyle.Render(ui.SymbolSuccess), doctor.Summary(results))
	} else {
		fmt.Fprintf(w, "%s %s\n", errorStyle.Render(ui.SymbolFail), doctor.Summary(results))

		if doctor.FixableCount(results) > 0 && !doctorFix {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "  Run with %s to attempt automatic fixes where possible.\n",
				mutedStyle.Render("--fix"))
		}
	}

	fmt.Fprintln(w)
}

// renderCheckResult renders a single check result.
func renderCheckResult(w io.Writer, result doctor.CheckResult) {
	var symbol string
	var style lipgloss.Style

	switch result.Status {
	case doctor.StatusPass:
		symbol = ui.SymbolComplete
		style = lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	case doctor.StatusWarn:
		symbol = ui.SymbolComplete // Still shows as done, but with warning styling
		style = lipgloss.NewStyle().Foreground(ui.ColorWarning)
	default:
		symbol = ui.SymbolFail
		style = lipgloss.NewStyle().Foreground(ui.ColorError)
	}

	fmt.Fprintf(w, "  %s %s\n", style.Render(symbol), result.Message)

	if result.Suggestion != "" && result.Status != doctor.StatusPass {
		mutedStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)
		for _, line := range strings.Split(result.Suggestion, "\n") {
			fmt.Fprintf(w, "    %s\n", mutedStyle.Render(line))
		}
	}
}
