package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/rileyhilliard/pingspark/internal/config"
	"github.com/rileyhilliard/pingspark/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile string
	noColor bool
)

var monitorFlags RunFlags

// rootCmd probes every configured host and plots the rolling RTT
var rootCmd = &cobra.Command{
	Use:   "pingspark",
	Short: "Live ICMP round-trip time graph for your terminal",
	Long: `Ping a set of hosts on a fixed cadence and draw a rolling graph of the
averaged round-trip time, redrawn in place as new replies arrive.

Hosts, cadence and window size come from .pingspark.yaml when present,
otherwise from built-in defaults. Flags override either.

Examples:
  pingspark
  pingspark --host 1.1.1.1 --host 8.8.8.8
  pingspark --interval 250ms --plot braille
  pingspark --tui --metrics 127.0.0.1:9273`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			ui.DisableColors()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd.Context(), monitorFlags)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./"+config.ConfigFileName+", then the global config)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	AddRunFlags(rootCmd, &monitorFlags)
}

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		msg := err.Error()
		if !strings.HasSuffix(msg, "\n") {
			msg += "\n"
		}
		fmt.Fprint(os.Stderr, msg)
		os.Exit(1)
	}
}
