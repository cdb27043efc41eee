package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pingspark/internal/config"
	"github.com/rileyhilliard/pingspark/internal/ui"
	"github.com/rileyhilliard/pingspark/internal/util"
	"github.com/spf13/cobra"
)

var (
	initHostsFlag []string
	initForce     bool
)

// initCmd writes a starter config file
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a " + config.ConfigFileName + " config file",
	Long: `Write a config file with the built-in defaults to the current directory.

Examples:
  pingspark init
  pingspark init --host 1.1.1.1 --host 192.168.1.1
  pingspark init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Init(cmd.OutOrStdout(), InitOptions{
			Dir:       ".",
			Hosts:     initHostsFlag,
			Overwrite: initForce,
		})
	},
}

func init() {
	initCmd.Flags().StringArrayVar(&initHostsFlag, "host", nil, "host to probe (repeatable, replaces the defaults)")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")

	rootCmd.AddCommand(initCmd)
}

// InitOptions holds options for the init command.
type InitOptions struct {
	Dir       string   // Directory to write the config into
	Hosts     []string // Replaces the default host list when non-empty
	Overwrite bool     // Overwrite an existing config
}

// Init creates a new config file in opts.Dir.
func Init(w io.Writer, opts InitOptions) error {
	cfg := config.DefaultConfig()
	if len(opts.Hosts) > 0 {
		cfg.Hosts = append([]string(nil), opts.Hosts...)
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, config.ConfigFileName)

	if err := config.Write(path, cfg, opts.Overwrite); err != nil {
		return err
	}

	successStyle := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	mutedStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)

	fmt.Fprintf(w, "%s Created %s\n", successStyle.Render(ui.SymbolSuccess), path)
	fmt.Fprintf(w, "  %s\n", mutedStyle.Render(fmt.Sprintf("Probing %d %s every %s. Run 'pingspark' to start.",
		len(cfg.Hosts), util.Pluralize(len(cfg.Hosts), "host", "hosts"), cfg.Probe.Interval)))
	return nil
}
