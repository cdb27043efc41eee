// Package cli implements the pingspark command-line interface.
//
// # Command Structure
//
// The root command probes the configured hosts and draws the live graph
// until interrupted:
//
//	pingspark                  - Probe and plot (Ctrl+C to stop)
//	pingspark init             - Create .pingspark.yaml
//	pingspark doctor           - Diagnose config, terminal and ICMP issues
//	pingspark version          - Print build information
//
// # Flag Handling
//
// Global flags (--config, --no-color) are persistent on the root command.
// Flags that change the monitor itself (--host, --interval, --mode, --plot,
// --tui, --metrics, --log-file, --privileged) live on the root command only
// and override the matching config fields after the file is loaded. The
// merged config is validated before anything starts.
//
// # Shutdown
//
// SIGINT and SIGTERM cancel the pipeline context. The renderer restores the
// cursor on the way out, so an interrupted run leaves the terminal usable.
package cli
