package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Built-in defaults. The process runs with these when no config file exists.
const (
	DefaultWindowLength  = 100
	DefaultQueueCapacity = 32
	DefaultProbeInterval = 500 * time.Millisecond
	DefaultProbeTimeout  = 2 * time.Second
	DefaultPollInterval  = 200 * time.Millisecond
	DefaultSmoothing     = 5

	// DefaultBottomMargin reserves the stats line, the blank separator and
	// the plot's extra baseline row.
	DefaultBottomMargin = 4
	// DefaultRightMargin reserves the y-axis label column of the line plot.
	DefaultRightMargin = 12
)

// Window aggregation modes.
const (
	// ModeMerged keys time slots by sequence number only, so samples from
	// different hosts that share a seq are averaged into one slot.
	ModeMerged = "merged"
	// ModePerHost keeps one window per host and merges them positionally.
	ModePerHost = "per-host"
)

// Plot styles.
const (
	PlotLine    = "line"
	PlotBraille = "braille"
)

// DefaultHosts are the probe targets used when the config names none.
var DefaultHosts = []string{
	"1.1.1.1",
	"8.8.8.8",
	"9.9.9.9",
	"208.67.222.222",
}

// Config represents the complete .pingspark.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// Hosts are probed in this order; the index is the host id.
	// Read once at startup.
	Hosts []string `yaml:"hosts" mapstructure:"hosts"`

	// QueueCapacity bounds both pipeline channels.
	QueueCapacity int `yaml:"queue_capacity" mapstructure:"queue_capacity"`

	Probe   ProbeConfig   `yaml:"probe" mapstructure:"probe"`
	Window  WindowConfig  `yaml:"window" mapstructure:"window"`
	Display DisplayConfig `yaml:"display" mapstructure:"display"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// ProbeConfig controls the per-host ICMP probers.
type ProbeConfig struct {
	// Interval is the fixed cadence between probe ticks.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// Timeout bounds how long a single echo waits for its reply.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Privileged selects raw ICMP sockets instead of unprivileged
	// datagram ping sockets.
	Privileged bool `yaml:"privileged" mapstructure:"privileged"`
}

// WindowConfig controls the rolling aggregation window.
type WindowConfig struct {
	Length int    `yaml:"length" mapstructure:"length"`
	Mode   string `yaml:"mode" mapstructure:"mode"`
}

// DisplayConfig controls terminal polling and rendering.
type DisplayConfig struct {
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	BottomMargin int           `yaml:"bottom_margin" mapstructure:"bottom_margin"`
	RightMargin  int           `yaml:"right_margin" mapstructure:"right_margin"`

	// Smoothing is the weighted moving average window.
	Smoothing int `yaml:"smoothing" mapstructure:"smoothing"`

	// Plot is "line" or "braille".
	Plot string `yaml:"plot" mapstructure:"plot"`

	// TUI renders through a full-screen Bubble Tea program.
	TUI bool `yaml:"tui" mapstructure:"tui"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	// Listen is a host:port for /metrics. Empty disables the endpoint.
	Listen string `yaml:"listen" mapstructure:"listen"`
}

// LogConfig controls where diagnostic logs go.
type LogConfig struct {
	// File receives log output instead of stderr when set.
	File string `yaml:"file" mapstructure:"file"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	hosts := make([]string, len(DefaultHosts))
	copy(hosts, DefaultHosts)

	return &Config{
		Version:       CurrentConfigVersion,
		Hosts:         hosts,
		QueueCapacity: DefaultQueueCapacity,
		Probe: ProbeConfig{
			Interval: DefaultProbeInterval,
			Timeout:  DefaultProbeTimeout,
		},
		Window: WindowConfig{
			Length: DefaultWindowLength,
			Mode:   ModeMerged,
		},
		Display: DisplayConfig{
			PollInterval: DefaultPollInterval,
			BottomMargin: DefaultBottomMargin,
			RightMargin:  DefaultRightMargin,
			Smoothing:    DefaultSmoothing,
			Plot:         PlotLine,
		},
	}
}
