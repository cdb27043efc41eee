package render

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pingspark/internal/ui"
)

// Latency severity colors.
const (
	ColorHealthy  = ui.ColorSuccess
	ColorWarning  = ui.ColorWarning
	ColorCritical = ui.ColorError
	ColorMuted    = ui.ColorMuted
	ColorAccent   = ui.ColorInfo
)

// Latency thresholds in milliseconds.
const (
	WarningLatency  = 100.0
	CriticalLatency = 250.0
)

// LatencyColor maps a round-trip time in ms to a severity color.
// Zero means no data and is drawn muted.
func LatencyColor(ms float64) lipgloss.Color {
	switch {
	case ms <= 0:
		return ColorMuted
	case ms >= CriticalLatency:
		return ColorCritical
	case ms >= WarningLatency:
		return ColorWarning
	default:
		return ColorHealthy
	}
}

var (
	statsLabelStyle = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	footerStyle     = lipgloss.NewStyle().Foreground(ColorMuted)
)
