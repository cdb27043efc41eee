// Package ui holds the color palette and status symbols shared by the live
// display and the CLI reports.
//
// Colors are ANSI codes so they follow the terminal theme:
//
//	ColorSuccess (green)  - healthy latency, passing checks
//	ColorWarning (yellow) - elevated latency, warnings
//	ColorError   (red)    - critical latency, failures
//	ColorInfo    (cyan)   - labels
//	ColorMuted   (gray)   - secondary text, no data
//
// Use DisableColors() to switch to monochrome output (for --no-color).
package ui
