// Package viz renders propagation results in the terminal.
//
//   - [Plot]: asciigraph line charts of radius or energy drift over a run
//   - [Sparkline], [CoverageBar]: one-line summaries for tables
//   - lipgloss styles shared by the CLI
package viz
