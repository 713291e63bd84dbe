// Package formatters provides human-readable formatting helpers for progress
// and summary output.
package formatters

import (
	"fmt"
	"time"
)

// FormatDuration formats a duration into a compact human-readable form
// (e.g. "2m 30s").
func FormatDuration(duration time.Duration) string {
	duration = duration.Round(time.Second)
	hours := duration / time.Hour
	duration %= time.Hour
	minutes := duration / time.Minute
	duration %= time.Minute
	seconds := duration / time.Second

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	return fmt.Sprintf("%ds", seconds)
}

// FormatETA formats an estimated time remaining. An unknown ETA (no item has
// completed yet) renders as "∞".
func FormatETA(eta time.Duration, known bool) string {
	if !known {
		return "∞"
	}

	return FormatDuration(eta)
}

// FormatPercent renders a 0..1 ratio as a percentage with one decimal.
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100) //nolint:mnd // Percentage conversion
}
