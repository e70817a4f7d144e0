// Package constants provides centralized string constants used throughout the application.
// This eliminates magic strings and provides a single source of truth for status values.
package constants

// Result status constants for a single case variant.
const (
	// StatusPass indicates the observed reinstall matched the expectation.
	StatusPass = "pass"

	// StatusFail indicates an assertion mismatch.
	StatusFail = "fail"

	// StatusError indicates an execution error: provisioning, install or
	// reinstall did not complete, so nothing could be compared.
	StatusError = "error"
)

// Outcome comments printed after each variant.
const (
	OutcomeReinstalled      = "ok: reinstalled, as expected"
	OutcomeNotReinstalled   = "ok: did not reinstall, as expected"
	OutcomeUnexpected       = "error: unexpected reinstall"
	OutcomeMissingReinstall = "error: did not reinstall"
)

// Placeholder values for display when data is not available.
const (
	// PlaceholderNA is used when a value is not available.
	PlaceholderNA = "#N/A"

	// PlaceholderNone is shown for an empty option list.
	PlaceholderNone = "(none)"
)

// DefaultReportFile is the report written by 'run' when no path is given.
const DefaultReportFile = "report.html"

// Icon constants for status display.
const (
	// IconCheckmark indicates a passed variant.
	IconCheckmark = "✓"

	// IconCross indicates a failed variant.
	IconCross = "✗"

	// IconError indicates an errored variant.
	IconError = "❌"

	// IconWarn is the warning prefix for messages.
	IconWarn = "⚠️"

	// IconLightbulb indicates a hint or suggestion.
	IconLightbulb = "💡"
)

// StatusIcon returns the icon used for a result status.
func StatusIcon(status string) string {
	switch status {
	case StatusPass:
		return IconCheckmark
	case StatusFail:
		return IconCross
	default:
		return IconError
	}
}
