// Package verbose provides debug logging with documentation references.
package verbose

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

var (
	mu         sync.RWMutex
	enabled    bool
	suppressed int
	writer     io.Writer = os.Stderr
)

// Enable turns on verbose logging and allows debug messages to be printed.
func Enable() {
	mu.Lock()
	defer mu.Unlock()
	enabled = true
}

// Disable turns off verbose logging and prevents debug messages from being printed.
func Disable() {
	mu.Lock()
	defer mu.Unlock()
	enabled = false
}

// IsEnabled returns whether verbose logging is currently enabled.
//
// Returns:
//   - bool: true if verbose logging is enabled, false otherwise
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// Suppress temporarily silences verbose output, e.g. while a noisy helper
// command runs. Calls nest; each Suppress must be paired with Unsuppress.
func Suppress() {
	mu.Lock()
	defer mu.Unlock()
	suppressed++
}

// Unsuppress undoes one Suppress call.
func Unsuppress() {
	mu.Lock()
	defer mu.Unlock()
	if suppressed > 0 {
		suppressed--
	}
}

// SetWriter sets the output writer for verbose messages.
//
// Parameters:
//   - w: The io.Writer to use for output; if nil, the writer remains unchanged
func SetWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w != nil {
		writer = w
	}
}

// getWriter returns the current writer with proper locking for internal use.
func getWriter() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return writer
}

// isActive reports whether messages should be written right now.
func isActive() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled && suppressed == 0
}

// Printf prints a formatted verbose message if enabled.
//
// Parameters:
//   - format: Printf-style format string
//   - args: Variadic arguments to format into the string
func Printf(format string, args ...any) {
	if isActive() {
		_, _ = fmt.Fprintf(getWriter(), "[DEBUG] "+strings.TrimRight(format, "\n")+"\n", args...)
	}
}

// Info prints an informational verbose message if enabled.
func Info(msg string) {
	if isActive() {
		_, _ = fmt.Fprintf(getWriter(), "[DEBUG] %s\n", msg)
	}
}

// Infof prints a formatted informational verbose message if enabled.
func Infof(format string, args ...any) {
	Printf(format, args...)
}

// Debugf is an alias of Printf kept for call sites that log fine-grained detail.
func Debugf(format string, args ...any) {
	Printf(format, args...)
}

// DocRef represents a documentation reference for a specific topic.
//
// Fields:
//   - Topic: A human-readable name for the documentation topic
//   - DocPath: The relative path to the documentation file or section
//   - Hint: A brief description of what the documentation covers
type DocRef struct {
	Topic   string
	DocPath string
	Hint    string
}

var docRefs = map[string]DocRef{
	"suite": {
		Topic:   "Suite files",
		DocPath: "docs/suite.md",
		Hint:    "Cases, variants, env and placeholders are described here",
	},
	"prepare": {
		Topic:   "Fixtures",
		DocPath: "docs/suite.md#prepare",
		Hint:    "Run 'pipcheck prepare' to build the cache, wheelhouse and source checkout",
	},
	"venv": {
		Topic:   "Environments",
		DocPath: "docs/suite.md#python",
		Hint:    "Set 'python' in the suite to pick the interpreter used for virtualenvs",
	},
	"cli": {
		Topic:   "CLI Reference",
		DocPath: "docs/cli.md",
		Hint:    "See all available commands and flags",
	},
}

// WithDocRef prints a verbose message followed by a documentation reference
// when the topic is known.
//
// Parameters:
//   - topic: The documentation topic key (e.g., "suite", "prepare", "venv")
//   - message: The main message to print
func WithDocRef(topic, message string) {
	if !isActive() {
		return
	}
	w := getWriter()
	_, _ = fmt.Fprintf(w, "[DEBUG] %s\n", message)
	if ref, ok := docRefs[strings.ToLower(topic)]; ok {
		_, _ = fmt.Fprintf(w, "        See %s: %s\n", ref.Topic, ref.DocPath)
		_, _ = fmt.Fprintf(w, "        %s\n", ref.Hint)
	}
}

// CommandExec logs command execution details if enabled.
//
// Parameters:
//   - cmd: The command line being executed
//   - workDir: The working directory path for command execution
func CommandExec(cmd, workDir string) {
	if !isActive() {
		return
	}
	w := getWriter()
	_, _ = fmt.Fprintf(w, "[DEBUG] Executing: %s\n", cmd)
	if workDir != "" {
		_, _ = fmt.Fprintf(w, "        Working dir: %s\n", workDir)
	}
}

// CommandResult logs command execution results if enabled.
//
// Long command lines are truncated to 60 characters and at most five lines
// of output are shown.
//
// Parameters:
//   - cmd: The command line that was executed
//   - exitCode: The exit code returned by the command (0 for success)
//   - output: The combined command output
func CommandResult(cmd string, exitCode int, output string) {
	if !isActive() {
		return
	}
	w := getWriter()
	if exitCode == 0 {
		_, _ = fmt.Fprintf(w, "[DEBUG] Command succeeded: %s\n", truncate(cmd, 60))
	} else {
		_, _ = fmt.Fprintf(w, "[DEBUG] Command failed (exit %d): %s\n", exitCode, truncate(cmd, 60))
	}
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) > 5 {
		for _, line := range lines[:3] {
			_, _ = fmt.Fprintf(w, "        | %s\n", truncate(line, 100))
		}
		_, _ = fmt.Fprintf(w, "        | ... (%d more lines)\n", len(lines)-3)
		return
	}
	for _, line := range lines {
		_, _ = fmt.Fprintf(w, "        | %s\n", truncate(line, 100))
	}
}

// SuiteLoaded logs which suite file was loaded if enabled.
//
// Parameters:
//   - path: The suite file path, or empty for the embedded suite
//   - cases: Number of cases in the suite
func SuiteLoaded(path string, cases int) {
	if !isActive() {
		return
	}
	if path == "" {
		path = "(embedded default)"
	}
	_, _ = fmt.Fprintf(getWriter(), "[DEBUG] Suite loaded: %s (%d cases)\n", path, cases)
}

// CaseFiltered logs when a case is skipped by the name filter.
func CaseFiltered(name string) {
	if isActive() {
		_, _ = fmt.Fprintf(getWriter(), "[DEBUG] Case '%s' filtered: not in requested names\n", name)
	}
}

// truncate shortens a string to the specified maximum length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
