// Package preflight checks that the programs a suite needs are available
// before any environment is built.
package preflight

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/ajxudir/pipcheck/pkg/cases"
	"github.com/ajxudir/pipcheck/pkg/cmdexec"
	"github.com/ajxudir/pipcheck/pkg/verbose"
)

// MinPythonVersion is the oldest interpreter able to create the environments.
const MinPythonVersion = ">= 3.7"

// CommandResolutionHints maps command names to installation instructions.
var CommandResolutionHints = map[string]string{
	"python":  "Install Python: https://python.org/downloads/",
	"python3": "Install Python: https://python.org/downloads/",
	"py":      "Install the Python launcher for Windows: https://docs.python.org/3/using/windows.html",
	"git":     "Install Git: https://git-scm.com/downloads",
}

// ValidationError represents a missing or unsuitable command with resolution hints.
//
// Fields:
//   - Command: The name of the command
//   - Hint: Installation instructions (empty if no hint available)
//   - Reason: Why an existing command is unsuitable; empty when it is missing
type ValidationError struct {
	Command string
	Hint    string
	Reason  string
}

// Error returns a formatted error message with resolution instructions.
func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Command, e.Reason)
	}
	if e.Hint != "" {
		return fmt.Sprintf("command not found: %s\n  Resolution: %s", e.Command, e.Hint)
	}
	return fmt.Sprintf("command not found: %s\n  Resolution: Ensure '%s' is installed and available in your PATH,\n             or set 'python' in the suite file.", e.Command, e.Command)
}

// ValidateResult holds the result of pre-flight validation.
//
// Fields:
//   - Errors: Missing or unsuitable commands
//   - Warnings: Checks that could not be completed
type ValidateResult struct {
	Errors   []ValidationError
	Warnings []string
}

// HasErrors returns true if there are validation errors.
func (r *ValidateResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// ErrorMessage returns a formatted error message for all validation errors,
// or an empty string if there are none.
func (r *ValidateResult) ErrorMessage() string {
	if len(r.Errors) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Pre-flight validation failed:\n")
	for _, err := range r.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// ValidateSuite checks the commands a suite depends on.
//
// It performs the following operations:
//   - Resolves the suite's python command and checks it against MinPythonVersion
//   - Checks git when a source checkout is configured and not yet present
//
// Parameters:
//   - ctx: Bounds the version probe
//   - s: Loaded suite
//
// Returns:
//   - *ValidateResult: Result containing any validation errors; never nil
func ValidateSuite(ctx context.Context, s *cases.Suite) *ValidateResult {
	result := &ValidateResult{}

	python, err := cmdexec.Split(s.Python)
	if err != nil {
		result.Errors = append(result.Errors, ValidationError{Command: s.Python, Reason: err.Error()})
		return result
	}

	verbose.Debugf("Preflight: checking interpreter %q", s.Python)
	if verr := validateCommand(python[0]); verr != nil {
		result.Errors = append(result.Errors, *verr)
	} else {
		checkPythonVersion(ctx, python, result)
	}

	if needsGit(s) {
		verbose.Debugf("Preflight: source checkout configured, checking git")
		if verr := validateCommand("git"); verr != nil {
			result.Errors = append(result.Errors, *verr)
		}
	}

	verbose.Debugf("Preflight: complete - %d errors, %d warnings", len(result.Errors), len(result.Warnings))
	return result
}

// needsGit reports whether prepare would have to clone the source checkout.
func needsGit(s *cases.Suite) bool {
	if s.Prepare == nil || s.Prepare.Source == nil {
		return false
	}
	checkout := filepath.Join(s.SrcDir(), s.Prepare.Source.Dir)
	info, err := os.Stat(checkout)
	return err != nil || !info.IsDir()
}

var pythonVersionRe = regexp.MustCompile(`Python (\d+\.\d+(?:\.\d+)?)`)

// checkPythonVersion runs "<python> --version" and compares it with MinPythonVersion.
func checkPythonVersion(ctx context.Context, python []string, result *ValidateResult) {
	c := cmdexec.Command{
		Name:           python[0],
		Args:           append(append([]string{}, python[1:]...), "--version"),
		TimeoutSeconds: 30,
	}
	name := cmdexec.Join(python...)

	verbose.Suppress()
	res, err := cmdexec.Run(ctx, c)
	verbose.Unsuppress()
	if err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Command: name,
			Hint:    GetResolutionHint(python[0]),
			Reason:  fmt.Sprintf("failed to run --version: %v", err),
		})
		return
	}

	m := pythonVersionRe.FindStringSubmatch(string(res.Output))
	if m == nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("could not determine the version of %s from %q", name, strings.TrimSpace(string(res.Output))))
		return
	}

	ok, err := SatisfiesMinimum(m[1])
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
		return
	}
	if !ok {
		result.Errors = append(result.Errors, ValidationError{
			Command: name,
			Hint:    GetResolutionHint(python[0]),
			Reason:  fmt.Sprintf("Python %s is too old (need %s)", m[1], MinPythonVersion),
		})
		return
	}
	verbose.Debugf("Preflight: %s is Python %s", name, m[1])
}

// SatisfiesMinimum reports whether a Python version satisfies MinPythonVersion.
func SatisfiesMinimum(v string) (bool, error) {
	parsed, err := version.NewVersion(v)
	if err != nil {
		return false, fmt.Errorf("invalid python version %q: %w", v, err)
	}
	constraint, err := version.NewConstraint(MinPythonVersion)
	if err != nil {
		return false, err
	}
	return constraint.Check(parsed), nil
}

// validateCommand checks if a command exists in PATH or as a shell alias.
//
// Returns:
//   - *ValidationError: Error with resolution hint if command not found; nil if command exists or cmd is empty
func validateCommand(cmd string) *ValidationError {
	if cmd == "" {
		return nil
	}

	if _, err := cmdexec.Lookup(cmd); err == nil {
		verbose.Debugf("Preflight: command %q found in PATH", cmd)
		return nil
	}

	// Absolute or relative paths are not subject to shell lookup.
	if !strings.ContainsRune(cmd, filepath.Separator) && commandExistsInShell(cmd) {
		verbose.Debugf("Preflight: command %q found as shell alias/function", cmd)
		return nil
	}

	hint := GetResolutionHint(cmd)
	if hint != "" {
		verbose.Printf("Preflight ERROR: command %q not found - hint: %s", cmd, hint)
	} else {
		verbose.Printf("Preflight ERROR: command %q not found (no resolution hint available)", cmd)
	}
	return &ValidationError{Command: cmd, Hint: hint}
}

// commandExistsInShell checks if a command exists through the user's shell,
// which also finds aliases and functions exec.LookPath cannot see.
var commandExistsInShell = func(cmd string) bool {
	shell, args := getShellCommandCheck(cmd)
	return exec.Command(shell, args...).Run() == nil
}

// GetResolutionHint returns the installation hint for a command, if available.
func GetResolutionHint(cmd string) string {
	return CommandResolutionHints[filepath.Base(cmd)]
}
