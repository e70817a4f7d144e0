// Package cmdexec runs external programs (python, pip, git) for pipcheck.
// Commands are executed directly from an argument vector, with environment
// overrides, an optional timeout and process-group cleanup on cancellation.
package cmdexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/ajxudir/pipcheck/pkg/verbose"
	"github.com/ajxudir/pipcheck/pkg/warnings"
)

// Command describes one process invocation.
//
// Fields:
//   - Name: Program to run (resolved through PATH when not absolute)
//   - Args: Arguments, passed verbatim without shell interpretation
//   - Env: Environment overrides layered over the current environment
//   - Dir: Working directory, empty for the current one
//   - TimeoutSeconds: Maximum run time, 0 for none
type Command struct {
	Name           string
	Args           []string
	Env            map[string]string
	Dir            string
	TimeoutSeconds int
}

// String renders the command as a copy-pasteable shell line.
func (c Command) String() string {
	return shellquote.Join(append([]string{c.Name}, c.Args...)...)
}

// Result holds what a finished process produced.
//
// Fields:
//   - Output: Interleaved stdout and stderr
//   - ExitCode: Process exit code, -1 when the process did not start or was killed
//   - Duration: Wall time of the run
type Result struct {
	Output   []byte
	ExitCode int
	Duration time.Duration
}

// RunFunc is the signature for command execution.
//
// A non-nil error is returned for start failures, timeouts, cancellation and
// non-zero exits. The Result is populated as far as possible in every case.
type RunFunc func(ctx context.Context, c Command) (Result, error)

// Run is the command execution function used throughout the application.
// Tests replace it with a fake.
var Run RunFunc = runCommand

// ErrTimeout is wrapped by errors from commands that exceeded their timeout.
var ErrTimeout = errors.New("command timed out")

// runCommand executes c and captures its combined output.
func runCommand(ctx context.Context, c Command) (Result, error) {
	if strings.TrimSpace(c.Name) == "" {
		return Result{ExitCode: -1}, fmt.Errorf("empty command")
	}
	if ctx.Err() != nil {
		return Result{ExitCode: -1}, ctx.Err()
	}

	if c.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	line := c.String()
	verbose.CommandExec(line, c.Dir)

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Env = BuildEnviron(os.Environ(), c.Env)
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}

	// pip and git spawn children; kill the whole group on cancellation.
	setProcGroup(cmd)
	cmd.Cancel = func() error {
		return killProcGroup(cmd)
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	start := time.Now()
	err := cmd.Run()
	result := Result{
		Output:   out.Bytes(),
		ExitCode: exitCode(cmd, err),
		Duration: time.Since(start),
	}
	verbose.CommandResult(line, result.ExitCode, out.String())

	if err == nil {
		return result, nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) && c.TimeoutSeconds > 0 {
		warnings.Warnf("%s after %d seconds: %s\n", ErrTimeout, c.TimeoutSeconds, line)
		return result, fmt.Errorf("%w after %d seconds: %v", ErrTimeout, c.TimeoutSeconds, err)
	}
	if ctx.Err() != nil {
		return result, ctx.Err()
	}

	if tail := lastLine(out.String()); tail != "" {
		return result, fmt.Errorf("%w: %s", err, tail)
	}
	return result, err
}

// BuildEnviron layers overrides on top of base.
//
// Overrides are applied in sorted key order so runs are reproducible. Values
// are used verbatim; suite placeholders are expanded before this point.
// A later entry for the same key wins for exec.Cmd.
//
// Parameters:
//   - base: Inherited environment in KEY=VALUE form
//   - overrides: Variables to set
//
// Returns:
//   - []string: The combined environment
func BuildEnviron(base []string, overrides map[string]string) []string {
	environ := make([]string, 0, len(base)+len(overrides))
	environ = append(environ, base...)

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		environ = append(environ, k+"="+overrides[k])
	}
	return environ
}

// Lookup reports whether a program can be found on PATH.
// It is a variable so preflight tests can fake it.
var Lookup = exec.LookPath

// exitCode extracts the process exit code.
func exitCode(cmd *exec.Cmd, err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if err != nil || cmd.ProcessState == nil {
		return -1
	}
	return cmd.ProcessState.ExitCode()
}

// lastLine returns the last non-empty line of s, which for pip and git is
// usually the error summary.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if trimmed := strings.TrimSpace(lines[i]); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// Join renders an argument vector as a shell line.
func Join(args ...string) string {
	return shellquote.Join(args...)
}

// Split parses a shell-style command line into arguments.
//
// Used for settings such as the python interpreter, which may be given as
// "py -3" or "/usr/bin/env python3".
func Split(line string) ([]string, error) {
	args, err := shellquote.Split(line)
	if err != nil {
		return nil, fmt.Errorf("invalid command line %q: %w", line, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("empty command line")
	}
	return args, nil
}
