// Package testutil provides shared test utilities for pipcheck packages.
package testutil

import (
	"bytes"
	"io"
	"os"
	"testing"
)

// redirect points *stream at a pipe that is drained in the background, so
// commands printing a full pip log cannot block on a full pipe buffer.
// The returned function restores the stream and returns what was written.
func redirect(t *testing.T, stream **os.File) func() string {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	old := *stream
	*stream = w

	done := make(chan string, 1)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		_ = r.Close()
		done <- buf.String()
	}()

	return func() string {
		_ = w.Close()
		*stream = old
		return <-done
	}
}

// CaptureStdout runs fn and returns everything it wrote to os.Stdout.
func CaptureStdout(t *testing.T, fn func()) string {
	t.Helper()
	restore := redirect(t, &os.Stdout)
	fn()
	return restore()
}

// CaptureStderr runs fn and returns everything it wrote to os.Stderr.
func CaptureStderr(t *testing.T, fn func()) string {
	t.Helper()
	restore := redirect(t, &os.Stderr)
	fn()
	return restore()
}

// CaptureOutput runs fn and returns stdout and stderr separately.
//
// Commands with a structured --output format print the document on stdout and
// progress on stderr; tests use this to check both halves of that split.
func CaptureOutput(t *testing.T, fn func()) (stdout, stderr string) {
	t.Helper()
	restoreOut := redirect(t, &os.Stdout)
	restoreErr := redirect(t, &os.Stderr)
	fn()
	stderr = restoreErr()
	stdout = restoreOut()
	return stdout, stderr
}
