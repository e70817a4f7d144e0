package testutil

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureStdout(t *testing.T) {
	out := CaptureStdout(t, func() {
		fmt.Print("hello")
	})
	assert.Equal(t, "hello", out)
}

func TestCaptureStderr(t *testing.T) {
	out := CaptureStderr(t, func() {
		fmt.Fprint(os.Stderr, "oops")
	})
	assert.Equal(t, "oops", out)
}

func TestCaptureOutput(t *testing.T) {
	stdout, stderr := CaptureOutput(t, func() {
		fmt.Print("out")
		fmt.Fprint(os.Stderr, "err")
	})
	assert.Equal(t, "out", stdout)
	assert.Equal(t, "err", stderr)
}

// TestCaptureStdout_LargeOutput checks that output beyond a pipe buffer does
// not block the writer.
func TestCaptureStdout_LargeOutput(t *testing.T) {
	line := strings.Repeat("x", 1023) + "\n"
	out := CaptureStdout(t, func() {
		for i := 0; i < 256; i++ {
			fmt.Print(line)
		}
	})
	assert.Len(t, out, 256*1024)
}

func TestCaptureOutput_RestoresStreams(t *testing.T) {
	oldOut, oldErr := os.Stdout, os.Stderr
	_, _ = CaptureOutput(t, func() {})
	assert.Same(t, oldOut, os.Stdout)
	assert.Same(t, oldErr, os.Stderr)
}

// TestSuiteBuilder tests that built suites load with defaults applied.
func TestSuiteBuilder(t *testing.T) {
	dir := t.TempDir()
	s := NewSuite("pip-test-package").
		WithPip("pip==23.0.1").
		WithEnv("PIP_NO_INDEX", "1").
		UpgradeCase().
		WithCase("force", []string{"pip-test-package==0.1.1"}, []string{"pip-test-package==0.1.1"},
			Expect(true, "--force-reinstall")).
		Build(t, dir)

	assert.Equal(t, "pip-test-package", s.Package)
	assert.Equal(t, "python3", s.Python)
	assert.Equal(t, []string{"pip==23.0.1"}, s.Pip)
	assert.Equal(t, "1", s.Env["PIP_NO_INDEX"])
	assert.Equal(t, dir, s.Dir())
	require.Len(t, s.Cases, 2)
	assert.Equal(t, []string{"pip-test-package==0.1.1"}, s.Cases[0].Install)
	assert.Equal(t, []string{"--upgrade"}, s.Cases[0].Variants[1].Options)
	assert.True(t, s.Cases[1].Variants[0].ExpectReinstall)
}

func TestSuiteBuilder_YAML(t *testing.T) {
	doc := NewSuite("p").UpgradeCase().YAML(t)
	assert.True(t, strings.HasPrefix(doc, "package: p\n"))
	assert.Contains(t, doc, "expect_reinstall: true")
}
