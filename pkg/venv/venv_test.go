package venv

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajxudir/pipcheck/pkg/cmdexec"
	"github.com/ajxudir/pipcheck/pkg/errors"
)

// fakeRun records commands and creates the venv directory on "-m venv".
type fakeRun struct {
	calls  []cmdexec.Command
	failOn string
}

func (f *fakeRun) run(_ context.Context, c cmdexec.Command) (cmdexec.Result, error) {
	f.calls = append(f.calls, c)
	line := c.String()
	if f.failOn != "" && strings.Contains(line, f.failOn) {
		return cmdexec.Result{ExitCode: 1, Output: []byte("boom")}, assert.AnError
	}
	if len(c.Args) >= 2 && c.Args[len(c.Args)-2] == "venv" {
		dir := c.Args[len(c.Args)-1]
		bin := filepath.Dir(PythonPath(dir))
		if err := os.MkdirAll(bin, 0o755); err != nil {
			return cmdexec.Result{ExitCode: -1}, err
		}
		if err := os.WriteFile(PythonPath(dir), []byte("#!python"), 0o755); err != nil {
			return cmdexec.Result{ExitCode: -1}, err
		}
		if err := os.WriteFile(filepath.Join(dir, "pyvenv.cfg"), []byte("home = /usr/bin\n"), 0o644); err != nil {
			return cmdexec.Result{ExitCode: -1}, err
		}
	}
	return cmdexec.Result{}, nil
}

func useFakeRun(t *testing.T, f *fakeRun) {
	t.Helper()
	original := cmdexec.Run
	cmdexec.Run = f.run
	t.Cleanup(func() { cmdexec.Run = original })
}

// TestTemplateLifecycle tests Build, Provision, Teardown and Close.
//
// It verifies:
//   - Build runs venv creation, bootstrap and the pip pin in order
//   - Provision restores a clean copy at the same path every time
//   - Files written by a variant do not leak into the next one
//   - Close removes every working directory
func TestTemplateLifecycle(t *testing.T) {
	f := &fakeRun{}
	useFakeRun(t, f)

	tmpl, err := New(Options{
		Python:    "python3 -I",
		Bootstrap: []string{"wheel"},
		Pip:       []string{"pip==23.0.1"},
		BaseDir:   t.TempDir(),
	})
	require.NoError(t, err)

	require.NoError(t, tmpl.Build(context.Background()))
	require.Len(t, f.calls, 3)
	assert.Equal(t, "python3", f.calls[0].Name)
	assert.Equal(t, []string{"-I", "-m", "venv", tmpl.Dir()}, f.calls[0].Args)
	assert.Equal(t, PythonPath(tmpl.Dir()), f.calls[1].Name)
	assert.Equal(t, []string{"-m", "pip", "install", "wheel"}, f.calls[1].Args)
	assert.Equal(t, []string{"-m", "pip", "install", "--upgrade", "pip==23.0.1"}, f.calls[2].Args)

	env, err := tmpl.Provision(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tmpl.Dir(), env.Dir)
	assert.FileExists(t, env.Python())

	leftover := filepath.Join(env.Dir, "installed.txt")
	require.NoError(t, os.WriteFile(leftover, []byte("x"), 0o644))
	require.NoError(t, tmpl.Teardown(env))
	assert.NoDirExists(t, env.Dir)

	env2, err := tmpl.Provision(context.Background())
	require.NoError(t, err)
	assert.Equal(t, env.Dir, env2.Dir)
	assert.NoFileExists(t, leftover)
	assert.FileExists(t, filepath.Join(env2.Dir, "pyvenv.cfg"))

	root := filepath.Dir(tmpl.Dir())
	require.NoError(t, tmpl.Close())
	assert.NoDirExists(t, root)
}

func TestBuild_SkipsEmptySteps(t *testing.T) {
	f := &fakeRun{}
	useFakeRun(t, f)

	tmpl, err := New(Options{BaseDir: t.TempDir(), Bootstrap: []string{}})
	require.NoError(t, err)
	defer func() { _ = tmpl.Close() }()

	require.NoError(t, tmpl.Build(context.Background()))
	require.Len(t, f.calls, 1)
	assert.Equal(t, "python3", f.calls[0].Name)
}

func TestBuild_StepFailure(t *testing.T) {
	f := &fakeRun{failOn: "pip==0.0"}
	useFakeRun(t, f)

	tmpl, err := New(Options{BaseDir: t.TempDir(), Pip: []string{"pip==0.0"}})
	require.NoError(t, err)
	defer func() { _ = tmpl.Close() }()

	err = tmpl.Build(context.Background())
	require.Error(t, err)
	se, ok := errors.IsStepError(err)
	require.True(t, ok)
	assert.Equal(t, errors.StepProvision, se.Step)
	assert.Equal(t, 1, se.ExitCode)
	assert.Contains(t, se.Command, "pip==0.0")
}

func TestBuild_InvalidPython(t *testing.T) {
	tmpl, err := New(Options{BaseDir: t.TempDir(), Python: `python "unterminated`})
	require.NoError(t, err)
	defer func() { _ = tmpl.Close() }()

	err = tmpl.Build(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid command line")
}

func TestProvision_NotBuilt(t *testing.T) {
	tmpl, err := New(Options{BaseDir: t.TempDir()})
	require.NoError(t, err)
	defer func() { _ = tmpl.Close() }()

	_, err = tmpl.Provision(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has not been built")
}

func TestProvision_Cancelled(t *testing.T) {
	f := &fakeRun{}
	useFakeRun(t, f)

	tmpl, err := New(Options{BaseDir: t.TempDir()})
	require.NoError(t, err)
	defer func() { _ = tmpl.Close() }()
	require.NoError(t, tmpl.Build(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = tmpl.Provision(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTeardown_Nil(t *testing.T) {
	tmpl := &Template{}
	assert.NoError(t, tmpl.Teardown(nil))
}

func TestEnvPip(t *testing.T) {
	env := &Env{Dir: "/tmp/v"}
	c := env.Pip("install", "--upgrade", "pip-test-package")
	assert.Equal(t, PythonPath("/tmp/v"), c.Name)
	assert.Equal(t, []string{"-m", "pip", "install", "--upgrade", "pip-test-package"}, c.Args)
}

// TestCopyTree tests directory copies on the real filesystem.
//
// It verifies:
//   - Nested files keep their content and permissions
//   - Symlinks are recreated as links
func TestCopyTree(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	src := filepath.Join(t.TempDir(), "src")
	dst := filepath.Join(t.TempDir(), "dst")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "bin", "python3.11"), []byte("elf"), 0o755))
	require.NoError(t, os.Symlink("python3.11", filepath.Join(src, "bin", "python")))

	require.NoError(t, copyTree(afero.NewOsFs(), src, dst))

	data, err := os.ReadFile(filepath.Join(dst, "bin", "python3.11"))
	require.NoError(t, err)
	assert.Equal(t, "elf", string(data))

	info, err := os.Stat(filepath.Join(dst, "bin", "python3.11"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	link, err := os.Readlink(filepath.Join(dst, "bin", "python"))
	require.NoError(t, err)
	assert.Equal(t, "python3.11", link)
}

func TestCopyTree_MemFs(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll("/a/lib/site-packages", 0o755))
	require.NoError(t, afero.WriteFile(mem, "/a/lib/site-packages/x.py", []byte("print()"), 0o644))

	require.NoError(t, copyTree(mem, "/a", "/b"))

	data, err := afero.ReadFile(mem, "/b/lib/site-packages/x.py")
	require.NoError(t, err)
	assert.Equal(t, "print()", string(data))
}

func TestCopyTree_MissingSource(t *testing.T) {
	err := copyTree(afero.NewOsFs(), filepath.Join(t.TempDir(), "missing"), t.TempDir())
	assert.Error(t, err)
}
