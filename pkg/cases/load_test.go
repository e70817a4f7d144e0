package cases

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalSuite = `package: pip-test-package
cases:
  - name: upgrade
    install: ["pip-test-package==0.1.1"]
    reinstall: ["pip-test-package"]
    variants:
      - expect_reinstall: false
      - options: ["--upgrade"]
        expect_reinstall: true
`

// TestLoadSuite tests the behavior of LoadSuite with various scenarios.
//
// It verifies:
//   - The embedded suite is used when no file exists
//   - A local .pipcheck.yml takes precedence over the embedded suite
//   - An explicit path is loaded and {here} resolves to its directory
//   - A missing file is an error
func TestLoadSuite(t *testing.T) {
	t.Run("embedded default", func(t *testing.T) {
		dir := t.TempDir()
		s, err := LoadSuite("", dir)
		require.NoError(t, err)
		assert.Equal(t, "pip-test-package", s.Package)
		assert.Empty(t, s.Source())
		assert.Equal(t, filepath.Join(dir, "wheelhouse"), s.WheelhouseDir())
	})

	t.Run("local suite file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultSuiteFile), []byte(minimalSuite), 0o644))

		s, err := LoadSuite("", dir)
		require.NoError(t, err)
		require.Len(t, s.Cases, 1)
		assert.Equal(t, "upgrade", s.Cases[0].Name)
		assert.Equal(t, filepath.Join(dir, DefaultSuiteFile), s.Source())
	})

	t.Run("explicit path", func(t *testing.T) {
		dir := t.TempDir()
		sub := filepath.Join(dir, "suites")
		require.NoError(t, os.MkdirAll(sub, 0o755))
		path := filepath.Join(sub, "mine.yml")
		require.NoError(t, os.WriteFile(path, []byte(minimalSuite), 0o644))

		s, err := LoadSuite(path, dir)
		require.NoError(t, err)
		assert.Equal(t, sub, s.Dir())
		assert.Equal(t, filepath.Join(sub, "cache"), s.CacheDir())
	})

	t.Run("missing file", func(t *testing.T) {
		s, err := LoadSuite(filepath.Join(t.TempDir(), "nope.yml"), "")
		assert.Error(t, err)
		assert.Nil(t, s)
		assert.Contains(t, err.Error(), "failed to read suite file")
	})
}

func TestReadSuiteFile_TooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.yml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("#", 64)), 0o644))

	_, err := readSuiteFile(path, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "suite file too large")
}

// TestLoadSuiteData tests decoding errors and defaults.
//
// It verifies:
//   - Empty documents are rejected
//   - Unknown fields are rejected
//   - Validation failures surface as *ValidationResult
//   - Defaults are applied for python, bootstrap and paths
func TestLoadSuiteData(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := LoadSuiteData([]byte(""), t.TempDir())
		require.Error(t, err)
		assert.Equal(t, "suite is empty", err.Error())
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := LoadSuiteData([]byte(minimalSuite+"colour: blue\n"), t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid YAML")
		assert.Contains(t, err.Error(), "colour")
	})

	t.Run("validation error", func(t *testing.T) {
		_, err := LoadSuiteData([]byte("package: x\ncases: []\n"), t.TempDir())
		require.Error(t, err)
		var vr *ValidationResult
		require.True(t, errors.As(err, &vr))
		assert.Contains(t, err.Error(), "at least one case is required")
	})

	t.Run("defaults", func(t *testing.T) {
		s, err := LoadSuiteData([]byte(minimalSuite), t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, "python3", s.Python)
		assert.Equal(t, []string{"wheel"}, s.Bootstrap)
		assert.Equal(t, "{here}/src", s.Paths.Src)
		assert.Nil(t, s.Prepare)
	})

	t.Run("explicit empty bootstrap is kept", func(t *testing.T) {
		s, err := LoadSuiteData([]byte("bootstrap: []\n"+minimalSuite), t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, s.Bootstrap)
		assert.NotNil(t, s.Bootstrap)
	})
}

// TestDefaultSuite checks the embedded suite against the known pip behaviour
// it encodes.
func TestDefaultSuite(t *testing.T) {
	s, err := LoadSuiteData([]byte(GetDefaultSuite()), t.TempDir())
	require.NoError(t, err)

	assert.Len(t, s.Cases, 20)
	assert.Equal(t, []string{"pip==23.0.1"}, s.Pip)
	assert.Equal(t, "1", s.Env["PIP_NO_INDEX"])
	require.NotNil(t, s.Prepare)
	require.NotNil(t, s.Prepare.Source)
	assert.Equal(t, "pip-test-package", s.Prepare.Source.Dir)
	assert.Len(t, s.Prepare.CacheRefs, 3)
	assert.Len(t, s.Prepare.WheelhouseRefs, 2)

	selected, err := s.Select([]string{"local-wheelhouse-version-before-no-version-after"})
	require.NoError(t, err)
	require.Len(t, selected, 1)
	c := selected[0]
	assert.Equal(t, []string{"pip-test-package==0.1.1"}, c.Install)
	assert.Equal(t, []string{"pip-test-package"}, c.Reinstall)
	require.Len(t, c.Variants, 2)
	assert.Empty(t, c.Variants[0].Options)
	assert.False(t, c.Variants[0].ExpectReinstall)
	assert.Equal(t, []string{"--upgrade"}, c.Variants[1].Options)
	assert.True(t, c.Variants[1].ExpectReinstall)

	for _, c := range s.Cases {
		assert.NotEmpty(t, c.Variants, c.Name)
	}
}

func TestRepoDirName(t *testing.T) {
	assert.Equal(t, "pip-test-package", repoDirName("https://github.com/pypa/pip-test-package"))
	assert.Equal(t, "pip-test-package", repoDirName("git@github.com:pypa/pip-test-package.git"))
}

func TestCaseReinstallArgs(t *testing.T) {
	c := Case{Reinstall: []string{"-e", "src/pkg"}}
	assert.Equal(t, []string{"--upgrade", "--no-deps", "-e", "src/pkg"},
		c.ReinstallArgs(Variant{Options: []string{"--upgrade", "--no-deps"}}))
	assert.Equal(t, []string{"-e", "src/pkg"}, c.ReinstallArgs(Variant{}))
}

func TestVariantCount(t *testing.T) {
	assert.Equal(t, 0, VariantCount(nil))
	assert.Equal(t, 3, VariantCount([]Case{
		{Variants: make([]Variant, 1)},
		{Variants: make([]Variant, 2)},
	}))
}

// TestExampleSuites loads every suite shipped under examples/.
func TestExampleSuites(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "examples", "*", DefaultSuiteFile))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(filepath.Dir(path)), func(t *testing.T) {
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			result := ValidateSuiteData(data, filepath.Dir(path))
			assert.False(t, result.HasErrors(), result.Error())
			assert.Empty(t, result.Warnings)

			s, err := LoadSuite(path, "")
			require.NoError(t, err)
			assert.NotEmpty(t, s.Cases)
			for _, arg := range s.ExpandAll(s.Pip) {
				assert.NotContains(t, arg, "{")
			}
		})
	}
}
