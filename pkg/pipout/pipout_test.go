package pipout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const upgradeOutput = `Looking in links: /work/wheelhouse
Processing /work/wheelhouse/pip_test_package-0.1.2-py3-none-any.whl
Installing collected packages: pip-test-package
  Attempting uninstall: pip-test-package
    Found existing installation: pip-test-package 0.1.1
    Uninstalling pip-test-package-0.1.1:
      Successfully uninstalled pip-test-package-0.1.1
Successfully installed pip-test-package-0.1.2
`

const satisfiedOutput = `Looking in links: /work/wheelhouse
Requirement already satisfied: pip-test-package in /tmp/venv/lib/python3.11/site-packages (0.1.1)
`

const freshInstallOutput = `Looking in links: /work/wheelhouse
Processing /work/wheelhouse/pip_test_package-0.1.1-py3-none-any.whl
Installing collected packages: pip-test-package
Successfully installed pip-test-package-0.1.1
`

// TestParse tests the behavior of Parse across typical pip outputs.
//
// It verifies:
//   - Upgrades are seen as uninstall + install with both versions
//   - "Requirement already satisfied" is detected
//   - A fresh install is not a reinstall
func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		output      string
		installed   bool
		uninstalled bool
		satisfied   bool
		reinstalled bool
		from, to    string
	}{
		{"upgrade", upgradeOutput, true, true, false, true, "0.1.1", "0.1.2"},
		{"already satisfied", satisfiedOutput, false, false, true, false, "", ""},
		{"fresh install", freshInstallOutput, true, false, false, false, "", "0.1.1"},
		{"silent", "", false, false, true, false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := Parse("pip-test-package", tt.output)
			assert.Equal(t, tt.installed, obs.Installed, "installed")
			assert.Equal(t, tt.uninstalled, obs.Uninstalled, "uninstalled")
			assert.Equal(t, tt.satisfied, obs.AlreadySatisfied, "already satisfied")
			assert.Equal(t, tt.reinstalled, obs.Reinstalled(), "reinstalled")
			assert.Equal(t, tt.from, obs.FromVersion)
			assert.Equal(t, tt.to, obs.ToVersion)
		})
	}
}

// TestParse_OtherPackagesIgnored checks that only the configured package counts.
func TestParse_OtherPackagesIgnored(t *testing.T) {
	out := `Uninstalling wheel-0.40.0:
  Successfully uninstalled wheel-0.40.0
Successfully installed setuptools-68.0.0 wheel-0.41.0
`
	obs := Parse("pip-test-package", out)
	assert.False(t, obs.Installed)
	assert.False(t, obs.Uninstalled)
	assert.False(t, obs.Reinstalled())
}

// TestParse_NameNormalization checks underscores and case differences.
func TestParse_NameNormalization(t *testing.T) {
	out := `Uninstalling Pip_Test_Package-0.1.1:
Successfully installed pip_test_package-0.1.1
`
	obs := Parse("pip-test-package", out)
	assert.True(t, obs.Reinstalled())
	assert.Equal(t, DirectionSame, obs.Direction())
}

func TestParse_MultiplePackagesOnSuccessLine(t *testing.T) {
	obs := Parse("pip-test-package", "Successfully installed coverage-7.2.0 pip-test-package-0.1.2 wheel-0.41.0\n")
	assert.True(t, obs.Installed)
	assert.Equal(t, "0.1.2", obs.ToVersion)
}

// TestParse_VersionlessDigitName covers a success item without a version whose
// name itself contains "-<digit>".
func TestParse_VersionlessDigitName(t *testing.T) {
	obs := Parse("foo-2bar", "Successfully installed foo-2bar\n")
	assert.True(t, obs.Installed)
	assert.False(t, obs.AlreadySatisfied)
	assert.Empty(t, obs.ToVersion)
}

func TestDirection(t *testing.T) {
	tests := []struct {
		from, to string
		expected Direction
	}{
		{"0.1.1", "0.1.2", DirectionUpgrade},
		{"0.1.2", "0.1.1", DirectionDowngrade},
		{"0.1.1", "0.1.1", DirectionSame},
		{"1.0", "1.0.0", DirectionSame},
		{"", "0.1.2", DirectionUnknown},
		{"1.0.post1", "1.1", DirectionUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			obs := Observation{FromVersion: tt.from, ToVersion: tt.to}
			assert.Equal(t, tt.expected, obs.Direction())
		})
	}
}

func TestSummary(t *testing.T) {
	obs := Parse("pip-test-package", upgradeOutput)
	assert.Equal(t, "already_satisfied=false uninstalled=true installed=true (0.1.1 -> 0.1.2, upgrade)", obs.Summary())

	fresh := Parse("pip-test-package", freshInstallOutput)
	assert.Equal(t, "already_satisfied=false uninstalled=false installed=true (0.1.1)", fresh.Summary())
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "pip-test-package", NormalizeName("Pip_Test.Package"))
	assert.Equal(t, "a-b", NormalizeName("a__-b"))
}

func TestSplitDistribution(t *testing.T) {
	name, ver := splitDistribution("pip-test-package-0.1.2")
	assert.Equal(t, "pip-test-package", name)
	assert.Equal(t, "0.1.2", ver)

	name, ver = splitDistribution("noversion")
	assert.Equal(t, "noversion", name)
	assert.Empty(t, ver)
}
