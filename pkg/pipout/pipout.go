// Package pipout interprets the text pip prints during "pip install" to decide
// whether a package was installed, uninstalled or left in place.
package pipout

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

// Observation is what one pip install invocation did to a package.
//
// Fields:
//   - Package: Package name the observation is about
//   - Installed: pip reported "Successfully installed <package>"
//   - Uninstalled: pip reported "Uninstalling <package>"
//   - AlreadySatisfied: the requirement was satisfied without installing
//   - FromVersion: version that was uninstalled, if pip printed it
//   - ToVersion: version that was installed, if pip printed it
type Observation struct {
	Package          string
	Installed        bool
	Uninstalled      bool
	AlreadySatisfied bool
	FromVersion      string
	ToVersion        string
}

// Reinstalled reports whether pip replaced an existing installation:
// it must both uninstall and install the package in the same run.
func (o Observation) Reinstalled() bool {
	return o.Installed && o.Uninstalled
}

// Direction describes how the installed version moved.
type Direction string

const (
	DirectionUnknown   Direction = "unknown"
	DirectionSame      Direction = "same"
	DirectionUpgrade   Direction = "upgrade"
	DirectionDowngrade Direction = "downgrade"
)

// Direction compares FromVersion and ToVersion.
//
// Versions are compared as semantic versions; pip versions outside that
// grammar (e.g. "1.0.post1") compare as unknown unless they are identical.
func (o Observation) Direction() Direction {
	if o.FromVersion == "" || o.ToVersion == "" {
		return DirectionUnknown
	}
	if o.FromVersion == o.ToVersion {
		return DirectionSame
	}
	from, to := canonical(o.FromVersion), canonical(o.ToVersion)
	if from == "" || to == "" {
		return DirectionUnknown
	}
	switch semver.Compare(from, to) {
	case -1:
		return DirectionUpgrade
	case 1:
		return DirectionDowngrade
	default:
		return DirectionSame
	}
}

// Summary renders the flags the way progress lines show them.
func (o Observation) Summary() string {
	s := fmt.Sprintf("already_satisfied=%t uninstalled=%t installed=%t", o.AlreadySatisfied, o.Uninstalled, o.Installed)
	switch {
	case o.FromVersion != "" && o.ToVersion != "":
		s += fmt.Sprintf(" (%s -> %s", o.FromVersion, o.ToVersion)
		if d := o.Direction(); d != DirectionUnknown {
			s += ", " + string(d)
		}
		s += ")"
	case o.ToVersion != "":
		s += fmt.Sprintf(" (%s)", o.ToVersion)
	}
	return s
}

// canonical converts "0.1.2" to "v0.1.2" and returns "" for non-semver input.
func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return semver.Canonical(v)
}

// Parse reads pip install output for the given package.
//
// pip normalizes names in its messages inconsistently ("pip-test-package",
// "pip_test_package", different case), so matching is done on the
// normalized form of each candidate name.
//
// Parameters:
//   - pkg: Package name as written in the suite
//   - output: Combined pip output
//
// Returns:
//   - Observation: The parsed flags and versions
func Parse(pkg, output string) Observation {
	obs := Observation{Package: pkg}
	want := NormalizeName(pkg)

	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)

		if m := uninstallingRe.FindStringSubmatch(line); m != nil && NormalizeName(m[1]) == want {
			obs.Uninstalled = true
			obs.FromVersion = m[2]
			continue
		}
		if m := satisfiedRe.FindStringSubmatch(line); m != nil && NormalizeName(m[1]) == want {
			obs.AlreadySatisfied = true
			continue
		}
		if strings.HasPrefix(line, successPrefix) {
			for _, item := range strings.Fields(strings.TrimPrefix(line, successPrefix)) {
				name, ver := splitDistribution(item)
				switch {
				case NormalizeName(name) == want:
					obs.Installed = true
					obs.ToVersion = ver
				case NormalizeName(item) == want:
					// version-less item whose name contains "-<digit>"
					obs.Installed = true
				}
			}
		}
	}

	// pip does not always print "already satisfied" (e.g. with --upgrade on
	// an up-to-date requirement); anything not installed was left in place.
	if !obs.Installed {
		obs.AlreadySatisfied = true
	}
	return obs
}

const successPrefix = "Successfully installed "

var (
	uninstallingRe = regexp.MustCompile(`^Uninstalling ([A-Za-z0-9._-]+)-([^:\s]+):`)
	satisfiedRe    = regexp.MustCompile(`^Requirement already satisfied: ([A-Za-z0-9._-]+)`)
	separatorRe    = regexp.MustCompile(`[-_.]+`)
)

// splitDistribution splits "pip-test-package-0.1.2" into name and version.
// The version starts after the last dash that is followed by a digit.
func splitDistribution(item string) (name, version string) {
	for i := len(item) - 1; i > 0; i-- {
		if item[i-1] == '-' && item[i] >= '0' && item[i] <= '9' {
			return item[:i-1], item[i:]
		}
	}
	return item, ""
}

// NormalizeName applies the PEP 503 name normalization.
func NormalizeName(name string) string {
	return strings.ToLower(separatorRe.ReplaceAllString(name, "-"))
}
