package cmd

import (
	"encoding/xml"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ajxudir/pipcheck/pkg/constants"
	"github.com/ajxudir/pipcheck/pkg/errors"
	"github.com/ajxudir/pipcheck/pkg/output"
)

// Version information set at build time via ldflags.
// Example: go build -ldflags="-X github.com/ajxudir/pipcheck/cmd.Version=1.0.0"
var (
	// Version is the semantic version of the build.
	Version = "dev"
	// BuildTime is the timestamp of the build.
	BuildTime = ""
	// GitCommit is the git commit hash of the build.
	GitCommit = ""
	// BuildOS is the target OS the binary was built for.
	BuildOS = ""
	// BuildArch is the target architecture the binary was built for.
	BuildArch = ""
)

var versionOutputFlag string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and build information",
	Long:  `Show version, build date, and system information.`,
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().StringVarP(&versionOutputFlag, "output", "o", "", "Output format: json, xml (default: text)")
}

// versionInfo is the structured form of the version output.
type versionInfo struct {
	XMLName xml.Name `json:"-" xml:"version"`
	Version string   `json:"version" xml:"version"`
	Build   string   `json:"build" xml:"build"`
	Runtime string   `json:"runtime" xml:"runtime"`
	Go      string   `json:"go" xml:"go"`
	Date    string   `json:"date,omitempty" xml:"date,omitempty"`
	Commit  string   `json:"commit,omitempty" xml:"commit,omitempty"`
}

func collectVersionInfo() versionInfo {
	buildOS, buildArch := getBuildTarget()
	return versionInfo{
		Version: Version,
		Build:   buildOS + "/" + buildArch,
		Runtime: runtime.GOOS + "/" + runtime.GOARCH,
		Go:      runtime.Version(),
		Date:    BuildTime,
		Commit:  GitCommit,
	}
}

// runVersion prints the build target, runtime platform (if different), Go
// version, build date, git commit and version.
func runVersion(cmd *cobra.Command, args []string) error {
	if err := output.ValidateFormatFlag(versionOutputFlag); err != nil {
		return errors.NewExitError(errors.ExitConfigError, err)
	}

	formatter := output.NewFormatter(output.ParseFormat(versionOutputFlag), os.Stdout)
	switch formatter.Format() {
	case output.FormatJSON:
		return formatter.WriteJSON(collectVersionInfo())
	case output.FormatXML:
		return formatter.WriteXML(collectVersionInfo())
	case output.FormatCSV:
		info := collectVersionInfo()
		return formatter.WriteCSV(
			[]string{"VERSION", "BUILD", "RUNTIME", "GO", "DATE", "COMMIT"},
			[][]string{{info.Version, info.Build, info.Runtime, info.Go, info.Date, info.Commit}},
		)
	}

	printVersionOutput()
	return nil
}

// GetVersion returns the current version string, "dev" for development builds.
func GetVersion() string {
	return Version
}

// getBuildTarget returns the OS and architecture the binary was built for,
// falling back to runtime values when ldflags were not set.
func getBuildTarget() (string, string) {
	buildOS := BuildOS
	buildArch := BuildArch
	if buildOS == "" {
		buildOS = runtime.GOOS
	}
	if buildArch == "" {
		buildArch = runtime.GOARCH
	}
	return buildOS, buildArch
}

// HasArchMismatch returns true if the binary was built for a different
// OS or architecture than what it's running on.
func HasArchMismatch() bool {
	if BuildOS == "" && BuildArch == "" {
		return false
	}
	buildOS, buildArch := getBuildTarget()
	return buildOS != runtime.GOOS || buildArch != runtime.GOARCH
}

// GetArchMismatchWarning returns a warning message if there's an architecture
// mismatch, or an empty string if everything matches.
func GetArchMismatchWarning() string {
	if !HasArchMismatch() {
		return ""
	}
	buildOS, buildArch := getBuildTarget()
	return fmt.Sprintf("%s  Architecture mismatch: binary built for %s/%s but running on %s/%s\n"+
		"   This may cause unexpected behavior. Please download the correct binary.\n",
		constants.IconWarn, buildOS, buildArch, runtime.GOOS, runtime.GOARCH)
}

// IsDevBuild returns true if this is a development build (no release tag).
func IsDevBuild() bool {
	return Version == "dev"
}

// IsPrerelease returns true for release candidates built from the stage
// branch (_stage-YYYYMMDD-rcN).
func IsPrerelease() bool {
	return strings.HasPrefix(Version, "_stage-")
}

// GetDevBuildWarning returns a warning for dev builds, or an empty string.
func GetDevBuildWarning() string {
	if !IsDevBuild() {
		return ""
	}
	return constants.IconWarn + "  Development build: this is an unreleased version without a version tag.\n" +
		"   Results may differ from a released pipcheck.\n"
}

// GetPrereleaseWarning returns a warning for stage builds, or an empty string.
func GetPrereleaseWarning() string {
	if !IsPrerelease() {
		return ""
	}
	return constants.IconWarn + "  Staging build: " + Version + "\n" +
		"   This is a release candidate from the stage branch.\n"
}

// GetBuildWarnings returns all build-related warnings combined.
//
// Returns:
//   - string: Combined warning messages; empty string if no warnings
func GetBuildWarnings() string {
	return GetArchMismatchWarning() + GetDevBuildWarning() + GetPrereleaseWarning()
}
