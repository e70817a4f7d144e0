// Package cmd implements the command-line interface for pipcheck.
// It provides commands for running the reinstall suite, listing its cases,
// preparing local fixtures and inspecting suite files.
package cmd

import (
	stderrors "errors"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ajxudir/pipcheck/pkg/errors"
	"github.com/ajxudir/pipcheck/pkg/verbose"
)

var exitFunc = os.Exit
var verboseFlag bool
var versionFlag bool
var skipBuildChecksFlag bool

var rootCmd = &cobra.Command{
	Use:   "pipcheck",
	Short: "Check when pip decides to reinstall a package",
	Long: `Install a package into a clean virtual environment, reinstall it with
different requirements and options, and report whether pip reinstalled it
as each case expects.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verboseFlag {
			verbose.Enable()
		}
		if !skipBuildChecksFlag {
			if warnings := GetBuildWarnings(); warnings != "" {
				fmt.Fprint(os.Stderr, warnings)
				fmt.Fprintln(os.Stderr)
			}
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if versionFlag {
			printVersionOutput()
			return
		}
		_ = cmd.Help()
	},
}

// Execute runs the root command and exits with appropriate code:
//   - 0: Every variant passed
//   - 1: Some variants failed or errored
//   - 2: The run could not start (preflight, template environment, lock)
//   - 3: Suite file or flag error
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		code := errors.GetExitCode(err)

		var partialErr *errors.PartialSuccessError
		if stderrors.As(err, &partialErr) {
			code = errors.ExitPartialFailure
			verbose.Infof("Exit code %d: %d passed, %d failed, %d errored", code, partialErr.Passed, partialErr.Failed, partialErr.Errored)
		} else {
			verbose.Infof("Exit code %d: %v", code, err)
		}

		exitFunc(code)
	}
}

// ExecuteTest runs the root command for testing (returns error instead of exiting).
//
// Returns:
//   - error: Command execution error, or nil on success
func ExecuteTest() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Enable verbose debug output")
	rootCmd.PersistentFlags().BoolVar(&skipBuildChecksFlag, "skip-build-checks", false, "Skip build validation warnings (dev build, arch mismatch)")

	rootCmd.Flags().BoolVarP(&versionFlag, "version", "v", false, "Show version information")

	// info → suite → workflow (list → prepare → run)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(prepareCmd)
	rootCmd.AddCommand(runCmd)
}

// printVersionOutput prints version, build, and runtime information to stdout.
func printVersionOutput() {
	info := collectVersionInfo()
	fmt.Printf("  Build:   %s\n", info.Build)
	if info.Runtime != info.Build {
		fmt.Printf("  Runtime: %s\n", info.Runtime)
	}
	fmt.Printf("  Go:      %s\n", runtime.Version())
	if info.Date != "" {
		fmt.Printf("  Date:    %s\n", info.Date)
	}
	fmt.Println()
	if info.Commit != "" {
		fmt.Printf("  Git:     %s\n", info.Commit)
	}
	fmt.Printf("  Version: %s\n", info.Version)
}
