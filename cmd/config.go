package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ajxudir/pipcheck/pkg/cases"
	"github.com/ajxudir/pipcheck/pkg/constants"
	"github.com/ajxudir/pipcheck/pkg/errors"
	"github.com/ajxudir/pipcheck/pkg/verbose"
)

var (
	configShowDefaultsFlag bool
	configInitFlag         bool
	configValidateFlag     bool
	configPathFlag         string
)

var (
	writeFileFunc = os.WriteFile
	readFileFunc  = os.ReadFile
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show, create or validate suite files",
	Long:  `Show the built-in suite, create a .pipcheck.yml from it, or validate a suite file.`,
	RunE:  runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configShowDefaultsFlag, "show-defaults", false, "Show the built-in suite")
	configCmd.Flags().BoolVar(&configInitFlag, "init", false, "Create .pipcheck.yml from the built-in suite")
	configCmd.Flags().BoolVar(&configValidateFlag, "validate", false, "Validate a suite file (rejects unknown fields)")
	configCmd.Flags().StringVarP(&configPathFlag, "config", "c", "", "Suite file path to validate")
}

// runConfig executes the config command.
//
// Behavior depends on flags:
//   - --init: Creates .pipcheck.yml in the working directory
//   - --validate: Validates the suite file
//   - --show-defaults: Prints the built-in suite
//
// Returns:
//   - error: ExitConfigError on validation failure, or a file error
func runConfig(cmd *cobra.Command, args []string) error {
	if configInitFlag {
		return createSuiteTemplate()
	}

	if configValidateFlag {
		return validateSuiteFile()
	}

	if configShowDefaultsFlag {
		fmt.Println("# Built-in suite")
		fmt.Println()
		fmt.Print(cases.GetDefaultSuite())
		return nil
	}

	return cmd.Help()
}

// validateSuiteFile validates --config, or .pipcheck.yml in the working
// directory, and prints every error and warning.
func validateSuiteFile() error {
	path := configPathFlag
	if path == "" {
		workDir, err := getwdFunc()
		if err != nil {
			return fmt.Errorf("failed to resolve working directory: %w", err)
		}
		path = filepath.Join(workDir, cases.DefaultSuiteFile)
	}

	data, err := readFileFunc(path)
	if err != nil {
		return errors.NewExitError(errors.ExitConfigError, fmt.Errorf("failed to read suite file '%s': %w", path, err))
	}

	result := cases.ValidateSuiteData(data, filepath.Dir(path))

	if result.HasErrors() {
		fmt.Printf("%s Suite validation failed for: %s\n\n", constants.IconError, path)
		for _, e := range result.Errors {
			fmt.Printf("  ERROR: %s\n", e.Error())
		}
		if len(result.Warnings) > 0 {
			fmt.Println()
			for _, w := range result.Warnings {
				fmt.Printf("  WARNING: %s\n", w)
			}
		}
		fmt.Println()
		fmt.Printf("%s See docs/suite.md for valid suite options\n", constants.IconLightbulb)
		verbose.Infof("Exit code %d (config error): suite validation failed for %s", errors.ExitConfigError, path)
		return errors.NewExitError(errors.ExitConfigError, fmt.Errorf("suite validation failed"))
	}

	if len(result.Warnings) > 0 {
		fmt.Printf("%s Suite valid with warnings: %s\n\n", constants.IconWarn, path)
		for _, w := range result.Warnings {
			fmt.Printf("  WARNING: %s\n", w)
		}
		fmt.Println()
		return nil
	}

	fmt.Printf("%s Suite valid: %s\n", constants.IconCheckmark, path)
	return nil
}

// createSuiteTemplate writes the built-in suite to .pipcheck.yml in the
// working directory. An existing file is never overwritten.
func createSuiteTemplate() error {
	workDir, err := getwdFunc()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}
	path := filepath.Join(workDir, cases.DefaultSuiteFile)

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", cases.DefaultSuiteFile)
	}

	if err := writeFileFunc(path, []byte(cases.GetDefaultSuite()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", cases.DefaultSuiteFile, err)
	}

	fmt.Printf("Created %s\n", path)
	return nil
}
