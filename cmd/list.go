package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ajxudir/pipcheck/pkg/cases"
	"github.com/ajxudir/pipcheck/pkg/cmdexec"
	"github.com/ajxudir/pipcheck/pkg/constants"
	"github.com/ajxudir/pipcheck/pkg/errors"
	"github.com/ajxudir/pipcheck/pkg/output"
)

var (
	listConfigFlag string
	listOutputFlag string
)

var listCmd = &cobra.Command{
	Use:   "list [case...]",
	Short: "List cases and variants",
	Long:  `List the suite's cases with their install and reinstall arguments and every variant's options and expectation.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVarP(&listConfigFlag, "config", "c", "", "Suite file path")
	listCmd.Flags().StringVarP(&listOutputFlag, "output", "o", "", "Output format: json, csv, xml (default: table)")
}

// runList executes the list command.
//
// Parameters:
//   - cmd: Cobra command instance
//   - args: Case names to list; empty lists every case
//
// Returns:
//   - error: Config error for invalid suites or unknown case names
func runList(cmd *cobra.Command, args []string) error {
	if err := output.ValidateFormatFlag(listOutputFlag); err != nil {
		return errors.NewExitError(errors.ExitConfigError, err)
	}
	format := output.ParseFormat(listOutputFlag)

	s, err := loadSuite(listConfigFlag)
	if err != nil {
		return err
	}
	cs, err := selectCases(s, args)
	if err != nil {
		return err
	}

	if output.IsStructuredFormat(format) {
		return output.WriteListResult(os.Stdout, format, buildListResult(cs))
	}

	printCases(cs)
	return nil
}

// buildListResult converts cases to the structured list output.
func buildListResult(cs []cases.Case) *output.ListResult {
	result := &output.ListResult{
		Summary: output.ListSummary{
			TotalCases:    len(cs),
			TotalVariants: cases.VariantCount(cs),
		},
		Cases: make([]output.ListCase, 0, len(cs)),
	}
	for _, c := range cs {
		lc := output.ListCase{Name: c.Name, Install: c.Install, Reinstall: c.Reinstall}
		for i, v := range c.Variants {
			lc.Variants = append(lc.Variants, output.ListVariant{
				Index:           i,
				Options:         v.Options,
				ExpectReinstall: v.ExpectReinstall,
				Comment:         v.Comment,
			})
		}
		result.Cases = append(result.Cases, lc)
	}
	return result
}

// printCases prints one table row per variant. The install and reinstall
// columns are only filled on a case's first row.
func printCases(cs []cases.Case) {
	table := output.NewTable().
		AddColumn("CASE").
		AddColumn("#").
		AddColumnWithMaxWidth("INSTALL", 48).
		AddColumnWithMaxWidth("REINSTALL", 48).
		AddColumn("OPTIONS").
		AddColumn("EXPECT")

	for _, c := range cs {
		for i, v := range c.Variants {
			name, install, reinstall := "", "", ""
			if i == 0 {
				name = c.Name
				install = cmdexec.Join(c.Install...)
				reinstall = cmdexec.Join(c.Reinstall...)
			}
			options := constants.PlaceholderNone
			if len(v.Options) > 0 {
				options = cmdexec.Join(v.Options...)
			}
			table.AddRow(name, strconv.Itoa(i), install, reinstall, options, expectLabel(v.ExpectReinstall))
		}
	}

	table.Fprint(os.Stdout)
	fmt.Printf("\nTotal: %d cases, %d variants\n", len(cs), cases.VariantCount(cs))
}

func expectLabel(reinstall bool) string {
	if reinstall {
		return "reinstall"
	}
	return "keep"
}
