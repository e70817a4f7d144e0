package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ajxudir/pipcheck/pkg/console"
	"github.com/ajxudir/pipcheck/pkg/output"
	"github.com/ajxudir/pipcheck/pkg/prepare"
)

var prepareConfigFlag string

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Build the local cache, wheelhouse and source checkout",
	Long: `Build the fixtures the suite's cases install from: a pip cache holding
wheels built from VCS references, a wheelhouse of release wheels and sdists,
and a source checkout. Fixtures that already exist are left alone; delete a
directory to rebuild it.`,
	SilenceUsage: true,
	RunE:         runPrepare,
}

func init() {
	prepareCmd.Flags().StringVarP(&prepareConfigFlag, "config", "c", "", "Suite file path")
}

// runPrepare executes the prepare command.
//
// Returns:
//   - error: Config error for invalid suites, ExitFailure when preflight or a
//     fixture command fails
func runPrepare(cmd *cobra.Command, args []string) error {
	s, err := loadSuite(prepareConfigFlag)
	if err != nil {
		return err
	}

	lock, err := lockWorkspace(s)
	if err != nil {
		return err
	}
	defer releaseLock(lock)

	ctx, stop := signalContext()
	defer stop()

	if err := runPreflight(ctx, s); err != nil {
		return err
	}

	results, err := prepareFixtures(ctx, s, console.Discard())
	if len(results) > 0 {
		printPrepareResults(results)
	} else if err == nil {
		fmt.Println("Nothing to prepare: the suite has no prepare section")
	}
	return err
}

// printPrepareResults prints one row per fixture.
func printPrepareResults(results []prepare.StepResult) {
	table := output.NewTable().
		AddColumn("FIXTURE").
		AddColumn("STATUS").
		AddColumn("COMMANDS").
		AddColumn("PATH")

	for _, r := range results {
		status := "built"
		if r.Skipped {
			status = "skipped: " + r.Reason
		}
		table.AddRow(r.Fixture, status, strconv.Itoa(r.Commands), r.Path)
	}
	table.Fprint(os.Stdout)
}
