package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"graphbench/internal/compare"
	"graphbench/internal/results"
	"graphbench/internal/sweep"
)

// ErrRegression is returned by compare when a point regressed past the threshold.
var ErrRegression = errors.New("performance regression detected")

// addCompareCommand adds the compare command
func (app *App) addCompareCommand(rootCmd *cobra.Command) {
	var (
		threshold  float64
		showDiff   bool
		failOnSlow bool
	)
	compareCmd := &cobra.Command{
		Use:   "compare <baseline> <current>",
		Short: "Compare a sweep table against a baseline",
		Long: `Compare two sweep tables point by point and report relative changes of the
mean duration. Each argument is a CSV file or the name of a recorded sweep,
in which case its latest recording is used.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseline, err := app.resolveTable(args[0])
			if err != nil {
				return err
			}
			current, err := app.resolveTable(args[1])
			if err != nil {
				return err
			}

			rep, err := compare.Compare(baseline, current, threshold)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, rep.String())

			if showDiff {
				var a, b bytes.Buffer
				if err := results.WriteTable(&a, baseline); err != nil {
					return err
				}
				if err := results.WriteTable(&b, current); err != nil {
					return err
				}
				if diff := compare.TextDiff(a.String(), b.String()); diff != "" {
					fmt.Fprintf(out, "\n%s", diff)
				}
			}

			if regressions := rep.Regressions(); len(regressions) > 0 {
				app.Logger.Warn("Regressions found", "count", len(regressions), "threshold", threshold)
				if failOnSlow {
					return fmt.Errorf("%w: %d points slower by more than %.0f%%", ErrRegression, len(regressions), threshold*100)
				}
			}
			return nil
		},
	}
	compareCmd.Flags().Float64Var(&threshold, "threshold", compare.DefaultThreshold, "Relative slowdown that counts as a regression")
	compareCmd.Flags().BoolVar(&showDiff, "diff", false, "Also print a text diff of the two CSV renderings")
	compareCmd.Flags().BoolVar(&failOnSlow, "fail-on-regression", true, "Exit non-zero when a regression is found")

	rootCmd.AddCommand(compareCmd)
}

// resolveTable reads a CSV file, or the latest recording of a sweep name.
func (app *App) resolveTable(arg string) (*sweep.SweepTable, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		return results.ReadTableFile(arg)
	}
	path, err := app.recorder().Latest(arg)
	if err != nil {
		return nil, fmt.Errorf("%s is neither a CSV file nor a recorded sweep: %w", arg, err)
	}
	t, err := results.ReadTableFile(path)
	if err != nil {
		return nil, err
	}
	t.Name = arg
	return t, nil
}
