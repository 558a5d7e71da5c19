package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"graphbench/internal/logger"
	"graphbench/internal/plan"
	"graphbench/internal/results"
)

// addPlanCommand adds the run-plan command
func (app *App) addPlanCommand(rootCmd *cobra.Command) {
	var (
		validateOnly bool
		noRecord     bool
	)
	planCmd := &cobra.Command{
		Use:   "run-plan <plan.yaml>",
		Short: "Run the sweeps and charts of a plan file",
		Long: `Run every sweep of a YAML plan in order, record the resulting tables and
write every chart of the plan to the image directory. The plan's runner, when
set, takes the place of the configured runner.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := plan.Load(args[0])
			if err != nil {
				return err
			}
			if validateOnly {
				fmt.Fprintf(cmd.OutOrStdout(), "Plan %s is valid: %d sweeps, %d charts\n", args[0], len(p.Sweeps), len(p.Charts))
				return nil
			}
			if p.Runner != "" && !cmd.Flags().Changed("runner") {
				app.Config.Runner = p.Runner
			}

			engine, path, err := app.prepareSweep()
			if err != nil {
				return err
			}
			var recorder plan.TableRecorder
			if !noRecord {
				recorder = app.recorder()
			}
			executor := plan.NewExecutor(engine, recorder, app.renderer(), plan.ExecutorConfig{
				ImageDir: app.Config.ImageDir(),
				Format:   app.Config.Format,
				Runner:   path,
				Logger:   logger.Component(app.Logger, "plan"),
			})

			res, err := executor.Execute(cmd.Context(), p)
			if err != nil {
				return err
			}
			app.printSummary(cmd.OutOrStdout(), res.Tables...)
			for _, chart := range res.Charts {
				fmt.Fprintf(cmd.OutOrStdout(), "chart: %s\n", chart)
			}
			return nil
		},
	}
	planCmd.Flags().BoolVar(&validateOnly, "validate", false, "Only load and validate the plan")
	planCmd.Flags().BoolVar(&noRecord, "no-record", false, "Do not record the sweeps under the data directory")

	rootCmd.AddCommand(planCmd)
}

var _ plan.TableRecorder = (*results.Recorder)(nil)
