package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"graphbench/internal/report"
	"graphbench/internal/results"
	"graphbench/internal/sweep"
)

// addPlotCommands adds the chart commands
func (app *App) addPlotCommands(rootCmd *cobra.Command) {
	var (
		title  string
		xField string
		yField string
		output string
	)
	plotCmd := &cobra.Command{
		Use:   "plot [name=]file.csv...",
		Short: "Chart recorded sweep tables",
		Long: `Overlay one or more recorded CSV tables in a single chart. Each argument is
a CSV file, optionally prefixed with the series name (name=file.csv); the
file name is used otherwise. Without --output the chart is shown interactively.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			series, err := loadSeries(args)
			if err != nil {
				return err
			}
			x := xField
			if x == "" {
				x = string(series[0].Table.Variable)
			}
			return app.render(cmd.Context(), report.ChartRequest{
				Title:      title,
				Series:     series,
				XField:     x,
				YField:     yField,
				OutputPath: app.outputPath(output),
			})
		},
	}
	plotCmd.Flags().StringVar(&title, "title", "", "Chart title")
	plotCmd.Flags().StringVarP(&xField, "x", "x", "", "X axis field (n|p|index) [default: variable of the first table]")
	plotCmd.Flags().StringVarP(&yField, "y", "y", sweep.FieldDuration, "Y axis field")
	plotCmd.Flags().StringVarP(&output, "output", "o", "", "Output image; a bare file name is placed in the image directory")

	var (
		curves      []string
		n0          float64
		nMax        float64
		granularity int
		cxOutput    string
	)
	complexityCmd := &cobra.Command{
		Use:   "plot-complexity",
		Short: "Chart reference complexity curves",
		Long: fmt.Sprintf(`Plot reference complexity curves over [n0, n-max] for comparison with
measured sweeps. Known curves: %s.`, strings.Join(report.ReferenceCurveNames(), ", ")),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := report.FunctionChartRequest{
				Title:       "Reference complexity",
				N0:          n0,
				NMax:        nMax,
				Granularity: granularity,
				XLabel:      "n",
				YLabel:      "f(n)",
				OutputPath:  app.outputPath(cxOutput),
			}
			for _, name := range curves {
				c, err := report.ReferenceCurve(name)
				if err != nil {
					return err
				}
				req.Curves = append(req.Curves, c)
			}
			return app.renderer().RenderFunctions(cmd.Context(), req)
		},
	}
	complexityCmd.Flags().StringSliceVar(&curves, "curves", []string{"n", "nlogn", "n^2"}, "Curves to draw")
	complexityCmd.Flags().Float64Var(&n0, "n0", 1, "First n")
	complexityCmd.Flags().Float64Var(&nMax, "n-max", 20, "Last n")
	complexityCmd.Flags().IntVar(&granularity, "granularity", 10, "Samples per unit of n")
	complexityCmd.Flags().StringVarP(&cxOutput, "output", "o", "", "Output image; a bare file name is placed in the image directory")

	rootCmd.AddCommand(plotCmd, complexityCmd)
}

// outputPath places bare file names in the image directory. An empty output
// means interactive display.
func (app *App) outputPath(output string) string {
	if output == "" || filepath.IsAbs(output) || strings.ContainsRune(output, filepath.Separator) {
		return output
	}
	return filepath.Join(app.Config.ImageDir(), output)
}

// loadSeries reads "name=path" or "path" arguments in order.
func loadSeries(args []string) ([]report.Series, error) {
	series := make([]report.Series, 0, len(args))
	for _, arg := range args {
		name, path, found := strings.Cut(arg, "=")
		if !found {
			path = arg
			name = ""
		}
		t, err := results.ReadTableFile(path)
		if err != nil {
			return nil, err
		}
		if name == "" {
			name = t.Name
		}
		t.Name = name
		series = append(series, report.Series{Name: name, Table: t})
	}
	return series, nil
}
