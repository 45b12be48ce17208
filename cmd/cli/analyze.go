package main

import (
	"fmt"
	"os"
	"path/filepath"

	"choicelab/adapters/report"
	"choicelab/adapters/tabular"
	"choicelab/app"
	"choicelab/domain/analysis"
	"choicelab/internal/container"

	"github.com/spf13/cobra"
)

type groupFlags struct {
	pathA, pathB     string
	labelA, labelB   string
	sourceA, sourceB string
}

func (g *groupFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&g.pathA, "a", "", "Trial file (.csv or .xlsx) of group A")
	cmd.Flags().StringVar(&g.pathB, "b", "", "Trial file (.csv or .xlsx) of group B")
	cmd.Flags().StringVar(&g.labelA, "a-label", "Anhedonic", "Label of group A")
	cmd.Flags().StringVar(&g.labelB, "b-label", "Non-Anhedonic", "Label of group B")
	cmd.Flags().StringVar(&g.sourceA, "a-source", "original", "Source profile of group A")
	cmd.Flags().StringVar(&g.sourceB, "b-source", "original", "Source profile of group B")
	_ = cmd.MarkFlagRequired("a")
	_ = cmd.MarkFlagRequired("b")
}

func (g *groupFlags) inputs() (app.GroupInput, app.GroupInput) {
	return app.GroupInput{Label: g.labelA, Path: g.pathA, Source: g.sourceA},
		app.GroupInput{Label: g.labelB, Path: g.pathB, Source: g.sourceB}
}

func newWSLSCmd() *cobra.Command {
	var groups groupFlags
	var outDir string

	cmd := &cobra.Command{
		Use:   "wsls",
		Short: "Compare win-stay and lose-shift rates between two groups",
		Long: `Tally win-stay and lose-shift behaviour per participant for two groups and
compare the groups with Welch's t-test.

Writes per-participant tables, the two-row summary, a workbook and a markdown
report to the output directory (OUTPUT_DIR by default).

Example: choicelab wsls --a anhedonic.csv --b non_anhedonic.csv
Example: choicelab wsls --a original.csv --b simulated.csv --b-source simulated --b-label Simulated`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *container.Container) error {
				a, b := groups.inputs()
				rep, err := c.Strategy.Analyze(cmd.Context(), a, b)
				if err != nil {
					return err
				}
				dir := outputDir(outDir, c)
				if err := writeStrategyOutputs(dir, rep); err != nil {
					return err
				}
				md := report.Strategy(rep)
				fmt.Fprint(cmd.OutOrStdout(), md)
				printSignificance(cmd, c.Config.Analysis.Alpha, rep)
				return writeReport(dir, "wsls", md)
			})
		},
	}

	groups.register(cmd)
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default OUTPUT_DIR)")
	return cmd
}

func newRTCmd() *cobra.Command {
	var groups groupFlags
	var outDir string

	cmd := &cobra.Command{
		Use:   "rt",
		Short: "Compare reaction times between two groups",
		Long: `Summarise reaction time by trial number for two groups and compare the
per-participant mean reaction times with Welch's t-test.

Example: choicelab rt --a anhedonic.csv --b non_anhedonic.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *container.Container) error {
				a, b := groups.inputs()
				rep, err := c.ReactionTime.Analyze(cmd.Context(), a, b)
				if err != nil {
					return err
				}
				md := report.ReactionTime(rep)
				fmt.Fprint(cmd.OutOrStdout(), md)
				return writeReport(outputDir(outDir, c), "rt", md)
			})
		},
	}

	groups.register(cmd)
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default OUTPUT_DIR)")
	return cmd
}

func newParamsCmd() *cobra.Command {
	var req app.ParameterRequest
	var outDir string

	cmd := &cobra.Command{
		Use:   "params [file]",
		Short: "Compare fitted model parameters between two groups",
		Long: `Describe each model parameter per group (mean and SEM from the population SD)
and compare the groups with Welch's t-test, Bonferroni-adjusted across parameters.

Example: choicelab params organized_data.csv --param Arew --param Apun --param R --param P`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.File.Path = args[0]
			return withContainer(cmd.Context(), func(c *container.Container) error {
				rep, err := c.Parameters.CompareGroups(cmd.Context(), req)
				if err != nil {
					return err
				}
				md := report.Parameters(rep)
				fmt.Fprint(cmd.OutOrStdout(), md)
				return writeReport(outputDir(outDir, c), "params", md)
			})
		},
	}

	cmd.Flags().StringVar(&req.GroupColumn, "group-column", app.DefaultGroupColumn, "Column holding the group name")
	cmd.Flags().StringVar(&req.GroupA, "group-a", "", "Group A value (default: first group in the file)")
	cmd.Flags().StringVar(&req.GroupB, "group-b", "", "Group B value (default: second group in the file)")
	cmd.Flags().StringSliceVar(&req.Parameters, "param", app.DefaultParameters, "Parameter columns to compare")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default OUTPUT_DIR)")
	return cmd
}

func newCorrelateCmd() *cobra.Command {
	var pairs []string
	var outDir string

	cmd := &cobra.Command{
		Use:   "correlate [file]",
		Short: "Pearson correlations for column pairs, Bonferroni-adjusted",
		Long: `Correlate pairs of numeric columns of one table. Pairs are given as x:y.

Example: choicelab correlate params_vs_questionnaires.csv --pair Arew:DARS --pair R:SHAPS
Example: choicelab correlate 4AB_vs_3AB_model_parameters.csv --pair Arew_4AB:Arew_3AB`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := app.ParsePairs(pairs)
			if err != nil {
				return err
			}
			return withContainer(cmd.Context(), func(c *container.Container) error {
				rep, err := c.Parameters.Correlate(cmd.Context(), app.CorrelationRequest{
					File:  app.FileInput{Path: args[0]},
					Pairs: parsed,
				})
				if err != nil {
					return err
				}
				md := report.Correlation(rep)
				fmt.Fprint(cmd.OutOrStdout(), md)
				return writeReport(outputDir(outDir, c), "correlate", md)
			})
		},
	}

	cmd.Flags().StringSliceVar(&pairs, "pair", nil, "Column pair x:y (repeatable)")
	_ = cmd.MarkFlagRequired("pair")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default OUTPUT_DIR)")
	return cmd
}

func outputDir(flag string, c *container.Container) string {
	if flag != "" {
		return flag
	}
	return c.Config.Analysis.OutputDir
}

func printSignificance(cmd *cobra.Command, alpha float64, rep *analysis.StrategyReport) {
	for _, row := range rep.Comparison {
		verdict := "not significant"
		if row.Test.Significant(alpha) {
			verdict = "significant"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s at alpha=%.2f\n", row.Metric.Label(), verdict, alpha)
	}
}

// writeStrategyOutputs writes the participant tables, the summary table and
// a workbook holding all three
func writeStrategyOutputs(dir string, rep *analysis.StrategyReport) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	files := []struct {
		name  string
		write func(f *os.File) error
	}{
		{"wsls_participants_a.csv", func(f *os.File) error { return tabular.WriteOutcomes(f, rep.GroupA.Outcomes) }},
		{"wsls_participants_b.csv", func(f *os.File) error { return tabular.WriteOutcomes(f, rep.GroupB.Outcomes) }},
		{"wsls_summary.csv", func(f *os.File) error {
			return tabular.WriteSummary(f, rep.GroupA.Label, rep.GroupB.Label, rep.Comparison)
		}},
	}
	for _, file := range files {
		if err := writeFile(filepath.Join(dir, file.name), file.write); err != nil {
			return err
		}
	}

	return tabular.WriteWorkbook(filepath.Join(dir, "wsls.xlsx"),
		tabular.Sheet{Name: "participants_a", Headers: tabular.OutcomeHeaders, Rows: tabular.OutcomeRecords(rep.GroupA.Outcomes)},
		tabular.Sheet{Name: "participants_b", Headers: tabular.OutcomeHeaders, Rows: tabular.OutcomeRecords(rep.GroupB.Outcomes)},
		tabular.Sheet{
			Name:    "summary",
			Headers: tabular.SummaryHeaders(rep.GroupA.Label, rep.GroupB.Label),
			Rows:    tabular.SummaryRecords(rep.Comparison),
		},
	)
}

// writeReport saves the markdown report and its HTML rendering
func writeReport(dir, name, md string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".md"), []byte(md), 0o644); err != nil {
		return fmt.Errorf("write %s report: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".html"), report.HTML(md), 0o644); err != nil {
		return fmt.Errorf("write %s report: %w", name, err)
	}
	return nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
