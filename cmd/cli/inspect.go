package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"choicelab/adapters/tabular"
	"choicelab/internal"
	"choicelab/internal/config"
	"choicelab/internal/profiling"

	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Profile a trial file and check its loss encoding",
		Long: `Report participant and trial counts, the gain and loss values present and the
reaction time distribution of a trial file. Exits with an error when the loss
values do not match the source profile's declared encoding.

Example: choicelab inspect simulated.csv --source simulated`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := config.LoadSources(os.Getenv("SOURCES_FILE"))
			if err != nil {
				return err
			}
			src, err := sources.Lookup(source)
			if err != nil {
				return err
			}

			table, err := tabular.NewReader(internal.NewDefaultLogger()).ReadFile(args[0])
			if err != nil {
				return err
			}
			p, err := profiling.ProfileTrials(table, src)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "source:        %s (loss encoded as %d)\n", src.Name, src.LossEncoding.Sentinel())
			fmt.Fprintf(out, "rows:          %d\n", p.Rows)
			fmt.Fprintf(out, "participants:  %d\n", p.Participants)
			fmt.Fprintf(out, "trials/person: min %.0f, median %.1f, max %.0f\n", p.TrialCounts.Min, p.TrialCounts.Median, p.TrialCounts.Max)
			fmt.Fprintf(out, "gain values:   %s\n", valueCounts(p.GainValues))
			fmt.Fprintf(out, "loss values:   %s\n", valueCounts(p.LossValues))
			if p.RT != nil {
				fmt.Fprintf(out, "rt:            n %d, missing %d, median %.1f, IQR %.1f-%.1f, outliers %d\n",
					p.RT.N, p.RT.Missing, p.RT.Median, p.RT.Q25, p.RT.Q75, p.RT.Outliers)
			}

			if !p.EncodingMatches(src.LossEncoding) {
				return fmt.Errorf("loss values %s do not match source %q (loss encoded as %d)",
					valueCounts(p.LossValues), src.Name, src.LossEncoding.Sentinel())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "original", "Source profile to read the file with")
	return cmd
}

func valueCounts(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, m[k])
	}
	return strings.Join(parts, " ")
}
