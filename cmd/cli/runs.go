package main

import (
	"fmt"
	"text/tabwriter"

	"choicelab/adapters/report"
	"choicelab/domain/core"
	"choicelab/internal/container"

	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List and show recorded analysis runs",
		Long: `Inspect runs recorded in the configured database (DATABASE_DRIVER / DATABASE_URL).

Example: choicelab runs list --limit 10
Example: choicelab runs show 01920c4e-...`,
	}
	cmd.AddCommand(newRunsListCmd(), newRunsShowCmd())
	return cmd
}

func newRunsListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *container.Container) error {
				runs, err := c.Recorder.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tKIND\tCREATED\tINPUTS")
				for _, r := range runs {
					labels := ""
					for i, in := range r.Inputs {
						if i > 0 {
							labels += ", "
						}
						labels += in.Label
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Kind, r.CreatedAt.Time().Format("2006-01-02 15:04:05"), labels)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs")
	return cmd
}

func newRunsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [run-id]",
		Short: "Print a recorded run's report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := core.ParseRunID(args[0])
			if err != nil {
				return err
			}
			return withContainer(cmd.Context(), func(c *container.Container) error {
				rec, err := c.Recorder.GetRun(cmd.Context(), id)
				if err != nil {
					return err
				}
				md, err := report.ForRecord(rec)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), md)
				return nil
			})
		},
	}
}
