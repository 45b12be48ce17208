package main

import (
	"fmt"
	"os"

	"choicelab/adapters/tabular"
	"choicelab/internal/config"
	"choicelab/internal/testkit"

	"github.com/spf13/cobra"
)

func newSimulateCmd() *cobra.Command {
	cfg := testkit.DefaultTaskConfig()
	var source, out string

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate synthetic participants playing the choice task",
		Long: `Generate deterministic synthetic trial data in a source profile's layout.
The loss encoding follows the profile.

Example: choicelab simulate --participants 30 --arms 3 --seed 7 --out sim.csv
Example: choicelab simulate --source simulated --out sim_simulated.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := config.LoadSources(os.Getenv("SOURCES_FILE"))
			if err != nil {
				return err
			}
			src, err := sources.Lookup(source)
			if err != nil {
				return err
			}
			cfg.Encoding = src.LossEncoding

			gen, err := testkit.NewTaskGenerator(cfg)
			if err != nil {
				return err
			}
			seqs := gen.Generate()

			w := cmd.OutOrStdout()
			if out != "" {
				return writeFile(out, func(f *os.File) error { return tabular.WriteTrials(f, src, seqs) })
			}
			if err := tabular.WriteTrials(w, src, seqs); err != nil {
				return fmt.Errorf("write trials: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&cfg.Participants, "participants", cfg.Participants, "Number of participants")
	cmd.Flags().IntVar(&cfg.Trials, "trials", cfg.Trials, "Trials per participant")
	cmd.Flags().IntVar(&cfg.Arms, "arms", cfg.Arms, "Number of arms (3 or 4 in the study)")
	cmd.Flags().Float64Var(&cfg.StayAfterWin, "stay-after-win", cfg.StayAfterWin, "Probability of repeating a choice after a win")
	cmd.Flags().Float64Var(&cfg.ShiftAfterLoss, "shift-after-loss", cfg.ShiftAfterLoss, "Probability of switching after a loss")
	cmd.Flags().StringVar(&cfg.IDPrefix, "id-prefix", cfg.IDPrefix, "Participant ID prefix")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed for deterministic generation")
	cmd.Flags().StringVar(&source, "source", "original", "Source profile whose layout and loss encoding to use")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output CSV file (default stdout)")
	return cmd
}
