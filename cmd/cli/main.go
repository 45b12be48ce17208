package main

import (
	"context"
	"fmt"
	"os"

	"choicelab/internal/config"
	"choicelab/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "choicelab",
		Short:         "Win-stay / lose-shift and group comparison analyses for choice task data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newWSLSCmd(),
		newRTCmd(),
		newParamsCmd(),
		newCorrelateCmd(),
		newSimulateCmd(),
		newInspectCmd(),
		newRunsCmd(),
	)
	return rootCmd
}

// withContainer loads configuration, builds the container and closes it after fn
func withContainer(ctx context.Context, fn func(c *container.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c, err := container.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}
