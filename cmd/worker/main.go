package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/user/aura-service/internal/app"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:          "aura-worker",
		Short:        "Consumes the analysis queue: fetches, scores and stores pages.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfgFile)
		},
	}
	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (default: environment and ./.env)")
	return cmd
}

func run(ctx context.Context, cfgFile string) error {
	a, err := app.New(ctx, cfgFile)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer a.Close()

	if err := a.EnsureSchema(ctx); err != nil {
		return err
	}
	return a.Crawler.Run(ctx)
}
