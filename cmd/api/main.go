package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/user/aura-service/internal/app"
	"github.com/user/aura-service/internal/delivery/http/handler"
	"github.com/user/aura-service/internal/delivery/http/router"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:          "aura-api",
		Short:        "Serves cached auras and queues pages for analysis.",
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
	log := a.Logger

	if err := a.EnsureSchema(ctx); err != nil {
		return err
	}

	server := &http.Server{
		Addr:         ":" + a.Config.ServerPort,
		Handler:      router.New(handler.NewHandler(a.Coordinator, log), log),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting server", zap.String("port", a.Config.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on port %s: %w", a.Config.ServerPort, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		// Let queued background enqueues reach Redis before connections close.
		a.Coordinator.Wait()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		return err
	}
	log.Info("Server stopped")
	return nil
}
