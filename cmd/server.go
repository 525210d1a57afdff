package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vzahanych/weatherpulse/internal/config"
	"github.com/vzahanych/weatherpulse/internal/server"
)

func serverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the weather API server",
		Long:  `Start the HTTP API serving current weather records and forecasts, with caching, background prefetch and observability.`,
		RunE:  runServer,
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	ctx := cmd.Context()

	log.Info("Starting weather API server",
		zap.Bool("telemetry_enabled", cfg.Telemetry.Enabled),
		zap.Int("server_port", cfg.Server.Port),
		zap.Int("prefetch_locations", len(cfg.Weather.Prefetch)))

	agg := newAggregator(cfg, cfg.Weather.ForecastDays)
	if err := agg.Start(ctx); err != nil {
		return err
	}

	srv := server.NewServer(cfg, agg, log.Logger, tele)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	var runErr error
	select {
	case runErr = <-errChan:
		if runErr != nil {
			log.Error("Server error", zap.Error(runErr))
		}
	case <-ctx.Done():
		log.Info("Shutting down server")

		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during server shutdown", zap.Error(err))
			runErr = err
		}
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := agg.Stop(stopCtx); err != nil {
		log.Warn("Aggregator workers did not stop in time", zap.Error(err))
	}

	if runErr == nil {
		log.Info("Server shutdown complete")
	}
	return runErr
}
