package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vzahanych/weatherpulse/internal/aggregator"
	"github.com/vzahanych/weatherpulse/internal/config"
	"github.com/vzahanych/weatherpulse/internal/record"
	"github.com/vzahanych/weatherpulse/internal/service"
	"github.com/vzahanych/weatherpulse/pkg/logger"
	"github.com/vzahanych/weatherpulse/pkg/telemetry"
)

var (
	log  *logger.Logger
	tele *telemetry.Telemetry
)

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "weather",
		Short:        "Weather extraction service",
		Long:         `Fetches search result pages for a location and extracts current conditions and a synthesized forecast from their text.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeServices(cmd.Context(), configPath)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return shutdownServices(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file (default: ./config.yaml)")

	cmd.AddCommand(serverCmd())
	cmd.AddCommand(lookupCmd())
	cmd.AddCommand(extractCmd())

	return cmd
}

func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			if log != nil {
				log.Info("Received shutdown signal", zap.String("signal", sig.String()))
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	return rootCmd().ExecuteContext(ctx)
}

func initializeServices(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Having config in atomic allows changing it during runtime
	config.SetConfig(cfg)

	log, err = logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	tele, err = telemetry.New(ctx, cfg.Telemetry, cfg.Version)
	if err != nil {
		log.Warn("Failed to initialize telemetry", zap.Error(err))
	}

	return nil
}

func shutdownServices(ctx context.Context) error {
	if err := tele.Shutdown(context.WithoutCancel(ctx)); err != nil {
		log.Warn("Failed to shutdown telemetry", zap.Error(err))
	}
	_ = log.Sync()
	return nil
}

// newAggregator wires the live fetcher to a builder producing forecastDays
// record forecast entries.
func newAggregator(cfg *config.Config, forecastDays int) *aggregator.Aggregator {
	fetcher := service.NewBingServiceWithConfig(cfg.Scraper, log.Logger, tele)
	builder := record.NewBuilder(nil, record.Options{
		Source:       cfg.Weather.Source,
		ForecastDays: forecastDays,
	})
	return aggregator.NewAggregator(&cfg.Weather, fetcher, builder, log.Logger, tele)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
