package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vzahanych/weatherpulse/internal/config"
	"github.com/vzahanych/weatherpulse/internal/record"
)

func lookupCmd() *cobra.Command {
	var (
		city, state, country string
		days                 int
	)

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Fetch and print the weather record for one location",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig()
			if !cmd.Flags().Changed("days") {
				days = cfg.Weather.ForecastDays
			}

			agg := newAggregator(cfg, days)

			loc, err := agg.Location(city, state, country)
			if err != nil {
				return err
			}

			rec, err := agg.GetCurrentWeather(cmd.Context(), loc)
			if err != nil {
				log.Error("Lookup failed", zap.String("query", loc.SearchQuery()), zap.Error(err))
				return err
			}

			return printJSON(cmd.OutOrStdout(), record.Annotate(rec))
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "city name")
	cmd.Flags().StringVar(&state, "state", "", "state or province")
	cmd.Flags().StringVar(&country, "country", "", "country (defaults to weather.default_country)")
	cmd.Flags().IntVar(&days, "days", 0, "number of forecast days to include")
	_ = cmd.MarkFlagRequired("city")

	return cmd
}
