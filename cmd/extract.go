package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vzahanych/weatherpulse/internal/config"
	"github.com/vzahanych/weatherpulse/internal/record"
	"github.com/vzahanych/weatherpulse/internal/weather"
)

// extractCmd runs the engine over a saved page without any network access.
func extractCmd() *cobra.Command {
	var (
		file, city, state, country string
		days                       int
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract a weather record from a saved HTML page",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig()
			if !cmd.Flags().Changed("days") {
				days = cfg.Weather.ForecastDays
			}

			page, err := readPage(cmd, file)
			if err != nil {
				return err
			}

			loc, err := weather.NewLocation(city, state, country, cfg.Weather.DefaultCountry)
			if err != nil {
				return err
			}

			builder := record.NewBuilder(nil, record.Options{
				Source:       cfg.Weather.Source,
				ForecastDays: days,
			})

			rec, err := builder.Build(page, loc)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), record.Annotate(rec))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", `HTML page to read ("-" for stdin)`)
	cmd.Flags().StringVar(&city, "city", "", "city name")
	cmd.Flags().StringVar(&state, "state", "", "state or province")
	cmd.Flags().StringVar(&country, "country", "", "country (defaults to weather.default_country)")
	cmd.Flags().IntVar(&days, "days", 0, "number of forecast days to include")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("city")

	return cmd
}

func readPage(cmd *cobra.Command, file string) (string, error) {
	var r io.Reader
	if file == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(file)
		if err != nil {
			return "", fmt.Errorf("open page: %w", err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read page: %w", err)
	}
	return string(data), nil
}
