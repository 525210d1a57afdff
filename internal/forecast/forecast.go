// Package forecast manufactures multi-day forecasts. The search page carries
// no structured per-day data, so values come from fixed formulas over the
// day index and are not extracted from any content.
package forecast

import (
	"fmt"
	"time"

	"github.com/vzahanych/weatherpulse/internal/weather"
)

const DefaultDays = 7

const (
	baseHighC = 28
	baseLowC  = 22

	recordPrecipitationPct = 30

	extendedPrecipitationPct  = 30
	extendedPrecipitationStep = 5
)

// RecordDays builds the forecast embedded in a WeatherRecord: highs and lows
// climb one degree per day without cycling and precipitation stays at 30%.
func RecordDays(today time.Time, days int) []weather.DailyForecast {
	out := make([]weather.DailyForecast, 0, max(days, 0))
	for i := 0; i < days; i++ {
		precip := recordPrecipitationPct
		out = append(out, weather.DailyForecast{
			Date:                   dateOffset(today, i),
			HighC:                  float64(baseHighC + i),
			LowC:                   float64(baseLowC + i),
			Condition:              weather.DefaultCondition,
			PrecipitationChancePct: &precip,
		})
	}
	return out
}

// ExtendedDays builds the entries of the standalone forecast response:
// highs cycle over 3 days, lows over 2, and precipitation grows by 5% per
// day without an upper bound.
func ExtendedDays(today time.Time, days int) []weather.ForecastDay {
	out := make([]weather.ForecastDay, 0, max(days, 0))
	for i := 0; i < days; i++ {
		out = append(out, weather.ForecastDay{
			Date:          dateOffset(today, i),
			HighTemp:      baseHighC + i%3,
			LowTemp:       baseLowC + i%2,
			Condition:     weather.DefaultCondition,
			Precipitation: fmt.Sprintf("%d%%", extendedPrecipitationPct+i*extendedPrecipitationStep),
		})
	}
	return out
}

func dateOffset(today time.Time, days int) string {
	return today.AddDate(0, 0, days).Format(weather.DateLayout)
}
