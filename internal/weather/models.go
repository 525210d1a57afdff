package weather

import (
	"time"
)

// Location identifies the place a record was requested for. The JSON shape
// is flattened into WeatherRecord.
type Location struct {
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Country string `json:"country"`
}

// CurrentConditions holds the values extracted from a page. Nil pointers
// mean the attribute was not found and are reported as null.
type CurrentConditions struct {
	TemperatureC  float64  `json:"temperature"`
	TemperatureF  float64  `json:"temperature_fahrenheit"`
	Condition     string   `json:"condition"`
	HumidityPct   *int     `json:"humidity"`
	PressureHPa   *float64 `json:"pressure"`
	WindSpeedKmh  *float64 `json:"wind_speed"`
	WindDirection *string  `json:"wind_direction"`
	VisibilityKm  *float64 `json:"visibility"`
	UVIndex       *int     `json:"uv_index"`
	AirQuality    *string  `json:"air_quality"`
}

// DailyForecast is the per-day entry embedded in a WeatherRecord.
type DailyForecast struct {
	Date                   string  `json:"date"`
	HighC                  float64 `json:"high_temp"`
	LowC                   float64 `json:"low_temp"`
	Condition              string  `json:"condition"`
	PrecipitationChancePct *int    `json:"precipitation_chance"`
}

type WeatherRecord struct {
	Location
	Current    CurrentConditions `json:"current_weather"`
	Forecast   []DailyForecast   `json:"forecast"`
	ObservedAt time.Time         `json:"last_updated"`
	Source     string            `json:"data_source"`
}

// ForecastResult is the response of the standalone forecast call. Its day
// entries use a different shape from DailyForecast and both are kept.
type ForecastResult struct {
	City         string        `json:"city"`
	ForecastDays int           `json:"forecast_days"`
	Forecast     []ForecastDay `json:"forecast"`
}

type ForecastDay struct {
	Date          string `json:"date"`
	HighTemp      int    `json:"high_temp"`
	LowTemp       int    `json:"low_temp"`
	Condition     string `json:"condition"`
	Precipitation string `json:"precipitation"`
}

// DefaultCondition is used whenever no condition keyword is found.
const DefaultCondition = "Partly Cloudy"

// DateLayout is the calendar date format used in forecasts.
const DateLayout = "2006-01-02"
