package record

import (
	"github.com/vzahanych/weatherpulse/internal/units"
	"github.com/vzahanych/weatherpulse/internal/weather"
)

// Derived holds readings computed from the extracted current conditions.
// Fields that need a reading the page did not provide are left nil.
type Derived struct {
	Display      string   `json:"temperature_display"`
	Category     string   `json:"temperature_category"`
	Comfort      string   `json:"comfort"`
	HeatIndexF   float64  `json:"heat_index_fahrenheit"`
	DewPointC    *float64 `json:"dew_point,omitempty"`
	PressureInHg *float64 `json:"pressure_inhg,omitempty"`
}

// Annotated is a record with its derived readings attached.
type Annotated struct {
	weather.WeatherRecord
	Derived Derived `json:"derived"`
}

// Derive computes comfort and display values. Missing humidity and wind
// count as zero for the comfort index.
func Derive(cur weather.CurrentConditions) Derived {
	var humidity, wind float64
	if cur.HumidityPct != nil {
		humidity = float64(*cur.HumidityPct)
	}
	if cur.WindSpeedKmh != nil {
		wind = *cur.WindSpeedKmh
	}

	d := Derived{
		Display:    units.FormatTemperature(cur.TemperatureC, "C"),
		Category:   units.CategorizeTemperature(cur.TemperatureC),
		Comfort:    units.ComfortIndex(cur.TemperatureC, humidity, wind),
		HeatIndexF: units.HeatIndex(cur.TemperatureF, humidity),
	}

	if humidity > 0 {
		dp := units.DewPoint(cur.TemperatureC, humidity)
		d.DewPointC = &dp
	}
	if cur.PressureHPa != nil {
		p := units.ConvertPressure(*cur.PressureHPa, units.HPa, units.InHg)
		d.PressureInHg = &p
	}

	return d
}

func Annotate(rec *weather.WeatherRecord) Annotated {
	return Annotated{WeatherRecord: *rec, Derived: Derive(rec.Current)}
}
