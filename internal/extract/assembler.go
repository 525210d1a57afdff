package extract

import (
	"github.com/vzahanych/weatherpulse/internal/weather"
)

// Fallback reading used when no temperature pattern matches.
const (
	DefaultTemperatureC = 25.0
	DefaultTemperatureF = 77.0
)

// Assembler runs every matcher over the same flattened text and composes
// the current conditions. It holds no mutable state.
type Assembler struct {
	rules *Rules
}

func NewAssembler(rules *Rules) *Assembler {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Assembler{rules: rules}
}

// Assemble never fails. Temperature and condition fall back to fixed
// defaults; every other field is left nil when not found or when the
// matched value is outside its plausible range.
func (a *Assembler) Assemble(text string) weather.CurrentConditions {
	r := a.rules

	cur := weather.CurrentConditions{
		TemperatureC: DefaultTemperatureC,
		TemperatureF: DefaultTemperatureF,
		Condition:    weather.DefaultCondition,
	}

	if t, ok := r.Temperature(text); ok {
		cur.TemperatureC = t.Celsius
		cur.TemperatureF = t.Fahrenheit
	}
	if c, ok := r.Condition(text); ok {
		cur.Condition = c
	}

	if v, ok := r.Humidity(text); ok && ValidHumidity(v) {
		cur.HumidityPct = &v
	}
	if v, ok := r.Pressure(text); ok && ValidPressure(v) {
		cur.PressureHPa = &v
	}
	if v, ok := r.WindSpeed(text); ok && ValidWindSpeed(v) {
		cur.WindSpeedKmh = &v
	}
	if v, ok := r.WindDirection(text); ok {
		cur.WindDirection = &v
	}
	if v, ok := r.Visibility(text); ok && ValidVisibility(v) {
		cur.VisibilityKm = &v
	}
	if v, ok := r.UVIndex(text); ok && ValidUVIndex(v) {
		cur.UVIndex = &v
	}
	if v, ok := r.AirQuality(text); ok {
		cur.AirQuality = &v
	}

	return cur
}
