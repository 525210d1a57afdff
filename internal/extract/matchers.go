package extract

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vzahanych/weatherpulse/internal/units"
)

type TemperatureUnit int

const (
	UnitUnspecified TemperatureUnit = iota
	UnitCelsius
	UnitFahrenheit
)

type temperaturePattern struct {
	re   *regexp.Regexp
	unit TemperatureUnit
}

// keyword pairs the lowercase text searched for with the label reported.
type keyword struct {
	match string
	label string
}

// Rules is the immutable set of patterns and keyword lists the matchers
// run against. Build it once with DefaultRules and share it freely.
type Rules struct {
	temperature    []temperaturePattern
	conditions     []keyword
	airQualities   []keyword
	windDirections []string

	humidity   *regexp.Regexp
	pressure   *regexp.Regexp
	windSpeed  *regexp.Regexp
	visibility *regexp.Regexp
	uvIndex    *regexp.Regexp
}

// Temperature is a matched reading in both scales.
type Temperature struct {
	Celsius    float64
	Fahrenheit float64
	Detected   TemperatureUnit
}

// DefaultRules returns the standard pattern set. Order inside every list
// is the match priority.
func DefaultRules() *Rules {
	return &Rules{
		temperature: []temperaturePattern{
			{regexp.MustCompile(`(?i)(\d+)°C`), UnitCelsius},
			{regexp.MustCompile(`(?i)(\d+)°F`), UnitFahrenheit},
			{regexp.MustCompile(`(?i)temperature.*?(\d+)`), UnitUnspecified},
			{regexp.MustCompile(`(?i)(\d+)\s*degrees`), UnitUnspecified},
		},
		conditions: titled(
			"sunny", "cloudy", "rainy", "stormy", "clear",
			"overcast", "partly cloudy", "mostly cloudy",
		),
		airQualities: titled("good", "moderate", "unhealthy", "hazardous", "excellent"),
		windDirections: []string{
			"N", "NE", "E", "SE", "S", "SW", "W", "NW",
			"North", "South", "East", "West",
		},
		humidity:   regexp.MustCompile(`(?i)humidity.*?(\d+)%`),
		pressure:   regexp.MustCompile(`(?i)pressure.*?(\d+(?:\.\d+)?)\s*(?:mb|hpa)`),
		windSpeed:  regexp.MustCompile(`(?i)wind.*?(\d+(?:\.\d+)?)\s*(km/h|mph)`),
		visibility: regexp.MustCompile(`(?i)visibility.*?(\d+(?:\.\d+)?)\s*km`),
		uvIndex:    regexp.MustCompile(`(?i)uv.*?(\d+)`),
	}
}

func titled(words ...string) []keyword {
	caser := cases.Title(language.English)
	out := make([]keyword, len(words))
	for i, w := range words {
		out[i] = keyword{match: w, label: caser.String(w)}
	}
	return out
}

// Temperature tries each pattern in priority order; the first pattern with
// a parseable match wins. The reading is Celsius when the winning pattern
// carries a Celsius marker or the text mentions °C or "celsius" anywhere,
// otherwise Fahrenheit.
func (r *Rules) Temperature(text string) (Temperature, bool) {
	lower := strings.ToLower(text)
	celsiusHint := strings.Contains(lower, "°c") || strings.Contains(lower, "celsius")

	for _, p := range r.temperature {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}

		if p.unit == UnitCelsius || celsiusHint {
			return Temperature{
				Celsius:    value,
				Fahrenheit: units.CelsiusToFahrenheit(value),
				Detected:   UnitCelsius,
			}, true
		}
		return Temperature{
			Celsius:    units.FahrenheitToCelsius(value),
			Fahrenheit: value,
			Detected:   UnitFahrenheit,
		}, true
	}
	return Temperature{}, false
}

// Condition returns the label of the first keyword in list order found in
// the text, or "" when none is present.
func (r *Rules) Condition(text string) (string, bool) {
	return firstKeyword(r.conditions, text)
}

func (r *Rules) AirQuality(text string) (string, bool) {
	return firstKeyword(r.airQualities, text)
}

func (r *Rules) Humidity(text string) (int, bool) {
	return matchInt(r.humidity, text)
}

func (r *Rules) Pressure(text string) (float64, bool) {
	return matchFloat(r.pressure, text)
}

// WindSpeed reports km/h. Readings given in mph are converted and rounded
// to one decimal.
func (r *Rules) WindSpeed(text string) (float64, bool) {
	m := r.windSpeed.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if strings.EqualFold(m[2], "mph") {
		return units.Round(units.MphToKmh(v), 1), true
	}
	return v, true
}

// WindDirection returns the first direction token, in list order, that
// occurs with a space on both sides or directly followed by an E or W
// suffix (so "N" is found in "NW"). A token at the very start or end of
// the text has no surrounding space and does not count. Matching is
// case-sensitive.
func (r *Rules) WindDirection(text string) (string, bool) {
	for _, d := range r.windDirections {
		if strings.Contains(text, " "+d+" ") ||
			strings.Contains(text, d+"E") ||
			strings.Contains(text, d+"W") {
			return d, true
		}
	}
	return "", false
}

func (r *Rules) Visibility(text string) (float64, bool) {
	return matchFloat(r.visibility, text)
}

func (r *Rules) UVIndex(text string) (int, bool) {
	return matchInt(r.uvIndex, text)
}

func firstKeyword(list []keyword, text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, k := range list {
		if strings.Contains(lower, k.match) {
			return k.label, true
		}
	}
	return "", false
}

func matchInt(re *regexp.Regexp, text string) (int, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return v, true
}

func matchFloat(re *regexp.Regexp, text string) (float64, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
