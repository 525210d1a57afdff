package units

import (
	"fmt"
	"math"
	"strings"
)

type PressureUnit string

const (
	HPa  PressureUnit = "hpa"
	InHg PressureUnit = "inhg"
	MmHg PressureUnit = "mmhg"
	PSI  PressureUnit = "psi"
)

const (
	hPaPerInHg = 33.8639
	hPaPerMmHg = 1.33322
	hPaPerPSI  = 68.9476

	kmPerMile = 1.609344
)

var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// VariableDirection is reported when no bearing is known.
const VariableDirection = "Variable"

func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

func MphToKmh(mph float64) float64 {
	return mph * kmPerMile
}

// ParsePressureUnit maps a case-insensitive unit token to a PressureUnit.
// "mb" is an alias for hPa. Unknown tokens resolve to hPa.
func ParsePressureUnit(s string) PressureUnit {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inhg":
		return InHg
	case "mmhg":
		return MmHg
	case "psi":
		return PSI
	default:
		return HPa
	}
}

// ConvertPressure converts through hPa and rounds for display:
// one decimal for hPa and mmHg, two for inHg and psi.
func ConvertPressure(value float64, from, to PressureUnit) float64 {
	hpa := value
	switch from {
	case InHg:
		hpa = value * hPaPerInHg
	case MmHg:
		hpa = value * hPaPerMmHg
	case PSI:
		hpa = value * hPaPerPSI
	}

	switch to {
	case InHg:
		return Round(hpa/hPaPerInHg, 2)
	case MmHg:
		return Round(hpa/hPaPerMmHg, 1)
	case PSI:
		return Round(hpa/hPaPerPSI, 2)
	default:
		return Round(hpa, 1)
	}
}

// WindDirection maps a compass bearing in degrees to one of 16 points.
// A nil bearing yields VariableDirection.
func WindDirection(degrees *float64) string {
	if degrees == nil {
		return VariableDirection
	}
	idx := int(math.RoundToEven(*degrees/22.5)) % len(compassPoints)
	if idx < 0 {
		idx += len(compassPoints)
	}
	return compassPoints[idx]
}

// HeatIndex applies the Rothfusz regression. Outside its validity range
// (below 80°F or 40% humidity) the input temperature is returned unchanged.
func HeatIndex(tempF, humidity float64) float64 {
	if tempF < 80 || humidity < 40 {
		return tempF
	}

	t, h := tempF, humidity
	hi := -42.379 +
		2.04901523*t +
		10.14333127*h -
		0.22475541*t*h -
		6.83783e-3*t*t -
		5.481717e-2*h*h +
		1.22874e-3*t*t*h +
		8.5282e-4*t*h*h -
		1.99e-6*t*t*h*h

	return Round(hi, 1)
}

// DewPoint uses the Magnus formula. Humidity must be greater than zero.
func DewPoint(tempC, humidity float64) float64 {
	const a, b = 17.27, 237.7

	alpha := a*tempC/(b+tempC) + math.Log(humidity/100)
	return Round(b*alpha/(a-alpha), 1)
}

func CategorizeTemperature(tempC float64) string {
	switch {
	case tempC < 0:
		return "Freezing"
	case tempC < 10:
		return "Very Cold"
	case tempC < 20:
		return "Cold"
	case tempC < 25:
		return "Mild"
	case tempC < 30:
		return "Warm"
	case tempC < 35:
		return "Hot"
	default:
		return "Very Hot"
	}
}

// ComfortIndex describes how the conditions feel. Cold windy weather is
// adjusted by a simple wind chill, everything else goes through HeatIndex.
func ComfortIndex(tempC, humidity, windKmh float64) string {
	var feelsLike float64
	if tempC < 10 && windKmh > 5 {
		feelsLike = tempC - windKmh*0.5
	} else {
		feelsLike = FahrenheitToCelsius(HeatIndex(CelsiusToFahrenheit(tempC), humidity))
	}

	switch {
	case feelsLike < 0:
		return "Extremely Cold"
	case feelsLike < 10:
		return "Very Cold"
	case feelsLike < 18:
		return "Cool"
	case feelsLike < 24:
		return "Comfortable"
	case feelsLike < 27:
		return "Warm"
	case feelsLike < 32:
		return "Hot"
	default:
		return "Extremely Hot"
	}
}

func FormatTemperature(temp float64, unit string) string {
	switch strings.ToUpper(unit) {
	case "C":
		return fmt.Sprintf("%.1f°C", temp)
	case "F":
		return fmt.Sprintf("%.1f°F", temp)
	default:
		return fmt.Sprintf("%.1f°", temp)
	}
}

// Round rounds half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
